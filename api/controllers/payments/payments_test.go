package payments

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/importops-backend/api/middleware"
	internalpayments "github.com/angelmondragon/importops-backend/internal/payments"
	"github.com/angelmondragon/importops-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/importops-backend/pkg/errors"
)

type stubPaymentService struct {
	distribute func(ctx context.Context, instruction internalpayments.Instruction) (*internalpayments.DistributionResult, error)
}

func (s stubPaymentService) Distribute(ctx context.Context, instruction internalpayments.Instruction) (*internalpayments.DistributionResult, error) {
	return s.distribute(ctx, instruction)
}

func serve(t *testing.T, svc internalpayments.Service, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.Post("/payments/{entityModel}/{entityId}", Distribute(svc, nil))

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	ctx := middleware.WithUserID(req.Context(), uuid.NewString())
	ctx = middleware.WithRole(ctx, string(enums.RoleStaff))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req.WithContext(ctx))
	return resp
}

func TestDistributeSuccess(t *testing.T) {
	entityID := uuid.New()
	svc := stubPaymentService{
		distribute: func(ctx context.Context, instruction internalpayments.Instruction) (*internalpayments.DistributionResult, error) {
			if instruction.EntityID != entityID || instruction.EntityModel != enums.EntityModelSupplier {
				t.Fatalf("unexpected party %+v", instruction)
			}
			if !instruction.CashAmount.Equal(decimal.NewFromInt(30)) || !instruction.BankAmount.Equal(decimal.NewFromInt(20)) {
				t.Fatalf("unexpected amounts %+v", instruction)
			}
			return &internalpayments.DistributionResult{Outcome: internalpayments.OutcomeSucceeded}, nil
		},
	}
	resp := serve(t, svc, "/payments/supplier/"+entityID.String(), `{"cashAmount":"30","bankAmount":"20"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestDistributePartialIsMultiStatus(t *testing.T) {
	svc := stubPaymentService{
		distribute: func(ctx context.Context, instruction internalpayments.Instruction) (*internalpayments.DistributionResult, error) {
			return &internalpayments.DistributionResult{Outcome: internalpayments.OutcomePartial}, nil
		},
	}
	resp := serve(t, svc, "/payments/supplier/"+uuid.NewString(), `{"cashAmount":"30","bankAmount":"20"}`)
	if resp.Code != http.StatusMultiStatus {
		t.Fatalf("expected 207 got %d", resp.Code)
	}
}

func TestDistributeMapsServiceErrors(t *testing.T) {
	svc := stubPaymentService{
		distribute: func(ctx context.Context, instruction internalpayments.Instruction) (*internalpayments.DistributionResult, error) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "another payment for this party is in progress")
		},
	}
	resp := serve(t, svc, "/payments/logistics_company/"+uuid.NewString(), `{"cashAmount":"30"}`)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
}

func TestDistributeRejectsUnknownFields(t *testing.T) {
	svc := stubPaymentService{
		distribute: func(ctx context.Context, instruction internalpayments.Instruction) (*internalpayments.DistributionResult, error) {
			t.Fatalf("service must not be called")
			return nil, nil
		},
	}
	resp := serve(t, svc, "/payments/supplier/"+uuid.NewString(), `{"cash":"30"}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
