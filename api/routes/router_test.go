package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/importops-backend/api/controllers"
	"github.com/angelmondragon/importops-backend/internal/dispatch"
	pkgAuth "github.com/angelmondragon/importops-backend/pkg/auth"
	"github.com/angelmondragon/importops-backend/pkg/config"
	"github.com/angelmondragon/importops-backend/pkg/enums"
	"github.com/angelmondragon/importops-backend/pkg/metrics"
	"github.com/angelmondragon/importops-backend/pkg/outbox"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubDispatchService struct {
	dispatch.Service
}

func (stubDispatchService) Get(ctx context.Context, orderID uuid.UUID) (*dispatch.OrderDetail, error) {
	return &dispatch.OrderDetail{ID: orderID, Status: enums.DispatchOrderStatusPending}, nil
}

type stubDeadLetters struct{}

func (stubDeadLetters) List(context.Context, outbox.DLQFilter) ([]outbox.DeadLetter, error) {
	return []outbox.DeadLetter{{ID: uuid.New(), EventType: enums.EventDispatchOrderConfirmed}}, nil
}

func (stubDeadLetters) Redrive(_ context.Context, id uuid.UUID) (*outbox.DeadLetter, error) {
	return &outbox.DeadLetter{ID: id}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", CORSOrigins: []string{"http://localhost:3000"}},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "importops", ExpirationMinutes: 10},
	}
}

func newTestRouter(t *testing.T) (http.Handler, *config.Config, *prometheus.Registry) {
	t.Helper()
	cfg := testConfig()
	reg := prometheus.NewRegistry()
	metrics.NewDispatchMetrics(reg)
	handler := NewRouter(cfg, nil, Dependencies{
		Health:      map[string]controllers.Pinger{"db": stubPinger{}},
		Metrics:     reg,
		HTTPMetrics: metrics.NewHTTPMetrics(reg),
	}, Services{Dispatch: stubDispatchService{}, DeadLetters: stubDeadLetters{}})
	return handler, cfg, reg
}

func bearer(t *testing.T, cfg *config.Config, role enums.Role) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{UserID: uuid.New(), Role: role})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return "Bearer " + token
}

func TestHealthRoutesArePublic(t *testing.T) {
	handler, _, _ := newTestRouter(t)
	for _, path := range []string{"/health/live", "/health/ready"} {
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, resp.Code)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	handler, _, _ := newTestRouter(t)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestAPIRequiresToken(t *testing.T) {
	handler, _, _ := newTestRouter(t)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/dispatch-orders/"+uuid.NewString(), nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestStaffCanReadOrders(t *testing.T) {
	handler, cfg, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/dispatch-orders/"+uuid.NewString(), nil)
	req.Header.Set("Authorization", bearer(t, cfg, enums.RoleStaff))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if resp.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected request id header")
	}
}

func TestStaffCannotConfirm(t *testing.T) {
	handler, cfg, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/dispatch-orders/"+uuid.NewString()+"/confirm", strings.NewReader(`{}`))
	req.Header.Set("Authorization", bearer(t, cfg, enums.RoleStaff))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestDeadLetterRoutesAreAdminOnly(t *testing.T) {
	handler, cfg, _ := newTestRouter(t)
	cases := []struct {
		method, path string
		role         enums.Role
		want         int
	}{
		{http.MethodGet, "/api/v1/ops/outbox/dead-letters", enums.RoleStaff, http.StatusForbidden},
		{http.MethodGet, "/api/v1/ops/outbox/dead-letters", enums.RoleAdmin, http.StatusOK},
		{http.MethodGet, "/api/v1/ops/outbox/dead-letters?eventType=nope", enums.RoleAdmin, http.StatusBadRequest},
		{http.MethodPost, "/api/v1/ops/outbox/dead-letters/" + uuid.NewString() + "/redrive", enums.RoleAdmin, http.StatusOK},
		{http.MethodPost, "/api/v1/ops/outbox/dead-letters/not-a-uuid/redrive", enums.RoleAdmin, http.StatusBadRequest},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		req.Header.Set("Authorization", bearer(t, cfg, tc.role))
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != tc.want {
			t.Fatalf("%s %s as %s: expected %d got %d: %s", tc.method, tc.path, tc.role, tc.want, resp.Code, resp.Body.String())
		}
	}
}

func TestRequestsAreCountedByRoutePattern(t *testing.T) {
	handler, cfg, reg := newTestRouter(t)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/dispatch-orders/"+uuid.NewString(), nil)
		req.Header.Set("Authorization", bearer(t, cfg, enums.RoleStaff))
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() != "http_requests_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			labels := map[string]string{}
			for _, pair := range metric.GetLabel() {
				labels[pair.GetName()] = pair.GetValue()
			}
			if labels["status"] == "200" && strings.Contains(labels["route"], "{orderId}") {
				if got := metric.GetCounter().GetValue(); got != 2 {
					t.Fatalf("expected 2 requests on one series, got %f", got)
				}
				return
			}
		}
	}
	t.Fatalf("no http_requests_total series for the order route")
}
