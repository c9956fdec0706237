package payments

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/importops-backend/api/middleware"
	"github.com/angelmondragon/importops-backend/api/responses"
	"github.com/angelmondragon/importops-backend/api/validators"
	internalpayments "github.com/angelmondragon/importops-backend/internal/payments"
	pkgerrors "github.com/angelmondragon/importops-backend/pkg/errors"
	"github.com/angelmondragon/importops-backend/pkg/logger"
)

type distributeRequest struct {
	CashAmount decimal.Decimal `json:"cashAmount" validate:"gte=0"`
	BankAmount decimal.Decimal `json:"bankAmount" validate:"gte=0"`
	Date       *time.Time      `json:"date,omitempty"`
	Notes      string          `json:"notes,omitempty" validate:"max=1000"`
}

// Distribute pays a party in cash then bank. A payment where only the cash
// part committed is reported with 207; a payment where nothing committed is
// reported as the first failure.
func Distribute(svc internalpayments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		model, err := validators.ParseEntityModel(r, "entityModel")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		entityID, err := validators.ParseUUIDParam(r, "entityId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		userID, role, err := middleware.ActorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body distributeRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		instruction := internalpayments.Instruction{
			EntityID:    entityID,
			EntityModel: model,
			CashAmount:  body.CashAmount,
			BankAmount:  body.BankAmount,
			Notes:       validators.SanitizeString(body.Notes, 1000),
			ActorUserID: userID,
			ActorRole:   role.String(),
		}
		if body.Date != nil {
			instruction.Date = *body.Date
		}

		result, err := svc.Distribute(r.Context(), instruction)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		switch result.Outcome {
		case internalpayments.OutcomeSucceeded:
			responses.WriteSuccess(w, result)
		case internalpayments.OutcomePartial:
			responses.WriteSuccessStatus(w, http.StatusMultiStatus, result)
		default:
			failure := result.Err()
			if failure == nil {
				failure = pkgerrors.New(pkgerrors.CodeInternal, "payment failed")
			}
			responses.WriteError(r.Context(), logg, w, failure)
		}
	}
}
