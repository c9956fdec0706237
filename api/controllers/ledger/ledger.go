package ledger

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/importops-backend/api/middleware"
	"github.com/angelmondragon/importops-backend/api/responses"
	"github.com/angelmondragon/importops-backend/api/validators"
	internalledger "github.com/angelmondragon/importops-backend/internal/ledger"
	"github.com/angelmondragon/importops-backend/pkg/enums"
	"github.com/angelmondragon/importops-backend/pkg/logger"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type recordEntryRequest struct {
	EntityID        uuid.UUID       `json:"entityId" validate:"required"`
	EntityModel     string          `json:"entityModel" validate:"required,oneof=supplier logistics_company"`
	TransactionType string          `json:"transactionType" validate:"required"`
	Debit           decimal.Decimal `json:"debit" validate:"gte=0"`
	Credit          decimal.Decimal `json:"credit" validate:"gte=0"`
	Date            *time.Time      `json:"date,omitempty"`
	Notes           string          `json:"notes,omitempty" validate:"max=1000"`
}

// Balance returns the party's outstanding balance.
func Balance(svc internalledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		model, entityID, err := partyFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Balance(r.Context(), model, entityID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// Entries returns the party's statement with running balances.
func Entries(svc internalledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		model, entityID, err := partyFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		statement, err := svc.Statement(r.Context(), model, entityID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, statement)
	}
}

// StatementXLSX streams the party statement as a spreadsheet.
func StatementXLSX(svc internalledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		model, entityID, err := partyFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var buf bytes.Buffer
		if err := svc.WriteStatementXLSX(r.Context(), model, entityID, &buf); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="statement-%s-%s.xlsx"`, model, entityID))
		w.WriteHeader(http.StatusOK)
		if _, err := buf.WriteTo(w); err != nil && logg != nil {
			logg.Error(r.Context(), "write statement", err)
		}
	}
}

// RecordEntry appends a manual charge or adjustment.
func RecordEntry(svc internalledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, role, err := middleware.ActorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body recordEntryRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := internalledger.RecordEntryInput{
			EntityID:        body.EntityID,
			EntityModel:     enums.EntityModel(body.EntityModel),
			TransactionType: enums.LedgerTransactionType(body.TransactionType),
			Debit:           body.Debit,
			Credit:          body.Credit,
			ActorUserID:     userID,
			ActorRole:       role.String(),
		}
		if body.Date != nil {
			input.Date = *body.Date
		}
		if notes := validators.SanitizeString(body.Notes, 1000); notes != "" {
			input.Notes = &notes
		}
		entry, err := svc.RecordEntry(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, entry)
	}
}

func partyFromPath(r *http.Request) (enums.EntityModel, uuid.UUID, error) {
	model, err := validators.ParseEntityModel(r, "entityModel")
	if err != nil {
		return "", uuid.Nil, err
	}
	entityID, err := validators.ParseUUIDParam(r, "entityId")
	if err != nil {
		return "", uuid.Nil, err
	}
	return model, entityID, nil
}
