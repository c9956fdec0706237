package dispatch

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/importops-backend/api/middleware"
	"github.com/angelmondragon/importops-backend/api/responses"
	"github.com/angelmondragon/importops-backend/api/validators"
	internaldispatch "github.com/angelmondragon/importops-backend/internal/dispatch"
	"github.com/angelmondragon/importops-backend/internal/payments"
	"github.com/angelmondragon/importops-backend/pkg/enums"
	"github.com/angelmondragon/importops-backend/pkg/logger"
	"github.com/angelmondragon/importops-backend/pkg/pagination"
)

const maxNotesLength = 1000

type draftRequest struct {
	SupplierID     *uuid.UUID                   `json:"supplierId,omitempty"`
	Header         internaldispatch.HeaderPatch `json:"header"`
	Items          internaldispatch.ItemChanges `json:"items"`
	BoxesConfirmed *bool                        `json:"boxesConfirmed,omitempty"`
}

type confirmRequest struct {
	State       internaldispatch.ConfirmationState `json:"state"`
	CashPayment decimal.Decimal                    `json:"cashPayment"`
	BankPayment decimal.Decimal                    `json:"bankPayment"`
	PaymentDate *time.Time                         `json:"paymentDate,omitempty"`
	Notes       string                             `json:"notes,omitempty"`
}

type returnsRequest struct {
	Lines      []returnLineRequest `json:"lines" validate:"required,min=1,dive"`
	ReturnedAt *time.Time          `json:"returnedAt,omitempty"`
}

type returnLineRequest struct {
	LineItemID *uuid.UUID `json:"lineItemId,omitempty" validate:"required_without=ItemIndex"`
	ItemIndex  *int       `json:"itemIndex,omitempty" validate:"omitempty,gte=0"`
	Quantity   int        `json:"quantity" validate:"gt=0"`
	Reason     string     `json:"reason,omitempty" validate:"max=500"`
}

// List pages orders newest first with optional status and supplier filters.
func List(svc internaldispatch.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters, err := listFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.List(r.Context(), pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func listFilters(r *http.Request) (internaldispatch.ListFilters, error) {
	status, err := validators.ParseQueryEnum(r, "status", enums.ParseDispatchOrderStatus)
	if err != nil {
		return internaldispatch.ListFilters{}, err
	}
	supplierID, err := validators.ParseQueryUUID(r, "supplierId")
	if err != nil {
		return internaldispatch.ListFilters{}, err
	}
	return internaldispatch.ListFilters{Status: status, SupplierID: supplierID}, nil
}

// Detail returns the order with its derived view.
func Detail(svc internaldispatch.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		detail, err := svc.Get(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// SaveDraft applies header and item edits to an editable order.
func SaveDraft(svc internaldispatch.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, actor, err := orderAndActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body draftRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if body.Header.Notes != nil {
			notes := validators.SanitizeString(*body.Header.Notes, maxNotesLength)
			body.Header.Notes = &notes
		}
		detail, err := svc.SaveDraft(r.Context(), internaldispatch.DraftInput{
			OrderID:        orderID,
			Actor:          actor,
			SupplierID:     body.SupplierID,
			Header:         body.Header,
			Items:          body.Items,
			BoxesConfirmed: body.BoxesConfirmed,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// SubmitApproval moves a pending order to pending approval.
func SubmitApproval(svc internaldispatch.Service, logg *logger.Logger) http.HandlerFunc {
	return transition(svc.SubmitApproval, logg)
}

// Revert sends an order awaiting approval back to pending.
func Revert(svc internaldispatch.Service, logg *logger.Logger) http.HandlerFunc {
	return transition(svc.Revert, logg)
}

// Cancel cancels an unconfirmed order.
func Cancel(svc internaldispatch.Service, logg *logger.Logger) http.HandlerFunc {
	return transition(svc.Cancel, logg)
}

func transition(run func(ctx context.Context, input internaldispatch.TransitionInput) (*internaldispatch.OrderDetail, error), logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, actor, err := orderAndActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		detail, err := run(r.Context(), internaldispatch.TransitionInput{OrderID: orderID, Actor: actor})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// ValidateConfirm reports every rule the confirmation state violates without
// writing anything.
func ValidateConfirm(svc internaldispatch.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var state internaldispatch.ConfirmationState
		if err := validators.DecodeJSONBody(r, &state); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.ValidateConfirm(r.Context(), orderID, state)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// Confirm confirms the order and distributes the supplier payment. A payment
// that did not fully commit is reported with 207.
func Confirm(svc internaldispatch.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, actor, err := orderAndActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body confirmRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Confirm(r.Context(), internaldispatch.ConfirmInput{
			OrderID:     orderID,
			Actor:       actor,
			State:       body.State,
			CashPayment: body.CashPayment,
			BankPayment: body.BankPayment,
			PaymentDate: body.PaymentDate,
			Notes:       validators.SanitizeString(body.Notes, maxNotesLength),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status := http.StatusOK
		if result.PaymentError != "" || (result.Payment != nil && result.Payment.Outcome != payments.OutcomeSucceeded) {
			status = http.StatusMultiStatus
		}
		responses.WriteSuccessStatus(w, status, result)
	}
}

// AppendReturns records a batch of returns against the order.
func AppendReturns(svc internaldispatch.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, actor, err := orderAndActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body returnsRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lines := make([]internaldispatch.ReturnLine, 0, len(body.Lines))
		for _, line := range body.Lines {
			out := internaldispatch.ReturnLine{
				ItemIndex: line.ItemIndex,
				Quantity:  line.Quantity,
				Reason:    validators.SanitizeString(line.Reason, 500),
			}
			if line.LineItemID != nil {
				out.LineItemID = *line.LineItemID
			}
			lines = append(lines, out)
		}
		detail, err := svc.AppendReturns(r.Context(), internaldispatch.ReturnInput{
			OrderID:    orderID,
			Actor:      actor,
			Lines:      lines,
			ReturnedAt: body.ReturnedAt,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, detail)
	}
}

// Delete removes an unconfirmed order.
func Delete(svc internaldispatch.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, actor, err := orderAndActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), internaldispatch.TransitionInput{OrderID: orderID, Actor: actor}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func orderAndActor(r *http.Request) (uuid.UUID, internaldispatch.Actor, error) {
	orderID, err := validators.ParseUUIDParam(r, "orderId")
	if err != nil {
		return uuid.Nil, internaldispatch.Actor{}, err
	}
	userID, role, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		return uuid.Nil, internaldispatch.Actor{}, err
	}
	return orderID, internaldispatch.Actor{UserID: userID, Role: role}, nil
}
