package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/importops-backend/internal/payments"
	"github.com/angelmondragon/importops-backend/pkg/db/models"
	"github.com/angelmondragon/importops-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/importops-backend/pkg/errors"
	"github.com/angelmondragon/importops-backend/pkg/logger"
	"github.com/angelmondragon/importops-backend/pkg/metrics"
	"github.com/angelmondragon/importops-backend/pkg/outbox"
	"github.com/angelmondragon/importops-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/importops-backend/pkg/pagination"
	"github.com/angelmondragon/importops-backend/pkg/types"
)

const (
	referenceModelOrder  = "dispatch_order"
	referenceModelReturn = "dispatch_order_return"
)

// Service drives dispatch orders through drafts, approval, confirmation and
// returns.
type Service interface {
	Get(ctx context.Context, orderID uuid.UUID) (*OrderDetail, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error)
	SaveDraft(ctx context.Context, input DraftInput) (*OrderDetail, error)
	SubmitApproval(ctx context.Context, input TransitionInput) (*OrderDetail, error)
	Revert(ctx context.Context, input TransitionInput) (*OrderDetail, error)
	ValidateConfirm(ctx context.Context, orderID uuid.UUID, state ConfirmationState) (*ValidationResult, error)
	Confirm(ctx context.Context, input ConfirmInput) (*ConfirmResult, error)
	AppendReturns(ctx context.Context, input ReturnInput) (*OrderDetail, error)
	Cancel(ctx context.Context, input TransitionInput) (*OrderDetail, error)
	Delete(ctx context.Context, input TransitionInput) error
}

// ServiceParams wires the dispatch service.
type ServiceParams struct {
	Repo     Repository
	Tx       txRunner
	Outbox   outboxPublisher
	Ledger   LedgerWriter
	Payments PaymentDistributor
	Metrics  *metrics.DispatchMetrics
	Logger   *logger.Logger
}

type service struct {
	repo     Repository
	tx       txRunner
	outbox   outboxPublisher
	ledger   LedgerWriter
	payments PaymentDistributor
	metrics  *metrics.DispatchMetrics
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds the dispatch order service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("dispatch repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("ledger writer required")
	}
	if params.Payments == nil {
		return nil, fmt.Errorf("payment distributor required")
	}
	return &service{
		repo:     params.Repo,
		tx:       params.Tx,
		outbox:   params.Outbox,
		ledger:   params.Ledger,
		payments: params.Payments,
		metrics:  params.Metrics,
		logg:     params.Logger,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Get(ctx context.Context, orderID uuid.UUID) (*OrderDetail, error) {
	order, err := s.load(ctx, s.repo, orderID, false)
	if err != nil {
		return nil, err
	}
	return toDetail(order), nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error) {
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	list, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list dispatch orders")
	}
	return list, nil
}

func (s *service) SaveDraft(ctx context.Context, input DraftInput) (*OrderDetail, error) {
	if err := requireOperator(input.Actor); err != nil {
		return nil, err
	}
	var saved *models.DispatchOrder
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.load(ctx, repo, input.OrderID, true)
		if err != nil {
			return err
		}
		if err := checkEditable(order); err != nil {
			return err
		}

		violations := headerViolations(input.Header)
		if input.SupplierID != nil && *input.SupplierID != order.SupplierID {
			violations = append(violations, Violation{Rule: RuleSupplierImmutable, Field: "supplierId", Message: "supplier cannot be changed"})
		}
		items, itemViolations := assembleItems(order, input.Items, true)
		violations = append(violations, itemViolations...)
		if len(violations) > 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "invalid dispatch order changes").WithViolations(violations)
		}

		applyHeader(order, input.Header)
		if input.BoxesConfirmed != nil {
			order.IsTotalBoxesConfirmed = *input.BoxesConfirmed && order.TotalBoxes > 0
		}
		order.Items = items

		if err := repo.ReplaceItems(ctx, order.ID, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save dispatch order items")
		}
		if err := repo.UpdateOrder(ctx, order); err != nil {
			if pkgerrors.IsForeignKeyViolation(err) {
				return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "logistics company not found").
					WithDetails(map[string]any{"field": "header.logisticsCompanyId"})
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save dispatch order")
		}
		saved = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logInfo(ctx, saved.ID, "dispatch order draft saved")
	return toDetail(saved), nil
}

func (s *service) SubmitApproval(ctx context.Context, input TransitionInput) (*OrderDetail, error) {
	if err := requireOperator(input.Actor); err != nil {
		return nil, err
	}
	return s.transition(ctx, input, enums.DispatchOrderStatusPendingApproval, enums.EventDispatchOrderSubmitted, func(order *models.DispatchOrder) {
		now := s.now()
		actor := input.Actor.UserID
		order.SubmittedAt = &now
		order.SubmittedBy = &actor
	})
}

func (s *service) Revert(ctx context.Context, input TransitionInput) (*OrderDetail, error) {
	if err := requireAdmin(input.Actor, "revert"); err != nil {
		return nil, err
	}
	return s.transition(ctx, input, enums.DispatchOrderStatusPending, enums.EventDispatchOrderReverted, nil)
}

func (s *service) Cancel(ctx context.Context, input TransitionInput) (*OrderDetail, error) {
	if err := requireAdmin(input.Actor, "cancel"); err != nil {
		return nil, err
	}
	return s.transition(ctx, input, enums.DispatchOrderStatusCancelled, enums.EventDispatchOrderCancelled, func(order *models.DispatchOrder) {
		now := s.now()
		order.CancelledAt = &now
	})
}

func (s *service) transition(ctx context.Context, input TransitionInput, to enums.DispatchOrderStatus, event enums.OutboxEventType, mutate func(*models.DispatchOrder)) (*OrderDetail, error) {
	var (
		saved *models.DispatchOrder
		from  enums.DispatchOrderStatus
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.load(ctx, repo, input.OrderID, true)
		if err != nil {
			return err
		}
		if err := checkTransition(order, to); err != nil {
			return err
		}
		from = order.Status
		order.Status = to
		if mutate != nil {
			mutate(order)
		}
		if err := repo.UpdateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update dispatch order status")
		}
		saved = order
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     event,
			AggregateType: enums.AggregateDispatchOrder,
			AggregateID:   order.ID,
			Actor:         actorRef(input.Actor),
			Data: payloads.DispatchOrderStatusEvent{
				DispatchOrderID: order.ID,
				OrderNumber:     order.OrderNumber,
				SupplierID:      order.SupplierID,
				From:            from,
				To:              to,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncTransition(from.String(), to.String())
	s.logTransition(ctx, saved.ID, from, to)
	return toDetail(saved), nil
}

func (s *service) ValidateConfirm(ctx context.Context, orderID uuid.UUID, state ConfirmationState) (*ValidationResult, error) {
	order, err := s.load(ctx, s.repo, orderID, false)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(order, enums.DispatchOrderStatusConfirmed); err != nil {
		return nil, err
	}
	result := ValidateForConfirm(order, state)
	return &result, nil
}

func (s *service) Confirm(ctx context.Context, input ConfirmInput) (*ConfirmResult, error) {
	if err := requireAdmin(input.Actor, "confirm"); err != nil {
		return nil, err
	}
	if input.CashPayment.IsNegative() || input.BankPayment.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment amounts").WithViolations([]Violation{
			{Rule: RulePaymentInvalid, Field: "payment", Message: "cash and bank payments must not be negative"},
		})
	}

	var (
		confirmed *models.DispatchOrder
		from      enums.DispatchOrderStatus
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.load(ctx, repo, input.OrderID, true)
		if err != nil {
			return err
		}
		if err := checkTransition(order, enums.DispatchOrderStatusConfirmed); err != nil {
			return err
		}

		draft, result := prepareConfirmation(order, input.State)
		if !result.Valid {
			for _, rule := range rulesOf(result.Errors) {
				s.metrics.IncViolation(rule)
			}
			return pkgerrors.New(pkgerrors.CodeValidation, "dispatch order cannot be confirmed").WithViolations(result.Errors)
		}

		now := s.now()
		actor := input.Actor.UserID
		from = order.Status
		draft.Boxes = ParseBoxes(input.State.BoxNumbers, draft.TotalBoxes)
		draft.ConfirmedQuantities = freezeQuantities(draft)

		view := ComputeOrderView(draft)
		purchase := view.Totals.SupplierPayable
		draft.PaymentSnapshot = &types.PaymentSnapshot{
			CashPayment:  input.CashPayment,
			BankPayment:  input.BankPayment,
			ExchangeRate: draft.ExchangeRate,
			Percentage:   draft.Percentage,
			Discount:     view.Totals.Discount,
		}

		orderRef := draft.ID
		refModel := referenceModelOrder
		notes := fmt.Sprintf("dispatch order #%d", draft.OrderNumber)
		outstanding, err := s.ledger.AppendTx(ctx, tx, &models.LedgerEntry{
			EntityID:        draft.SupplierID,
			EntityModel:     enums.EntityModelSupplier,
			TransactionType: enums.LedgerTransactionPurchase,
			Debit:           purchase,
			Date:            dateOrNow(draft.DispatchDate, now),
			ReferenceID:     &orderRef,
			ReferenceModel:  &refModel,
			Notes:           &notes,
			CreatedBy:       &actor,
		})
		if err != nil {
			return err
		}

		// Payments are credited once their ledger legs commit.
		draft.PaymentDetails = types.PaymentDetails{
			CashPayment:        decimal.Zero,
			BankPayment:        decimal.Zero,
			RemainingBalance:   purchase,
			OutstandingBalance: outstanding,
		}
		draft.Status = enums.DispatchOrderStatusConfirmed
		draft.ConfirmedAt = &now
		draft.ConfirmedBy = &actor

		if err := repo.ReplaceItems(ctx, draft.ID, draft.Items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save confirmed items")
		}
		if err := repo.UpdateOrder(ctx, draft); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save confirmed order")
		}
		confirmed = draft

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventDispatchOrderConfirmed,
			AggregateType: enums.AggregateDispatchOrder,
			AggregateID:   draft.ID,
			Actor:         actorRef(input.Actor),
			Data: payloads.DispatchOrderConfirmedEvent{
				DispatchOrderID:    draft.ID,
				OrderNumber:        draft.OrderNumber,
				SupplierID:         draft.SupplierID,
				LogisticsCompanyID: draft.LogisticsCompanyID,
				ExchangeRate:       draft.ExchangeRate,
				Percentage:         draft.Percentage,
				Discount:           view.Totals.Discount,
				SupplierTotal:      purchase,
				CashPayment:        input.CashPayment,
				BankPayment:        input.BankPayment,
				ItemCount:          len(draft.Items),
				ConfirmedAt:        now,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncTransition(from.String(), enums.DispatchOrderStatusConfirmed.String())
	s.logTransition(ctx, confirmed.ID, from, enums.DispatchOrderStatusConfirmed)

	result := &ConfirmResult{}
	if input.CashPayment.IsPositive() || input.BankPayment.IsPositive() {
		orderRef := confirmed.ID
		distribution, err := s.payments.Distribute(ctx, payments.Instruction{
			EntityID:       confirmed.SupplierID,
			EntityModel:    enums.EntityModelSupplier,
			CashAmount:     input.CashPayment,
			BankAmount:     input.BankPayment,
			Date:           dateOrNow(input.PaymentDate, s.now()),
			Notes:          paymentNotes(input.Notes, confirmed.OrderNumber),
			ReferenceID:    &orderRef,
			ReferenceModel: referenceModelOrder,
			ActorUserID:    input.Actor.UserID,
			ActorRole:      input.Actor.Role.String(),
		})
		if err != nil {
			result.PaymentError = err.Error()
			if s.logg != nil {
				s.logg.Error(s.logg.WithOrderID(ctx, confirmed.ID.String()), "supplier payment after confirmation failed", err)
			}
		}
		result.Payment = distribution
		if err := s.recordDistribution(ctx, confirmed.ID, distribution); err != nil {
			return nil, err
		}
	}

	reloaded, err := s.load(ctx, s.repo, confirmed.ID, false)
	if err != nil {
		return nil, err
	}
	result.Order = toDetail(reloaded)
	return result, nil
}

// recordDistribution keeps the order's payment details in line with the
// sub-submissions that actually committed. A nil distribution leaves the
// order unpaid.
func (s *service) recordDistribution(ctx context.Context, orderID uuid.UUID, distribution *payments.DistributionResult) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.load(ctx, repo, orderID, true)
		if err != nil {
			return err
		}
		details := order.PaymentDetails
		details.CashPayment = decimal.Zero
		details.BankPayment = decimal.Zero
		if distribution != nil {
			for _, sub := range distribution.Submissions {
				if sub.Status != payments.SubmissionCommitted {
					continue
				}
				switch sub.Method {
				case enums.PaymentMethodCash:
					details.CashPayment = sub.Amount
				case enums.PaymentMethodBank:
					details.BankPayment = sub.Amount
				}
				if sub.BalanceAfter != nil {
					details.OutstandingBalance = *sub.BalanceAfter
				}
			}
		}
		details.RemainingBalance = details.RemainingBalance.Sub(details.CashPayment).Sub(details.BankPayment)
		order.PaymentDetails = details
		if err := repo.UpdateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payment details")
		}
		return nil
	})
}

func (s *service) AppendReturns(ctx context.Context, input ReturnInput) (*OrderDetail, error) {
	if err := requireOperator(input.Actor); err != nil {
		return nil, err
	}
	var (
		saved    *models.DispatchOrder
		units    int
		phase    string
		accepted []models.DispatchOrderReturn
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.load(ctx, repo, input.OrderID, true)
		if err != nil {
			return err
		}
		if order.Status == enums.DispatchOrderStatusCancelled {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "returns cannot be recorded on a cancelled dispatch order").
				WithDetails(map[string]any{"orderId": order.ID, "status": order.Status})
		}

		resolved, violations := resolveReturns(order, input.Lines)
		if len(violations) > 0 {
			code := pkgerrors.CodeValidation
			for _, v := range violations {
				if v.Rule == RuleReturnExceedsRemaining {
					code = pkgerrors.CodeStateConflict
					break
				}
			}
			return pkgerrors.New(code, "return submission rejected").WithViolations(violations)
		}

		now := s.now()
		returnedAt := dateOrNow(input.ReturnedAt, now)
		after := order.Status == enums.DispatchOrderStatusConfirmed
		records := make([]models.DispatchOrderReturn, 0, len(resolved))
		credit := decimal.Zero
		lines := make([]payloads.ReturnedLine, 0, len(resolved))
		for _, r := range resolved {
			record := models.DispatchOrderReturn{
				ID:                uuid.New(),
				DispatchOrderID:   order.ID,
				LineItemID:        r.item.ID,
				ItemIndex:         r.item.Position,
				Quantity:          r.line.Quantity,
				Reason:            r.line.Reason,
				ReturnedAt:        returnedAt,
				AfterConfirmation: after,
			}
			if input.Actor.UserID != uuid.Nil {
				actor := input.Actor.UserID
				record.ReturnedBy = &actor
			}
			records = append(records, record)
			units += r.line.Quantity
			credit = credit.Add(r.item.CostPrice.Mul(decimal.NewFromInt(int64(r.line.Quantity))))
			lines = append(lines, payloads.ReturnedLine{
				LineItemID: r.item.ID,
				ItemIndex:  r.item.Position,
				Quantity:   r.line.Quantity,
				Reason:     r.line.Reason,
			})
		}
		if err := repo.InsertReturns(ctx, records); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record returns")
		}
		order.Returns = append(order.Returns, records...)

		phase = "draft"
		if after {
			phase = "confirmed"
			rate := DiscountRate(order.Items, order.TotalDiscount)
			credit = credit.Mul(decimal.NewFromInt(1).Sub(rate))
			orderRef := order.ID
			refModel := referenceModelReturn
			notes := fmt.Sprintf("return on dispatch order #%d", order.OrderNumber)
			balance, err := s.ledger.AppendTx(ctx, tx, &models.LedgerEntry{
				EntityID:        order.SupplierID,
				EntityModel:     enums.EntityModelSupplier,
				TransactionType: enums.LedgerTransactionReturn,
				Credit:          credit,
				Date:            returnedAt,
				ReferenceID:     &orderRef,
				ReferenceModel:  &refModel,
				Notes:           &notes,
				CreatedBy:       records[0].ReturnedBy,
			})
			if err != nil {
				return err
			}
			order.PaymentDetails.RemainingBalance = order.PaymentDetails.RemainingBalance.Sub(credit)
			order.PaymentDetails.OutstandingBalance = balance
			if err := repo.UpdateOrder(ctx, order); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payment details")
			}
		} else {
			credit = decimal.Zero
		}

		accepted = records
		saved = order
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventDispatchOrderReturned,
			AggregateType: enums.AggregateDispatchOrder,
			AggregateID:   order.ID,
			Actor:         actorRef(input.Actor),
			Data: payloads.DispatchOrderReturnedEvent{
				DispatchOrderID:   order.ID,
				SupplierID:        order.SupplierID,
				Lines:             lines,
				AfterConfirmation: after,
				CreditAmount:      credit,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	s.metrics.AddReturnedUnits(phase, units)
	if s.logg != nil {
		logCtx := s.logg.WithOrderID(ctx, saved.ID.String())
		logCtx = s.logg.WithFields(logCtx, map[string]any{"return_lines": len(accepted), "returned_units": units, "phase": phase})
		s.logg.Info(logCtx, "dispatch order returns recorded")
	}
	return toDetail(saved), nil
}

func (s *service) Delete(ctx context.Context, input TransitionInput) error {
	if err := requireAdmin(input.Actor, "delete"); err != nil {
		return err
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.load(ctx, repo, input.OrderID, true)
		if err != nil {
			return err
		}
		if order.Status == enums.DispatchOrderStatusConfirmed {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "confirmed dispatch orders cannot be deleted").
				WithDetails(map[string]any{"orderId": order.ID, "status": order.Status})
		}
		if err := repo.Delete(ctx, order.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete dispatch order")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logInfo(ctx, input.OrderID, "dispatch order deleted")
	return nil
}

func (s *service) load(ctx context.Context, repo Repository, orderID uuid.UUID, forUpdate bool) (*models.DispatchOrder, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	var (
		order *models.DispatchOrder
		err   error
	)
	if forUpdate {
		order, err = repo.FindByIDForUpdate(ctx, orderID)
	} else {
		order, err = repo.FindByID(ctx, orderID)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "dispatch order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load dispatch order")
	}
	return order, nil
}

func (s *service) logTransition(ctx context.Context, orderID uuid.UUID, from, to enums.DispatchOrderStatus) {
	if s.logg == nil {
		return
	}
	logCtx := s.logg.WithOrderID(ctx, orderID.String())
	logCtx = s.logg.WithFields(logCtx, map[string]any{"from": from, "to": to})
	s.logg.Info(logCtx, "dispatch order transitioned")
}

func (s *service) logInfo(ctx context.Context, orderID uuid.UUID, msg string) {
	if s.logg == nil {
		return
	}
	s.logg.Info(s.logg.WithOrderID(ctx, orderID.String()), msg)
}

// freezeQuantities records each final item's quantity net of the returns
// already recorded, so later returns reduce it further.
func freezeQuantities(order *models.DispatchOrder) types.ConfirmedQuantities {
	frozen := make(types.ConfirmedQuantities, 0, len(order.Items))
	for _, item := range order.Items {
		frozen = append(frozen, types.ConfirmedQuantity{
			LineItemID: item.ID,
			ItemIndex:  item.Position,
			Quantity:   ConfirmedQty(item, order.Returns, nil),
		})
	}
	return frozen
}

func toDetail(order *models.DispatchOrder) *OrderDetail {
	returns := make([]ReturnView, 0, len(order.Returns))
	for _, r := range order.Returns {
		returns = append(returns, ReturnView{
			ID:                r.ID,
			LineItemID:        r.LineItemID,
			ItemIndex:         r.ItemIndex,
			Quantity:          r.Quantity,
			Reason:            r.Reason,
			ReturnedAt:        r.ReturnedAt,
			ReturnedBy:        r.ReturnedBy,
			AfterConfirmation: r.AfterConfirmation,
		})
	}
	return &OrderDetail{
		ID:                    order.ID,
		OrderNumber:           order.OrderNumber,
		Status:                order.Status,
		SupplierID:            order.SupplierID,
		LogisticsCompanyID:    order.LogisticsCompanyID,
		DispatchDate:          order.DispatchDate,
		ExchangeRate:          order.ExchangeRate,
		Percentage:            order.Percentage,
		TotalDiscount:         order.TotalDiscount,
		TotalBoxes:            order.TotalBoxes,
		IsTotalBoxesConfirmed: order.IsTotalBoxesConfirmed,
		Boxes:                 order.Boxes,
		ConfirmedQuantities:   order.ConfirmedQuantities,
		PaymentDetails:        order.PaymentDetails,
		PaymentSnapshot:       order.PaymentSnapshot,
		Notes:                 order.Notes,
		SubmittedAt:           order.SubmittedAt,
		ConfirmedAt:           order.ConfirmedAt,
		ConfirmedBy:           order.ConfirmedBy,
		Returns:               returns,
		View:                  ComputeOrderView(order).Rounded(),
		CreatedAt:             order.CreatedAt,
		UpdatedAt:             order.UpdatedAt,
	}
}

func actorRef(actor Actor) *outbox.ActorRef {
	if actor.UserID == uuid.Nil {
		return nil
	}
	return &outbox.ActorRef{UserID: actor.UserID, Role: actor.Role.String()}
}

func dateOrNow(date *time.Time, now time.Time) time.Time {
	if date == nil || date.IsZero() {
		return now
	}
	return *date
}

func paymentNotes(notes string, orderNumber int64) string {
	if notes != "" {
		return notes
	}
	return fmt.Sprintf("payment for dispatch order #%d", orderNumber)
}
