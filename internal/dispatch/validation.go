package dispatch

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/angelmondragon/importops-backend/pkg/db/models"
)

const (
	RuleSupplierImmutable        = "supplier_immutable"
	RuleLogisticsCompanyRequired = "logistics_company_required"
	RuleDispatchDateRequired     = "dispatch_date_required"
	RuleExchangeRateInvalid      = "exchange_rate_invalid"
	RulePercentageInvalid        = "percentage_invalid"
	RuleDiscountInvalid          = "discount_invalid"
	RuleTotalBoxesInvalid        = "total_boxes_invalid"
	RuleItemsRequired            = "items_required"
	RuleItemUnknown              = "item_unknown"
	RuleItemProductRequired      = "item_product_required"
	RuleItemNotVerified          = "item_not_verified"
	RuleItemQuantityInvalid      = "item_quantity_invalid"
	RuleItemCostInvalid          = "item_cost_invalid"
	RuleItemBelowReturned        = "item_quantity_below_returned"
	RuleRemovedItemHasReturns    = "removed_item_has_returns"
	RuleTotalBoxesRequired       = "total_boxes_required"
	RuleBoxesNotConfirmed        = "boxes_not_confirmed"
	RulePaymentInvalid           = "payment_amount_invalid"
	RuleReturnLinesRequired      = "return_lines_required"
	RuleReturnItemUnknown        = "return_item_unknown"
	RuleReturnQuantityInvalid    = "return_quantity_invalid"
	RuleReturnExceedsRemaining   = "return_exceeds_remaining"
)

// ValidateForConfirm runs the confirmation gate against the order with the
// operator's changes applied. Every failed rule is reported.
func ValidateForConfirm(order *models.DispatchOrder, state ConfirmationState) ValidationResult {
	_, result := prepareConfirmation(order, state)
	return result
}

// prepareConfirmation returns the order as it would be confirmed together
// with the gate result. The input order is not modified.
func prepareConfirmation(order *models.DispatchOrder, state ConfirmationState) (*models.DispatchOrder, ValidationResult) {
	draft := *order
	boxCountChanged := applyHeader(&draft, state.Header)
	violations := headerViolations(state.Header)

	items, itemViolations := assembleItems(order, state.Items, false)
	violations = append(violations, itemViolations...)
	draft.Items = items

	if draft.LogisticsCompanyID == nil || *draft.LogisticsCompanyID == uuid.Nil {
		violations = append(violations, Violation{Rule: RuleLogisticsCompanyRequired, Field: "logisticsCompanyId", Message: "logistics company must be selected"})
	}
	if draft.DispatchDate == nil || draft.DispatchDate.IsZero() {
		violations = append(violations, Violation{Rule: RuleDispatchDateRequired, Field: "dispatchDate", Message: "dispatch date must be set"})
	}
	if !draft.ExchangeRate.IsPositive() && state.Header.ExchangeRate == nil {
		violations = append(violations, Violation{Rule: RuleExchangeRateInvalid, Field: "exchangeRate", Message: "exchange rate must be greater than 0"})
	}
	if len(items) == 0 {
		violations = append(violations, Violation{Rule: RuleItemsRequired, Field: "items", Message: "at least one item is required"})
	}

	originals := make(map[uuid.UUID]struct{}, len(order.Items))
	for _, item := range order.Items {
		originals[item.ID] = struct{}{}
	}
	verified := make(map[uuid.UUID]struct{}, len(state.VerifiedItemIDs))
	for _, id := range state.VerifiedItemIDs {
		verified[id] = struct{}{}
	}
	for i, item := range items {
		field := lineField("items", i)
		if _, original := originals[item.ID]; original {
			if _, ok := verified[item.ID]; !ok {
				violations = append(violations, Violation{Rule: RuleItemNotVerified, Field: field, Message: fmt.Sprintf("item %s must be verified", itemLabel(item))})
			}
		}
		if item.Quantity <= 0 {
			violations = append(violations, Violation{Rule: RuleItemQuantityInvalid, Field: field + ".quantity", Message: fmt.Sprintf("item %s quantity must be greater than 0", itemLabel(item))})
		}
	}

	boxesConfirmed := state.BoxesConfirmed || (order.IsTotalBoxesConfirmed && !boxCountChanged)
	if draft.TotalBoxes <= 0 {
		violations = append(violations, Violation{Rule: RuleTotalBoxesRequired, Field: "totalBoxes", Message: "total boxes must be greater than 0"})
	} else if !boxesConfirmed {
		violations = append(violations, Violation{Rule: RuleBoxesNotConfirmed, Field: "boxesConfirmed", Message: "total boxes must be confirmed"})
	}
	draft.IsTotalBoxesConfirmed = boxesConfirmed

	return &draft, ValidationResult{Valid: len(violations) == 0, Errors: nonNil(violations)}
}

func headerViolations(patch HeaderPatch) []Violation {
	var violations []Violation
	if patch.ExchangeRate != nil && !patch.ExchangeRate.IsPositive() {
		violations = append(violations, Violation{Rule: RuleExchangeRateInvalid, Field: "exchangeRate", Message: "exchange rate must be greater than 0"})
	}
	if patch.Percentage != nil && patch.Percentage.IsNegative() {
		violations = append(violations, Violation{Rule: RulePercentageInvalid, Field: "percentage", Message: "percentage must not be negative"})
	}
	if patch.TotalDiscount != nil && patch.TotalDiscount.IsNegative() {
		violations = append(violations, Violation{Rule: RuleDiscountInvalid, Field: "totalDiscount", Message: "discount must not be negative"})
	}
	if patch.TotalBoxes != nil && *patch.TotalBoxes < 0 {
		violations = append(violations, Violation{Rule: RuleTotalBoxesInvalid, Field: "totalBoxes", Message: "total boxes must not be negative"})
	}
	return violations
}

func lineField(prefix string, i int) string {
	return fmt.Sprintf("%s[%d]", prefix, i)
}

func nonNil(violations []Violation) []Violation {
	if violations == nil {
		return []Violation{}
	}
	return violations
}

func rulesOf(violations []Violation) []string {
	rules := make([]string, 0, len(violations))
	for _, v := range violations {
		rules = append(rules, v.Rule)
	}
	return rules
}
