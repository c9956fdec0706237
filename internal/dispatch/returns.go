package dispatch

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/importops-backend/pkg/db/models"
	"github.com/angelmondragon/importops-backend/pkg/types"
)

// TotalReturned sums every return recorded against the line item.
func TotalReturned(returns []models.DispatchOrderReturn, lineItemID uuid.UUID) int {
	total := 0
	for _, r := range returns {
		if r.LineItemID == lineItemID {
			total += r.Quantity
		}
	}
	return total
}

func returnedAfterConfirmation(returns []models.DispatchOrderReturn, lineItemID uuid.UUID) int {
	total := 0
	for _, r := range returns {
		if r.LineItemID == lineItemID && r.AfterConfirmation {
			total += r.Quantity
		}
	}
	return total
}

// ConfirmedQty is the quantity of the item still in the order. A frozen
// confirmation quantity takes precedence and is only reduced by returns
// recorded after confirmation.
func ConfirmedQty(item models.DispatchOrderItem, returns []models.DispatchOrderReturn, frozen types.ConfirmedQuantities) int {
	if qty, ok := frozen.Lookup(item.ID); ok {
		return max(0, qty-returnedAfterConfirmation(returns, item.ID))
	}
	return max(0, item.Quantity-TotalReturned(returns, item.ID))
}

// DiscountRate is the discount as a share of the original supplier total,
// computed on ordered quantities. A zero total yields a zero rate.
func DiscountRate(items []models.DispatchOrderItem, discount decimal.Decimal) decimal.Decimal {
	original := decimal.Zero
	for _, item := range items {
		original = original.Add(item.CostPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	if original.IsZero() {
		return decimal.Zero
	}
	return discount.Div(original)
}

// CurrentDiscount returns the supplier-currency discount for the order as it
// stands now. Without returns it is the stored discount; once returns exist
// the original rate is applied to the current supplier total.
func CurrentDiscount(items []models.DispatchOrderItem, returns []models.DispatchOrderReturn, frozen types.ConfirmedQuantities, discount decimal.Decimal) decimal.Decimal {
	if len(returns) == 0 {
		return discount
	}
	current := decimal.Zero
	for _, item := range items {
		qty := ConfirmedQty(item, returns, frozen)
		current = current.Add(item.CostPrice.Mul(decimal.NewFromInt(int64(qty))))
	}
	return DiscountRate(items, discount).Mul(current)
}

// ReturnLine is one requested return inside a submission.
type ReturnLine struct {
	LineItemID uuid.UUID `json:"lineItemId"`
	ItemIndex  *int      `json:"itemIndex,omitempty"`
	Quantity   int       `json:"quantity"`
	Reason     string    `json:"reason,omitempty"`
}

// resolvedReturn is a validated line bound to its item.
type resolvedReturn struct {
	item models.DispatchOrderItem
	line ReturnLine
}

// ValidateReturns checks every line of a submission against the order and
// reports all problems at once. Quantities requested for the same item are
// summed before comparing against the remaining quantity.
func ValidateReturns(order *models.DispatchOrder, lines []ReturnLine) []Violation {
	_, violations := resolveReturns(order, lines)
	return violations
}

func resolveReturns(order *models.DispatchOrder, lines []ReturnLine) ([]resolvedReturn, []Violation) {
	var violations []Violation
	if len(lines) == 0 {
		return nil, []Violation{{Rule: RuleReturnLinesRequired, Field: "lines", Message: "at least one return line is required"}}
	}

	resolved := make([]resolvedReturn, 0, len(lines))
	requested := map[uuid.UUID]int{}
	for i, line := range lines {
		field := lineField("lines", i)
		item, ok := findItem(order.Items, line)
		if !ok {
			violations = append(violations, Violation{Rule: RuleReturnItemUnknown, Field: field, Message: "line item not found on this order"})
			continue
		}
		if line.Quantity <= 0 {
			violations = append(violations, Violation{Rule: RuleReturnQuantityInvalid, Field: field + ".quantity", Message: "return quantity must be greater than 0"})
			continue
		}
		requested[item.ID] += line.Quantity
		resolved = append(resolved, resolvedReturn{item: item, line: line})
	}

	for _, item := range order.Items {
		want, ok := requested[item.ID]
		if !ok {
			continue
		}
		remaining := ConfirmedQty(item, order.Returns, order.ConfirmedQuantities)
		if want > remaining {
			violations = append(violations, Violation{
				Rule:    RuleReturnExceedsRemaining,
				Field:   "lines",
				Message: "return quantity for " + itemLabel(item) + " exceeds remaining quantity",
				Details: map[string]any{"lineItemId": item.ID, "requested": want, "remaining": remaining},
			})
		}
	}
	if len(violations) > 0 {
		return nil, violations
	}
	return resolved, nil
}

func findItem(items []models.DispatchOrderItem, line ReturnLine) (models.DispatchOrderItem, bool) {
	for _, item := range items {
		if line.LineItemID != uuid.Nil && item.ID == line.LineItemID {
			return item, true
		}
		if line.LineItemID == uuid.Nil && line.ItemIndex != nil && item.Position == *line.ItemIndex {
			return item, true
		}
	}
	return models.DispatchOrderItem{}, false
}

func itemLabel(item models.DispatchOrderItem) string {
	if item.ProductCode != "" {
		return item.ProductCode
	}
	if item.ProductName != "" {
		return item.ProductName
	}
	return item.ID.String()
}
