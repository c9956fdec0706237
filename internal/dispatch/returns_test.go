package dispatch

import (
	"testing"

	"github.com/google/uuid"

	"github.com/angelmondragon/importops-backend/pkg/db/models"
	"github.com/angelmondragon/importops-backend/pkg/enums"
	"github.com/angelmondragon/importops-backend/pkg/types"
)

func TestValidateReturnsRejectsOverReturn(t *testing.T) {
	item := testItem(0, 10, "5")
	order := &models.DispatchOrder{ID: uuid.New(), Items: []models.DispatchOrderItem{item}}

	violations := ValidateReturns(order, []ReturnLine{{LineItemID: item.ID, Quantity: 15}})
	if len(violations) != 1 || violations[0].Rule != RuleReturnExceedsRemaining {
		t.Fatalf("expected over-return violation, got %+v", violations)
	}
	if len(order.Returns) != 0 {
		t.Fatalf("validation must not mutate the order")
	}
}

func TestValidateReturnsSumsLinesPerItem(t *testing.T) {
	item := testItem(0, 10, "5")
	order := &models.DispatchOrder{
		ID:      uuid.New(),
		Items:   []models.DispatchOrderItem{item},
		Returns: []models.DispatchOrderReturn{returnOf(item, 4, false)},
	}

	violations := ValidateReturns(order, []ReturnLine{
		{LineItemID: item.ID, Quantity: 3},
		{LineItemID: item.ID, Quantity: 4},
	})
	if len(violations) != 1 || violations[0].Rule != RuleReturnExceedsRemaining {
		t.Fatalf("expected cumulative check to fail, got %+v", violations)
	}
	if got := ValidateReturns(order, []ReturnLine{{LineItemID: item.ID, Quantity: 6}}); len(got) != 0 {
		t.Fatalf("returning the exact remainder must pass, got %+v", got)
	}
}

func TestValidateReturnsReportsEveryBadLine(t *testing.T) {
	item := testItem(0, 10, "5")
	order := &models.DispatchOrder{ID: uuid.New(), Items: []models.DispatchOrderItem{item}}

	violations := ValidateReturns(order, []ReturnLine{
		{LineItemID: uuid.New(), Quantity: 1},
		{LineItemID: item.ID, Quantity: 0},
	})
	if len(violations) != 2 {
		t.Fatalf("expected two violations, got %+v", violations)
	}
	if violations[0].Rule != RuleReturnItemUnknown || violations[1].Rule != RuleReturnQuantityInvalid {
		t.Fatalf("unexpected rules %+v", violations)
	}
	if got := ValidateReturns(order, nil); len(got) != 1 || got[0].Rule != RuleReturnLinesRequired {
		t.Fatalf("expected empty submission to be rejected, got %+v", got)
	}
}

func TestValidateReturnsByItemIndex(t *testing.T) {
	a := testItem(0, 2, "5")
	b := testItem(1, 3, "5")
	order := &models.DispatchOrder{ID: uuid.New(), Items: []models.DispatchOrderItem{a, b}}
	idx := 1

	resolved, violations := resolveReturns(order, []ReturnLine{{ItemIndex: &idx, Quantity: 3}})
	if len(violations) != 0 {
		t.Fatalf("unexpected violations %+v", violations)
	}
	if resolved[0].item.ID != b.ID {
		t.Fatalf("expected item at position 1")
	}
}

func TestValidateReturnsUsesFrozenQuantityAfterConfirmation(t *testing.T) {
	item := testItem(0, 10, "5")
	order := &models.DispatchOrder{
		ID:                  uuid.New(),
		Status:              enums.DispatchOrderStatusConfirmed,
		Items:               []models.DispatchOrderItem{item},
		Returns:             []models.DispatchOrderReturn{returnOf(item, 2, false)},
		ConfirmedQuantities: types.ConfirmedQuantities{{LineItemID: item.ID, Quantity: 8}},
	}

	if got := ValidateReturns(order, []ReturnLine{{LineItemID: item.ID, Quantity: 9}}); len(got) != 1 {
		t.Fatalf("expected 9 > 8 to fail, got %+v", got)
	}
	if got := ValidateReturns(order, []ReturnLine{{LineItemID: item.ID, Quantity: 8}}); len(got) != 0 {
		t.Fatalf("expected 8 to pass, got %+v", got)
	}
}
