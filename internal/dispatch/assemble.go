package dispatch

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/angelmondragon/importops-backend/pkg/db/models"
)

// applyHeader copies the patch onto order and reports whether the box count
// changed, which voids an earlier boxes confirmation.
func applyHeader(order *models.DispatchOrder, patch HeaderPatch) bool {
	if patch.LogisticsCompanyID != nil {
		id := *patch.LogisticsCompanyID
		order.LogisticsCompanyID = &id
	}
	if patch.DispatchDate != nil {
		date := *patch.DispatchDate
		order.DispatchDate = &date
	}
	if patch.ExchangeRate != nil {
		order.ExchangeRate = *patch.ExchangeRate
	}
	if patch.Percentage != nil {
		order.Percentage = *patch.Percentage
	}
	if patch.TotalDiscount != nil {
		order.TotalDiscount = *patch.TotalDiscount
	}
	if patch.Notes != nil {
		notes := *patch.Notes
		order.Notes = &notes
	}
	changed := false
	if patch.TotalBoxes != nil && *patch.TotalBoxes != order.TotalBoxes {
		order.TotalBoxes = *patch.TotalBoxes
		order.IsTotalBoxesConfirmed = false
		changed = true
	}
	return changed
}

// assembleItems builds the final item list: edits override the stored fields,
// removed items are excluded and new items are appended. Positions are
// renumbered in display order. New items keep a nil original index unless
// asOriginal is set, which drafts use because their additions still need
// verification at confirmation.
func assembleItems(order *models.DispatchOrder, changes ItemChanges, asOriginal bool) ([]models.DispatchOrderItem, []Violation) {
	var violations []Violation

	known := make(map[uuid.UUID]struct{}, len(order.Items))
	for _, item := range order.Items {
		known[item.ID] = struct{}{}
	}
	removed := make(map[uuid.UUID]struct{}, len(changes.RemovedItemIDs))
	for i, id := range changes.RemovedItemIDs {
		if _, ok := known[id]; !ok {
			violations = append(violations, Violation{Rule: RuleItemUnknown, Field: lineField("removedItemIds", i), Message: fmt.Sprintf("item %s not found on this order", id)})
			continue
		}
		removed[id] = struct{}{}
	}
	edits := make(map[uuid.UUID]ItemEdit, len(changes.Edits))
	for i, edit := range changes.Edits {
		if _, ok := known[edit.ID]; !ok {
			violations = append(violations, Violation{Rule: RuleItemUnknown, Field: lineField("edits", i), Message: fmt.Sprintf("item %s not found on this order", edit.ID)})
			continue
		}
		edits[edit.ID] = edit
	}

	current := make([]models.DispatchOrderItem, len(order.Items))
	copy(current, order.Items)
	sort.SliceStable(current, func(i, j int) bool { return current[i].Position < current[j].Position })

	items := make([]models.DispatchOrderItem, 0, len(current)+len(changes.NewItems))
	for _, item := range current {
		returned := TotalReturned(order.Returns, item.ID)
		if _, ok := removed[item.ID]; ok {
			if returned > 0 {
				violations = append(violations, Violation{Rule: RuleRemovedItemHasReturns, Field: "removedItemIds", Message: fmt.Sprintf("item %s has returns and cannot be removed", itemLabel(item))})
			}
			continue
		}
		if edit, ok := edits[item.ID]; ok {
			applyEdit(&item, edit)
		}
		if item.Quantity < returned {
			violations = append(violations, Violation{
				Rule:    RuleItemBelowReturned,
				Field:   lineField("items", len(items)) + ".quantity",
				Message: fmt.Sprintf("item %s quantity cannot be below the %d units already returned", itemLabel(item), returned),
			})
		}
		items = append(items, item)
	}

	for i, add := range changes.NewItems {
		item := models.DispatchOrderItem{
			ID:                 uuid.New(),
			DispatchOrderID:    order.ID,
			ProductName:        add.ProductName,
			ProductCode:        add.ProductCode,
			Quantity:           add.Quantity,
			CostPrice:          add.CostPrice,
			PrimaryColors:      add.PrimaryColors,
			Sizes:              add.Sizes,
			Packets:            add.Packets,
			UseVariantTracking: add.UseVariantTracking,
		}
		if item.ProductName == "" && item.ProductCode == "" {
			violations = append(violations, Violation{Rule: RuleItemProductRequired, Field: lineField("newItems", i), Message: "new items need a product name or code"})
		}
		items = append(items, item)
	}

	for i := range items {
		items[i].Position = i
		if asOriginal && items[i].OriginalIndex == nil {
			idx := i
			items[i].OriginalIndex = &idx
		}
		if asOriginal && items[i].Quantity < 0 {
			violations = append(violations, Violation{Rule: RuleItemQuantityInvalid, Field: lineField("items", i) + ".quantity", Message: fmt.Sprintf("item %s quantity must not be negative", itemLabel(items[i]))})
		}
		if items[i].CostPrice.IsNegative() {
			violations = append(violations, Violation{Rule: RuleItemCostInvalid, Field: lineField("items", i) + ".costPrice", Message: fmt.Sprintf("item %s cost price must not be negative", itemLabel(items[i]))})
		}
	}
	return items, violations
}

func applyEdit(item *models.DispatchOrderItem, edit ItemEdit) {
	if edit.ProductName != nil {
		item.ProductName = *edit.ProductName
	}
	if edit.ProductCode != nil {
		item.ProductCode = *edit.ProductCode
	}
	if edit.Quantity != nil {
		item.Quantity = *edit.Quantity
	}
	if edit.CostPrice != nil {
		item.CostPrice = *edit.CostPrice
	}
	if edit.PrimaryColors != nil {
		item.PrimaryColors = *edit.PrimaryColors
	}
	if edit.Sizes != nil {
		item.Sizes = *edit.Sizes
	}
	if edit.Packets != nil {
		item.Packets = *edit.Packets
	}
	if edit.UseVariantTracking != nil {
		item.UseVariantTracking = *edit.UseVariantTracking
	}
}
