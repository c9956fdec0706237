package dispatch

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/importops-backend/pkg/db/models"
	"github.com/angelmondragon/importops-backend/pkg/enums"
	"github.com/angelmondragon/importops-backend/pkg/money"
	"github.com/angelmondragon/importops-backend/pkg/types"
)

// ItemView is a line item with its derived quantities and amounts. Base
// currency amounts are zero while the order has no usable exchange rate.
type ItemView struct {
	ID                    uuid.UUID            `json:"id"`
	Position              int                  `json:"position"`
	OriginalIndex         *int                 `json:"originalIndex"`
	ProductName           string               `json:"productName"`
	ProductCode           string               `json:"productCode"`
	Quantity              int                  `json:"quantity"`
	CostPrice             decimal.Decimal      `json:"costPrice"`
	PrimaryColors         []string             `json:"primaryColors,omitempty"`
	Sizes                 []string             `json:"sizes,omitempty"`
	UseVariantTracking    bool                 `json:"useVariantTracking"`
	TotalReturned         int                  `json:"totalReturned"`
	ConfirmedQty          int                  `json:"confirmedQty"`
	SupplierPaymentAmount decimal.Decimal      `json:"supplierPaymentAmount"`
	LandedPrice           decimal.Decimal      `json:"landedPrice"`
	ItemTotal             decimal.Decimal      `json:"itemTotal"`
	CurrentPackets        []types.PacketBucket `json:"currentPackets,omitempty"`
}

// Totals are the order aggregates. Supplier* fields without a Base suffix are
// in supplier currency.
type Totals struct {
	OriginalQuantity      int             `json:"originalQuantity"`
	ConfirmedQuantity     int             `json:"confirmedQuantity"`
	OriginalSupplierTotal decimal.Decimal `json:"originalSupplierTotal"`
	SupplierTotal         decimal.Decimal `json:"supplierTotal"`
	Discount              decimal.Decimal `json:"discount"`
	DiscountRate          decimal.Decimal `json:"discountRate"`
	SupplierPayable       decimal.Decimal `json:"supplierPayable"`
	SupplierPaymentBase   decimal.Decimal `json:"supplierPaymentBase"`
	DiscountBase          decimal.Decimal `json:"discountBase"`
	LandedTotal           decimal.Decimal `json:"landedTotal"`
	TotalAmount           decimal.Decimal `json:"totalAmount"`
}

// RemainingSummary describes the effect of returns on the order.
type RemainingSummary struct {
	HasReturns         bool            `json:"hasReturns"`
	ReturnCount        int             `json:"returnCount"`
	ReturnedQuantity   int             `json:"returnedQuantity"`
	RemainingQuantity  int             `json:"remainingQuantity"`
	ItemsWithReturns   int             `json:"itemsWithReturns"`
	FullyReturnedItems int             `json:"fullyReturnedItems"`
	ReturnedValue      decimal.Decimal `json:"returnedValue"`
}

// OrderView is the derived read model of a dispatch order.
type OrderView struct {
	OrderID   uuid.UUID                 `json:"orderId"`
	Status    enums.DispatchOrderStatus `json:"status"`
	Converted bool                      `json:"converted"`
	Items     []ItemView                `json:"items"`
	Totals    Totals                    `json:"totals"`
	Remaining RemainingSummary          `json:"remainingSummary"`
}

// ComputeOrderView derives quantities, landed costs and totals from the order,
// its items and its return history. It does not modify the order and returns
// the same result for the same input.
func ComputeOrderView(order *models.DispatchOrder) OrderView {
	view := OrderView{
		OrderID:   order.ID,
		Status:    order.Status,
		Converted: order.ExchangeRate.IsPositive(),
		Items:     make([]ItemView, 0, len(order.Items)),
	}

	items := make([]models.DispatchOrderItem, len(order.Items))
	copy(items, order.Items)
	sort.SliceStable(items, func(i, j int) bool { return items[i].Position < items[j].Position })

	totals := Totals{
		OriginalSupplierTotal: decimal.Zero,
		SupplierTotal:         decimal.Zero,
		SupplierPaymentBase:   decimal.Zero,
		LandedTotal:           decimal.Zero,
	}
	remaining := RemainingSummary{
		HasReturns:    len(order.Returns) > 0,
		ReturnCount:   len(order.Returns),
		ReturnedValue: decimal.Zero,
	}

	for _, item := range items {
		returned := TotalReturned(order.Returns, item.ID)
		confirmed := ConfirmedQty(item, order.Returns, order.ConfirmedQuantities)
		iv := ItemView{
			ID:                    item.ID,
			Position:              item.Position,
			OriginalIndex:         item.OriginalIndex,
			ProductName:           item.ProductName,
			ProductCode:           item.ProductCode,
			Quantity:              item.Quantity,
			CostPrice:             item.CostPrice,
			PrimaryColors:         item.PrimaryColors,
			Sizes:                 item.Sizes,
			UseVariantTracking:    item.UseVariantTracking,
			TotalReturned:         returned,
			ConfirmedQty:          confirmed,
			SupplierPaymentAmount: decimal.Zero,
			LandedPrice:           decimal.Zero,
			ItemTotal:             decimal.Zero,
		}
		if len(item.Packets) > 0 {
			iv.CurrentPackets = ReallocatePackets(item.Packets, confirmed)
		}
		if view.Converted {
			cost, err := LandedCost(item.CostPrice, order.ExchangeRate, order.Percentage, confirmed)
			if err == nil {
				iv.SupplierPaymentAmount = cost.SupplierPaymentAmount
				iv.LandedPrice = cost.LandedPrice
				iv.ItemTotal = cost.ItemTotal
				totals.SupplierPaymentBase = totals.SupplierPaymentBase.Add(cost.SupplierPaymentAmount.Mul(decimal.NewFromInt(int64(confirmed))))
				totals.LandedTotal = totals.LandedTotal.Add(cost.ItemTotal)
			}
		}

		totals.OriginalQuantity += item.Quantity
		totals.ConfirmedQuantity += confirmed
		totals.OriginalSupplierTotal = totals.OriginalSupplierTotal.Add(item.CostPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
		totals.SupplierTotal = totals.SupplierTotal.Add(item.CostPrice.Mul(decimal.NewFromInt(int64(confirmed))))

		if returned > 0 {
			remaining.ItemsWithReturns++
			remaining.ReturnedQuantity += returned
			remaining.ReturnedValue = remaining.ReturnedValue.Add(item.CostPrice.Mul(decimal.NewFromInt(int64(returned))))
			if confirmed == 0 {
				remaining.FullyReturnedItems++
			}
		}
		remaining.RemainingQuantity += confirmed
		view.Items = append(view.Items, iv)
	}

	totals.DiscountRate = DiscountRate(items, order.TotalDiscount)
	totals.Discount = CurrentDiscount(items, order.Returns, order.ConfirmedQuantities, order.TotalDiscount)
	totals.SupplierPayable = totals.SupplierTotal.Sub(totals.Discount)
	totals.DiscountBase = decimal.Zero
	totals.TotalAmount = decimal.Zero
	if view.Converted {
		if base, err := money.Convert(totals.Discount, order.ExchangeRate); err == nil {
			totals.DiscountBase = base
		}
		totals.TotalAmount = totals.SupplierPaymentBase.Sub(totals.DiscountBase)
	}

	view.Totals = totals
	view.Remaining = remaining
	return view
}

// Rounded returns a copy with every amount rounded for presentation.
func (v OrderView) Rounded() OrderView {
	out := v
	out.Items = make([]ItemView, len(v.Items))
	for i, item := range v.Items {
		item.CostPrice = money.Round(item.CostPrice)
		item.SupplierPaymentAmount = money.Round(item.SupplierPaymentAmount)
		item.LandedPrice = money.Round(item.LandedPrice)
		item.ItemTotal = money.Round(item.ItemTotal)
		out.Items[i] = item
	}
	t := &out.Totals
	t.OriginalSupplierTotal = money.Round(t.OriginalSupplierTotal)
	t.SupplierTotal = money.Round(t.SupplierTotal)
	t.Discount = money.Round(t.Discount)
	t.DiscountRate = t.DiscountRate.Round(6)
	t.SupplierPayable = money.Round(t.SupplierPayable)
	t.SupplierPaymentBase = money.Round(t.SupplierPaymentBase)
	t.DiscountBase = money.Round(t.DiscountBase)
	t.LandedTotal = money.Round(t.LandedTotal)
	t.TotalAmount = money.Round(t.TotalAmount)
	out.Remaining.ReturnedValue = money.Round(out.Remaining.ReturnedValue)
	return out
}
