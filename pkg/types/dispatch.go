package types

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PacketBucket is one color/size grouping inside a packet.
type PacketBucket struct {
	Color    string `json:"color"`
	Size     string `json:"size"`
	Quantity int    `json:"quantity"`
}

// Packet is a grouped sub-unit of a line item's quantity.
type Packet struct {
	Label       string         `json:"label,omitempty"`
	Composition []PacketBucket `json:"composition"`
}

// Total is the number of units across all buckets of the packet.
func (p Packet) Total() int {
	total := 0
	for _, bucket := range p.Composition {
		total += bucket.Quantity
	}
	return total
}

type Packets []Packet

// Total is the number of units across every packet.
func (ps Packets) Total() int {
	total := 0
	for _, p := range ps {
		total += p.Total()
	}
	return total
}

// Box is a structured box record parsed from the free-text box list.
type Box struct {
	BoxNumber int `json:"boxNumber"`
}

// ConfirmedQuantity freezes a line item's quantity at confirmation time.
type ConfirmedQuantity struct {
	LineItemID uuid.UUID `json:"lineItemId"`
	ItemIndex  int       `json:"itemIndex"`
	Quantity   int       `json:"quantity"`
}

type ConfirmedQuantities []ConfirmedQuantity

// Lookup returns the frozen quantity for a line item.
func (cq ConfirmedQuantities) Lookup(lineItemID uuid.UUID) (int, bool) {
	for _, entry := range cq {
		if entry.LineItemID == lineItemID {
			return entry.Quantity, true
		}
	}
	return 0, false
}

// PaymentDetails are the supplier-currency payment figures kept on the order.
type PaymentDetails struct {
	CashPayment        decimal.Decimal `json:"cashPayment"`
	BankPayment        decimal.Decimal `json:"bankPayment"`
	RemainingBalance   decimal.Decimal `json:"remainingBalance"`
	OutstandingBalance decimal.Decimal `json:"outstandingBalance"`
}

// PaymentSnapshot is the financial snapshot emitted when an order is confirmed.
type PaymentSnapshot struct {
	CashPayment  decimal.Decimal `json:"cashPayment"`
	BankPayment  decimal.Decimal `json:"bankPayment"`
	ExchangeRate decimal.Decimal `json:"exchangeRate"`
	Percentage   decimal.Decimal `json:"percentage"`
	Discount     decimal.Decimal `json:"discount"`
}
