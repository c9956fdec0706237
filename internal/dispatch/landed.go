package dispatch

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/importops-backend/pkg/money"
)

// LineCost holds the base-currency figures of one line item.
type LineCost struct {
	SupplierPaymentAmount decimal.Decimal
	LandedPrice           decimal.Decimal
	ItemTotal             decimal.Decimal
}

// LandedCost converts a supplier-currency unit cost into base currency and
// applies the markup. quantity should be the current confirmed quantity.
func LandedCost(costPrice, exchangeRate, percentage decimal.Decimal, quantity int) (LineCost, error) {
	supplierPayment, err := money.Convert(costPrice, exchangeRate)
	if err != nil {
		return LineCost{}, err
	}
	landed := money.Markup(supplierPayment, percentage)
	return LineCost{
		SupplierPaymentAmount: supplierPayment,
		LandedPrice:           landed,
		ItemTotal:             landed.Mul(decimal.NewFromInt(int64(quantity))),
	}, nil
}
