package enums

import (
	"fmt"
	"slices"
	"strings"
)

// PaymentMethod is the settlement channel recorded on payment ledger rows.
type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "cash"
	PaymentMethodBank PaymentMethod = "bank"
)

// SettlementOrder is the order a split payment posts in: cash first, then
// bank, so a failed bank leg leaves the cash leg already recorded.
var SettlementOrder = []PaymentMethod{PaymentMethodCash, PaymentMethodBank}

var paymentMethodLabels = map[PaymentMethod]string{
	PaymentMethodCash: "Cash",
	PaymentMethodBank: "Bank transfer",
}

func (p PaymentMethod) String() string {
	return string(p)
}

func (p PaymentMethod) IsValid() bool {
	return slices.Contains(SettlementOrder, p)
}

// Label is the human name used on exported statements.
func (p PaymentMethod) Label() string {
	if label, ok := paymentMethodLabels[p]; ok {
		return label
	}
	return string(p)
}

// ParsePaymentMethod accepts the stored value in any letter case.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	method := PaymentMethod(strings.ToLower(strings.TrimSpace(value)))
	if !method.IsValid() {
		return "", fmt.Errorf("invalid payment method %q", value)
	}
	return method, nil
}
