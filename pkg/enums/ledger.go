package enums

import "fmt"

// EntityModel identifies the class of external party a ledger belongs to.
type EntityModel string

const (
	EntityModelSupplier         EntityModel = "supplier"
	EntityModelLogisticsCompany EntityModel = "logistics_company"
)

var validEntityModels = []EntityModel{
	EntityModelSupplier,
	EntityModelLogisticsCompany,
}

func (m EntityModel) String() string {
	return string(m)
}

func (m EntityModel) IsValid() bool {
	for _, candidate := range validEntityModels {
		if candidate == m {
			return true
		}
	}
	return false
}

func ParseEntityModel(value string) (EntityModel, error) {
	for _, candidate := range validEntityModels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid entity model %q", value)
}

// LedgerTransactionType classifies a ledger entry.
type LedgerTransactionType string

const (
	LedgerTransactionPurchase   LedgerTransactionType = "purchase"
	LedgerTransactionCharge     LedgerTransactionType = "charge"
	LedgerTransactionPayment    LedgerTransactionType = "payment"
	LedgerTransactionReturn     LedgerTransactionType = "return"
	LedgerTransactionAdjustment LedgerTransactionType = "adjustment"
)

var validLedgerTransactionTypes = []LedgerTransactionType{
	LedgerTransactionPurchase,
	LedgerTransactionCharge,
	LedgerTransactionPayment,
	LedgerTransactionReturn,
	LedgerTransactionAdjustment,
}

func (t LedgerTransactionType) String() string {
	return string(t)
}

func (t LedgerTransactionType) IsValid() bool {
	for _, candidate := range validLedgerTransactionTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

func ParseLedgerTransactionType(value string) (LedgerTransactionType, error) {
	for _, candidate := range validLedgerTransactionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ledger transaction type %q", value)
}

// RelevantTransactionTypes lists the transaction types that contribute to a
// party's balance.
func (m EntityModel) RelevantTransactionTypes() []LedgerTransactionType {
	switch m {
	case EntityModelSupplier:
		return []LedgerTransactionType{LedgerTransactionPurchase, LedgerTransactionPayment, LedgerTransactionReturn}
	case EntityModelLogisticsCompany:
		return []LedgerTransactionType{LedgerTransactionCharge, LedgerTransactionPayment, LedgerTransactionAdjustment}
	default:
		return nil
	}
}

// Accepts reports whether entries of type t count toward this party class.
func (m EntityModel) Accepts(t LedgerTransactionType) bool {
	for _, candidate := range m.RelevantTransactionTypes() {
		if candidate == t {
			return true
		}
	}
	return false
}
