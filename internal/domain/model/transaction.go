package model

import "math"

// TransactionType is the categorical kind of a ledger movement.
type TransactionType string

const (
	TypeTransfer TransactionType = "TRANSFER"
	TypeCashOut  TransactionType = "CASH_OUT"
	TypeCashIn   TransactionType = "CASH_IN"
	TypePayment  TransactionType = "PAYMENT"
	TypeDebit    TransactionType = "DEBIT"
)

// String returns the string representation.
func (t TransactionType) String() string {
	return string(t)
}

// IsKnown reports whether t is one of the five recognised types.
func (t TransactionType) IsKnown() bool {
	switch t {
	case TypeTransfer, TypeCashOut, TypeCashIn, TypePayment, TypeDebit:
		return true
	default:
		return false
	}
}

// TransactionRecord is one normalized input row. Every numeric field holds a
// value; absent inputs were already replaced by zero in RawTransaction.Normalize.
type TransactionRecord struct {
	Type           TransactionType `json:"type"`
	NameOrig       string          `json:"nameOrig,omitempty"`
	NameDest       string          `json:"nameDest,omitempty"`
	Step           int64           `json:"step"`
	Amount         float64         `json:"amount"`
	OldBalanceOrig float64         `json:"oldbalanceOrg"`
	NewBalanceOrig float64         `json:"newbalanceOrig"`
	OldBalanceDest float64         `json:"oldbalanceDest"`
	NewBalanceDest float64         `json:"newbalanceDest"`
}

// RawTransaction is a row as it arrives from an upstream parser, with every
// field optional. A nil pointer means the cell was absent or unparsable.
type RawTransaction struct {
	Step           *int64   `json:"step,omitempty"`
	Type           *string  `json:"type,omitempty"`
	Amount         *float64 `json:"amount,omitempty"`
	OldBalanceOrig *float64 `json:"oldbalanceOrg,omitempty"`
	NewBalanceOrig *float64 `json:"newbalanceOrig,omitempty"`
	OldBalanceDest *float64 `json:"oldbalanceDest,omitempty"`
	NewBalanceDest *float64 `json:"newbalanceDest,omitempty"`
	NameOrig       *string  `json:"nameOrig,omitempty"`
	NameDest       *string  `json:"nameDest,omitempty"`
}

// Normalize fills every absent field with its zero value. It is the only
// place defaults are applied; scoring never sees a missing field.
func (r RawTransaction) Normalize() TransactionRecord {
	return TransactionRecord{
		Step:           derefInt(r.Step),
		Type:           TransactionType(derefString(r.Type)),
		Amount:         derefFloat(r.Amount),
		OldBalanceOrig: derefFloat(r.OldBalanceOrig),
		NewBalanceOrig: derefFloat(r.NewBalanceOrig),
		OldBalanceDest: derefFloat(r.OldBalanceDest),
		NewBalanceDest: derefFloat(r.NewBalanceDest),
		NameOrig:       derefString(r.NameOrig),
		NameDest:       derefString(r.NameDest),
	}
}

// NormalizeAll applies Normalize to every row, preserving order.
func NormalizeAll(rows []RawTransaction) []TransactionRecord {
	records := make([]TransactionRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.Normalize())
	}
	return records
}

func derefInt(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}

// derefFloat defaults NaN and ±Inf like an absent value; no rule or sum
// can use them.
func derefFloat(v *float64) float64 {
	if v == nil || !IsFinite(*v) {
		return 0
	}
	return *v
}

// IsFinite reports whether v is neither NaN nor ±Inf.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
