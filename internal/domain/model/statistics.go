package model

import "github.com/shopspring/decimal"

// StepStatistic groups flagged transactions by time step.
// EstimatedTransactions is FraudCount*2, a placeholder estimate rather than a
// measured total.
type StepStatistic struct {
	TotalAmount           decimal.Decimal
	Step                  int64
	FraudCount            int
	EstimatedTransactions int
}

// TypeStatistic groups flagged transactions by transaction type.
type TypeStatistic struct {
	Amount decimal.Decimal
	Type   TransactionType
	Count  int
}

// AmountRangeStatistic groups flagged transactions by amount bucket.
type AmountRangeStatistic struct {
	Range   string
	Count   int
	AvgRisk float64
}

// Coordinates locates a geo bucket for map display.
type Coordinates struct {
	District string  `json:"district"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
}

// LocationStatistic is one synthetic geo bucket. The assignment of records to
// locations is a deterministic demo partition, not a real geography.
type LocationStatistic struct {
	TotalAmount    decimal.Decimal
	AvgAmount      decimal.Decimal
	City           string
	Coordinates    Coordinates
	TransactionIDs []int64
	Count          int
	AvgRiskScore   float64
}

// Statistics is the full set of derived views over a flagged sample.
type Statistics struct {
	TotalAmount  decimal.Decimal
	ByStep       []StepStatistic
	ByType       []TypeStatistic
	AmountRanges []AmountRangeStatistic
	Geo          []LocationStatistic
	TotalFraud   int
}
