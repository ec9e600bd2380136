package service

import "github.com/bibbank/fraudwatch/internal/domain/model"

// Feature column names as the classifier was trained on them.
const (
	FeatureStep           = "step"
	FeatureType           = "type"
	FeatureAmount         = "amount"
	FeatureOldBalanceOrig = "oldbalanceOrg"
	FeatureNewBalanceOrig = "newbalanceOrig"
	FeatureOldBalanceDest = "oldbalanceDest"
	FeatureNewBalanceDest = "newbalanceDest"
	FeatureFlaggedFraud   = "isFlaggedFraud"
)

// DefaultFeatures is the training column order of the PaySim classifier.
var DefaultFeatures = []string{
	FeatureStep,
	FeatureType,
	FeatureAmount,
	FeatureOldBalanceOrig,
	FeatureNewBalanceOrig,
	FeatureOldBalanceDest,
	FeatureNewBalanceDest,
	FeatureFlaggedFraud,
}

// typeCodes is the label encoding of the type column, assigned in sorted order.
var typeCodes = map[model.TransactionType]float64{
	model.TypeCashIn:   0,
	model.TypeCashOut:  1,
	model.TypeDebit:    2,
	model.TypePayment:  3,
	model.TypeTransfer: 4,
}

// UnknownTypeCode encodes a type outside the five known values.
const UnknownTypeCode = -1

// EncodeType returns the classifier's numeric code for t.
func EncodeType(t model.TransactionType) float64 {
	if code, ok := typeCodes[t]; ok {
		return code
	}
	return UnknownTypeCode
}

// FeatureVector lays r out in the given column order. Identity columns are
// never emitted; any column the record does not carry is filled with 0.
func FeatureVector(r model.TransactionRecord, columns []string) []float64 {
	vec := make([]float64, len(columns))
	for i, col := range columns {
		switch col {
		case FeatureStep:
			vec[i] = float64(r.Step)
		case FeatureType:
			vec[i] = EncodeType(r.Type)
		case FeatureAmount:
			vec[i] = r.Amount
		case FeatureOldBalanceOrig:
			vec[i] = r.OldBalanceOrig
		case FeatureNewBalanceOrig:
			vec[i] = r.NewBalanceOrig
		case FeatureOldBalanceDest:
			vec[i] = r.OldBalanceDest
		case FeatureNewBalanceDest:
			vec[i] = r.NewBalanceDest
		default:
			vec[i] = 0
		}
	}
	return vec
}
