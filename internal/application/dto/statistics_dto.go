package dto

import (
	"github.com/bibbank/fraudwatch/internal/domain/model"
)

// StepStatisticResponse is one by-step group. TotalTransactions is the
// fraudCount*2 estimate, not a measured count.
type StepStatisticResponse struct {
	Step              int64   `json:"step"`
	FraudCount        int     `json:"fraudCount"`
	TotalAmount       float64 `json:"totalAmount"`
	TotalTransactions int     `json:"totalTransactions"`
}

// TypeStatisticResponse is one by-type group.
type TypeStatisticResponse struct {
	Type   string  `json:"type"`
	Count  int     `json:"count"`
	Amount float64 `json:"amount"`
}

// AmountRangeResponse is one non-empty amount bucket.
type AmountRangeResponse struct {
	Range   string  `json:"range"`
	Count   int     `json:"count"`
	AvgRisk float64 `json:"avgRisk"`
}

// StatisticsResponse is the dashboard summary over the recent sample.
type StatisticsResponse struct {
	FraudByStep  []StepStatisticResponse `json:"fraudByStep"`
	FraudByType  []TypeStatisticResponse `json:"fraudByType"`
	AmountRanges []AmountRangeResponse   `json:"amountRanges"`
	TotalFraud   int                     `json:"totalFraud"`
	TotalAmount  float64                 `json:"totalAmount"`
}

// LocationResponse is one synthetic geo bucket.
type LocationResponse struct {
	City           string            `json:"city"`
	Coordinates    model.Coordinates `json:"coordinates"`
	TransactionIDs []int64           `json:"transaction_ids"`
	TotalAmount    float64           `json:"total_amount"`
	AvgAmount      float64           `json:"avg_amount"`
	AvgRiskScore   float64           `json:"avg_risk_score"`
	Count          int               `json:"count"`
}

// FromStatistics maps aggregated statistics to the response DTO. Empty views
// render as empty arrays, never null.
func FromStatistics(s model.Statistics) StatisticsResponse {
	resp := StatisticsResponse{
		FraudByStep:  make([]StepStatisticResponse, 0, len(s.ByStep)),
		FraudByType:  make([]TypeStatisticResponse, 0, len(s.ByType)),
		AmountRanges: make([]AmountRangeResponse, 0, len(s.AmountRanges)),
		TotalFraud:   s.TotalFraud,
		TotalAmount:  s.TotalAmount.InexactFloat64(),
	}

	for _, st := range s.ByStep {
		resp.FraudByStep = append(resp.FraudByStep, StepStatisticResponse{
			Step:              st.Step,
			FraudCount:        st.FraudCount,
			TotalAmount:       st.TotalAmount.InexactFloat64(),
			TotalTransactions: st.EstimatedTransactions,
		})
	}
	for _, tt := range s.ByType {
		resp.FraudByType = append(resp.FraudByType, TypeStatisticResponse{
			Type:   tt.Type.String(),
			Count:  tt.Count,
			Amount: tt.Amount.InexactFloat64(),
		})
	}
	for _, r := range s.AmountRanges {
		resp.AmountRanges = append(resp.AmountRanges, AmountRangeResponse{
			Range:   r.Range,
			Count:   r.Count,
			AvgRisk: r.AvgRisk,
		})
	}

	return resp
}

// FromLocations maps geo buckets to response DTOs.
func FromLocations(locs []model.LocationStatistic) []LocationResponse {
	out := make([]LocationResponse, 0, len(locs))
	for _, l := range locs {
		out = append(out, LocationResponse{
			City:           l.City,
			Coordinates:    l.Coordinates,
			TransactionIDs: l.TransactionIDs,
			TotalAmount:    l.TotalAmount.InexactFloat64(),
			AvgAmount:      l.AvgAmount.InexactFloat64(),
			AvgRiskScore:   l.AvgRiskScore,
			Count:          l.Count,
		})
	}
	return out
}
