package service

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/bibbank/fraudwatch/internal/domain/model"
)

// Amount range labels, lowest first.
const (
	RangeUnder1K   = "0-1K"
	Range1KTo10K   = "1K-10K"
	Range10KTo50K  = "10K-50K"
	Range50KTo100K = "50K-100K"
	Range100KAndUp = "100K+"
)

// stepEstimateMul is the placeholder multiplier behind
// StepStatistic.EstimatedTransactions.
const stepEstimateMul = 2

// amountRangeOrder is numeric order. The legacy dashboard grouped by label
// and so listed ranges lexically (0-1K, 100K+, 10K-50K, ...); this view
// intentionally does not.
var amountRangeOrder = []string{RangeUnder1K, Range1KTo10K, Range10KTo50K, Range50KTo100K, Range100KAndUp}

// AmountRange buckets amount into half-open intervals [lo, hi); the last
// bucket is unbounded. A non-finite amount counts as 0.
func AmountRange(amount float64) string {
	switch {
	case !model.IsFinite(amount), amount < 1000:
		return RangeUnder1K
	case amount < 10000:
		return Range1KTo10K
	case amount < 50000:
		return Range10KTo50K
	case amount < 100000:
		return Range50KTo100K
	default:
		return Range100KAndUp
	}
}

// LocationIndex assigns a flagged record to a geo bucket with
// (id + floor(amount) + step) mod n. The result is always in [0, n).
// A non-finite amount counts as 0.
func LocationIndex(id int64, amount float64, step int64, n int) int {
	if !model.IsFinite(amount) {
		amount = 0
	}
	sum := id + int64(math.Floor(amount)) + step
	idx := sum % int64(n)
	if idx < 0 {
		idx = -idx
	}
	return int(idx)
}

// Aggregate derives every summary view from a set of flagged records. It is
// pure: the input is not modified and nothing outside it is read. Empty
// input yields empty views and zero totals.
func Aggregate(flagged []model.FlaggedTransaction) model.Statistics {
	return model.Statistics{
		ByStep:       aggregateByStep(flagged),
		ByType:       aggregateByType(flagged),
		AmountRanges: aggregateAmountRanges(flagged),
		Geo:          AggregateGeo(flagged),
		TotalFraud:   len(flagged),
		TotalAmount:  sumAmounts(flagged),
	}
}

func aggregateByStep(flagged []model.FlaggedTransaction) []model.StepStatistic {
	groups := make(map[int64]*model.StepStatistic)
	for _, f := range flagged {
		g, ok := groups[f.Step]
		if !ok {
			g = &model.StepStatistic{Step: f.Step, TotalAmount: decimal.Zero}
			groups[f.Step] = g
		}
		g.FraudCount++
		g.TotalAmount = g.TotalAmount.Add(amountOf(f))
	}

	out := make([]model.StepStatistic, 0, len(groups))
	for _, g := range groups {
		g.EstimatedTransactions = g.FraudCount * stepEstimateMul
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Step < out[j].Step })
	return out
}

func aggregateByType(flagged []model.FlaggedTransaction) []model.TypeStatistic {
	groups := make(map[model.TransactionType]*model.TypeStatistic)
	for _, f := range flagged {
		g, ok := groups[f.Type]
		if !ok {
			g = &model.TypeStatistic{Type: f.Type, Amount: decimal.Zero}
			groups[f.Type] = g
		}
		g.Count++
		g.Amount = g.Amount.Add(amountOf(f))
	}

	out := make([]model.TypeStatistic, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

func aggregateAmountRanges(flagged []model.FlaggedTransaction) []model.AmountRangeStatistic {
	counts := make(map[string]int)
	riskSums := make(map[string]int)
	for _, f := range flagged {
		r := AmountRange(f.Amount)
		counts[r]++
		riskSums[r] += f.Confidence
	}

	out := make([]model.AmountRangeStatistic, 0, len(counts))
	for _, r := range amountRangeOrder {
		n := counts[r]
		if n == 0 {
			continue
		}
		out = append(out, model.AmountRangeStatistic{
			Range:   r,
			Count:   n,
			AvgRisk: float64(riskSums[r]) / float64(n),
		})
	}
	return out
}

// AggregateGeo groups flagged records into the synthetic geo buckets.
// Buckets appear in the order their first record appears in the input.
func AggregateGeo(flagged []model.FlaggedTransaction) []model.LocationStatistic {
	order := make([]int, 0)
	groups := make(map[int]*model.LocationStatistic)
	riskSums := make(map[int]int)

	for _, f := range flagged {
		idx := LocationIndex(f.ID, f.Amount, f.Step, len(Locations))
		g, ok := groups[idx]
		if !ok {
			loc := Locations[idx]
			g = &model.LocationStatistic{
				City:           loc.City,
				Coordinates:    loc.Coordinates,
				TotalAmount:    decimal.Zero,
				TransactionIDs: make([]int64, 0),
			}
			groups[idx] = g
			order = append(order, idx)
		}
		g.Count++
		g.TotalAmount = g.TotalAmount.Add(amountOf(f))
		g.TransactionIDs = append(g.TransactionIDs, f.ID)
		riskSums[idx] += f.Confidence
	}

	out := make([]model.LocationStatistic, 0, len(order))
	for _, idx := range order {
		g := groups[idx]
		count := decimal.NewFromInt(int64(g.Count))
		g.AvgAmount = g.TotalAmount.DivRound(count, 8)
		g.AvgRiskScore = float64(riskSums[idx]) / float64(g.Count)
		out = append(out, *g)
	}
	return out
}

// amountOf converts an amount for summing. Rows stored before input was
// screened for NaN and ±Inf count as 0 instead of failing the whole view.
func amountOf(f model.FlaggedTransaction) decimal.Decimal {
	if !model.IsFinite(f.Amount) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f.Amount)
}

func sumAmounts(flagged []model.FlaggedTransaction) decimal.Decimal {
	total := decimal.Zero
	for _, f := range flagged {
		total = total.Add(amountOf(f))
	}
	return total
}
