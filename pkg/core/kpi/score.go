package kpi

import "efficiency_optimizer/pkg/models"

// scoreCap limits each benchmark ratio so one outlier cannot saturate
// the aggregate score.
const scoreCap = 1.30

// ScoreWeights controls the efficiency score contribution of each
// indicator. Weights are fractions; they need not sum to one, since the
// score normalizes over the weights of the available indicators.
type ScoreWeights struct {
	GrossMargin        float64
	OperatingMargin    float64
	NetMargin          float64
	RevenuePerEmployee float64
	CostEfficiency     float64
}

// DefaultScoreWeights returns the standard 30/25/20/15/10 weighting.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		GrossMargin:        0.30,
		OperatingMargin:    0.25,
		NetMargin:          0.20,
		RevenuePerEmployee: 0.15,
		CostEfficiency:     0.10,
	}
}

// Score aggregates the weighted benchmark ratios of the scored
// indicators into a 0-100 value. Indicators that are unavailable drop
// out of both numerator and denominator, so a partially populated record
// is scored on what it has rather than penalized for what it lacks.
func (w ScoreWeights) Score(set *models.KPIResultSet, bench Benchmarks) float64 {
	type term struct {
		name      string
		weight    float64
		benchmark float64
	}
	terms := []term{
		{GrossMargin, w.GrossMargin, bench.GrossMargin},
		{OperatingMargin, w.OperatingMargin, bench.OperatingMargin},
		{NetMargin, w.NetMargin, bench.NetMargin},
		{RevenuePerEmployee, w.RevenuePerEmployee, bench.RevenuePerEmployee},
		{CostEfficiency, w.CostEfficiency, bench.CostEfficiency},
	}

	var sum, totalWeight float64
	for _, t := range terms {
		r := set.Find(t.name)
		if r == nil || r.Value == nil || t.benchmark == 0 {
			continue
		}
		ratio := *r.Value / t.benchmark
		if ratio > scoreCap {
			ratio = scoreCap
		}
		if ratio < 0 {
			ratio = 0
		}
		sum += t.weight * ratio
		totalWeight += t.weight
	}
	if totalWeight == 0 {
		return 0
	}
	score := sum / totalWeight * 100
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}
