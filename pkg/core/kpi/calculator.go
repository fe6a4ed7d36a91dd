package kpi

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"efficiency_optimizer/pkg/models"
)

// Canonical indicator names. Consumers index result sets by these, so
// every name below gets a slot in each result set even when its inputs
// are missing.
const (
	GrossMargin        = "gross_margin"
	OperatingMargin    = "operating_margin"
	NetMargin          = "net_margin"
	RevenuePerEmployee = "revenue_per_employee"
	AssetTurnover      = "asset_turnover"
	DebtToEquity       = "debt_to_equity"
	ReturnOnAssets     = "return_on_assets"
	ReturnOnEquity     = "return_on_equity"
	TurnoverRate       = "turnover_rate"
	CostEfficiency     = "cost_efficiency"
	ProductivityIndex  = "productivity_index"
)

// lowerIsBetter marks the indicators whose benchmark comparison inverts.
var lowerIsBetter = map[string]bool{
	DebtToEquity: true,
	TurnoverRate: true,
}

// Calculator computes classified KPI sets. The benchmark table is
// read-only after construction, so a single Calculator serves concurrent
// analyses.
type Calculator struct {
	table   *BenchmarkTable
	weights ScoreWeights
	log     zerolog.Logger
}

// NewCalculator builds a Calculator over a benchmark table. A nil table
// uses the built-in benchmarks.
func NewCalculator(table *BenchmarkTable) *Calculator {
	if table == nil {
		table = NewBenchmarkTable()
	}
	return &Calculator{
		table:   table,
		weights: DefaultScoreWeights(),
		log:     log.With().Str("component", "kpi_calculator").Logger(),
	}
}

// SetScoreWeights overrides the efficiency score weighting.
func (c *Calculator) SetScoreWeights(w ScoreWeights) { c.weights = w }

// ComputeKPIs derives every indicator the record supports and classifies
// each against the industry's benchmarks. Missing inputs never fail a
// computation; the indicator is emitted with a nil value and status
// unavailable. hr may be nil, in which case HR indicators are omitted
// entirely rather than marked unavailable.
func (c *Calculator) ComputeKPIs(record *models.FinancialRecord, hr *models.HRData, industry string) models.KPIResultSet {
	bench := c.table.For(industry)
	if !c.table.Known(industry) && industry != "" {
		c.log.Debug().Str("industry", industry).Msg("unknown industry, using generic benchmarks")
	}
	period := record.Period

	var set models.KPIResultSet

	revenue := deref(record.Revenue)
	hasRevenue := record.Revenue != nil && revenue > 0

	// Margins.
	grossMargin := c.ratioKPI(GrossMargin, "%", bench.GrossMargin, period,
		hasRevenue && record.GrossProfit != nil, func() float64 {
			return deref(record.GrossProfit) / revenue * 100
		})
	operatingMargin := c.ratioKPI(OperatingMargin, "%", bench.OperatingMargin, period,
		hasRevenue && record.OperatingIncome != nil, func() float64 {
			return deref(record.OperatingIncome) / revenue * 100
		})
	netMargin := c.ratioKPI(NetMargin, "%", bench.NetMargin, period,
		hasRevenue && record.NetIncome != nil, func() float64 {
			return deref(record.NetIncome) / revenue * 100
		})
	revPerEmployee := c.ratioKPI(RevenuePerEmployee, "currency", bench.RevenuePerEmployee, period,
		hasRevenue && record.EmployeeCount > 0, func() float64 {
			return revenue / float64(record.EmployeeCount)
		})
	assetTurnover := c.ratioKPI(AssetTurnover, "ratio", bench.AssetTurnover, period,
		hasRevenue && record.TotalAssets != nil && deref(record.TotalAssets) > 0, func() float64 {
			return revenue / deref(record.TotalAssets)
		})
	debtToEquity := c.ratioKPI(DebtToEquity, "ratio", bench.DebtToEquity, period,
		record.TotalLiabilities != nil && record.TotalEquity != nil && deref(record.TotalEquity) > 0, func() float64 {
			return deref(record.TotalLiabilities) / deref(record.TotalEquity)
		})
	roa := c.ratioKPI(ReturnOnAssets, "%", bench.ReturnOnAssets, period,
		record.NetIncome != nil && record.TotalAssets != nil && deref(record.TotalAssets) > 0, func() float64 {
			return deref(record.NetIncome) / deref(record.TotalAssets) * 100
		})
	roe := c.ratioKPI(ReturnOnEquity, "%", bench.ReturnOnEquity, period,
		record.NetIncome != nil && record.TotalEquity != nil && deref(record.TotalEquity) > 0, func() float64 {
			return deref(record.NetIncome) / deref(record.TotalEquity) * 100
		})

	set.Financial = []models.KPIResult{
		grossMargin, operatingMargin, netMargin, revPerEmployee,
		assetTurnover, debtToEquity, roa, roe,
	}

	if hr != nil {
		turnover := c.ratioKPI(TurnoverRate, "%", bench.TurnoverRate, period,
			hr.AverageHeadcount > 0, func() float64 {
				return float64(hr.Terminations) / float64(hr.AverageHeadcount) * 100
			})
		set.HR = []models.KPIResult{turnover}
	}

	costEfficiency := c.ratioKPI(CostEfficiency, "index", bench.CostEfficiency, period,
		hasRevenue && record.OperatingExpenses != nil, func() float64 {
			return 1 - deref(record.OperatingExpenses)/revenue
		})
	productivity := c.ratioKPI(ProductivityIndex, "index", 1.0, period,
		revPerEmployee.Value != nil && bench.RevenuePerEmployee > 0, func() float64 {
			return *revPerEmployee.Value / bench.RevenuePerEmployee
		})
	set.Operational = []models.KPIResult{costEfficiency, productivity}

	set.EfficiencyScore = c.weights.Score(&set, bench)
	return set
}

// ratioKPI builds one result slot. When available is false the slot is
// emitted with a nil value and status unavailable.
func (c *Calculator) ratioKPI(name, unit string, benchmark float64, period string, available bool, compute func() float64) models.KPIResult {
	result := models.KPIResult{
		Name:      name,
		Unit:      unit,
		Benchmark: benchmark,
		Status:    models.StatusUnavailable,
		Period:    period,
	}
	if !available {
		return result
	}
	v := compute()
	result.Value = models.Float(v)
	result.Status = classify(v, benchmark, lowerIsBetter[name])
	return result
}

// classify bands a value against its benchmark. The asymmetric bands
// keep moderate underperformance at warning so noisy extracted figures
// do not over-alert.
func classify(value, benchmark float64, lower bool) models.KPIStatus {
	if benchmark == 0 {
		return models.StatusGood
	}
	var ratio float64
	if lower {
		if value <= 0 {
			return models.StatusExcellent
		}
		ratio = benchmark / value
	} else {
		ratio = value / benchmark
	}
	switch {
	case ratio >= 1.10:
		return models.StatusExcellent
	case ratio >= 1.00:
		return models.StatusGood
	case ratio >= 0.80:
		return models.StatusWarning
	default:
		return models.StatusCritical
	}
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
