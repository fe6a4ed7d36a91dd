package kpi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"efficiency_optimizer/pkg/models"
)

func healthyServicesRecord() *models.FinancialRecord {
	return &models.FinancialRecord{
		CompanyName:        "Consultora Prisma",
		Industry:           "services",
		Period:             "FY2023",
		Revenue:            models.Float(1_000_000),
		CostOfGoodsSold:    models.Float(550_000),
		GrossProfit:        models.Float(450_000),
		OperatingExpenses:  models.Float(140_000),
		OperatingIncome:    models.Float(160_000),
		NetIncome:          models.Float(105_000),
		TotalAssets:        models.Float(600_000),
		TotalLiabilities:   models.Float(150_000),
		TotalEquity:        models.Float(450_000),
		CashAndEquivalents: models.Float(120_000),
		EmployeeCount:      3,
	}
}

func TestComputeKPIsHealthyCompany(t *testing.T) {
	calc := NewCalculator(nil)
	set := calc.ComputeKPIs(healthyServicesRecord(), nil, "services")

	for _, r := range set.All() {
		require.NotNil(t, r.Value, "kpi %s should be computable", r.Name)
		assert.Contains(t, []models.KPIStatus{models.StatusExcellent, models.StatusGood}, r.Status,
			"kpi %s classified %s", r.Name, r.Status)
	}

	gm := set.Find(GrossMargin)
	require.NotNil(t, gm)
	assert.InDelta(t, 45.0, *gm.Value, 0.001)
	assert.Equal(t, "%", gm.Unit)
	assert.Equal(t, models.StatusExcellent, gm.Status)

	rpe := set.Find(RevenuePerEmployee)
	require.NotNil(t, rpe)
	assert.InDelta(t, 333_333.33, *rpe.Value, 0.01)

	de := set.Find(DebtToEquity)
	require.NotNil(t, de)
	assert.InDelta(t, 0.3333, *de.Value, 0.001)
	assert.Equal(t, models.StatusExcellent, de.Status)

	assert.Empty(t, set.HR, "no HR data supplied, HR indicators omitted")
	assert.GreaterOrEqual(t, set.EfficiencyScore, 90.0)
	assert.LessOrEqual(t, set.EfficiencyScore, 100.0)
}

func TestComputeKPIsMarginFigures(t *testing.T) {
	record := &models.FinancialRecord{
		Revenue:         models.Float(20_000_000),
		CostOfGoodsSold: models.Float(12_000_000),
		GrossProfit:     models.Float(8_000_000),
		OperatingIncome: models.Float(3_000_000),
		NetIncome:       models.Float(2_000_000),
		EmployeeCount:   8,
	}
	set := NewCalculator(nil).ComputeKPIs(record, nil, "services")

	assert.InDelta(t, 40.0, *set.Find(GrossMargin).Value, 0.001)
	assert.InDelta(t, 15.0, *set.Find(OperatingMargin).Value, 0.001)
	assert.InDelta(t, 10.0, *set.Find(NetMargin).Value, 0.001)
	assert.InDelta(t, 2_500_000.0, *set.Find(RevenuePerEmployee).Value, 0.001)
}

func TestComputeKPIsZeroRevenue(t *testing.T) {
	record := &models.FinancialRecord{
		Revenue:          models.Float(0),
		NetIncome:        models.Float(-50_000),
		TotalAssets:      models.Float(400_000),
		TotalLiabilities: models.Float(100_000),
		TotalEquity:      models.Float(300_000),
		EmployeeCount:    5,
	}
	set := NewCalculator(nil).ComputeKPIs(record, nil, "services")

	for _, name := range []string{GrossMargin, OperatingMargin, NetMargin, RevenuePerEmployee} {
		r := set.Find(name)
		require.NotNil(t, r, "slot %s must exist", name)
		assert.Nil(t, r.Value, "%s has no meaning without revenue", name)
		assert.Equal(t, models.StatusUnavailable, r.Status)
	}
	// Balance-sheet ratios survive, the score uses what it has.
	assert.NotNil(t, set.Find(DebtToEquity).Value)
	assert.NotNil(t, set.Find(ReturnOnAssets).Value)
}

func TestComputeKPIsRevenueOnly(t *testing.T) {
	record := &models.FinancialRecord{
		Revenue: models.Float(250_000),
	}
	calc := NewCalculator(nil)
	set := calc.ComputeKPIs(record, nil, "services")

	// Every slot is still present; every ratio needing another field is
	// unavailable with a nil value.
	names := map[string]bool{}
	for _, r := range set.All() {
		names[r.Name] = true
		assert.Equal(t, models.StatusUnavailable, r.Status, "kpi %s", r.Name)
		assert.Nil(t, r.Value, "kpi %s", r.Name)
	}
	for _, want := range []string{
		GrossMargin, OperatingMargin, NetMargin, RevenuePerEmployee,
		AssetTurnover, DebtToEquity, ReturnOnAssets, ReturnOnEquity,
		CostEfficiency, ProductivityIndex,
	} {
		assert.True(t, names[want], "slot %s missing", want)
	}
	assert.Zero(t, set.EfficiencyScore)
}

func TestComputeKPIsUnknownIndustryFallsBack(t *testing.T) {
	calc := NewCalculator(nil)
	set := calc.ComputeKPIs(healthyServicesRecord(), nil, "interplanetary_logistics")

	services := NewBenchmarkTable().For("services")
	gm := set.Find(GrossMargin)
	require.NotNil(t, gm)
	assert.Equal(t, services.GrossMargin, gm.Benchmark)

	for _, r := range set.All() {
		assert.NotEmpty(t, r.Status, "kpi %s left unclassified", r.Name)
	}
}

func TestComputeKPIsTurnoverRate(t *testing.T) {
	calc := NewCalculator(nil)
	hr := &models.HRData{Terminations: 9, AverageHeadcount: 50}
	set := calc.ComputeKPIs(healthyServicesRecord(), hr, "services")

	turnover := set.Find(TurnoverRate)
	require.NotNil(t, turnover)
	require.NotNil(t, turnover.Value)
	assert.InDelta(t, 18.0, *turnover.Value, 0.001)
	// 18% against an 18% lower-is-better benchmark sits exactly on the
	// good boundary.
	assert.Equal(t, models.StatusGood, turnover.Status)

	// HR data present but unusable: the slot exists, unavailable.
	set = calc.ComputeKPIs(healthyServicesRecord(), &models.HRData{Terminations: 3}, "services")
	turnover = set.Find(TurnoverRate)
	require.NotNil(t, turnover)
	assert.Equal(t, models.StatusUnavailable, turnover.Status)
}

func TestClassifyBands(t *testing.T) {
	cases := []struct {
		value, benchmark float64
		lower            bool
		want             models.KPIStatus
	}{
		{11.0, 10.0, false, models.StatusExcellent},
		{10.0, 10.0, false, models.StatusGood},
		{8.5, 10.0, false, models.StatusWarning},
		{7.9, 10.0, false, models.StatusCritical},
		{-2.0, 10.0, false, models.StatusCritical},
		{0.2, 0.4, true, models.StatusExcellent},
		{36.0, 18.0, true, models.StatusCritical},
		{0.0, 18.0, true, models.StatusExcellent},
		{5.0, 0.0, false, models.StatusGood},
	}
	for _, c := range cases {
		got := classify(c.value, c.benchmark, c.lower)
		assert.Equal(t, c.want, got, "value=%v benchmark=%v lower=%v", c.value, c.benchmark, c.lower)
	}
}

func TestScoreCapsOutliers(t *testing.T) {
	// Gross margin at 10x benchmark must contribute at most 130%.
	set := models.KPIResultSet{
		Financial: []models.KPIResult{
			{Name: GrossMargin, Value: models.Float(400.0), Benchmark: 40.0, Status: models.StatusExcellent},
		},
	}
	bench := NewBenchmarkTable().For("services")
	w := DefaultScoreWeights()
	score := w.Score(&set, bench)
	assert.InDelta(t, 100.0, score, 0.001)

	// A negative ratio floors at zero instead of dragging the score
	// below the scale.
	set.Financial[0].Value = models.Float(-20.0)
	score = w.Score(&set, bench)
	assert.Zero(t, score)
}

func TestScoreNormalizesOverAvailableWeights(t *testing.T) {
	// Only gross margin available, exactly on benchmark: score is 100%
	// of the available weight, not 30% of the full weight set.
	set := models.KPIResultSet{
		Financial: []models.KPIResult{
			{Name: GrossMargin, Value: models.Float(40.0), Benchmark: 40.0, Status: models.StatusGood},
		},
	}
	bench := NewBenchmarkTable().For("services")
	score := DefaultScoreWeights().Score(&set, bench)
	assert.InDelta(t, 100.0, score, 0.001)
}

func TestLoadBenchmarkTableMissingFileUsesBuiltins(t *testing.T) {
	table, err := LoadBenchmarkTable("testdata/does_not_exist.yaml")
	require.NoError(t, err)
	assert.Equal(t, 40.0, table.For("services").GrossMargin)
	assert.False(t, table.Known("interplanetary_logistics"))
}
