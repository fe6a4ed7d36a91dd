package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"efficiency_optimizer/pkg/core/kpi"
	"efficiency_optimizer/pkg/models"
)

func result(name string, value, benchmark float64, status models.KPIStatus) models.KPIResult {
	return models.KPIResult{
		Name:      name,
		Value:     models.Float(value),
		Benchmark: benchmark,
		Status:    status,
	}
}

func TestDetectNoFindingsOnHealthySet(t *testing.T) {
	set := models.KPIResultSet{
		Financial: []models.KPIResult{
			result(kpi.GrossMargin, 45, 40, models.StatusExcellent),
			result(kpi.NetMargin, 10, 10, models.StatusGood),
			{Name: kpi.ReturnOnEquity, Status: models.StatusUnavailable},
		},
	}
	assert.Empty(t, Detect(&set))
}

func TestDetectCompositeMarginCollapse(t *testing.T) {
	set := models.KPIResultSet{
		Financial: []models.KPIResult{
			result(kpi.GrossMargin, 25, 40, models.StatusCritical),
			result(kpi.OperatingMargin, 9, 15, models.StatusCritical),
			result(kpi.NetMargin, 10, 10, models.StatusGood),
		},
	}
	findings := Detect(&set)
	require.Len(t, findings, 1)

	f := findings[0]
	assert.Equal(t, "financial_performance", f.IssueType)
	assert.Equal(t, SpecialistFinancial, f.RecommendedSpecialist)
	assert.Equal(t, models.SeverityCritical, f.Severity)
	assert.ElementsMatch(t, []string{kpi.GrossMargin, kpi.OperatingMargin}, f.SupportingKPIs)
}

func TestDetectOneFindingPerFlaggedKPI(t *testing.T) {
	set := models.KPIResultSet{
		Financial: []models.KPIResult{
			result(kpi.GrossMargin, 33, 40, models.StatusWarning),
			result(kpi.DebtToEquity, 1.2, 0.4, models.StatusCritical),
		},
		HR: []models.KPIResult{
			result(kpi.TurnoverRate, 25, 18, models.StatusWarning),
		},
		Operational: []models.KPIResult{
			result(kpi.CostEfficiency, 0.70, 0.85, models.StatusWarning),
		},
	}
	findings := Detect(&set)
	require.Len(t, findings, 4)

	byKPI := map[string]models.Inefficiency{}
	for _, f := range findings {
		byKPI[f.KPIName] = f
	}

	// A warning on a revenue-driving indicator upgrades to high.
	assert.Equal(t, models.SeverityHigh, byKPI[kpi.GrossMargin].Severity)
	// Critical status always maps to critical severity.
	assert.Equal(t, models.SeverityCritical, byKPI[kpi.DebtToEquity].Severity)
	// Plain warnings stay medium.
	assert.Equal(t, models.SeverityMedium, byKPI[kpi.TurnoverRate].Severity)
	assert.Equal(t, models.SeverityMedium, byKPI[kpi.CostEfficiency].Severity)

	assert.Equal(t, SpecialistHR, byKPI[kpi.TurnoverRate].RecommendedSpecialist)
	assert.Equal(t, SpecialistOperations, byKPI[kpi.CostEfficiency].RecommendedSpecialist)
	assert.Equal(t, SpecialistFinancial, byKPI[kpi.DebtToEquity].RecommendedSpecialist)
	assert.Equal(t, "financial_performance", byKPI[kpi.GrossMargin].IssueType)
	assert.Equal(t, "high_turnover", byKPI[kpi.TurnoverRate].IssueType)
	assert.Equal(t, "operational_efficiency", byKPI[kpi.CostEfficiency].IssueType)
}

func TestDetectIgnoresUnavailable(t *testing.T) {
	set := models.KPIResultSet{
		Financial: []models.KPIResult{
			{Name: kpi.GrossMargin, Status: models.StatusUnavailable},
			{Name: kpi.OperatingMargin, Status: models.StatusUnavailable},
		},
	}
	assert.Empty(t, Detect(&set))
}
