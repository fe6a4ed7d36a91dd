// Package detect scans classified KPI results for benchmark deviations
// and routes each finding to a remediation specialist.
package detect

import (
	"fmt"

	"efficiency_optimizer/pkg/core/kpi"
	"efficiency_optimizer/pkg/models"
)

// Specialist categories findings are routed to.
const (
	SpecialistHR         = "hr_optimizer"
	SpecialistOperations = "operations_optimizer"
	SpecialistFinancial  = "financial_optimizer"
)

// routing maps each indicator to the specialist that owns its
// remediation.
var routing = map[string]string{
	kpi.GrossMargin:        SpecialistFinancial,
	kpi.OperatingMargin:    SpecialistFinancial,
	kpi.NetMargin:          SpecialistFinancial,
	kpi.DebtToEquity:       SpecialistFinancial,
	kpi.ReturnOnAssets:     SpecialistFinancial,
	kpi.ReturnOnEquity:     SpecialistFinancial,
	kpi.RevenuePerEmployee: SpecialistOperations,
	kpi.AssetTurnover:      SpecialistOperations,
	kpi.CostEfficiency:     SpecialistOperations,
	kpi.ProductivityIndex:  SpecialistOperations,
	kpi.TurnoverRate:       SpecialistHR,
}

// revenueDriving marks the indicators whose underperformance directly
// depresses revenue or its conversion. A warning on these upgrades to
// high severity.
var revenueDriving = map[string]bool{
	kpi.GrossMargin:        true,
	kpi.OperatingMargin:    true,
	kpi.NetMargin:          true,
	kpi.RevenuePerEmployee: true,
}

// Detect produces one Inefficiency per flagged indicator, except that a
// simultaneous gross and operating margin shortfall collapses into a
// single financial performance finding. The input set is not mutated.
func Detect(set *models.KPIResultSet) []models.Inefficiency {
	var findings []models.Inefficiency

	gross := set.Find(kpi.GrossMargin)
	operating := set.Find(kpi.OperatingMargin)
	composite := flagged(gross) && flagged(operating)
	if composite {
		findings = append(findings, models.Inefficiency{
			IssueType:             "financial_performance",
			KPIName:               kpi.GrossMargin,
			CurrentValue:          gross.Value,
			Benchmark:             gross.Benchmark,
			Severity:              worse(severityFor(gross), severityFor(operating)),
			RecommendedSpecialist: SpecialistFinancial,
			SupportingKPIs:        []string{kpi.GrossMargin, kpi.OperatingMargin},
			Description: fmt.Sprintf(
				"Gross margin %.1f%% and operating margin %.1f%% are both below their benchmarks (%.1f%% / %.1f%%)",
				*gross.Value, *operating.Value, gross.Benchmark, operating.Benchmark),
		})
	}

	for _, r := range set.All() {
		if !flagged(&r) {
			continue
		}
		if composite && (r.Name == kpi.GrossMargin || r.Name == kpi.OperatingMargin) {
			continue
		}
		findings = append(findings, models.Inefficiency{
			IssueType:             issueTypeFor(r.Name),
			KPIName:               r.Name,
			CurrentValue:          r.Value,
			Benchmark:             r.Benchmark,
			Severity:              severityFor(&r),
			RecommendedSpecialist: specialistFor(r.Name),
			SupportingKPIs:        []string{r.Name},
			Description: fmt.Sprintf("%s at %.2f against a benchmark of %.2f (%s)",
				r.Name, *r.Value, r.Benchmark, r.Status),
		})
	}
	return findings
}

func flagged(r *models.KPIResult) bool {
	if r == nil || r.Value == nil {
		return false
	}
	return r.Status == models.StatusWarning || r.Status == models.StatusCritical
}

func severityFor(r *models.KPIResult) models.Severity {
	if r.Status == models.StatusCritical {
		return models.SeverityCritical
	}
	if revenueDriving[r.Name] {
		return models.SeverityHigh
	}
	return models.SeverityMedium
}

func specialistFor(name string) string {
	if s, ok := routing[name]; ok {
		return s
	}
	return SpecialistOperations
}

// issueTypeFor names the issue category for one underperforming
// indicator. The KPI name on the finding identifies the exact metric.
func issueTypeFor(name string) string {
	if name == kpi.TurnoverRate {
		return "high_turnover"
	}
	switch routing[name] {
	case SpecialistFinancial:
		return "financial_performance"
	case SpecialistOperations:
		return "operational_efficiency"
	default:
		return "general_performance"
	}
}

var severityRank = map[models.Severity]int{
	models.SeverityLow:      0,
	models.SeverityMedium:   1,
	models.SeverityHigh:     2,
	models.SeverityCritical: 3,
}

func worse(a, b models.Severity) models.Severity {
	if severityRank[a] >= severityRank[b] {
		return a
	}
	return b
}
