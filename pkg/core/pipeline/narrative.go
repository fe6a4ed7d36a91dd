package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"efficiency_optimizer/pkg/models"
)

const narrativeSystemPrompt = `You are a senior management consultant writing an
efficiency diagnosis for a company's leadership. You receive already-computed
KPI figures and detected inefficiencies. Do not recalculate, question, or
invent any number; ground every statement in the figures provided. Write
concise professional prose: a short overall assessment, the key problem
areas, and the recommended next steps per responsible team.`

// narrativePrompt renders the computed results as a structured prompt.
// Only finished numbers go in; the reasoning service never sees raw
// source data.
func narrativePrompt(result *models.AnalysisResult, q *models.Questionnaire) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Company: %s\nIndustry: %s\nPeriod: %s\nCurrency: %s\n",
		result.CompanyInfo.Name, result.CompanyInfo.Industry, result.CompanyInfo.Period, result.CompanyInfo.Currency)
	fmt.Fprintf(&b, "Overall efficiency score: %.1f / 100\n\nKPIs:\n", result.EfficiencyScore)
	for _, r := range result.KPIResults.All() {
		if r.Value == nil {
			fmt.Fprintf(&b, "- %s: insufficient data\n", r.Name)
			continue
		}
		fmt.Fprintf(&b, "- %s: %.2f %s (benchmark %.2f, %s)\n", r.Name, *r.Value, r.Unit, r.Benchmark, r.Status)
	}
	if len(result.Inefficiencies) == 0 {
		b.WriteString("\nNo inefficiencies detected.\n")
	} else {
		b.WriteString("\nDetected inefficiencies:\n")
		for _, ineff := range result.Inefficiencies {
			fmt.Fprintf(&b, "- [%s] %s -> %s\n", ineff.Severity, ineff.Description, ineff.RecommendedSpecialist)
		}
	}
	if q != nil && (q.Challenges != "" || q.Goals != "") {
		b.WriteString("\nManagement context:\n")
		if q.Challenges != "" {
			fmt.Fprintf(&b, "- Stated challenges: %s\n", q.Challenges)
		}
		if q.Goals != "" {
			fmt.Fprintf(&b, "- Stated goals: %s\n", q.Goals)
		}
	}
	b.WriteString("\nWrite the efficiency diagnosis narrative.")
	return b.String()
}

var specialistLabels = map[string]string{
	"hr_optimizer":         "HR",
	"operations_optimizer": "Operations",
	"financial_optimizer":  "Financial",
}

// FallbackNarrative builds a deterministic template narrative from the
// computed results. It is the summary of record whenever the reasoning
// service is unavailable, and identical inputs always produce identical
// text.
func FallbackNarrative(result *models.AnalysisResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s scored %.1f out of 100 on overall efficiency for %s.",
		result.CompanyInfo.Name, result.EfficiencyScore, result.CompanyInfo.Period)

	if len(result.Inefficiencies) == 0 {
		b.WriteString(" No KPI fell below its industry benchmark; no corrective action is required at this time.")
		return b.String()
	}

	fmt.Fprintf(&b, " %d area(s) fell below industry benchmarks.", len(result.Inefficiencies))

	bySpecialist := map[string][]models.Inefficiency{}
	for _, ineff := range result.Inefficiencies {
		bySpecialist[ineff.RecommendedSpecialist] = append(bySpecialist[ineff.RecommendedSpecialist], ineff)
	}
	specialists := make([]string, 0, len(bySpecialist))
	for s := range bySpecialist {
		specialists = append(specialists, s)
	}
	sort.Strings(specialists)

	for _, s := range specialists {
		label := specialistLabels[s]
		if label == "" {
			label = s
		}
		var issues []string
		for _, ineff := range bySpecialist[s] {
			issues = append(issues, fmt.Sprintf("%s (severity %s)", ineff.KPIName, ineff.Severity))
		}
		fmt.Fprintf(&b, " %s review recommended for: %s.", label, strings.Join(issues, ", "))
	}
	return b.String()
}
