package models

import "time"

// KPIStatus classifies a KPI value against its benchmark. It is always a
// pure function of (value, benchmark, polarity), never hand-set.
type KPIStatus string

const (
	StatusExcellent   KPIStatus = "excellent"
	StatusGood        KPIStatus = "good"
	StatusWarning     KPIStatus = "warning"
	StatusCritical    KPIStatus = "critical"
	StatusUnavailable KPIStatus = "unavailable"
)

// KPIResult is one computed indicator. Value is nil when the inputs were
// missing; the slot is still emitted so consumers can index by fixed key
// sets.
type KPIResult struct {
	Name      string    `json:"name"`
	Value     *float64  `json:"value"`
	Unit      string    `json:"unit"` // "%", "currency", "ratio"
	Benchmark float64   `json:"benchmark"`
	Status    KPIStatus `json:"status"`
	Period    string    `json:"period"`
}

// KPIResultSet groups results by category. Every known indicator appears
// in its category slice regardless of availability.
type KPIResultSet struct {
	Financial   []KPIResult `json:"financial"`
	HR          []KPIResult `json:"hr"`
	Operational []KPIResult `json:"operational"`

	// EfficiencyScore is the weighted aggregate on a 0-100 scale,
	// computed only from available terms.
	EfficiencyScore float64 `json:"efficiency_score"`
}

// All returns every result across categories, financial first.
func (s *KPIResultSet) All() []KPIResult {
	out := make([]KPIResult, 0, len(s.Financial)+len(s.HR)+len(s.Operational))
	out = append(out, s.Financial...)
	out = append(out, s.HR...)
	out = append(out, s.Operational...)
	return out
}

// Find returns the result with the given name, searching all categories.
// Returns nil when no slot carries the name.
func (s *KPIResultSet) Find(name string) *KPIResult {
	for _, rs := range [][]KPIResult{s.Financial, s.HR, s.Operational} {
		for i := range rs {
			if rs[i].Name == name {
				return &rs[i]
			}
		}
	}
	return nil
}

// Severity grades a detected inefficiency.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Inefficiency is one detected benchmark deviation, routed to a
// specialist category. Immutable once created.
type Inefficiency struct {
	IssueType             string   `json:"issue_type"`
	KPIName               string   `json:"kpi_name"`
	CurrentValue          *float64 `json:"current_value"`
	Benchmark             float64  `json:"benchmark"`
	Severity              Severity `json:"severity"`
	RecommendedSpecialist string   `json:"recommended_specialist"`
	SupportingKPIs        []string `json:"supporting_kpis"`
	Description           string   `json:"description"`
}

// CompanyInfo is the header block of an analysis result.
type CompanyInfo struct {
	Name          string `json:"name"`
	Industry      string `json:"industry"`
	Period        string `json:"period"`
	Currency      string `json:"currency"`
	EmployeeCount int    `json:"employee_count"`
}

// AnalysisResult is the aggregate produced by one complete pipeline run.
// The orchestrator owns it until it is handed to memory; after that it is
// read-only history.
type AnalysisResult struct {
	AnalysisID       string         `json:"analysis_id"`
	CompanyInfo      CompanyInfo    `json:"company_info"`
	KPIResults       KPIResultSet   `json:"kpi_results"`
	EfficiencyScore  float64        `json:"efficiency_score"`
	Inefficiencies   []Inefficiency `json:"inefficiencies"`
	NarrativeSummary string         `json:"narrative_summary"`
	Timestamp        time.Time      `json:"timestamp"`
}
