package models

import "time"

// EntryKind tags what a memory entry records.
type EntryKind string

const (
	EntryKPI             EntryKind = "kpi"
	EntryInefficiency    EntryKind = "inefficiency"
	EntryAnalysisResults EntryKind = "analysis_results"
	EntryGeneral         EntryKind = "general"
)

// EntryMetadata is the structured filter surface of a memory entry.
// Type-specific fields are zero for other kinds.
type EntryMetadata struct {
	Kind        EntryKind `json:"kind"`
	CompanyName string    `json:"company_name"`
	CreatedAt   time.Time `json:"created_at"`

	// kpi entries
	KPIName   string   `json:"kpi_name,omitempty"`
	Value     *float64 `json:"value,omitempty"`
	Benchmark float64  `json:"benchmark,omitempty"`
	Period    string   `json:"period,omitempty"`
	Status    string   `json:"status,omitempty"`

	// inefficiency entries
	IssueType             string `json:"issue_type,omitempty"`
	Severity              string `json:"severity,omitempty"`
	RecommendedSpecialist string `json:"recommended_specialist,omitempty"`

	// analysis_results entries
	AnalysisID string `json:"analysis_id,omitempty"`
}

// MemoryEntry is the persisted unit in analysis memory. Entries are
// append-only; superseding analyses create new entries.
type MemoryEntry struct {
	ID        string        `json:"id"`
	Text      string        `json:"text"`
	Embedding []float32     `json:"embedding,omitempty"`
	Metadata  EntryMetadata `json:"metadata"`
}
