// Package memory persists analysis findings as retrievable entries, by
// semantic similarity and by structured filter. Entries are append-only
// and never updated.
package memory

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"efficiency_optimizer/pkg/models"
)

// Filter narrows a query to entries with matching metadata. Zero fields
// match everything.
type Filter struct {
	Kind        models.EntryKind
	CompanyName string
	KPIName     string
	Limit       int
}

// Match pairs an entry with its similarity to the query embedding.
type Match struct {
	Entry models.MemoryEntry
	Score float64
}

// Store is the persistence interface for analysis memory. Store never
// overwrites existing entries. Query ranks by cosine similarity to the
// given embedding; List returns entries by filter alone, newest first.
type Store interface {
	Store(ctx context.Context, entry models.MemoryEntry) error
	Query(ctx context.Context, embedding []float32, filter Filter) ([]Match, error)
	List(ctx context.Context, filter Filter) ([]models.MemoryEntry, error)
}

// NewKPIEntry builds a memory entry for one computed indicator.
func NewKPIEntry(companyName, analysisID string, r models.KPIResult) models.MemoryEntry {
	value := 0.0
	if r.Value != nil {
		value = *r.Value
	}
	return models.MemoryEntry{
		ID:   uuid.New().String(),
		Text: fmt.Sprintf("%s: %s is %.2f against benchmark %.2f (%s)", companyName, r.Name, value, r.Benchmark, r.Status),
		Metadata: models.EntryMetadata{
			Kind:        models.EntryKPI,
			CompanyName: companyName,
			CreatedAt:   time.Now().UTC(),
			KPIName:     r.Name,
			Value:       r.Value,
			Benchmark:   r.Benchmark,
			Period:      r.Period,
			Status:      string(r.Status),
			AnalysisID:  analysisID,
		},
	}
}

// NewInefficiencyEntry builds a memory entry for one detected finding.
func NewInefficiencyEntry(companyName, analysisID string, ineff models.Inefficiency) models.MemoryEntry {
	return models.MemoryEntry{
		ID:   uuid.New().String(),
		Text: fmt.Sprintf("%s: %s", companyName, ineff.Description),
		Metadata: models.EntryMetadata{
			Kind:                  models.EntryInefficiency,
			CompanyName:           companyName,
			CreatedAt:             time.Now().UTC(),
			KPIName:               ineff.KPIName,
			Value:                 ineff.CurrentValue,
			Benchmark:             ineff.Benchmark,
			IssueType:             ineff.IssueType,
			Severity:              string(ineff.Severity),
			RecommendedSpecialist: ineff.RecommendedSpecialist,
			AnalysisID:            analysisID,
		},
	}
}

// NewAnalysisEntry builds a memory entry for a whole analysis summary.
func NewAnalysisEntry(result *models.AnalysisResult) models.MemoryEntry {
	return models.MemoryEntry{
		ID: uuid.New().String(),
		Text: fmt.Sprintf("%s efficiency analysis: score %.1f, %d inefficiencies. %s",
			result.CompanyInfo.Name, result.EfficiencyScore, len(result.Inefficiencies), result.NarrativeSummary),
		Metadata: models.EntryMetadata{
			Kind:        models.EntryAnalysisResults,
			CompanyName: result.CompanyInfo.Name,
			CreatedAt:   time.Now().UTC(),
			AnalysisID:  result.AnalysisID,
		},
	}
}

// NewGeneralEntry builds an untyped free-text entry.
func NewGeneralEntry(companyName, text string) models.MemoryEntry {
	return models.MemoryEntry{
		ID:   uuid.New().String(),
		Text: text,
		Metadata: models.EntryMetadata{
			Kind:        models.EntryGeneral,
			CompanyName: companyName,
			CreatedAt:   time.Now().UTC(),
		},
	}
}

func matchesFilter(e models.MemoryEntry, f Filter) bool {
	if f.Kind != "" && e.Metadata.Kind != f.Kind {
		return false
	}
	if f.CompanyName != "" && e.Metadata.CompanyName != f.CompanyName {
		return false
	}
	if f.KPIName != "" && e.Metadata.KPIName != f.KPIName {
		return false
	}
	return true
}

// cosine returns the cosine similarity of two vectors, 0 when either has
// no magnitude or lengths differ.
func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
