// Package pipeline sequences a full efficiency diagnosis: normalize the
// source documents, compute and classify KPIs, detect inefficiencies,
// synthesize a narrative, and persist the findings.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"efficiency_optimizer/pkg/core/detect"
	"efficiency_optimizer/pkg/core/kpi"
	"efficiency_optimizer/pkg/core/llm"
	"efficiency_optimizer/pkg/core/memory"
	"efficiency_optimizer/pkg/core/normalize"
	"efficiency_optimizer/pkg/models"
)

// State is the orchestrator's position in its linear state machine.
type State string

const (
	StateDataPrepared State = "DataPrepared"
	StateKPIsComputed State = "KPIsComputed"
	StateSummaryReady State = "SummaryReady"
)

// Request describes one analysis run: a source document plus caller
// context. HR, Questionnaire and Industry are optional; questionnaire
// answers fill gaps the documents leave but never override them.
type Request struct {
	Filename      string
	Data          []byte
	CompanyName   string
	Industry      string
	Language      string
	HR            *models.HRData
	Questionnaire *models.Questionnaire
}

// Orchestrator runs analyses end to end. One instance serves concurrent
// requests: each Run owns its state and the shared collaborators are
// read-only or append-only.
type Orchestrator struct {
	normalizer       *normalize.Normalizer
	calculator       *kpi.Calculator
	provider         llm.Provider
	store            memory.Store
	embedder         memory.Embedder
	narrativeTimeout time.Duration
	log              zerolog.Logger
}

// NewOrchestrator wires the default collaborators. provider may be nil,
// disabling both the free-text extraction fallback and LLM narrative
// synthesis; store may be nil, disabling persistence.
func NewOrchestrator(provider llm.Provider, table *kpi.BenchmarkTable, store memory.Store) *Orchestrator {
	return &Orchestrator{
		normalizer:       normalize.NewNormalizer(provider),
		calculator:       kpi.NewCalculator(table),
		provider:         provider,
		store:            store,
		embedder:         &memory.LocalEmbedder{},
		narrativeTimeout: 60 * time.Second,
		log:              log.With().Str("component", "orchestrator").Logger(),
	}
}

// SetNormalizer injects a custom normalizer (e.g., for testing).
func (o *Orchestrator) SetNormalizer(n *normalize.Normalizer) { o.normalizer = n }

// SetCalculator injects a custom calculator.
func (o *Orchestrator) SetCalculator(c *kpi.Calculator) { o.calculator = c }

// SetStore injects a custom memory store.
func (o *Orchestrator) SetStore(s memory.Store) { o.store = s }

// SetEmbedder injects a custom embedder for persisted entries.
func (o *Orchestrator) SetEmbedder(e memory.Embedder) { o.embedder = e }

// SetNarrativeTimeout bounds the reasoning service call.
func (o *Orchestrator) SetNarrativeTimeout(d time.Duration) {
	if d > 0 {
		o.narrativeTimeout = d
	}
}

// Run executes the full pipeline for one request. Normalization failures
// are the only fatal errors; every later stage degrades instead of
// failing. Nothing is persisted unless the pipeline reaches SummaryReady
// with the caller still waiting.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*models.AnalysisResult, error) {
	start := time.Now()

	if q := req.Questionnaire; q != nil {
		if req.CompanyName == "" {
			req.CompanyName = q.CompanyName
		}
		if req.Industry == "" {
			req.Industry = q.Industry
		}
	}

	record, err := o.normalizer.Normalize(ctx, req.Filename, req.Data, normalize.Hint{
		CompanyName: req.CompanyName,
		Industry:    req.Industry,
		Language:    req.Language,
	})
	if err != nil {
		return nil, fmt.Errorf("data preparation failed: %w", err)
	}
	if q := req.Questionnaire; q != nil && q.EmployeeCount > 0 &&
		(record.EmployeeCount == 0 || record.EmployeeCountEstimated) {
		record.EmployeeCount = q.EmployeeCount
		record.EmployeeCountEstimated = false
	}
	state := StateDataPrepared
	o.log.Info().Str("company", record.CompanyName).Str("state", string(state)).Msg("data prepared")

	industry := req.Industry
	if industry == "" {
		industry = record.Industry
	}
	set := o.calculator.ComputeKPIs(record, req.HR, industry)
	findings := detect.Detect(&set)
	state = StateKPIsComputed
	o.log.Info().
		Str("state", string(state)).
		Float64("efficiency_score", set.EfficiencyScore).
		Int("inefficiencies", len(findings)).
		Msg("kpis computed")

	result := &models.AnalysisResult{
		AnalysisID: uuid.New().String(),
		CompanyInfo: models.CompanyInfo{
			Name:          record.CompanyName,
			Industry:      industry,
			Currency:      record.Currency,
			Period:        record.Period,
			EmployeeCount: record.EmployeeCount,
		},
		KPIResults:      set,
		EfficiencyScore: set.EfficiencyScore,
		Inefficiencies:  findings,
		Timestamp:       time.Now().UTC(),
	}
	result.NarrativeSummary = o.narrative(ctx, result, req.Questionnaire)
	state = StateSummaryReady
	o.log.Info().
		Str("state", string(state)).
		Str("analysis_id", result.AnalysisID).
		Dur("elapsed", time.Since(start)).
		Msg("analysis complete")

	// An abandoned request leaves no partial history behind.
	if ctx.Err() == nil {
		o.persist(ctx, result)
	}
	return result, nil
}

// narrative obtains the human-readable summary. The reasoning service
// call is bounded by a timeout and retried once with backoff; any
// failure degrades to the deterministic template.
func (o *Orchestrator) narrative(ctx context.Context, result *models.AnalysisResult, q *models.Questionnaire) string {
	if o.provider == nil {
		return FallbackNarrative(result)
	}
	prompt := narrativePrompt(result, q)
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(2 * time.Second):
			case <-ctx.Done():
				return FallbackNarrative(result)
			}
		}
		callCtx, cancel := context.WithTimeout(ctx, o.narrativeTimeout)
		text, err := o.provider.GenerateResponse(callCtx, prompt, narrativeSystemPrompt, map[string]interface{}{
			"temperature": 0.4,
		})
		cancel()
		if err == nil && text != "" {
			return text
		}
		lastErr = err
	}
	o.log.Warn().Err(lastErr).Msg("reasoning service unavailable, using fallback narrative")
	return FallbackNarrative(result)
}

// persist writes the analysis, each KPI, and each inefficiency as
// separate entries. Best-effort: failures are logged and the result is
// still returned to the caller.
func (o *Orchestrator) persist(ctx context.Context, result *models.AnalysisResult) {
	if o.store == nil {
		return
	}
	entries := []models.MemoryEntry{memory.NewAnalysisEntry(result)}
	for _, r := range result.KPIResults.All() {
		entries = append(entries, memory.NewKPIEntry(result.CompanyInfo.Name, result.AnalysisID, r))
	}
	for _, ineff := range result.Inefficiencies {
		entries = append(entries, memory.NewInefficiencyEntry(result.CompanyInfo.Name, result.AnalysisID, ineff))
	}
	for _, entry := range entries {
		if o.embedder != nil {
			if vec, err := o.embedder.Embed(ctx, entry.Text); err == nil {
				entry.Embedding = vec
			} else {
				o.log.Debug().Err(err).Msg("embedding failed, storing entry without vector")
			}
		}
		if err := o.store.Store(ctx, entry); err != nil {
			o.log.Warn().Err(err).Str("entry_id", entry.ID).Msg("failed to persist memory entry")
		}
	}
}
