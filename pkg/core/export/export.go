// Package export renders AnalysisResults for delivery: flattened CSV,
// structured JSON (round-trippable), and an HTML narrative report.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/yuin/goldmark"

	"efficiency_optimizer/pkg/core/utils"
	"efficiency_optimizer/pkg/models"
)

// ToJSON serializes the full result structure. Unavailable numeric
// fields serialize as null, never as a placeholder string.
func ToJSON(result *models.AnalysisResult) ([]byte, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize analysis result: %w", err)
	}
	return data, nil
}

// FromJSON reverses ToJSON. A round trip reproduces identical KPI values
// and statuses.
func FromJSON(data []byte) (*models.AnalysisResult, error) {
	var result models.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse analysis result: %w", err)
	}
	return &result, nil
}

// ToCSV flattens the KPI results to one row per indicator. Unavailable
// values render as empty cells.
func ToCSV(result *models.AnalysisResult) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"company", "period", "kpi", "value", "unit", "benchmark", "status"}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, r := range result.KPIResults.All() {
		value := ""
		if r.Value != nil {
			value = strconv.FormatFloat(*r.Value, 'f', -1, 64)
		}
		row := []string{
			result.CompanyInfo.Name,
			r.Period,
			r.Name,
			value,
			r.Unit,
			strconv.FormatFloat(r.Benchmark, 'f', -1, 64),
			string(r.Status),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// NarrativeHTML renders the (markdown-capable) narrative summary to HTML
// for report embedding. LLM-authored narratives often arrive wrapped in
// code fences, so they are cleaned first.
func NarrativeHTML(result *models.AnalysisResult) ([]byte, error) {
	md := utils.CleanMarkdown(result.NarrativeSummary)
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "<h1>Efficiency Analysis: %s</h1>\n", result.CompanyInfo.Name)
	fmt.Fprintf(&buf, "<p>Efficiency score: %.1f / 100</p>\n", result.EfficiencyScore)
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return nil, fmt.Errorf("failed to render narrative: %w", err)
	}
	return buf.Bytes(), nil
}
