// Package normalize turns heterogeneous source documents (workbooks,
// delimited text, PDFs, HTML exports) into one canonical FinancialRecord.
package normalize

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"efficiency_optimizer/pkg/core/llm"
	"efficiency_optimizer/pkg/core/patterns"
	"efficiency_optimizer/pkg/models"
)

// defaultAvgMonthlyCompensation is the payroll assumption used when a
// headcount must be estimated from expense lines. The original data this
// engine was tuned on is Colombian SME statements, hence the COP scale.
const defaultAvgMonthlyCompensation = 1_000_000

// Hint carries caller-provided context for a normalization run. All
// fields are optional.
type Hint struct {
	CompanyName string
	Industry    string
	Language    string // ISO 639-1, breaks variant-score ties
}

// Normalizer extracts FinancialRecords from raw documents. It is
// stateless between calls; the same bytes always produce the same
// record.
type Normalizer struct {
	provider        llm.Provider // optional, enables free-text fallback
	avgCompensation float64
	log             zerolog.Logger
}

// NewNormalizer creates a Normalizer. provider may be nil, in which case
// the free-text extraction fallback is skipped.
func NewNormalizer(provider llm.Provider) *Normalizer {
	return &Normalizer{
		provider:        provider,
		avgCompensation: defaultAvgMonthlyCompensation,
		log:             log.With().Str("component", "normalizer").Logger(),
	}
}

// SetAverageCompensation overrides the monthly payroll assumption used
// for headcount estimation.
func (n *Normalizer) SetAverageCompensation(v float64) {
	if v > 0 {
		n.avgCompensation = v
	}
}

// Normalize classifies the document, resolves its vocabulary variant,
// extracts canonical fields sheet by sheet, and returns the merged
// record. Partial extraction succeeds; only a document with no usable
// financial content at all fails.
func (n *Normalizer) Normalize(ctx context.Context, filename string, data []byte, hint Hint) (*models.FinancialRecord, error) {
	kind := sniffKind(data)
	grids, err := n.load(kind, data)
	if err != nil {
		return nil, err
	}

	var labelLines []string
	for _, g := range grids {
		labelLines = append(labelLines, g.labelLines()...)
	}
	fullText := strings.Join(labelLines, "\n")

	det := patterns.Detect(labelLines, hint.Language)
	if det.Ambiguous {
		return nil, &NormalizationError{
			Reason: ReasonAmbiguousStandard,
			Detail: fmt.Sprintf("label vocabulary of %s matches multiple accounting standards equally", filename),
		}
	}
	variant := det.Variant

	standard := patterns.MarkedStandard(fullText)
	if standard == "" {
		standard = variant.Standard
	}
	n.log.Info().
		Str("file", filename).
		Str("kind", string(kind)).
		Str("language", variant.Language).
		Str("standard", standard).
		Int("label_hits", det.Score).
		Msg("resolved document vocabulary")

	record := &models.FinancialRecord{
		CompanyName:    hint.CompanyName,
		Industry:       hint.Industry,
		Currency:       detectCurrency(fullText),
		Period:         detectPeriod(fullText),
		SourceLanguage: variant.Language,
		SourceStandard: standard,
	}

	merged := make(map[patterns.Field]float64)
	for _, g := range grids {
		sheetKind := classifySheet(g)
		record.SheetsProcessed = append(record.SheetsProcessed, fmt.Sprintf("%s (%s)", g.name, sheetKind.roleLabel()))

		if sheetKind == SheetHR {
			if count := extractHeadcount(g, variant); count > 0 && merged[patterns.FieldEmployees] == 0 {
				merged[patterns.FieldEmployees] = float64(count)
			}
			continue
		}

		// Later sheets only fill fields still unset: the first sheet
		// that names a field is the higher-confidence source.
		for field, value := range extractFields(g, variant) {
			if _, seen := merged[field]; !seen {
				merged[field] = value
			}
		}
	}

	n.apply(record, merged)
	deriveFields(record)

	if n.missingRequired(record) && n.provider != nil {
		if payload, err := n.fallbackExtract(ctx, fullText); err != nil {
			n.log.Warn().Err(err).Msg("free-text extraction fallback failed")
		} else {
			mergePayload(record, payload)
			deriveFields(record)
		}
	}

	if !hasFinancialContent(record) {
		return nil, &NormalizationError{
			Reason: ReasonNoFinancialContent,
			Detail: fmt.Sprintf("no recognizable financial figures in %s", filename),
		}
	}

	if record.EmployeeCount == 0 {
		record.EmployeeCount = n.estimateEmployees(record)
		record.EmployeeCountEstimated = record.EmployeeCount > 0
	}
	if record.Industry == "" {
		record.Industry = classifyIndustry(record)
	}
	if record.Currency == "" {
		record.Currency = "USD"
	}
	return record, nil
}

func (n *Normalizer) load(kind FileKind, data []byte) ([]grid, error) {
	switch kind {
	case KindSpreadsheet:
		return readSpreadsheet(data)
	case KindCSV:
		g, err := readCSV(data)
		if err != nil {
			return nil, err
		}
		return []grid{g}, nil
	case KindJSON:
		g, err := readJSON(data)
		if err != nil {
			return nil, err
		}
		return []grid{g}, nil
	case KindHTML:
		return readHTML(data)
	case KindPDF:
		lines, err := readPDF(data)
		if err != nil {
			return nil, err
		}
		return []grid{linesToGrid(lines)}, nil
	default:
		return nil, &NormalizationError{Reason: ReasonUnsupportedFormat}
	}
}

// apply copies the merged canonical fields onto the record.
func (n *Normalizer) apply(record *models.FinancialRecord, merged map[patterns.Field]float64) {
	set := func(dst **float64, f patterns.Field) {
		if v, ok := merged[f]; ok {
			*dst = models.Float(v)
		}
	}
	set(&record.Revenue, patterns.FieldRevenue)
	set(&record.CostOfGoodsSold, patterns.FieldCOGS)
	set(&record.GrossProfit, patterns.FieldGrossProfit)
	set(&record.OperatingIncome, patterns.FieldOperatingIncome)
	set(&record.NetIncome, patterns.FieldNetIncome)
	set(&record.TotalAssets, patterns.FieldTotalAssets)
	set(&record.TotalLiabilities, patterns.FieldTotalLiabilities)
	set(&record.TotalEquity, patterns.FieldTotalEquity)
	set(&record.CashAndEquivalents, patterns.FieldCash)
	set(&record.AdminExpenses, patterns.FieldAdminExpenses)
	set(&record.SellingExpenses, patterns.FieldSellingExpenses)

	// Operating expenses: explicit total row wins; otherwise the sum of
	// selling + admin lines, as Colombian statements report them split.
	if v, ok := merged[patterns.FieldOperatingExpenses]; ok {
		record.OperatingExpenses = models.Float(abs(v))
	} else if record.AdminExpenses != nil || record.SellingExpenses != nil {
		sum := 0.0
		if record.AdminExpenses != nil {
			sum += abs(*record.AdminExpenses)
		}
		if record.SellingExpenses != nil {
			sum += abs(*record.SellingExpenses)
		}
		record.OperatingExpenses = models.Float(sum)
	}

	if v, ok := merged[patterns.FieldEmployees]; ok && v > 0 {
		record.EmployeeCount = int(v)
	}
}

func (n *Normalizer) missingRequired(record *models.FinancialRecord) bool {
	if record.Revenue == nil {
		return true
	}
	return record.OperatingIncome == nil && record.NetIncome == nil
}

// estimateEmployees derives a headcount from payroll-line totals when the
// documents never state one. Admin expenses proxy payroll (roughly 60% of
// them in the source data); operating expenses are a weaker fallback.
func (n *Normalizer) estimateEmployees(record *models.FinancialRecord) int {
	annual := n.avgCompensation * 12
	if record.AdminExpenses != nil && *record.AdminExpenses > 0 {
		est := int(abs(*record.AdminExpenses) * 0.6 / annual)
		return clampInt(est, 1, 100)
	}
	if record.OperatingExpenses != nil && *record.OperatingExpenses > 0 {
		est := int(abs(*record.OperatingExpenses) / (annual * 2))
		return clampInt(est, 1, 100)
	}
	if record.Revenue != nil && *record.Revenue > 0 {
		perHead := 200_000.0
		switch record.Industry {
		case "services":
			perHead = 300_000
		case "retail":
			perHead = 100_000
		}
		return clampInt(int(*record.Revenue/perHead), 1, 10_000)
	}
	return 0
}

func hasFinancialContent(r *models.FinancialRecord) bool {
	for _, f := range []*float64{
		r.Revenue, r.CostOfGoodsSold, r.GrossProfit, r.OperatingExpenses,
		r.OperatingIncome, r.NetIncome, r.TotalAssets, r.TotalLiabilities,
		r.TotalEquity, r.CashAndEquivalents,
	} {
		if f != nil {
			return true
		}
	}
	return false
}

// classifyIndustry guesses an industry from margin structure when the
// caller provided none. Coarse on purpose: the benchmark table falls
// back to generic services for anything it does not know.
func classifyIndustry(r *models.FinancialRecord) string {
	if r.Revenue == nil || *r.Revenue <= 0 {
		return "services"
	}
	rev := *r.Revenue
	cogs := 0.0
	if r.CostOfGoodsSold != nil {
		cogs = *r.CostOfGoodsSold
	}
	gm := (rev - cogs) / rev * 100
	switch {
	case gm > 80:
		return "services"
	case gm > 40:
		return "manufacturing"
	case r.TotalAssets != nil && *r.TotalAssets > rev*10:
		return "real_estate"
	default:
		return "retail"
	}
}

// extractHeadcount pulls an employee count from an HR sheet: either a
// labeled count row, or the roster length when the sheet is one row per
// employee under a header.
func extractHeadcount(g grid, v *patterns.Variant) int {
	best := 0
	for _, row := range g.rows {
		label, value, ok := rowValue(row)
		if !ok {
			continue
		}
		if field, matched := v.Match(label); matched && field == patterns.FieldEmployees {
			if int(value) > best {
				best = int(value)
			}
		}
	}
	if best == 0 && len(g.rows) > 1 {
		// Header row plus one row per employee.
		best = len(g.rows) - 1
	}
	return best
}

var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

func detectPeriod(text string) string {
	if m := yearPattern.FindString(text); m != "" {
		return "FY" + m
	}
	return "unknown"
}

func detectCurrency(text string) string {
	upper := strings.ToUpper(text)
	switch {
	case strings.Contains(upper, "COP") || strings.Contains(upper, "PESOS COLOMBIANOS"):
		return "COP"
	case strings.Contains(text, "R$") || strings.Contains(upper, "BRL") || strings.Contains(upper, "REAIS"):
		return "BRL"
	case strings.Contains(upper, "EUR") || strings.Contains(text, "€"):
		return "EUR"
	case strings.Contains(upper, "USD") || strings.Contains(text, "US$"):
		return "USD"
	}
	return ""
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
