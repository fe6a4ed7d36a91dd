package patterns

import "strings"

// Detection is the outcome of resolving a document against the registry.
type Detection struct {
	Variant   *Variant
	Score     int
	Ambiguous bool // two standards tied and no language hint resolved it
}

// languageMarkers are cheap word lists for language scoring, checked on
// lowercased text.
var languageMarkers = map[string][]string{
	"es": {"ingresos", "ventas", "utilidad", "gastos", "activos", "pasivos", "patrimonio"},
	"en": {"revenue", "sales", "profit", "expenses", "assets", "liabilities", "equity"},
	"pt": {"receita", "lucro", "despesas", "ativo", "passivo", "caixa"},
	"fr": {"revenus", "ventes", "charges", "actifs", "passifs"},
}

// DetectLanguage scores marker words and returns the ISO code of the
// best match. Empty text returns "en".
func DetectLanguage(text string) string {
	lower := strings.ToLower(text)
	best, bestCount := "en", 0
	for _, lang := range []string{"es", "en", "pt", "fr"} {
		count := 0
		for _, w := range languageMarkers[lang] {
			if strings.Contains(lower, w) {
				count++
			}
		}
		if count > bestCount {
			best, bestCount = lang, count
		}
	}
	return best
}

// Detect resolves the best (language, standard) variant for a document.
// All variants are scored simultaneously by label hit count over the
// given lines; the highest count wins. Ties are broken by langHint (or
// by detected language when the hint is empty). A tie across different
// standards that the language cannot break is reported as Ambiguous.
func Detect(lines []string, langHint string) Detection {
	if langHint == "" {
		langHint = DetectLanguage(strings.Join(lines, "\n"))
	}

	var top []*Variant
	bestScore := -1
	for _, v := range Registry() {
		s := v.Score(lines)
		switch {
		case s > bestScore:
			top = append(top[:0], v)
			bestScore = s
		case s == bestScore:
			top = append(top, v)
		}
	}

	det := Detection{Variant: top[0], Score: bestScore}
	if len(top) == 1 {
		return det
	}

	// Tie. Keep the variants matching the hinted language; if that
	// eliminates anything, detection narrows to the survivors.
	matching := top[:0:0]
	for _, v := range top {
		if v.Language == langHint {
			matching = append(matching, v)
		}
	}
	if len(matching) > 0 {
		top = matching
		det.Variant = top[0]
	}

	// Zero hits means the document has no statement vocabulary at all;
	// that failure belongs to the content check, not standard detection.
	if bestScore == 0 {
		return det
	}
	for _, v := range top[1:] {
		if v.Standard != top[0].Standard {
			det.Ambiguous = true
			break
		}
	}
	return det
}

// MarkedStandard scans text for explicit accounting-standard markers and
// returns the standard name, or "" when none appears. An explicit marker
// overrides scored detection of the standard tag (not of the vocabulary).
func MarkedStandard(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "us gaap") || strings.Contains(lower, "u.s. gaap"):
		return "US_GAAP"
	case strings.Contains(lower, "niif"):
		return "NIIF"
	case strings.Contains(lower, "ifrs"):
		return "IFRS"
	}
	return ""
}
