package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"efficiency_optimizer/pkg/core/patterns"
)

// grid is one sheet (or sheet-like table) as raw cell text.
type grid struct {
	name string
	rows [][]string
}

// labelLines returns the text of every cell that looks like a row label,
// used for variant detection across the whole document.
func (g grid) labelLines() []string {
	var lines []string
	for _, row := range g.rows {
		for _, cell := range row {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			if _, ok := parseNumber(cell); !ok {
				lines = append(lines, cell)
			}
		}
	}
	return lines
}

// rowValue finds the label and the value of a grid row: the label is the
// first non-numeric, non-empty cell, the value the rightmost numeric
// cell after it. Rows without both are skipped by callers.
func rowValue(row []string) (label string, value float64, ok bool) {
	labelIdx := -1
	for i, cell := range row {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		if _, isNum := parseNumber(cell); !isNum {
			label = cell
			labelIdx = i
			break
		}
	}
	if labelIdx < 0 {
		return "", 0, false
	}
	for i := len(row) - 1; i > labelIdx; i-- {
		if v, isNum := parseNumber(strings.TrimSpace(row[i])); isNum {
			return label, v, true
		}
	}
	return "", 0, false
}

// preferredRow reports whether a row label names a year-to-date or total
// figure. When the same field occurs in both a monthly row and a total
// row, the total row wins.
var preferredMarkers = []string{
	"total", "ytd", "year to date", "year-to-date",
	"acumulado", "acumulada", "ejercicio",
}

func preferredRow(label string) bool {
	lower := strings.ToLower(label)
	for _, m := range preferredMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

var numberCharset = regexp.MustCompile(`^[\d.,()\s-]+$`)

// parseNumber parses a spreadsheet cell or a trailing text token as a
// number. Handles currency symbols, thousands separators in both
// "1,234,567.89" and "1.234.567,89" conventions, and accounting-style
// parentheses negatives.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	// Multi-character symbols first so "R$" is not left with a stray "R"
	// after the "$" pass.
	for _, sym := range []string{"R$", "COP", "USD", "EUR", "$", "€", "£"} {
		s = strings.ReplaceAll(s, sym, "")
	}
	s = strings.TrimSpace(s)
	if s == "" || !numberCharset.MatchString(s) {
		return 0, false
	}

	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	}
	s = strings.ReplaceAll(s, " ", "")
	if s == "" || s == "-" || s == "." || s == "," {
		return 0, false
	}

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		// The later separator is the decimal mark.
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		// Lone comma: decimal mark only when it is not a 3-digit group.
		if strings.Count(s, ",") == 1 && len(s)-lastComma-1 != 3 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case strings.Count(s, ".") > 1:
		// Multiple dots are thousands groups ("1.234.567").
		s = strings.ReplaceAll(s, ".", "")
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if neg {
		v = -v
	}
	return v, true
}

// extractFields walks one grid and returns its canonical-field values
// resolved through the variant. Within the grid, a field found in a
// non-preferred row is replaced if a preferred (total/YTD) row names the
// same field later. Merging across sheets is the caller's job and is
// first-writer-wins: this function never sees other sheets' results.
func extractFields(g grid, v *patterns.Variant) map[patterns.Field]float64 {
	fields := make(map[patterns.Field]float64)
	fromPreferred := make(map[patterns.Field]bool)
	for _, row := range g.rows {
		label, value, ok := rowValue(row)
		if !ok {
			continue
		}
		field, matched := v.Match(label)
		if !matched {
			continue
		}
		pref := preferredRow(label)
		if _, seen := fields[field]; seen && (fromPreferred[field] || !pref) {
			continue
		}
		fields[field] = value
		fromPreferred[field] = pref
	}
	return fields
}
