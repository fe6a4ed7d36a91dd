package normalize

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"
)

// FileKind is the sniffed physical format of an uploaded document.
type FileKind string

const (
	KindSpreadsheet FileKind = "spreadsheet"
	KindCSV         FileKind = "csv"
	KindPDF         FileKind = "pdf"
	KindHTML        FileKind = "html"
	KindJSON        FileKind = "json"
	KindUnknown     FileKind = "unknown"
)

// sniffKind classifies file content by magic bytes and structure, not by
// extension. Legacy binary .xls (OLE container) is not supported.
func sniffKind(data []byte) FileKind {
	switch {
	case bytes.HasPrefix(data, []byte("PK\x03\x04")):
		return KindSpreadsheet
	case bytes.HasPrefix(data, []byte("%PDF")):
		return KindPDF
	}
	trimmed := strings.TrimSpace(string(data[:min(len(data), 2048)]))
	lower := strings.ToLower(trimmed)
	switch {
	case strings.HasPrefix(lower, "<!doctype html") || strings.HasPrefix(lower, "<html") || strings.Contains(lower, "<table"):
		return KindHTML
	case strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "["):
		return KindJSON
	case strings.ContainsAny(trimmed, ",;\t") && strings.Contains(trimmed, "\n"):
		return KindCSV
	}
	return KindUnknown
}

func readSpreadsheet(data []byte) ([]grid, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	var grids []grid
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
		}
		grids = append(grids, grid{name: name, rows: rows})
	}
	return grids, nil
}

func readCSV(data []byte) (grid, error) {
	// Delimiter sniffing on the first line: Latin American exports
	// commonly use ';' because ',' is the decimal mark.
	firstLine := string(data)
	if i := strings.IndexByte(firstLine, '\n'); i >= 0 {
		firstLine = firstLine[:i]
	}
	delim := ','
	if strings.Count(firstLine, ";") > strings.Count(firstLine, ",") {
		delim = ';'
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return grid{}, fmt.Errorf("failed to parse delimited text: %w", err)
	}
	return grid{name: "main", rows: rows}, nil
}

func readPDF(data []byte) ([]string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("failed to extract pdf text: %w", err)
	}
	text, err := io.ReadAll(plain)
	if err != nil {
		return nil, fmt.Errorf("failed to read pdf text: %w", err)
	}
	return strings.Split(string(text), "\n"), nil
}

// readHTML turns every <table> in the document into a grid. Row walking
// keeps cell text only; markup and styling are irrelevant here.
func readHTML(data []byte) ([]grid, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var grids []grid
	doc.Find("table").Each(func(i int, table *goquery.Selection) {
		var rows [][]string
		table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			var cells []string
			tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, strings.TrimSpace(cell.Text()))
			})
			if len(cells) > 0 {
				rows = append(rows, cells)
			}
		})
		if len(rows) > 0 {
			grids = append(grids, grid{name: fmt.Sprintf("table_%d", i+1), rows: rows})
		}
	})
	if len(grids) == 0 {
		return nil, fmt.Errorf("no tables found in HTML document")
	}
	return grids, nil
}

// readJSON flattens a JSON object (or array of objects) into label/value
// rows so the standard pattern matching applies.
func readJSON(data []byte) (grid, error) {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return grid{}, fmt.Errorf("failed to parse JSON: %w", err)
	}

	objects := []map[string]interface{}{}
	switch t := raw.(type) {
	case map[string]interface{}:
		objects = append(objects, t)
	case []interface{}:
		for _, item := range t {
			if obj, ok := item.(map[string]interface{}); ok {
				objects = append(objects, obj)
			}
		}
	}

	var rows [][]string
	for _, obj := range objects {
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			label := strings.ReplaceAll(k, "_", " ")
			value := ""
			switch t := obj[k].(type) {
			case float64:
				value = strconv.FormatFloat(t, 'f', -1, 64)
			case string:
				value = t
			default:
				value = fmt.Sprintf("%v", t)
			}
			rows = append(rows, []string{label, value})
		}
	}
	return grid{name: "main", rows: rows}, nil
}

// linesToGrid converts free text lines (PDF extraction) into label/value
// rows by peeling a trailing numeric token off each line. Lines without
// one are kept as label-only rows so they still contribute to
// language/standard detection.
func linesToGrid(lines []string) grid {
	var rows [][]string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		tokens := strings.Fields(line)
		if len(tokens) >= 2 {
			last := tokens[len(tokens)-1]
			if _, ok := parseNumber(last); ok {
				label := strings.TrimRight(strings.Join(tokens[:len(tokens)-1], " "), ".: ")
				rows = append(rows, []string{label, last})
				continue
			}
		}
		rows = append(rows, []string{line})
	}
	return grid{name: "text", rows: rows}
}
