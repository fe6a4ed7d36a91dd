package normalize

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"efficiency_optimizer/pkg/core/patterns"
	"efficiency_optimizer/pkg/models"
)

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1234", 1234, true},
		{"1,234.56", 1234.56, true},
		{"1.234.567", 1234567, true},
		{"1.234,56", 1234.56, true},
		{"12,5", 12.5, true},
		{"(500)", -500, true},
		{"$ 1,000", 1000, true},
		{"COP 2.500.000", 2500000, true},
		{"R$ 1.000,50", 1000.50, true},
		{"R$1.000.000", 1000000, true},
		{"R$ 500", 500, true},
		{"-42", -42, true},
		{"", 0, false},
		{"total", 0, false},
		{"FY2023 report", 0, false},
	}
	for _, c := range cases {
		got, ok := parseNumber(c.in)
		assert.Equal(t, c.ok, ok, "input %q", c.in)
		if c.ok {
			assert.InDelta(t, c.want, got, 0.0001, "input %q", c.in)
		}
	}
}

func TestExtractFieldsPreferredRow(t *testing.T) {
	v := spanishVariant(t)

	g := grid{name: "er", rows: [][]string{
		{"UTILIDAD NETA ENERO", "100"},
		{"UTILIDAD NETA TOTAL", "1200"},
	}}
	fields := extractFields(g, v)
	assert.InDelta(t, 1200, fields[patterns.FieldNetIncome], 0.0001)

	// Preferred row first: later monthly rows never downgrade it.
	g = grid{name: "er", rows: [][]string{
		{"UTILIDAD NETA TOTAL", "1200"},
		{"UTILIDAD NETA ENERO", "100"},
	}}
	fields = extractFields(g, v)
	assert.InDelta(t, 1200, fields[patterns.FieldNetIncome], 0.0001)
}

func spanishVariant(t *testing.T) *patterns.Variant {
	t.Helper()
	for _, v := range patterns.Registry() {
		if v.Key() == "NIIF_ES" {
			return v
		}
	}
	t.Fatal("spanish variant missing")
	return nil
}

const spanishCSV = `ESTADO DE RESULTADOS EJERCICIO 2023;VALOR COP
INGRESOS OPERACIONALES;500.000.000
COSTO DE VENTAS;280.000.000
UTILIDAD BRUTA;220.000.000
GASTOS DE ADMINISTRACION;80.000.000
GASTOS DE VENTAS;40.000.000
UTILIDAD OPERACIONAL;100.000.000
UTILIDAD NETA;60.000.000
`

func TestNormalizeSpanishCSV(t *testing.T) {
	n := NewNormalizer(nil)
	rec, err := n.Normalize(context.Background(), "estado.csv", []byte(spanishCSV), Hint{
		CompanyName: "Comercial Andina",
		Industry:    "services",
	})
	require.NoError(t, err)

	require.NotNil(t, rec.Revenue)
	assert.InDelta(t, 500_000_000, *rec.Revenue, 1)
	require.NotNil(t, rec.CostOfGoodsSold)
	assert.InDelta(t, 280_000_000, *rec.CostOfGoodsSold, 1)
	require.NotNil(t, rec.GrossProfit)
	assert.InDelta(t, 220_000_000, *rec.GrossProfit, 1)
	require.NotNil(t, rec.OperatingExpenses)
	assert.InDelta(t, 120_000_000, *rec.OperatingExpenses, 1)
	require.NotNil(t, rec.OperatingIncome)
	assert.InDelta(t, 100_000_000, *rec.OperatingIncome, 1)
	require.NotNil(t, rec.NetIncome)
	assert.InDelta(t, 60_000_000, *rec.NetIncome, 1)

	assert.Equal(t, "es", rec.SourceLanguage)
	assert.Equal(t, "NIIF", rec.SourceStandard)
	assert.Equal(t, "COP", rec.Currency)
	assert.Equal(t, "FY2023", rec.Period)
	assert.Equal(t, "services", rec.Industry)

	// No explicit headcount: estimated from admin expenses.
	assert.True(t, rec.EmployeeCountEstimated)
	assert.Equal(t, 4, rec.EmployeeCount)
}

const portugueseCSV = `DEMONSTRACAO DO RESULTADO EXERCICIO 2023;VALOR R$
RECEITA OPERACIONAL;R$ 1.000.000
CUSTO DOS PRODUTOS VENDIDOS;R$ 600.000,00
LUCRO LIQUIDO;R$ 100.000,00
`

func TestNormalizePortugueseCurrencyCells(t *testing.T) {
	n := NewNormalizer(nil)
	rec, err := n.Normalize(context.Background(), "dre.csv", []byte(portugueseCSV), Hint{Industry: "retail"})
	require.NoError(t, err)

	require.NotNil(t, rec.Revenue)
	assert.InDelta(t, 1_000_000, *rec.Revenue, 1)
	require.NotNil(t, rec.CostOfGoodsSold)
	assert.InDelta(t, 600_000, *rec.CostOfGoodsSold, 1)
	require.NotNil(t, rec.GrossProfit)
	assert.InDelta(t, 400_000, *rec.GrossProfit, 1)
	require.NotNil(t, rec.NetIncome)
	assert.InDelta(t, 100_000, *rec.NetIncome, 1)

	assert.Equal(t, "pt", rec.SourceLanguage)
	assert.Equal(t, "LOCAL", rec.SourceStandard)
	assert.Equal(t, "BRL", rec.Currency)
	assert.Equal(t, "FY2023", rec.Period)
}

func TestNormalizeIdempotent(t *testing.T) {
	n := NewNormalizer(nil)
	hint := Hint{CompanyName: "Comercial Andina", Industry: "retail"}

	first, err := n.Normalize(context.Background(), "estado.csv", []byte(spanishCSV), hint)
	require.NoError(t, err)
	second, err := n.Normalize(context.Background(), "estado.csv", []byte(spanishCSV), hint)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestNormalizeReconcilesSubtotals(t *testing.T) {
	src := `INGRESOS OPERACIONALES;1000
COSTO DE VENTAS;600
UTILIDAD BRUTA;900
`
	n := NewNormalizer(nil)
	rec, err := n.Normalize(context.Background(), "estado.csv", []byte(src), Hint{Industry: "retail"})
	require.NoError(t, err)

	// The reported subtotal disagrees with its primitives; primitives win.
	require.NotNil(t, rec.GrossProfit)
	assert.InDelta(t, 400, *rec.GrossProfit, 0.0001)
}

func TestNormalizeWorkbook(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Resultados"))
	incomeRows := [][]interface{}{
		{"INGRESOS OPERACIONALES", 800000},
		{"COSTO DE VENTAS", 500000},
		{"UTILIDAD BRUTA", 300000},
		{"TOTAL ACTIVOS", 900000}, // conflicts with the balance sheet below
	}
	for i, row := range incomeRows {
		require.NoError(t, f.SetSheetRow("Resultados", cellAddr(t, i), &row))
	}

	_, err := f.NewSheet("Balance")
	require.NoError(t, err)
	balanceRows := [][]interface{}{
		{"TOTAL ACTIVOS", 1000000},
		{"TOTAL PASIVOS", 400000},
		{"TOTAL PATRIMONIO", 600000},
		{"EFECTIVO Y EQUIVALENTES", 150000},
	}
	for i, row := range balanceRows {
		require.NoError(t, f.SetSheetRow("Balance", cellAddr(t, i), &row))
	}

	_, err = f.NewSheet("Empleados")
	require.NoError(t, err)
	hrRows := [][]interface{}{
		{"Nombre", "Cargo", "Salario"},
		{"Ana", "Gerente", 9000000},
		{"Luis", "Analista", 4000000},
		{"Marta", "Analista", 4000000},
		{"Jorge", "Auxiliar", 2500000},
		{"Sofia", "Auxiliar", 2500000},
	}
	for i, row := range hrRows {
		require.NoError(t, f.SetSheetRow("Empleados", cellAddr(t, i), &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	n := NewNormalizer(nil)
	rec, err := n.Normalize(context.Background(), "empresa.xlsx", buf.Bytes(), Hint{Industry: "retail"})
	require.NoError(t, err)

	// First sheet naming a field wins the merge.
	require.NotNil(t, rec.TotalAssets)
	assert.InDelta(t, 900000, *rec.TotalAssets, 1)
	require.NotNil(t, rec.TotalLiabilities)
	assert.InDelta(t, 400000, *rec.TotalLiabilities, 1)
	require.NotNil(t, rec.TotalEquity)
	assert.InDelta(t, 600000, *rec.TotalEquity, 1)
	require.NotNil(t, rec.CashAndEquivalents)
	assert.InDelta(t, 150000, *rec.CashAndEquivalents, 1)

	// Roster-style HR sheet: one row per employee under a header.
	assert.Equal(t, 5, rec.EmployeeCount)
	assert.False(t, rec.EmployeeCountEstimated)

	assert.Equal(t, []string{
		"Resultados (P&L)",
		"Balance (Balance Sheet)",
		"Empleados (HR)",
	}, rec.SheetsProcessed)
}

func cellAddr(t *testing.T, rowIdx int) string {
	t.Helper()
	addr, err := excelize.JoinCellName("A", rowIdx+1)
	require.NoError(t, err)
	return addr
}

const spanishHTML = `<html><body>
<table>
<tr><th>ESTADO DE RESULTADOS 2023</th><th>VALOR COP</th></tr>
<tr><td>INGRESOS OPERACIONALES</td><td>500.000.000</td></tr>
<tr><td>COSTO DE VENTAS</td><td>280.000.000</td></tr>
<tr><td>UTILIDAD NETA</td><td>60.000.000</td></tr>
</table>
</body></html>`

func TestNormalizeHTMLTable(t *testing.T) {
	n := NewNormalizer(nil)
	rec, err := n.Normalize(context.Background(), "estado.html", []byte(spanishHTML), Hint{Industry: "retail"})
	require.NoError(t, err)

	require.NotNil(t, rec.Revenue)
	assert.InDelta(t, 500_000_000, *rec.Revenue, 1)
	require.NotNil(t, rec.CostOfGoodsSold)
	assert.InDelta(t, 280_000_000, *rec.CostOfGoodsSold, 1)
	require.NotNil(t, rec.NetIncome)
	assert.InDelta(t, 60_000_000, *rec.NetIncome, 1)

	assert.Equal(t, "es", rec.SourceLanguage)
	assert.Equal(t, "COP", rec.Currency)
	assert.Equal(t, []string{"table_1 (P&L)"}, rec.SheetsProcessed)
}

func TestLinesToGridPeelsTrailingNumbers(t *testing.T) {
	lines := []string{
		"ESTADO DE RESULTADOS",
		"INGRESOS OPERACIONALES 500.000.000",
		"",
		"UTILIDAD NETA: 60.000.000",
		"Notas a los estados financieros",
	}
	g := linesToGrid(lines)
	require.Len(t, g.rows, 4)
	assert.Equal(t, []string{"INGRESOS OPERACIONALES", "500.000.000"}, g.rows[1])
	assert.Equal(t, []string{"UTILIDAD NETA", "60.000.000"}, g.rows[2])

	fields := extractFields(g, spanishVariant(t))
	assert.InDelta(t, 500_000_000, fields[patterns.FieldRevenue], 1)
	assert.InDelta(t, 60_000_000, fields[patterns.FieldNetIncome], 1)
}

func TestExtractHeadcountSingleEmployeeRoster(t *testing.T) {
	g := grid{name: "empleados", rows: [][]string{
		{"Nombre", "Cargo", "Salario"},
		{"Ana", "Gerente", "9000000"},
	}}
	assert.Equal(t, 1, extractHeadcount(g, spanishVariant(t)))
}

func TestDetectCurrency(t *testing.T) {
	assert.Equal(t, "COP", detectCurrency("VALOR EN PESOS COLOMBIANOS"))
	assert.Equal(t, "BRL", detectCurrency("VALOR R$"))
	assert.Equal(t, "USD", detectCurrency("amounts in USD thousands"))
	assert.Equal(t, "", detectCurrency("statement of income"))
}

func TestMergePayloadKeepsDetectedCurrency(t *testing.T) {
	detected := &models.FinancialRecord{Currency: "USD"}
	mergePayload(detected, &extractionPayload{Currency: "EUR"})
	assert.Equal(t, "USD", detected.Currency)

	undetected := &models.FinancialRecord{}
	mergePayload(undetected, &extractionPayload{Currency: "EUR"})
	assert.Equal(t, "EUR", undetected.Currency)
}

func TestNormalizeJSON(t *testing.T) {
	src := `{
		"revenue": 1000000,
		"cost_of_goods_sold": 400000,
		"operating_income": 250000,
		"net_income": 120000,
		"total_assets": 2000000
	}`
	n := NewNormalizer(nil)
	rec, err := n.Normalize(context.Background(), "export.json", []byte(src), Hint{Industry: "services"})
	require.NoError(t, err)

	require.NotNil(t, rec.Revenue)
	assert.InDelta(t, 1000000, *rec.Revenue, 1)
	require.NotNil(t, rec.GrossProfit)
	assert.InDelta(t, 600000, *rec.GrossProfit, 1)
	require.NotNil(t, rec.NetIncome)
	assert.InDelta(t, 120000, *rec.NetIncome, 1)

	// Revenue-based headcount estimate for the services benchmark.
	assert.True(t, rec.EmployeeCountEstimated)
	assert.Equal(t, 3, rec.EmployeeCount)
}

func TestNormalizeNoFinancialContent(t *testing.T) {
	src := "meeting notes;owner\nagenda review;ana\n"
	n := NewNormalizer(nil)
	_, err := n.Normalize(context.Background(), "notes.csv", []byte(src), Hint{})
	require.Error(t, err)
	assert.True(t, IsNormalizationError(err, ReasonNoFinancialContent))
}

func TestNormalizeAmbiguousStandard(t *testing.T) {
	src := `COST OF SALES;100
GROSS PROFIT;50
TOTAL ASSETS;500
TOTAL LIABILITIES;200
`
	n := NewNormalizer(nil)
	_, err := n.Normalize(context.Background(), "statement.csv", []byte(src), Hint{})
	require.Error(t, err)
	assert.True(t, IsNormalizationError(err, ReasonAmbiguousStandard))
}

func TestNormalizeUnsupportedFormat(t *testing.T) {
	n := NewNormalizer(nil)
	_, err := n.Normalize(context.Background(), "blob.bin", []byte{0x00, 0x01, 0x02}, Hint{})
	require.Error(t, err)
	assert.True(t, IsNormalizationError(err, ReasonUnsupportedFormat))
}

func TestSniffKind(t *testing.T) {
	assert.Equal(t, KindPDF, sniffKind([]byte("%PDF-1.7 junk")))
	assert.Equal(t, KindSpreadsheet, sniffKind([]byte("PK\x03\x04rest")))
	assert.Equal(t, KindHTML, sniffKind([]byte("<html><body><table></table></body></html>")))
	assert.Equal(t, KindJSON, sniffKind([]byte(`{"revenue": 1}`)))
	assert.Equal(t, KindCSV, sniffKind([]byte("a;b\nc;d\n")))
	assert.Equal(t, KindUnknown, sniffKind([]byte("just words")))
}
