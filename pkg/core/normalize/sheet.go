package normalize

import "strings"

// SheetKind is the detected role of one sheet within a workbook.
type SheetKind string

const (
	SheetIncome  SheetKind = "income_statement"
	SheetBalance SheetKind = "balance_sheet"
	SheetHR      SheetKind = "hr_roster"
	SheetUnknown SheetKind = "unknown"
)

// roleLabel is the human annotation appended to sheets_processed entries.
func (k SheetKind) roleLabel() string {
	switch k {
	case SheetIncome:
		return "P&L"
	case SheetBalance:
		return "Balance Sheet"
	case SheetHR:
		return "HR"
	default:
		return "unknown"
	}
}

var (
	incomeNameHints  = []string{"er", "resultados", "pl", "p&l", "income", "profit", "earnings", "dre"}
	balanceNameHints = []string{"esf", "balance", "situacion", "situación", "activo", "pasivo", "patrimonio", "assets"}
	hrNameHints      = []string{"hr", "empleado", "personal", "nomina", "nómina", "employee", "roster", "headcount", "rrhh"}

	incomeContentHints  = []string{"revenue", "sales", "ventas", "ingresos", "utilidad", "profit", "receita", "lucro"}
	balanceContentHints = []string{"assets", "activos", "liabilities", "pasivos", "equity", "patrimonio", "ativo", "passivo"}
	hrContentHints      = []string{"termination", "hire date", "fecha de ingreso", "cargo", "salario", "salary", "department", "departamento"}
)

func containsAny(s string, hints []string) bool {
	for _, h := range hints {
		if strings.Contains(s, h) {
			return true
		}
	}
	return false
}

// classifySheet determines a sheet's role from its name first, then from
// its cell content. Name hints are authoritative because workbooks often
// carry both statements with overlapping vocabulary in each sheet.
func classifySheet(g grid) SheetKind {
	name := strings.ToLower(g.name)
	switch {
	case containsAny(name, hrNameHints):
		return SheetHR
	case containsAny(name, incomeNameHints):
		return SheetIncome
	case containsAny(name, balanceNameHints):
		return SheetBalance
	}

	content := strings.ToLower(strings.Join(g.labelLines(), " "))
	switch {
	case containsAny(content, hrContentHints):
		return SheetHR
	case containsAny(content, incomeContentHints):
		return SheetIncome
	case containsAny(content, balanceContentHints):
		return SheetBalance
	}
	return SheetUnknown
}
