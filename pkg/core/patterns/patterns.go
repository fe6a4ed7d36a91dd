// Package patterns holds the locale/standard vocabulary that maps
// financial-statement row labels to canonical fields. It is the leaf
// dependency of the normalizer: a static registry of tagged variants
// resolved by a pure scoring function.
package patterns

import (
	"regexp"
	"strings"
)

// Field identifies a canonical financial quantity independent of source
// language or accounting standard.
type Field string

const (
	FieldRevenue           Field = "revenue"
	FieldCOGS              Field = "cost_of_goods_sold"
	FieldGrossProfit       Field = "gross_profit"
	FieldOperatingExpenses Field = "operating_expenses"
	FieldOperatingIncome   Field = "operating_income"
	FieldNetIncome         Field = "net_income"
	FieldTotalAssets       Field = "total_assets"
	FieldTotalLiabilities  Field = "total_liabilities"
	FieldTotalEquity       Field = "total_equity"
	FieldCash              Field = "cash_and_equivalents"
	FieldAdminExpenses     Field = "admin_expenses"
	FieldSellingExpenses   Field = "selling_expenses"
	FieldEmployees         Field = "employee_count"
)

// Variant is one (language, accounting standard) vocabulary.
type Variant struct {
	Language string // ISO 639-1
	Standard string // "NIIF", "US_GAAP", "IFRS", "LOCAL"
	labels   map[Field][]*regexp.Regexp
}

// Key returns the registry key, e.g. "NIIF_ES".
func (v *Variant) Key() string {
	return v.Standard + "_" + strings.ToUpper(v.Language)
}

// Match returns the canonical field for a row label, if any pattern of
// this variant matches. More specific fields are listed before generic
// ones in the tables below, and lookup preserves that order.
func (v *Variant) Match(label string) (Field, bool) {
	for _, f := range fieldOrder {
		for _, re := range v.labels[f] {
			if re.MatchString(label) {
				return f, true
			}
		}
	}
	return "", false
}

// Score counts how many lines of text match any label pattern of this
// variant. Used to pick the variant for a document.
func (v *Variant) Score(lines []string) int {
	n := 0
	for _, line := range lines {
		if _, ok := v.Match(line); ok {
			n++
		}
	}
	return n
}

// fieldOrder fixes match precedence: totals and named results before
// generic one-word patterns like "ACTIVOS".
var fieldOrder = []Field{
	FieldGrossProfit,
	FieldOperatingIncome,
	FieldNetIncome,
	FieldCOGS,
	FieldAdminExpenses,
	FieldSellingExpenses,
	FieldOperatingExpenses,
	FieldRevenue,
	FieldTotalAssets,
	FieldTotalLiabilities,
	FieldTotalEquity,
	FieldCash,
	FieldEmployees,
}

func compile(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile("(?i)"+p))
	}
	return out
}

// Registry returns all known variants. The variants and their compiled
// patterns are package-level and read-only.
func Registry() []*Variant { return registry }

var registry = []*Variant{
	{
		Language: "es",
		Standard: "NIIF",
		labels: map[Field][]*regexp.Regexp{
			FieldRevenue: compile(
				`INGRESOS DE ACTIVIDADES ORDINARIAS`,
				`INGRESOS ORDINARIOS`,
				`INGRESOS OPERACIONALES`,
				`VENTAS BRUTAS`,
				`VENTAS NETAS`,
			),
			FieldCOGS: compile(
				`COSTO DE LA MERCANCIA VENDIDA`,
				`COSTOS? DE VENTAS?`,
				`COSTO DE PRODUCTOS VENDIDOS`,
			),
			FieldGrossProfit: compile(
				`UTILIDAD BRUTA`,
				`GANANCIA BRUTA`,
				`MARGEN BRUTO`,
			),
			FieldOperatingExpenses: compile(
				`TOTAL GASTOS OPERACIONALES`,
				`GASTOS OPERACIONALES`,
				`GASTOS GENERALES`,
			),
			FieldAdminExpenses: compile(
				`GASTOS DE ADMINISTRACI[OÓ]N`,
			),
			FieldSellingExpenses: compile(
				`GASTOS DE VENTAS`,
			),
			FieldOperatingIncome: compile(
				`RESULTADO OPERACIONAL`,
				`UTILIDAD OPERACIONAL`,
				`GANANCIA OPERACIONAL`,
			),
			FieldNetIncome: compile(
				`RESULTADO(?: NETO)? DEL(?: DEL)? EJERCICIO`,
				`UTILIDAD NETA`,
				`GANANCIA NETA`,
				`RESULTADO NETO`,
			),
			FieldTotalAssets: compile(
				`TOTAL ACTIVOS`,
				`ACTIVOS? TOTAL(?:ES)?`,
			),
			FieldTotalLiabilities: compile(
				`TOTAL PASIVOS`,
				`PASIVOS? TOTAL(?:ES)?`,
			),
			FieldTotalEquity: compile(
				`TOTAL PATRIMONIO`,
				`PATRIMONIO TOTAL`,
			),
			FieldCash: compile(
				`EFECTIVO Y EQUIVALENTES`,
				`CAJA Y BANCOS`,
			),
			FieldEmployees: compile(
				`EMPLEADOS`,
				`PERSONAL`,
				`TRABAJADORES`,
			),
		},
	},
	{
		Language: "en",
		Standard: "US_GAAP",
		labels: map[Field][]*regexp.Regexp{
			FieldRevenue: compile(
				`TOTAL REVENUE`,
				`NET SALES`,
				`GROSS SALES`,
				`\bREVENUES?\b`,
			),
			FieldCOGS: compile(
				`COST OF GOODS SOLD`,
				`COST OF SALES`,
				`COST OF REVENUE`,
				`\bCOGS\b`,
			),
			FieldGrossProfit: compile(
				`GROSS PROFIT`,
				`GROSS INCOME`,
			),
			FieldOperatingExpenses: compile(
				`TOTAL OPERATING EXPENSES`,
				`OPERATING EXPENSES`,
				`SELLING, GENERAL (?:&|AND) ADMINISTRATIVE`,
				`\bSG&A\b`,
			),
			FieldAdminExpenses: compile(
				`ADMINISTRATIVE EXPENSES`,
				`GENERAL AND ADMINISTRATIVE`,
			),
			FieldSellingExpenses: compile(
				`SELLING EXPENSES`,
			),
			FieldOperatingIncome: compile(
				`OPERATING INCOME`,
				`OPERATING PROFIT`,
				`\bEBIT\b`,
				`EARNINGS BEFORE INTEREST AND TAXES`,
			),
			FieldNetIncome: compile(
				`NET INCOME`,
				`NET PROFIT`,
				`NET EARNINGS`,
			),
			FieldTotalAssets: compile(
				`TOTAL ASSETS`,
			),
			FieldTotalLiabilities: compile(
				`TOTAL LIABILITIES`,
			),
			FieldTotalEquity: compile(
				`TOTAL (?:SHAREHOLDERS'?|STOCKHOLDERS'?)? ?EQUITY`,
				`SHAREHOLDERS'? EQUITY`,
				`STOCKHOLDERS'? EQUITY`,
			),
			FieldCash: compile(
				`CASH AND (?:CASH )?EQUIVALENTS`,
			),
			FieldEmployees: compile(
				`\bEMPLOYEES\b`,
				`\bHEADCOUNT\b`,
				`\bWORKFORCE\b`,
				`\bPERSONNEL\b`,
			),
		},
	},
	{
		Language: "en",
		Standard: "IFRS",
		labels: map[Field][]*regexp.Regexp{
			FieldRevenue: compile(
				`\bREVENUE\b`,
				`\bTURNOVER\b`,
				`INCOME FROM OPERATIONS`,
			),
			FieldCOGS: compile(
				`COST OF SALES`,
				`COST OF GOODS SOLD`,
			),
			FieldGrossProfit: compile(
				`GROSS PROFIT`,
			),
			FieldOperatingExpenses: compile(
				`OPERATING EXPENSES`,
			),
			FieldAdminExpenses: compile(
				`ADMINISTRATIVE EXPENSES`,
			),
			FieldSellingExpenses: compile(
				`SELLING EXPENSES`,
				`DISTRIBUTION COSTS`,
			),
			FieldOperatingIncome: compile(
				`OPERATING PROFIT`,
				`PROFIT FROM OPERATIONS`,
			),
			FieldNetIncome: compile(
				`PROFIT FOR THE (?:PERIOD|YEAR)`,
				`NET PROFIT`,
				`NET INCOME`,
			),
			FieldTotalAssets: compile(
				`TOTAL ASSETS`,
			),
			FieldTotalLiabilities: compile(
				`TOTAL LIABILITIES`,
			),
			FieldTotalEquity: compile(
				`TOTAL EQUITY`,
			),
			FieldCash: compile(
				`CASH AND CASH EQUIVALENTS`,
			),
			FieldEmployees: compile(
				`\bEMPLOYEES\b`,
				`\bPERSONNEL\b`,
			),
		},
	},
	{
		Language: "pt",
		Standard: "LOCAL",
		labels: map[Field][]*regexp.Regexp{
			FieldRevenue: compile(
				`RECEITA OPERACIONAL`,
				`RECEITA BRUTA`,
				`VENDAS L[IÍ]QUIDAS`,
			),
			FieldCOGS: compile(
				`CUSTO DOS PRODUTOS VENDIDOS`,
				`CUSTO DAS MERCADORIAS VENDIDAS`,
				`\bCPV\b`,
			),
			FieldGrossProfit: compile(
				`LUCRO BRUTO`,
				`MARGEM BRUTA`,
			),
			FieldOperatingExpenses: compile(
				`DESPESAS OPERACIONAIS`,
				`DESPESAS GERAIS`,
			),
			FieldAdminExpenses: compile(
				`DESPESAS ADMINISTRATIVAS`,
			),
			FieldSellingExpenses: compile(
				`DESPESAS COM VENDAS`,
			),
			FieldOperatingIncome: compile(
				`RESULTADO OPERACIONAL`,
				`LUCRO OPERACIONAL`,
			),
			FieldNetIncome: compile(
				`LUCRO L[IÍ]QUIDO`,
				`RESULTADO L[IÍ]QUIDO`,
			),
			FieldTotalAssets: compile(
				`TOTAL DO ATIVO`,
				`ATIVO TOTAL`,
			),
			FieldTotalLiabilities: compile(
				`TOTAL DO PASSIVO`,
				`PASSIVO TOTAL`,
			),
			FieldTotalEquity: compile(
				`PATRIM[OÔ]NIO L[IÍ]QUIDO`,
			),
			FieldCash: compile(
				`CAIXA E EQUIVALENTES`,
				`DISPON[IÍ]VEL`,
			),
			FieldEmployees: compile(
				`FUNCION[AÁ]RIOS`,
				`COLABORADORES`,
			),
		},
	},
}
