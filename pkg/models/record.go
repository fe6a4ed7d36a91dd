package models

// FinancialRecord is the canonical extraction result produced by the
// normalizer. Optional numerics are pointers so "not found" survives
// serialization as null instead of a misleading zero.
type FinancialRecord struct {
	CompanyName string `json:"company_name"`
	Currency    string `json:"currency"`
	Period      string `json:"period"` // fiscal label, e.g. "FY2024" or "Sep 2024"

	Revenue           *float64 `json:"revenue"`
	CostOfGoodsSold   *float64 `json:"cost_of_goods_sold"`
	GrossProfit       *float64 `json:"gross_profit"`
	OperatingExpenses *float64 `json:"operating_expenses"`
	OperatingIncome   *float64 `json:"operating_income"`
	NetIncome         *float64 `json:"net_income"`

	TotalAssets        *float64 `json:"total_assets"`
	TotalLiabilities   *float64 `json:"total_liabilities"`
	TotalEquity        *float64 `json:"total_equity"`
	CashAndEquivalents *float64 `json:"cash_and_equivalents"`

	AdminExpenses   *float64 `json:"admin_expenses"`
	SellingExpenses *float64 `json:"selling_expenses"`

	EmployeeCount          int  `json:"employee_count"`
	EmployeeCountEstimated bool `json:"employee_count_estimated"`

	Industry        string   `json:"industry"`
	SheetsProcessed []string `json:"sheets_processed"` // workbook order, annotated with role
	SourceLanguage  string   `json:"source_language"`  // "es", "en", "pt", "fr"
	SourceStandard  string   `json:"source_standard"`  // "NIIF", "US_GAAP", "IFRS", "LOCAL"
}

// Float returns a pointer to v. Extraction code builds records field by
// field, so this keeps call sites short.
func Float(v float64) *float64 { return &v }

// HRData is the optional structured HR input supplied alongside the
// financial documents.
type HRData struct {
	Terminations     int            `json:"terminations"`      // last 12 months
	AverageHeadcount int            `json:"average_headcount"` // over the same window
	Departments      map[string]int `json:"departments,omitempty"`
}

// Questionnaire is the structured intake form that may accompany the
// uploaded documents. Any field may be empty.
type Questionnaire struct {
	CompanyName   string `json:"company_name"`
	Industry      string `json:"industry"`
	EmployeeCount int    `json:"employee_count"`
	RevenueRange  string `json:"revenue_range"`
	Challenges    string `json:"challenges"`
	Goals         string `json:"goals"`
}
