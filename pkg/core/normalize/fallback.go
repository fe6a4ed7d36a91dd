package normalize

import (
	"context"
	"fmt"
	"strings"

	"efficiency_optimizer/pkg/core/utils"
	"efficiency_optimizer/pkg/models"
)

const extractionSystemPrompt = `You are a financial data extraction engine.
You read raw financial statement text in any language and return the figures
as strict JSON. Return ONLY a JSON object, no prose, no markdown fences.
Use numbers for figures and null for anything not present in the text.
Never invent values.`

// fallbackMaxChars bounds the document excerpt sent to the model.
const fallbackMaxChars = 8000

// extractionPayload mirrors the canonical record fields the model is
// asked to fill. Pointers distinguish "absent from the text" from zero.
type extractionPayload struct {
	CompanyName        string   `json:"company_name"`
	Currency           string   `json:"currency"`
	Period             string   `json:"period"`
	Revenue            *float64 `json:"revenue"`
	CostOfGoodsSold    *float64 `json:"cost_of_goods_sold"`
	GrossProfit        *float64 `json:"gross_profit"`
	OperatingExpenses  *float64 `json:"operating_expenses"`
	OperatingIncome    *float64 `json:"operating_income"`
	NetIncome          *float64 `json:"net_income"`
	TotalAssets        *float64 `json:"total_assets"`
	TotalLiabilities   *float64 `json:"total_liabilities"`
	TotalEquity        *float64 `json:"total_equity"`
	CashAndEquivalents *float64 `json:"cash_and_equivalents"`
	AdminExpenses      *float64 `json:"admin_expenses"`
	SellingExpenses    *float64 `json:"selling_expenses"`
	EmployeeCount      *float64 `json:"employee_count"`
}

// fallbackExtract asks the configured provider to read the document text
// directly. Used only when pattern extraction left the record without
// the figures KPI computation needs.
func (n *Normalizer) fallbackExtract(ctx context.Context, text string) (*extractionPayload, error) {
	if len(text) > fallbackMaxChars {
		text = text[:fallbackMaxChars]
	}
	prompt := fmt.Sprintf(`Extract the financial figures from the statement text below.

Respond with a JSON object using exactly these keys:
company_name, currency, period, revenue, cost_of_goods_sold, gross_profit,
operating_expenses, operating_income, net_income, total_assets,
total_liabilities, total_equity, cash_and_equivalents, admin_expenses,
selling_expenses, employee_count

Statement text:
%s`, text)

	raw, err := n.provider.GenerateResponse(ctx, prompt, extractionSystemPrompt, map[string]interface{}{
		"temperature": 0.0,
	})
	if err != nil {
		return nil, fmt.Errorf("extraction call failed: %w", err)
	}

	var payload extractionPayload
	if _, err := utils.SmartParse(strings.TrimSpace(raw), &payload); err != nil {
		return nil, fmt.Errorf("unparseable extraction response: %w", err)
	}
	return &payload, nil
}

// mergePayload copies model-extracted values onto the record, filling
// only fields the pattern pass left unset. Pattern hits stay
// authoritative.
func mergePayload(r *models.FinancialRecord, p *extractionPayload) {
	if p == nil {
		return
	}
	fill := func(dst **float64, src *float64) {
		if *dst == nil && src != nil {
			*dst = src
		}
	}
	fill(&r.Revenue, p.Revenue)
	fill(&r.CostOfGoodsSold, p.CostOfGoodsSold)
	fill(&r.GrossProfit, p.GrossProfit)
	fill(&r.OperatingExpenses, p.OperatingExpenses)
	fill(&r.OperatingIncome, p.OperatingIncome)
	fill(&r.NetIncome, p.NetIncome)
	fill(&r.TotalAssets, p.TotalAssets)
	fill(&r.TotalLiabilities, p.TotalLiabilities)
	fill(&r.TotalEquity, p.TotalEquity)
	fill(&r.CashAndEquivalents, p.CashAndEquivalents)
	fill(&r.AdminExpenses, p.AdminExpenses)
	fill(&r.SellingExpenses, p.SellingExpenses)

	if r.CompanyName == "" && p.CompanyName != "" {
		r.CompanyName = p.CompanyName
	}
	if r.Currency == "" && p.Currency != "" {
		r.Currency = p.Currency
	}
	if r.Period == "unknown" && p.Period != "" {
		r.Period = p.Period
	}
	if r.EmployeeCount == 0 && p.EmployeeCount != nil && *p.EmployeeCount > 0 {
		r.EmployeeCount = int(*p.EmployeeCount)
	}
}
