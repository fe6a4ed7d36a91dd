// Package kpi computes financial, HR and operational indicators from a
// normalized record and classifies them against industry benchmarks.
package kpi

import (
	"fmt"
	"os"
	"strings"

	yaml "gopkg.in/yaml.v2"
)

// Benchmarks holds the reference values for one industry. Margins, rates
// and returns are percentages; CostEfficiency and ProductivityIndex are
// fractions; the rest are plain ratios or currency amounts.
type Benchmarks struct {
	GrossMargin        float64 `yaml:"gross_margin"`
	OperatingMargin    float64 `yaml:"operating_margin"`
	NetMargin          float64 `yaml:"net_margin"`
	RevenuePerEmployee float64 `yaml:"revenue_per_employee"`
	AssetTurnover      float64 `yaml:"asset_turnover"`
	DebtToEquity       float64 `yaml:"debt_to_equity"`
	ReturnOnAssets     float64 `yaml:"return_on_assets"`
	ReturnOnEquity     float64 `yaml:"return_on_equity"`
	TurnoverRate       float64 `yaml:"turnover_rate"`
	CostEfficiency     float64 `yaml:"cost_efficiency"`
}

// genericIndustry is the fallback set applied when an industry is
// unknown. Lookups never fail.
const genericIndustry = "services"

func builtinBenchmarks() map[string]Benchmarks {
	return map[string]Benchmarks{
		"manufacturing": {
			GrossMargin: 25.0, OperatingMargin: 12.0, NetMargin: 8.0,
			RevenuePerEmployee: 250_000, AssetTurnover: 1.2, DebtToEquity: 0.6,
			ReturnOnAssets: 8.0, ReturnOnEquity: 15.0, TurnoverRate: 12.0, CostEfficiency: 0.80,
		},
		"services": {
			GrossMargin: 40.0, OperatingMargin: 15.0, NetMargin: 10.0,
			RevenuePerEmployee: 300_000, AssetTurnover: 1.5, DebtToEquity: 0.4,
			ReturnOnAssets: 8.0, ReturnOnEquity: 15.0, TurnoverRate: 18.0, CostEfficiency: 0.85,
		},
		"retail": {
			GrossMargin: 30.0, OperatingMargin: 8.0, NetMargin: 5.0,
			RevenuePerEmployee: 200_000, AssetTurnover: 2.0, DebtToEquity: 0.8,
			ReturnOnAssets: 8.0, ReturnOnEquity: 15.0, TurnoverRate: 15.0, CostEfficiency: 0.75,
		},
		"technology": {
			GrossMargin: 70.0, OperatingMargin: 25.0, NetMargin: 15.0,
			RevenuePerEmployee: 500_000, AssetTurnover: 1.0, DebtToEquity: 0.3,
			ReturnOnAssets: 8.0, ReturnOnEquity: 15.0, TurnoverRate: 15.0, CostEfficiency: 0.85,
		},
		"healthcare": {
			GrossMargin: 50.0, OperatingMargin: 18.0, NetMargin: 12.0,
			RevenuePerEmployee: 400_000, AssetTurnover: 1.3, DebtToEquity: 0.5,
			ReturnOnAssets: 8.0, ReturnOnEquity: 15.0, TurnoverRate: 14.0, CostEfficiency: 0.82,
		},
		"finance": {
			GrossMargin: 60.0, OperatingMargin: 20.0, NetMargin: 12.0,
			RevenuePerEmployee: 600_000, AssetTurnover: 0.8, DebtToEquity: 0.9,
			ReturnOnAssets: 8.0, ReturnOnEquity: 15.0, TurnoverRate: 13.0, CostEfficiency: 0.88,
		},
		"construction": {
			GrossMargin: 20.0, OperatingMargin: 8.0, NetMargin: 5.0,
			RevenuePerEmployee: 180_000, AssetTurnover: 1.5, DebtToEquity: 0.7,
			ReturnOnAssets: 8.0, ReturnOnEquity: 15.0, TurnoverRate: 20.0, CostEfficiency: 0.78,
		},
		"agriculture": {
			GrossMargin: 25.0, OperatingMargin: 10.0, NetMargin: 6.0,
			RevenuePerEmployee: 150_000, AssetTurnover: 1.0, DebtToEquity: 0.5,
			ReturnOnAssets: 8.0, ReturnOnEquity: 15.0, TurnoverRate: 22.0, CostEfficiency: 0.80,
		},
		"education": {
			GrossMargin: 35.0, OperatingMargin: 12.0, NetMargin: 8.0,
			RevenuePerEmployee: 250_000, AssetTurnover: 1.2, DebtToEquity: 0.4,
			ReturnOnAssets: 8.0, ReturnOnEquity: 15.0, TurnoverRate: 12.0, CostEfficiency: 0.82,
		},
		"hospitality": {
			GrossMargin: 30.0, OperatingMargin: 10.0, NetMargin: 6.0,
			RevenuePerEmployee: 120_000, AssetTurnover: 1.8, DebtToEquity: 0.6,
			ReturnOnAssets: 8.0, ReturnOnEquity: 15.0, TurnoverRate: 25.0, CostEfficiency: 0.75,
		},
	}
}

// BenchmarkTable is the read-only reference data for KPI classification.
// Safe for concurrent readers once constructed.
type BenchmarkTable struct {
	industries map[string]Benchmarks
}

// NewBenchmarkTable returns the built-in table.
func NewBenchmarkTable() *BenchmarkTable {
	return &BenchmarkTable{industries: builtinBenchmarks()}
}

// LoadBenchmarkTable overlays industry entries from a YAML file onto the
// built-in table. A missing file is not an error; the built-ins apply.
func LoadBenchmarkTable(path string) (*BenchmarkTable, error) {
	table := NewBenchmarkTable()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return table, nil
		}
		return nil, fmt.Errorf("failed to read benchmark file %s: %w", path, err)
	}
	overrides := map[string]Benchmarks{}
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse benchmark file %s: %w", path, err)
	}
	for industry, b := range overrides {
		table.industries[strings.ToLower(industry)] = b
	}
	return table, nil
}

// For returns the benchmarks for an industry, falling back to the
// generic services set when the industry is unknown.
func (t *BenchmarkTable) For(industry string) Benchmarks {
	if b, ok := t.industries[strings.ToLower(industry)]; ok {
		return b
	}
	return t.industries[genericIndustry]
}

// Known reports whether the table has an exact entry for the industry.
func (t *BenchmarkTable) Known(industry string) bool {
	_, ok := t.industries[strings.ToLower(industry)]
	return ok
}
