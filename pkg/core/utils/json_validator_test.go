package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Revenue  *float64 `json:"revenue"`
	Currency string   `json:"currency"`
}

func TestSmartParseStrictJSON(t *testing.T) {
	var p payload
	out, err := SmartParse(`{"revenue": 1000, "currency": "USD"}`, &p)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	require.NotNil(t, p.Revenue)
	assert.Equal(t, 1000.0, *p.Revenue)
}

func TestSmartParseRepairsFencedOutput(t *testing.T) {
	input := "```json\n{'revenue': 2500, 'currency': 'COP',}\n```"
	var p payload
	_, err := SmartParse(input, &p)
	require.NoError(t, err)
	require.NotNil(t, p.Revenue)
	assert.Equal(t, 2500.0, *p.Revenue)
	assert.Equal(t, "COP", p.Currency)
}

func TestSmartParseHjsonFallback(t *testing.T) {
	input := "{\n  revenue: 300\n  currency: EUR\n}"
	var p payload
	_, err := SmartParse(input, &p)
	require.NoError(t, err)
	require.NotNil(t, p.Revenue)
	assert.Equal(t, 300.0, *p.Revenue)
	assert.Equal(t, "EUR", p.Currency)
}

func TestCleanMarkdown(t *testing.T) {
	cases := map[string]string{
		"```markdown\n# Report\nBody\n```": "# Report\nBody",
		"```\n# Report\n```":               "# Report",
		"  # Report  ":                     "# Report",
		"plain text":                       "plain text",
	}
	for input, want := range cases {
		assert.Equal(t, want, CleanMarkdown(input))
	}
}
