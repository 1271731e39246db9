package portfolio

import (
	"testing"

	"github.com/opensource-finance/defaultdesk/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestScoreBand(t *testing.T) {
	cases := []struct {
		score int
		want  domain.RiskLevel
	}{
		{0, domain.RiskCritical},
		{19, domain.RiskCritical},
		{20, domain.RiskHigh},
		{39, domain.RiskHigh},
		{40, domain.RiskMedium},
		{59, domain.RiskMedium},
		{60, domain.RiskLow},
		{100, domain.RiskLow},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ScoreBand(tc.score), "score %d", tc.score)
	}
}

func TestBadgeVariant(t *testing.T) {
	assert.Equal(t, "destructive", BadgeVariant(domain.RiskCritical))
	assert.Equal(t, "destructive", BadgeVariant(domain.RiskHigh))
	assert.Equal(t, "secondary", BadgeVariant(domain.RiskMedium))
	assert.Equal(t, "default", BadgeVariant(domain.RiskLow))
	assert.Equal(t, "secondary", BadgeVariant("Unknown"))
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "$657,000.00", FormatCurrency(decimal.NewFromInt(657000)))
	assert.Equal(t, "$28,500.00", FormatCurrency(decimal.NewFromInt(28500)))
	assert.Equal(t, "$0.00", FormatCurrency(decimal.Zero))
	assert.Equal(t, "-$12.50", FormatCurrency(decimal.RequireFromString("-12.5")))
	assert.Equal(t, "$0.01", FormatCurrency(decimal.RequireFromString("0.005")))
	assert.Equal(t, "$0.00", FormatCurrency(decimal.RequireFromString("-0.001")))

	// beyond float64 precision the cents must survive
	huge := decimal.RequireFromString("123456789012345678.99")
	assert.Equal(t, "$123,456,789,012,345,678.99", FormatCurrency(huge))
}

func TestPresent(t *testing.T) {
	rows := Present(Seed()[:1])

	assert.Equal(t, "John Anderson", rows[0].Name)
	assert.Equal(t, "$45,000.00", rows[0].LoanAmountDisplay)
	assert.Equal(t, "$3,500.00", rows[0].CollectionCostDisplay)
	assert.Equal(t, domain.RiskHigh, rows[0].ScoreBand)
	assert.Equal(t, "destructive", rows[0].Badge)
}
