package portfolio

import (
	"math/big"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/opensource-finance/defaultdesk/internal/domain"
	"github.com/shopspring/decimal"
)

// ScoreBand maps a payment score to the colour band used when rendering it.
// This is a display mapping only; a defaulter's RiskLevel is not derived from it.
func ScoreBand(paymentScore int) domain.RiskLevel {
	switch {
	case paymentScore < 20:
		return domain.RiskCritical
	case paymentScore < 40:
		return domain.RiskHigh
	case paymentScore < 60:
		return domain.RiskMedium
	default:
		return domain.RiskLow
	}
}

// BadgeVariant returns the badge style for a risk level.
func BadgeVariant(level domain.RiskLevel) string {
	switch level {
	case domain.RiskCritical, domain.RiskHigh:
		return "destructive"
	case domain.RiskLow:
		return "default"
	default:
		return "secondary"
	}
}

// FormatCurrency renders an amount as US dollars, e.g. $657,000.00.
func FormatCurrency(amount decimal.Decimal) string {
	amount = amount.Round(2)
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Abs()
	}
	whole, cents, _ := strings.Cut(amount.StringFixed(2), ".")
	n, _ := new(big.Int).SetString(whole, 10)
	return sign + "$" + humanize.BigComma(n) + "." + cents
}

// Row is a defaulter as displayed in the table.
type Row struct {
	domain.Defaulter
	LoanAmountDisplay     string           `json:"loanAmountDisplay"`
	CollectionCostDisplay string           `json:"collectionCostDisplay"`
	ScoreBand             domain.RiskLevel `json:"scoreBand"`
	Badge                 string           `json:"badge"`
}

// Present decorates records with their display values.
func Present(records []domain.Defaulter) []Row {
	rows := make([]Row, len(records))
	for i, d := range records {
		rows[i] = Row{
			Defaulter:             d,
			LoanAmountDisplay:     FormatCurrency(d.LoanAmount),
			CollectionCostDisplay: FormatCurrency(d.CollectionCost),
			ScoreBand:             ScoreBand(d.PaymentScore),
			Badge:                 BadgeVariant(d.RiskLevel),
		}
	}
	return rows
}
