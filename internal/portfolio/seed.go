// Package portfolio implements the defaulter list view: the fixed seed,
// search and risk filtering, and the dashboard metrics.
package portfolio

import (
	"github.com/opensource-finance/defaultdesk/internal/domain"
	"github.com/shopspring/decimal"
)

// Seed returns the fixed defaulter list the dashboard is built over.
func Seed() []domain.Defaulter {
	return []domain.Defaulter{
		seedRecord("1", "John Anderson", 45000, 90, 25, domain.RiskHigh, 3500),
		seedRecord("2", "Sarah Mitchell", 78000, 180, 15, domain.RiskCritical, 8500),
		seedRecord("3", "Michael Rodriguez", 32000, 45, 55, domain.RiskMedium, 2100),
		seedRecord("4", "Emily Chen", 125000, 210, 8, domain.RiskCritical, 12000),
		seedRecord("5", "David Thompson", 28500, 30, 72, domain.RiskLow, 1200),
		seedRecord("6", "Lisa Wang", 56000, 120, 35, domain.RiskHigh, 4200),
		seedRecord("7", "Robert Johnson", 89000, 75, 42, domain.RiskMedium, 3800),
		seedRecord("8", "Maria Garcia", 67500, 150, 18, domain.RiskCritical, 6500),
		seedRecord("9", "James Wilson", 41000, 60, 48, domain.RiskMedium, 2800),
		seedRecord("10", "Jennifer Brown", 95000, 195, 12, domain.RiskCritical, 9800),
	}
}

func seedRecord(id, name string, loan int64, dpd, score int, level domain.RiskLevel, cost int64) domain.Defaulter {
	return domain.Defaulter{
		ID:             id,
		Name:           name,
		LoanAmount:     decimal.NewFromInt(loan),
		DaysPastDue:    dpd,
		PaymentScore:   score,
		RiskLevel:      level,
		CollectionCost: decimal.NewFromInt(cost),
	}
}
