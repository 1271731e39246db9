package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// RiskLevel is the ordinal severity bucket assigned to a defaulter.
type RiskLevel string

const (
	RiskCritical RiskLevel = "Critical"
	RiskHigh     RiskLevel = "High"
	RiskMedium   RiskLevel = "Medium"
	RiskLow      RiskLevel = "Low"
)

// RiskFilterAll is the filter value that matches every risk level.
const RiskFilterAll = "All Risk Levels"

// RiskLevels returns the levels ordered from most to least severe.
func RiskLevels() []RiskLevel {
	return []RiskLevel{RiskCritical, RiskHigh, RiskMedium, RiskLow}
}

// Severity ranks a level; higher is more severe. Unknown levels rank 0.
func (l RiskLevel) Severity() int {
	switch l {
	case RiskCritical:
		return 4
	case RiskHigh:
		return 3
	case RiskMedium:
		return 2
	case RiskLow:
		return 1
	default:
		return 0
	}
}

// ParseRiskLevel resolves a level name case-insensitively.
func ParseRiskLevel(s string) (RiskLevel, error) {
	for _, l := range RiskLevels() {
		if strings.EqualFold(strings.TrimSpace(s), string(l)) {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: unknown risk level %q", ErrInvalidInput, s)
}

// Defaulter is a borrower record currently in default.
type Defaulter struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	LoanAmount     decimal.Decimal `json:"loanAmount"`
	DaysPastDue    int             `json:"daysPastDue"`
	PaymentScore   int             `json:"paymentScore"` // 0-100
	RiskLevel      RiskLevel       `json:"riskLevel"`
	CollectionCost decimal.Decimal `json:"collectionCost"`
}

// Metrics are the dashboard aggregates, always computed over the full record set.
type Metrics struct {
	TotalDefaulters     int               `json:"totalDefaulters"`
	TotalLoanAmount     decimal.Decimal   `json:"totalLoanAmount"`
	AvgDaysPastDue      int64             `json:"avgDaysPastDue"`
	TotalCollectionCost decimal.Decimal   `json:"totalCollectionCost"`
	AvgPaymentScore     int64             `json:"avgPaymentScore"`
	RiskDistribution    map[RiskLevel]int `json:"riskDistribution"`
}
