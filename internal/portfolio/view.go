package portfolio

import (
	"strings"

	"github.com/opensource-finance/defaultdesk/internal/domain"
	"github.com/shopspring/decimal"
)

// Query selects rows of the defaulter table.
// An empty Risk matches every level.
type Query struct {
	Search string
	Risk   domain.RiskLevel
}

// ParseRiskFilter turns a filter selection into a level.
// "All Risk Levels", "all" and "" select every level.
func ParseRiskFilter(s string) (domain.RiskLevel, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || strings.EqualFold(trimmed, "all") || strings.EqualFold(trimmed, domain.RiskFilterAll) {
		return "", nil
	}
	return domain.ParseRiskLevel(trimmed)
}

// Matches reports whether a record satisfies both the search and the risk filter.
func (q Query) Matches(d domain.Defaulter) bool {
	if q.Risk != "" && d.RiskLevel != q.Risk {
		return false
	}
	return strings.Contains(strings.ToLower(d.Name), strings.ToLower(q.Search))
}

// Filter returns the records matching q, in their original order.
func Filter(records []domain.Defaulter, q Query) []domain.Defaulter {
	out := make([]domain.Defaulter, 0, len(records))
	for _, d := range records {
		if q.Matches(d) {
			out = append(out, d)
		}
	}
	return out
}

// Summarize computes the dashboard metrics over records.
// Means are rounded half-up; an empty set yields zero metrics.
func Summarize(records []domain.Defaulter) domain.Metrics {
	m := domain.Metrics{
		TotalDefaulters:     len(records),
		TotalLoanAmount:     decimal.Zero,
		TotalCollectionCost: decimal.Zero,
		RiskDistribution:    make(map[domain.RiskLevel]int, 4),
	}
	for _, l := range domain.RiskLevels() {
		m.RiskDistribution[l] = 0
	}

	var dpd, score int64
	for _, d := range records {
		m.TotalLoanAmount = m.TotalLoanAmount.Add(d.LoanAmount)
		m.TotalCollectionCost = m.TotalCollectionCost.Add(d.CollectionCost)
		dpd += int64(d.DaysPastDue)
		score += int64(d.PaymentScore)
		if _, ok := m.RiskDistribution[d.RiskLevel]; ok {
			m.RiskDistribution[d.RiskLevel]++
		}
	}

	if len(records) > 0 {
		m.AvgDaysPastDue = roundedMean(dpd, len(records))
		m.AvgPaymentScore = roundedMean(score, len(records))
	}
	return m
}

func roundedMean(sum int64, n int) int64 {
	return decimal.NewFromInt(sum).Div(decimal.NewFromInt(int64(n))).Round(0).IntPart()
}

// Page is one render of the defaulter list.
type Page struct {
	Rows    []domain.Defaulter `json:"rows"`
	Showing int                `json:"showing"`
	Total   int                `json:"total"`
	Metrics domain.Metrics     `json:"metrics"`
}

// View holds the immutable record set behind the list page.
type View struct {
	records []domain.Defaulter
}

// NewView creates a view over records. The slice is copied.
func NewView(records []domain.Defaulter) *View {
	cp := make([]domain.Defaulter, len(records))
	copy(cp, records)
	return &View{records: cp}
}

// Records returns a copy of the full record set.
func (v *View) Records() []domain.Defaulter {
	cp := make([]domain.Defaulter, len(v.records))
	copy(cp, v.records)
	return cp
}

// Metrics summarises the full, unfiltered set.
func (v *View) Metrics() domain.Metrics {
	return Summarize(v.records)
}

// Render filters the table and recomputes the metrics over the full set.
func (v *View) Render(q Query) Page {
	rows := Filter(v.records, q)
	return Page{
		Rows:    rows,
		Showing: len(rows),
		Total:   len(v.records),
		Metrics: Summarize(v.records),
	}
}
