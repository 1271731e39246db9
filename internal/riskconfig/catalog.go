// Package riskconfig implements the risk rule editor: a fixed set of
// categories, each holding weighted conditions whose weights should total 100.
package riskconfig

import "github.com/opensource-finance/defaultdesk/internal/domain"

// Category identifiers.
const (
	CategoryFinancial      = "financial"
	CategoryIdentity       = "identity"
	CategoryProperty       = "property"
	CategoryContactability = "contactability"
	CategoryRisk           = "risk"
)

// DefaultCategories returns the initial editor state. Only the financial
// category is pre-populated (total 55).
func DefaultCategories() []domain.RiskCategory {
	cats := []domain.RiskCategory{
		{
			ID:   CategoryFinancial,
			Name: "Financial & Credit",
			Conditions: []domain.RiskCondition{
				{ID: "1", Field: "Loan Amount", Operator: domain.OpGreater, Value: "5000", Weight: 40, DataType: domain.DataNumber},
				{ID: "2", Field: "Outstanding Balance", Operator: domain.OpEqual, Value: "1500", Weight: 15, DataType: domain.DataNumber},
			},
		},
		{ID: CategoryIdentity, Name: "Identity & Verification", Conditions: []domain.RiskCondition{}},
		{ID: CategoryProperty, Name: "Property & Stability", Conditions: []domain.RiskCondition{}},
		{ID: CategoryContactability, Name: "Contactability & Behaviour", Conditions: []domain.RiskCondition{}},
		{ID: CategoryRisk, Name: "Risk Factors", Conditions: []domain.RiskCondition{}},
	}
	for i := range cats {
		cats[i].Recompute()
	}
	return cats
}

var fieldCatalog = map[string][]domain.FieldOption{
	CategoryFinancial: {
		{Name: "Loan Amount", DataType: domain.DataNumber},
		{Name: "Outstanding Balance", DataType: domain.DataNumber},
		{Name: "Days Past Due (DPD)", DataType: domain.DataNumber},
		{Name: "Repayment History Score", DataType: domain.DataNumber},
		{Name: "Credit Score (Experian/Equifax)", DataType: domain.DataNumber},
		{Name: "Credit Utilisation Ratio", DataType: domain.DataPercentage},
		{Name: "Previous Defaults (count)", DataType: domain.DataNumber},
		{Name: "Cost-to-Collect Estimate", DataType: domain.DataNumber},
	},
	CategoryIdentity: {
		{Name: "Name Match %", DataType: domain.DataPercentage},
		{Name: "Address Match %", DataType: domain.DataPercentage},
		{Name: "DOB Match", DataType: domain.DataBoolean},
		{Name: "National Insurance Number Match", DataType: domain.DataBoolean},
		{Name: "Identity Match Score (Weighted)", DataType: domain.DataNumber},
	},
	CategoryProperty: {
		{Name: "Years at Current Address", DataType: domain.DataNumber},
		{Name: "Property Owned (Yes/No)", DataType: domain.DataBoolean},
		{Name: "Property Value", DataType: domain.DataNumber},
		{Name: "Home Ownership Status", DataType: domain.DataText},
		{Name: "Vehicle Owned (Yes/No)", DataType: domain.DataBoolean},
		{Name: "Stability Score", DataType: domain.DataNumber},
	},
	CategoryContactability: {
		{Name: "Contact Numbers Available (count)", DataType: domain.DataNumber},
		{Name: "Validated Phone Number (Yes/No)", DataType: domain.DataBoolean},
		{Name: "Mobile Number Verified", DataType: domain.DataBoolean},
		{Name: "Number of Contactable Channels", DataType: domain.DataNumber},
		{Name: "Agent Recovery Success Rate", DataType: domain.DataPercentage},
	},
	CategoryRisk: {
		{Name: "Criminal Record Flag (Yes/No)", DataType: domain.DataBoolean},
		{Name: "History of Defaults/CCJs", DataType: domain.DataBoolean},
		{Name: "Recent Missed Payments", DataType: domain.DataNumber},
		{Name: "Same Name Cases Flag", DataType: domain.DataBoolean},
		{Name: "Loan Application Address Risk", DataType: domain.DataText},
	},
}

// FieldOptions returns the fields a condition in categoryID may test.
func FieldOptions(categoryID string) []domain.FieldOption {
	opts := fieldCatalog[categoryID]
	out := make([]domain.FieldOption, len(opts))
	copy(out, opts)
	return out
}

func lookupField(categoryID, name string) (domain.FieldOption, bool) {
	for _, f := range fieldCatalog[categoryID] {
		if f.Name == name {
			return f, true
		}
	}
	return domain.FieldOption{}, false
}
