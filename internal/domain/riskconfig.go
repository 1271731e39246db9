package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Operator compares a field against a condition value.
type Operator string

const (
	OpGreater      Operator = ">"
	OpLess         Operator = "<"
	OpEqual        Operator = "="
	OpGreaterEqual Operator = ">="
	OpLessEqual    Operator = "<="
)

// ParseOperator accepts the five comparison operators plus the ≥ and ≤ glyphs.
func ParseOperator(s string) (Operator, error) {
	switch s {
	case ">", "<", "=", ">=", "<=":
		return Operator(s), nil
	case "≥":
		return OpGreaterEqual, nil
	case "≤":
		return OpLessEqual, nil
	}
	return "", fmt.Errorf("%w: unknown operator %q", ErrInvalidInput, s)
}

// Symbol returns the operator as shown in the editor.
func (o Operator) Symbol() string {
	switch o {
	case OpGreaterEqual:
		return "≥"
	case OpLessEqual:
		return "≤"
	default:
		return string(o)
	}
}

// DataType is the type of the field a condition tests.
type DataType string

const (
	DataNumber     DataType = "Number"
	DataPercentage DataType = "Percentage"
	DataBoolean    DataType = "Boolean"
	DataText       DataType = "Text"
)

// ParseDataType resolves one of the four field data types.
func ParseDataType(s string) (DataType, error) {
	switch DataType(s) {
	case DataNumber, DataPercentage, DataBoolean, DataText:
		return DataType(s), nil
	}
	return "", fmt.Errorf("%w: unknown data type %q", ErrInvalidInput, s)
}

// CategoryStatus reports whether a category's weights total 100.
type CategoryStatus string

const (
	StatusIncomplete CategoryStatus = "incomplete"
	StatusComplete   CategoryStatus = "complete"
)

// CompleteWeight is the total a category's condition weights must reach.
var CompleteWeight = decimal.NewFromInt(100)

// RiskCondition is a single weighted comparison rule.
type RiskCondition struct {
	ID       string   `json:"id"`
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    string   `json:"value"`
	Weight   float64  `json:"weight"`
	DataType DataType `json:"dataType"`
}

// RiskCategory groups conditions whose weights are expected to sum to 100.
// TotalWeight and Status are derived; use Recompute after touching Conditions.
type RiskCategory struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Conditions  []RiskCondition `json:"conditions"`
	TotalWeight float64         `json:"totalWeight"`
	Status      CategoryStatus  `json:"status"`
}

// SumWeights adds condition weights in decimal so 33.3+33.3+33.4 is exactly 100.
func SumWeights(conditions []RiskCondition) decimal.Decimal {
	total := decimal.Zero
	for _, c := range conditions {
		total = total.Add(decimal.NewFromFloat(c.Weight))
	}
	return total
}

// Recompute refreshes TotalWeight and Status from the current conditions.
func (c *RiskCategory) Recompute() {
	total := SumWeights(c.Conditions)
	c.TotalWeight = total.InexactFloat64()
	if total.Equal(CompleteWeight) {
		c.Status = StatusComplete
	} else {
		c.Status = StatusIncomplete
	}
}

// Clone returns a deep copy so callers cannot mutate editor state.
func (c RiskCategory) Clone() RiskCategory {
	out := c
	out.Conditions = make([]RiskCondition, len(c.Conditions))
	copy(out.Conditions, c.Conditions)
	return out
}

// FieldOption is a field a condition may test, with its data type.
type FieldOption struct {
	Name     string   `json:"name"`
	DataType DataType `json:"dataType"`
}

// CategorySummary is one tile of the configuration summary.
type CategorySummary struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	ConditionCount int            `json:"conditionCount"`
	TotalWeight    float64        `json:"totalWeight"`
	Status         CategoryStatus `json:"status"`
}

// ConditionPreview is the rendered form of a condition.
type ConditionPreview struct {
	ConditionID string  `json:"conditionId"`
	Expression  string  `json:"expression"`
	Weight      float64 `json:"weight"`
	Valid       bool    `json:"valid"`
	Issue       string  `json:"issue,omitempty"`
}

// CategoryPreview lists the rendered conditions of one category.
type CategoryPreview struct {
	CategoryID  string             `json:"categoryId"`
	Name        string             `json:"name"`
	TotalWeight float64            `json:"totalWeight"`
	Status      CategoryStatus     `json:"status"`
	Conditions  []ConditionPreview `json:"conditions"`
}

// ConditionAttribute names an editable attribute of a condition.
type ConditionAttribute string

const (
	AttrField    ConditionAttribute = "field"
	AttrOperator ConditionAttribute = "operator"
	AttrValue    ConditionAttribute = "value"
	AttrWeight   ConditionAttribute = "weight"
	AttrDataType ConditionAttribute = "dataType"
)

// RiskCategoriesKey is the store key the editor saves its categories under.
const RiskCategoriesKey = "riskCategories"
