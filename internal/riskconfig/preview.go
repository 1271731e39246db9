package riskconfig

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/cel-go/cel"
	"github.com/opensource-finance/defaultdesk/internal/domain"
)

// Previewer renders conditions as CEL expressions and checks that they
// compile. Nothing is evaluated; the result is for display.
type Previewer struct {
	env *cel.Env
}

// NewPreviewer creates a previewer with an empty CEL environment.
func NewPreviewer() (*Previewer, error) {
	env, err := cel.NewEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &Previewer{env: env}, nil
}

// Render previews every condition of every category.
func (p *Previewer) Render(categories []domain.RiskCategory) []domain.CategoryPreview {
	out := make([]domain.CategoryPreview, len(categories))
	for i, cat := range categories {
		cp := domain.CategoryPreview{
			CategoryID:  cat.ID,
			Name:        cat.Name,
			TotalWeight: cat.TotalWeight,
			Status:      cat.Status,
			Conditions:  make([]domain.ConditionPreview, 0, len(cat.Conditions)),
		}
		for _, cond := range cat.Conditions {
			cp.Conditions = append(cp.Conditions, p.Condition(cond))
		}
		out[i] = cp
	}
	return out
}

// Condition renders one condition.
func (p *Previewer) Condition(cond domain.RiskCondition) domain.ConditionPreview {
	res := domain.ConditionPreview{
		ConditionID: cond.ID,
		Weight:      cond.Weight,
	}

	ident := FieldIdentifier(cond.Field)
	op := celOperator(cond.Operator)
	lit, litErr := celLiteral(cond.DataType, cond.Value)
	if litErr != nil {
		lit = strconv.Quote(cond.Value)
	}
	if ident == "" {
		res.Expression = fmt.Sprintf("<field> %s %s", op, lit)
		res.Issue = "field is not set"
		return res
	}
	res.Expression = fmt.Sprintf("%s %s %s", ident, op, lit)
	if litErr != nil {
		res.Issue = litErr.Error()
		return res
	}

	env, err := p.env.Extend(cel.Variable(ident, celType(cond.DataType)))
	if err != nil {
		res.Issue = err.Error()
		return res
	}
	ast, issues := env.Compile(res.Expression)
	if issues != nil && issues.Err() != nil {
		res.Issue = issues.Err().Error()
		return res
	}
	if ast.OutputType() != cel.BoolType {
		res.Issue = fmt.Sprintf("expression must return bool, got %s", ast.OutputType())
		return res
	}

	res.Valid = true
	return res
}

// FieldIdentifier turns a field label such as "Days Past Due (DPD)" into
// an identifier (days_past_due_dpd).
func FieldIdentifier(field string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(field) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	id := b.String()
	if id != "" && id[0] >= '0' && id[0] <= '9' {
		id = "f_" + id
	}
	return id
}

func celOperator(op domain.Operator) string {
	if op == domain.OpEqual {
		return "=="
	}
	return string(op)
}

func celType(dt domain.DataType) *cel.Type {
	switch dt {
	case domain.DataBoolean:
		return cel.BoolType
	case domain.DataText:
		return cel.StringType
	default:
		return cel.DoubleType
	}
}

func celLiteral(dt domain.DataType, value string) (string, error) {
	v := strings.TrimSpace(value)
	switch dt {
	case domain.DataBoolean:
		switch strings.ToLower(v) {
		case "true", "yes", "y", "1":
			return "true", nil
		case "false", "no", "n", "0":
			return "false", nil
		}
		return "", fmt.Errorf("value %q is not a boolean", value)
	case domain.DataText:
		return strconv.Quote(value), nil
	default:
		f, err := strconv.ParseFloat(strings.TrimSuffix(v, "%"), 64)
		if err != nil {
			return "", fmt.Errorf("value %q is not a number", value)
		}
		lit := strconv.FormatFloat(f, 'f', -1, 64)
		if !strings.Contains(lit, ".") {
			lit += ".0"
		}
		return lit, nil
	}
}
