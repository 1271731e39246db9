package riskconfig

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/opensource-finance/defaultdesk/internal/domain"
)

var (
	ErrUnknownCategory  = fmt.Errorf("%w: category", domain.ErrNotFound)
	ErrUnknownCondition = fmt.Errorf("%w: condition", domain.ErrNotFound)
	ErrNothingSaved     = fmt.Errorf("%w: no saved configuration", domain.ErrNotFound)
	ErrNoStore          = errors.New("no settings store configured")
)

// Notifier publishes user-facing notifications.
type Notifier interface {
	Notify(ctx context.Context, topic, title, description string) (domain.Notification, error)
}

// Editor holds the rule editor state. Every mutation replaces the active
// category under the write lock and recomputes its total weight before the
// lock is released, so TotalWeight never diverges from the conditions.
type Editor struct {
	mu         sync.RWMutex
	categories []domain.RiskCategory
	active     string

	store     domain.Store
	notifier  Notifier
	previewer *Previewer
	newID     func() string
}

// NewEditor creates an editor seeded with DefaultCategories.
// store and notifier may be nil.
func NewEditor(store domain.Store, notifier Notifier) (*Editor, error) {
	previewer, err := NewPreviewer()
	if err != nil {
		return nil, err
	}
	return &Editor{
		categories: DefaultCategories(),
		active:     CategoryFinancial,
		store:      store,
		notifier:   notifier,
		previewer:  previewer,
		newID:      func() string { return uuid.New().String() },
	}, nil
}

// Categories returns a copy of every category.
func (e *Editor) Categories() []domain.RiskCategory {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return cloneAll(e.categories)
}

// Category returns one category by ID.
func (e *Editor) Category(id string) (domain.RiskCategory, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	idx := e.indexOf(id)
	if idx < 0 {
		return domain.RiskCategory{}, fmt.Errorf("%w %q", ErrUnknownCategory, id)
	}
	return e.categories[idx].Clone(), nil
}

// ActiveID returns the ID of the category mutations apply to.
func (e *Editor) ActiveID() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.active
}

// Active returns the active category.
func (e *Editor) Active() domain.RiskCategory {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.categories[e.indexOf(e.active)].Clone()
}

// SetActive switches the category mutations apply to.
func (e *Editor) SetActive(id string) (domain.RiskCategory, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.indexOf(id)
	if idx < 0 {
		return domain.RiskCategory{}, fmt.Errorf("%w %q", ErrUnknownCategory, id)
	}
	e.active = id
	return e.categories[idx].Clone(), nil
}

// Fields returns the field catalogue of the active category.
func (e *Editor) Fields() []domain.FieldOption {
	return FieldOptions(e.ActiveID())
}

// AddCondition appends a blank condition to the active category.
func (e *Editor) AddCondition() (domain.RiskCondition, domain.RiskCategory) {
	cond := domain.RiskCondition{
		ID:       e.newID(),
		Field:    "",
		Operator: domain.OpGreater,
		Value:    "",
		Weight:   0,
		DataType: domain.DataNumber,
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	cat := e.categories[e.indexOf(e.active)].Clone()
	cat.Conditions = append(cat.Conditions, cond)
	e.replaceActive(&cat)

	return cond, cat.Clone()
}

// RemoveCondition deletes a condition from the active category.
func (e *Editor) RemoveCondition(conditionID string) (domain.RiskCategory, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cat := e.categories[e.indexOf(e.active)]
	remaining := make([]domain.RiskCondition, 0, len(cat.Conditions))
	found := false
	for _, c := range cat.Conditions {
		if c.ID == conditionID {
			found = true
			continue
		}
		remaining = append(remaining, c)
	}
	if !found {
		return domain.RiskCategory{}, fmt.Errorf("%w %q in %s", ErrUnknownCondition, conditionID, e.active)
	}

	cat.Conditions = remaining
	e.replaceActive(&cat)
	return cat.Clone(), nil
}

// UpdateCondition sets one attribute of one condition in the active category.
// Weights are coerced with CoerceWeight. Setting the field to a catalogued
// name also sets the condition's data type.
func (e *Editor) UpdateCondition(conditionID string, attr domain.ConditionAttribute, value any) (domain.RiskCategory, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cat := e.categories[e.indexOf(e.active)].Clone()
	idx := -1
	for i, c := range cat.Conditions {
		if c.ID == conditionID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.RiskCategory{}, fmt.Errorf("%w %q in %s", ErrUnknownCondition, conditionID, e.active)
	}

	cond := cat.Conditions[idx]
	switch attr {
	case domain.AttrField:
		s, err := stringValue(attr, value)
		if err != nil {
			return domain.RiskCategory{}, err
		}
		cond.Field = s
		if opt, ok := lookupField(cat.ID, s); ok {
			cond.DataType = opt.DataType
		}
	case domain.AttrOperator:
		s, err := stringValue(attr, value)
		if err != nil {
			return domain.RiskCategory{}, err
		}
		op, err := domain.ParseOperator(s)
		if err != nil {
			return domain.RiskCategory{}, err
		}
		cond.Operator = op
	case domain.AttrValue:
		cond.Value = freeText(value)
	case domain.AttrWeight:
		cond.Weight = CoerceWeight(value)
	case domain.AttrDataType:
		s, err := stringValue(attr, value)
		if err != nil {
			return domain.RiskCategory{}, err
		}
		dt, err := domain.ParseDataType(s)
		if err != nil {
			return domain.RiskCategory{}, err
		}
		cond.DataType = dt
	default:
		return domain.RiskCategory{}, fmt.Errorf("%w: unknown condition attribute %q", domain.ErrInvalidInput, attr)
	}

	cat.Conditions[idx] = cond
	e.replaceActive(&cat)
	return cat.Clone(), nil
}

// Summary returns one tile per category for the configuration summary.
func (e *Editor) Summary() []domain.CategorySummary {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]domain.CategorySummary, len(e.categories))
	for i, c := range e.categories {
		out[i] = domain.CategorySummary{
			ID:             c.ID,
			Name:           c.Name,
			ConditionCount: len(c.Conditions),
			TotalWeight:    c.TotalWeight,
			Status:         c.Status,
		}
	}
	return out
}

// Save writes every category to the store under domain.RiskCategoriesKey.
// Incomplete categories are saved as they are.
func (e *Editor) Save(ctx context.Context) (domain.Notification, error) {
	if e.store == nil {
		return domain.Notification{}, ErrNoStore
	}

	data, err := json.Marshal(e.Categories())
	if err != nil {
		return domain.Notification{}, fmt.Errorf("failed to encode categories: %w", err)
	}
	if err := e.store.Set(ctx, domain.RiskCategoriesKey, data, 0); err != nil {
		return domain.Notification{}, fmt.Errorf("failed to save categories: %w", err)
	}

	slog.Info("risk configuration saved", "bytes", len(data))
	return e.notify(ctx, domain.TopicRulesSaved, "Rules Saved",
		"Risk assessment configuration has been saved successfully."), nil
}

// Saved reads back the last saved configuration. It is not applied to the editor.
func (e *Editor) Saved(ctx context.Context) ([]domain.RiskCategory, error) {
	if e.store == nil {
		return nil, ErrNothingSaved
	}

	data, err := e.store.Get(ctx, domain.RiskCategoriesKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read saved categories: %w", err)
	}
	if data == nil {
		return nil, ErrNothingSaved
	}

	var cats []domain.RiskCategory
	if err := json.Unmarshal(data, &cats); err != nil {
		return nil, fmt.Errorf("failed to decode saved categories: %w", err)
	}
	return cats, nil
}

// Preview renders every condition as an expression. Informational only.
func (e *Editor) Preview(ctx context.Context) ([]domain.CategoryPreview, domain.Notification) {
	previews := e.previewer.Render(e.Categories())
	n := e.notify(ctx, domain.TopicRulesPreviewed, "Rules Preview", "Opening rules preview...")
	return previews, n
}

func (e *Editor) notify(ctx context.Context, topic, title, description string) domain.Notification {
	if e.notifier == nil {
		return domain.Notification{Topic: topic, Title: title, Description: description}
	}
	n, err := e.notifier.Notify(ctx, topic, title, description)
	if err != nil {
		slog.Warn("failed to publish notification", "topic", topic, "error", err)
	}
	return n
}

// replaceActive recomputes cat's total in place and stores it as the
// active category. Caller must hold the write lock.
func (e *Editor) replaceActive(cat *domain.RiskCategory) {
	cat.Recompute()
	e.categories[e.indexOf(e.active)] = cat.Clone()
}

func (e *Editor) indexOf(id string) int {
	for i, c := range e.categories {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func cloneAll(cats []domain.RiskCategory) []domain.RiskCategory {
	out := make([]domain.RiskCategory, len(cats))
	for i, c := range cats {
		out[i] = c.Clone()
	}
	return out
}

func stringValue(attr domain.ConditionAttribute, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string", domain.ErrInvalidInput, attr)
	}
	return s, nil
}

func freeText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}
