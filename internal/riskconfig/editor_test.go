package riskconfig

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/opensource-finance/defaultdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemStore() *memStore { return &memStore{data: make(map[string][]byte)} }

func (s *memStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[key], nil
}

func (s *memStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *memStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *memStore) Ping(context.Context) error { return nil }
func (s *memStore) Close() error               { return nil }

type recordingNotifier struct {
	mu     sync.Mutex
	topics []string
}

func (n *recordingNotifier) Notify(_ context.Context, topic, title, description string) (domain.Notification, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.topics = append(n.topics, topic)
	return domain.Notification{ID: "n-1", Topic: topic, Title: title, Description: description}, nil
}

func newTestEditor(t *testing.T) (*Editor, *memStore, *recordingNotifier) {
	t.Helper()
	store := newMemStore()
	notifier := &recordingNotifier{}
	e, err := NewEditor(store, notifier)
	require.NoError(t, err)
	return e, store, notifier
}

func TestDefaultState(t *testing.T) {
	e, _, _ := newTestEditor(t)

	cats := e.Categories()
	require.Len(t, cats, 5)
	assert.Equal(t, CategoryFinancial, e.ActiveID())

	fin := cats[0]
	assert.Equal(t, "Financial & Credit", fin.Name)
	assert.Len(t, fin.Conditions, 2)
	assert.Equal(t, 55.0, fin.TotalWeight)
	assert.Equal(t, domain.StatusIncomplete, fin.Status)

	for _, c := range cats[1:] {
		assert.Empty(t, c.Conditions, c.ID)
		assert.Equal(t, 0.0, c.TotalWeight, c.ID)
	}
}

func TestAddCondition(t *testing.T) {
	e, _, _ := newTestEditor(t)

	cond, cat := e.AddCondition()
	assert.NotEmpty(t, cond.ID)
	assert.Equal(t, "", cond.Field)
	assert.Equal(t, domain.OpGreater, cond.Operator)
	assert.Equal(t, "", cond.Value)
	assert.Equal(t, 0.0, cond.Weight)
	assert.Equal(t, domain.DataNumber, cond.DataType)
	assert.Len(t, cat.Conditions, 3)
	assert.Equal(t, 55.0, cat.TotalWeight)

	// T + W
	cat, err := e.UpdateCondition(cond.ID, domain.AttrWeight, 45.0)
	require.NoError(t, err)
	assert.Equal(t, 100.0, cat.TotalWeight)
	assert.Equal(t, domain.StatusComplete, cat.Status)
}

func TestRemoveCondition(t *testing.T) {
	e, _, _ := newTestEditor(t)

	cat, err := e.RemoveCondition("1")
	require.NoError(t, err)
	assert.Len(t, cat.Conditions, 1)
	assert.Equal(t, 15.0, cat.TotalWeight)

	assert.Equal(t, domain.StatusIncomplete, cat.Status)

	stored := e.Active()
	assert.Equal(t, 15.0, stored.TotalWeight)
	assert.Equal(t, cat, stored)

	_, err = e.RemoveCondition("1")
	assert.ErrorIs(t, err, ErrUnknownCondition)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMutationResultsMatchActive(t *testing.T) {
	e, _, _ := newTestEditor(t)

	cond, cat := e.AddCondition()
	assert.Equal(t, e.Active(), cat)

	cat, err := e.UpdateCondition(cond.ID, domain.AttrWeight, 45.0)
	require.NoError(t, err)
	assert.Equal(t, 100.0, cat.TotalWeight)
	assert.Equal(t, domain.StatusComplete, cat.Status)
	assert.Equal(t, e.Active(), cat)

	cat, err = e.UpdateCondition("2", domain.AttrWeight, 100.0)
	require.NoError(t, err)
	assert.Equal(t, 185.0, cat.TotalWeight)
	assert.Equal(t, domain.StatusIncomplete, cat.Status)
	assert.Equal(t, e.Active(), cat)

	cat, err = e.RemoveCondition("1")
	require.NoError(t, err)
	assert.Equal(t, 145.0, cat.TotalWeight)
	assert.Equal(t, e.Active(), cat)

	cat, err = e.RemoveCondition(cond.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, cat.TotalWeight)
	assert.Equal(t, domain.StatusComplete, cat.Status)
	assert.Equal(t, e.Active(), cat)
}

func TestUpdateCondition(t *testing.T) {
	t.Run("WeightOnlyTouchesOneCondition", func(t *testing.T) {
		e, _, _ := newTestEditor(t)
		before := e.Categories()

		cat, err := e.UpdateCondition("2", domain.AttrWeight, "20")
		require.NoError(t, err)
		assert.Equal(t, 60.0, cat.TotalWeight)
		assert.Equal(t, before[0].Conditions[0], cat.Conditions[0])
		assert.Equal(t, 20.0, cat.Conditions[1].Weight)

		after := e.Categories()
		assert.Equal(t, before[1:], after[1:])
	})

	t.Run("NonNumericWeightIsZero", func(t *testing.T) {
		e, _, _ := newTestEditor(t)

		cat, err := e.UpdateCondition("1", domain.AttrWeight, "forty")
		require.NoError(t, err)
		assert.Equal(t, 0.0, cat.Conditions[0].Weight)
		assert.Equal(t, 15.0, cat.TotalWeight)
	})

	t.Run("FieldSetsDataType", func(t *testing.T) {
		e, _, _ := newTestEditor(t)
		_, err := e.SetActive(CategoryIdentity)
		require.NoError(t, err)

		cond, _ := e.AddCondition()
		cat, err := e.UpdateCondition(cond.ID, domain.AttrField, "DOB Match")
		require.NoError(t, err)
		assert.Equal(t, "DOB Match", cat.Conditions[0].Field)
		assert.Equal(t, domain.DataBoolean, cat.Conditions[0].DataType)

		// unknown field names keep the current type
		cat, err = e.UpdateCondition(cond.ID, domain.AttrField, "Shoe Size")
		require.NoError(t, err)
		assert.Equal(t, domain.DataBoolean, cat.Conditions[0].DataType)
	})

	t.Run("OperatorGlyphs", func(t *testing.T) {
		e, _, _ := newTestEditor(t)

		cat, err := e.UpdateCondition("1", domain.AttrOperator, "≥")
		require.NoError(t, err)
		assert.Equal(t, domain.OpGreaterEqual, cat.Conditions[0].Operator)

		_, err = e.UpdateCondition("1", domain.AttrOperator, "!=")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("ValueIsFreeText", func(t *testing.T) {
		e, _, _ := newTestEditor(t)

		cat, err := e.UpdateCondition("1", domain.AttrValue, "not a number")
		require.NoError(t, err)
		assert.Equal(t, "not a number", cat.Conditions[0].Value)

		cat, err = e.UpdateCondition("1", domain.AttrValue, 7500.0)
		require.NoError(t, err)
		assert.Equal(t, "7500", cat.Conditions[0].Value)
	})

	t.Run("Errors", func(t *testing.T) {
		e, _, _ := newTestEditor(t)

		_, err := e.UpdateCondition("missing", domain.AttrWeight, 10)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		_, err = e.UpdateCondition("1", "colour", "red")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		_, err = e.UpdateCondition("1", domain.AttrDataType, "Date")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		_, err = e.UpdateCondition("1", domain.AttrField, 12.0)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		// nothing changed
		assert.Equal(t, 55.0, e.Active().TotalWeight)
	})

	t.Run("ScopedToActiveCategory", func(t *testing.T) {
		e, _, _ := newTestEditor(t)
		_, err := e.SetActive(CategoryRisk)
		require.NoError(t, err)

		_, err = e.UpdateCondition("1", domain.AttrWeight, 10)
		assert.ErrorIs(t, err, ErrUnknownCondition)
	})
}

func TestStatusExactlyHundred(t *testing.T) {
	cases := []struct {
		weights []any
		want    domain.CategoryStatus
	}{
		{[]any{33.3, 33.3, 33.4}, domain.StatusComplete},
		{[]any{"50", "50"}, domain.StatusComplete},
		{[]any{100.0}, domain.StatusComplete},
		{[]any{99.99}, domain.StatusIncomplete},
		{[]any{60.0, 40.01}, domain.StatusIncomplete},
		{[]any{150.0, -50.0}, domain.StatusComplete},
		{[]any{}, domain.StatusIncomplete},
	}

	for _, tc := range cases {
		e, _, _ := newTestEditor(t)
		_, err := e.SetActive(CategoryProperty)
		require.NoError(t, err)

		var cat domain.RiskCategory
		for _, w := range tc.weights {
			cond, _ := e.AddCondition()
			cat, err = e.UpdateCondition(cond.ID, domain.AttrWeight, w)
			require.NoError(t, err)
		}
		if len(tc.weights) == 0 {
			cat = e.Active()
		}
		assert.Equal(t, tc.want, cat.Status, "weights %v", tc.weights)
	}
}

func TestSetActive(t *testing.T) {
	e, _, _ := newTestEditor(t)

	cat, err := e.SetActive(CategoryContactability)
	require.NoError(t, err)
	assert.Equal(t, "Contactability & Behaviour", cat.Name)
	assert.Equal(t, CategoryContactability, e.ActiveID())
	assert.Len(t, e.Fields(), 5)

	_, err = e.SetActive("unknown")
	assert.ErrorIs(t, err, ErrUnknownCategory)
	assert.Equal(t, CategoryContactability, e.ActiveID())
}

func TestSummary(t *testing.T) {
	e, _, _ := newTestEditor(t)

	summary := e.Summary()
	require.Len(t, summary, 5)
	assert.Equal(t, domain.CategorySummary{
		ID:             CategoryFinancial,
		Name:           "Financial & Credit",
		ConditionCount: 2,
		TotalWeight:    55,
		Status:         domain.StatusIncomplete,
	}, summary[0])
}

func TestSave(t *testing.T) {
	ctx := context.Background()

	t.Run("WritesRiskCategories", func(t *testing.T) {
		e, store, notifier := newTestEditor(t)

		n, err := e.Save(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Rules Saved", n.Title)
		assert.Equal(t, []string{domain.TopicRulesSaved}, notifier.topics)

		raw, _ := store.Get(ctx, domain.RiskCategoriesKey)
		var cats []domain.RiskCategory
		require.NoError(t, json.Unmarshal(raw, &cats))
		assert.Equal(t, e.Categories(), cats)
	})

	t.Run("SavedIsNotApplied", func(t *testing.T) {
		e, _, _ := newTestEditor(t)

		_, err := e.Saved(ctx)
		assert.ErrorIs(t, err, ErrNothingSaved)

		_, err = e.Save(ctx)
		require.NoError(t, err)
		_, err = e.RemoveCondition("1")
		require.NoError(t, err)

		saved, err := e.Saved(ctx)
		require.NoError(t, err)
		assert.Len(t, saved[0].Conditions, 2)
		assert.Len(t, e.Active().Conditions, 1)
	})

	t.Run("NoStore", func(t *testing.T) {
		e, err := NewEditor(nil, nil)
		require.NoError(t, err)

		_, err = e.Save(ctx)
		assert.ErrorIs(t, err, ErrNoStore)
	})
}

func TestConcurrentMutations(t *testing.T) {
	e, _, _ := newTestEditor(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cond, _ := e.AddCondition()
			_, _ = e.UpdateCondition(cond.ID, domain.AttrWeight, 1.0)
		}()
	}
	wg.Wait()

	cat := e.Active()
	assert.Len(t, cat.Conditions, 52)
	assert.Equal(t, 105.0, cat.TotalWeight)
}
