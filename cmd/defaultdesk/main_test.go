package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/opensource-finance/defaultdesk/internal/domain"
	"github.com/opensource-finance/defaultdesk/internal/portfolio"
	"github.com/opensource-finance/defaultdesk/internal/riskconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSummary(t *testing.T) {
	view := portfolio.NewView(portfolio.Seed())

	t.Run("unfiltered", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeSummary(&buf, view.Render(portfolio.Query{})))

		out := buf.String()
		assert.Contains(t, out, "Total defaulters:       10")
		assert.Contains(t, out, "John Anderson")
		assert.Contains(t, out, "Showing 10 of 10 defaulters")
	})

	t.Run("filtered keeps full metrics", func(t *testing.T) {
		var buf bytes.Buffer
		page := view.Render(portfolio.Query{Search: "anderson"})
		require.NoError(t, writeSummary(&buf, page))

		out := buf.String()
		assert.Contains(t, out, "Total defaulters:       10")
		assert.Contains(t, out, "Showing 1 of 10 defaulters")
		assert.NotContains(t, out, "Jennifer Brown")
	})

	t.Run("no matches", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeSummary(&buf, view.Render(portfolio.Query{Search: "zzz"})))

		out := buf.String()
		assert.Contains(t, out, "No defaulters match the current filters.")
		assert.Contains(t, out, "Showing 0 of 10 defaulters")
	})
}

func TestWriteCategories(t *testing.T) {
	editor, err := riskconfig.NewEditor(nil, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeCategories(&buf, editor.Summary()))

	out := buf.String()
	for _, s := range editor.Summary() {
		assert.Contains(t, out, s.Name)
	}
	assert.Contains(t, out, string(domain.StatusIncomplete))
	assert.Contains(t, out, "55%")
}

func TestTableAlignsStyledCells(t *testing.T) {
	styled := "\x1b[1;32mcomplete\x1b[0m"
	out := newTable(
		[]string{"Category", "Status"},
		[][]string{{"Financial & Credit", styled}, {"Risk Factors", "incomplete"}},
	).String()

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Greater(t, len(lines), 3)
	width := lipgloss.Width(lines[0])
	for i, line := range lines {
		assert.Equal(t, width, lipgloss.Width(line), "line %d: %q", i, line)
	}
}

func TestSummarizeRecomputesStatus(t *testing.T) {
	cats := []domain.RiskCategory{{
		ID:   "financial",
		Name: "Financial Risk",
		Conditions: []domain.RiskCondition{
			{ID: "a", Weight: 60},
			{ID: "b", Weight: 40},
		},
		Status: domain.StatusIncomplete,
	}}

	got := summarize(cats)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].ConditionCount)
	assert.InDelta(t, 100.0, got[0].TotalWeight, 0.0001)
	assert.Equal(t, domain.StatusComplete, got[0].Status)
}

func TestSetupLogging(t *testing.T) {
	tests := []struct {
		name    string
		cfg     domain.LoggingConfig
		wantErr bool
	}{
		{"json info", domain.LoggingConfig{Level: "info", Format: "json"}, false},
		{"text debug", domain.LoggingConfig{Level: "debug", Format: "text"}, false},
		{"bad level", domain.LoggingConfig{Level: "verbose", Format: "json"}, true},
		{"bad format", domain.LoggingConfig{Level: "info", Format: "xml"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := setupLogging(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
