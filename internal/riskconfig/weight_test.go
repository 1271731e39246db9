package riskconfig

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoerceWeight(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
	}{
		{"nil", nil, 0},
		{"float", 12.5, 12.5},
		{"int", 40, 40},
		{"negative", -5.0, -5},
		{"json number", json.Number("33.3"), 33.3},
		{"bad json number", json.Number("x"), 0},
		{"numeric string", "15", 15},
		{"padded string", "  7.25 ", 7.25},
		{"empty string", "", 0},
		{"text", "abc", 0},
		{"true", true, 1},
		{"false", false, 0},
		{"nan", math.NaN(), 0},
		{"inf string", "Inf", 0},
		{"slice", []int{1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CoerceWeight(tt.in))
		})
	}
}
