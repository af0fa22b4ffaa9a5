package condition

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToFloat64(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected float64
		ok       bool
	}{
		{"int", 42, 42, true},
		{"int64", int64(7), 7, true},
		{"float64", 3.5, 3.5, true},
		{"float32", float32(2), 2, true},
		{"numeric string", "10.5", 10.5, true},
		{"non-numeric string", "abc", 0, false},
		{"bool", true, 0, false},
		{"nil", nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToFloat64(tt.input)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	t.Run("Nil sorts first", func(t *testing.T) {
		assert.Equal(t, -1, Compare(nil, "a"))
		assert.Equal(t, 1, Compare("a", nil))
		assert.Equal(t, 0, Compare(nil, nil))
	})

	t.Run("Numbers compare numerically across types", func(t *testing.T) {
		assert.Equal(t, -1, Compare(2, int64(10)))
		assert.Equal(t, 1, Compare(10.5, 10))
		assert.Equal(t, 0, Compare(int64(3), 3.0))
	})

	t.Run("Strings compare lexically", func(t *testing.T) {
		assert.Equal(t, -1, Compare("alpha", "beta"))
		assert.Equal(t, 1, Compare("zest", "alpha"))
		assert.Equal(t, 0, Compare("same", "same"))
	})

	t.Run("Booleans order false before true", func(t *testing.T) {
		assert.Equal(t, -1, Compare(false, true))
		assert.Equal(t, 1, Compare(true, false))
		assert.Equal(t, 0, Compare(true, true))
	})
}
