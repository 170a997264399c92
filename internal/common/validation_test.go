package common

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator(t *testing.T) {
	known := map[string]struct{}{"cimento": {}, "areia": {}}

	v := NewValidator().
		Field("id", "", Required).
		Field("line_item_id", "brita", OneOf(known)).
		Field("unit_price", -1.5, NonNegative).
		Field("quantity", 3, NonNegative).
		Field("other", "cimento", Required, OneOf(known))

	require.True(t, v.HasErrors())
	require.Len(t, v.Errors(), 3)
	assert.Equal(t, "id", v.Errors()[0].Field)
	assert.Equal(t, "line_item_id", v.Errors()[1].Field)
	assert.Equal(t, "unit_price", v.Errors()[2].Field)

	err := v.Error()
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "must not be negative")
}

func TestValidator_NoErrors(t *testing.T) {
	v := NewValidator().Field("name", "ok", Required)
	assert.False(t, v.HasErrors())
	assert.NoError(t, v.Error())
	assert.Empty(t, v.ErrorMessage())
}

func TestNonNegative(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		ok    bool
	}{
		{"zero", 0.0, true},
		{"positive int", 4, true},
		{"negative", -0.01, false},
		{"nan", math.NaN(), false},
		{"inf", math.Inf(1), false},
		{"string", "12", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NonNegative("x", tt.value)
			if tt.ok {
				assert.Nil(t, err)
			} else {
				assert.NotNil(t, err)
			}
		})
	}
}
