package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDominantExpressionPicksUniqueMaximum(t *testing.T) {
	expressions := map[Expression]float64{
		ExpressionHappy:   0.1,
		ExpressionNeutral: 0.7,
		ExpressionSad:     0.2,
	}

	dominant, err := DominantExpression(expressions)
	require.NoError(t, err)
	assert.Equal(t, ExpressionNeutral, dominant)
}

func TestDominantExpressionEmptyMapFails(t *testing.T) {
	_, err := DominantExpression(map[Expression]float64{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDominantExpressionTieBreaksCanonically(t *testing.T) {
	expressions := map[Expression]float64{
		ExpressionSad:   0.5,
		ExpressionHappy: 0.5,
	}

	dominant, err := DominantExpression(expressions)
	require.NoError(t, err)
	assert.Equal(t, ExpressionHappy, dominant, "happy precedes sad in the canonical order")
}

func TestDominantExpressionAcceptsUnknownLabels(t *testing.T) {
	expressions := map[Expression]float64{
		ExpressionHappy:        0.3,
		Expression("confused"): 0.9,
	}

	dominant, err := DominantExpression(expressions)
	require.NoError(t, err)
	assert.Equal(t, Expression("confused"), dominant)
}

func TestParseGender(t *testing.T) {
	assert.Equal(t, GenderMale, ParseGender("male"))
	assert.Equal(t, GenderFemale, ParseGender("female"))
	assert.Equal(t, GenderUnknown, ParseGender("nonbinary"))
	assert.Equal(t, GenderUnknown, ParseGender(""))
}

func TestObservationValidate(t *testing.T) {
	valid := &Observation{Age: 17, Gender: GenderFemale, Expressions: map[Expression]float64{ExpressionHappy: 1}}
	require.NoError(t, valid.Validate())

	negative := &Observation{Age: -1, Expressions: map[Expression]float64{ExpressionHappy: 1}}
	assert.ErrorIs(t, negative.Validate(), ErrInvalidInput)

	ancient := &Observation{Age: 130, Expressions: map[Expression]float64{ExpressionHappy: 1}}
	assert.ErrorIs(t, ancient.Validate(), ErrInvalidInput)

	noExpressions := &Observation{Age: 20}
	assert.ErrorIs(t, noExpressions.Validate(), ErrInvalidInput)
}
