// Package scan defines the face-scan observation model shared by the
// detection pipeline and the recommendation engine.
package scan

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidInput indicates a contract violation by the caller (malformed or
// empty input to a pure function). It is the only error class in the scan
// pipeline that propagates to callers.
var ErrInvalidInput = errors.New("invalid input")

// Gender is the detected gender label from the face analysis provider.
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderUnknown Gender = "unknown"
)

// ParseGender normalizes a provider gender string. Anything unrecognized
// collapses to GenderUnknown rather than failing the scan.
func ParseGender(s string) Gender {
	switch s {
	case "male":
		return GenderMale
	case "female":
		return GenderFemale
	default:
		return GenderUnknown
	}
}

// Expression is a facial-expression label from the analysis model.
type Expression string

const (
	ExpressionHappy     Expression = "happy"
	ExpressionNeutral   Expression = "neutral"
	ExpressionSurprised Expression = "surprised"
	ExpressionSad       Expression = "sad"
	ExpressionAngry     Expression = "angry"
	ExpressionFearful   Expression = "fearful"
	ExpressionDisgusted Expression = "disgusted"
)

// CanonicalExpressions fixes an iteration order for expression maps so that
// dominant-expression ties resolve the same way on every run.
var CanonicalExpressions = []Expression{
	ExpressionHappy,
	ExpressionNeutral,
	ExpressionSurprised,
	ExpressionSad,
	ExpressionAngry,
	ExpressionFearful,
	ExpressionDisgusted,
}

// Observation is one face-scan result from the analysis provider. Expression
// probabilities are treated as relative weights and need not sum to 1.
type Observation struct {
	Age         int                    `json:"age"`
	Gender      Gender                 `json:"gender"`
	Expressions map[Expression]float64 `json:"expressions"`
}

// Validate checks the observation against its domain ranges.
func (o *Observation) Validate() error {
	if o.Age < 0 || o.Age > 120 {
		return fmt.Errorf("%w: age %d out of range [0,120]", ErrInvalidInput, o.Age)
	}
	if len(o.Expressions) == 0 {
		return fmt.Errorf("%w: empty expression map", ErrInvalidInput)
	}
	return nil
}

// DominantExpression returns the label with the highest probability.
// Ties break toward the earlier label in CanonicalExpressions; labels outside
// the canonical set are considered last, in lexicographic order.
func DominantExpression(expressions map[Expression]float64) (Expression, error) {
	if len(expressions) == 0 {
		return "", fmt.Errorf("%w: empty expression map", ErrInvalidInput)
	}

	var best Expression
	bestScore := -1.0
	found := false

	for _, label := range CanonicalExpressions {
		score, ok := expressions[label]
		if !ok {
			continue
		}
		if score > bestScore {
			best = label
			bestScore = score
			found = true
		}
	}

	// Off-catalog labels still count; a provider may ship labels we have not
	// seen before.
	extras := make([]Expression, 0, len(expressions))
	for label := range expressions {
		if !isCanonical(label) {
			extras = append(extras, label)
		}
	}
	sort.Slice(extras, func(i, j int) bool { return extras[i] < extras[j] })
	for _, label := range extras {
		if expressions[label] > bestScore {
			best = label
			bestScore = expressions[label]
			found = true
		}
	}

	if !found {
		return "", fmt.Errorf("%w: no scorable expression labels", ErrInvalidInput)
	}
	return best, nil
}

func isCanonical(label Expression) bool {
	for _, l := range CanonicalExpressions {
		if l == label {
			return true
		}
	}
	return false
}
