package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lannapoly/pathfinder-go/internal/domain/catalog"
	"github.com/lannapoly/pathfinder-go/internal/domain/scan"
)

// zeroRand always picks the first candidate, making padding deterministic.
type zeroRand struct{}

func (zeroRand) Intn(n int) int { return 0 }

func newTestInterestService(t *testing.T) *InterestService {
	t.Helper()
	return NewInterestService(catalog.Default(), zeroRand{}, 3, testLogger(t), testTracker())
}

func assertValidRanking(t *testing.T, ranked []catalog.CategoryID) {
	t.Helper()
	require.Len(t, ranked, 3)

	universe := make(map[catalog.CategoryID]bool)
	for _, id := range catalog.Default().Universe() {
		universe[id] = true
	}

	seen := make(map[catalog.CategoryID]bool)
	for _, id := range ranked {
		assert.True(t, universe[id], "id %s outside the catalog universe", id)
		assert.False(t, seen[id], "duplicate id %s in ranking", id)
		seen[id] = true
	}
}

func TestScoreAlwaysReturnsThreeDistinctCatalogIDs(t *testing.T) {
	svc := newTestInterestService(t)

	ages := []int{5, 16, 17, 18, 19, 20, 21, 45, 120}
	genders := []scan.Gender{scan.GenderMale, scan.GenderFemale, scan.GenderUnknown}
	expressions := []scan.Expression{
		scan.ExpressionHappy, scan.ExpressionNeutral, scan.ExpressionSurprised,
		scan.ExpressionSad, scan.ExpressionAngry,
	}

	for _, age := range ages {
		for _, gender := range genders {
			for _, expression := range expressions {
				ranked := svc.Score(age, gender, expression)
				assertValidRanking(t, ranked)
			}
		}
	}
}

func TestScoreRanksRepeatedContributionsFirst(t *testing.T) {
	svc := newTestInterestService(t)

	// Age 16 and male both contribute co and it; surprised adds a third count
	// to both. They must outrank every single-count category.
	ranked := svc.Score(16, scan.GenderMale, scan.ExpressionSurprised)

	assert.Equal(t, catalog.Construction, ranked[0])
	assert.Equal(t, catalog.InformationTech, ranked[1])
	// dt appears in the age band and in surprised.
	assert.Equal(t, catalog.DigitalBusiness, ranked[2])
}

func TestScoreTieBreaksByFirstContribution(t *testing.T) {
	svc := newTestInterestService(t)

	// Unknown gender adds nothing; the age band and the expression sets are
	// disjoint here, so every category has exactly one count and the age
	// band's order must win.
	ranked := svc.Score(21, scan.GenderUnknown, scan.ExpressionHappy)
	assert.Equal(t, []catalog.CategoryID{catalog.AutoMechanics, catalog.ElectricalPower, catalog.Accounting}, ranked)
}

func TestScorePadsShortRankings(t *testing.T) {
	// topN larger than any tally forces padding from the unused universe.
	svc := NewInterestService(catalog.Default(), zeroRand{}, 13, testLogger(t), testTracker())

	ranked := svc.Score(21, scan.GenderUnknown, scan.ExpressionHappy)
	require.Len(t, ranked, 13)

	seen := make(map[catalog.CategoryID]bool)
	for _, id := range ranked {
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestRecommendJoinsCatalog(t *testing.T) {
	svc := newTestInterestService(t)

	obs := &scan.Observation{
		Age:    17,
		Gender: scan.GenderFemale,
		Expressions: map[scan.Expression]float64{
			scan.ExpressionHappy:   0.8,
			scan.ExpressionNeutral: 0.2,
		},
	}

	recommendations, err := svc.Recommend(obs)
	require.NoError(t, err)
	require.Len(t, recommendations, 3)

	for i, rec := range recommendations {
		assert.Equal(t, i+1, rec.Rank)
		assert.NotEmpty(t, rec.Category.NameTH)
	}
}

func TestRecommendRejectsInvalidObservation(t *testing.T) {
	svc := newTestInterestService(t)

	_, err := svc.Recommend(&scan.Observation{Age: 200, Expressions: map[scan.Expression]float64{scan.ExpressionHappy: 1}})
	assert.ErrorIs(t, err, scan.ErrInvalidInput)

	_, err = svc.Recommend(&scan.Observation{Age: 20, Expressions: map[scan.Expression]float64{}})
	assert.ErrorIs(t, err, scan.ErrInvalidInput)
}
