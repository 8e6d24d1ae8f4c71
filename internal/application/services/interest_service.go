// Package services provides the interest recommendation engine. It turns one
// face-scan observation into a ranked, catalog-joined list of career
// recommendations through a pure, deterministic pipeline.
package services

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/lannapoly/pathfinder-go/internal/domain/catalog"
	"github.com/lannapoly/pathfinder-go/internal/domain/scan"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/observability/logging"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/observability/performance"
)

// RandSource supplies the randomness used to pad short rankings. Tests inject
// a deterministic source; production uses math/rand.
type RandSource interface {
	Intn(n int) int
}

type defaultRandSource struct{}

func (defaultRandSource) Intn(n int) int { return rand.Intn(n) }

// Recommendation is one catalog entry in ranking order.
type Recommendation struct {
	Rank     int                    `json:"rank"`
	Category catalog.CareerCategory `json:"category"`
}

// InterestService owns the scoring tables and the ranking pipeline.
type InterestService struct {
	catalog     *catalog.Catalog
	random      RandSource
	topN        int
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewInterestService creates the recommendation engine over a catalog.
func NewInterestService(cat *catalog.Catalog, random RandSource, topN int, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *InterestService {
	if random == nil {
		random = defaultRandSource{}
	}
	return &InterestService{
		catalog:     cat,
		random:      random,
		topN:        topN,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// Contribution tables. Each matched rule adds one count per listed category;
// the ranking is the tally sorted by count with ties broken by the order in
// which a category first received a contribution.
var (
	ageBandContributions = []struct {
		maxAge     int // inclusive upper bound; the last band catches everything above
		categories []catalog.CategoryID
	}{
		{16, []catalog.CategoryID{catalog.Construction, catalog.InformationTech, catalog.DigitalBusiness}},
		{18, []catalog.CategoryID{catalog.ElectricVehicles, catalog.InformationTech, catalog.Marketing}},
		{20, []catalog.CategoryID{catalog.Accounting, catalog.Marketing, catalog.AutoMechanics}},
	}

	ageDefaultContributions = []catalog.CategoryID{catalog.AutoMechanics, catalog.ElectricalPower, catalog.Accounting}

	genderContributions = map[scan.Gender][]catalog.CategoryID{
		scan.GenderMale: {catalog.AutoMechanics, catalog.ElectricVehicles, catalog.ElectricalPower,
			catalog.Electronics, catalog.Construction, catalog.ComputerTechnology, catalog.InformationTech},
		scan.GenderFemale: {catalog.Accounting, catalog.Marketing, catalog.DigitalBusiness,
			catalog.HotelManagement, catalog.Tourism, catalog.InformationTech, catalog.Construction},
	}

	expressionContributions = map[scan.Expression][]catalog.CategoryID{
		scan.ExpressionHappy:     {catalog.HotelManagement, catalog.Tourism, catalog.Marketing, catalog.DigitalBusiness},
		scan.ExpressionNeutral:   {catalog.ElectricalPower, catalog.Electronics, catalog.Accounting, catalog.AutoMechanics, catalog.Construction},
		scan.ExpressionSurprised: {catalog.InformationTech, catalog.DigitalBusiness, catalog.Construction, catalog.ElectricVehicles, catalog.Architecture},
		scan.ExpressionSad:       {catalog.Architecture, catalog.ComputerTechnology, catalog.Electronics, catalog.ElectricalPower},
	}

	expressionDefaultContributions = []catalog.CategoryID{catalog.Construction, catalog.AutoMechanics, catalog.Accounting, catalog.Marketing}
)

// Score tallies the contribution tables for one observation triple and returns
// exactly topN distinct category IDs in ranking order.
func (s *InterestService) Score(age int, gender scan.Gender, dominant scan.Expression) []catalog.CategoryID {
	counts := make(map[catalog.CategoryID]int)
	var order []catalog.CategoryID // first-contribution order for tie-breaking

	add := func(ids []catalog.CategoryID) {
		for _, id := range ids {
			if _, seen := counts[id]; !seen {
				order = append(order, id)
			}
			counts[id]++
		}
	}

	added := false
	for _, band := range ageBandContributions {
		if age <= band.maxAge {
			add(band.categories)
			added = true
			break
		}
	}
	if !added {
		add(ageDefaultContributions)
	}

	// Unknown gender contributes nothing.
	if ids, ok := genderContributions[gender]; ok {
		add(ids)
	}

	if ids, ok := expressionContributions[dominant]; ok {
		add(ids)
	} else {
		add(expressionDefaultContributions)
	}

	// Stable sort over first-contribution order: equal counts keep the order
	// in which the categories first appeared.
	ranked := make([]catalog.CategoryID, len(order))
	copy(ranked, order)
	sort.SliceStable(ranked, func(i, j int) bool {
		return counts[ranked[i]] > counts[ranked[j]]
	})

	if len(ranked) > s.topN {
		ranked = ranked[:s.topN]
	}
	return s.pad(ranked)
}

// pad extends a short ranking with uniformly random unused catalog IDs until
// it reaches topN entries.
func (s *InterestService) pad(ranked []catalog.CategoryID) []catalog.CategoryID {
	if len(ranked) >= s.topN {
		return ranked
	}

	used := make(map[catalog.CategoryID]bool, len(ranked))
	for _, id := range ranked {
		used[id] = true
	}

	var unused []catalog.CategoryID
	for _, id := range s.catalog.Universe() {
		if !used[id] {
			unused = append(unused, id)
		}
	}

	for len(ranked) < s.topN && len(unused) > 0 {
		pick := s.random.Intn(len(unused))
		ranked = append(ranked, unused[pick])
		unused = append(unused[:pick], unused[pick+1:]...)
	}
	return ranked
}

// Assemble joins a ranking against the catalog. IDs without a catalog entry
// are skipped; output order follows the ranking.
func (s *InterestService) Assemble(ranked []catalog.CategoryID) []Recommendation {
	recommendations := make([]Recommendation, 0, len(ranked))
	for _, id := range ranked {
		category, ok := s.catalog.ByID(id)
		if !ok {
			s.logger.Recommend().Warn("Ranked category missing from catalog", "categoryId", string(id))
			continue
		}
		recommendations = append(recommendations, Recommendation{
			Rank:     len(recommendations) + 1,
			Category: category,
		})
	}
	return recommendations
}

// Recommend runs the full pipeline for one observation.
func (s *InterestService) Recommend(obs *scan.Observation) ([]Recommendation, error) {
	marker := s.perfTracker.StartOperation("recommend_pipeline", "")
	defer s.perfTracker.CompleteOperation(marker)

	if err := obs.Validate(); err != nil {
		marker.SetError(err)
		return nil, err
	}

	dominant, err := scan.DominantExpression(obs.Expressions)
	if err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("failed to classify expression: %w", err)
	}

	ranked := s.Score(obs.Age, obs.Gender, dominant)
	recommendations := s.Assemble(ranked)

	s.logger.Recommend().Info("Recommendation pipeline completed",
		"age", obs.Age,
		"gender", string(obs.Gender),
		"dominant", string(dominant),
		"resultCount", len(recommendations))
	return recommendations, nil
}
