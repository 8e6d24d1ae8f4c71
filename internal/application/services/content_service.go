package services

import (
	"context"

	"github.com/lannapoly/pathfinder-go/internal/domain/catalog"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/observability/logging"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/persistence/docstore"
)

const (
	careersCollection = "careers"
	tuitionCollection = "tuition"
)

// TuitionRow is one line of the fee schedule shown on the kiosk fees page.
type TuitionRow struct {
	Level          string `json:"level"`
	LevelTH        string `json:"levelTh"`
	Program        string `json:"program"`
	ProgramTH      string `json:"programTh"`
	TuitionPerTerm int    `json:"tuitionPerTerm"`
	Unit           string `json:"unit"`
}

// ContentService serves the career catalog and tuition table. Reads prefer the
// document store so admins can edit content; the built-in catalog is the
// fallback when the store is empty or unreachable.
type ContentService struct {
	store    docstore.Store
	fallback *catalog.Catalog
	logger   *logging.ChanneledLogger
}

// NewContentService creates the content reader.
func NewContentService(store docstore.Store, fallback *catalog.Catalog, logger *logging.ChanneledLogger) *ContentService {
	return &ContentService{
		store:    store,
		fallback: fallback,
		logger:   logger,
	}
}

// Careers returns the career catalog in display order.
func (s *ContentService) Careers(ctx context.Context) []catalog.CareerCategory {
	records, err := s.store.Read(ctx, careersCollection, docstore.Query{})
	if err != nil {
		s.logger.System().Warn("Career catalog read failed, serving built-in catalog", "error", err.Error())
		return s.fallback.All()
	}
	if len(records) == 0 {
		return s.fallback.All()
	}

	careers := make([]catalog.CareerCategory, 0, len(records))
	for _, record := range records {
		var category catalog.CareerCategory
		if err := record.Decode(&category); err != nil {
			s.logger.System().Warn("Skipping malformed career document", "documentId", record.ID, "error", err.Error())
			continue
		}
		careers = append(careers, category)
	}
	if len(careers) == 0 {
		return s.fallback.All()
	}
	return careers
}

// Catalog returns the catalog used for recommendation assembly. Stored careers
// take precedence so edited names and colors flow into recommendations.
func (s *ContentService) Catalog(ctx context.Context) *catalog.Catalog {
	careers := s.Careers(ctx)
	return catalog.New(careers)
}

// Career returns one catalog entry by its category ID.
func (s *ContentService) Career(ctx context.Context, id catalog.CategoryID) (catalog.CareerCategory, bool) {
	return s.Catalog(ctx).ByID(id)
}

// Tuition returns the fee schedule.
func (s *ContentService) Tuition(ctx context.Context) []TuitionRow {
	records, err := s.store.Read(ctx, tuitionCollection, docstore.Query{})
	if err != nil {
		s.logger.System().Warn("Tuition read failed", "error", err.Error())
		return nil
	}

	rows := make([]TuitionRow, 0, len(records))
	for _, record := range records {
		var row TuitionRow
		if err := record.Decode(&row); err != nil {
			s.logger.System().Warn("Skipping malformed tuition document", "documentId", record.ID, "error", err.Error())
			continue
		}
		rows = append(rows, row)
	}
	return rows
}
