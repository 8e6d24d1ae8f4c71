package services

import (
	"context"
	"time"

	"github.com/lannapoly/pathfinder-go/internal/domain/funnel"
	"github.com/lannapoly/pathfinder-go/internal/domain/session"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/observability/logging"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/observability/performance"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/persistence/docstore"
)

const heatmapCollection = "heatmap_clicks"

// HeatmapClick is one recorded touch on the kiosk screen.
type HeatmapClick struct {
	SessionID string    `json:"sessionId"`
	Page      string    `json:"page"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Element   string    `json:"element,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// DashboardOverview bundles the admin dashboard datasets into one payload.
type DashboardOverview struct {
	Funnel    funnel.Stats      `json:"funnel"`
	Sessions  session.Analytics `json:"sessions"`
	Generated time.Time         `json:"generated"`
}

// AnalyticsService serves the admin dashboard. Writes go through the resilient
// writer so a storage outage never surfaces to the kiosk.
type AnalyticsService struct {
	writer      *docstore.ResilientWriter
	funnel      *FunnelService
	sessions    *SessionService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewAnalyticsService creates the analytics aggregator.
func NewAnalyticsService(writer *docstore.ResilientWriter, funnelSvc *FunnelService, sessionSvc *SessionService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *AnalyticsService {
	return &AnalyticsService{
		writer:      writer,
		funnel:      funnelSvc,
		sessions:    sessionSvc,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// LogHeatmapClick records one screen touch, best-effort.
func (s *AnalyticsService) LogHeatmapClick(ctx context.Context, click HeatmapClick) {
	if click.Timestamp.IsZero() {
		click.Timestamp = time.Now().UTC()
	}
	s.sessions.Touch(click.SessionID)
	s.writer.Append(ctx, heatmapCollection, click)
	s.logger.Analytics().Debug("Heatmap click recorded",
		"sessionId", click.SessionID,
		"page", click.Page)
}

// RecentHeatmap returns the newest clicks, optionally filtered to one page.
func (s *AnalyticsService) RecentHeatmap(ctx context.Context, page string, limit int) ([]HeatmapClick, error) {
	marker := s.perfTracker.StartOperation("analytics_heatmap_query", "")
	defer s.perfTracker.CompleteOperation(marker)

	query := docstore.Query{Desc: true, Limit: limit}
	if page != "" {
		query.Filters = []docstore.Filter{{Field: "page", Value: page}}
	}

	records, err := s.writer.Store().Read(ctx, heatmapCollection, query)
	if err != nil {
		marker.SetError(err)
		return nil, err
	}

	clicks := make([]HeatmapClick, 0, len(records))
	for _, record := range records {
		var click HeatmapClick
		if err := record.Decode(&click); err != nil {
			s.logger.Analytics().Warn("Skipping malformed heatmap document", "documentId", record.ID, "error", err.Error())
			continue
		}
		clicks = append(clicks, click)
	}
	return clicks, nil
}

// Overview assembles the full dashboard payload.
func (s *AnalyticsService) Overview(ctx context.Context) (DashboardOverview, error) {
	marker := s.perfTracker.StartOperation("analytics_dashboard_overview", "")
	defer s.perfTracker.CompleteOperation(marker)

	stats, err := s.funnel.ComputeFunnel(ctx)
	if err != nil {
		marker.SetError(err)
		return DashboardOverview{}, err
	}

	sessionStats, err := s.sessions.SessionAnalytics(ctx)
	if err != nil {
		marker.SetError(err)
		return DashboardOverview{}, err
	}

	return DashboardOverview{
		Funnel:    stats,
		Sessions:  sessionStats,
		Generated: time.Now().UTC(),
	}, nil
}
