// Package services provides the conversion funnel tracker.
package services

import (
	"context"
	"time"

	"github.com/lannapoly/pathfinder-go/internal/domain/funnel"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/observability/logging"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/persistence/docstore"
)

const funnelCollection = "conversion_funnel"

// FunnelService records milestone events and computes funnel statistics.
// Writes are fire-and-forget; a broken store must never break the kiosk flow.
type FunnelService struct {
	writer *docstore.ResilientWriter
	logger *logging.ChanneledLogger
}

// NewFunnelService creates the tracker over the resilient writer.
func NewFunnelService(writer *docstore.ResilientWriter, logger *logging.ChanneledLogger) *FunnelService {
	return &FunnelService{
		writer: writer,
		logger: logger,
	}
}

// LogStep appends one funnel event. Unknown steps are logged and dropped;
// persistence failures are swallowed by the resilient writer.
func (s *FunnelService) LogStep(ctx context.Context, step funnel.Step, sessionID string, additionalData map[string]any) {
	if !step.Valid() {
		s.logger.Analytics().Warn("Dropping unknown funnel step",
			"step", string(step), "sessionId", sessionID)
		return
	}

	event := funnel.Event{
		Step:           step,
		SessionID:      sessionID,
		CreatedAt:      time.Now().UTC(),
		AdditionalData: additionalData,
	}
	s.writer.Append(ctx, funnelCollection, event)

	s.logger.Analytics().Debug("Funnel step recorded",
		"step", string(step), "sessionId", sessionID)
}

// ComputeFunnel reads all stored events and tallies them into statistics.
func (s *FunnelService) ComputeFunnel(ctx context.Context) (funnel.Stats, error) {
	records, err := s.writer.Store().Read(ctx, funnelCollection, docstore.Query{})
	if err != nil {
		return funnel.Stats{}, err
	}

	events := make([]funnel.Event, 0, len(records))
	for _, rec := range records {
		var e funnel.Event
		if err := rec.Decode(&e); err != nil {
			s.logger.Analytics().Warn("Skipping undecodable funnel event",
				"documentId", rec.ID, "error", err.Error())
			continue
		}
		e.ID = rec.ID
		events = append(events, e)
	}

	stats := funnel.Compute(events)
	s.logger.Analytics().Info("Funnel computed",
		"total", stats.Total,
		"scanRate", stats.ScanRate,
		"clickRate", stats.ClickRate,
		"chatRate", stats.ChatRate)
	return stats, nil
}

// RecentEvents returns the latest funnel events for the admin dashboard.
func (s *FunnelService) RecentEvents(ctx context.Context, limit int) ([]funnel.Event, error) {
	records, err := s.writer.Store().Read(ctx, funnelCollection, docstore.Query{Desc: true, Limit: limit})
	if err != nil {
		return nil, err
	}

	events := make([]funnel.Event, 0, len(records))
	for _, rec := range records {
		var e funnel.Event
		if err := rec.Decode(&e); err != nil {
			continue
		}
		e.ID = rec.ID
		events = append(events, e)
	}
	return events, nil
}
