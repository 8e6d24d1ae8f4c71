// Package services provides the kiosk session registry. One session covers
// one physical visitor at the kiosk, from attract screen to walk-away.
package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lannapoly/pathfinder-go/internal/domain/session"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/messaging"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/observability/logging"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/persistence/docstore"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/security"
)

const (
	sessionCollection    = "sessions"
	transitionCollection = "page_transitions"
)

// liveSession is the in-memory view of one active kiosk session.
type liveSession struct {
	documentID   string // docstore row backing this session
	createdAt    time.Time
	lastActivity time.Time
	hasScanned   bool
	hasLead      bool
}

// SessionService owns session identity, the activity registry, and the
// best-effort persistence of page journeys.
type SessionService struct {
	mu     sync.RWMutex
	active map[string]*liveSession

	writer *docstore.ResilientWriter
	logger *logging.ChanneledLogger
}

// NewSessionService creates the registry over the resilient writer.
func NewSessionService(writer *docstore.ResilientWriter, logger *logging.ChanneledLogger) *SessionService {
	return &SessionService{
		active: make(map[string]*liveSession),
		writer: writer,
		logger: logger,
	}
}

// CreateSession mints a new collision-resistant session ID and persists the
// session record. Called once when a visitor approaches the kiosk.
func (s *SessionService) CreateSession(ctx context.Context) string {
	sessionID := security.GenerateULID()
	now := time.Now().UTC()

	record := session.Record{
		SessionID: sessionID,
		CreatedAt: now,
		StartTime: now,
	}
	documentID := s.writer.Append(ctx, sessionCollection, record)

	s.mu.Lock()
	s.active[sessionID] = &liveSession{
		documentID:   documentID,
		createdAt:    now,
		lastActivity: now,
	}
	s.mu.Unlock()

	s.logger.WithSession(logging.ChannelSystem, sessionID).Info("Kiosk session created")
	return sessionID
}

// Touch refreshes the activity timestamp of a session. Unknown sessions are
// re-registered; the kiosk may have restarted under a live visitor.
func (s *SessionService) Touch(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if live, ok := s.active[sessionID]; ok {
		live.lastActivity = time.Now().UTC()
		return
	}
	s.active[sessionID] = &liveSession{
		createdAt:    time.Now().UTC(),
		lastActivity: time.Now().UTC(),
	}
}

// IsKnown reports whether the registry has seen this session.
func (s *SessionService) IsKnown(sessionID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.active[sessionID]
	return ok
}

// RecordScan attaches the scan demographics snapshot to the session record.
// Implements the DemographicsRecorder side of the scan controller.
func (s *SessionService) RecordScan(sessionID string, demo session.Demographics) {
	s.mu.Lock()
	live, ok := s.active[sessionID]
	if ok {
		live.hasScanned = true
		live.lastActivity = time.Now().UTC()
	}
	var documentID string
	if ok {
		documentID = live.documentID
	}
	s.mu.Unlock()

	if documentID == "" {
		s.logger.WithSession(logging.ChannelAnalytics, sessionID).
			Warn("No backing record for scan demographics")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.writer.Update(ctx, sessionCollection, documentID, map[string]any{
		"demographics": demo,
		"lastUpdated":  time.Now().UTC(),
	})
}

// MarkLead flags the session as having submitted the contact form.
func (s *SessionService) MarkLead(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if live, ok := s.active[sessionID]; ok {
		live.hasLead = true
		live.lastActivity = time.Now().UTC()
	}
}

// LogPageTransition appends one navigation edge. Best-effort.
func (s *SessionService) LogPageTransition(ctx context.Context, sessionID, from, to string) {
	s.Touch(sessionID)
	s.writer.Append(ctx, transitionCollection, session.PageTransition{
		SessionID: sessionID,
		From:      from,
		To:        to,
		Timestamp: time.Now().UTC(),
	})
}

// LogSessionDuration appends one page stay to the session record, optionally
// refreshing the demographics snapshot. Read-modify-write on the record's
// pages array; best-effort throughout.
func (s *SessionService) LogSessionDuration(ctx context.Context, sessionID, page string, seconds float64, demo *session.Demographics) {
	s.Touch(sessionID)

	s.mu.RLock()
	live, ok := s.active[sessionID]
	var documentID string
	if ok {
		documentID = live.documentID
	}
	s.mu.RUnlock()

	visit := session.PageVisit{
		Page:            page,
		DurationSeconds: seconds,
		Timestamp:       time.Now().UTC(),
	}

	if documentID == "" {
		// Session predates this process; store the stay as a fresh record.
		record := session.Record{
			SessionID:    sessionID,
			CreatedAt:    time.Now().UTC(),
			StartTime:    time.Now().UTC(),
			LastUpdated:  time.Now().UTC(),
			Demographics: demo,
			Pages:        []session.PageVisit{visit},
		}
		documentID = s.writer.Append(ctx, sessionCollection, record)
		if documentID != "" && ok {
			s.mu.Lock()
			live.documentID = documentID
			s.mu.Unlock()
		}
		return
	}

	records, err := s.writer.Store().Read(ctx, sessionCollection, docstore.Query{
		Filters: []docstore.Filter{{Field: "sessionId", Value: sessionID}},
		Limit:   1,
	})
	if err != nil || len(records) == 0 {
		s.logger.WithSession(logging.ChannelAnalytics, sessionID).
			Warn("Could not load session record for duration update")
		return
	}

	var record session.Record
	if err := records[0].Decode(&record); err != nil {
		s.logger.LogError(logging.ChannelAnalytics, "session_duration_decode", err,
			map[string]any{"documentId": records[0].ID})
		return
	}

	record.Pages = append(record.Pages, visit)
	record.LastUpdated = time.Now().UTC()
	if demo != nil {
		record.Demographics = demo
	}
	s.writer.Update(ctx, sessionCollection, records[0].ID, record)
}

// ActiveSessions implements messaging.ActivitySource for the ops broadcaster.
func (s *SessionService) ActiveSessions() []messaging.SessionActivity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	states := make([]messaging.SessionActivity, 0, len(s.active))
	for _, live := range s.active {
		states = append(states, messaging.SessionActivity{
			HasLead:      live.hasLead,
			HasScanned:   live.hasScanned,
			LastActivity: live.lastActivity,
		})
	}
	return states
}

// Evict drops sessions inactive beyond maxIdle from the registry and returns
// their IDs so callers can release per-session state held elsewhere. Stored
// records are untouched.
func (s *SessionService) Evict(maxIdle time.Duration) []string {
	cutoff := time.Now().UTC().Add(-maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()

	var evicted []string
	for id, live := range s.active {
		if live.lastActivity.Before(cutoff) {
			delete(s.active, id)
			evicted = append(evicted, id)
		}
	}
	return evicted
}

// RecentSessions returns the latest stored session records.
func (s *SessionService) RecentSessions(ctx context.Context, limit int) ([]session.Record, error) {
	records, err := s.writer.Store().Read(ctx, sessionCollection, docstore.Query{Desc: true, Limit: limit})
	if err != nil {
		return nil, err
	}

	sessions := make([]session.Record, 0, len(records))
	for _, rec := range records {
		var r session.Record
		if err := rec.Decode(&r); err != nil {
			continue
		}
		sessions = append(sessions, r)
	}
	return sessions, nil
}

// SessionAnalytics aggregates all stored sessions into the admin dashboard
// summary: session count, average total duration, and per-page metrics.
func (s *SessionService) SessionAnalytics(ctx context.Context) (session.Analytics, error) {
	records, err := s.writer.Store().Read(ctx, sessionCollection, docstore.Query{})
	if err != nil {
		return session.Analytics{}, err
	}

	analytics := session.Analytics{SessionCount: len(records)}
	pageViews := make(map[string]int)
	pageDuration := make(map[string]float64)
	var totalDuration float64

	for _, rec := range records {
		var r session.Record
		if err := rec.Decode(&r); err != nil {
			continue
		}
		for _, visit := range r.Pages {
			analytics.TotalPageViews++
			pageViews[visit.Page]++
			pageDuration[visit.Page] += visit.DurationSeconds
			totalDuration += visit.DurationSeconds
		}
	}

	if analytics.SessionCount > 0 {
		analytics.AvgSessionDuration = totalDuration / float64(analytics.SessionCount)
	}

	for page, views := range pageViews {
		metric := session.PageMetric{Page: page, Views: views}
		if views > 0 {
			metric.AvgDuration = pageDuration[page] / float64(views)
		}
		analytics.PageMetrics = append(analytics.PageMetrics, metric)
	}
	sort.Slice(analytics.PageMetrics, func(i, j int) bool {
		return analytics.PageMetrics[i].Views > analytics.PageMetrics[j].Views
	})

	return analytics, nil
}
