package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lannapoly/pathfinder-go/internal/domain/session"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/persistence/docstore"
)

// memDocStore is an in-memory docstore.Store for registry tests.
type memDocStore struct {
	mu      sync.Mutex
	nextID  int
	records map[string][]docstore.Record
}

func newMemDocStore() *memDocStore {
	return &memDocStore{records: make(map[string][]docstore.Record)}
}

func (s *memDocStore) Append(ctx context.Context, collection string, doc any) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	s.nextID++
	id := fmt.Sprintf("doc-%d", s.nextID)
	s.records[collection] = append(s.records[collection], docstore.Record{
		ID:         id,
		Collection: collection,
		Payload:    payload,
		CreatedAt:  time.Now().UTC(),
	})
	return id, nil
}

func (s *memDocStore) Read(ctx context.Context, collection string, q docstore.Query) ([]docstore.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []docstore.Record
	for _, rec := range s.records[collection] {
		matches := true
		for _, filter := range q.Filters {
			var payload map[string]any
			if err := json.Unmarshal(rec.Payload, &payload); err != nil || payload[filter.Field] != filter.Value {
				matches = false
				break
			}
		}
		if matches {
			out = append(out, rec)
		}
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *memDocStore) Update(ctx context.Context, collection, id string, partial any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, rec := range s.records[collection] {
		if rec.ID != id {
			continue
		}
		patch, err := json.Marshal(partial)
		if err != nil {
			return err
		}
		var merged map[string]any
		if err := json.Unmarshal(rec.Payload, &merged); err != nil {
			return err
		}
		var overlay map[string]any
		if err := json.Unmarshal(patch, &overlay); err != nil {
			return err
		}
		for k, v := range overlay {
			merged[k] = v
		}
		payload, err := json.Marshal(merged)
		if err != nil {
			return err
		}
		s.records[collection][i].Payload = payload
		return nil
	}
	return fmt.Errorf("document %s not found", id)
}

func newTestSessionService(t *testing.T) (*SessionService, *memDocStore) {
	t.Helper()
	store := newMemDocStore()
	writer := docstore.NewResilientWriter(store, testLogger(t))
	return NewSessionService(writer, testLogger(t)), store
}

func TestCreateSessionPersistsAndRegisters(t *testing.T) {
	svc, store := newTestSessionService(t)

	first := svc.CreateSession(context.Background())
	second := svc.CreateSession(context.Background())

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
	assert.True(t, svc.IsKnown(first))
	assert.Len(t, store.records["sessions"], 2)
}

func TestRecordScanUpdatesSessionRecord(t *testing.T) {
	svc, store := newTestSessionService(t)
	sessionID := svc.CreateSession(context.Background())

	svc.RecordScan(sessionID, session.Demographics{Age: 19, Gender: "male", Emotion: "neutral"})

	var record session.Record
	require.NoError(t, store.records["sessions"][0].Decode(&record))
	require.NotNil(t, record.Demographics)
	assert.Equal(t, 19, record.Demographics.Age)
	assert.Equal(t, "male", record.Demographics.Gender)
}

func TestLogSessionDurationAppendsPageVisits(t *testing.T) {
	svc, store := newTestSessionService(t)
	sessionID := svc.CreateSession(context.Background())

	svc.LogSessionDuration(context.Background(), sessionID, "careers", 12.5, nil)
	svc.LogSessionDuration(context.Background(), sessionID, "tuition", 7.5, nil)

	var record session.Record
	require.NoError(t, store.records["sessions"][0].Decode(&record))
	require.Len(t, record.Pages, 2)
	assert.Equal(t, "careers", record.Pages[0].Page)
	assert.Equal(t, 12.5, record.Pages[0].DurationSeconds)
}

func TestLogSessionDurationForUnknownSessionCreatesRecord(t *testing.T) {
	svc, store := newTestSessionService(t)

	svc.LogSessionDuration(context.Background(), "pre-restart-session", "home", 3, nil)

	require.Len(t, store.records["sessions"], 1)
	var record session.Record
	require.NoError(t, store.records["sessions"][0].Decode(&record))
	assert.Equal(t, "pre-restart-session", record.SessionID)
	require.Len(t, record.Pages, 1)
}

func TestLogPageTransition(t *testing.T) {
	svc, store := newTestSessionService(t)
	sessionID := svc.CreateSession(context.Background())

	svc.LogPageTransition(context.Background(), sessionID, "home", "careers")

	require.Len(t, store.records["page_transitions"], 1)
	var transition session.PageTransition
	require.NoError(t, store.records["page_transitions"][0].Decode(&transition))
	assert.Equal(t, "home", transition.From)
	assert.Equal(t, "careers", transition.To)
}

func TestSessionAnalyticsAggregation(t *testing.T) {
	svc, _ := newTestSessionService(t)

	a := svc.CreateSession(context.Background())
	b := svc.CreateSession(context.Background())

	svc.LogSessionDuration(context.Background(), a, "careers", 10, nil)
	svc.LogSessionDuration(context.Background(), a, "tuition", 20, nil)
	svc.LogSessionDuration(context.Background(), b, "careers", 30, nil)

	analytics, err := svc.SessionAnalytics(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, analytics.SessionCount)
	assert.Equal(t, 3, analytics.TotalPageViews)
	assert.InDelta(t, 30.0, analytics.AvgSessionDuration, 0.001)

	require.Len(t, analytics.PageMetrics, 2)
	assert.Equal(t, "careers", analytics.PageMetrics[0].Page, "most viewed page first")
	assert.Equal(t, 2, analytics.PageMetrics[0].Views)
	assert.InDelta(t, 20.0, analytics.PageMetrics[0].AvgDuration, 0.001)
}

func TestEvictDropsDormantSessions(t *testing.T) {
	svc, _ := newTestSessionService(t)

	fresh := svc.CreateSession(context.Background())
	stale := svc.CreateSession(context.Background())

	svc.mu.Lock()
	svc.active[stale].lastActivity = time.Now().UTC().Add(-3 * time.Hour)
	svc.mu.Unlock()

	evicted := svc.Evict(2 * time.Hour)
	assert.Equal(t, []string{stale}, evicted)
	assert.True(t, svc.IsKnown(fresh))
	assert.False(t, svc.IsKnown(stale))
}

func TestActiveSessionsReflectsFlags(t *testing.T) {
	svc, _ := newTestSessionService(t)
	sessionID := svc.CreateSession(context.Background())

	svc.MarkLead(sessionID)

	states := svc.ActiveSessions()
	require.Len(t, states, 1)
	assert.True(t, states[0].HasLead)
	assert.False(t, states[0].HasScanned)
}
