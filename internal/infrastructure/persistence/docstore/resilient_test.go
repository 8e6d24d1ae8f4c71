package docstore

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lannapoly/pathfinder-go/internal/infrastructure/observability/logging"
)

func quietLogger(t *testing.T) *logging.ChanneledLogger {
	t.Helper()
	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		DefaultLevel:  slog.LevelError,
		ChannelLevels: make(map[logging.Channel]slog.Level),
	})
	require.NoError(t, err)
	return logger
}

// failingStore errors on every operation.
type failingStore struct{}

func (failingStore) Append(ctx context.Context, collection string, doc any) (string, error) {
	return "", errors.New("storage unavailable")
}

func (failingStore) Read(ctx context.Context, collection string, q Query) ([]Record, error) {
	return nil, errors.New("storage unavailable")
}

func (failingStore) Update(ctx context.Context, collection, id string, partial any) error {
	return errors.New("storage unavailable")
}

// memStore appends into a map, for asserting the happy path.
type memStore struct {
	mu      sync.Mutex
	appends map[string][]any
}

func newMemStore() *memStore {
	return &memStore{appends: make(map[string][]any)}
}

func (s *memStore) Append(ctx context.Context, collection string, doc any) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appends[collection] = append(s.appends[collection], doc)
	return "doc-1", nil
}

func (s *memStore) Read(ctx context.Context, collection string, q Query) ([]Record, error) {
	return nil, nil
}

func (s *memStore) Update(ctx context.Context, collection, id string, partial any) error {
	return nil
}

func TestResilientAppendSwallowsStorageFailure(t *testing.T) {
	writer := NewResilientWriter(failingStore{}, quietLogger(t))

	assert.NotPanics(t, func() {
		id := writer.Append(context.Background(), "conversion_funnel", map[string]any{"step": "visit"})
		assert.Empty(t, id, "failed append reports no document id")
	})
}

func TestResilientUpdateSwallowsStorageFailure(t *testing.T) {
	writer := NewResilientWriter(failingStore{}, quietLogger(t))

	assert.NotPanics(t, func() {
		writer.Update(context.Background(), "sessions", "doc-1", map[string]any{"x": 1})
	})
}

func TestResilientAppendPassesThrough(t *testing.T) {
	store := newMemStore()
	writer := NewResilientWriter(store, quietLogger(t))

	id := writer.Append(context.Background(), "leads", map[string]any{"name": "a"})
	assert.Equal(t, "doc-1", id)
	assert.Len(t, store.appends["leads"], 1)
}
