package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lannapoly/pathfinder-go/internal/domain/funnel"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/persistence/docstore"
)

func newTestFunnelService(t *testing.T) (*FunnelService, *memDocStore) {
	t.Helper()
	store := newMemDocStore()
	writer := docstore.NewResilientWriter(store, testLogger(t))
	return NewFunnelService(writer, testLogger(t)), store
}

func TestLogStepAppendsEvent(t *testing.T) {
	svc, store := newTestFunnelService(t)

	svc.LogStep(context.Background(), funnel.StepVisit, "sess-1", map[string]any{"page": "home"})

	require.Len(t, store.records["conversion_funnel"], 1)
	var event funnel.Event
	require.NoError(t, store.records["conversion_funnel"][0].Decode(&event))
	assert.Equal(t, funnel.StepVisit, event.Step)
	assert.Equal(t, "sess-1", event.SessionID)
	assert.Equal(t, "home", event.AdditionalData["page"])
}

func TestLogStepDropsUnknownStep(t *testing.T) {
	svc, store := newTestFunnelService(t)

	svc.LogStep(context.Background(), funnel.Step("teleported"), "sess-1", nil)
	assert.Empty(t, store.records["conversion_funnel"])
}

func TestComputeFunnelFromStoredEvents(t *testing.T) {
	svc, _ := newTestFunnelService(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		svc.LogStep(ctx, funnel.StepVisit, "sess", nil)
	}
	for i := 0; i < 6; i++ {
		svc.LogStep(ctx, funnel.StepScanned, "sess", nil)
	}
	for i := 0; i < 3; i++ {
		svc.LogStep(ctx, funnel.StepClicked, "sess", nil)
	}
	svc.LogStep(ctx, funnel.StepChatted, "sess", nil)

	stats, err := svc.ComputeFunnel(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, stats.Visit)
	assert.InDelta(t, 60.0, stats.ScanRate, 0.001)
	assert.InDelta(t, 50.0, stats.ClickRate, 0.001)
	assert.InDelta(t, 33.3, stats.ChatRate, 0.001)
}
