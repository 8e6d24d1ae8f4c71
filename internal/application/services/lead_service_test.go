package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lannapoly/pathfinder-go/internal/domain/funnel"
	"github.com/lannapoly/pathfinder-go/internal/domain/scan"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/persistence/docstore"
)

func newTestLeadService(t *testing.T) (*LeadService, *SessionService, *memDocStore) {
	t.Helper()
	store := newMemDocStore()
	writer := docstore.NewResilientWriter(store, testLogger(t))
	sessions := NewSessionService(writer, testLogger(t))
	funnelSvc := NewFunnelService(writer, testLogger(t))
	return NewLeadService(writer, funnelSvc, sessions, nil, testLogger(t)), sessions, store
}

func TestCreateLeadStoresAndAdvancesFunnel(t *testing.T) {
	svc, sessions, store := newTestLeadService(t)
	sessionID := sessions.CreateSession(context.Background())

	lead, err := svc.CreateLead(context.Background(), Lead{
		SessionID: sessionID,
		Name:      "สมชาย ใจดี",
		Phone:     "0812345678",
		Interest:  "it",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, lead.ID)

	require.Len(t, store.records["leads"], 1)
	require.Len(t, store.records["conversion_funnel"], 1)

	var event funnel.Event
	require.NoError(t, store.records["conversion_funnel"][0].Decode(&event))
	assert.Equal(t, funnel.StepFormFilled, event.Step)

	states := sessions.ActiveSessions()
	require.Len(t, states, 1)
	assert.True(t, states[0].HasLead)
}

func TestCreateLeadRequiresNameAndPhone(t *testing.T) {
	svc, _, store := newTestLeadService(t)

	_, err := svc.CreateLead(context.Background(), Lead{SessionID: "s", Name: "  ", Phone: "081"})
	assert.ErrorIs(t, err, scan.ErrInvalidInput)

	_, err = svc.CreateLead(context.Background(), Lead{SessionID: "s", Name: "a", Phone: ""})
	assert.ErrorIs(t, err, scan.ErrInvalidInput)

	assert.Empty(t, store.records["leads"])
}
