package messaging

import (
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lannapoly/pathfinder-go/internal/infrastructure/observability/logging"
)

func testBroadcaster(t *testing.T) *SSEBroadcaster {
	t.Helper()
	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		DefaultLevel:  slog.LevelError,
		ChannelLevels: make(map[logging.Channel]slog.Level),
	})
	require.NoError(t, err)
	return NewSSEBroadcaster(logger)
}

func TestRevealStageFrameReachesOnlyItsSession(t *testing.T) {
	b := testBroadcaster(t)

	mine := b.AddClientWithSession("frame-sess-a")
	other := b.AddClientWithSession("frame-sess-b")
	defer b.RemoveClientWithSession(mine, "frame-sess-a")
	defer b.RemoveClientWithSession(other, "frame-sess-b")

	b.BroadcastRevealStage("frame-sess-a", 1, map[string]any{"age": 25})

	select {
	case message := <-mine:
		assert.True(t, strings.HasPrefix(message, "event: scan_reveal\n"))
		assert.Contains(t, message, `"stage":1`)
		assert.Contains(t, message, `"age":25`)
		assert.True(t, strings.HasSuffix(message, "\n\n"))
	default:
		t.Fatal("expected a reveal frame for the session")
	}

	select {
	case message := <-other:
		t.Fatalf("unexpected frame for other session: %s", message)
	default:
	}
}

func TestSignalFrameCarriesData(t *testing.T) {
	b := testBroadcaster(t)

	ch := b.AddClientWithSession("signal-sess")
	defer b.RemoveClientWithSession(ch, "signal-sess")

	b.BroadcastSignal("signal-sess", "guardian_consent_required", map[string]any{"age": 10})

	message := <-ch
	require.True(t, strings.HasPrefix(message, "event: scan_signal\ndata: "))

	var body map[string]any
	data := strings.TrimSuffix(strings.TrimPrefix(message, "event: scan_signal\ndata: "), "\n\n")
	require.NoError(t, json.Unmarshal([]byte(data), &body))
	assert.Equal(t, "guardian_consent_required", body["signal"])
	assert.Equal(t, float64(10), body["age"])
}

func TestConnectionCountPerSession(t *testing.T) {
	b := testBroadcaster(t)

	assert.Zero(t, b.GetSessionConnectionCount("count-sess"))
	first := b.AddClientWithSession("count-sess")
	second := b.AddClientWithSession("count-sess")
	assert.Equal(t, 2, b.GetSessionConnectionCount("count-sess"))

	b.RemoveClientWithSession(first, "count-sess")
	assert.Equal(t, 1, b.GetSessionConnectionCount("count-sess"))
	b.RemoveClientWithSession(second, "count-sess")
	assert.Zero(t, b.GetSessionConnectionCount("count-sess"))
}

func TestFullChannelDropsInsteadOfBlocking(t *testing.T) {
	b := testBroadcaster(t)

	ch := b.AddClientWithSession("full-sess")
	defer b.RemoveClientWithSession(ch, "full-sess")

	// Channel capacity is 10; the extra frames must not block the sender.
	for i := 0; i < 20; i++ {
		b.BroadcastRevealStage("full-sess", 1, nil)
	}
	assert.Len(t, ch, 10)
}
