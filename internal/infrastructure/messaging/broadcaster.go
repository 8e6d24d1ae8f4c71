// Package messaging provides the concrete implementation of the SSE broadcaster.
package messaging

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/lannapoly/pathfinder-go/internal/infrastructure/observability/logging"
)

// SSEBroadcaster manages session-specific SSE connections for the kiosk
// display. Reveal stages and scan signals reach only the session they belong to.
type SSEBroadcaster struct {
	sessions map[string][]chan string // sessionId -> []channels
	mu       sync.Mutex
	logger   *logging.ChanneledLogger
}

var (
	globalBroadcaster *SSEBroadcaster
	sseOnce           sync.Once
)

// NewSSEBroadcaster creates the singleton SSEBroadcaster instance.
func NewSSEBroadcaster(logger *logging.ChanneledLogger) *SSEBroadcaster {
	sseOnce.Do(func() {
		globalBroadcaster = &SSEBroadcaster{
			sessions: make(map[string][]chan string),
			logger:   logger,
		}
	})
	return globalBroadcaster
}

// AddClientWithSession registers a new SSE client scoped to one kiosk session.
func (b *SSEBroadcaster) AddClientWithSession(sessionID string) chan string {
	ch := make(chan string, 10)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.sessions[sessionID] = append(b.sessions[sessionID], ch)

	b.logger.SSE().Debug("SSE client registered", "sessionId", sessionID)
	return ch
}

// RemoveClientWithSession removes an SSE client from its session.
func (b *SSEBroadcaster) RemoveClientWithSession(ch chan string, sessionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if sessionClients, exists := b.sessions[sessionID]; exists {
		newClients := make([]chan string, 0, len(sessionClients)-1)
		for _, client := range sessionClients {
			if client != ch {
				newClients = append(newClients, client)
			}
		}
		b.sessions[sessionID] = newClients

		if len(b.sessions[sessionID]) == 0 {
			delete(b.sessions, sessionID)
		}
	}
	b.logger.SSE().Debug("SSE client unregistered", "sessionId", sessionID)
}

// GetSessionConnectionCount returns the connection count for a specific session.
func (b *SSEBroadcaster) GetSessionConnectionCount(sessionID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.sessions[sessionID])
}

// BroadcastRevealStage sends one staged-reveal frame to a session. Stage 4
// carries the assembled interest recommendations as its payload.
func (b *SSEBroadcaster) BroadcastRevealStage(sessionID string, stage int, payload any) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.SSE().Error("Panic recovered in BroadcastRevealStage", "error", r, "sessionId", sessionID)
		}
	}()

	payloadJSON, _ := json.Marshal(payload)
	message := fmt.Sprintf("event: scan_reveal\ndata: {\"stage\":%d,\"payload\":%s}\n\n", stage, payloadJSON)

	b.send(sessionID, message)
	b.logger.LogSSEEvent("scan_reveal", sessionID, b.GetSessionConnectionCount(sessionID))
}

// BroadcastSignal sends a scan signal frame (guardian consent required, scan
// skipped, cannot detect) to a session.
func (b *SSEBroadcaster) BroadcastSignal(sessionID, signal string, data map[string]any) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.SSE().Error("Panic recovered in BroadcastSignal", "error", r, "sessionId", sessionID)
		}
	}()

	body := map[string]any{"signal": signal}
	for k, v := range data {
		body[k] = v
	}
	bodyJSON, _ := json.Marshal(body)
	message := fmt.Sprintf("event: scan_signal\ndata: %s\n\n", bodyJSON)

	b.logger.SSE().Debug("Broadcasting signal to session",
		"message", strings.ReplaceAll(message, "\n", "\\n"), "sessionId", sessionID)
	b.send(sessionID, message)
}

func (b *SSEBroadcaster) send(sessionID, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.sessions[sessionID] {
		select {
		case ch <- message:
		default:
			b.logger.SSE().Warn("SSE channel full, message dropped", "sessionId", sessionID)
		}
	}
}
