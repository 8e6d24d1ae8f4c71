// Package messaging defines interfaces for real-time communication.
package messaging

// Broadcaster defines the interface for managing SSE client connections and broadcasting messages.
type Broadcaster interface {
	AddClientWithSession(sessionID string) chan string
	RemoveClientWithSession(ch chan string, sessionID string)
	GetSessionConnectionCount(sessionID string) int
	BroadcastRevealStage(sessionID string, stage int, payload any)
	BroadcastSignal(sessionID, signal string, data map[string]any)
}
