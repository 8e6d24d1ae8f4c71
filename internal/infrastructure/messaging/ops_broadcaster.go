package messaging

import (
	"encoding/json"
	"log"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// OpsClient represents a single connected ops dashboard client.
type OpsClient struct {
	Conn *websocket.Conn
	Send chan []byte
}

// SessionActivity describes one live kiosk session for the ops visualization.
type SessionActivity struct {
	HasLead      bool      `json:"hasLead"`
	HasScanned   bool      `json:"hasScanned"`
	LastActivity time.Time `json:"lastActivity"`
}

// ActivitySource supplies the live session list on each broadcast tick.
// The session registry implements it.
type ActivitySource interface {
	ActiveSessions() []SessionActivity
}

// SessionStatePayload is the complete data structure sent to the frontend on each tick.
type SessionStatePayload struct {
	SessionStates []SessionActivity `json:"sessionStates"`
	DisplayMode   string            `json:"displayMode"` // "1:1" or "PROPORTIONAL"
	TotalCount    int               `json:"totalCount"`
	LeadCount     int               `json:"leadCount"`
	ScannedCount  int               `json:"scannedCount"`
	ActiveCount   int               `json:"activeCount"`
	DormantCount  int               `json:"dormantCount"`
}

// sessionStats holds the raw counts for proportional calculation.
type sessionStats struct{ Total, Lead, Scanned, Active, Dormant int }

// OpsBroadcaster manages all connected ops clients and broadcasts kiosk state.
type OpsBroadcaster struct {
	clients      map[*OpsClient]bool
	register     chan *OpsClient
	unregister   chan *OpsClient
	source       ActivitySource
	tickInterval time.Duration
	mu           sync.RWMutex
}

// NewOpsBroadcaster creates a new broadcaster instance.
func NewOpsBroadcaster(source ActivitySource, tickInterval time.Duration) *OpsBroadcaster {
	return &OpsBroadcaster{
		clients:      make(map[*OpsClient]bool),
		register:     make(chan *OpsClient),
		unregister:   make(chan *OpsClient),
		source:       source,
		tickInterval: tickInterval,
	}
}

// Run starts the broadcaster's main loop. This should be run as a goroutine.
func (b *OpsBroadcaster) Run() {
	ticker := time.NewTicker(b.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case client := <-b.register:
			b.mu.Lock()
			b.clients[client] = true
			log.Printf("Ops client registered")
			b.mu.Unlock()

		case client := <-b.unregister:
			b.mu.Lock()
			if _, ok := b.clients[client]; ok {
				delete(b.clients, client)
				close(client.Send)
			}
			log.Printf("Ops client unregistered")
			b.mu.Unlock()

		case <-ticker.C:
			b.broadcastSessionMap()
		}
	}
}

// Register queues a client for registration.
func (b *OpsBroadcaster) Register(client *OpsClient) {
	b.register <- client
}

// Unregister queues a client for unregistration.
func (b *OpsBroadcaster) Unregister(client *OpsClient) {
	b.unregister <- client
}

// broadcastSessionMap gathers and sends the session state to connected clients.
func (b *OpsBroadcaster) broadcastSessionMap() {
	b.mu.RLock()
	hasClients := len(b.clients) > 0
	b.mu.RUnlock()
	if !hasClients {
		return
	}

	fullStateList := b.source.ActiveSessions()
	payload := b.preparePayload(fullStateList)

	message, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error marshaling ops session state: %v", err)
		return
	}

	b.mu.RLock()
	for client := range b.clients {
		select {
		case client.Send <- message:
		default:
		}
	}
	b.mu.RUnlock()
}

// preparePayload handles the logic for proportional scaling.
func (b *OpsBroadcaster) preparePayload(fullStateList []SessionActivity) SessionStatePayload {
	stats := b.calculateStats(fullStateList)
	var displayStates []SessionActivity
	displayMode := "1:1"

	// Switch to proportional mode if session count is high
	if stats.Total > 200 {
		displayMode = "PROPORTIONAL"
		displayStates = b.calculateProportionalStates(fullStateList, 200)
	} else {
		displayStates = fullStateList
	}

	return SessionStatePayload{
		SessionStates: displayStates,
		DisplayMode:   displayMode,
		TotalCount:    stats.Total,
		LeadCount:     stats.Lead,
		ScannedCount:  stats.Scanned,
		ActiveCount:   stats.Active,
		DormantCount:  stats.Dormant,
	}
}

// calculateStats calculates aggregate statistics from the full session list.
func (b *OpsBroadcaster) calculateStats(fullStateList []SessionActivity) (stats sessionStats) {
	stats.Total = len(fullStateList)
	now := time.Now()
	for _, s := range fullStateList {
		if s.HasScanned {
			stats.Scanned++
		}
		if s.HasLead {
			stats.Lead++
		}
		if now.Sub(s.LastActivity).Minutes() <= 45 {
			stats.Active++
		} else {
			stats.Dormant++
		}
	}
	return stats
}

// calculateProportionalStates collapses a large session list into displayCount
// representative blocks, keyed by type and activity tier.
func (b *OpsBroadcaster) calculateProportionalStates(fullStateList []SessionActivity, displayCount int) []SessionActivity {
	total := len(fullStateList)
	if total == 0 {
		return []SessionActivity{}
	}

	now := time.Now()
	// Representative timestamps for each activity tier to trigger the correct CSS on the frontend.
	timeTiers := map[string]time.Time{
		"ultra":   now,
		"bright":  now.Add(-10 * time.Minute),
		"medium":  now.Add(-20 * time.Minute),
		"light":   now.Add(-40 * time.Minute),
		"dormant": now.Add(-60 * time.Minute),
	}

	// 1. Group sessions into detailed buckets based on type and activity tier.
	counts := make(map[string]int)
	for _, s := range fullStateList {
		minutesSince := now.Sub(s.LastActivity).Minutes()

		var tier string
		if minutesSince < 1 {
			tier = "ultra"
		} else if minutesSince <= 15 {
			tier = "bright"
		} else if minutesSince <= 30 {
			tier = "medium"
		} else if minutesSince <= 45 {
			tier = "light"
		} else {
			tier = "dormant"
		}

		var categoryPrefix string
		if s.HasLead {
			categoryPrefix = "lead"
		} else if s.HasScanned {
			categoryPrefix = "scanned"
		} else {
			categoryPrefix = "anon"
		}
		counts[categoryPrefix+"_"+tier]++
	}

	// 2. Build the final list of blocks based on the calculated proportions.
	proportionalStates := make([]SessionActivity, 0, displayCount)
	categoryOrder := []string{ // Define order for consistent display
		"lead_ultra", "lead_bright", "lead_medium", "lead_light", "lead_dormant",
		"scanned_ultra", "scanned_bright", "scanned_medium", "scanned_light", "scanned_dormant",
		"anon_ultra", "anon_bright", "anon_medium", "anon_light", "anon_dormant",
	}

	repeatState := func(num int, state SessionActivity) {
		for i := 0; i < num; i++ {
			proportionalStates = append(proportionalStates, state)
		}
	}

	for _, category := range categoryOrder {
		categoryCount := counts[category]
		if categoryCount == 0 {
			continue
		}

		var template SessionActivity
		switch {
		case strings.HasPrefix(category, "lead"):
			template.HasLead = true
			template.HasScanned = true // Leads have been through the scan flow
		case strings.HasPrefix(category, "scanned"):
			template.HasScanned = true
		default: // "anon"
		}

		tier := strings.Split(category, "_")[1]
		template.LastActivity = timeTiers[tier]

		numBlocks := int(math.Round((float64(categoryCount) / float64(total)) * float64(displayCount)))
		if numBlocks > 0 {
			repeatState(numBlocks, template)
		}
	}

	// 3. Group and adjust for rounding errors to keep an exact count.
	sort.SliceStable(proportionalStates, func(i, j int) bool {
		if proportionalStates[i].HasLead != proportionalStates[j].HasLead {
			return proportionalStates[i].HasLead
		}
		return proportionalStates[i].HasScanned
	})

	if len(proportionalStates) > displayCount {
		return proportionalStates[:displayCount]
	}
	for len(proportionalStates) < displayCount {
		// Pad with the most common "anonymous dormant" state if we're short due to rounding
		proportionalStates = append(proportionalStates, SessionActivity{LastActivity: timeTiers["dormant"]})
	}

	return proportionalStates
}
