// Package session defines the per-visit session record owned by the
// session registry.
package session

import "time"

// Demographics is the flattened snapshot of a scan attached to a session.
// The raw observation is never persisted.
type Demographics struct {
	Age     int    `json:"age,omitempty"`
	Gender  string `json:"gender,omitempty"`
	Emotion string `json:"emotion,omitempty"`
}

// PageVisit is one page stay within a session.
type PageVisit struct {
	Page            string    `json:"page"`
	DurationSeconds float64   `json:"duration"`
	Timestamp       time.Time `json:"timestamp"`
}

// Record is the document stored per kiosk session. One record per session;
// records are appended to, never merged across sessions.
type Record struct {
	SessionID    string        `json:"sessionId"`
	CreatedAt    time.Time     `json:"createdAt"`
	StartTime    time.Time     `json:"startTime"`
	LastUpdated  time.Time     `json:"lastUpdated,omitempty"`
	Demographics *Demographics `json:"demographics,omitempty"`
	Pages        []PageVisit   `json:"pages,omitempty"`
}

// PageTransition is one navigation edge in the user flow.
type PageTransition struct {
	SessionID string    `json:"sessionId"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Timestamp time.Time `json:"timestamp"`
}

// Analytics summarizes all stored sessions for the admin dashboard.
type Analytics struct {
	SessionCount       int          `json:"sessionCount"`
	AvgSessionDuration float64      `json:"avgSessionDuration"`
	TotalPageViews     int          `json:"totalPageViews"`
	PageMetrics        []PageMetric `json:"pageMetrics"`
}

// PageMetric aggregates stays on one page across sessions.
type PageMetric struct {
	Page        string  `json:"page"`
	Views       int     `json:"views"`
	AvgDuration float64 `json:"avgDuration"`
}
