// Package funnel defines the conversion-funnel event model and the pure
// aggregation over it. Events are append-only; statistics are always computed
// by counting, never by mutating stored records.
package funnel

import (
	"math"
	"time"
)

// Step is one milestone of the kiosk user journey.
type Step string

const (
	StepVisit      Step = "visit"
	StepScanned    Step = "scanned"
	StepClicked    Step = "clicked"
	StepChatted    Step = "chatted"
	StepFormFilled Step = "form_filled"
)

// Steps lists every funnel step in causal order.
var Steps = []Step{StepVisit, StepScanned, StepClicked, StepChatted, StepFormFilled}

// Valid reports whether s is a known funnel step.
func (s Step) Valid() bool {
	for _, known := range Steps {
		if s == known {
			return true
		}
	}
	return false
}

// Event is one append-only conversion log entry.
type Event struct {
	ID             string         `json:"id,omitempty"`
	Step           Step           `json:"step"`
	SessionID      string         `json:"sessionId"`
	CreatedAt      time.Time      `json:"createdAt"`
	AdditionalData map[string]any `json:"additionalData,omitempty"`
}

// Stats holds per-step counts plus the three derived conversion rates, each a
// percentage rounded to one decimal place.
type Stats struct {
	Total      int     `json:"total"`
	Visit      int     `json:"visit"`
	Scanned    int     `json:"scanned"`
	Clicked    int     `json:"clicked"`
	Chatted    int     `json:"chatted"`
	FormFilled int     `json:"formFilled"`
	ScanRate   float64 `json:"scanRate"`
	ClickRate  float64 `json:"clickRate"`
	ChatRate   float64 `json:"chatRate"`
}

// Compute tallies events into funnel statistics. Unknown steps count toward
// the total only; missing or out-of-order steps simply produce zero rates.
func Compute(events []Event) Stats {
	var s Stats
	for _, e := range events {
		s.Total++
		switch e.Step {
		case StepVisit:
			s.Visit++
		case StepScanned:
			s.Scanned++
		case StepClicked:
			s.Clicked++
		case StepChatted:
			s.Chatted++
		case StepFormFilled:
			s.FormFilled++
		}
	}

	s.ScanRate = rate(s.Scanned, s.Visit)
	s.ClickRate = rate(s.Clicked, s.Scanned)
	s.ChatRate = rate(s.Chatted, s.Clicked)
	return s
}

// rate returns numerator/denominator as a percentage rounded to one decimal,
// and 0 when the denominator is 0.
func rate(numerator, denominator int) float64 {
	if denominator == 0 {
		return 0
	}
	return math.Round(float64(numerator)/float64(denominator)*1000) / 10
}
