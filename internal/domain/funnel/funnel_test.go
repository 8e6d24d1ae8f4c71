package funnel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func eventsFor(step Step, n int) []Event {
	events := make([]Event, n)
	for i := range events {
		events[i] = Event{Step: step, SessionID: "s"}
	}
	return events
}

func TestComputeRates(t *testing.T) {
	var events []Event
	events = append(events, eventsFor(StepVisit, 10)...)
	events = append(events, eventsFor(StepScanned, 6)...)
	events = append(events, eventsFor(StepClicked, 3)...)
	events = append(events, eventsFor(StepChatted, 1)...)

	stats := Compute(events)

	assert.Equal(t, 20, stats.Total)
	assert.Equal(t, 10, stats.Visit)
	assert.Equal(t, 6, stats.Scanned)
	assert.Equal(t, 3, stats.Clicked)
	assert.Equal(t, 1, stats.Chatted)
	assert.Equal(t, 0, stats.FormFilled)

	assert.InDelta(t, 60.0, stats.ScanRate, 0.001)
	assert.InDelta(t, 50.0, stats.ClickRate, 0.001)
	assert.InDelta(t, 33.3, stats.ChatRate, 0.001)
}

func TestComputeZeroDenominators(t *testing.T) {
	stats := Compute(nil)
	assert.Zero(t, stats.ScanRate)
	assert.Zero(t, stats.ClickRate)
	assert.Zero(t, stats.ChatRate)

	clickedOnly := Compute(eventsFor(StepClicked, 4))
	assert.Zero(t, clickedOnly.ClickRate, "no scans means no click rate")
	assert.InDelta(t, 0.0, clickedOnly.ScanRate, 0.001)
}

func TestComputeCountsUnknownStepsInTotalOnly(t *testing.T) {
	events := []Event{
		{Step: StepVisit, SessionID: "s"},
		{Step: Step("mystery"), SessionID: "s"},
	}

	stats := Compute(events)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Visit)
}

func TestStepValid(t *testing.T) {
	for _, step := range Steps {
		assert.True(t, step.Valid())
	}
	assert.False(t, Step("reboot").Valid())
}
