package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lannapoly/pathfinder-go/internal/domain/catalog"
	"github.com/lannapoly/pathfinder-go/internal/domain/funnel"
	"github.com/lannapoly/pathfinder-go/internal/domain/scan"
	"github.com/lannapoly/pathfinder-go/internal/domain/session"
)

// fakeProvider returns queued detection results in order, repeating the last
// one when the queue runs dry.
type fakeProvider struct {
	mu      sync.Mutex
	results []fakeDetection
	calls   int
}

type fakeDetection struct {
	obs *scan.Observation
	err error
}

func (p *fakeProvider) Detect(ctx context.Context) (*scan.Observation, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if len(p.results) == 0 {
		return nil, nil
	}
	result := p.results[0]
	if len(p.results) > 1 {
		p.results = p.results[1:]
	}
	return result.obs, result.err
}

// fakeBroadcaster records every reveal stage and signal.
type fakeBroadcaster struct {
	mu      sync.Mutex
	stages  []int
	signals []string
}

func (b *fakeBroadcaster) AddClientWithSession(sessionID string) chan string { return make(chan string, 1) }
func (b *fakeBroadcaster) RemoveClientWithSession(ch chan string, sessionID string) {}
func (b *fakeBroadcaster) GetSessionConnectionCount(sessionID string) int           { return 0 }

func (b *fakeBroadcaster) BroadcastRevealStage(sessionID string, stage int, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stages = append(b.stages, stage)
}

func (b *fakeBroadcaster) BroadcastSignal(sessionID, signal string, data map[string]any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.signals = append(b.signals, signal)
}

func (b *fakeBroadcaster) Stages() []int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]int(nil), b.stages...)
}

func (b *fakeBroadcaster) Signals() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.signals...)
}

// fakeStepLogger records funnel steps.
type fakeStepLogger struct {
	mu    sync.Mutex
	steps []funnel.Step
}

func (l *fakeStepLogger) LogStep(ctx context.Context, step funnel.Step, sessionID string, additionalData map[string]any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.steps = append(l.steps, step)
}

func (l *fakeStepLogger) Steps() []funnel.Step {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]funnel.Step(nil), l.steps...)
}

// fakeRecorder records demographic snapshots.
type fakeRecorder struct {
	mu    sync.Mutex
	demos []session.Demographics
}

func (r *fakeRecorder) RecordScan(sessionID string, demo session.Demographics) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.demos = append(r.demos, demo)
}

func (r *fakeRecorder) Demos() []session.Demographics {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]session.Demographics(nil), r.demos...)
}

type scanFixture struct {
	svc         *ScanService
	clock       *fakeClock
	provider    *fakeProvider
	broadcaster *fakeBroadcaster
	steps       *fakeStepLogger
	recorder    *fakeRecorder
}

func testScanConfig() ScanConfig {
	return ScanConfig{
		RevealDelays:  [4]time.Duration{1 * time.Second, 3 * time.Second, 5 * time.Second, 8 * time.Second},
		RetryInterval: 2 * time.Second,
		MaxAttempts:   3,
		ConsentAge:    13,
	}
}

func newScanFixture(t *testing.T, results ...fakeDetection) *scanFixture {
	t.Helper()
	logger := testLogger(t)
	tracker := testTracker()

	f := &scanFixture{
		clock:       newFakeClock(),
		provider:    &fakeProvider{results: results},
		broadcaster: &fakeBroadcaster{},
		steps:       &fakeStepLogger{},
		recorder:    &fakeRecorder{},
	}
	interests := NewInterestService(catalog.Default(), zeroRand{}, 3, logger, tracker)
	f.svc = NewScanService(f.provider, interests, f.broadcaster, f.steps, f.recorder,
		f.clock, testScanConfig(), logger, tracker)
	return f
}

func adultObservation(age int) *scan.Observation {
	return &scan.Observation{
		Age:    age,
		Gender: scan.GenderFemale,
		Expressions: map[scan.Expression]float64{
			scan.ExpressionHappy:   0.9,
			scan.ExpressionNeutral: 0.1,
		},
	}
}

func TestRevealStagesFireInOrder(t *testing.T) {
	f := newScanFixture(t, fakeDetection{obs: adultObservation(25)})

	state := f.svc.Start("sess-1")
	assert.Equal(t, ScanScanning, state.State)

	// Fire the detection attempt; reveal timers are scheduled from here.
	f.clock.Advance(0)
	assert.Equal(t, ScanRevealing, f.svc.State("sess-1").State)
	assert.Empty(t, f.broadcaster.Stages(), "nothing revealed before the first delay")

	f.clock.Advance(1 * time.Second)
	assert.Equal(t, []int{1}, f.broadcaster.Stages())

	f.clock.Advance(2 * time.Second)
	assert.Equal(t, []int{1, 2}, f.broadcaster.Stages())

	// Interests must not have been emitted before stage 4.
	assert.Empty(t, f.steps.Steps())
	assert.Empty(t, f.recorder.Demos())

	f.clock.Advance(5 * time.Second)
	assert.Equal(t, []int{1, 2, 3, 4}, f.broadcaster.Stages())

	state = f.svc.State("sess-1")
	assert.Equal(t, ScanComplete, state.State)
	require.NotNil(t, state.Demographics)
	assert.Equal(t, 25, state.Demographics.Age)
	assert.Equal(t, "happy", state.Demographics.Emotion)
	require.Len(t, state.Recommendations, 3)

	assert.Equal(t, []funnel.Step{funnel.StepScanned}, f.steps.Steps())
	require.Len(t, f.recorder.Demos(), 1)
	assert.Equal(t, "female", f.recorder.Demos()[0].Gender)

	recommendations, ready := f.svc.Recommendations("sess-1")
	assert.True(t, ready)
	assert.Len(t, recommendations, 3)
}

func TestGuardianConsentGateForMinor(t *testing.T) {
	f := newScanFixture(t, fakeDetection{obs: adultObservation(10)})

	f.svc.Start("sess-1")
	f.clock.Advance(0)

	state := f.svc.State("sess-1")
	assert.Equal(t, ScanAwaitingConsent, state.State)
	assert.Contains(t, f.broadcaster.Signals(), SignalConsentRequired)

	// Time passing must not reveal anything without consent.
	f.clock.Advance(time.Minute)
	assert.Empty(t, f.broadcaster.Stages())
	_, ready := f.svc.Recommendations("sess-1")
	assert.False(t, ready)

	_, err := f.svc.Consent("sess-1", true)
	require.NoError(t, err)
	f.clock.Advance(8 * time.Second)

	assert.Equal(t, []int{1, 2, 3, 4}, f.broadcaster.Stages())
	assert.Equal(t, ScanComplete, f.svc.State("sess-1").State)
}

func TestGuardianConsentDeclined(t *testing.T) {
	f := newScanFixture(t, fakeDetection{obs: adultObservation(10)})

	f.svc.Start("sess-1")
	f.clock.Advance(0)
	require.Equal(t, ScanAwaitingConsent, f.svc.State("sess-1").State)

	state, err := f.svc.Consent("sess-1", false)
	require.NoError(t, err)
	assert.Equal(t, ScanIdle, state.State)
	assert.Contains(t, f.broadcaster.Signals(), SignalScanSkipped)

	f.clock.Advance(time.Minute)
	assert.Empty(t, f.broadcaster.Stages())
}

func TestAdultBypassesConsent(t *testing.T) {
	f := newScanFixture(t, fakeDetection{obs: adultObservation(25)})

	f.svc.Start("sess-1")
	f.clock.Advance(0)

	assert.Equal(t, ScanRevealing, f.svc.State("sess-1").State)
	assert.NotContains(t, f.broadcaster.Signals(), SignalConsentRequired)
}

func TestConsentWithoutPendingGateFails(t *testing.T) {
	f := newScanFixture(t, fakeDetection{obs: adultObservation(25)})

	_, err := f.svc.Consent("sess-1", true)
	assert.ErrorIs(t, err, scan.ErrInvalidInput)
}

func TestResetCancelsPendingReveal(t *testing.T) {
	f := newScanFixture(t, fakeDetection{obs: adultObservation(25)})

	f.svc.Start("sess-1")
	f.clock.Advance(0)
	f.clock.Advance(1 * time.Second)
	require.Equal(t, []int{1}, f.broadcaster.Stages())

	state := f.svc.Reset("sess-1")
	assert.Equal(t, ScanIdle, state.State)

	// Advance past every original deadline; no further stage may fire.
	f.clock.Advance(time.Minute)
	assert.Equal(t, []int{1}, f.broadcaster.Stages())
	assert.Empty(t, f.steps.Steps())
	assert.Equal(t, ScanIdle, f.svc.State("sess-1").State)
}

func TestRestartSupersedesPreviousRun(t *testing.T) {
	f := newScanFixture(t, fakeDetection{obs: adultObservation(25)})

	f.svc.Start("sess-1")
	f.clock.Advance(0)
	f.svc.Start("sess-1")
	f.clock.Advance(0)

	// Only the second run's timers fire; stages stay strictly 1..4.
	f.clock.Advance(8 * time.Second)
	assert.Equal(t, []int{1, 2, 3, 4}, f.broadcaster.Stages())
	assert.Equal(t, []funnel.Step{funnel.StepScanned}, f.steps.Steps())
}

func TestNoFaceRetriesThenGivesUp(t *testing.T) {
	f := newScanFixture(t, fakeDetection{obs: nil})

	f.svc.Start("sess-1")
	f.clock.Advance(0)
	assert.Equal(t, 1, f.svc.State("sess-1").Attempts)

	f.clock.Advance(2 * time.Second)
	f.clock.Advance(2 * time.Second)

	state := f.svc.State("sess-1")
	assert.Equal(t, ScanIdle, state.State)
	assert.Equal(t, []string{SignalCannotDetect}, f.broadcaster.Signals())
	assert.Equal(t, 3, f.provider.calls)

	// No further retries after giving up.
	f.clock.Advance(time.Minute)
	assert.Equal(t, 3, f.provider.calls)
}

func TestTransientFailureThenSuccess(t *testing.T) {
	f := newScanFixture(t,
		fakeDetection{err: errors.New("provider timeout")},
		fakeDetection{obs: nil},
		fakeDetection{obs: adultObservation(30)},
	)

	f.svc.Start("sess-1")
	f.clock.Advance(0)
	f.clock.Advance(2 * time.Second)
	f.clock.Advance(2 * time.Second)

	assert.Equal(t, ScanRevealing, f.svc.State("sess-1").State)
	assert.Empty(t, f.broadcaster.Signals())

	f.clock.Advance(8 * time.Second)
	assert.Equal(t, ScanComplete, f.svc.State("sess-1").State)
}

func TestRecommendationsOnlyAfterComplete(t *testing.T) {
	f := newScanFixture(t, fakeDetection{obs: adultObservation(25)})

	_, ready := f.svc.Recommendations("sess-1")
	assert.False(t, ready)

	f.svc.Start("sess-1")
	f.clock.Advance(0)
	f.clock.Advance(5 * time.Second)
	_, ready = f.svc.Recommendations("sess-1")
	assert.False(t, ready, "stage 3 is not complete")

	f.clock.Advance(3 * time.Second)
	recommendations, ready := f.svc.Recommendations("sess-1")
	assert.True(t, ready)
	assert.Len(t, recommendations, 3)
}
