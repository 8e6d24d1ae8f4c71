// Package services provides the per-session scan controller. It owns the
// staged-reveal state machine between the camera sidecar and the kiosk display.
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lannapoly/pathfinder-go/internal/domain/funnel"
	"github.com/lannapoly/pathfinder-go/internal/domain/scan"
	"github.com/lannapoly/pathfinder-go/internal/domain/session"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/faceapi"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/messaging"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/observability/logging"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/observability/performance"
)

// ScanState is one phase of the per-session scan lifecycle.
type ScanState string

const (
	ScanIdle            ScanState = "idle"
	ScanScanning        ScanState = "scanning"
	ScanAwaitingConsent ScanState = "awaiting_guardian_consent"
	ScanRevealing       ScanState = "revealing"
	ScanComplete        ScanState = "complete"
)

// Scan signals pushed over SSE alongside reveal frames.
const (
	SignalConsentRequired = "guardian_consent_required"
	SignalScanSkipped     = "scan_skipped"
	SignalCannotDetect    = "cannot_detect"
)

// ScanConfig carries the timing knobs of the reveal sequence.
type ScanConfig struct {
	RevealDelays  [4]time.Duration // measured from successful detection
	RetryInterval time.Duration    // wait between no-face attempts
	MaxAttempts   int              // detection attempts before giving up
	ConsentAge    int              // below this age a guardian must consent
}

// StepLogger records conversion funnel milestones. The funnel service
// implements it.
type StepLogger interface {
	LogStep(ctx context.Context, step funnel.Step, sessionID string, additionalData map[string]any)
}

// DemographicsRecorder attaches a scan's demographic snapshot to the session
// record. The session service implements it.
type DemographicsRecorder interface {
	RecordScan(sessionID string, demo session.Demographics)
}

// scanSession is the controller's per-session state. All access goes through
// the service mutex.
type scanSession struct {
	state           ScanState
	generation      uint64 // bumped on every Start/Reset; stale timers check it
	attempts        int
	stage           int
	observation     *scan.Observation
	dominant        scan.Expression
	recommendations []Recommendation
	timers          []Timer
}

// ScanService drives the scan state machine for every kiosk session.
type ScanService struct {
	mu       sync.Mutex
	sessions map[string]*scanSession

	provider     faceapi.Provider
	interests    *InterestService
	broadcaster  messaging.Broadcaster
	funnel       StepLogger
	demographics DemographicsRecorder
	clock        Clock
	cfg          ScanConfig
	logger       *logging.ChanneledLogger
	perfTracker  *performance.Tracker
}

// NewScanService wires the controller with its collaborators.
func NewScanService(
	provider faceapi.Provider,
	interests *InterestService,
	broadcaster messaging.Broadcaster,
	stepLogger StepLogger,
	demographics DemographicsRecorder,
	clock Clock,
	cfg ScanConfig,
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
) *ScanService {
	if clock == nil {
		clock = NewRealClock()
	}
	return &ScanService{
		sessions:     make(map[string]*scanSession),
		provider:     provider,
		interests:    interests,
		broadcaster:  broadcaster,
		funnel:       stepLogger,
		demographics: demographics,
		clock:        clock,
		cfg:          cfg,
		logger:       logger,
		perfTracker:  perfTracker,
	}
}

// StateSnapshot is the controller state exposed to the HTTP layer.
type StateSnapshot struct {
	SessionID       string                `json:"sessionId"`
	State           ScanState             `json:"state"`
	Stage           int                   `json:"stage"`
	Attempts        int                   `json:"attempts"`
	Demographics    *session.Demographics `json:"demographics,omitempty"`
	Recommendations []Recommendation      `json:"recommendations,omitempty"`
}

// Start begins a scan for a session. Starting over an in-flight scan restarts
// it; pending timers from the previous run are cancelled.
func (s *ScanService) Start(sessionID string) StateSnapshot {
	s.mu.Lock()
	sess := s.sessionLocked(sessionID)
	from := sess.state
	s.cancelTimersLocked(sess)
	sess.generation++
	gen := sess.generation
	sess.state = ScanScanning
	sess.attempts = 0
	sess.stage = 0
	sess.observation = nil
	sess.recommendations = nil
	s.mu.Unlock()

	s.logger.LogScanTransition(sessionID, string(from), string(ScanScanning), nil)
	s.schedule(sessionID, gen, 0, func() { s.attempt(sessionID, gen) })
	return s.State(sessionID)
}

// Consent resolves a pending guardian consent gate. Granting resumes the
// reveal sequence; declining returns to idle and signals the display to skip.
func (s *ScanService) Consent(sessionID string, granted bool) (StateSnapshot, error) {
	s.mu.Lock()
	sess := s.sessionLocked(sessionID)
	if sess.state != ScanAwaitingConsent {
		state := sess.state
		s.mu.Unlock()
		return s.State(sessionID), fmt.Errorf("%w: consent not pending in state %s", scan.ErrInvalidInput, state)
	}

	if !granted {
		sess.generation++
		sess.state = ScanIdle
		sess.observation = nil
		s.mu.Unlock()
		s.logger.LogScanTransition(sessionID, string(ScanAwaitingConsent), string(ScanIdle),
			map[string]any{"reason": "consent_declined"})
		s.broadcaster.BroadcastSignal(sessionID, SignalScanSkipped, nil)
		return s.State(sessionID), nil
	}

	gen := sess.generation
	obs := sess.observation
	s.mu.Unlock()

	s.logger.LogScanTransition(sessionID, string(ScanAwaitingConsent), string(ScanRevealing),
		map[string]any{"reason": "consent_granted"})
	s.beginReveal(sessionID, gen, obs)
	return s.State(sessionID), nil
}

// Reset cancels any pending work and returns the session to idle. Safe from
// any state.
func (s *ScanService) Reset(sessionID string) StateSnapshot {
	s.mu.Lock()
	sess := s.sessionLocked(sessionID)
	from := sess.state
	s.cancelTimersLocked(sess)
	sess.generation++
	sess.state = ScanIdle
	sess.attempts = 0
	sess.stage = 0
	sess.observation = nil
	sess.recommendations = nil
	s.mu.Unlock()

	s.logger.LogScanTransition(sessionID, string(from), string(ScanIdle),
		map[string]any{"reason": "reset"})
	return s.State(sessionID)
}

// State returns the current controller snapshot for a session.
func (s *ScanService) State(sessionID string) StateSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.sessionLocked(sessionID)
	snapshot := StateSnapshot{
		SessionID: sessionID,
		State:     sess.state,
		Stage:     sess.stage,
		Attempts:  sess.attempts,
	}
	if sess.observation != nil && (sess.state == ScanRevealing || sess.state == ScanComplete) {
		snapshot.Demographics = &session.Demographics{
			Age:     sess.observation.Age,
			Gender:  string(sess.observation.Gender),
			Emotion: string(sess.dominant),
		}
	}
	if sess.state == ScanComplete {
		snapshot.Recommendations = sess.recommendations
	}
	return snapshot
}

// Recommendations returns the assembled result once the reveal has completed.
func (s *ScanService) Recommendations(sessionID string) ([]Recommendation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.sessionLocked(sessionID)
	if sess.state != ScanComplete {
		return nil, false
	}
	return sess.recommendations, true
}

// attempt performs one detection pass against the provider.
func (s *ScanService) attempt(sessionID string, gen uint64) {
	marker := s.perfTracker.StartOperation("scan_detect", sessionID)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	obs, err := s.provider.Detect(ctx)
	s.perfTracker.CompleteOperation(marker)

	s.mu.Lock()
	sess := s.sessionLocked(sessionID)
	if sess.generation != gen || sess.state != ScanScanning {
		s.mu.Unlock()
		return // superseded by a reset or restart
	}

	if err != nil || obs == nil {
		sess.attempts++
		attempts := sess.attempts
		if err != nil {
			s.logger.LogError(logging.ChannelScan, "scan_detect", err,
				map[string]any{"sessionId": sessionID, "attempt": attempts})
		}

		if attempts >= s.cfg.MaxAttempts {
			sess.state = ScanIdle
			s.mu.Unlock()
			s.logger.LogScanTransition(sessionID, string(ScanScanning), string(ScanIdle),
				map[string]any{"reason": "cannot_detect", "attempts": attempts})
			s.broadcaster.BroadcastSignal(sessionID, SignalCannotDetect,
				map[string]any{"attempts": attempts})
			return
		}

		s.mu.Unlock()
		s.schedule(sessionID, gen, s.cfg.RetryInterval, func() { s.attempt(sessionID, gen) })
		return
	}

	sess.observation = obs

	if obs.Age < s.cfg.ConsentAge {
		sess.state = ScanAwaitingConsent
		s.mu.Unlock()
		s.logger.LogScanTransition(sessionID, string(ScanScanning), string(ScanAwaitingConsent),
			map[string]any{"age": obs.Age})
		s.broadcaster.BroadcastSignal(sessionID, SignalConsentRequired,
			map[string]any{"age": obs.Age})
		return
	}

	s.mu.Unlock()
	s.logger.LogScanTransition(sessionID, string(ScanScanning), string(ScanRevealing), nil)
	s.beginReveal(sessionID, gen, obs)
}

// beginReveal computes the recommendation once, then schedules the four
// reveal stages measured from this moment.
func (s *ScanService) beginReveal(sessionID string, gen uint64, obs *scan.Observation) {
	recommendations, err := s.interests.Recommend(obs)
	if err != nil {
		s.logger.LogError(logging.ChannelScan, "scan_recommend", err,
			map[string]any{"sessionId": sessionID})
		s.mu.Lock()
		sess := s.sessionLocked(sessionID)
		if sess.generation == gen {
			sess.state = ScanIdle
		}
		s.mu.Unlock()
		s.broadcaster.BroadcastSignal(sessionID, SignalCannotDetect, nil)
		return
	}

	dominant, _ := scan.DominantExpression(obs.Expressions)

	s.mu.Lock()
	sess := s.sessionLocked(sessionID)
	if sess.generation != gen {
		s.mu.Unlock()
		return
	}
	sess.state = ScanRevealing
	sess.stage = 0
	sess.dominant = dominant
	sess.recommendations = recommendations
	s.mu.Unlock()

	for i, delay := range s.cfg.RevealDelays {
		stage := i + 1
		s.schedule(sessionID, gen, delay, func() { s.reveal(sessionID, gen, stage) })
	}
}

// reveal emits one stage. Stage four carries the interests and fires the
// scan side effects exactly once.
func (s *ScanService) reveal(sessionID string, gen uint64, stage int) {
	s.mu.Lock()
	sess := s.sessionLocked(sessionID)
	if sess.generation != gen || sess.state != ScanRevealing {
		s.mu.Unlock()
		return
	}
	if stage <= sess.stage {
		s.mu.Unlock()
		return // stages are strictly ordered
	}
	sess.stage = stage
	obs := sess.observation
	dominant := sess.dominant
	recommendations := sess.recommendations
	if stage == len(s.cfg.RevealDelays) {
		sess.state = ScanComplete
	}
	s.mu.Unlock()

	switch stage {
	case 1:
		s.broadcaster.BroadcastRevealStage(sessionID, stage, map[string]any{"age": obs.Age})
	case 2:
		s.broadcaster.BroadcastRevealStage(sessionID, stage, map[string]any{"gender": string(obs.Gender)})
	case 3:
		s.broadcaster.BroadcastRevealStage(sessionID, stage, map[string]any{"emotion": string(dominant)})
	case 4:
		s.broadcaster.BroadcastRevealStage(sessionID, stage, recommendations)

		demo := session.Demographics{
			Age:     obs.Age,
			Gender:  string(obs.Gender),
			Emotion: string(dominant),
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.funnel.LogStep(ctx, funnel.StepScanned, sessionID, map[string]any{
			"age":     demo.Age,
			"gender":  demo.Gender,
			"emotion": demo.Emotion,
		})
		s.demographics.RecordScan(sessionID, demo)

		s.logger.LogScanTransition(sessionID, string(ScanRevealing), string(ScanComplete), nil)
	}
}

// schedule registers a generation-guarded timer for a session.
func (s *ScanService) schedule(sessionID string, gen uint64, delay time.Duration, f func()) {
	s.mu.Lock()
	sess := s.sessionLocked(sessionID)
	if sess.generation != gen {
		s.mu.Unlock()
		return
	}
	timer := s.clock.AfterFunc(delay, f)
	sess.timers = append(sess.timers, timer)
	s.mu.Unlock()
}

func (s *ScanService) cancelTimersLocked(sess *scanSession) {
	for _, t := range sess.timers {
		t.Stop()
	}
	sess.timers = nil
}

// sessionLocked returns the state for a session, creating it on first use.
// Callers must hold the mutex.
func (s *ScanService) sessionLocked(sessionID string) *scanSession {
	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = &scanSession{state: ScanIdle}
		s.sessions[sessionID] = sess
	}
	return sess
}

// Drop forgets a session's scan state. The session registry calls it when a
// kiosk session expires.
func (s *ScanService) Drop(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[sessionID]; ok {
		s.cancelTimersLocked(sess)
		delete(s.sessions, sessionID)
	}
}
