package nav

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/k-amith1610/geocity-sub000/internal/core/domain"
	"github.com/k-amith1610/geocity-sub000/internal/pkg/geospatial"
)

// Announcer voices instructions to the traveler. Implementations must make
// Speak interrupt any in-flight announcement; Cancel is an idempotent no-op
// when nothing is being spoken.
type Announcer interface {
	Speak(text string)
	Cancel()
}

// StateFunc receives every emitted NavigationState snapshot.
type StateFunc func(domain.NavigationState)

// Tracker is the turn-by-turn navigation state machine. It owns all mutable
// tracking state; the route it navigates is never mutated. Every processed
// fix produces a fresh NavigationState, so snapshots handed to consumers
// can never be invalidated underneath them.
//
// Updates are processed synchronously to completion in arrival order. The
// mutex only serializes external calls against the auto-stop grace timer.
type Tracker struct {
	mu        sync.Mutex
	policy    Policy
	now       func() time.Time
	announcer Announcer
	onState   StateFunc
	sessionID string

	phase         domain.Phase
	route         *domain.Route
	mode          domain.TravelMode
	legIndex      int
	announcedStep int
	startedAt     time.Time
	graceTimer    *time.Timer
	last          domain.NavigationState
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithAnnouncer injects the voice collaborator.
func WithAnnouncer(a Announcer) Option { return func(t *Tracker) { t.announcer = a } }

// WithStateFunc registers the consumer callback.
func WithStateFunc(fn StateFunc) Option { return func(t *Tracker) { t.onState = fn } }

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option { return func(t *Tracker) { t.now = now } }

// WithSessionID stamps emitted states with a session ID.
func WithSessionID(id string) Option { return func(t *Tracker) { t.sessionID = id } }

// NewTracker creates an Idle tracker.
func NewTracker(policy Policy, opts ...Option) *Tracker {
	t := &Tracker{
		policy:        policy,
		now:           time.Now,
		phase:         domain.PhaseIdle,
		announcedStep: -1,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.last = domain.NavigationState{SessionID: t.sessionID, Phase: domain.PhaseIdle}
	return t
}

// Start validates the route, resets all derived state and transitions
// Idle → Active. The returned state is the pre-departure baseline.
func (t *Tracker) Start(route *domain.Route, mode domain.TravelMode) (domain.NavigationState, error) {
	if err := ValidateRoute(route); err != nil {
		return t.State(), err
	}
	if !mode.IsValid() {
		return t.State(), fmt.Errorf("%w: unsupported travel mode %q", domain.ErrRouteInvalid, mode)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.cancelGraceLocked()
	t.route = route
	t.mode = mode
	t.legIndex = 0
	t.announcedStep = -1
	t.phase = domain.PhaseActive
	t.startedAt = t.now()

	origin := route.Origin()
	leg := route.Legs[0]
	originFix := domain.PositionFix{Location: origin, Time: t.startedAt}
	prog := ComputeProgress(route, 0, origin, mode, t.policy, t.startedAt)

	state := domain.NavigationState{
		SessionID:               t.sessionID,
		Position:                origin,
		HeadingDegrees:          EstimateHeading(leg, originFix, NearestStep(leg, origin), t.policy),
		RemainingDistanceMeters: prog.RemainingDistanceMeters,
		RemainingTimeSeconds:    prog.RemainingTimeSeconds,
		ProgressPercent:         prog.ProgressPercent,
		ETA:                     prog.ETA,
		Phase:                   domain.PhaseActive,
		UpdatedAt:               t.startedAt,
	}
	t.emitLocked(state)
	return state, nil
}

// OnPositionUpdate runs the full pipeline for one fix and emits the merged
// state. It is a no-op returning the last state when the tracker is not
// Active: terminal phases freeze all distance, progress and instruction
// fields.
func (t *Tracker) OnPositionUpdate(fix domain.PositionFix) domain.NavigationState {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.phase != domain.PhaseActive {
		return t.last
	}

	leg := t.route.Legs[t.legIndex]
	match := NearestStep(leg, fix.Location)

	heading := EstimateHeading(leg, fix, match, t.policy)
	prog := ComputeProgress(t.route, t.legIndex, fix.Location, t.mode, t.policy, t.now())
	sel := SelectInstruction(leg, fix, match, t.policy)

	state := domain.NavigationState{
		SessionID:               t.sessionID,
		Position:                fix.Location,
		HeadingDegrees:          heading,
		RemainingDistanceMeters: prog.RemainingDistanceMeters,
		RemainingTimeSeconds:    prog.RemainingTimeSeconds,
		ProgressPercent:         prog.ProgressPercent,
		Instruction:             sel.Instruction,
		ETA:                     prog.ETA,
		Phase:                   domain.PhaseActive,
		OffRoute:                t.offRoute(leg, fix.Location, match),
		UpdatedAt:               t.now(),
	}

	detector := ArrivalDetector{Destination: t.route.Destination(), RadiusMeters: t.policy.ArrivalRadiusMeters}
	lastLeg := t.legIndex == len(t.route.Legs)-1

	switch {
	case lastLeg && detector.Arrived(fix.Location):
		state.Phase = domain.PhaseArrived
		t.phase = domain.PhaseArrived
		t.scheduleGraceLocked()

	case !lastLeg && t.legArrived(leg, fix.Location):
		t.legIndex++
		t.announcedStep = -1

	default:
		t.maybeAnnounceLocked(sel)
	}

	t.emitLocked(state)
	return state
}

// OnPositionError applies the position-source failure policy: transient
// errors are absorbed and tracking continues on the last known state; a
// permission denial terminates the session and is surfaced exactly once
// through the state callback.
func (t *Tracker) OnPositionError(perr domain.PositionError) domain.NavigationState {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !perr.Fatal() {
		slog.Warn("position source degraded, keeping last state",
			"session_id", t.sessionID, "kind", string(perr.Kind), "message", perr.Message)
		return t.last
	}

	if t.phase.Terminal() || t.phase == domain.PhaseIdle {
		return t.last
	}

	t.cancelGraceLocked()
	if t.announcer != nil {
		t.announcer.Cancel()
	}
	t.phase = domain.PhaseStopped

	state := t.last
	state.Phase = domain.PhaseStopped
	state.Error = perr.Error()
	state.UpdatedAt = t.now()
	t.emitLocked(state)
	return state
}

// Stop transitions to Stopped from any non-terminal phase, cancels the
// grace timer and any in-flight announcement, and emits a final state.
// Calling it again (or before Start) still reports Stopped without error.
func (t *Tracker) Stop() domain.NavigationState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopLocked("")
}

// State returns the last emitted snapshot.
func (t *Tracker) State() domain.NavigationState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}

// Phase returns the current lifecycle phase.
func (t *Tracker) Phase() domain.Phase {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.phase
}

func (t *Tracker) stopLocked(reason string) domain.NavigationState {
	t.cancelGraceLocked()
	if t.announcer != nil {
		t.announcer.Cancel()
	}

	if t.phase == domain.PhaseStopped {
		return t.last
	}
	t.phase = domain.PhaseStopped

	state := t.last
	state.Phase = domain.PhaseStopped
	state.Error = reason
	state.UpdatedAt = t.now()
	t.emitLocked(state)
	return state
}

// maybeAnnounceLocked speaks the upcoming instruction once per step when it
// enters the voice trigger radius. A new announcement interrupts any
// in-flight one; straddling the radius with noisy fixes must not re-trigger
// speech for the same step.
func (t *Tracker) maybeAnnounceLocked(sel Selection) {
	if t.announcer == nil || sel.Instruction == nil || sel.UpcomingIndex < 0 {
		return
	}
	d := sel.Instruction.DistanceMeters
	if d <= 0 || d > t.policy.VoiceTriggerMeters {
		return
	}
	if t.announcedStep == sel.UpcomingIndex {
		return
	}
	t.announcer.Cancel()
	t.announcer.Speak(sel.Instruction.Text)
	t.announcedStep = sel.UpcomingIndex
}

func (t *Tracker) legArrived(leg domain.Leg, p domain.GeoPoint) bool {
	d := geospatial.Haversine(p.Lat, p.Lon, leg.EndLocation.Lat, leg.EndLocation.Lon)
	return d <= t.policy.ArrivalRadiusMeters
}

func (t *Tracker) offRoute(leg domain.Leg, p domain.GeoPoint, match StepMatch) bool {
	if match.Index < 0 || t.policy.OffRouteMeters <= 0 {
		return false
	}
	step := leg.Steps[match.Index]
	d := geospatial.CrossTrackMeters(p.Lat, p.Lon,
		step.StartLocation.Lat, step.StartLocation.Lon,
		step.EndLocation.Lat, step.EndLocation.Lon)
	return d > t.policy.OffRouteMeters
}

// scheduleGraceLocked arms the one-shot auto-stop that gives UI and audio a
// moment of closure after arrival. Stop cancels it if called first.
func (t *Tracker) scheduleGraceLocked() {
	t.cancelGraceLocked()
	if t.policy.AutoStopGrace <= 0 {
		return
	}
	t.graceTimer = time.AfterFunc(t.policy.AutoStopGrace, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if t.phase != domain.PhaseArrived {
			return
		}
		t.stopLocked("")
	})
}

func (t *Tracker) cancelGraceLocked() {
	if t.graceTimer != nil {
		t.graceTimer.Stop()
		t.graceTimer = nil
	}
}

func (t *Tracker) emitLocked(state domain.NavigationState) {
	t.last = state
	if t.onState != nil {
		t.onState(state)
	}
}
