package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/k-amith1610/geocity-sub000/internal/core/domain"
	"github.com/k-amith1610/geocity-sub000/internal/core/nav"
	"github.com/k-amith1610/geocity-sub000/internal/core/ports"
	"github.com/k-amith1610/geocity-sub000/internal/pkg/metrics"
)

// stateCacheTTLSeconds keeps the latest snapshot readable for a while after
// the session ends.
const stateCacheTTLSeconds = 3600

type activeSession struct {
	tracker *nav.Tracker
	unsub   ports.UnsubscribeFunc
	arrived bool
}

// SessionService owns the live navigation sessions. Each session gets its
// own tracker; the service wires the tracker's state stream to the
// publisher, the cache and the persistence layer, and tears everything down
// when the session reaches a terminal phase.
type SessionService struct {
	sessions  ports.SessionRepository
	traces    ports.TraceRepository
	routes    *RouteService
	publisher ports.StatePublisher
	voice     ports.VoiceAnnouncer
	source    ports.PositionSource
	policy    nav.Policy

	mu     sync.Mutex
	active map[string]*activeSession
}

// NewSessionService creates a new SessionService. Publisher, voice and
// source are optional; a nil source means fixes arrive only through
// PushFix.
func NewSessionService(
	sessions ports.SessionRepository,
	traces ports.TraceRepository,
	routes *RouteService,
	publisher ports.StatePublisher,
	voice ports.VoiceAnnouncer,
	source ports.PositionSource,
	policy nav.Policy,
) *SessionService {
	return &SessionService{
		sessions:  sessions,
		traces:    traces,
		routes:    routes,
		publisher: publisher,
		voice:     voice,
		source:    source,
		policy:    policy,
		active:    make(map[string]*activeSession),
	}
}

// StartSession computes a route, persists the session record and starts a
// tracker for it. The returned state is the pre-departure baseline.
func (s *SessionService) StartSession(ctx context.Context, origin, destination domain.GeoPoint, mode domain.TravelMode) (*domain.NavigationSession, domain.NavigationState, error) {
	route, err := s.routes.ComputeRoute(ctx, origin, destination, mode)
	if err != nil {
		return nil, domain.NavigationState{}, err
	}

	id := uuid.NewString()
	session := &domain.NavigationSession{
		ID:                  id,
		Origin:              route.Origin(),
		Destination:         route.Destination(),
		TravelMode:          mode,
		Phase:               domain.PhaseActive,
		RouteDistanceMeters: route.DistanceMeters,
		StartedAt:           time.Now().UTC(),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, domain.NavigationState{}, fmt.Errorf("create session: %w", err)
	}

	opts := []nav.Option{
		nav.WithSessionID(id),
		nav.WithStateFunc(s.onState(id)),
	}
	if s.voice != nil {
		opts = append(opts, nav.WithAnnouncer(&sessionAnnouncer{sessionID: id, voice: s.voice}))
	}
	as := &activeSession{tracker: nav.NewTracker(s.policy, opts...)}

	s.mu.Lock()
	s.active[id] = as
	s.mu.Unlock()

	state, err := as.tracker.Start(route, mode)
	if err != nil {
		s.mu.Lock()
		delete(s.active, id)
		s.mu.Unlock()
		_ = s.sessions.Finish(ctx, id, domain.PhaseStopped)
		return nil, domain.NavigationState{}, err
	}

	if s.source != nil {
		unsub, err := s.source.Subscribe(ctx, id,
			func(fix domain.PositionFix) { s.applyFix(as.tracker, fix) },
			func(perr domain.PositionError) { s.applyError(as.tracker, perr) },
		)
		if err != nil {
			as.tracker.Stop()
			return nil, domain.NavigationState{}, fmt.Errorf("subscribe position source: %w", err)
		}
		s.mu.Lock()
		as.unsub = unsub
		s.mu.Unlock()
	}

	metrics.SessionsStarted.WithLabelValues(string(mode)).Inc()
	metrics.ActiveSessions.Inc()
	return session, state, nil
}

// PushFix feeds one position fix into a live session.
func (s *SessionService) PushFix(ctx context.Context, sessionID string, fix domain.PositionFix) (domain.NavigationState, error) {
	as := s.lookup(sessionID)
	if as == nil {
		return domain.NavigationState{}, s.inactiveErr(ctx, sessionID)
	}
	return s.applyFix(as.tracker, fix), nil
}

// ReportPositionError feeds a position-source failure into a live session.
func (s *SessionService) ReportPositionError(ctx context.Context, sessionID string, perr domain.PositionError) (domain.NavigationState, error) {
	as := s.lookup(sessionID)
	if as == nil {
		return domain.NavigationState{}, s.inactiveErr(ctx, sessionID)
	}
	return s.applyError(as.tracker, perr), nil
}

// StopSession ends a session. Stopping an already finished session is not
// an error and reports the final state again.
func (s *SessionService) StopSession(ctx context.Context, sessionID string) (domain.NavigationState, error) {
	if as := s.lookup(sessionID); as != nil {
		return as.tracker.Stop(), nil
	}

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return domain.NavigationState{}, err
	}
	return s.snapshotOrSkeleton(ctx, session), nil
}

// GetState returns the freshest state available for a session: the live
// tracker when active, the cached snapshot otherwise.
func (s *SessionService) GetState(ctx context.Context, sessionID string) (domain.NavigationState, error) {
	if as := s.lookup(sessionID); as != nil {
		return as.tracker.State(), nil
	}

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return domain.NavigationState{}, err
	}
	return s.snapshotOrSkeleton(ctx, session), nil
}

// GetSession returns the persisted session record.
func (s *SessionService) GetSession(ctx context.Context, sessionID string) (*domain.NavigationSession, error) {
	return s.sessions.GetByID(ctx, sessionID)
}

// ListSessions returns a page of session records plus the total count.
func (s *SessionService) ListSessions(ctx context.Context, limit, offset int) ([]domain.NavigationSession, int, error) {
	return s.sessions.List(ctx, limit, offset)
}

// GetTrace returns the persisted breadcrumb trail of a session.
func (s *SessionService) GetTrace(ctx context.Context, sessionID string, limit int) ([]domain.TracePoint, error) {
	if limit <= 0 || limit > 10000 {
		limit = 10000
	}
	return s.traces.ListBySession(ctx, sessionID, limit)
}

// Shutdown stops every live session, used on process exit.
func (s *SessionService) Shutdown(ctx context.Context) {
	s.mu.Lock()
	trackers := make([]*nav.Tracker, 0, len(s.active))
	for _, as := range s.active {
		trackers = append(trackers, as.tracker)
	}
	s.mu.Unlock()

	for _, tr := range trackers {
		tr.Stop()
	}
}

func (s *SessionService) applyFix(tr *nav.Tracker, fix domain.PositionFix) domain.NavigationState {
	state := tr.OnPositionUpdate(fix)
	metrics.FixesProcessed.Inc()
	return state
}

func (s *SessionService) applyError(tr *nav.Tracker, perr domain.PositionError) domain.NavigationState {
	metrics.PositionErrors.WithLabelValues(string(perr.Kind)).Inc()
	return tr.OnPositionError(perr)
}

func (s *SessionService) lookup(sessionID string) *activeSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active[sessionID]
}

// inactiveErr distinguishes an unknown session from a finished one.
func (s *SessionService) inactiveErr(ctx context.Context, sessionID string) error {
	if _, err := s.sessions.GetByID(ctx, sessionID); err != nil {
		return err
	}
	return domain.ErrSessionNotActive
}

// onState is the tracker's state callback for one session. It runs on
// whichever goroutine produced the state, including the auto-stop timer.
func (s *SessionService) onState(sessionID string) nav.StateFunc {
	return func(state domain.NavigationState) {
		ctx := context.Background()

		if s.publisher != nil {
			if err := s.publisher.PublishState(ctx, state); err != nil {
				slog.Warn("state publish failed", "session_id", sessionID, "error", err)
			}
		}
		s.cacheState(ctx, state)

		switch state.Phase {
		case domain.PhaseActive:
			s.recordTrace(ctx, state)

		case domain.PhaseArrived:
			s.recordTrace(ctx, state)
			if as := s.lookup(sessionID); as != nil {
				as.arrived = true
			}
			metrics.SessionsArrived.Inc()
			if err := s.sessions.UpdatePhase(ctx, sessionID, domain.PhaseArrived); err != nil {
				slog.Error("session phase update failed", "session_id", sessionID, "error", err)
			}

		case domain.PhaseStopped:
			s.finalize(ctx, sessionID, state)
		}
	}
}

func (s *SessionService) finalize(ctx context.Context, sessionID string, state domain.NavigationState) {
	s.mu.Lock()
	as := s.active[sessionID]
	delete(s.active, sessionID)
	s.mu.Unlock()

	if as == nil {
		return
	}
	if as.unsub != nil {
		if err := as.unsub(); err != nil {
			slog.Warn("position source unsubscribe failed", "session_id", sessionID, "error", err)
		}
	}

	// A session that arrived keeps "arrived" as its final recorded phase
	// even though the tracker passes through Stopped on teardown.
	final := domain.PhaseStopped
	if as.arrived {
		final = domain.PhaseArrived
	}
	if err := s.sessions.Finish(ctx, sessionID, final); err != nil {
		slog.Error("session finish failed", "session_id", sessionID, "error", err)
	}

	metrics.ActiveSessions.Dec()
	metrics.SessionsStopped.Inc()
	slog.Info("session finished",
		"session_id", sessionID, "phase", string(final), "progress", state.ProgressPercent)
}

func (s *SessionService) recordTrace(ctx context.Context, state domain.NavigationState) {
	if s.traces == nil || state.Position.IsZero() {
		return
	}
	point := &domain.TracePoint{
		SessionID:       state.SessionID,
		Time:            state.UpdatedAt,
		Location:        state.Position,
		HeadingDegrees:  state.HeadingDegrees,
		ProgressPercent: state.ProgressPercent,
	}
	if err := s.traces.Insert(ctx, point); err != nil {
		slog.Warn("trace insert failed", "session_id", state.SessionID, "error", err)
	}
}

func (s *SessionService) cacheState(ctx context.Context, state domain.NavigationState) {
	cache := s.routes.cache
	if cache == nil {
		return
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return
	}
	if err := cache.Set(ctx, stateCacheKey(state.SessionID), raw, stateCacheTTLSeconds); err != nil {
		slog.Warn("state cache write failed", "session_id", state.SessionID, "error", err)
	}
}

// snapshotOrSkeleton serves state for a session with no live tracker: the
// cached final snapshot when present, otherwise a skeleton built from the
// persisted record.
func (s *SessionService) snapshotOrSkeleton(ctx context.Context, session *domain.NavigationSession) domain.NavigationState {
	if cache := s.routes.cache; cache != nil {
		if raw, err := cache.Get(ctx, stateCacheKey(session.ID)); err == nil && raw != nil {
			var state domain.NavigationState
			if json.Unmarshal(raw, &state) == nil {
				return state
			}
		}
	}
	state := domain.NavigationState{SessionID: session.ID, Phase: session.Phase}
	if session.EndedAt != nil {
		state.UpdatedAt = *session.EndedAt
	}
	return state
}

func stateCacheKey(sessionID string) string {
	return "navstate:" + sessionID
}
