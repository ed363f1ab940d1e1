package ports

import (
	"context"

	"github.com/k-amith1610/geocity-sub000/internal/core/domain"
)

// UnsubscribeFunc cancels a position subscription. Safe to call more than
// once.
type UnsubscribeFunc func() error

// PositionSource delivers position fixes for a session as a cancellable
// push subscription. Fixes arrive asynchronously at irregular intervals;
// errors are tagged with a PositionErrorKind so the tracker can tell
// transient outages from fatal permission denials.
type PositionSource interface {
	Subscribe(ctx context.Context, sessionID string,
		onFix func(domain.PositionFix),
		onErr func(domain.PositionError)) (UnsubscribeFunc, error)
}

// RouteProvider computes a route via an external directions engine.
type RouteProvider interface {
	FetchRoute(ctx context.Context, origin, destination domain.GeoPoint, mode domain.TravelMode) (*domain.Route, error)
}

// VoiceAnnouncer speaks turn instructions to a session's traveler. Speak
// interrupts any in-flight announcement for the session; Cancel is an
// idempotent no-op when nothing is queued.
type VoiceAnnouncer interface {
	Speak(ctx context.Context, sessionID, text string) error
	Cancel(ctx context.Context, sessionID string) error
}

// StatePublisher fans NavigationState snapshots out to live consumers
// (map renderers, UI panels).
type StatePublisher interface {
	PublishState(ctx context.Context, state domain.NavigationState) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
