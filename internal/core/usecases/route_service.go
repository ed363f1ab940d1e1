package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/k-amith1610/geocity-sub000/internal/core/domain"
	"github.com/k-amith1610/geocity-sub000/internal/core/nav"
	"github.com/k-amith1610/geocity-sub000/internal/core/ports"
	"github.com/k-amith1610/geocity-sub000/internal/pkg/metrics"
)

// routeCacheTTLSeconds bounds how long a computed route is reused. Road
// closures and traffic make stale routes worse than a refetch.
const routeCacheTTLSeconds = 300

// RouteService computes routes through the directions provider with a
// read-through cache in front.
type RouteService struct {
	provider ports.RouteProvider
	cache    ports.CacheService
}

// NewRouteService creates a new RouteService. The cache may be nil, in
// which case every request hits the provider.
func NewRouteService(provider ports.RouteProvider, cache ports.CacheService) *RouteService {
	return &RouteService{provider: provider, cache: cache}
}

// ComputeRoute returns a validated route between origin and destination.
// Cached routes are keyed by rounded endpoints so nearby requests share an
// entry.
func (s *RouteService) ComputeRoute(ctx context.Context, origin, destination domain.GeoPoint, mode domain.TravelMode) (*domain.Route, error) {
	if !mode.IsValid() {
		return nil, fmt.Errorf("%w: unsupported travel mode %q", domain.ErrRouteInvalid, mode)
	}

	key := routeCacheKey(origin, destination, mode)
	if route := s.cached(ctx, key); route != nil {
		return route, nil
	}

	route, err := s.provider.FetchRoute(ctx, origin, destination, mode)
	if err != nil {
		return nil, fmt.Errorf("fetch route: %w", err)
	}
	if err := nav.ValidateRoute(route); err != nil {
		return nil, err
	}

	s.store(ctx, key, route)
	return route, nil
}

func (s *RouteService) cached(ctx context.Context, key string) *domain.Route {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil || raw == nil {
		metrics.CacheMisses.WithLabelValues("route").Inc()
		return nil
	}
	var route domain.Route
	if err := json.Unmarshal(raw, &route); err != nil {
		slog.Warn("discarding undecodable cached route", "key", key, "error", err)
		_ = s.cache.Delete(ctx, key)
		metrics.CacheMisses.WithLabelValues("route").Inc()
		return nil
	}
	metrics.CacheHits.WithLabelValues("route").Inc()
	return &route
}

func (s *RouteService) store(ctx context.Context, key string, route *domain.Route) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(route)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, routeCacheTTLSeconds); err != nil {
		slog.Warn("route cache write failed", "key", key, "error", err)
	}
}

// routeCacheKey rounds coordinates to ~1 m so GPS jitter between identical
// requests still lands on the same entry.
func routeCacheKey(origin, destination domain.GeoPoint, mode domain.TravelMode) string {
	return fmt.Sprintf("route:%s:%.5f,%.5f:%.5f,%.5f",
		mode, origin.Lat, origin.Lon, destination.Lat, destination.Lon)
}
