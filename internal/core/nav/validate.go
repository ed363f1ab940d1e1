package nav

import (
	"fmt"

	"github.com/k-amith1610/geocity-sub000/internal/core/domain"
	"github.com/k-amith1610/geocity-sub000/internal/pkg/geospatial"
)

// gpsToleranceMeters is how far apart two coordinates may be while still
// counting as the same point in provider geometry.
const gpsToleranceMeters = 100

// ValidateRoute rejects empty or malformed routes before tracking starts.
// Legs without steps are allowed (heading falls back to the device); legs
// with steps must have contiguous geometry whose boundaries coincide with
// the leg boundaries.
func ValidateRoute(route *domain.Route) error {
	if route == nil || len(route.Legs) == 0 {
		return fmt.Errorf("%w: route has no legs", domain.ErrRouteInvalid)
	}

	for li, leg := range route.Legs {
		if leg.DistanceMeters < 0 {
			return fmt.Errorf("%w: leg %d has negative distance", domain.ErrRouteInvalid, li)
		}
		if len(leg.Steps) == 0 {
			continue
		}

		if !coincide(leg.StartLocation, leg.Steps[0].StartLocation) {
			return fmt.Errorf("%w: leg %d start does not meet first step", domain.ErrRouteInvalid, li)
		}
		if !coincide(leg.EndLocation, leg.Steps[len(leg.Steps)-1].EndLocation) {
			return fmt.Errorf("%w: leg %d end does not meet last step", domain.ErrRouteInvalid, li)
		}
		for si := 0; si < len(leg.Steps)-1; si++ {
			if !coincide(leg.Steps[si].EndLocation, leg.Steps[si+1].StartLocation) {
				return fmt.Errorf("%w: leg %d steps %d and %d are not contiguous",
					domain.ErrRouteInvalid, li, si, si+1)
			}
		}
	}
	return nil
}

func coincide(a, b domain.GeoPoint) bool {
	return geospatial.Haversine(a.Lat, a.Lon, b.Lat, b.Lon) <= gpsToleranceMeters
}
