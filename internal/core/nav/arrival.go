package nav

import (
	"github.com/k-amith1610/geocity-sub000/internal/core/domain"
	"github.com/k-amith1610/geocity-sub000/internal/pkg/geospatial"
)

// ArrivalDetector is a circular geofence around the destination.
type ArrivalDetector struct {
	Destination  domain.GeoPoint
	RadiusMeters float64
}

// Arrived reports whether p is inside the geofence. The boundary counts as
// arrived.
func (d ArrivalDetector) Arrived(p domain.GeoPoint) bool {
	return geospatial.Haversine(p.Lat, p.Lon, d.Destination.Lat, d.Destination.Lon) <= d.RadiusMeters
}
