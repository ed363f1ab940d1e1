package nav

import (
	"github.com/k-amith1610/geocity-sub000/internal/core/domain"
	"github.com/k-amith1610/geocity-sub000/internal/pkg/geospatial"
)

// StepMatch is the result of the shared nearest-step search. Heading
// estimation and instruction selection both consume the same match for a
// given fix so they can never disagree about where the traveler is.
type StepMatch struct {
	Index          int
	DistanceMeters float64
}

// NearestStep finds the step whose start location is closest to p.
// Index is -1 when the leg has no steps.
func NearestStep(leg domain.Leg, p domain.GeoPoint) StepMatch {
	match := StepMatch{Index: -1}
	for i, step := range leg.Steps {
		d := geospatial.Haversine(p.Lat, p.Lon, step.StartLocation.Lat, step.StartLocation.Lon)
		if match.Index < 0 || d < match.DistanceMeters {
			match.Index = i
			match.DistanceMeters = d
		}
	}
	return match
}
