package nav

import (
	"math"
	"time"

	"github.com/k-amith1610/geocity-sub000/internal/core/domain"
	"github.com/k-amith1610/geocity-sub000/internal/pkg/geospatial"
)

// Progress is the distance/time bundle computed for one fix.
type Progress struct {
	RemainingDistanceMeters float64
	RemainingTimeSeconds    float64
	ProgressPercent         float64
	DistanceFromStartMeters float64
	ETA                     time.Time
}

// ComputeProgress derives remaining distance/time, ETA and percent complete
// for a fix against the active leg. Percent is computed over the whole
// route so multi-leg progress stays monotonic; for a single-leg route this
// reduces to distance traveled over leg distance.
//
// A fix still within the origin snap radius reports zero percent regardless
// of the raw traveled distance: a traveler who has not actually departed
// must not show forward progress from GPS jitter.
func ComputeProgress(route *domain.Route, legIndex int, p domain.GeoPoint, mode domain.TravelMode, pol Policy, now time.Time) Progress {
	leg := route.Legs[legIndex]

	distToLegEnd := geospatial.Haversine(p.Lat, p.Lon, leg.EndLocation.Lat, leg.EndLocation.Lon)

	origin := route.Origin()
	distFromStart := geospatial.Haversine(p.Lat, p.Lon, origin.Lat, origin.Lon)

	var traveledBefore, remainingAfter, total float64
	for i, l := range route.Legs {
		total += l.DistanceMeters
		if i < legIndex {
			traveledBefore += l.DistanceMeters
		}
		if i > legIndex {
			remainingAfter += l.DistanceMeters
		}
	}

	remaining := distToLegEnd + remainingAfter

	// Degenerate route: nothing to travel, already there.
	if total <= 0 {
		return Progress{
			RemainingDistanceMeters: 0,
			RemainingTimeSeconds:    0,
			ProgressPercent:         100,
			DistanceFromStartMeters: distFromStart,
			ETA:                     now,
		}
	}

	traveled := traveledBefore + (leg.DistanceMeters - distToLegEnd)
	percent := clamp(traveled/total*100, 0, 100)

	if distFromStart < pol.OriginSnapMeters {
		percent = 0
	}

	remainingTime := roundToMinutes(remaining / 1000 / pol.SpeedKmh(mode) * 3600)

	return Progress{
		RemainingDistanceMeters: remaining,
		RemainingTimeSeconds:    remainingTime,
		ProgressPercent:         percent,
		DistanceFromStartMeters: distFromStart,
		ETA:                     now.Add(time.Duration(remainingTime) * time.Second),
	}
}

// roundToMinutes rounds a duration in seconds to whole minutes for display.
func roundToMinutes(seconds float64) float64 {
	return math.Round(seconds/60) * 60
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
