package nav

import (
	"github.com/k-amith1610/geocity-sub000/internal/core/domain"
	"github.com/k-amith1610/geocity-sub000/internal/pkg/geospatial"
)

// EstimateHeading infers the direction of travel from the route geometry
// around the fix. Position-derived headings are unreliable at low speed, so
// the bearing of the nearest step is preferred over the device heading.
//
// Near the leg boundaries the bearing of a single short terminal step is
// noise-sensitive; inside the anchor radius the heading is taken from the
// boundary to the far end of the terminal step instead.
func EstimateHeading(leg domain.Leg, fix domain.PositionFix, match StepMatch, pol Policy) float64 {
	if match.Index < 0 {
		if fix.Heading != nil {
			return *fix.Heading
		}
		return 0
	}

	steps := leg.Steps
	last := len(steps) - 1

	if match.Index == 0 {
		dStart := geospatial.Haversine(fix.Location.Lat, fix.Location.Lon,
			leg.StartLocation.Lat, leg.StartLocation.Lon)
		if dStart < pol.TerminalAnchorMeters {
			return geospatial.Bearing(leg.StartLocation.Lat, leg.StartLocation.Lon,
				steps[0].EndLocation.Lat, steps[0].EndLocation.Lon)
		}
	}

	if match.Index == last {
		dEnd := geospatial.Haversine(fix.Location.Lat, fix.Location.Lon,
			leg.EndLocation.Lat, leg.EndLocation.Lon)
		if dEnd < pol.TerminalAnchorMeters {
			return geospatial.Bearing(steps[last].StartLocation.Lat, steps[last].StartLocation.Lon,
				leg.EndLocation.Lat, leg.EndLocation.Lon)
		}
	}

	step := steps[match.Index]
	return geospatial.Bearing(step.StartLocation.Lat, step.StartLocation.Lon,
		step.EndLocation.Lat, step.EndLocation.Lon)
}
