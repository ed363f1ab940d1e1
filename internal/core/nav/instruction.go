package nav

import (
	"html"
	"regexp"
	"strings"

	"github.com/k-amith1610/geocity-sub000/internal/core/domain"
	"github.com/k-amith1610/geocity-sub000/internal/pkg/geospatial"
)

// Selection is the instruction-selector output for one fix. UpcomingIndex is
// the index of the step whose instruction is surfaced ahead of time, or -1
// when the traveler is simply continuing along the current step.
type Selection struct {
	Instruction    *domain.Instruction
	StepIndex      int
	UpcomingIndex  int
	DistanceMeters float64
}

// SelectInstruction picks the currently relevant maneuver. When the start of
// the following step is within the surfacing radius its instruction is
// emitted with the live countdown distance; otherwise the current step is
// rephrased as a "Continue" instruction.
func SelectInstruction(leg domain.Leg, fix domain.PositionFix, match StepMatch, pol Policy) Selection {
	sel := Selection{StepIndex: match.Index, UpcomingIndex: -1}
	if match.Index < 0 {
		return sel
	}

	steps := leg.Steps

	if match.Index < len(steps)-1 {
		next := steps[match.Index+1]
		dNext := geospatial.Haversine(fix.Location.Lat, fix.Location.Lon,
			next.StartLocation.Lat, next.StartLocation.Lon)
		if dNext <= pol.UpcomingStepMeters {
			sel.UpcomingIndex = match.Index + 1
			sel.DistanceMeters = dNext
			sel.Instruction = &domain.Instruction{
				Text:           CleanInstruction(next.Instruction),
				DistanceMeters: dNext,
				Maneuver:       next.Maneuver,
			}
			return sel
		}
	}

	cur := steps[match.Index]
	sel.Instruction = &domain.Instruction{
		Text:           "Continue " + CleanInstruction(cur.Instruction),
		DistanceMeters: 0,
		Maneuver:       domain.ManeuverStraight,
	}
	return sel
}

var (
	markupRe     = regexp.MustCompile(`<[^>]*>`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// CleanInstruction normalizes provider instruction text for display and
// speech: markup is stripped, entities decoded, whitespace collapsed, and a
// redundant leading "Turn" dropped ("Turn left onto Elm St" → "left onto
// Elm St", which composes with both countdown and "Continue" phrasing).
func CleanInstruction(s string) string {
	s = markupRe.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	s = whitespaceRe.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)

	for _, prefix := range []string{"Turn ", "turn "} {
		if rest, ok := strings.CutPrefix(s, prefix); ok {
			s = rest
			break
		}
	}
	return s
}
