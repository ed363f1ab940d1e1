package nav_test

import (
	"sync"
	"time"

	"github.com/k-amith1610/geocity-sub000/internal/core/domain"
)

// Test geometry runs due east along the equator, where one meter is
// 1/111194.93 degrees of longitude and every bearing is exactly 90.
const degPerMeter = 1.0 / 111194.92664455873

// lonAt returns the longitude m meters east of the origin.
func lonAt(m float64) float64 { return m * degPerMeter }

// eastPoint returns the point m meters east of (0, 0).
func eastPoint(m float64) domain.GeoPoint { return domain.GeoPoint{Lat: 0, Lon: lonAt(m)} }

// fixAt builds a fix m meters along the equatorial test route.
func fixAt(m float64) domain.PositionFix {
	return domain.PositionFix{Location: eastPoint(m), Time: time.Unix(1700000000, 0)}
}

// eastLeg builds a straight leg of the given length whose steps split at the
// given traveled offsets (in meters from the leg start).
func eastLeg(lengthMeters float64, splits []float64, instructions []string) domain.Leg {
	bounds := append([]float64{0}, splits...)
	bounds = append(bounds, lengthMeters)

	steps := make([]domain.Step, 0, len(bounds)-1)
	for i := 0; i < len(bounds)-1; i++ {
		instr := "Head east"
		if i < len(instructions) {
			instr = instructions[i]
		}
		steps = append(steps, domain.Step{
			StartLocation:  eastPoint(bounds[i]),
			EndLocation:    eastPoint(bounds[i+1]),
			Instruction:    instr,
			Maneuver:       domain.ManeuverStraight,
			DistanceMeters: bounds[i+1] - bounds[i],
		})
	}

	return domain.Leg{
		StartLocation:  eastPoint(0),
		EndLocation:    eastPoint(lengthMeters),
		DistanceMeters: lengthMeters,
		Steps:          steps,
	}
}

// eastRoute wraps a single east leg into a route.
func eastRoute(lengthMeters float64, splits []float64, instructions []string) *domain.Route {
	leg := eastLeg(lengthMeters, splits, instructions)
	return &domain.Route{
		ID:             "r-test",
		TravelMode:     domain.ModeDriving,
		DistanceMeters: lengthMeters,
		Legs:           []domain.Leg{leg},
	}
}

// recordingAnnouncer counts announcements for voice-gating assertions.
type recordingAnnouncer struct {
	mu      sync.Mutex
	spoken  []string
	cancels int
}

func (a *recordingAnnouncer) Speak(text string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.spoken = append(a.spoken, text)
}

func (a *recordingAnnouncer) Cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cancels++
}

func (a *recordingAnnouncer) spokenCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.spoken)
}

// stateRecorder collects every emitted NavigationState.
type stateRecorder struct {
	mu     sync.Mutex
	states []domain.NavigationState
}

func (r *stateRecorder) record(s domain.NavigationState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *stateRecorder) all() []domain.NavigationState {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.NavigationState, len(r.states))
	copy(out, r.states)
	return out
}
