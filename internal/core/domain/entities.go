package domain

import (
	"time"
)

// TravelMode selects the policy speed used for time estimates.
type TravelMode string

const (
	ModeDriving   TravelMode = "driving"
	ModeWalking   TravelMode = "walking"
	ModeBicycling TravelMode = "bicycling"
)

// IsValid checks if the travel mode is one of the supported modes.
func (m TravelMode) IsValid() bool {
	switch m {
	case ModeDriving, ModeWalking, ModeBicycling:
		return true
	default:
		return false
	}
}

// ManeuverKind classifies a navigation step's maneuver.
type ManeuverKind string

const (
	ManeuverStraight    ManeuverKind = "straight"
	ManeuverTurnLeft    ManeuverKind = "turn-left"
	ManeuverTurnRight   ManeuverKind = "turn-right"
	ManeuverSlightLeft  ManeuverKind = "slight-left"
	ManeuverSlightRight ManeuverKind = "slight-right"
	ManeuverUTurn       ManeuverKind = "uturn"
	ManeuverMerge       ManeuverKind = "merge"
	ManeuverRoundabout  ManeuverKind = "roundabout"
	ManeuverDepart      ManeuverKind = "depart"
	ManeuverArrive      ManeuverKind = "arrive"
)

// Phase is the tracker lifecycle state. Transitions are one-directional:
// Idle → Active → {Arrived | Stopped}, Arrived → Stopped.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseActive  Phase = "active"
	PhaseArrived Phase = "arrived"
	PhaseStopped Phase = "stopped"
)

// Terminal reports whether no further fixes can change the session.
func (p Phase) Terminal() bool {
	return p == PhaseArrived || p == PhaseStopped
}

// Step is a single maneuver-bounded sub-segment of a leg.
type Step struct {
	StartLocation  GeoPoint     `json:"start_location"`
	EndLocation    GeoPoint     `json:"end_location"`
	Instruction    string       `json:"instruction"`
	Maneuver       ManeuverKind `json:"maneuver"`
	DistanceMeters float64      `json:"distance_meters"`
}

// Leg is one origin-to-destination segment of a route. Steps are contiguous:
// steps[i].EndLocation coincides with steps[i+1].StartLocation within GPS
// tolerance, and the leg boundaries coincide with the first/last step.
type Leg struct {
	StartLocation   GeoPoint `json:"start_location"`
	EndLocation     GeoPoint `json:"end_location"`
	DistanceMeters  float64  `json:"distance_meters"`
	DurationSeconds float64  `json:"duration_seconds"`
	Steps           []Step   `json:"steps"`
}

// Route is a precomputed route from an external directions provider.
// It is read-only for the tracker's lifetime.
type Route struct {
	ID              string     `json:"id"`
	TravelMode      TravelMode `json:"travel_mode"`
	DistanceMeters  float64    `json:"distance_meters"`
	DurationSeconds float64    `json:"duration_seconds"`
	Legs            []Leg      `json:"legs"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Origin returns the start of the first leg.
func (r *Route) Origin() GeoPoint {
	if len(r.Legs) == 0 {
		return GeoPoint{}
	}
	return r.Legs[0].StartLocation
}

// Destination returns the end of the last leg.
func (r *Route) Destination() GeoPoint {
	if len(r.Legs) == 0 {
		return GeoPoint{}
	}
	return r.Legs[len(r.Legs)-1].EndLocation
}

// PositionFix is a single reading from the position source. Heading is nil
// when the device did not report one.
type PositionFix struct {
	Location       GeoPoint  `json:"location"`
	Heading        *float64  `json:"heading,omitempty"`
	AccuracyMeters float64   `json:"accuracy_meters,omitempty"`
	Time           time.Time `json:"time"`
}

// Instruction is the maneuver currently surfaced to the traveler.
type Instruction struct {
	Text           string       `json:"text"`
	DistanceMeters float64      `json:"distance_meters"`
	Maneuver       ManeuverKind `json:"maneuver"`
}

// NavigationState is the consolidated tracker output, recomputed on every
// fix. Emitted snapshots are immutable; the tracker replaces rather than
// patches its current state.
type NavigationState struct {
	SessionID               string       `json:"session_id,omitempty"`
	Position                GeoPoint     `json:"position"`
	HeadingDegrees          float64      `json:"heading_degrees"`
	RemainingDistanceMeters float64      `json:"remaining_distance_meters"`
	RemainingTimeSeconds    float64      `json:"remaining_time_seconds"`
	ProgressPercent         float64      `json:"progress_percent"`
	Instruction             *Instruction `json:"instruction,omitempty"`
	ETA                     time.Time    `json:"eta"`
	Phase                   Phase        `json:"phase"`
	OffRoute                bool         `json:"off_route,omitempty"`
	Error                   string       `json:"error,omitempty"`
	UpdatedAt               time.Time    `json:"updated_at"`
}

// NavigationSession is the persisted lifecycle record of one tracked trip.
type NavigationSession struct {
	ID                  string     `json:"id"`
	Origin              GeoPoint   `json:"origin"`
	Destination         GeoPoint   `json:"destination"`
	TravelMode          TravelMode `json:"travel_mode"`
	Phase               Phase      `json:"phase"`
	RouteDistanceMeters float64    `json:"route_distance_meters"`
	StartedAt           time.Time  `json:"started_at"`
	EndedAt             *time.Time `json:"ended_at,omitempty"`
}

// TracePoint is one persisted breadcrumb of a session's position history.
type TracePoint struct {
	SessionID       string    `json:"session_id"`
	Time            time.Time `json:"time"`
	Location        GeoPoint  `json:"location"`
	HeadingDegrees  float64   `json:"heading_degrees"`
	ProgressPercent float64   `json:"progress_percent"`
}
