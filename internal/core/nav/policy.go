package nav

import (
	"time"

	"github.com/k-amith1610/geocity-sub000/internal/core/domain"
)

// Policy collects the tracking thresholds and mode speeds. The radii are
// tuned constants, not physically derived values; keep them configurable.
type Policy struct {
	// OriginSnapMeters suppresses progress for fixes still within this
	// radius of the route origin (GPS jitter must not register as movement).
	OriginSnapMeters float64

	// TerminalAnchorMeters is the radius around a leg boundary inside which
	// the heading is anchored to the boundary instead of a short step.
	TerminalAnchorMeters float64

	// ArrivalRadiusMeters is the destination geofence.
	ArrivalRadiusMeters float64

	// UpcomingStepMeters is how far ahead of a step start the next
	// instruction is surfaced.
	UpcomingStepMeters float64

	// VoiceTriggerMeters is how far ahead of a step start the instruction
	// is spoken (once per step).
	VoiceTriggerMeters float64

	// OffRouteMeters is the cross-track distance beyond which a fix is
	// flagged as off the route geometry.
	OffRouteMeters float64

	// AutoStopGrace is how long an Arrived session lingers for UI/audio
	// closure before stopping itself.
	AutoStopGrace time.Duration

	// SpeedsKmh are the assumed average speeds per travel mode.
	SpeedsKmh map[domain.TravelMode]float64
}

// DefaultPolicy returns the production defaults.
func DefaultPolicy() Policy {
	return Policy{
		OriginSnapMeters:     50,
		TerminalAnchorMeters: 50,
		ArrivalRadiusMeters:  50,
		UpcomingStepMeters:   300,
		VoiceTriggerMeters:   200,
		OffRouteMeters:       75,
		AutoStopGrace:        3 * time.Second,
		SpeedsKmh: map[domain.TravelMode]float64{
			domain.ModeDriving:   30,
			domain.ModeWalking:   5,
			domain.ModeBicycling: 15,
		},
	}
}

// SpeedKmh returns the policy speed for a mode, falling back to driving.
func (p Policy) SpeedKmh(mode domain.TravelMode) float64 {
	if v, ok := p.SpeedsKmh[mode]; ok && v > 0 {
		return v
	}
	return 30
}
