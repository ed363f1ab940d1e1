package nav_test

import (
	"math"
	"testing"
	"time"

	"github.com/k-amith1610/geocity-sub000/internal/core/domain"
	"github.com/k-amith1610/geocity-sub000/internal/core/nav"
)

var progressNow = time.Unix(1700000000, 0)

func progressAt(t *testing.T, route *domain.Route, traveledMeters float64) nav.Progress {
	t.Helper()
	return nav.ComputeProgress(route, 0, eastPoint(traveledMeters), domain.ModeDriving,
		nav.DefaultPolicy(), progressNow)
}

// A fix still within 50 m of the origin must not register forward progress,
// even though the raw traveled-distance computation says otherwise.
func TestComputeProgress_OriginNoiseSuppression(t *testing.T) {
	route := eastRoute(1000, nil, nil)

	p := progressAt(t, route, 30)
	if p.ProgressPercent != 0 {
		t.Errorf("expected 0%% within origin snap radius, got %.2f", p.ProgressPercent)
	}
	if math.Abs(p.DistanceFromStartMeters-30) > 1 {
		t.Errorf("expected ~30 m from start, got %.2f", p.DistanceFromStartMeters)
	}

	// One meter past the radius, progress registers.
	p = progressAt(t, route, 51)
	if p.ProgressPercent <= 0 {
		t.Errorf("expected progress past snap radius, got %.2f", p.ProgressPercent)
	}
}

func TestComputeProgress_MonotonicAlongLeg(t *testing.T) {
	route := eastRoute(1000, nil, nil)

	var prev float64
	for _, traveled := range []float64{100, 300, 600, 900} {
		p := progressAt(t, route, traveled)
		if p.ProgressPercent < prev {
			t.Fatalf("progress regressed: %.2f after %.2f at %v m", p.ProgressPercent, prev, traveled)
		}
		prev = p.ProgressPercent
	}
	if math.Abs(prev-90) > 0.5 {
		t.Errorf("expected ~90%% at 900 m of 1000 m, got %.2f", prev)
	}
}

// 15 km remaining at the 30 km/h driving policy speed rounds to 30 minutes.
func TestComputeProgress_RemainingTimeDriving(t *testing.T) {
	route := eastRoute(20000, nil, nil)

	p := progressAt(t, route, 5000)
	if math.Abs(p.RemainingDistanceMeters-15000) > 5 {
		t.Fatalf("expected ~15000 m remaining, got %.1f", p.RemainingDistanceMeters)
	}
	if p.RemainingTimeSeconds != 1800 {
		t.Errorf("expected 1800 s remaining, got %.0f", p.RemainingTimeSeconds)
	}
	if got := p.ETA; !got.Equal(progressNow.Add(30 * time.Minute)) {
		t.Errorf("expected ETA %v, got %v", progressNow.Add(30*time.Minute), got)
	}
}

func TestComputeProgress_ModeSpeeds(t *testing.T) {
	route := eastRoute(20000, nil, nil)
	pol := nav.DefaultPolicy()

	cases := []struct {
		mode domain.TravelMode
		want float64 // seconds for 15 km
	}{
		{domain.ModeDriving, 1800},
		{domain.ModeBicycling, 3600},
		{domain.ModeWalking, 10800},
	}
	for _, tc := range cases {
		p := nav.ComputeProgress(route, 0, eastPoint(5000), tc.mode, pol, progressNow)
		if p.RemainingTimeSeconds != tc.want {
			t.Errorf("%s: expected %.0f s, got %.0f", tc.mode, tc.want, p.RemainingTimeSeconds)
		}
	}
}

func TestComputeProgress_RemainingTimeRoundsToMinutes(t *testing.T) {
	route := eastRoute(20000, nil, nil)

	// 15.2 km at 30 km/h is 1824 s, displayed as 30 min.
	p := progressAt(t, route, 4800)
	if p.RemainingTimeSeconds != 1800 {
		t.Errorf("expected rounding to 1800 s, got %.0f", p.RemainingTimeSeconds)
	}
}

func TestComputeProgress_DegenerateLeg(t *testing.T) {
	route := &domain.Route{
		ID: "r-degenerate",
		Legs: []domain.Leg{{
			StartLocation:  eastPoint(0),
			EndLocation:    eastPoint(0),
			DistanceMeters: 0,
		}},
	}

	p := nav.ComputeProgress(route, 0, eastPoint(0), domain.ModeDriving, nav.DefaultPolicy(), progressNow)
	if p.ProgressPercent != 100 {
		t.Errorf("expected 100%%, got %.2f", p.ProgressPercent)
	}
	if p.RemainingDistanceMeters != 0 {
		t.Errorf("expected 0 m remaining, got %.2f", p.RemainingDistanceMeters)
	}
}

func TestComputeProgress_PercentClamped(t *testing.T) {
	route := eastRoute(1000, nil, nil)

	// A fix past the destination must not exceed 100%.
	p := progressAt(t, route, 1200)
	if p.ProgressPercent > 100 {
		t.Errorf("progress above 100: %.2f", p.ProgressPercent)
	}

	// A fix behind the origin (beyond leg distance from the end) must not
	// go negative.
	back := nav.ComputeProgress(route, 0, domain.GeoPoint{Lat: 0, Lon: lonAt(-200)},
		domain.ModeDriving, nav.DefaultPolicy(), progressNow)
	if back.ProgressPercent < 0 {
		t.Errorf("progress below 0: %.2f", back.ProgressPercent)
	}
}
