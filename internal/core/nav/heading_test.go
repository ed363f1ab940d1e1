package nav_test

import (
	"math"
	"testing"

	"github.com/k-amith1610/geocity-sub000/internal/core/domain"
	"github.com/k-amith1610/geocity-sub000/internal/core/nav"
)

func headingFor(t *testing.T, leg domain.Leg, fix domain.PositionFix) float64 {
	t.Helper()
	match := nav.NearestStep(leg, fix.Location)
	return nav.EstimateHeading(leg, fix, match, nav.DefaultPolicy())
}

// A single-step due-east leg yields bearing 90 for any fix between the
// endpoints, regardless of the device-reported heading.
func TestEstimateHeading_RouteGeometryWins(t *testing.T) {
	leg := domain.Leg{
		StartLocation:  domain.GeoPoint{Lat: 0, Lon: 0},
		EndLocation:    domain.GeoPoint{Lat: 0, Lon: 1},
		DistanceMeters: 111195,
		Steps: []domain.Step{{
			StartLocation: domain.GeoPoint{Lat: 0, Lon: 0},
			EndLocation:   domain.GeoPoint{Lat: 0, Lon: 1},
			Instruction:   "Head east",
			Maneuver:      domain.ManeuverStraight,
		}},
	}

	device := 270.0
	for _, lon := range []float64{0.1, 0.5, 0.9} {
		fix := domain.PositionFix{Location: domain.GeoPoint{Lat: 0, Lon: lon}, Heading: &device}
		got := headingFor(t, leg, fix)
		if math.Abs(got-90) > 0.01 {
			t.Errorf("fix at lon %.1f: expected heading 90, got %.4f", lon, got)
		}
	}
}

// Inside the anchor radius of the leg start, the heading comes from the leg
// start to the first step's end rather than the (possibly tiny) first step.
func TestEstimateHeading_AnchorsNearLegStart(t *testing.T) {
	// First step is a 10 m stub pointing north; the route then runs east.
	leg := domain.Leg{
		StartLocation:  eastPoint(0),
		EndLocation:    eastPoint(1000),
		DistanceMeters: 1000,
		Steps: []domain.Step{
			{
				StartLocation: eastPoint(0),
				EndLocation:   domain.GeoPoint{Lat: 10 * degPerMeter, Lon: lonAt(5)},
			},
			{
				StartLocation: domain.GeoPoint{Lat: 10 * degPerMeter, Lon: lonAt(5)},
				EndLocation:   eastPoint(1000),
			},
		},
	}

	fix := fixAt(10)
	got := headingFor(t, leg, fix)

	// Anchored bearing: leg start → first step end, mostly north with a
	// slight eastward component.
	want := 26.57 // atan2(5, 10)
	if math.Abs(got-want) > 1 {
		t.Errorf("expected anchored heading ~%.1f, got %.2f", want, got)
	}
}

func TestEstimateHeading_AnchorsNearLegEnd(t *testing.T) {
	leg := eastLeg(1000, []float64{700}, nil)
	fix := fixAt(980) // 20 m from the leg end, nearest step is the last

	got := headingFor(t, leg, fix)
	if math.Abs(got-90) > 0.01 {
		t.Errorf("expected 90, got %.4f", got)
	}
}

func TestEstimateHeading_FallsBackToDeviceHeading(t *testing.T) {
	leg := domain.Leg{
		StartLocation: eastPoint(0),
		EndLocation:   eastPoint(1000),
	}

	device := 123.4
	fix := domain.PositionFix{Location: eastPoint(500), Heading: &device}
	if got := headingFor(t, leg, fix); got != 123.4 {
		t.Errorf("expected device heading 123.4, got %f", got)
	}

	noHeading := domain.PositionFix{Location: eastPoint(500)}
	if got := headingFor(t, leg, noHeading); got != 0 {
		t.Errorf("expected 0 without steps or device heading, got %f", got)
	}
}
