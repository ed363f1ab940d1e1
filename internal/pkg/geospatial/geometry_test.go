package geospatial_test

import (
	"math"
	"testing"

	"github.com/k-amith1610/geocity-sub000/internal/pkg/geospatial"
)

// One degree of latitude spans roughly 111.2 km everywhere on the sphere.
func TestHaversine_OneDegreeLatitude(t *testing.T) {
	d := geospatial.Haversine(0, 0, 1, 0)
	if math.Abs(d-111195) > 100 {
		t.Errorf("expected ~111195 m, got %.0f", d)
	}
}

func TestHaversine_ZeroDistance(t *testing.T) {
	if d := geospatial.Haversine(43.263, -2.935, 43.263, -2.935); d != 0 {
		t.Errorf("expected 0, got %f", d)
	}
}

func TestBearing_CardinalDirections(t *testing.T) {
	cases := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
	}{
		{"due north", 0, 0, 1, 0, 0},
		{"due east", 0, 0, 0, 1, 90},
		{"due south", 1, 0, 0, 0, 180},
		{"due west", 0, 1, 0, 0, 270},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := geospatial.Bearing(tc.lat1, tc.lon1, tc.lat2, tc.lon2)
			if math.Abs(got-tc.want) > 0.01 {
				t.Errorf("expected %.1f, got %.4f", tc.want, got)
			}
		})
	}
}

func TestBearing_Range(t *testing.T) {
	got := geospatial.Bearing(43.2, -2.9, 43.1, -3.1)
	if got < 0 || got >= 360 {
		t.Errorf("bearing out of [0,360): %f", got)
	}
}

func TestClosestPointOnSegment_Interior(t *testing.T) {
	// Point north of the midpoint of a west-east segment along the equator.
	lat, lon := geospatial.ClosestPointOnSegment(0.1, 0.5, 0, 0, 0, 1)
	if math.Abs(lat) > 1e-9 || math.Abs(lon-0.5) > 1e-6 {
		t.Errorf("expected (0, 0.5), got (%f, %f)", lat, lon)
	}
}

func TestClosestPointOnSegment_ClampsToEndpoints(t *testing.T) {
	lat, lon := geospatial.ClosestPointOnSegment(0, -0.5, 0, 0, 0, 1)
	if lat != 0 || lon != 0 {
		t.Errorf("expected clamp to segment start, got (%f, %f)", lat, lon)
	}

	lat, lon = geospatial.ClosestPointOnSegment(0, 1.5, 0, 0, 0, 1)
	if lat != 0 || lon != 1 {
		t.Errorf("expected clamp to segment end, got (%f, %f)", lat, lon)
	}
}

func TestClosestPointOnSegment_DegenerateSegment(t *testing.T) {
	lat, lon := geospatial.ClosestPointOnSegment(5, 5, 1, 2, 1, 2)
	if lat != 1 || lon != 2 {
		t.Errorf("expected segment point, got (%f, %f)", lat, lon)
	}
}

func TestCrossTrackMeters(t *testing.T) {
	// 0.01 deg of latitude is ~1112 m off a segment along the equator.
	d := geospatial.CrossTrackMeters(0.01, 0.5, 0, 0, 0, 1)
	if math.Abs(d-1112) > 5 {
		t.Errorf("expected ~1112 m, got %.0f", d)
	}
}
