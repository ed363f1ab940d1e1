package geospatial

import "math"

const earthRadiusKm = 6371.0

// Haversine calculates the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c * 1000 // meters
}

// Bearing returns the initial great-circle bearing in degrees (0-360,
// clockwise from true north) from point 1 to point 2.
func Bearing(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := toRad(lat1)
	phi2 := toRad(lat2)
	dLon := toRad(lon2 - lon1)

	y := math.Sin(dLon) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) -
		math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLon)

	deg := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(deg+360, 360)
}

// ClosestPointOnSegment projects point p onto the segment a-b and returns the
// closest point. The projection uses a local equirectangular approximation,
// which is accurate to well under GPS noise for segments of a few kilometers.
func ClosestPointOnSegment(pLat, pLon, aLat, aLon, bLat, bLon float64) (lat, lon float64) {
	// Flatten longitudes by the cosine of the mid latitude so that one unit
	// of x and one unit of y span the same ground distance.
	cosLat := math.Cos(toRad((aLat + bLat) / 2))

	ax, ay := aLon*cosLat, aLat
	bx, by := bLon*cosLat, bLat
	px, py := pLon*cosLat, pLat

	dx, dy := bx-ax, by-ay
	segLenSq := dx*dx + dy*dy
	if segLenSq == 0 {
		return aLat, aLon
	}

	t := ((px-ax)*dx + (py-ay)*dy) / segLenSq
	t = math.Max(0, math.Min(1, t))

	return ay + t*dy, (ax + t*dx) / cosLat
}

// CrossTrackMeters returns the distance in meters from point p to the
// nearest point of segment a-b.
func CrossTrackMeters(pLat, pLon, aLat, aLon, bLat, bLon float64) float64 {
	cLat, cLon := ClosestPointOnSegment(pLat, pLon, aLat, aLon, bLat, bLon)
	return Haversine(pLat, pLon, cLat, cLon)
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
