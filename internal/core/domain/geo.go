package domain

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// IsZero reports whether the point is the unset zero value. (0, 0) is in the
// Gulf of Guinea and never a valid GeoCity coordinate.
func (p GeoPoint) IsZero() bool {
	return p.Lat == 0 && p.Lon == 0
}
