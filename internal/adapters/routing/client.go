package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/k-amith1610/geocity-sub000/internal/core/domain"
	"github.com/k-amith1610/geocity-sub000/internal/pkg/metrics"
)

// Client implements ports.RouteProvider against a Valhalla routing engine.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// NewClient creates a Valhalla client. baseURL points at the engine root,
// e.g. http://valhalla:8002.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: timeout},
	}
}

type valhallaLocation struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Type string  `json:"type"`
}

type valhallaRequest struct {
	Locations []valhallaLocation `json:"locations"`
	Costing   string             `json:"costing"`
	Units     string             `json:"units"`
}

type valhallaManeuver struct {
	Type            int     `json:"type"`
	Instruction     string  `json:"instruction"`
	Length          float64 `json:"length"`
	Time            float64 `json:"time"`
	BeginShapeIndex int     `json:"begin_shape_index"`
	EndShapeIndex   int     `json:"end_shape_index"`
}

type valhallaLeg struct {
	Maneuvers []valhallaManeuver `json:"maneuvers"`
	Shape     string             `json:"shape"`
	Summary   struct {
		Length float64 `json:"length"`
		Time   float64 `json:"time"`
	} `json:"summary"`
}

type valhallaResponse struct {
	Trip struct {
		Legs    []valhallaLeg `json:"legs"`
		Summary struct {
			Length float64 `json:"length"`
			Time   float64 `json:"time"`
		} `json:"summary"`
	} `json:"trip"`
}

func costing(mode domain.TravelMode) string {
	switch mode {
	case domain.ModeWalking:
		return "pedestrian"
	case domain.ModeBicycling:
		return "bicycle"
	default:
		return "auto"
	}
}

// FetchRoute requests a route and maps it onto the domain model. Valhalla
// reports lengths in kilometers; everything downstream works in meters.
func (c *Client) FetchRoute(ctx context.Context, origin, destination domain.GeoPoint, mode domain.TravelMode) (*domain.Route, error) {
	vreq := valhallaRequest{
		Locations: []valhallaLocation{
			{Lat: origin.Lat, Lon: origin.Lon, Type: "break"},
			{Lat: destination.Lat, Lon: destination.Lon, Type: "break"},
		},
		Costing: costing(mode),
		Units:   "kilometers",
	}
	body, err := json.Marshal(vreq)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/route", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpc.Do(req)
	metrics.RouteFetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RouteFetchErrors.Inc()
		return nil, fmt.Errorf("routing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.RouteFetchErrors.Inc()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("routing engine returned %d: %s", resp.StatusCode, msg)
	}

	var vresp valhallaResponse
	if err := json.NewDecoder(resp.Body).Decode(&vresp); err != nil {
		metrics.RouteFetchErrors.Inc()
		return nil, fmt.Errorf("decode routing response: %w", err)
	}
	if len(vresp.Trip.Legs) == 0 {
		return nil, fmt.Errorf("%w: no route between endpoints", domain.ErrRouteInvalid)
	}

	route := &domain.Route{
		ID:              uuid.NewString(),
		TravelMode:      mode,
		DistanceMeters:  vresp.Trip.Summary.Length * 1000,
		DurationSeconds: vresp.Trip.Summary.Time,
		CreatedAt:       time.Now().UTC(),
	}
	for _, vleg := range vresp.Trip.Legs {
		leg, err := mapLeg(vleg)
		if err != nil {
			return nil, err
		}
		route.Legs = append(route.Legs, leg)
	}
	return route, nil
}

func mapLeg(vleg valhallaLeg) (domain.Leg, error) {
	shape := DecodePolyline(vleg.Shape)
	if len(shape) < 2 {
		return domain.Leg{}, fmt.Errorf("%w: leg shape has %d points", domain.ErrRouteInvalid, len(shape))
	}

	leg := domain.Leg{
		StartLocation:   shape[0],
		EndLocation:     shape[len(shape)-1],
		DistanceMeters:  vleg.Summary.Length * 1000,
		DurationSeconds: vleg.Summary.Time,
	}
	for _, m := range vleg.Maneuvers {
		begin := clampIndex(m.BeginShapeIndex, len(shape))
		end := clampIndex(m.EndShapeIndex, len(shape))
		leg.Steps = append(leg.Steps, domain.Step{
			StartLocation:  shape[begin],
			EndLocation:    shape[end],
			Instruction:    m.Instruction,
			Maneuver:       mapManeuver(m.Type),
			DistanceMeters: m.Length * 1000,
		})
	}
	return leg, nil
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// mapManeuver translates Valhalla maneuver type codes.
func mapManeuver(t int) domain.ManeuverKind {
	switch t {
	case 1, 2, 3:
		return domain.ManeuverDepart
	case 4, 5, 6:
		return domain.ManeuverArrive
	case 9:
		return domain.ManeuverSlightRight
	case 10, 11:
		return domain.ManeuverTurnRight
	case 12, 13:
		return domain.ManeuverUTurn
	case 14, 15:
		return domain.ManeuverTurnLeft
	case 16:
		return domain.ManeuverSlightLeft
	case 25, 37, 38:
		return domain.ManeuverMerge
	case 26, 27:
		return domain.ManeuverRoundabout
	default:
		return domain.ManeuverStraight
	}
}

// polylinePrecision matches Valhalla's encoded shape (1e-6 degrees).
const polylinePrecision = 1e6

// DecodePolyline decodes a Valhalla shape string into coordinates.
func DecodePolyline(encoded string) []domain.GeoPoint {
	var points []domain.GeoPoint
	var lat, lon int64

	for i := 0; i < len(encoded); {
		dlat, n := decodeVarint(encoded[i:])
		i += n
		if n == 0 {
			break
		}
		lat += dlat

		dlon, n := decodeVarint(encoded[i:])
		i += n
		if n == 0 {
			break
		}
		lon += dlon

		points = append(points, domain.GeoPoint{
			Lat: float64(lat) / polylinePrecision,
			Lon: float64(lon) / polylinePrecision,
		})
	}
	return points
}

func decodeVarint(s string) (int64, int) {
	var result int64
	var shift uint
	for i := 0; i < len(s); i++ {
		b := int64(s[i]) - 63
		result |= (b & 0x1f) << shift
		if b < 0x20 {
			if result&1 != 0 {
				return ^(result >> 1), i + 1
			}
			return result >> 1, i + 1
		}
		shift += 5
	}
	return 0, 0
}
