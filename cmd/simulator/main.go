// Command simulator replays a synthetic trip against a running API: it
// previews a route, starts a session, then walks the route geometry and
// publishes position fixes on NATS at a fixed cadence.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"

	natsadapter "github.com/k-amith1610/geocity-sub000/internal/adapters/nats"
	"github.com/k-amith1610/geocity-sub000/internal/core/domain"
	"github.com/k-amith1610/geocity-sub000/internal/pkg/geospatial"
	"github.com/k-amith1610/geocity-sub000/internal/pkg/logging"
)

func main() {
	var (
		apiURL   = flag.String("api", "http://localhost:8080", "navigation API base URL")
		natsURL  = flag.String("nats", "nats://localhost:4222", "NATS server URL")
		from     = flag.String("from", "", "origin as lat,lon (required)")
		to       = flag.String("to", "", "destination as lat,lon (required)")
		mode     = flag.String("mode", "driving", "travel mode: driving, walking, bicycling")
		speedKmh = flag.Float64("speed", 30, "simulated speed in km/h")
		interval = flag.Duration("interval", time.Second, "time between fixes")
		jitterM  = flag.Float64("jitter", 3, "random position noise in meters")
	)
	flag.Parse()

	logging.Setup(os.Getenv("LOG_LEVEL"), "text")

	origin, err := parseCoord(*from)
	if err != nil {
		log.Fatalf("-from: %v", err)
	}
	destination, err := parseCoord(*to)
	if err != nil {
		log.Fatalf("-to: %v", err)
	}

	client := &apiClient{base: strings.TrimRight(*apiURL, "/")}

	route, err := client.previewRoute(origin, destination, *mode)
	if err != nil {
		log.Fatalf("preview route: %v", err)
	}
	path := flatten(route)
	if len(path) < 2 {
		log.Fatalf("route has no usable geometry")
	}

	session, err := client.startSession(origin, destination, *mode)
	if err != nil {
		log.Fatalf("start session: %v", err)
	}
	slog.Info("session started",
		"session_id", session.ID,
		"route_m", route.DistanceMeters,
		"points", len(path))

	nc, err := natsadapter.Connect(*natsURL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer nc.Close()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	subject := natsadapter.FixSubject(session.ID)
	stepMeters := *speedKmh / 3.6 * interval.Seconds()

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	walker := newWalker(path)
	for {
		select {
		case sig := <-quit:
			slog.Info("interrupted, stopping session", "signal", sig.String())
			if err := client.stopSession(session.ID); err != nil {
				slog.Warn("stop session failed", "error", err)
			}
			return

		case <-ticker.C:
			pos, done := walker.advance(stepMeters)
			fix := domain.PositionFix{
				Location:       jitter(pos, *jitterM),
				AccuracyMeters: *jitterM,
				Time:           time.Now().UTC(),
			}
			if err := publishFix(nc, subject, fix); err != nil {
				slog.Warn("publish fix failed", "error", err)
			}
			if done {
				// The tracker arrives and auto-stops on its own; one last
				// fix at the destination is all it needs.
				slog.Info("destination reached", "session_id", session.ID)
				return
			}
		}
	}
}

func publishFix(nc *nats.Conn, subject string, fix domain.PositionFix) error {
	data, err := json.Marshal(natsadapter.FixEnvelope{Fix: &fix})
	if err != nil {
		return err
	}
	return nc.Publish(subject, data)
}

// walker advances along a polyline by a fixed distance per tick.
type walker struct {
	path []domain.GeoPoint
	seg  int
	// offset into the current segment, meters
	offset float64
}

func newWalker(path []domain.GeoPoint) *walker {
	return &walker{path: path}
}

func (w *walker) advance(meters float64) (domain.GeoPoint, bool) {
	w.offset += meters

	for w.seg < len(w.path)-1 {
		a, b := w.path[w.seg], w.path[w.seg+1]
		segLen := geospatial.Haversine(a.Lat, a.Lon, b.Lat, b.Lon)
		if w.offset < segLen {
			t := w.offset / segLen
			return domain.GeoPoint{
				Lat: a.Lat + (b.Lat-a.Lat)*t,
				Lon: a.Lon + (b.Lon-a.Lon)*t,
			}, false
		}
		w.offset -= segLen
		w.seg++
	}

	return w.path[len(w.path)-1], true
}

// flatten turns a route into the sequence of step boundary points.
func flatten(r *domain.Route) []domain.GeoPoint {
	var pts []domain.GeoPoint
	for _, leg := range r.Legs {
		for _, step := range leg.Steps {
			if len(pts) == 0 {
				pts = append(pts, step.StartLocation)
			}
			pts = append(pts, step.EndLocation)
		}
	}
	return pts
}

func jitter(p domain.GeoPoint, meters float64) domain.GeoPoint {
	if meters <= 0 {
		return p
	}
	// Roughly meters-to-degrees at the equator; close enough for noise.
	deg := meters / 111195.0
	return domain.GeoPoint{
		Lat: p.Lat + (rand.Float64()*2-1)*deg,
		Lon: p.Lon + (rand.Float64()*2-1)*deg,
	}
}

func parseCoord(s string) (domain.GeoPoint, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return domain.GeoPoint{}, fmt.Errorf("want lat,lon, got %q", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("bad latitude %q", parts[0])
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("bad longitude %q", parts[1])
	}
	return domain.GeoPoint{Lat: lat, Lon: lon}, nil
}

// apiClient is a minimal client for the session endpoints.
type apiClient struct {
	base string
	http http.Client
}

func (c *apiClient) previewRoute(origin, destination domain.GeoPoint, mode string) (*domain.Route, error) {
	url := fmt.Sprintf("%s/v1/routes/preview?from_lat=%f&from_lon=%f&to_lat=%f&to_lon=%f&mode=%s",
		c.base, origin.Lat, origin.Lon, destination.Lat, destination.Lon, mode)

	resp, err := c.http.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return nil, httpError(resp)
	}

	var route domain.Route
	if err := json.NewDecoder(resp.Body).Decode(&route); err != nil {
		return nil, err
	}
	return &route, nil
}

func (c *apiClient) startSession(origin, destination domain.GeoPoint, mode string) (*domain.NavigationSession, error) {
	body, _ := json.Marshal(map[string]interface{}{
		"origin":      origin,
		"destination": destination,
		"mode":        mode,
	})

	resp, err := c.http.Post(c.base+"/v1/sessions", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 201 {
		return nil, httpError(resp)
	}

	var result struct {
		Session domain.NavigationSession `json:"session"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return &result.Session, nil
}

func (c *apiClient) stopSession(id string) error {
	resp, err := c.http.Post(c.base+"/v1/sessions/"+id+"/stop", "application/json", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return httpError(resp)
	}
	return nil
}

func httpError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(data)))
}
