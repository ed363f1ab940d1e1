package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	handler "github.com/k-amith1610/geocity-sub000/internal/adapters/http"
	"github.com/k-amith1610/geocity-sub000/internal/core/domain"
	"github.com/k-amith1610/geocity-sub000/internal/core/nav"
	"github.com/k-amith1610/geocity-sub000/internal/core/usecases"
)

// Test routes run due east along the equator, offset from the null island
// point so no position looks like a zero value.
const (
	degPerMeter = 1.0 / 111194.92664455873
	baseLon     = 1.0
)

func lonAt(meters float64) float64 { return baseLon + meters*degPerMeter }

func pt(meters float64) domain.GeoPoint {
	return domain.GeoPoint{Lat: 0, Lon: lonAt(meters)}
}

func eastRoute(length float64) *domain.Route {
	step := domain.Step{
		StartLocation:  pt(0),
		EndLocation:    pt(length),
		Instruction:    "Head east",
		Maneuver:       domain.ManeuverDepart,
		DistanceMeters: length,
	}
	return &domain.Route{
		ID:             "route-1",
		TravelMode:     domain.ModeDriving,
		DistanceMeters: length,
		Legs: []domain.Leg{{
			StartLocation:  pt(0),
			EndLocation:    pt(length),
			DistanceMeters: length,
			Steps:          []domain.Step{step},
		}},
	}
}

// ---- Mock repositories ----

type mockSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*domain.NavigationSession
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{sessions: make(map[string]*domain.NavigationSession)}
}

func (m *mockSessionRepo) Create(ctx context.Context, s *domain.NavigationSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func (m *mockSessionRepo) GetByID(ctx context.Context, id string) (*domain.NavigationSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *mockSessionRepo) UpdatePhase(ctx context.Context, id string, phase domain.Phase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.Phase = phase
	}
	return nil
}

func (m *mockSessionRepo) Finish(ctx context.Context, id string, phase domain.Phase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.Phase = phase
		now := time.Now().UTC()
		s.EndedAt = &now
	}
	return nil
}

func (m *mockSessionRepo) List(ctx context.Context, limit, offset int) ([]domain.NavigationSession, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]domain.NavigationSession, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, *s)
	}
	total := len(all)
	if offset >= total {
		return []domain.NavigationSession{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

type mockTraceRepo struct {
	mu     sync.Mutex
	points []domain.TracePoint
}

func (m *mockTraceRepo) Insert(ctx context.Context, p *domain.TracePoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.points = append(m.points, *p)
	return nil
}

func (m *mockTraceRepo) ListBySession(ctx context.Context, sessionID string, limit int) ([]domain.TracePoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.TracePoint
	for _, p := range m.points {
		if p.SessionID == sessionID {
			out = append(out, p)
		}
	}
	return out, nil
}

type mockProvider struct {
	fetchFn func(ctx context.Context, origin, destination domain.GeoPoint, mode domain.TravelMode) (*domain.Route, error)
}

func (m *mockProvider) FetchRoute(ctx context.Context, origin, destination domain.GeoPoint, mode domain.TravelMode) (*domain.Route, error) {
	if m.fetchFn != nil {
		return m.fetchFn(ctx, origin, destination, mode)
	}
	return eastRoute(5000), nil
}

// ---- Test helpers ----

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

func makeDeps() *handler.Dependencies {
	pol := nav.DefaultPolicy()
	pol.AutoStopGrace = 0
	routes := usecases.NewRouteService(&mockProvider{}, nil)
	sessions := usecases.NewSessionService(newMockSessionRepo(), &mockTraceRepo{},
		routes, nil, nil, nil, pol)
	return &handler.Dependencies{Sessions: sessions, Routes: routes}
}

func doJSON(t *testing.T, app *fiber.App, method, target string, body interface{}, out interface{}) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp.StatusCode
}

func startSession(t *testing.T, app *fiber.App) string {
	t.Helper()
	var result struct {
		Session domain.NavigationSession `json:"session"`
		State   domain.NavigationState   `json:"state"`
	}
	code := doJSON(t, app, "POST", "/v1/sessions", map[string]interface{}{
		"origin":      map[string]float64{"lat": 0, "lon": lonAt(0)},
		"destination": map[string]float64{"lat": 0, "lon": lonAt(5000)},
		"mode":        "driving",
	}, &result)
	if code != 201 {
		t.Fatalf("expected 201, got %d", code)
	}
	if result.Session.ID == "" {
		t.Fatal("expected a session ID")
	}
	return result.Session.ID
}

// ---- Session handler tests ----

func TestStartSession_Success(t *testing.T) {
	app := setupApp(makeDeps())

	var result struct {
		Session domain.NavigationSession `json:"session"`
		State   domain.NavigationState   `json:"state"`
	}
	code := doJSON(t, app, "POST", "/v1/sessions", map[string]interface{}{
		"origin":      map[string]float64{"lat": 0, "lon": lonAt(0)},
		"destination": map[string]float64{"lat": 0, "lon": lonAt(5000)},
		"mode":        "driving",
	}, &result)

	if code != 201 {
		t.Fatalf("expected 201, got %d", code)
	}
	if result.State.Phase != domain.PhaseActive {
		t.Errorf("expected active baseline, got %s", result.State.Phase)
	}
	if result.State.RemainingDistanceMeters < 4999 {
		t.Errorf("expected full remaining distance, got %.1f", result.State.RemainingDistanceMeters)
	}
}

func TestStartSession_BadMode(t *testing.T) {
	app := setupApp(makeDeps())

	code := doJSON(t, app, "POST", "/v1/sessions", map[string]interface{}{
		"origin":      map[string]float64{"lat": 0, "lon": 0},
		"destination": map[string]float64{"lat": 0, "lon": 0.01},
		"mode":        "teleport",
	}, nil)
	if code != 400 {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestStartSession_BadCoordinates(t *testing.T) {
	app := setupApp(makeDeps())

	code := doJSON(t, app, "POST", "/v1/sessions", map[string]interface{}{
		"origin":      map[string]float64{"lat": 120, "lon": 0},
		"destination": map[string]float64{"lat": 0, "lon": 0.01},
	}, nil)
	if code != 400 {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestPushFix_AdvancesState(t *testing.T) {
	app := setupApp(makeDeps())
	id := startSession(t, app)

	var state domain.NavigationState
	code := doJSON(t, app, "POST", "/v1/sessions/"+id+"/fixes", map[string]interface{}{
		"location": map[string]float64{"lat": 0, "lon": lonAt(2500)},
	}, &state)
	if code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}
	if state.ProgressPercent < 49 || state.ProgressPercent > 51 {
		t.Errorf("expected ~50%% progress, got %.1f", state.ProgressPercent)
	}
}

func TestPushFix_UnknownSession(t *testing.T) {
	app := setupApp(makeDeps())

	code := doJSON(t, app, "POST", "/v1/sessions/nope/fixes", map[string]interface{}{
		"location": map[string]float64{"lat": 0, "lon": lonAt(100)},
	}, nil)
	if code != 404 {
		t.Fatalf("expected 404, got %d", code)
	}
}

func TestPushFix_FinishedSession(t *testing.T) {
	app := setupApp(makeDeps())
	id := startSession(t, app)

	if code := doJSON(t, app, "POST", "/v1/sessions/"+id+"/stop", nil, nil); code != 200 {
		t.Fatalf("stop: expected 200, got %d", code)
	}

	code := doJSON(t, app, "POST", "/v1/sessions/"+id+"/fixes", map[string]interface{}{
		"location": map[string]float64{"lat": 0, "lon": lonAt(100)},
	}, nil)
	if code != 409 {
		t.Fatalf("expected 409, got %d", code)
	}
}

func TestStopSession_Idempotent(t *testing.T) {
	app := setupApp(makeDeps())
	id := startSession(t, app)

	var state domain.NavigationState
	for i := 0; i < 2; i++ {
		code := doJSON(t, app, "POST", "/v1/sessions/"+id+"/stop", nil, &state)
		if code != 200 {
			t.Fatalf("stop %d: expected 200, got %d", i, code)
		}
		if state.Phase != domain.PhaseStopped {
			t.Fatalf("stop %d: expected stopped, got %s", i, state.Phase)
		}
	}
}

func TestReportPositionError(t *testing.T) {
	app := setupApp(makeDeps())
	id := startSession(t, app)

	var state domain.NavigationState
	code := doJSON(t, app, "POST", "/v1/sessions/"+id+"/errors", map[string]string{
		"kind": "timeout", "message": "gps cold start",
	}, &state)
	if code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}
	if state.Phase != domain.PhaseActive {
		t.Errorf("transient error should keep session active, got %s", state.Phase)
	}

	code = doJSON(t, app, "POST", "/v1/sessions/"+id+"/errors", map[string]string{
		"kind": "out_of_battery",
	}, nil)
	if code != 400 {
		t.Fatalf("expected 400 for unknown kind, got %d", code)
	}
}

func TestGetState_Success(t *testing.T) {
	app := setupApp(makeDeps())
	id := startSession(t, app)

	var state domain.NavigationState
	code := doJSON(t, app, "GET", "/v1/sessions/"+id+"/state", nil, &state)
	if code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}
	if state.SessionID != id {
		t.Errorf("expected session %s, got %s", id, state.SessionID)
	}
}

func TestGetSession_NotFound(t *testing.T) {
	app := setupApp(makeDeps())

	var apiErr struct {
		Status int    `json:"status"`
		Code   string `json:"code"`
	}
	code := doJSON(t, app, "GET", "/v1/sessions/nope", nil, &apiErr)
	if code != 404 {
		t.Fatalf("expected 404, got %d", code)
	}
	if apiErr.Code != "not_found" {
		t.Errorf("expected not_found, got %s", apiErr.Code)
	}
}

func TestListSessions_Pagination(t *testing.T) {
	app := setupApp(makeDeps())
	for i := 0; i < 3; i++ {
		startSession(t, app)
	}

	var result struct {
		Data       []domain.NavigationSession `json:"data"`
		Pagination struct {
			Offset int `json:"offset"`
			Limit  int `json:"limit"`
			Total  int `json:"total"`
		} `json:"pagination"`
	}
	code := doJSON(t, app, "GET", "/v1/sessions?offset=1&limit=2", nil, &result)
	if code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}
	if result.Pagination.Total != 3 {
		t.Errorf("expected total 3, got %d", result.Pagination.Total)
	}
	if len(result.Data) != 2 {
		t.Errorf("expected 2 sessions in page, got %d", len(result.Data))
	}
}

func TestGetTrace(t *testing.T) {
	app := setupApp(makeDeps())
	id := startSession(t, app)

	for i := 1; i <= 2; i++ {
		doJSON(t, app, "POST", "/v1/sessions/"+id+"/fixes", map[string]interface{}{
			"location": map[string]float64{"lat": 0, "lon": lonAt(float64(i) * 1000)},
		}, nil)
	}

	var points []domain.TracePoint
	code := doJSON(t, app, "GET", "/v1/sessions/"+id+"/trace", nil, &points)
	if code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}
	// Baseline plus two fixes.
	if len(points) != 3 {
		t.Errorf("expected 3 trace points, got %d", len(points))
	}
}

func TestPreviewRoute(t *testing.T) {
	app := setupApp(makeDeps())

	target := fmt.Sprintf("/v1/routes/preview?from_lat=0&from_lon=%f&to_lat=0&to_lon=%f",
		lonAt(0), lonAt(5000))
	var route domain.Route
	code := doJSON(t, app, "GET", target, nil, &route)
	if code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}
	if route.DistanceMeters != 5000 {
		t.Errorf("expected 5000 m route, got %.0f", route.DistanceMeters)
	}
}

func TestPreviewRoute_MissingParams(t *testing.T) {
	app := setupApp(makeDeps())

	code := doJSON(t, app, "GET", "/v1/routes/preview", nil, nil)
	if code != 400 {
		t.Fatalf("expected 400, got %d", code)
	}
}

// ---- GraphQL ----

func TestGraphQL_Session(t *testing.T) {
	app := setupApp(makeDeps())
	id := startSession(t, app)

	var result struct {
		Data struct {
			Session struct {
				ID    string `json:"id"`
				Phase string `json:"phase"`
			} `json:"session"`
		} `json:"data"`
	}
	code := doJSON(t, app, "POST", "/graphql", map[string]interface{}{
		"query": `query($id: String!) { session(id: $id) { id phase } }`,
		"variables": map[string]interface{}{
			"id": id,
		},
	}, &result)
	if code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}
	if result.Data.Session.ID != id {
		t.Errorf("expected session %s, got %q", id, result.Data.Session.ID)
	}
	if result.Data.Session.Phase != "active" {
		t.Errorf("expected active, got %q", result.Data.Session.Phase)
	}
}
