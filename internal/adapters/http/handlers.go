package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/k-amith1610/geocity-sub000/internal/core/domain"
)

type geoPointBody struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (b geoPointBody) toDomain() domain.GeoPoint {
	return domain.GeoPoint{Lat: b.Lat, Lon: b.Lon}
}

func (b geoPointBody) valid() bool {
	return b.Lat >= -90 && b.Lat <= 90 && b.Lon >= -180 && b.Lon <= 180
}

type startSessionRequest struct {
	Origin      geoPointBody `json:"origin"`
	Destination geoPointBody `json:"destination"`
	Mode        string       `json:"mode"`
}

type startSessionResponse struct {
	Session *domain.NavigationSession `json:"session"`
	State   domain.NavigationState    `json:"state"`
}

// StartSessionHandler computes a route and starts tracking a new session.
func StartSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req startSessionRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if !req.Origin.valid() || !req.Destination.valid() {
			return errBadRequest(c, "origin and destination must be valid coordinates")
		}

		mode := domain.TravelMode(req.Mode)
		if req.Mode == "" {
			mode = domain.ModeDriving
		}
		if !mode.IsValid() {
			return errBadRequest(c, "mode must be one of driving, walking, bicycling")
		}

		session, state, err := deps.Sessions.StartSession(c.Context(),
			req.Origin.toDomain(), req.Destination.toDomain(), mode)
		if err != nil {
			return domainError(c, err)
		}

		return c.Status(fiber.StatusCreated).JSON(startSessionResponse{Session: session, State: state})
	}
}

type fixRequest struct {
	Location       geoPointBody `json:"location"`
	Heading        *float64     `json:"heading,omitempty"`
	AccuracyMeters float64      `json:"accuracy_meters,omitempty"`
	Time           *time.Time   `json:"time,omitempty"`
}

// PushFixHandler feeds one position fix into a session and returns the
// recomputed state.
func PushFixHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req fixRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if !req.Location.valid() {
			return errBadRequest(c, "location must be a valid coordinate")
		}

		fix := domain.PositionFix{
			Location:       req.Location.toDomain(),
			Heading:        req.Heading,
			AccuracyMeters: req.AccuracyMeters,
			Time:           time.Now().UTC(),
		}
		if req.Time != nil {
			fix.Time = *req.Time
		}

		state, err := deps.Sessions.PushFix(c.Context(), c.Params("id"), fix)
		if err != nil {
			return domainError(c, err)
		}
		return c.JSON(state)
	}
}

type positionErrorRequest struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// ReportPositionErrorHandler reports a position-source failure for a
// session.
func ReportPositionErrorHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req positionErrorRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		kind := domain.PositionErrorKind(req.Kind)
		switch kind {
		case domain.PositionUnavailable, domain.PositionTimeout, domain.PositionPermissionDenied:
		default:
			return errBadRequest(c, "kind must be one of unavailable, timeout, permission_denied")
		}

		state, err := deps.Sessions.ReportPositionError(c.Context(), c.Params("id"),
			domain.PositionError{Kind: kind, Message: req.Message})
		if err != nil {
			return domainError(c, err)
		}
		return c.JSON(state)
	}
}

// StopSessionHandler ends a session and returns its final state.
func StopSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		state, err := deps.Sessions.StopSession(c.Context(), c.Params("id"))
		if err != nil {
			return domainError(c, err)
		}
		return c.JSON(state)
	}
}

// GetSessionHandler returns the persisted session record.
func GetSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := deps.Sessions.GetSession(c.Context(), c.Params("id"))
		if err != nil {
			return domainError(c, err)
		}
		return c.JSON(session)
	}
}

// GetStateHandler returns the freshest navigation state for a session.
func GetStateHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		state, err := deps.Sessions.GetState(c.Context(), c.Params("id"))
		if err != nil {
			return domainError(c, err)
		}
		return c.JSON(state)
	}
}

// GetTraceHandler returns the breadcrumb trail of a session.
func GetTraceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", 1000)
		points, err := deps.Sessions.GetTrace(c.Context(), c.Params("id"), limit)
		if err != nil {
			return domainError(c, err)
		}
		if points == nil {
			points = []domain.TracePoint{}
		}
		return c.JSON(points)
	}
}

// ListSessionsHandler returns a page of session records.
func ListSessionsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 50)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 200 {
			limit = 50
		}

		sessions, total, err := deps.Sessions.ListSessions(c.Context(), limit, offset)
		if err != nil {
			return domainError(c, err)
		}
		if sessions == nil {
			sessions = []domain.NavigationSession{}
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: sessions, Pagination: pg})
	}
}

// PreviewRouteHandler computes a route without starting a session.
func PreviewRouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		origin := geoPointBody{Lat: c.QueryFloat("from_lat"), Lon: c.QueryFloat("from_lon")}
		destination := geoPointBody{Lat: c.QueryFloat("to_lat"), Lon: c.QueryFloat("to_lon")}
		if !origin.valid() || !destination.valid() {
			return errBadRequest(c, "from_lat, from_lon, to_lat and to_lon must be valid coordinates")
		}
		if origin.toDomain().IsZero() || destination.toDomain().IsZero() {
			return errBadRequest(c, "from_lat, from_lon, to_lat and to_lon are required")
		}

		mode := domain.TravelMode(c.Query("mode", string(domain.ModeDriving)))
		if !mode.IsValid() {
			return errBadRequest(c, "mode must be one of driving, walking, bicycling")
		}

		route, err := deps.Routes.ComputeRoute(c.Context(), origin.toDomain(), destination.toDomain(), mode)
		if err != nil {
			return domainError(c, err)
		}

		c.Set("Cache-Control", "public, max-age=60")
		return c.JSON(route)
	}
}
