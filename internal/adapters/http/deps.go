package http

import (
	"github.com/nats-io/nats.go"

	"github.com/k-amith1610/geocity-sub000/internal/adapters/postgres"
	"github.com/k-amith1610/geocity-sub000/internal/adapters/valkey"
	"github.com/k-amith1610/geocity-sub000/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Sessions *usecases.SessionService
	Routes   *usecases.RouteService
	NATS     *nats.Conn
	DB       *postgres.DB
	Cache    *valkey.Cache
}
