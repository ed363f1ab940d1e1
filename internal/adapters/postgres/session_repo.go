package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/k-amith1610/geocity-sub000/internal/core/domain"
)

// SessionRepo implements ports.SessionRepository.
type SessionRepo struct {
	db *DB
}

func NewSessionRepo(db *DB) *SessionRepo { return &SessionRepo{db: db} }

func (r *SessionRepo) Create(ctx context.Context, s *domain.NavigationSession) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO nav_sessions
			(id, origin_lat, origin_lon, dest_lat, dest_lon, travel_mode, phase, route_distance_m, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, s.ID, s.Origin.Lat, s.Origin.Lon, s.Destination.Lat, s.Destination.Lon,
		s.TravelMode, s.Phase, s.RouteDistanceMeters, s.StartedAt)
	return err
}

func (r *SessionRepo) GetByID(ctx context.Context, id string) (*domain.NavigationSession, error) {
	var s domain.NavigationSession
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, origin_lat, origin_lon, dest_lat, dest_lon, travel_mode, phase,
		       route_distance_m, started_at, ended_at
		FROM nav_sessions WHERE id = $1
	`, id).Scan(&s.ID, &s.Origin.Lat, &s.Origin.Lon, &s.Destination.Lat, &s.Destination.Lon,
		&s.TravelMode, &s.Phase, &s.RouteDistanceMeters, &s.StartedAt, &s.EndedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepo) UpdatePhase(ctx context.Context, id string, phase domain.Phase) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE nav_sessions SET phase = $2 WHERE id = $1
	`, id, phase)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (r *SessionRepo) Finish(ctx context.Context, id string, phase domain.Phase) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE nav_sessions SET phase = $2, ended_at = $3 WHERE id = $1
	`, id, phase, time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (r *SessionRepo) List(ctx context.Context, limit, offset int) ([]domain.NavigationSession, int, error) {
	var total int
	if err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM nav_sessions`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, origin_lat, origin_lon, dest_lat, dest_lon, travel_mode, phase,
		       route_distance_m, started_at, ended_at
		FROM nav_sessions
		ORDER BY started_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var sessions []domain.NavigationSession
	for rows.Next() {
		var s domain.NavigationSession
		if err := rows.Scan(&s.ID, &s.Origin.Lat, &s.Origin.Lon, &s.Destination.Lat, &s.Destination.Lon,
			&s.TravelMode, &s.Phase, &s.RouteDistanceMeters, &s.StartedAt, &s.EndedAt); err != nil {
			return nil, 0, err
		}
		sessions = append(sessions, s)
	}
	return sessions, total, rows.Err()
}
