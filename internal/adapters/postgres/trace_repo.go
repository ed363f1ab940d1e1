package postgres

import (
	"context"

	"github.com/k-amith1610/geocity-sub000/internal/core/domain"
)

// TraceRepo implements ports.TraceRepository.
type TraceRepo struct {
	db *DB
}

func NewTraceRepo(db *DB) *TraceRepo { return &TraceRepo{db: db} }

func (r *TraceRepo) Insert(ctx context.Context, p *domain.TracePoint) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO nav_trace_points (session_id, time, lat, lon, heading_deg, progress_pct)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, p.SessionID, p.Time, p.Location.Lat, p.Location.Lon, p.HeadingDegrees, p.ProgressPercent)
	return err
}

func (r *TraceRepo) ListBySession(ctx context.Context, sessionID string, limit int) ([]domain.TracePoint, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT session_id, time, lat, lon, heading_deg, progress_pct
		FROM nav_trace_points
		WHERE session_id = $1
		ORDER BY time
		LIMIT $2
	`, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []domain.TracePoint
	for rows.Next() {
		var p domain.TracePoint
		if err := rows.Scan(&p.SessionID, &p.Time, &p.Location.Lat, &p.Location.Lon,
			&p.HeadingDegrees, &p.ProgressPercent); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}
