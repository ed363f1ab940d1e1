package ports

import (
	"context"

	"github.com/k-amith1610/geocity-sub000/internal/core/domain"
)

// SessionRepository persists navigation session lifecycle records.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.NavigationSession) error
	GetByID(ctx context.Context, id string) (*domain.NavigationSession, error)
	UpdatePhase(ctx context.Context, id string, phase domain.Phase) error
	Finish(ctx context.Context, id string, phase domain.Phase) error
	List(ctx context.Context, limit, offset int) ([]domain.NavigationSession, int, error)
}

// TraceRepository persists the breadcrumb trail of processed fixes.
type TraceRepository interface {
	Insert(ctx context.Context, point *domain.TracePoint) error
	ListBySession(ctx context.Context, sessionID string, limit int) ([]domain.TracePoint, error)
}
