package natsadapter

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/k-amith1610/geocity-sub000/internal/core/domain"
	"github.com/k-amith1610/geocity-sub000/internal/core/ports"
	"github.com/nats-io/nats.go"
)

// FixEnvelope is the wire form of one position-source message. Exactly one
// of Fix or Error is set; a malformed envelope is dropped.
type FixEnvelope struct {
	Fix   *domain.PositionFix   `json:"fix,omitempty"`
	Error *domain.PositionError `json:"error,omitempty"`
}

// PositionSource implements ports.PositionSource on a plain NATS
// subscription. A fix is stale as soon as the next one arrives, so fixes
// get no JetStream replay.
type PositionSource struct {
	conn *nats.Conn
}

// NewPositionSource wraps an existing NATS connection.
func NewPositionSource(conn *nats.Conn) *PositionSource {
	return &PositionSource{conn: conn}
}

// Subscribe delivers the session's fixes and position errors until the
// returned function is called.
func (s *PositionSource) Subscribe(ctx context.Context, sessionID string,
	onFix func(domain.PositionFix), onErr func(domain.PositionError)) (ports.UnsubscribeFunc, error) {

	sub, err := s.conn.Subscribe(FixSubject(sessionID), func(msg *nats.Msg) {
		var env FixEnvelope
		if err := json.Unmarshal(msg.Data, &env); err != nil {
			slog.Warn("dropping malformed fix message", "session_id", sessionID, "error", err)
			return
		}
		switch {
		case env.Fix != nil:
			onFix(*env.Fix)
		case env.Error != nil:
			onErr(*env.Error)
		}
	})
	if err != nil {
		return nil, err
	}

	var once sync.Once
	return func() error {
		var uerr error
		once.Do(func() { uerr = sub.Unsubscribe() })
		return uerr
	}, nil
}
