package usecases

import (
	"context"
	"log/slog"

	"github.com/k-amith1610/geocity-sub000/internal/core/ports"
)

// sessionAnnouncer bridges the tracker's synchronous announcer to the
// session-scoped VoiceAnnouncer port. Delivery failures are logged and
// dropped; a missed announcement must never stall fix processing.
type sessionAnnouncer struct {
	sessionID string
	voice     ports.VoiceAnnouncer
}

func (a *sessionAnnouncer) Speak(text string) {
	if err := a.voice.Speak(context.Background(), a.sessionID, text); err != nil {
		slog.Warn("voice announcement failed", "session_id", a.sessionID, "error", err)
	}
}

func (a *sessionAnnouncer) Cancel() {
	if err := a.voice.Cancel(context.Background(), a.sessionID); err != nil {
		slog.Warn("voice cancel failed", "session_id", a.sessionID, "error", err)
	}
}
