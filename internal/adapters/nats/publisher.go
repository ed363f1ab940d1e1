package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/k-amith1610/geocity-sub000/internal/core/domain"
	"github.com/nats-io/nats.go"
)

// Subject layout. State snapshots and fixes are per-session; wildcard
// subscribers (the WebSocket relay) listen on the prefix.
const (
	stateSubjectPrefix = "nav.state."
	fixSubjectPrefix   = "nav.fix."
	voiceSubjectPrefix = "nav.voice."
)

// StateSubject returns the subject carrying a session's state snapshots.
func StateSubject(sessionID string) string { return stateSubjectPrefix + sessionID }

// FixSubject returns the subject carrying a session's position fixes.
func FixSubject(sessionID string) string { return fixSubjectPrefix + sessionID }

// VoiceSubject returns the subject carrying a session's voice events.
func VoiceSubject(sessionID string) string { return voiceSubjectPrefix + sessionID }

// VoiceEvent is the wire form of a voice instruction. Cancel true means
// stop any in-flight speech for the session.
type VoiceEvent struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text,omitempty"`
	Cancel    bool   `json:"cancel,omitempty"`
}

// Publisher implements ports.StatePublisher and ports.VoiceAnnouncer on
// NATS. State snapshots go through JetStream so a reconnecting consumer
// can catch up; voice events are fire-and-forget on the plain connection,
// a replayed announcement being worse than a dropped one.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and ensures the navigation stream exists.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := Connect(url)
	if err != nil {
		return nil, err
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := nats.StreamConfig{
		Name:      "NAV_STATE",
		Subjects:  []string{stateSubjectPrefix + ">"},
		Retention: nats.InterestPolicy,
		MaxAge:    1 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(&cfg); err != nil {
		// Stream may already exist with older settings.
		if _, err := js.UpdateStream(&cfg); err != nil {
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishState fans a state snapshot out to live consumers.
func (p *Publisher) PublishState(ctx context.Context, state domain.NavigationState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(StateSubject(state.SessionID), data)
	return err
}

// Speak publishes a voice instruction for the session.
func (p *Publisher) Speak(ctx context.Context, sessionID, text string) error {
	return p.publishVoice(VoiceEvent{SessionID: sessionID, Text: text})
}

// Cancel publishes a cancel event interrupting any in-flight speech.
func (p *Publisher) Cancel(ctx context.Context, sessionID string) error {
	return p.publishVoice(VoiceEvent{SessionID: sessionID, Cancel: true})
}

func (p *Publisher) publishVoice(event VoiceEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.conn.Publish(VoiceSubject(event.SessionID), data)
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// Connect creates a NATS connection with the standard reconnect settings,
// shared by the publisher, the position source and the WebSocket relay.
func Connect(url string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return conn, nil
}
