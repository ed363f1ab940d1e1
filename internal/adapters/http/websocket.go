package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/k-amith1610/geocity-sub000/internal/adapters/nats"
	"github.com/k-amith1610/geocity-sub000/internal/pkg/metrics"
)

// wsMessage is sent from client to subscribe/unsubscribe to sessions.
type wsMessage struct {
	Action  string `json:"action"`  // "subscribe" | "unsubscribe"
	Session string `json:"session"` // session ID filter ("" = all sessions)
	Channel string `json:"channel"` // "state" | "voice" (default: state)
}

// WebSocketHandler relays per-session navigation events from NATS to
// connected clients. Clients send JSON like
// {"action":"subscribe","session":"<id>","channel":"state"}.
// The ?session= query parameter pre-subscribes to one session's state.
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		if nc == nil {
			_ = c.WriteMessage(websocket.TextMessage, []byte(`{"error":"event stream unavailable"}`))
			return
		}

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		remoteAddr := c.RemoteAddr().String()
		slog.Debug("ws client connected", "remote", remoteAddr)

		var mu sync.Mutex
		subs := make(map[string]*nats.Subscription) // subject -> subscription

		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		subscribe := func(subject string) error {
			if _, exists := subs[subject]; exists {
				return writeJSON(map[string]string{"status": "already subscribed", "subject": subject})
			}
			s, err := nc.Subscribe(subject, func(msg *nats.Msg) {
				_ = writeJSON(json.RawMessage(msg.Data))
			})
			if err != nil {
				return writeJSON(map[string]string{"error": "subscribe failed: " + err.Error()})
			}
			subs[subject] = s
			return writeJSON(map[string]string{"status": "subscribed", "subject": subject})
		}

		// Pre-subscribe when the client asked for one session up front.
		if session := c.Query("session"); session != "" {
			if err := subscribe(natsadapter.StateSubject(session)); err != nil {
				slog.Warn("ws pre-subscribe failed", "remote", remoteAddr, "error", err)
				return
			}
		}

		// Keep-alive ping
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}

			var subject string
			switch m.Channel {
			case "", "state":
				if m.Session != "" {
					subject = natsadapter.StateSubject(m.Session)
				} else {
					subject = natsadapter.StateSubject(">")
				}
			case "voice":
				if m.Session != "" {
					subject = natsadapter.VoiceSubject(m.Session)
				} else {
					subject = natsadapter.VoiceSubject(">")
				}
			default:
				_ = writeJSON(map[string]string{"error": "unknown channel: " + m.Channel})
				continue
			}

			switch m.Action {
			case "subscribe":
				_ = subscribe(subject)

			case "unsubscribe":
				if s, exists := subs[subject]; exists {
					_ = s.Unsubscribe()
					delete(subs, subject)
					_ = writeJSON(map[string]string{"status": "unsubscribed", "subject": subject})
				} else {
					_ = writeJSON(map[string]string{"error": "not subscribed to " + subject})
				}

			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		close(done)
		for _, s := range subs {
			_ = s.Unsubscribe()
		}
		slog.Debug("ws client disconnected", "remote", remoteAddr)
	}
}
