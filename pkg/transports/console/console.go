// Package console exposes the dialogue over a websocket so a call can be
// driven from a browser or script without telephony.
package console

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/anshu200710/ai-agent-sub000/pkg/dialogue"
	"github.com/anshu200710/ai-agent-sub000/pkg/logging"
	"github.com/anshu200710/ai-agent-sub000/pkg/transports"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

type Config struct {
	Enabled        bool          `mapstructure:"enabled"`
	Path           string        `mapstructure:"path"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	TurnTimeout    time.Duration `mapstructure:"turn_timeout"`
}

func (c Config) withDefaults() Config {
	if c.Path == "" {
		c.Path = "/console"
	}
	if c.TurnTimeout <= 0 {
		c.TurnTimeout = 10 * time.Second
	}
	return c
}

// Message is one client frame. Type "hangup" ends the call; anything else is
// a turn.
type Message struct {
	Type         string `json:"type,omitempty"`
	Digits       string `json:"digits,omitempty"`
	Transcript   string `json:"transcript,omitempty"`
	CallerNumber string `json:"caller_number,omitempty"`
}

// Transport serves one dialogue call per websocket connection. The call id is
// minted on connect and the greeting is pushed straight away.
type Transport struct {
	cfg      Config
	dlg      transports.Dialogue
	logger   *slog.Logger
	upgrader websocket.Upgrader
	active   atomic.Int64
}

func New(cfg Config, dlg transports.Dialogue, logger *slog.Logger) *Transport {
	t := &Transport{
		cfg:    cfg.withDefaults(),
		dlg:    dlg,
		logger: logging.NewComponentLogger(logger, "console"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
	t.upgrader.CheckOrigin = t.checkOrigin
	return t
}

func (t *Transport) Name() string { return "console" }

func (t *Transport) Register(r *mux.Router) {
	r.Handle(t.cfg.Path, t)
}

func (t *Transport) ReadyFields() map[string]any {
	return map[string]any{"console_path": t.cfg.Path}
}

// Active reports open console calls.
func (t *Transport) Active() int64 { return t.active.Load() }

func (t *Transport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := t.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	t.active.Add(1)
	defer t.active.Add(-1)

	callID := "console-" + uuid.NewString()
	caller := r.URL.Query().Get("caller")
	t.logger.Info("console_call_started", "call_id", callID)

	reply, ok := t.turn(r.Context(), dialogue.TurnEvent{CallID: callID, CallerNumber: caller})
	if !ok || conn.WriteJSON(reply) != nil || reply.Terminal {
		t.dlg.EndCall(callID, "completed")
		return
	}
	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			t.dlg.EndCall(callID, "transport_closed")
			return
		}
		if strings.EqualFold(msg.Type, "hangup") {
			t.dlg.EndCall(callID, "completed")
			return
		}
		ev := dialogue.TurnEvent{CallID: callID, Digits: msg.Digits, Transcript: msg.Transcript, CallerNumber: msg.CallerNumber}
		if ev.CallerNumber == "" {
			ev.CallerNumber = caller
		}
		reply, ok := t.turn(r.Context(), ev)
		if !ok {
			t.dlg.EndCall(callID, "failed")
			return
		}
		if err := conn.WriteJSON(reply); err != nil {
			t.dlg.EndCall(callID, "transport_closed")
			return
		}
		if reply.Terminal {
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "call ended"))
			t.logger.Info("console_call_ended", "call_id", callID, "ticket_id", reply.TicketID, "escalated", reply.Escalate)
			return
		}
	}
}

func (t *Transport) turn(ctx context.Context, ev dialogue.TurnEvent) (dialogue.Reply, bool) {
	ctx, cancel := context.WithTimeout(ctx, t.cfg.TurnTimeout)
	defer cancel()
	reply, err := t.dlg.HandleTurn(ctx, ev)
	if err != nil {
		t.logger.Warn("console_turn_failed", "call_id", ev.CallID, "error", err.Error())
		return dialogue.Reply{}, false
	}
	return reply, true
}

// checkOrigin admits clients without an Origin header, the configured
// origins, or, when none are configured, the same host only.
func (t *Transport) checkOrigin(r *http.Request) bool {
	origin := strings.TrimRight(strings.TrimSpace(r.Header.Get("Origin")), "/")
	if origin == "" {
		return true
	}
	if len(t.cfg.AllowedOrigins) == 0 {
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
	for _, allowed := range t.cfg.AllowedOrigins {
		if strings.EqualFold(strings.TrimRight(strings.TrimSpace(allowed), "/"), origin) {
			return true
		}
	}
	return false
}
