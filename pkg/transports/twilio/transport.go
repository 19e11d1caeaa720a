package twilio

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/anshu200710/ai-agent-sub000/pkg/dialogue"
	"github.com/anshu200710/ai-agent-sub000/pkg/errorsx"
	"github.com/anshu200710/ai-agent-sub000/pkg/logging"
	"github.com/anshu200710/ai-agent-sub000/pkg/redact"
	"github.com/anshu200710/ai-agent-sub000/pkg/transports"
	"github.com/gorilla/mux"
	twilioclient "github.com/twilio/twilio-go/client"
	"github.com/twilio/twilio-go/twiml"
)

type Config struct {
	ServerAddr         string        `mapstructure:"server_addr"`
	PublicURL          string        `mapstructure:"public_url"`
	AuthToken          string        `mapstructure:"auth_token"`
	AccountSID         string        `mapstructure:"account_sid"`
	FromNumber         string        `mapstructure:"from_number"`
	VoicePath          string        `mapstructure:"voice_path"`
	StatusCallbackPath string        `mapstructure:"status_callback_path"`
	SpeechTimeout      string        `mapstructure:"speech_timeout"`
	GatherTimeout      int           `mapstructure:"gather_timeout"`
	SpeechModel        string        `mapstructure:"speech_model"`
	TurnTimeout        time.Duration `mapstructure:"turn_timeout"`
}

// SettingsSchema lists the keys accepted under transports.settings.
var SettingsSchema = []string{
	"server_addr", "public_url", "auth_token", "account_sid", "from_number", "voice_path",
	"status_callback_path", "speech_timeout", "gather_timeout", "speech_model", "turn_timeout",
}

func (c Config) withDefaults() Config {
	if c.ServerAddr == "" {
		c.ServerAddr = ":8080"
	}
	if c.VoicePath == "" {
		c.VoicePath = "/voice"
	}
	if c.StatusCallbackPath == "" {
		c.StatusCallbackPath = "/status"
	}
	if c.SpeechTimeout == "" {
		c.SpeechTimeout = "auto"
	}
	if c.GatherTimeout <= 0 {
		c.GatherTimeout = 6
	}
	if c.TurnTimeout <= 0 {
		c.TurnTimeout = 10 * time.Second
	}
	return c
}

// Transport answers Twilio voice webhooks. Every webhook is one dialogue turn:
// the caller's speech or keypad input comes in, TwiML with the next prompt
// goes out inside a Gather that posts the following turn back here.
type Transport struct {
	cfg      Config
	dlg      transports.Dialogue
	logger   *slog.Logger
	draining atomic.Bool
}

func New(cfg Config, dlg transports.Dialogue, logger *slog.Logger) *Transport {
	return &Transport{
		cfg:    cfg.withDefaults(),
		dlg:    dlg,
		logger: logging.NewComponentLogger(logger, "twilio"),
	}
}

func (t *Transport) Name() string { return "twilio" }

func (t *Transport) ReadyFields() map[string]any {
	return map[string]any{
		"webhook_url":         t.voiceWebhookURL(),
		"status_callback_url": t.statusCallbackURL(),
	}
}

// Register mounts the webhook routes.
func (t *Transport) Register(r *mux.Router) {
	r.HandleFunc(t.cfg.VoicePath, t.handleVoice).Methods(http.MethodPost)
	r.HandleFunc(t.cfg.StatusCallbackPath, t.handleStatusCallback).Methods(http.MethodPost)
}

// Drain makes new calls get a polite hangup while in-flight calls finish.
func (t *Transport) Drain() { t.draining.Store(true) }

// callTracker is implemented by dialogues that can tell an open call from a
// new one.
type callTracker interface {
	HasCall(callID string) bool
}

// inProgress reports whether callID already has a session, so draining only
// turns away new calls.
func (t *Transport) inProgress(callID string) bool {
	tr, ok := t.dlg.(callTracker)
	return ok && tr.HasCall(callID)
}

// Dial places an outbound call that lands on this transport's voice webhook.
func (t *Transport) Dial(ctx context.Context, to, from, url string) (string, error) {
	return NewDialer(t.cfg).Dial(ctx, to, from, url)
}

// DialWithOptions places an outbound call using Twilio REST API with options.
func (t *Transport) DialWithOptions(ctx context.Context, to, from, url string, opts transports.DialOptions) (string, error) {
	return NewDialer(t.cfg).DialWithOptions(ctx, to, from, url, opts)
}

func (t *Transport) handleVoice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if t.cfg.AuthToken != "" && !t.validateTwilioRequest(r) {
		t.logger.Warn("twilio_invalid_signature", "reason_code", string(errorsx.ReasonTransportInvalidSignature))
		w.WriteHeader(http.StatusForbidden)
		return
	}
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	ev := dialogue.TurnEvent{
		CallID:       r.FormValue("CallSid"),
		Digits:       r.FormValue("Digits"),
		Transcript:   r.FormValue("SpeechResult"),
		CallerNumber: r.FormValue("From"),
	}
	if ev.CallID == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	t.logger.Debug("twilio_turn", "call_id", ev.CallID, "digits", redact.Digits(ev.Digits),
		"transcript", redact.Text(ev.Transcript), "confidence", r.FormValue("Confidence"))

	var reply dialogue.Reply
	if t.draining.Load() && !t.inProgress(ev.CallID) {
		reply = dialogue.Reply{Text: "We are not taking calls right now. Please call again shortly.", Language: t.dlg.Language(), Terminal: true}
	} else {
		ctx, cancel := context.WithTimeout(r.Context(), t.cfg.TurnTimeout)
		defer cancel()
		var err error
		reply, err = t.dlg.HandleTurn(ctx, ev)
		if err != nil {
			t.logger.Warn("twilio_turn_rejected", "call_id", ev.CallID, "error", err.Error())
			w.WriteHeader(http.StatusBadRequest)
			return
		}
	}

	body, err := t.render(reply)
	if err != nil {
		err = errorsx.Wrap(err, errorsx.ReasonTransportRender)
		t.logger.Error("twilio_render_failed", "call_id", ev.CallID, "error", err.Error(), "reason_code", string(errorsx.Reason(err)))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/xml")
	_, _ = w.Write([]byte(body))
}

// render turns a reply into TwiML. Open turns wrap the prompt in a Gather that
// posts even on silence, so the dialogue sees and counts empty turns.
func (t *Transport) render(reply dialogue.Reply) (string, error) {
	lang := reply.Language
	if lang == "" {
		lang = t.dlg.Language()
	}
	say := &twiml.VoiceSay{Message: reply.Text, Language: lang}
	var elems []twiml.Element
	switch {
	case reply.Escalate && reply.AgentNumber != "":
		elems = []twiml.Element{say, &twiml.VoiceDial{Number: reply.AgentNumber}}
	case reply.Terminal:
		elems = []twiml.Element{say, &twiml.VoiceHangup{}}
	default:
		gather := &twiml.VoiceGather{
			Input:               "dtmf speech",
			Action:              t.actionURL(),
			Method:              http.MethodPost,
			Language:            lang,
			SpeechTimeout:       t.cfg.SpeechTimeout,
			SpeechModel:         t.cfg.SpeechModel,
			Timeout:             strconv.Itoa(t.cfg.GatherTimeout),
			ActionOnEmptyResult: "true",
			InnerElements:       []twiml.Element{say},
		}
		elems = []twiml.Element{gather}
	}
	return twiml.Voice(elems)
}

func (t *Transport) handleStatusCallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if t.cfg.AuthToken != "" && !t.validateTwilioRequest(r) {
		t.logger.Warn("twilio_status_invalid_signature", "reason_code", string(errorsx.ReasonTransportInvalidSignature))
		w.WriteHeader(http.StatusForbidden)
		return
	}
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusOK)
		return
	}
	callSID := r.FormValue("CallSid")
	reason := normalizeCallEndReason(r.FormValue("CallStatus"))
	if reason == "" || callSID == "" {
		w.WriteHeader(http.StatusOK)
		return
	}
	t.dlg.EndCall(callSID, reason)
	w.WriteHeader(http.StatusOK)
}

func (t *Transport) actionURL() string {
	if t.cfg.PublicURL != "" {
		return strings.TrimRight(withScheme(t.cfg.PublicURL), "/") + t.cfg.VoicePath
	}
	return t.cfg.VoicePath
}

func (t *Transport) voiceWebhookURL() string {
	return t.publicURL(t.cfg.VoicePath)
}

func (t *Transport) statusCallbackURL() string {
	return t.publicURL(t.cfg.StatusCallbackPath)
}

func (t *Transport) publicURL(path string) string {
	if t.cfg.PublicURL != "" {
		return "https://" + normalizePublicURL(t.cfg.PublicURL) + path
	}
	addr := t.cfg.ServerAddr
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + path
}

func (t *Transport) validateTwilioRequest(r *http.Request) bool {
	signature := r.Header.Get("X-Twilio-Signature")
	if signature == "" {
		return false
	}
	if t.cfg.AuthToken == "" {
		return false
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return false
	}
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))

	validator := twilioclient.NewRequestValidator(t.cfg.AuthToken)
	return validator.ValidateBody(t.requestURL(r), body, signature)
}

func (t *Transport) requestURL(r *http.Request) string {
	if t.cfg.PublicURL != "" {
		base := strings.TrimRight(withScheme(t.cfg.PublicURL), "/")
		return base + r.URL.RequestURI()
	}
	scheme := r.URL.Scheme
	if scheme == "" {
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		} else {
			scheme = "https"
		}
	}
	host := r.Host
	if host == "" {
		host = strings.TrimPrefix(t.cfg.ServerAddr, ":")
	}
	return scheme + "://" + host + r.URL.RequestURI()
}

func normalizeCallEndReason(raw string) string {
	r := strings.ToLower(strings.TrimSpace(raw))
	if r == "" {
		return ""
	}
	switch r {
	case "queued", "ringing", "in-progress", "inprogress":
		return ""
	case "completed", "call_ended", "call-ended", "completed_by_user", "hangup":
		return "completed"
	case "busy":
		return "busy"
	case "no_answer", "noanswer", "no-answer":
		return "no_answer"
	case "failed", "error", "canceled", "cancelled", "transport_closed":
		return "failed"
	default:
		return "unknown"
	}
}

func normalizePublicURL(v string) string {
	v = strings.TrimPrefix(v, "https://")
	v = strings.TrimPrefix(v, "http://")
	return strings.TrimRight(v, "/")
}

func withScheme(v string) string {
	if strings.HasPrefix(v, "http://") || strings.HasPrefix(v, "https://") {
		return v
	}
	return "https://" + v
}
