// Package dialogue runs the per-call complaint conversation: one turn in,
// one prompt out, with retries, defaults and escalation decided per step.
package dialogue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anshu200710/ai-agent-sub000/pkg/backend"
	"github.com/anshu200710/ai-agent-sub000/pkg/classifier"
	"github.com/anshu200710/ai-agent-sub000/pkg/errorsx"
	"github.com/anshu200710/ai-agent-sub000/pkg/logging"
	"github.com/anshu200710/ai-agent-sub000/pkg/metrics"
	"github.com/anshu200710/ai-agent-sub000/pkg/outbox"
	"github.com/anshu200710/ai-agent-sub000/pkg/session"
	"github.com/anshu200710/ai-agent-sub000/pkg/speech"
	"github.com/anshu200710/ai-agent-sub000/pkg/taxonomy"
)

// TurnEvent is one inbound turn from the telephony platform.
type TurnEvent struct {
	CallID       string `json:"call_id"`
	Digits       string `json:"digits,omitempty"`
	Transcript   string `json:"transcript,omitempty"`
	CallerNumber string `json:"caller_number,omitempty"`
}

// Reply is what the transport should say or do next.
type Reply struct {
	Text        string `json:"text"`
	Language    string `json:"language"`
	Terminal    bool   `json:"terminal"`
	Escalate    bool   `json:"escalate,omitempty"`
	AgentNumber string `json:"agent_number,omitempty"`
	TicketID    string `json:"ticket_id,omitempty"`
	Step        string `json:"step"`
}

// Backend is the customer and ticketing API as the dialogue sees it.
type Backend interface {
	LookupCustomer(ctx context.Context, kind, id string) (*backend.Customer, error)
	SubmitComplaint(ctx context.Context, p backend.Complaint) backend.SubmitResult
}

type Config struct {
	Language      string         `mapstructure:"language"`
	AgentNumber   string         `mapstructure:"agent_number"`
	SilenceMax    int            `mapstructure:"silence_max"`
	MaxRejections int            `mapstructure:"max_rejections"`
	MinScore      int            `mapstructure:"min_score"`
	MaxCandidates int            `mapstructure:"max_candidates"`
	IdentifierMin int            `mapstructure:"identifier_min"`
	IdentifierMax int            `mapstructure:"identifier_max"`
	WorkStart     string         `mapstructure:"work_start"`
	WorkEnd       string         `mapstructure:"work_end"`
	DefaultFrom   string         `mapstructure:"default_from"`
	Timezone      string         `mapstructure:"timezone"`
	SubmitTimeout time.Duration  `mapstructure:"submit_timeout"`
	Thresholds    map[string]int `mapstructure:"thresholds"`
}

func (c Config) withDefaults() Config {
	if c.Language == "" {
		c.Language = LangEnglish
	}
	if c.SilenceMax <= 0 {
		c.SilenceMax = 3
	}
	if c.MaxRejections <= 0 {
		c.MaxRejections = 2
	}
	if c.MinScore <= 0 {
		c.MinScore = classifier.DefaultMinScore
	}
	if c.MaxCandidates <= 0 {
		c.MaxCandidates = speech.DefaultMaxCandidates
	}
	if c.IdentifierMin <= 0 {
		c.IdentifierMin = 4
	}
	if c.IdentifierMax <= 0 {
		c.IdentifierMax = 8
	}
	if c.WorkStart == "" {
		c.WorkStart = "08:00"
	}
	if c.WorkEnd == "" {
		c.WorkEnd = "20:00"
	}
	if c.DefaultFrom == "" {
		c.DefaultFrom = "10:00"
	}
	if c.Timezone == "" {
		c.Timezone = "Asia/Kolkata"
	}
	if c.SubmitTimeout <= 0 {
		c.SubmitTimeout = 90 * time.Second
	}
	return c
}

type stepHandler func(ctx context.Context, s *session.Session, in turnInput) (Reply, error)

// turnInput is a TurnEvent after normalization.
type turnInput struct {
	rawDigits string
	keypad    string
	raw       string
	text      string
}

func (in turnInput) empty() bool {
	return in.keypad == "" && in.text == "" && strings.Trim(in.rawDigits, " ") == ""
}

type Engine struct {
	cfg       Config
	store     session.Store
	catalog   *taxonomy.Catalog
	backend   Backend
	outbox    outbox.Outbox
	obs       metrics.Observer
	logger    *slog.Logger
	now       func() time.Time
	book      promptBook
	policies  map[session.Step]stepPolicy
	handlers  map[session.Step]stepHandler
	listeners []StateListener

	workStart, workEnd, defaultFrom clockTime
}

type Option func(*Engine)

// WithClock injects the time source used for dates and session stamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithObserver(o metrics.Observer) Option {
	return func(e *Engine) { e.obs = metrics.OrNoop(o) }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = logging.NewComponentLogger(l, "dialogue") }
}

func WithOutbox(o outbox.Outbox) Option {
	return func(e *Engine) {
		if o != nil {
			e.outbox = o
		}
	}
}

func WithListener(l StateListener) Option {
	return func(e *Engine) {
		if l != nil {
			e.listeners = append(e.listeners, l)
		}
	}
}

// New wires an engine. The store, catalog and backend are required.
func New(cfg Config, store session.Store, catalog *taxonomy.Catalog, be Backend, opts ...Option) (*Engine, error) {
	cfg = cfg.withDefaults()
	if store == nil || catalog == nil || be == nil {
		return nil, errorsx.Newf(errorsx.ReasonConfigInvalid, "dialogue: store, catalog and backend are required")
	}
	book, ok := lookupBook(cfg.Language)
	if !ok {
		return nil, errorsx.Newf(errorsx.ReasonConfigInvalid, "dialogue: unsupported language %q", cfg.Language)
	}
	policies, err := buildPolicies(cfg.Thresholds)
	if err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonConfigInvalid)
	}
	if cfg.IdentifierMin > cfg.IdentifierMax {
		return nil, errorsx.Newf(errorsx.ReasonConfigInvalid, "dialogue: identifier_min %d > identifier_max %d", cfg.IdentifierMin, cfg.IdentifierMax)
	}
	ws, ok1 := parseClock(cfg.WorkStart)
	we, ok2 := parseClock(cfg.WorkEnd)
	df, ok3 := parseClock(cfg.DefaultFrom)
	if !ok1 || !ok2 || !ok3 || ws >= we || df < ws || df >= we {
		return nil, errorsx.Newf(errorsx.ReasonConfigInvalid, "dialogue: bad working hours %s-%s (default %s)", cfg.WorkStart, cfg.WorkEnd, cfg.DefaultFrom)
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		loc = time.FixedZone("IST", 5*3600+1800)
	}

	e := &Engine{
		cfg:         cfg,
		store:       store,
		catalog:     catalog,
		backend:     be,
		outbox:      outbox.Noop{},
		obs:         metrics.NoopObserver{},
		logger:      logging.NewComponentLogger(nil, "dialogue"),
		now:         time.Now,
		book:        book,
		policies:    policies,
		workStart:   ws,
		workEnd:     we,
		defaultFrom: df,
	}
	for _, opt := range opts {
		opt(e)
	}
	clock := e.now
	e.now = func() time.Time { return clock().In(loc) }
	e.listeners = append(e.listeners, StateListenerFunc(e.recordTransition))
	e.handlers = map[session.Step]stepHandler{
		session.StepIVRMenu:          e.handleMenu,
		session.StepAskIdentifier:    e.handleIdentifier,
		session.StepConfirmCustomer:  e.handleConfirmCustomer,
		session.StepAskLocation:      e.handleLocation,
		session.StepAskPincode:       e.handlePincode,
		session.StepAskPhone:         e.handlePhone,
		session.StepConfirmPhone:     e.handleConfirmPhone,
		session.StepAskComplaint:     e.handleComplaint,
		session.StepAskSubComplaint:  e.handleSubComplaint,
		session.StepConfirmComplaint: e.handleConfirmComplaint,
		session.StepAskServiceDate:   e.handleServiceDate,
		session.StepAskTimeFrom:      e.handleTimeFrom,
		session.StepAskTimeTo:        e.handleTimeTo,
	}
	return e, nil
}

// HandleTurn advances the call named by ev by one turn. The only error
// returned is for a malformed event; every dialogue failure becomes a reply.
func (e *Engine) HandleTurn(ctx context.Context, ev TurnEvent) (reply Reply, err error) {
	callID := strings.TrimSpace(ev.CallID)
	if callID == "" {
		return Reply{}, errors.New("dialogue: empty call id")
	}
	now := e.now()
	s, ok := e.store.Get(callID)
	if !ok {
		s = session.New(callID, now)
		s.CallerNumber = strings.TrimSpace(ev.CallerNumber)
		reply = e.ask(s, promptWelcome, nil)
		e.store.Set(s)
		e.logger.Info("call_started", "call_id", callID, "trace_id", s.TraceID)
		e.recordTurn(s, "started")
		return reply, nil
	}
	if s.CallerNumber == "" {
		s.CallerNumber = strings.TrimSpace(ev.CallerNumber)
	}

	defer func() {
		if r := recover(); r != nil {
			reply = e.fatal(s, fmt.Errorf("panic: %v", r))
			err = nil
		}
		s.UpdatedAt = e.now()
		if reply.Terminal {
			e.store.Delete(callID)
		} else {
			e.store.Set(s)
		}
	}()

	in := turnInput{
		rawDigits: ev.Digits,
		keypad:    speech.KeypadDigits(ev.Digits),
		raw:       strings.TrimSpace(ev.Transcript),
		text:      speech.NormalizeTranscript(ev.Transcript),
	}
	reply, herr := e.process(ctx, s, in)
	if herr != nil {
		return e.fatal(s, herr), nil
	}
	return reply, nil
}

func (e *Engine) process(ctx context.Context, s *session.Session, in turnInput) (Reply, error) {
	if wantsRepeat(in) {
		e.recordTurn(s, "repeat")
		return e.repeat(s), nil
	}
	if wantsAgent(in) || (s.Step == session.StepIVRMenu && in.keypad == "0") {
		return e.escalate(s, "caller_request"), nil
	}
	if in.empty() {
		s.SilenceCount++
		if s.SilenceCount > e.cfg.SilenceMax {
			return e.escalate(s, "silence"), nil
		}
		e.recordTurn(s, "silence")
		return e.repeat(s), nil
	}
	s.SilenceCount = 0

	h, ok := e.handlers[s.Step]
	if !ok {
		return Reply{}, fmt.Errorf("no handler for step %s", s.Step)
	}
	return h(ctx, s, in)
}

// EndCall drops the session when the platform reports the call is over.
func (e *Engine) EndCall(callID, reason string) {
	s, ok := e.store.Get(callID)
	if !ok {
		return
	}
	e.store.Delete(callID)
	e.logger.Info("call_abandoned", "call_id", callID, "trace_id", s.TraceID, "step", s.Step.String(), "reason", reason)
	e.recordTurn(s, "abandoned")
}

// HasCall reports whether callID has an open session.
func (e *Engine) HasCall(callID string) bool {
	_, ok := e.store.Get(callID)
	return ok
}

// Language is the speech language tag of the prompt book in use.
func (e *Engine) Language() string { return e.book.speech }

// ask renders key for s and remembers it for repeats. Asking the same key
// twice in a row picks the next variant.
func (e *Engine) ask(s *session.Session, key string, vars map[string]string) Reply {
	variants := e.book.variants(key)
	idx := 0
	if key == s.LastPromptKey && len(variants) > 1 {
		idx = (s.LastVariant + 1) % len(variants)
	}
	text := ""
	if len(variants) > 0 {
		text = render(variants[idx], vars)
	}
	s.LastPromptKey = key
	s.LastVariant = idx
	s.LastPromptText = text
	return e.reply(s, text)
}

func (e *Engine) reply(s *session.Session, text string) Reply {
	return Reply{Text: text, Language: e.book.speech, Step: s.Step.String()}
}

func (e *Engine) repeat(s *session.Session) Reply {
	return e.reply(s, s.LastPromptText)
}

// advance moves to step and asks its prompt.
func (e *Engine) advance(s *session.Session, to session.Step, reason, key string, vars map[string]string) (Reply, error) {
	if err := e.transition(s, to, reason); err != nil {
		return Reply{}, err
	}
	e.recordTurn(s, "advance")
	return e.ask(s, key, vars), nil
}

// retry spends one attempt at the current step. Once the step's threshold is
// used up the step's exhaustion policy runs instead of another prompt.
func (e *Engine) retry(ctx context.Context, s *session.Session, key string, vars map[string]string) (Reply, error) {
	p := e.policies[s.Step]
	if s.RetryCount >= p.Threshold {
		if p.OnExhaust == exhaustEscalate {
			return e.escalate(s, "retries_exhausted"), nil
		}
		e.logger.Info("default_applied", "call_id", s.CallID, "step", s.Step.String(), "retries", s.RetryCount)
		e.obs.RecordEvent(metrics.NewEvent(metrics.EventDefault, 1, map[string]string{"step": s.Step.String()}))
		return e.applyDefault(ctx, s)
	}
	s.RetryCount++
	e.recordTurn(s, "retry")
	return e.ask(s, key, vars), nil
}

// escalate hands the caller to a human. The session is deleted by the caller
// of process because the reply is terminal.
func (e *Engine) escalate(s *session.Session, cause string) Reply {
	from := s.Step
	_ = e.transition(s, session.StepTerminal, "escalate:"+cause)
	e.logger.Warn("call_escalated", "call_id", s.CallID, "trace_id", s.TraceID, "step", from.String(), "cause", cause)
	e.obs.RecordEvent(metrics.NewEvent(metrics.EventEscalation, 1, map[string]string{"step": from.String(), "cause": cause}))
	r := e.ask(s, promptEscalate, nil)
	r.Terminal = true
	r.Escalate = true
	r.AgentNumber = e.cfg.AgentNumber
	r.Step = from.String()
	return r
}

func (e *Engine) fatal(s *session.Session, err error) Reply {
	err = errorsx.Wrap(err, errorsx.ReasonDialogueInternal)
	e.logger.Error("turn_failed", "call_id", s.CallID, "trace_id", s.TraceID, "step", s.Step.String(),
		"error", err.Error(), "reason_code", string(errorsx.Reason(err)))
	return e.escalate(s, "internal_error")
}

func (e *Engine) recordTurn(s *session.Session, outcome string) {
	e.obs.RecordEvent(metrics.NewEvent(metrics.EventTurn, 1, map[string]string{
		"step":    s.Step.String(),
		"outcome": outcome,
	}))
}

func (e *Engine) recordTransition(ev StateChange) {
	e.logger.Debug("step_transition", "call_id", ev.CallID, "from", ev.FromState.String(), "to", ev.ToState.String(), "reason", ev.Reason)
	e.obs.RecordEvent(metrics.NewEvent(metrics.EventTransition, 1, map[string]string{
		"from": ev.FromState.String(),
		"to":   ev.ToState.String(),
	}))
}
