// Package backend talks to the customer and ticketing API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/anshu200710/ai-agent-sub000/pkg/errorsx"
	"github.com/anshu200710/ai-agent-sub000/pkg/logging"
	"github.com/anshu200710/ai-agent-sub000/pkg/metrics"
	"github.com/anshu200710/ai-agent-sub000/pkg/redact"
	"github.com/anshu200710/ai-agent-sub000/pkg/resilience"
	"github.com/google/uuid"
)

// Lookup kinds.
const (
	KindMachine = "machine"
	KindPhone   = "phone"
)

type Config struct {
	BaseURL          string        `mapstructure:"base_url"`
	APIKey           string        `mapstructure:"api_key"`
	Timeout          time.Duration `mapstructure:"timeout"`
	SubmitAttempts   int           `mapstructure:"submit_attempts"`
	SubmitDelay      time.Duration `mapstructure:"submit_delay"`
	BreakerThreshold int           `mapstructure:"breaker_threshold"`
	BreakerCooldown  time.Duration `mapstructure:"breaker_cooldown"`
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = 20 * time.Second
	}
	if c.SubmitAttempts <= 0 {
		c.SubmitAttempts = 3
	}
	if c.SubmitDelay <= 0 {
		c.SubmitDelay = 2 * time.Second
	}
	if c.BreakerThreshold <= 0 {
		c.BreakerThreshold = 5
	}
	if c.BreakerCooldown <= 0 {
		c.BreakerCooldown = 30 * time.Second
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	return c
}

// Customer is the normalized lookup result.
type Customer struct {
	Name                string
	City                string
	Model               string
	Phone               string
	BusinessPartnerCode string
	InstallDate         string
	MachineID           string
}

// Complaint is the payload sent to the ticketing API.
type Complaint struct {
	CallID              string          `json:"call_id"`
	MachineNo           string          `json:"machine_no"`
	CustomerName        string          `json:"customer_name"`
	CustomerPhone       string          `json:"customer_phone"`
	ContactPhone        string          `json:"contact_phone"`
	BusinessPartnerCode string          `json:"bp_code,omitempty"`
	Model               string          `json:"machine_model,omitempty"`
	City                string          `json:"city,omitempty"`
	Complaints          []ComplaintLine `json:"complaints"`
	Description         string          `json:"description"`
	Branch              string          `json:"branch"`
	Outlet              string          `json:"outlet"`
	CityCode            string          `json:"city_code"`
	Lat                 float64         `json:"lat"`
	Lng                 float64         `json:"lng"`
	Address             string          `json:"address"`
	Pincode             string          `json:"pincode,omitempty"`
	ServiceDate         string          `json:"service_date"`
	FromTime            string          `json:"from_time"`
	ToTime              string          `json:"to_time"`
	JobLocation         string          `json:"job_location"`
}

type ComplaintLine struct {
	Category    string `json:"category"`
	SubCategory string `json:"sub_category"`
}

// SubmitResult never carries a Go error across to the dialogue; callers read
// Success and log Error.
type SubmitResult struct {
	Success  bool
	TicketID string
	Error    string
	Attempts int
}

type Client struct {
	cfg     Config
	http    *http.Client
	retry   resilience.RetryPolicy
	breaker *resilience.CircuitBreaker
	obs     metrics.Observer
	logger  *slog.Logger
}

type Option func(*Client)

// WithHTTPClient swaps the transport, e.g. for tests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithObserver(o metrics.Observer) Option {
	return func(c *Client) { c.obs = metrics.OrNoop(o) }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = logging.NewComponentLogger(l, "backend") }
}

func New(cfg Config, opts ...Option) *Client {
	cfg = cfg.withDefaults()
	c := &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		retry:   resilience.NewRetryPolicy(cfg.SubmitAttempts, cfg.SubmitDelay, IsTransient),
		breaker: resilience.NewCircuitBreaker(cfg.BreakerThreshold, cfg.BreakerCooldown, IsTransient),
		obs:     metrics.NoopObserver{},
		logger:  logging.NewComponentLogger(nil, "backend"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type lookupEnvelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    *lookupCustomer `json:"data"`
}

type lookupCustomer struct {
	CustomerName string `json:"customer_name"`
	City         string `json:"city"`
	Model        string `json:"machine_model"`
	Mobile       string `json:"mobile"`
	BPCode       string `json:"bp_code"`
	InstallDate  string `json:"install_date"`
	MachineNo    string `json:"machine_no"`
}

// LookupCustomer fetches the customer behind a machine number or phone.
// A miss of any kind other than a transport failure is (nil, nil).
func (c *Client) LookupCustomer(ctx context.Context, kind, id string) (*Customer, error) {
	start := time.Now()
	result := "miss"
	defer func() {
		c.obs.RecordEvent(metrics.NewEvent(metrics.EventLookup, time.Since(start).Seconds(),
			map[string]string{"kind": kind, "result": result}))
	}()

	if !c.breaker.Allow() {
		result = "circuit_open"
		return nil, errorsx.Wrap(resilience.ErrCircuitOpen, errorsx.ReasonLookupFailed)
	}
	param := "machineNo"
	if kind == KindPhone {
		param = "mobile"
	}
	q := url.Values{}
	q.Set(param, id)
	endpoint := c.cfg.BaseURL + "/customers?" + q.Encode()

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonLookupFailed)
	}
	c.decorate(req)

	resp, err := c.http.Do(req)
	if err != nil {
		result = "error"
		c.breaker.OnError(err)
		c.logger.Warn("lookup_failed", "kind", kind, "id", redact.Digits(id),
			"error", err.Error(), "reason_code", string(errorsx.ReasonLookupFailed))
		return nil, errorsx.Wrap(err, errorsx.ReasonLookupFailed)
	}
	defer resp.Body.Close()
	c.breaker.OnSuccess()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Info("lookup_not_found", "kind", kind, "id", redact.Digits(id), "http_status", resp.StatusCode)
		return nil, nil
	}
	var env lookupEnvelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&env); err != nil {
		c.logger.Warn("lookup_malformed_body", "kind", kind, "error", err.Error())
		return nil, nil
	}
	if env.Status != http.StatusOK || env.Data == nil {
		c.logger.Info("lookup_not_found", "kind", kind, "id", redact.Digits(id), "status", env.Status,
			"reason_code", string(errorsx.ReasonLookupNotFound))
		return nil, nil
	}
	result = "hit"
	d := env.Data
	cust := &Customer{
		Name:                strings.TrimSpace(d.CustomerName),
		City:                strings.TrimSpace(d.City),
		Model:               strings.TrimSpace(d.Model),
		Phone:               strings.TrimSpace(d.Mobile),
		BusinessPartnerCode: strings.TrimSpace(d.BPCode),
		InstallDate:         strings.TrimSpace(d.InstallDate),
		MachineID:           strings.TrimSpace(d.MachineNo),
	}
	if cust.MachineID == "" && kind == KindMachine {
		cust.MachineID = id
	}
	return cust, nil
}

type submitEnvelope struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    struct {
		SapID    string `json:"sap_id"`
		TicketID string `json:"ticket_id"`
	} `json:"data"`
}

// SubmitComplaint posts the complaint, retrying transient network failures
// with a fixed delay.
func (c *Client) SubmitComplaint(ctx context.Context, p Complaint) SubmitResult {
	start := time.Now()
	body, err := json.Marshal(p)
	if err != nil {
		return SubmitResult{Error: err.Error()}
	}

	var ticket string
	attempts, err := c.retry.Do(ctx, func(ctx context.Context) error {
		id, err := c.submitOnce(ctx, body)
		if err != nil {
			return err
		}
		ticket = id
		return nil
	})

	res := SubmitResult{Success: err == nil, TicketID: ticket, Attempts: attempts}
	outcome := "success"
	if err != nil {
		res.Error = err.Error()
		outcome = string(errorsx.Reason(err))
		c.logger.Error("submit_failed", "call_id", p.CallID, "attempts", attempts,
			"error", err.Error(), "reason_code", outcome)
	} else {
		c.logger.Info("submit_ok", "call_id", p.CallID, "ticket_id", ticket, "attempts", attempts)
	}
	c.obs.RecordEvent(metrics.MetricsEvent{
		Name:   metrics.EventSubmit,
		Time:   time.Now(),
		Value:  time.Since(start).Seconds(),
		Tags:   map[string]string{"result": outcome},
		Fields: map[string]any{"attempts": attempts},
	})
	return res
}

func (c *Client) submitOnce(ctx context.Context, body []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/complaints", bytes.NewReader(body))
	if err != nil {
		return "", errorsx.Wrap(err, errorsx.ReasonSubmitFailed)
	}
	req.Header.Set("Content-Type", "application/json")
	c.decorate(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errorsx.Wrap(err, errorsx.ReasonSubmitFailed)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	var env submitEnvelope
	decodeErr := json.Unmarshal(raw, &env)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := env.Message
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		return "", errorsx.Newf(errorsx.ReasonSubmitRejected, "http %d: %s", resp.StatusCode, msg)
	}
	if decodeErr != nil {
		return "", errorsx.Newf(errorsx.ReasonSubmitRejected, "malformed response: %v", decodeErr)
	}
	if env.Status != 0 && env.Status != http.StatusOK {
		return "", errorsx.Newf(errorsx.ReasonSubmitRejected, "status %d: %s", env.Status, env.Message)
	}
	id := env.Data.SapID
	if id == "" {
		id = env.Data.TicketID
	}
	return id, nil
}

func (c *Client) decorate(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
}
