// Package outbox queues complaints the ticketing API could not accept so they
// can be reconciled out of band.
package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/anshu200710/ai-agent-sub000/pkg/backend"
	"github.com/anshu200710/ai-agent-sub000/pkg/errorsx"
	"github.com/go-redis/redis/v8"
)

// Entry kinds. Reconciliation must look up an accepted entry before filing it
// again.
const (
	KindFailed   = "submit_failed"
	KindAccepted = "accepted_without_id"
)

// Entry is one submission that did not yield a ticket id.
type Entry struct {
	ID        string            `json:"id"`
	Kind      string            `json:"kind"`
	CallID    string            `json:"call_id"`
	TraceID   string            `json:"trace_id"`
	Payload   backend.Complaint `json:"payload"`
	Error     string            `json:"error"`
	Attempts  int               `json:"attempts"`
	CreatedAt time.Time         `json:"created_at"`
}

type Outbox interface {
	Enqueue(ctx context.Context, e Entry) error
	Close() error
}

type Config struct {
	Provider string `mapstructure:"provider"`
	RedisURL string `mapstructure:"redis_url"`
	Key      string `mapstructure:"key"`
}

const DefaultKey = "complaintline:outbox"

// New builds the configured provider: redis, memory or none.
func New(ctx context.Context, cfg Config) (Outbox, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "none":
		return Noop{}, nil
	case "memory":
		return NewMemory(), nil
	case "redis":
		return NewRedis(ctx, cfg.RedisURL, cfg.Key)
	default:
		return nil, errorsx.Newf(errorsx.ReasonConfigInvalid, "unknown outbox provider %q", cfg.Provider)
	}
}

type Noop struct{}

func (Noop) Enqueue(context.Context, Entry) error { return nil }
func (Noop) Close() error                         { return nil }

type Memory struct {
	mu      sync.Mutex
	entries []Entry
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Enqueue(_ context.Context, e Entry) error {
	m.mu.Lock()
	m.entries = append(m.entries, e)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Entry(nil), m.entries...)
}

func (m *Memory) Close() error { return nil }

// Redis pushes entries as JSON onto a list; reconcilers pop from the tail.
type Redis struct {
	rdb *redis.Client
	key string
}

func NewRedis(ctx context.Context, rawURL, key string) (*Redis, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, errorsx.Wrap(fmt.Errorf("parse redis url: %w", err), errorsx.ReasonConfigInvalid)
	}
	opt.MaxRetries = 3
	opt.DialTimeout = 5 * time.Second
	opt.ReadTimeout = 3 * time.Second
	opt.WriteTimeout = 3 * time.Second
	rdb := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errorsx.Wrap(fmt.Errorf("connect redis: %w", err), errorsx.ReasonOutboxEnqueue)
	}
	if key == "" {
		key = DefaultKey
	}
	return &Redis{rdb: rdb, key: key}, nil
}

func (r *Redis) Enqueue(ctx context.Context, e Entry) error {
	b, err := json.Marshal(e)
	if err != nil {
		return errorsx.Wrap(err, errorsx.ReasonOutboxEnqueue)
	}
	if err := r.rdb.LPush(ctx, r.key, b).Err(); err != nil {
		return errorsx.Wrap(err, errorsx.ReasonOutboxEnqueue)
	}
	return nil
}

// Len reports the queue depth.
func (r *Redis) Len(ctx context.Context) (int64, error) {
	return r.rdb.LLen(ctx, r.key).Result()
}

func (r *Redis) Close() error { return r.rdb.Close() }
