package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/anshu200710/ai-agent-sub000/pkg/backend"
	"github.com/anshu200710/ai-agent-sub000/pkg/config"
	"github.com/anshu200710/ai-agent-sub000/pkg/dialogue"
	"github.com/anshu200710/ai-agent-sub000/pkg/logging"
	"github.com/anshu200710/ai-agent-sub000/pkg/metrics"
	"github.com/anshu200710/ai-agent-sub000/pkg/observers"
	"github.com/anshu200710/ai-agent-sub000/pkg/outbox"
	"github.com/anshu200710/ai-agent-sub000/pkg/runner"
	"github.com/anshu200710/ai-agent-sub000/pkg/server"
	"github.com/anshu200710/ai-agent-sub000/pkg/session"
	"github.com/anshu200710/ai-agent-sub000/pkg/taxonomy"
	"github.com/anshu200710/ai-agent-sub000/pkg/transports/console"
	"github.com/anshu200710/ai-agent-sub000/pkg/transports/twilio"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type app struct {
	cfg      config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	observer metrics.Observer
	async    *metrics.AsyncObserver
	outbox   outbox.Outbox
	store    *session.LRUStore
	timeline *observers.TimelineObserver
	engine   *dialogue.Engine
	twilio   *twilio.Transport
	console  *console.Transport
	http     *http.Server
}

func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger, registry: prometheus.NewRegistry()}

	catalog, err := taxonomy.Load(cfg.TaxonomyPath)
	if err != nil {
		return nil, fmt.Errorf("taxonomy: %w", err)
	}
	logger.Info("taxonomy_loaded", "version", catalog.Version, "categories", len(catalog.Categories), "service_centers", len(catalog.Centers))

	a.observer = a.buildObserver()

	obCfg, err := cfg.OutboxConfig()
	if err != nil {
		return nil, err
	}
	a.outbox, err = outbox.New(ctx, obCfg)
	if err != nil {
		return nil, fmt.Errorf("outbox: %w", err)
	}

	be := backend.New(cfg.Backend,
		backend.WithObserver(a.observer),
		backend.WithLogger(logging.NewComponentLogger(logger, "backend")),
	)

	a.store = session.NewLRUStore(cfg.Session.MaxSessions, cfg.Session.TTL(), logging.NewComponentLogger(logger, "session"))

	opts := []dialogue.Option{
		dialogue.WithObserver(a.observer),
		dialogue.WithLogger(logging.NewComponentLogger(logger, "dialogue")),
		dialogue.WithOutbox(a.outbox),
	}
	if cfg.Timeline.Dir != "" {
		a.timeline = observers.NewTimelineObserver(cfg.Timeline.Dir)
		opts = append(opts, dialogue.WithListener(a.timeline))
	}
	a.engine, err = dialogue.New(cfg.Dialogue, a.store, catalog, be, opts...)
	if err != nil {
		_ = a.outbox.Close()
		return nil, fmt.Errorf("dialogue: %w", err)
	}

	var routes []server.Registrar
	if strings.EqualFold(strings.TrimSpace(cfg.Transports.Provider), "twilio") {
		tw, err := cfg.TwilioConfig()
		if err != nil {
			_ = a.outbox.Close()
			return nil, err
		}
		a.twilio = twilio.New(tw, a.engine, logger)
		routes = append(routes, a.twilio)
		logger.Info("transport_ready", fieldsToArgs(a.twilio.ReadyFields())...)
	}
	if cfg.Console.Enabled {
		a.console = console.New(cfg.Console, a.engine, logger)
		routes = append(routes, a.console)
		logger.Info("transport_ready", fieldsToArgs(a.console.ReadyFields())...)
	}

	a.http = server.NewHTTPServer(cfg.Server, a.registry, a.health, logger, routes...)
	return a, nil
}

func (a *app) buildObserver() metrics.Observer {
	var sinks metrics.Multi
	if a.cfg.Metrics.Prometheus {
		a.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		sinks = append(sinks, metrics.NewPrometheusObserver(a.registry))
	}
	if a.cfg.Metrics.LogEvents {
		sinks = append(sinks, metrics.NewLogObserver(logging.NewComponentLogger(a.logger, "metrics"), slog.LevelDebug))
	}
	if len(sinks) == 0 {
		return metrics.NoopObserver{}
	}
	var obs metrics.Observer = sinks
	if rate := a.cfg.Metrics.SampleRate; rate < 1 {
		obs = metrics.NewSamplingObserver(obs, rate)
	}
	if a.cfg.Metrics.AsyncBuffer > 0 {
		a.async = metrics.NewAsyncObserver(obs, a.cfg.Metrics.AsyncBuffer)
		obs = a.async
	}
	return obs
}

func (a *app) health() map[string]any {
	out := map[string]any{
		"sessions": a.store.Len(),
		"language": a.engine.Language(),
	}
	if a.console != nil {
		out["console_active"] = a.console.Active()
	}
	if a.async != nil {
		out["metrics_dropped"] = a.async.Dropped()
	}
	return out
}

// evictLoop reclaims idle sessions until ctx ends.
func (a *app) evictLoop(ctx context.Context) error {
	ticker := time.NewTicker(a.cfg.Session.EvictInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			a.evictOnce(now)
		}
	}
}

func (a *app) evictOnce(now time.Time) int {
	n := a.store.Evict(a.cfg.Session.MaxIdle(), now)
	if n > 0 {
		a.observer.RecordEvent(metrics.NewEvent(metrics.EventEvicted, float64(n), nil))
		a.logger.Info("sessions_evicted", "count", n)
	}
	a.observer.RecordEvent(metrics.NewEvent(metrics.EventSessions, float64(a.store.Len()), nil))
	if a.timeline != nil {
		purged, err := observers.PurgeArtifacts(a.timeline.Dir(), a.cfg.Timeline.Retention())
		if err != nil {
			a.logger.Warn("timeline_purge_failed", "error", err)
		} else if purged > 0 {
			a.logger.Info("timeline_purged", "files", purged)
		}
	}
	return n
}

// drainer stops new telephony calls and waits for open sessions to close
// until ctx ends.
func (a *app) drainer() runner.Drainer {
	return runner.DrainFunc(func(ctx context.Context) error {
		if a.twilio != nil {
			a.twilio.Drain()
		}
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for a.store.Len() > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}
		return nil
	})
}

func (a *app) close(ctx context.Context) error {
	err := a.http.Shutdown(ctx)
	if a.async != nil {
		a.async.Close()
	}
	if cerr := a.outbox.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func fieldsToArgs(fields map[string]any) []any {
	out := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		out = append(out, k, v)
	}
	return out
}
