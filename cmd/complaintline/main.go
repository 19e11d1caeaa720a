// Command complaintline answers machine-service complaint calls: it serves
// the telephony webhooks, the optional websocket console, health and metrics.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/anshu200710/ai-agent-sub000/pkg/config"
	"github.com/anshu200710/ai-agent-sub000/pkg/logging"
	"github.com/anshu200710/ai-agent-sub000/pkg/redact"
	"github.com/anshu200710/ai-agent-sub000/pkg/runner"
	"github.com/anshu200710/ai-agent-sub000/pkg/transports"
	"golang.org/x/sync/errgroup"
)

const (
	drainTimeout    = 2 * time.Minute
	shutdownTimeout = 30 * time.Second
)

func main() {
	configPath := flag.String("config", "configs/config.example.yaml", "path to config file")
	dialTo := flag.String("dial", "", "place an outbound call to this number after startup")
	dialFrom := flag.String("dial-from", "", "caller id for -dial (defaults to the configured from number)")
	flag.Parse()

	if err := run(*configPath, *dialTo, *dialFrom); err != nil {
		fmt.Fprintln(os.Stderr, "complaintline:", err)
		os.Exit(1)
	}
}

func run(configPath, dialTo, dialFrom string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := logging.InitLogger(cfg.Logging())
	redact.SetEnabled(cfg.Privacy.RedactPII)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup_failed", "error", err)
		return err
	}

	lifecycle := runner.NewLifecycleRunner(a.drainer(), runner.Hooks{
		OnStart: func() {
			logger.Info("server_starting", "addr", a.http.Addr, "environment", cfg.Environment)
		},
		OnStop: func() {
			logger.Info("server_draining_done", "sessions", a.store.Len())
		},
	}, drainTimeout)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error { return a.evictLoop(gctx) })
	g.Go(func() error {
		runErr := lifecycle.Run(gctx)
		if errors.Is(runErr, runner.ErrDrainTimeout) {
			logger.Warn("drain_timeout", "sessions", a.store.Len())
			runErr = nil
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.close(shutdownCtx); err != nil {
			return err
		}
		return runErr
	})

	if dialTo != "" {
		dialOutbound(gctx, a, logger, dialTo, dialFrom)
	}

	err = g.Wait()
	logger.Info("server_stopped")
	return err
}

func dialOutbound(ctx context.Context, a *app, logger *slog.Logger, to, from string) {
	var dialer transports.OutboundDialer
	if a.twilio != nil {
		dialer = a.twilio
	}
	if dialer == nil {
		logger.Warn("transport_no_outbound_dialer")
		return
	}
	callSID, err := dialer.Dial(ctx, to, from, "")
	if err != nil {
		logger.Error("outbound_dial_failed", "error", err)
		return
	}
	logger.Info("outbound_dial_started", "call_sid", callSID)
}
