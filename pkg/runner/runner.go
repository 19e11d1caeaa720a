// Package runner owns the process lifecycle: banner, run until cancelled,
// then drain in-flight calls within a deadline.
package runner

import (
	"bytes"
	"context"
	"io"
	"os"

	"github.com/dimiro1/banner"
)

type State int

const (
	StateNew State = iota
	StateStarting
	StateRunning
	StateDraining
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

type Runner interface {
	Run(ctx context.Context) error
	Stop() error
	State() State
}

type Hooks struct {
	OnStart func()
	OnStop  func()
}

// Drainer stops accepting new calls and waits for open ones to settle. It
// must return once ctx is done.
type Drainer interface {
	Drain(ctx context.Context) error
}

// DrainFunc adapts a plain function to Drainer.
type DrainFunc func(ctx context.Context) error

func (f DrainFunc) Drain(ctx context.Context) error { return f(ctx) }

// Drainers drains each in order and returns the first error.
type Drainers []Drainer

func (d Drainers) Drain(ctx context.Context) error {
	var first error
	for _, dr := range d {
		if dr == nil {
			continue
		}
		if err := dr.Drain(ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Version is stamped at build time with -ldflags.
var Version = "dev"

// BannerOutput is where PrintBanner writes; tests point it at io.Discard.
var BannerOutput io.Writer = os.Stdout

func PrintBanner() {
	tpl := "{{ .Title \"COMPLAINTLINE\" \"\" 0 }}\nVersion: " + Version + "\n"
	banner.Init(BannerOutput, true, true, bytes.NewBufferString(tpl))
}
