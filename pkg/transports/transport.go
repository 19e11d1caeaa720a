// Package transports defines the boundary between telephony front ends and
// the dialogue engine.
package transports

import (
	"context"

	"github.com/anshu200710/ai-agent-sub000/pkg/dialogue"
)

// Dialogue is the turn engine a transport feeds. Each inbound turn yields
// exactly one reply; implementations are responsible for their own session state.
type Dialogue interface {
	HandleTurn(ctx context.Context, ev dialogue.TurnEvent) (dialogue.Reply, error)
	EndCall(callID, reason string)
	Language() string
}

// OutboundDialer allows transports to initiate outbound calls.
type OutboundDialer interface {
	Dial(ctx context.Context, to, from, url string) (callSID string, err error)
}

// DialOptions carries optional outbound dial settings.
type DialOptions struct {
	SendDigits string
}

// OutboundDialerWithOptions extends dialing with optional parameters.
type OutboundDialerWithOptions interface {
	DialWithOptions(ctx context.Context, to, from, url string, opts DialOptions) (callSID string, err error)
}

// ReadyReporter allows transports to expose readiness metadata (e.g., webhook URLs).
// Implementations are optional and used for informational logging only.
type ReadyReporter interface {
	ReadyFields() map[string]any
}
