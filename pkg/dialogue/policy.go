package dialogue

import (
	"fmt"

	"github.com/anshu200710/ai-agent-sub000/pkg/session"
)

// exhaustion says what a step does once its retries are spent.
type exhaustion int

const (
	exhaustEscalate exhaustion = iota
	exhaustDefault
)

type stepPolicy struct {
	Threshold int
	OnExhaust exhaustion
}

// defaultPolicies is the canonical retry table. Steps that identify the
// machine block the whole submission and escalate; softer fields fall back to
// a safe default and carry on.
var defaultPolicies = map[session.Step]stepPolicy{
	session.StepIVRMenu:          {Threshold: 3, OnExhaust: exhaustEscalate},
	session.StepAskIdentifier:    {Threshold: 3, OnExhaust: exhaustEscalate},
	session.StepConfirmCustomer:  {Threshold: 2, OnExhaust: exhaustEscalate},
	session.StepAskLocation:      {Threshold: 2, OnExhaust: exhaustDefault},
	session.StepAskPincode:       {Threshold: 2, OnExhaust: exhaustDefault},
	session.StepAskPhone:         {Threshold: 3, OnExhaust: exhaustDefault},
	session.StepConfirmPhone:     {Threshold: 2, OnExhaust: exhaustDefault},
	session.StepAskComplaint:     {Threshold: 3, OnExhaust: exhaustDefault},
	session.StepAskSubComplaint:  {Threshold: 2, OnExhaust: exhaustDefault},
	session.StepConfirmComplaint: {Threshold: 2, OnExhaust: exhaustDefault},
	session.StepAskServiceDate:   {Threshold: 2, OnExhaust: exhaustDefault},
	session.StepAskTimeFrom:      {Threshold: 2, OnExhaust: exhaustDefault},
	session.StepAskTimeTo:        {Threshold: 2, OnExhaust: exhaustDefault},
}

// buildPolicies overlays configured thresholds (keyed by step name) on the
// defaults.
func buildPolicies(overrides map[string]int) (map[session.Step]stepPolicy, error) {
	out := make(map[session.Step]stepPolicy, len(defaultPolicies))
	for k, v := range defaultPolicies {
		out[k] = v
	}
	for name, n := range overrides {
		step, ok := session.ParseStep(name)
		if !ok {
			return nil, fmt.Errorf("threshold for unknown step %q", name)
		}
		p, ok := out[step]
		if !ok {
			return nil, fmt.Errorf("step %q takes no input", name)
		}
		if n < 0 {
			return nil, fmt.Errorf("threshold for %q must be >= 0", name)
		}
		p.Threshold = n
		out[step] = p
	}
	return out, nil
}
