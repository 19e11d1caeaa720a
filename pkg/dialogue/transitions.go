package dialogue

import (
	"time"

	"github.com/anshu200710/ai-agent-sub000/pkg/session"
)

// StateChange is emitted on every accepted step transition.
type StateChange struct {
	CallID    string
	FromState session.Step
	ToState   session.Step
	Timestamp time.Time
	Reason    string
}

// StateListener observes step transitions.
type StateListener interface {
	OnStateChange(event StateChange)
}

// StateListenerFunc adapts a function to StateListener.
type StateListenerFunc func(StateChange)

func (f StateListenerFunc) OnStateChange(ev StateChange) { f(ev) }

// validTransitions is the whole dialogue graph. Back-edges exist only where a
// caller rejects a value read back to them.
var validTransitions = map[session.Step][]session.Step{
	session.StepIVRMenu:          {session.StepAskIdentifier},
	session.StepAskIdentifier:    {session.StepConfirmCustomer},
	session.StepConfirmCustomer:  {session.StepAskLocation, session.StepAskIdentifier},
	session.StepAskLocation:      {session.StepAskPincode, session.StepAskPhone, session.StepConfirmPhone},
	session.StepAskPincode:       {session.StepAskPhone, session.StepConfirmPhone},
	session.StepAskPhone:         {session.StepConfirmPhone, session.StepAskComplaint},
	session.StepConfirmPhone:     {session.StepAskComplaint, session.StepAskPhone},
	session.StepAskComplaint:     {session.StepAskSubComplaint, session.StepConfirmComplaint, session.StepAskServiceDate},
	session.StepAskSubComplaint:  {session.StepConfirmComplaint},
	session.StepConfirmComplaint: {session.StepAskServiceDate, session.StepAskComplaint},
	session.StepAskServiceDate:   {session.StepAskTimeFrom, session.StepAskTimeTo},
	session.StepAskTimeFrom:      {session.StepAskTimeTo, session.StepSubmit},
	session.StepAskTimeTo:        {session.StepSubmit},
	session.StepSubmit:           {session.StepTerminal},
}

func transitionValid(from, to session.Step) bool {
	// Handoff and hang-up are reachable from anywhere.
	if to == session.StepTerminal {
		return true
	}
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// InvalidTransitionError represents an invalid step transition attempt.
type InvalidTransitionError struct {
	From session.Step
	To   session.Step
}

func (e *InvalidTransitionError) Error() string {
	return "invalid step transition from " + e.From.String() + " to " + e.To.String()
}

// transition moves s to step after checking the graph, then notifies listeners.
func (e *Engine) transition(s *session.Session, to session.Step, reason string) error {
	from := s.Step
	if !transitionValid(from, to) {
		return &InvalidTransitionError{From: from, To: to}
	}
	s.Advance(to)
	ev := StateChange{
		CallID:    s.CallID,
		FromState: from,
		ToState:   to,
		Timestamp: e.now(),
		Reason:    reason,
	}
	for _, l := range e.listeners {
		l.OnStateChange(ev)
	}
	return nil
}
