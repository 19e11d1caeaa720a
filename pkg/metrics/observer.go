// Package metrics carries operational events from the dialogue and its
// adapters to whatever sinks are configured.
package metrics

import "time"

// Event names.
const (
	EventTurn       = "dialogue_turn"
	EventTransition = "dialogue_transition"
	EventEscalation = "dialogue_escalation"
	EventDefault    = "dialogue_default_applied"
	EventLookup     = "backend_lookup"
	EventSubmit     = "backend_submit"
	EventOutbox     = "outbox_enqueue"
	EventEvicted    = "session_evicted"
	EventSessions   = "sessions_active"
)

type MetricsEvent struct {
	Name   string
	Time   time.Time
	Value  float64
	Tags   map[string]string
	Fields map[string]any
}

// NewEvent stamps an event with the current time.
func NewEvent(name string, value float64, tags map[string]string) MetricsEvent {
	return MetricsEvent{Name: name, Time: time.Now(), Value: value, Tags: tags}
}

type Observer interface {
	RecordEvent(ev MetricsEvent)
}

type Flusher interface {
	Flush() error
}

type NoopObserver struct{}

func (NoopObserver) RecordEvent(MetricsEvent) {}

// Multi fans one event out to several observers. Nil entries are skipped.
type Multi []Observer

func (m Multi) RecordEvent(ev MetricsEvent) {
	for _, o := range m {
		if o != nil {
			o.RecordEvent(ev)
		}
	}
}

// OrNoop returns o, or a NoopObserver when o is nil.
func OrNoop(o Observer) Observer {
	if o == nil {
		return NoopObserver{}
	}
	return o
}
