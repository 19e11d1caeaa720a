// Package observers keeps an on-disk audit trail of every call's path
// through the dialogue.
package observers

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/anshu200710/ai-agent-sub000/pkg/dialogue"
	"github.com/anshu200710/ai-agent-sub000/pkg/redact"
)

// TimelineObserver writes one JSONL file per call, one line per step
// transition. Files are opened per write so abandoned calls hold no handles.
type TimelineObserver struct {
	dir string
	mu  sync.Mutex
}

// NewTimelineObserver creates a new timeline observer writing to dir. An
// empty dir disables it.
func NewTimelineObserver(dir string) *TimelineObserver {
	return &TimelineObserver{dir: strings.TrimSpace(dir)}
}

type timelineEvent struct {
	Time   time.Time `json:"time"`
	Event  string    `json:"event"`
	CallID string    `json:"call_id"`
	From   string    `json:"from"`
	To     string    `json:"to"`
	Reason string    `json:"reason,omitempty"`
}

// OnStateChange implements dialogue.StateListener.
func (o *TimelineObserver) OnStateChange(ev dialogue.StateChange) {
	if o == nil || o.dir == "" {
		return
	}
	safe := sanitizeID(ev.CallID)
	if safe == "" {
		return
	}
	line, err := json.Marshal(timelineEvent{
		Time:   ev.Timestamp.UTC(),
		Event:  "transition",
		CallID: ev.CallID,
		From:   ev.FromState.String(),
		To:     ev.ToState.String(),
		Reason: redact.Text(ev.Reason),
	})
	if err != nil {
		return
	}
	o.append(safe, append(line, '\n'))
}

// Path is where the timeline for callID is written.
func (o *TimelineObserver) Path(callID string) string {
	return filepath.Join(o.dir, sanitizeID(callID)+".jsonl")
}

// Dir is the directory timelines are written to.
func (o *TimelineObserver) Dir() string { return o.dir }

func (o *TimelineObserver) append(safe string, line []byte) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := os.MkdirAll(o.dir, 0o755); err != nil {
		return
	}
	f, err := os.OpenFile(filepath.Join(o.dir, safe+".jsonl"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	_, _ = f.Write(line)
	_ = f.Close()
}

func sanitizeID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return ""
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '_'
		}
	}, id)
}

var _ dialogue.StateListener = (*TimelineObserver)(nil)
