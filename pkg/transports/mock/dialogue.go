// Package mock provides an in-memory dialogue for transport tests.
package mock

import (
	"context"
	"errors"
	"sync"

	"github.com/anshu200710/ai-agent-sub000/pkg/dialogue"
)

// Dialogue records every turn and answers with queued replies. When the queue
// is empty it echoes the transcript back.
type Dialogue struct {
	mu      sync.Mutex
	turns   []dialogue.TurnEvent
	ended   map[string]string
	replies []dialogue.Reply
	Lang    string
	Err     error
}

func New() *Dialogue {
	return &Dialogue{ended: make(map[string]string), Lang: "en-IN"}
}

// Push queues a reply for the next turn.
func (d *Dialogue) Push(r dialogue.Reply) {
	d.mu.Lock()
	d.replies = append(d.replies, r)
	d.mu.Unlock()
}

func (d *Dialogue) HandleTurn(_ context.Context, ev dialogue.TurnEvent) (dialogue.Reply, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if ev.CallID == "" {
		return dialogue.Reply{}, errors.New("mock: empty call id")
	}
	d.turns = append(d.turns, ev)
	if d.Err != nil {
		return dialogue.Reply{}, d.Err
	}
	if len(d.replies) > 0 {
		r := d.replies[0]
		d.replies = d.replies[1:]
		return r, nil
	}
	return dialogue.Reply{Text: "you said " + ev.Transcript + ev.Digits, Language: d.Lang}, nil
}

func (d *Dialogue) EndCall(callID, reason string) {
	d.mu.Lock()
	d.ended[callID] = reason
	d.mu.Unlock()
}

func (d *Dialogue) Language() string { return d.Lang }

// Turns returns a copy of the turns seen so far.
func (d *Dialogue) Turns() []dialogue.TurnEvent {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]dialogue.TurnEvent(nil), d.turns...)
}

// Ended reports the reason EndCall was given for callID.
func (d *Dialogue) Ended(callID string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	r, ok := d.ended[callID]
	return r, ok
}
