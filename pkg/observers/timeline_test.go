package observers

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/anshu200710/ai-agent-sub000/pkg/dialogue"
	"github.com/anshu200710/ai-agent-sub000/pkg/session"
)

func TestTimelineObserverWritesJSONL(t *testing.T) {
	dir := t.TempDir()
	obs := NewTimelineObserver(dir)

	now := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	obs.OnStateChange(dialogue.StateChange{CallID: "CA/1", FromState: session.StepIVRMenu, ToState: session.StepAskIdentifier, Timestamp: now, Reason: "menu:machine"})
	obs.OnStateChange(dialogue.StateChange{CallID: "CA/1", FromState: session.StepAskIdentifier, ToState: session.StepConfirmCustomer, Timestamp: now.Add(time.Second)})

	path := filepath.Join(dir, "CA_1.jsonl")
	if obs.Path("CA/1") != path {
		t.Fatalf("path = %s", obs.Path("CA/1"))
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	var lines []timelineEvent
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var ev timelineEvent
		if err := json.Unmarshal(sc.Bytes(), &ev); err != nil {
			t.Fatalf("decode: %v", err)
		}
		lines = append(lines, ev)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].From != "ivr_menu" || lines[0].To != "ask_identifier" || lines[0].Reason != "menu:machine" {
		t.Fatalf("unexpected first line: %+v", lines[0])
	}
	if lines[1].To != "confirm_customer" || lines[1].CallID != "CA/1" {
		t.Fatalf("unexpected second line: %+v", lines[1])
	}
}

func TestTimelineObserverDisabled(t *testing.T) {
	obs := NewTimelineObserver("  ")
	obs.OnStateChange(dialogue.StateChange{CallID: "CA1"})
	var nilObs *TimelineObserver
	nilObs.OnStateChange(dialogue.StateChange{CallID: "CA1"})
}

func TestPurgeArtifactsRemovesOldFiles(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "old.jsonl")
	fresh := filepath.Join(dir, "fresh.jsonl")
	for _, p := range []string{old, fresh} {
		if err := os.WriteFile(p, []byte("{}\n"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	past := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	n, err := PurgeArtifacts(dir, 24*time.Hour)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if n != 1 {
		t.Fatalf("removed = %d", n)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatalf("old file still present")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Fatalf("fresh file removed: %v", err)
	}
}

func TestPurgeArtifactsNoop(t *testing.T) {
	if n, err := PurgeArtifacts("", time.Hour); n != 0 || err != nil {
		t.Fatalf("unexpected %d %v", n, err)
	}
	if n, err := PurgeArtifacts(filepath.Join(t.TempDir(), "missing"), time.Hour); n != 0 || err != nil {
		t.Fatalf("missing dir: %d %v", n, err)
	}
}
