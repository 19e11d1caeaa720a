package console

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/anshu200710/ai-agent-sub000/pkg/dialogue"
	"github.com/anshu200710/ai-agent-sub000/pkg/logging"
	"github.com/anshu200710/ai-agent-sub000/pkg/transports/mock"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

func dial(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	return conn
}

func TestConsoleRoundTrip(t *testing.T) {
	dlg := mock.New()
	dlg.Push(dialogue.Reply{Text: "Welcome. Press 1 for machine number."})
	dlg.Push(dialogue.Reply{Text: "Please say your machine number."})
	dlg.Push(dialogue.Reply{Text: "Complaint registered.", Terminal: true, TicketID: "4821"})

	r := mux.NewRouter()
	New(Config{}, dlg, logging.Discard()).Register(r)
	srv := httptest.NewServer(r)
	defer srv.Close()

	conn := dial(t, srv, "/console?caller=%2B919812345678")
	defer conn.Close()

	var greet dialogue.Reply
	if err := conn.ReadJSON(&greet); err != nil {
		t.Fatalf("read greeting: %v", err)
	}
	if !strings.HasPrefix(greet.Text, "Welcome") {
		t.Fatalf("unexpected greeting %q", greet.Text)
	}

	if err := conn.WriteJSON(Message{Digits: "1"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	var next dialogue.Reply
	if err := conn.ReadJSON(&next); err != nil {
		t.Fatalf("read: %v", err)
	}
	if next.Text != "Please say your machine number." {
		t.Fatalf("unexpected reply %q", next.Text)
	}

	if err := conn.WriteJSON(Message{Transcript: "3305447"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	var last dialogue.Reply
	if err := conn.ReadJSON(&last); err != nil {
		t.Fatalf("read: %v", err)
	}
	if !last.Terminal || last.TicketID != "4821" {
		t.Fatalf("expected terminal reply with ticket, got %+v", last)
	}

	turns := dlg.Turns()
	if len(turns) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(turns))
	}
	if turns[0].CallerNumber != "+919812345678" || turns[1].Digits != "1" || turns[2].Transcript != "3305447" {
		t.Fatalf("unexpected turns: %+v", turns)
	}
	if turns[0].CallID != turns[2].CallID || !strings.HasPrefix(turns[0].CallID, "console-") {
		t.Fatalf("expected one console call id, got %q and %q", turns[0].CallID, turns[2].CallID)
	}
}

func TestConsoleHangupEndsCall(t *testing.T) {
	dlg := mock.New()
	r := mux.NewRouter()
	New(Config{Path: "/ws"}, dlg, logging.Discard()).Register(r)
	srv := httptest.NewServer(r)
	defer srv.Close()

	conn := dial(t, srv, "/ws")
	var greet dialogue.Reply
	if err := conn.ReadJSON(&greet); err != nil {
		t.Fatalf("read greeting: %v", err)
	}
	if err := conn.WriteJSON(Message{Type: "hangup"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	callID := dlg.Turns()[0].CallID

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if reason, ok := dlg.Ended(callID); ok {
			if reason != "completed" {
				t.Fatalf("expected completed, got %q", reason)
			}
			conn.Close()
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("call was not ended")
}

func TestConsoleRejectsForeignOrigin(t *testing.T) {
	tr := New(Config{AllowedOrigins: []string{"https://ops.example.com"}}, mock.New(), logging.Discard())
	req := httptest.NewRequest(http.MethodGet, "/console", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	if tr.checkOrigin(req) {
		t.Fatalf("expected foreign origin to be rejected")
	}
	req.Header.Set("Origin", "https://ops.example.com/")
	if !tr.checkOrigin(req) {
		t.Fatalf("expected allowed origin")
	}
}

func TestConsoleDefaultsToSameOrigin(t *testing.T) {
	tr := New(Config{}, mock.New(), logging.Discard())
	req := httptest.NewRequest(http.MethodGet, "http://console.local:8080/console", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	if tr.checkOrigin(req) {
		t.Fatalf("expected cross-origin request to be rejected without allowed_origins")
	}
	req.Header.Set("Origin", "http://console.local:8080")
	if !tr.checkOrigin(req) {
		t.Fatalf("expected same-origin request to be allowed")
	}
	req.Header.Del("Origin")
	if !tr.checkOrigin(req) {
		t.Fatalf("expected request without origin to be allowed")
	}
}
