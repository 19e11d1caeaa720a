package redact

import "testing"

func TestRedactText(t *testing.T) {
	SetEnabled(true)
	defer SetEnabled(false)

	in := "call me at 98765 43210 or mail ramesh@example.com"
	out := Text(in)
	if out == in {
		t.Fatalf("expected redaction")
	}
	if out != "call me at [REDACTED_PHONE] or mail [REDACTED_EMAIL]" {
		t.Fatalf("unexpected redaction output: %q", out)
	}
}

func TestRedactDigits(t *testing.T) {
	SetEnabled(true)
	defer SetEnabled(false)

	if got := Digits("9876543210"); got != "******3210" {
		t.Fatalf("unexpected mask: %q", got)
	}
	if got := Digits("123"); got != "123" {
		t.Fatalf("short values stay intact, got %q", got)
	}
}

func TestRedactDisabled(t *testing.T) {
	SetEnabled(false)
	if got := Digits("9876543210"); got != "9876543210" {
		t.Fatalf("expected passthrough when disabled, got %q", got)
	}
}
