package configutil

import (
	"errors"
	"testing"
	"time"
)

func TestValidateSettingsReportsMissingAndUnknown(t *testing.T) {
	err := ValidateSettings(map[string]any{
		"Auth-Token": "",
		"colour":     "blue",
	}, Schema{Required: []string{"auth_token", "account_sid"}, Optional: []string{"public_url"}})
	var serr *SchemaError
	if !errors.As(err, &serr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if len(serr.Missing) != 2 || serr.Missing[0] != "account_sid" || serr.Missing[1] != "auth_token" {
		t.Fatalf("unexpected missing keys: %v", serr.Missing)
	}
	if len(serr.Unknown) != 1 || serr.Unknown[0] != "colour" {
		t.Fatalf("unexpected unknown keys: %v", serr.Unknown)
	}
}

func TestDecodeValidated(t *testing.T) {
	var out struct {
		URL     string        `mapstructure:"url"`
		Key     string        `mapstructure:"list_key"`
		Timeout time.Duration `mapstructure:"timeout"`
	}
	err := DecodeValidated("outbox.settings", map[string]any{
		"URL":      "redis://localhost:6379/0",
		"list-key": "complaints:failed",
		"timeout":  "1500ms",
	}, Schema{Required: []string{"url"}, Optional: []string{"list_key", "timeout"}}, &out)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if out.URL != "redis://localhost:6379/0" || out.Key != "complaints:failed" {
		t.Fatalf("unexpected decode result: %+v", out)
	}
	if out.Timeout != 1500*time.Millisecond {
		t.Fatalf("expected 1.5s timeout, got %v", out.Timeout)
	}
}

func TestMillis(t *testing.T) {
	if Millis(0, time.Second) != time.Second {
		t.Fatalf("expected fallback")
	}
	if Millis(250, time.Second) != 250*time.Millisecond {
		t.Fatalf("expected 250ms")
	}
}
