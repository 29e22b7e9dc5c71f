package env

import "testing"

func TestFirstPrefersEarlierKeys(t *testing.T) {
	t.Setenv("DELIVERY_LOG_FORMAT", "console")
	t.Setenv("LOG_FORMAT", "json")

	if got := First("json", "DELIVERY_LOG_FORMAT", "LOG_FORMAT"); got != "console" {
		t.Fatalf("expected console got %q", got)
	}
}

func TestGetFallsBackOnBlank(t *testing.T) {
	t.Setenv("DELIVERY_LOG_FORMAT", "   ")

	if got := Get("DELIVERY_LOG_FORMAT", "json"); got != "json" {
		t.Fatalf("expected fallback got %q", got)
	}
}
