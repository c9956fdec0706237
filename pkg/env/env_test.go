package env

import "testing"

func TestGetPrefersPrefixedValue(t *testing.T) {
	t.Setenv("LOG_FORMAT", "console")
	t.Setenv("IMPORTOPS_LOG_FORMAT", "json")
	if got := Get("LOG_FORMAT", "fallback"); got != "json" {
		t.Fatalf("expected prefixed value, got %q", got)
	}
}

func TestGetFallsBackToBareKey(t *testing.T) {
	t.Setenv("IMPORTOPS_PORT", "  ")
	t.Setenv("PORT", "8081")
	if got := Get("PORT", "8080"); got != "8081" {
		t.Fatalf("expected bare key value, got %q", got)
	}
}

func TestGetFallback(t *testing.T) {
	t.Setenv("IMPORTOPS_NOT_SET_ANYWHERE", "")
	t.Setenv("NOT_SET_ANYWHERE", "")
	if got := Get("NOT_SET_ANYWHERE", "default"); got != "default" {
		t.Fatalf("expected fallback, got %q", got)
	}
}
