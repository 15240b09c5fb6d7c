package utils

import "testing"

func TestSafeEnv(t *testing.T) {
	t.Setenv("POLLWAVE_TEST_KEY", "set")
	if got := SafeEnv("POLLWAVE_TEST_KEY", "fallback"); got != "set" {
		t.Fatalf("SafeEnv returned %q, want set", got)
	}
	if got := SafeEnv("POLLWAVE_TEST_MISSING", "fallback"); got != "fallback" {
		t.Fatalf("SafeEnv returned %q, want fallback", got)
	}
	t.Setenv("POLLWAVE_TEST_EMPTY", "")
	if got := SafeEnv("POLLWAVE_TEST_EMPTY", "fallback"); got != "fallback" {
		t.Fatalf("SafeEnv returned %q for empty var, want fallback", got)
	}
}
