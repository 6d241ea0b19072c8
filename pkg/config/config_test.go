package config

import (
	"testing"
	"time"
)

func unsetConfigEnv(t *testing.T) {
	t.Helper()
	for _, name := range []EnvVarName{mixpanelAPIURL, mixpanelToken, requestTimeout, batchLimit, sentryURL, debugHTTP, collectorAddr} {
		t.Setenv(string(name), "")
	}
}

func TestDefaults(t *testing.T) {
	unsetConfigEnv(t)
	c := NewConstants()

	if got := c.GetMixpanelAPIURL(); got != "https://api.mixpanel.com" {
		t.Fatalf("GetMixpanelAPIURL() = %s, want https://api.mixpanel.com", got)
	}
	if got := c.GetToken(); got != "" {
		t.Fatalf("GetToken() = %q, want empty", got)
	}
	if got := c.GetRequestTimeout(); got != 0 {
		t.Fatalf("GetRequestTimeout() = %s, want 0", got)
	}
	if got := c.GetBatchConcurrency(); got != 8 {
		t.Fatalf("GetBatchConcurrency() = %d, want 8", got)
	}
	if c.GetDebugHTTP() {
		t.Fatalf("GetDebugHTTP() = true, want false")
	}
	if got := c.GetCollectorAddr(); got != "localhost:3000" {
		t.Fatalf("GetCollectorAddr() = %s, want localhost:3000", got)
	}
}

func TestOverrides(t *testing.T) {
	unsetConfigEnv(t)
	t.Setenv(string(mixpanelAPIURL), "http://localhost:3001")
	t.Setenv(string(mixpanelToken), "what")
	t.Setenv(string(requestTimeout), "5s")
	t.Setenv(string(batchLimit), "2")
	t.Setenv(string(debugHTTP), "1")

	c := NewConstants()
	if got := c.GetMixpanelAPIURL(); got != "http://localhost:3001" {
		t.Fatalf("GetMixpanelAPIURL() = %s", got)
	}
	if got := c.GetToken(); got != "what" {
		t.Fatalf("GetToken() = %s, want what", got)
	}
	if got := c.GetRequestTimeout(); got != 5*time.Second {
		t.Fatalf("GetRequestTimeout() = %s, want 5s", got)
	}
	if got := c.GetBatchConcurrency(); got != 2 {
		t.Fatalf("GetBatchConcurrency() = %d, want 2", got)
	}
	if !c.GetDebugHTTP() {
		t.Fatalf("GetDebugHTTP() = false, want true")
	}
}

func TestInvalidValuesFallBack(t *testing.T) {
	unsetConfigEnv(t)
	t.Setenv(string(requestTimeout), "soon")
	t.Setenv(string(batchLimit), "-3")
	t.Setenv(string(debugHTTP), "yes please")

	c := NewConstants()
	if c.GetDebugHTTP() {
		t.Fatalf("GetDebugHTTP() = true for unparsable value, want false")
	}
	if got := c.GetRequestTimeout(); got != 0 {
		t.Fatalf("GetRequestTimeout() = %s, want 0", got)
	}
	if got := c.GetBatchConcurrency(); got != 8 {
		t.Fatalf("GetBatchConcurrency() = %d, want 8", got)
	}
}

func TestDebugHTTPFalseStaysOff(t *testing.T) {
	unsetConfigEnv(t)
	for _, v := range []string{"false", "0", "FALSE"} {
		t.Setenv(string(debugHTTP), v)
		if NewConstants().GetDebugHTTP() {
			t.Fatalf("GetDebugHTTP() = true for %q, want false", v)
		}
	}
	t.Setenv(string(debugHTTP), "true")
	if !NewConstants().GetDebugHTTP() {
		t.Fatalf("GetDebugHTTP() = false for \"true\", want true")
	}
}
