package config

import (
	"testing"
)

func TestSplitKeys(t *testing.T) {
	cases := []struct {
		raw  string
		want []string
	}{
		{"", nil},
		{"def456,ghi789", []string{"def456", "ghi789"}},
		{" def456 , ghi789 ", []string{"def456", "ghi789"}},
		{"def456,,ghi789,", []string{"def456", "ghi789"}},
		{",", nil},
	}

	for _, c := range cases {
		got := splitKeys(c.raw)
		if len(got) != len(c.want) {
			t.Errorf("splitKeys(%q) = %v, want %v", c.raw, got, c.want)
			continue
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Errorf("splitKeys(%q)[%d] = %q, want %q", c.raw, i, got[i], c.want[i])
			}
		}
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	if cfg.HTTPPort == "" {
		t.Error("HTTPPort should have a default")
	}
	if cfg.AnalyzerTimeoutSec <= 0 {
		t.Errorf("AnalyzerTimeoutSec = %d, want positive default", cfg.AnalyzerTimeoutSec)
	}
	if cfg.AnalyzerURL == "" {
		t.Error("AnalyzerURL should have a default")
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("VIDEO_ANALYZER_API_KEY", "abc123")
	t.Setenv("FALLBACK_API_KEYS", "def456,ghi789")
	t.Setenv("DEBUG_KEY_LOGGING", "true")

	cfg := LoadConfig()

	if cfg.HTTPPort != "9999" {
		t.Errorf("HTTPPort = %q, want 9999", cfg.HTTPPort)
	}
	if cfg.PrimaryAPIKey != "abc123" {
		t.Errorf("PrimaryAPIKey = %q, want abc123", cfg.PrimaryAPIKey)
	}
	if len(cfg.FallbackAPIKeys) != 2 || cfg.FallbackAPIKeys[0] != "def456" {
		t.Errorf("FallbackAPIKeys = %v", cfg.FallbackAPIKeys)
	}
	if !cfg.DebugKeyLogging {
		t.Error("DebugKeyLogging should be true")
	}
}
