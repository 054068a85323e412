package tokengate

import (
	"strings"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	if err := defaultConfig().Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"odd token length", func(c *Config) { c.TokenLength = 63 }, "TokenLength"},
		{"short token length", func(c *Config) { c.TokenLength = 8 }, "TokenLength"},
		{"negative ttl", func(c *Config) { c.DefaultTokenTTL = -1 }, "DefaultTokenTTL"},
		{"empty prefix", func(c *Config) { c.HeaderPrefix = "" }, "HeaderPrefix"},
		{"prefix with space", func(c *Config) { c.HeaderPrefix = "My Token" }, "HeaderPrefix"},
		{"empty expiry format", func(c *Config) { c.ExpiryFormat = "" }, "ExpiryFormat"},
		{"bad default rate", func(c *Config) { c.Throttle.DefaultRate = "10/w" }, "DefaultRate"},
		{"cache without ttl", func(c *Config) { c.Cache.Enabled = true; c.Cache.TTL = 0 }, "Cache.TTL"},
		{"cache without entries", func(c *Config) { c.Cache.Enabled = true; c.Cache.MaxEntries = 0 }, "Cache.MaxEntries"},
	}
	for _, tc := range cases {
		cfg := defaultConfig()
		tc.mutate(&cfg)
		err := cfg.Validate()
		if err == nil {
			t.Errorf("%s: expected error", tc.name)
			continue
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Errorf("%s: error %q does not mention %q", tc.name, err, tc.want)
		}
	}
}

func TestBuilderRequiresDependencies(t *testing.T) {
	if _, err := New().Build(); err == nil {
		t.Fatal("expected error without redis client")
	}
}
