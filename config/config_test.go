package config

import (
	"strings"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name: "empty base url",
			mutate: func(cfg *Config) {
				cfg.BaseURL = ""
			},
			wantErr: "base URL",
		},
		{
			name: "base url without host",
			mutate: func(cfg *Config) {
				cfg.BaseURL = "http://"
			},
			wantErr: "base URL",
		},
		{
			name: "empty asset base url",
			mutate: func(cfg *Config) {
				cfg.AssetBaseURL = ""
			},
			wantErr: "asset base URL",
		},
		{
			name: "zero page size",
			mutate: func(cfg *Config) {
				cfg.PageSize = 0
			},
			wantErr: "page size",
		},
		{
			name: "negative prefetch pages",
			mutate: func(cfg *Config) {
				cfg.BrandPrefetchPages = -1
			},
			wantErr: "prefetch pages",
		},
		{
			name: "negative timeout",
			mutate: func(cfg *Config) {
				cfg.Timeout = -1 * time.Second
			},
			wantErr: "timeout",
		},
		{
			name: "empty user agent",
			mutate: func(cfg *Config) {
				cfg.UserAgent = ""
			},
			wantErr: "user agent",
		},
		{
			name: "empty favorites path",
			mutate: func(cfg *Config) {
				cfg.FavoritesPath = ""
			},
			wantErr: "favorites path",
		},
		{
			name: "zero detail cache",
			mutate: func(cfg *Config) {
				cfg.DetailCacheSize = 0
			},
			wantErr: "detail cache",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestEnvInt(t *testing.T) {
	t.Setenv("CATALOG_TEST_INT", "15")
	value, ok, err := EnvInt("CATALOG_TEST_INT")
	if err != nil || !ok || value != 15 {
		t.Fatalf("EnvInt = (%d, %v, %v), want (15, true, nil)", value, ok, err)
	}

	t.Setenv("CATALOG_TEST_INT", "oops")
	if _, _, err := EnvInt("CATALOG_TEST_INT"); err == nil {
		t.Fatalf("expected error for non-integer value")
	}

	if _, ok, _ := EnvInt("CATALOG_TEST_UNSET"); ok {
		t.Fatalf("unset variable should report ok=false")
	}
}
