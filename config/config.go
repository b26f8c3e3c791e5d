package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds catalog client configuration.
type Config struct {
	BaseURL            string
	AssetBaseURL       string
	PlaceholderImage   string
	PageSize           int
	BrandPrefetchPages int
	Timeout            time.Duration
	UserAgent          string
	FavoritesPath      string
	ListenAddr         string
	MetricsAddr        string
	DetailCacheSize    int
	InquiryNotFoundOK  bool
	Verbose            bool
}

// DefaultConfig returns defaults for the public rental API.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:            "https://car-rental-api.goit.global",
		AssetBaseURL:       "https://car-rental-api.goit.global",
		PlaceholderImage:   "/placeholder-car.jpg",
		PageSize:           12,
		BrandPrefetchPages: 10,
		Timeout:            10 * time.Second,
		UserAgent:          "go-rental-cars/1.0",
		FavoritesPath:      "data/favorites.db",
		ListenAddr:         ":8080",
		MetricsAddr:        "",
		DetailCacheSize:    128,
		InquiryNotFoundOK:  true,
		Verbose:            false,
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}
	parsedURL, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("base URL must include a host")
	}

	if c.AssetBaseURL == "" {
		return fmt.Errorf("asset base URL cannot be empty")
	}
	parsedAsset, err := url.Parse(c.AssetBaseURL)
	if err != nil {
		return fmt.Errorf("invalid asset base URL: %w", err)
	}
	if parsedAsset.Host == "" {
		return fmt.Errorf("asset base URL must include a host")
	}

	if c.PlaceholderImage == "" {
		return fmt.Errorf("placeholder image cannot be empty")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page size must be positive")
	}
	if c.BrandPrefetchPages <= 0 {
		return fmt.Errorf("brand prefetch pages must be positive")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	if c.FavoritesPath == "" {
		return fmt.Errorf("favorites path cannot be empty")
	}
	if c.ListenAddr == "" {
		return fmt.Errorf("listen address cannot be empty")
	}
	if c.DetailCacheSize <= 0 {
		return fmt.Errorf("detail cache size must be positive")
	}

	return nil
}
