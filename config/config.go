package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	APIBaseURL string `json:"api_base_url"`
	StateDir   string `json:"state_dir"`

	// RequestTimeoutSec bounds every API call. There is no retry: a call
	// either completes within the timeout or fails.
	RequestTimeoutSec int `json:"request_timeout_sec"`

	// FetchConcurrency caps concurrent per-chat message fetches when
	// building history previews and profile statistics.
	FetchConcurrency int `json:"fetch_concurrency"`

	// CatalogCacheMin is the on-disk catalog cache TTL in minutes.
	// Zero disables caching.
	CatalogCacheMin int `json:"catalog_cache_min"`

	Debug bool `json:"debug"`
}

func DefaultConfig() *Config {
	cfg := DefaultConfigWithRoot(defaultStateDir())

	// Load environment variables from .env file
	_ = godotenv.Load()

	// Override with environment variables if they exist
	cfg.loadFromEnv()

	return cfg
}

func DefaultConfigWithRoot(stateDir string) *Config {
	return &Config{
		APIBaseURL:        "http://localhost:8000",
		StateDir:          stateDir,
		RequestTimeoutSec: 30,
		FetchConcurrency:  4,
		CatalogCacheMin:   10,
		Debug:             false,
	}
}

func defaultStateDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir, _ = os.Getwd()
	}
	return filepath.Join(dir, "campuschat")
}

func (c *Config) loadFromEnv() {
	if val := os.Getenv("CAMPUSCHAT_API_URL"); val != "" {
		c.APIBaseURL = val
	}
	if val := os.Getenv("CAMPUSCHAT_STATE_DIR"); val != "" {
		c.StateDir = val
	}
	if val := os.Getenv("CAMPUSCHAT_REQUEST_TIMEOUT"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.RequestTimeoutSec = v
		}
	}
	if val := os.Getenv("CAMPUSCHAT_FETCH_CONCURRENCY"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.FetchConcurrency = v
		}
	}
	if val := os.Getenv("CAMPUSCHAT_CATALOG_CACHE_MIN"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.CatalogCacheMin = v
		}
	}
	if val := os.Getenv("CAMPUSCHAT_DEBUG"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.Debug = enabled
		}
	}
}

// ApplyEnvOverrides re-applies environment variables on top of a loaded
// config: the file sets the base, the environment wins.
func (c *Config) ApplyEnvOverrides() {
	c.loadFromEnv()
}

func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("api_base_url is required")
	}
	if _, err := url.ParseRequestURI(c.APIBaseURL); err != nil {
		return fmt.Errorf("api_base_url is not a valid URL: %w", err)
	}
	if c.StateDir == "" {
		return fmt.Errorf("state_dir is required")
	}
	if c.RequestTimeoutSec <= 0 {
		return fmt.Errorf("request_timeout_sec must be positive")
	}
	if c.FetchConcurrency <= 0 {
		return fmt.Errorf("fetch_concurrency must be positive")
	}
	if c.CatalogCacheMin < 0 {
		return fmt.Errorf("catalog_cache_min must not be negative")
	}
	return nil
}

func (c *Config) SessionFile() string {
	return filepath.Join(c.StateDir, "session.json")
}

func (c *Config) CatalogCacheDir() string {
	return filepath.Join(c.StateDir, "catalog")
}

func (c *Config) TranscriptFile() string {
	return filepath.Join(c.StateDir, "transcripts.db")
}

func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.StateDir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", c.StateDir, err)
	}
	return nil
}
