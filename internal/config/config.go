package config

import (
	"fmt"
	"time"
)

type Config struct {
	Rod           RodConfig           `yaml:"rod"`
	Backoff       BackoffConfig       `yaml:"backoff"`
	HTTP          HttpConfig          `yaml:"http"`
	RateLimit     RateLimitConfig     `yaml:"rate_limit"`
	Normalize     NormalizeConfig     `yaml:"normalize"`
	Sources       SourcesConfig       `yaml:"sources"`
	Output        OutputConfig        `yaml:"output"`
	Observability ObservabilityConfig `yaml:"observability"`
}

type RodConfig struct {
	Enabled          bool   `yaml:"enabled"`
	ChromePath       string `yaml:"chrome_path"`
	Headless         bool   `yaml:"headless"`
	PageTimeoutS     int    `yaml:"page_timeout_s"`
	WaitLoadTimeoutS int    `yaml:"wait_load_timeout_s"`
	LazyLoadDelayS   int    `yaml:"lazy_load_delay_s"`
	StaleTimeoutS    int    `yaml:"stale_timeout_s"`
}

type BackoffConfig struct {
	MinMS     int `yaml:"min_ms"`
	MaxMS     int `yaml:"max_ms"`
	JitterPct int `yaml:"jitter_pct"`
}

type HttpConfig struct {
	UserAgent                 string `yaml:"user_agent"`
	ConnectTimeoutMS          int    `yaml:"connect_timeout_ms"`
	TotalTimeoutMS            int    `yaml:"total_timeout_ms"`
	MaxRetries                int    `yaml:"max_retries"`
	MaxIdleConnections        int    `yaml:"max_idle_connections"`
	MaxIdleConnectionsPerHost int    `yaml:"max_idle_connections_per_host"`
	IdleConnectionTimeoutS    int    `yaml:"idle_connection_timeout_s"`
	AcceptLanguage            string `yaml:"accept_language"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type NormalizeConfig struct {
	TrimNBSP           bool `yaml:"trim_nbsp"`
	CollapseSpaces     bool `yaml:"collapse_spaces"`
	TitleFallbackChars int  `yaml:"title_fallback_chars"`
}

// SourcesConfig выбирает институции и при необходимости подменяет адреса листингов
type SourcesConfig struct {
	Enabled   []string         `yaml:"enabled"`
	Overrides []SourceOverride `yaml:"overrides"`
}

type SourceOverride struct {
	Kind     string          `yaml:"kind"`
	Listings []ListingConfig `yaml:"listings"`
}

type ListingConfig struct {
	Label string `yaml:"label"`
	URL   string `yaml:"url"`
}

type OutputConfig struct {
	Format string `yaml:"format"`
	Path   string `yaml:"path"`
}

type ObservabilityConfig struct {
	LogPath     string `yaml:"log_path"`
	LogLevel    string `yaml:"log_level"`
	MetricsPath string `yaml:"metrics_path"`
}

// Default возвращает конфиг, с которым приложение работает без файла
func Default() Config {
	return Config{
		Rod: RodConfig{
			Enabled:          true,
			Headless:         true,
			PageTimeoutS:     60,
			WaitLoadTimeoutS: 30,
			LazyLoadDelayS:   2,
			StaleTimeoutS:    20,
		},
		Backoff: BackoffConfig{
			MinMS:     250,
			MaxMS:     2000,
			JitterPct: 20,
		},
		HTTP: HttpConfig{
			UserAgent:                 "Mozilla/5.0 (X11; Linux x86_64) municipal-updates/1.0",
			ConnectTimeoutMS:          10000,
			TotalTimeoutMS:            30000,
			MaxRetries:                0,
			MaxIdleConnections:        100,
			MaxIdleConnectionsPerHost: 10,
			IdleConnectionTimeoutS:    90,
			AcceptLanguage:            "bg-BG,bg;q=0.9,en;q=0.5",
		},
		RateLimit: RateLimitConfig{
			RPS:   1,
			Burst: 2,
		},
		Normalize: NormalizeConfig{
			TrimNBSP:           true,
			CollapseSpaces:     true,
			TitleFallbackChars: 50,
		},
		Output: OutputConfig{
			Format: "json",
		},
		Observability: ObservabilityConfig{
			LogLevel: "info",
		},
	}
}

// Validation
func (c *Config) Validate() error {
	if c.HTTP.UserAgent == "" {
		return fmt.Errorf("http.user_agent is required")
	}
	if c.HTTP.ConnectTimeoutMS <= 0 {
		return fmt.Errorf("http.connect_timeout_ms must be > 0")
	}
	if c.HTTP.TotalTimeoutMS <= 0 {
		return fmt.Errorf("http.total_timeout_ms must be > 0")
	}
	if c.HTTP.MaxRetries < 0 {
		return fmt.Errorf("http.max_retries must be >= 0")
	}
	if c.RateLimit.RPS <= 0 {
		return fmt.Errorf("rate_limit.rps must be > 0")
	}
	if c.RateLimit.Burst <= 0 {
		return fmt.Errorf("rate_limit.burst must be > 0")
	}
	if c.Backoff.MinMS <= 0 {
		return fmt.Errorf("backoff.min_ms must be > 0")
	}
	if c.Backoff.MaxMS <= 0 {
		return fmt.Errorf("backoff.max_ms must be > 0")
	}
	if c.Backoff.MinMS > c.Backoff.MaxMS {
		return fmt.Errorf("backoff.min_ms must be <= backoff.max_ms")
	}
	if c.Backoff.JitterPct < 0 || c.Backoff.JitterPct > 100 {
		return fmt.Errorf("backoff.jitter_pct must be between 0 and 100")
	}
	if c.Normalize.TitleFallbackChars <= 0 {
		return fmt.Errorf("normalize.title_fallback_chars must be > 0")
	}
	for i, o := range c.Sources.Overrides {
		if o.Kind == "" {
			return fmt.Errorf("sources.overrides[%d].kind is required", i)
		}
		if len(o.Listings) == 0 {
			return fmt.Errorf("sources.overrides[%d].listings must not be empty", i)
		}
		for j, l := range o.Listings {
			if l.Label == "" || l.URL == "" {
				return fmt.Errorf("sources.overrides[%d].listings[%d] needs label and url", i, j)
			}
		}
	}
	switch c.Output.Format {
	case "json", "csv", "markdown":
	default:
		return fmt.Errorf("output.format must be 'json', 'csv' or 'markdown'")
	}
	if c.Observability.LogLevel == "" {
		return fmt.Errorf("observability.log_level is required")
	}
	if c.Rod.Enabled {
		if c.Rod.PageTimeoutS <= 0 {
			return fmt.Errorf("rod.page_timeout_s must be > 0")
		}
		if c.Rod.WaitLoadTimeoutS <= 0 {
			return fmt.Errorf("rod.wait_load_timeout_s must be > 0")
		}
		if c.Rod.LazyLoadDelayS < 0 {
			return fmt.Errorf("rod.lazy_load_delay_s must be >= 0")
		}
	}
	if c.Rod.StaleTimeoutS <= 0 {
		return fmt.Errorf("rod.stale_timeout_s must be > 0")
	}
	return nil
}

// Override возвращает подмену листингов для институции, если она задана
func (c *Config) Override(kind string) (SourceOverride, bool) {
	for _, o := range c.Sources.Overrides {
		if o.Kind == kind {
			return o, true
		}
	}
	return SourceOverride{}, false
}

// Getters
func (c *Config) GetConnectTimeout() time.Duration {
	return time.Duration(c.HTTP.ConnectTimeoutMS) * time.Millisecond
}

func (c *Config) GetTotalTimeout() time.Duration {
	return time.Duration(c.HTTP.TotalTimeoutMS) * time.Millisecond
}

func (c *Config) GetIdleConnectionTimeout() time.Duration {
	return time.Duration(c.HTTP.IdleConnectionTimeoutS) * time.Second
}

func (c *Config) GetBackoffMin() time.Duration {
	return time.Duration(c.Backoff.MinMS) * time.Millisecond
}

func (c *Config) GetBackoffMax() time.Duration {
	return time.Duration(c.Backoff.MaxMS) * time.Millisecond
}

func (c *Config) GetRodPageTimeout() time.Duration {
	return time.Duration(c.Rod.PageTimeoutS) * time.Second
}

func (c *Config) GetRodWaitLoadTimeout() time.Duration {
	return time.Duration(c.Rod.WaitLoadTimeoutS) * time.Second
}

func (c *Config) GetRodLazyLoadDelay() time.Duration {
	return time.Duration(c.Rod.LazyLoadDelayS) * time.Second
}

func (c *Config) GetStaleTimeout() time.Duration {
	return time.Duration(c.Rod.StaleTimeoutS) * time.Second
}
