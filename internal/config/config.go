// Package config provides configuration loading and validation for pts-radar.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/pts-radar/internal/crawling"
	"github.com/jonathan/pts-radar/internal/disclosure"
	"github.com/jonathan/pts-radar/internal/fetch"
	"github.com/jonathan/pts-radar/internal/logger"
)

// MaxPagesLimit is the largest page ceiling a request may ask for.
const MaxPagesLimit = 200

// Defaults for the request form and the server.
const (
	DefaultPctMin            = "5"
	DefaultVolMin            = "1000"
	DefaultMaxPages          = "30"
	DefaultPort              = 8080
	DefaultRequestsPerMinute = 30
	DefaultSchedule          = "*/15 * * * *"
)

// Config is the full application configuration.
type Config struct {
	Ranking    RankingConfig    `koanf:"ranking"`
	Disclosure DisclosureConfig `koanf:"disclosure"`
	HTTP       HTTPConfig       `koanf:"http"`
	Defaults   DefaultsConfig   `koanf:"defaults"`
	Log        logger.Config    `koanf:"log"`
	Server     ServerConfig     `koanf:"server"`
	Watch      WatchConfig      `koanf:"watch"`
}

// RankingConfig configures the ranking crawl.
type RankingConfig struct {
	// URLTemplate must contain the {page} placeholder
	URLTemplate  string        `koanf:"url_template" validate:"required"`
	PageInterval time.Duration `koanf:"page_interval" validate:"gte=0"`
	// UseBrowser renders pages with a headless browser instead of plain HTTP
	UseBrowser bool `koanf:"use_browser"`
}

// DisclosureConfig configures the disclosure feed.
type DisclosureConfig struct {
	FeedURL string `koanf:"feed_url" validate:"required,url"`
}

// HTTPConfig configures outbound requests.
type HTTPConfig struct {
	Timeout   time.Duration `koanf:"timeout" validate:"gt=0"`
	UserAgent string        `koanf:"user_agent" validate:"required"`
}

// DefaultsConfig holds the request form defaults as raw text, parsed per run.
type DefaultsConfig struct {
	PctMin   string `koanf:"pct_min" validate:"required"`
	VolMin   string `koanf:"vol_min" validate:"required"`
	MaxPages string `koanf:"max_pages" validate:"required"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port              int `koanf:"port" validate:"gte=1,lte=65535"`
	RequestsPerMinute int `koanf:"requests_per_minute" validate:"gte=1"`
}

// WatchConfig configures scheduled runs.
type WatchConfig struct {
	Schedule string `koanf:"schedule" validate:"required"`
	// ExportDir receives one export per run when set
	ExportDir string `koanf:"export_dir"`
}

// New returns a Config populated with defaults.
func New() *Config {
	cfg := &Config{
		Ranking: RankingConfig{
			URLTemplate: crawling.DefaultURLTemplate,
		},
		Disclosure: DisclosureConfig{
			FeedURL: disclosure.DefaultFeedURL,
		},
		HTTP: HTTPConfig{
			Timeout:   fetch.DefaultTimeout,
			UserAgent: fetch.DefaultUserAgent,
		},
		Defaults: DefaultsConfig{
			PctMin:   DefaultPctMin,
			VolMin:   DefaultVolMin,
			MaxPages: DefaultMaxPages,
		},
		Server: ServerConfig{
			Port:              DefaultPort,
			RequestsPerMinute: DefaultRequestsPerMinute,
		},
		Watch: WatchConfig{
			Schedule: DefaultSchedule,
		},
	}
	cfg.Log.SetDefaults()
	return cfg
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return &Error{Message: "invalid configuration", Cause: err}
	}
	if !strings.Contains(c.Ranking.URLTemplate, crawling.PagePlaceholder) {
		return &Error{
			Message: fmt.Sprintf("ranking.url_template must contain %s", crawling.PagePlaceholder),
			Cause:   ErrInvalidConfig,
		}
	}
	return nil
}

// FetchOptions returns the transport options for outbound requests.
func (c *Config) FetchOptions() *fetch.Options {
	return &fetch.Options{
		Timeout:   c.HTTP.Timeout,
		UserAgent: c.HTTP.UserAgent,
	}
}

// CrawlOptions returns the crawler options.
func (c *Config) CrawlOptions(fullScan bool) crawling.Options {
	return crawling.Options{
		URLTemplate:  c.Ranking.URLTemplate,
		PageInterval: c.Ranking.PageInterval,
		FullScan:     fullScan,
	}
}
