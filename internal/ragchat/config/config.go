package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultAPIURL         = "http://localhost:5000/api"
	DefaultRevealInterval = 20 // milliseconds per revealed character
	DefaultRequestTimeout = 30 // seconds, history and session calls only
	DefaultMarkdownStyle  = "auto"
	DefaultLogLevel       = "info"
	DefaultStoreFile      = "ragchat.db"
	DefaultLogFile        = "ragchat.log"
)

// Config holds the configuration for the chat client
type Config struct {
	APIURL                string `toml:"api_url" mapstructure:"api_url"`                                 // Base URL of the chat backend
	StorePath             string `toml:"store_path" mapstructure:"store_path"`                           // bbolt file holding the session id
	RevealIntervalMs      int    `toml:"reveal_interval_ms" mapstructure:"reveal_interval_ms"`           // Typing effect pace
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds" mapstructure:"request_timeout_seconds"` // Not applied to the streamed answer
	MarkdownStyle         string `toml:"markdown_style" mapstructure:"markdown_style"`                   // auto, dark, light or notty
	LogLevel              string `toml:"log_level" mapstructure:"log_level"`
	LogFile               string `toml:"log_file" mapstructure:"log_file"` // Used by the TUI (empty = next to the store)
}

// RevealInterval returns the delay between two revealed characters.
func (c *Config) RevealInterval() time.Duration {
	return time.Duration(c.RevealIntervalMs) * time.Millisecond
}

// RequestTimeout returns the timeout applied to non-streaming backend calls.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// NewDefaultConfig returns a new Config with default values
func NewDefaultConfig(dataDir string) *Config {
	return &Config{
		APIURL:                DefaultAPIURL,
		StorePath:             filepath.Join(dataDir, DefaultStoreFile),
		RevealIntervalMs:      DefaultRevealInterval,
		RequestTimeoutSeconds: DefaultRequestTimeout,
		MarkdownStyle:         DefaultMarkdownStyle,
		LogLevel:              DefaultLogLevel,
		LogFile:               "",
	}
}

// Validate checks that the configuration can be used to reach the backend.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("api_url is not configured. Set it in config file (api_url) or environment variable (RAGCHAT_API_URL or API_URL)")
	}
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("invalid api_url %q: %w", c.APIURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid api_url %q: scheme must be http or https", c.APIURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid api_url %q: missing host", c.APIURL)
	}
	if c.RevealIntervalMs <= 0 {
		return fmt.Errorf("reveal_interval_ms must be positive (got %d)", c.RevealIntervalMs)
	}
	if c.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("request_timeout_seconds must be positive (got %d)", c.RequestTimeoutSeconds)
	}
	switch c.MarkdownStyle {
	case "auto", "dark", "light", "notty":
	default:
		return fmt.Errorf("unsupported markdown_style: %s (expected auto, dark, light or notty)", c.MarkdownStyle)
	}
	return nil
}

// LoadConfig loads configuration from viper
func LoadConfig() (*Config, error) {
	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %v", err)
	}

	apiURL, err := expandEnvVar(config.APIURL)
	if err != nil {
		return nil, fmt.Errorf("error expanding api_url: %v", err)
	}
	config.APIURL = strings.TrimRight(apiURL, "/")

	if config.StorePath != "" {
		storePath, err := ResolvePath(config.StorePath)
		if err != nil {
			return nil, fmt.Errorf("error resolving store path '%s': %v", config.StorePath, err)
		}
		config.StorePath = storePath
	}

	if config.LogFile != "" {
		logFile, err := ResolvePath(config.LogFile)
		if err != nil {
			return nil, fmt.Errorf("error resolving log file path '%s': %v", config.LogFile, err)
		}
		config.LogFile = logFile
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}
