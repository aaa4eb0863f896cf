// Package config persists the CLI's settings and OAuth token.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tonimelisma/onedrive-sdk-go/internal/logger"
	"github.com/tonimelisma/onedrive-sdk-go/pkg/onedrive"
)

const (
	configDir  = ".onedrive-sdk-go"
	configFile = "config.json"

	// ClientID is the public client registered for the CLI.
	ClientID = "71ae7ad2-0207-4618-90d3-d21db38f9f7a"

	// EnvConfigPath overrides the location of the configuration file.
	EnvConfigPath = "ONEDRIVE_CONFIG_PATH"

	permConfigDir  = 0o700
	permConfigFile = 0o600
)

// PollingConfig controls how the device code flow polls the token endpoint.
type PollingConfig struct {
	InitialInterval time.Duration `json:"initialInterval"`
	MaxInterval     time.Duration `json:"maxInterval"`
	Multiplier      float64       `json:"multiplier"`
	MaxAttempts     int           `json:"maxAttempts"` // 0 polls until the device code expires
}

func DefaultPollingConfig() PollingConfig {
	return PollingConfig{
		InitialInterval: 2 * time.Second,
		MaxInterval:     30 * time.Second,
		Multiplier:      1.5,
	}
}

// Next returns the interval that follows current.
func (p PollingConfig) Next(current time.Duration) time.Duration {
	next := time.Duration(float64(current) * p.Multiplier)
	if next > p.MaxInterval {
		return p.MaxInterval
	}
	return next
}

// Configuration holds the persisted settings.
type Configuration struct {
	Token     onedrive.Token      `json:"token"`
	Debug     bool                `json:"debug"`
	LogFormat string              `json:"logFormat,omitempty"`
	ClientID  string              `json:"clientId,omitempty"`
	BaseURL   string              `json:"baseUrl,omitempty"`
	HTTP      onedrive.HTTPConfig `json:"http"`
	Polling   PollingConfig       `json:"polling"`

	mu sync.RWMutex // guards writes to disk and Token
}

// Path returns the location of the configuration file.
func Path() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(homeDir, configDir, configFile), nil
}

// Dir returns the directory holding the configuration file. Session files
// are kept next to it.
func Dir() (string, error) {
	p, err := Path()
	if err != nil {
		return "", err
	}
	return filepath.Dir(p), nil
}

func (c *Configuration) applyDefaults() {
	if c.ClientID == "" {
		c.ClientID = ClientID
	}
	if c.LogFormat == "" {
		c.LogFormat = logger.FormatText
	}
	if c.HTTP == (onedrive.HTTPConfig{}) {
		c.HTTP = onedrive.DefaultHTTPConfig()
	}
	if c.HTTP.Timeout == 0 {
		c.HTTP.Timeout = onedrive.DefaultTimeout
	}
	if c.Polling == (PollingConfig{}) {
		c.Polling = DefaultPollingConfig()
	}
}

// Save writes the configuration to disk with owner-only permissions.
func (c *Configuration) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saveLocked()
}

func (c *Configuration) saveLocked() error {
	jsonData, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling config to JSON: %w", err)
	}

	configPath, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(configPath), permConfigDir); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(configPath, jsonData, permConfigFile); err != nil {
		return fmt.Errorf("writing configuration file: %w", err)
	}
	return nil
}

// UpdateToken stores a refreshed token and saves the configuration. It is
// the token persistence callback handed to the SDK.
func (c *Configuration) UpdateToken(token *onedrive.Token) error {
	if token == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Token = *token
	return c.saveLocked()
}

// ClearToken forgets the stored token and saves the configuration.
func (c *Configuration) ClearToken() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Token = onedrive.Token{}
	return c.saveLocked()
}

// HasToken reports whether a token has been stored.
func (c *Configuration) HasToken() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Token.AccessToken != "" || c.Token.RefreshToken != ""
}

// Load reads the configuration file and fills in defaults for missing fields.
func Load() (*Configuration, error) {
	configPath, err := Path()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	cfg := &Configuration{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling json: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// LoadOrCreate loads the configuration file, or returns defaults when it
// does not exist yet.
func LoadOrCreate() (*Configuration, error) {
	cfg, err := Load()
	if err != nil {
		if os.IsNotExist(err) {
			cfg = &Configuration{}
			cfg.applyDefaults()
			return cfg, nil
		}
		return nil, err
	}
	return cfg, nil
}
