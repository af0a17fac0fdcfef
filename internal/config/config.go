package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"wallet_vote/internal/types"

	"gopkg.in/yaml.v3"
)

var (
	// ErrConfigNotFound indicates that the configuration file does not exist.
	ErrConfigNotFound = errors.New("config file not found")
	// ErrConfigParseFailed indicates that the configuration file is not valid YAML.
	ErrConfigParseFailed = errors.New("config file parse failed")
	// ErrConfigInvalid indicates that a configured value is out of range.
	ErrConfigInvalid = errors.New("invalid configuration")
)

const (
	defaultBaseURL            = "http://localhost:8080"
	defaultRequestTimeout     = 15 * time.Second
	defaultKeysPath           = "local/data/private_keys.txt"
	defaultSignaturePrefixLen = 4
	defaultDBPath             = "local/data/vote.db"
	defaultLogLevel           = "info"

	// Environment overrides, applied after the file is read.
	EnvAPIURL       = "VOTE_API_URL"
	EnvDBType       = "VOTE_DB_TYPE"
	EnvDBConnection = "VOTE_DB_CONNECTION"
)

// Config corresponds to the structure of config.yml
type Config struct {
	API         APIConfig         `yaml:"api"`
	Wallet      WalletConfig      `yaml:"wallet"`
	Signing     SigningConfig     `yaml:"signing"`
	Database    DatabaseConfig    `yaml:"database"`
	State       StateConfig       `yaml:"state"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Delay       DelayConfig       `yaml:"delay"`
	UI          UIConfig          `yaml:"ui"`
	Log         LogConfig         `yaml:"log"`
}

// APIConfig points the gateway at the vote backend.
type APIConfig struct {
	BaseURL        string        `yaml:"base_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"` // 0 keeps the default; negative disables
}

// WalletConfig holds settings for the local wallet connector.
type WalletConfig struct {
	KeysPath     string             `yaml:"keys_path"`
	ProcessOrder types.ProcessOrder `yaml:"process_order"` // ballot mode only
}

// SigningConfig holds assumptions about the wallet signer's output format.
type SigningConfig struct {
	// SignaturePrefixLen is the number of leading hex characters the signer
	// adds as a format tag. It is stripped before submission.
	SignaturePrefixLen *int `yaml:"signature_prefix_len"`
}

// PrefixLen returns the configured prefix length, or the default when unset.
func (s SigningConfig) PrefixLen() int {
	if s.SignaturePrefixLen == nil {
		return defaultSignaturePrefixLen
	}
	return *s.SignaturePrefixLen
}

// DatabaseConfig selects the attempt log and preference store backend.
type DatabaseConfig struct {
	Type             types.DBType `yaml:"type"`
	ConnectionString string       `yaml:"connection_string"`
	PoolMaxConns     string       `yaml:"pool_max_conns"`
}

// StateConfig controls ballot mode resume.
type StateConfig struct {
	ResumeEnabled bool `yaml:"resume_enabled"`
}

// ConcurrencyConfig holds settings related to parallel execution
type ConcurrencyConfig struct {
	MaxParallelWallets int `yaml:"max_parallel_wallets"`
}

// DelayConfig holds settings for ballot mode pauses
type DelayConfig struct {
	BetweenWallets DelayRange  `yaml:"between_wallets"`
	BetweenVotes   DelayRange  `yaml:"between_votes"`
	BetweenRetries RetryConfig `yaml:"between_retries"`
	AfterError     DelayRange  `yaml:"after_error"`
}

// RetryConfig bounds how often ballot mode retries a failed vote.
type RetryConfig struct {
	Attempts int        `yaml:"attempts"`
	Delay    DelayRange `yaml:"delay"`
}

// DelayRange represents a min/max delay with units
type DelayRange struct {
	Min  int            `yaml:"min"`
	Max  int            `yaml:"max"`
	Unit types.TimeUnit `yaml:"unit"`
}

// UIConfig holds terminal client settings.
type UIConfig struct {
	DefaultTheme types.Theme `yaml:"default_theme"`
	LogFile      string      `yaml:"log_file"` // log destination while the TUI owns the terminal
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `yaml:"level"`
}

// LoadConfig reads the configuration file from the given path, applies
// environment overrides and defaults, and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConfigParseFailed, path, err)
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvAPIURL); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv(EnvDBType); v != "" {
		cfg.Database.Type = types.DBType(v)
	}
	if v := os.Getenv(EnvDBConnection); v != "" {
		cfg.Database.ConnectionString = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = defaultBaseURL
	}
	if cfg.API.RequestTimeout == 0 {
		cfg.API.RequestTimeout = defaultRequestTimeout
	}
	if cfg.Wallet.KeysPath == "" {
		cfg.Wallet.KeysPath = defaultKeysPath
	}
	if cfg.Wallet.ProcessOrder == "" {
		cfg.Wallet.ProcessOrder = types.OrderSequential
	}
	if cfg.Database.Type == "" {
		cfg.Database.Type = types.None
	}
	if cfg.Database.Type == types.SQLite && cfg.Database.ConnectionString == "" {
		cfg.Database.ConnectionString = defaultDBPath
	}
	if cfg.UI.DefaultTheme == "" {
		cfg.UI.DefaultTheme = types.ThemeDark
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaultLogLevel
	}
}

// Validate checks values that defaults cannot repair.
func (c *Config) Validate() error {
	if !c.Database.Type.Valid() {
		return fmt.Errorf("%w: database.type %q", ErrConfigInvalid, c.Database.Type)
	}
	if c.Signing.PrefixLen() < 0 {
		return fmt.Errorf("%w: signing.signature_prefix_len must not be negative", ErrConfigInvalid)
	}
	switch c.Wallet.ProcessOrder {
	case types.OrderRandom, types.OrderSequential:
	default:
		return fmt.Errorf("%w: wallet.process_order %q", ErrConfigInvalid, c.Wallet.ProcessOrder)
	}
	for name, d := range map[string]DelayRange{
		"delay.between_wallets": c.Delay.BetweenWallets,
		"delay.between_votes":   c.Delay.BetweenVotes,
		"delay.between_retries": c.Delay.BetweenRetries.Delay,
		"delay.after_error":     c.Delay.AfterError,
	} {
		if d.Min < 0 || d.Max < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrConfigInvalid, name)
		}
	}
	if c.Delay.BetweenRetries.Attempts < 0 {
		return fmt.Errorf("%w: delay.between_retries.attempts must not be negative", ErrConfigInvalid)
	}
	return nil
}
