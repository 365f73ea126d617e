// Package config loads the immutable configuration bundle the rest of the
// system reads from: trading parameters plus the ambient server, database,
// security, and logging settings. The trading document is JSON on disk
// (default ./config.json), with ARB_-prefixed environment variables able
// to override any key.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the full, immutable-after-load configuration bundle.
type Config struct {
	Symbols            []string `mapstructure:"symbols"`
	Mode               string   `mapstructure:"mode"`
	FeesPercent        float64  `mapstructure:"fees"`
	MaxPosUsd          float64  `mapstructure:"maxPosUsd"`
	MinSpreadPercent   float64  `mapstructure:"minSpreadPercent"`
	RebalanceMinSpread float64  `mapstructure:"rebalanceMinSpread"`
	CheckIntervalSec   int      `mapstructure:"checkIntervalSec"`

	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Security SecurityConfig `mapstructure:"security"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Venues   []VenueConfig  `mapstructure:"venues"`
}

// ServerConfig configures the read-only status HTTP API.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// DatabaseConfig configures the optional Postgres fill/PnL store. An empty
// Host disables persistence entirely (store falls back to a no-op).
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslMode"`
}

// SecurityConfig configures the credential store used by live executors.
type SecurityConfig struct {
	Passphrase string `mapstructure:"passphrase"`
}

// LoggingConfig configures the zap-backed logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// VenueConfig names one venue's feed endpoint, dialect, and (for live
// mode) encrypted API credentials.
type VenueConfig struct {
	Name                 string  `mapstructure:"name"`
	Dialect              string  `mapstructure:"dialect"` // "binance" or "bybit"
	BaseURL              string  `mapstructure:"baseUrl"`
	OrderPath            string  `mapstructure:"orderPath"`
	RequestsPerSecond    float64 `mapstructure:"requestsPerSecond"`
	Burst                float64 `mapstructure:"burst"`
	APIKeyCiphertext     string  `mapstructure:"apiKeyCiphertext"`
	SecretCiphertext     string  `mapstructure:"secretCiphertext"`
	PassphraseCiphertext string  `mapstructure:"passphraseCiphertext"`
}

// Error is a fatal configuration problem: a missing or malformed document,
// or a value outside its valid range.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("config: %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func setDefaults(v *viper.Viper) {
	v.SetDefault("symbols", []string{})
	v.SetDefault("mode", "paper")
	v.SetDefault("fees", 0.04)
	v.SetDefault("maxPosUsd", 1000.0)
	v.SetDefault("minSpreadPercent", 0.05)
	v.SetDefault("rebalanceMinSpread", 0.02)
	v.SetDefault("checkIntervalSec", 1)

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)

	v.SetDefault("database.sslMode", "disable")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Load reads the trading configuration document at path (JSON), applying
// the defaults from the external-interfaces table for any missing key and
// binding ARB_-prefixed environment variables as overrides (e.g.
// ARB_MODE=live overrides "mode"). A missing or malformed file is a fatal
// *Error.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix("ARB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, &Error{Path: path, Err: err}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &Error{Path: path, Err: fmt.Errorf("unmarshal: %w", err)}
	}

	if err := cfg.validate(); err != nil {
		return nil, &Error{Path: path, Err: err}
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Mode != "paper" && c.Mode != "live" {
		return fmt.Errorf("mode must be \"paper\" or \"live\", got %q", c.Mode)
	}
	if c.MaxPosUsd <= 0 {
		return fmt.Errorf("maxPosUsd must be > 0")
	}
	if c.CheckIntervalSec <= 0 {
		return fmt.Errorf("checkIntervalSec must be > 0")
	}
	return nil
}
