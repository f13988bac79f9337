package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Database    DatabaseConfig    `toml:"database"`
	Storage     StorageConfig     `toml:"storage"`
	Playback    PlaybackConfig    `toml:"playback"`
	Credentials CredentialsConfig `toml:"credentials"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// StorageConfig contains durable file storage settings.
type StorageConfig struct {
	DataDir string `toml:"data_dir"`
}

// PlaybackConfig contains playback engine tunables.
type PlaybackConfig struct {
	TickMS                   int `toml:"tick_ms"`
	PreviousThresholdSeconds int `toml:"previous_threshold_seconds"`
	ProbeTimeoutSeconds      int `toml:"probe_timeout_seconds"`
}

// Tick returns the position update interval as a [time.Duration].
func (p PlaybackConfig) Tick() time.Duration {
	return time.Duration(p.TickMS) * time.Millisecond
}

// PreviousThreshold returns the previous-restarts-current threshold as a [time.Duration].
func (p PlaybackConfig) PreviousThreshold() time.Duration {
	return time.Duration(p.PreviousThresholdSeconds) * time.Second
}

// ProbeTimeout returns the import duration probe bound as a [time.Duration].
func (p PlaybackConfig) ProbeTimeout() time.Duration {
	return time.Duration(p.ProbeTimeoutSeconds) * time.Second
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API credentials for the catalog client.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
