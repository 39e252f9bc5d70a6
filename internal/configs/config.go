package configs

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/google/uuid"
	perrors "github.com/worksdev/portal/internal/errors"
	"github.com/worksdev/portal/internal/utils"
)

const (
	DefaultAPIURL         = "https://api.works.example.com"
	DefaultTimeoutSeconds = 15
	DefaultMaxRetries     = 3
)

type Config struct {
	API    APIConfig    `toml:"api"`
	Device DeviceConfig `toml:"device"`
}

type APIConfig struct {
	URL            string `toml:"url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MaxRetries     int    `toml:"max_retries"`
}

type DeviceConfig struct {
	UUID      string    `toml:"uuid"`
	Name      string    `toml:"name"`
	CreatedAt time.Time `toml:"created_at"`
}

// Timeout returns the HTTP timeout, falling back to the default when unset.
func (c APIConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return DefaultTimeoutSeconds * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// DefaultConfig returns a config with defaults and no device identity.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			URL:            DefaultAPIURL,
			TimeoutSeconds: DefaultTimeoutSeconds,
			MaxRetries:     DefaultMaxRetries,
		},
	}
}

// LoadConfig loads config.toml, returning defaults when the file does not exist.
// PORTAL_API_URL overrides the stored API URL.
func LoadConfig() (*Config, error) {
	config := DefaultConfig()

	configPath := ConfigFilePath()
	if _, err := os.Stat(configPath); err == nil {
		if err := LoadTOML(configPath, config); err != nil {
			return nil, fmt.Errorf("%w: %v", perrors.ErrInvalidConfig, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	if envURL := os.Getenv("PORTAL_API_URL"); envURL != "" {
		config.API.URL = envURL
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// SaveConfig writes config.toml.
func SaveConfig(config *Config) error {
	if err := SaveTOML(ConfigFilePath(), config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// EnsureConfig loads the config and assigns a device identity on first use.
func EnsureConfig() (*Config, error) {
	config, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	if config.Device.UUID != "" {
		return config, nil
	}

	config.Device.UUID = GenerateDeviceUUID()
	if config.Device.Name == "" {
		name, err := utils.GenerateDeviceName()
		if err != nil {
			return nil, fmt.Errorf("failed to generate device name: %w", err)
		}
		config.Device.Name = name
	}
	config.Device.CreatedAt = time.Now().UTC()

	if err := SaveConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks that the API URL is absolute http(s).
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.URL)
	if err != nil {
		return fmt.Errorf("%w: api url: %v", perrors.ErrInvalidConfig, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: api url must use http or https, got %q", perrors.ErrInvalidConfig, c.API.URL)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: api url has no host", perrors.ErrInvalidConfig)
	}
	return nil
}

// GenerateDeviceUUID generates a new UUID for this device.
func GenerateDeviceUUID() string {
	return uuid.New().String()
}
