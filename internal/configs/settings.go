package configs

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

type Settings struct {
	ConfigPath string
	DataPath   string
}

var PortalSettings *Settings

func init() {
	if err := InitSettings(); err != nil {
		log.Fatalf("error resolving portal directories: %s", err)
	}
}

// InitSettings resolves the config and data directories from the environment.
func InitSettings() error {
	configDir := os.Getenv("PORTAL_CONFIG_HOME")
	if configDir == "" {
		userConfigDir, err := os.UserConfigDir()
		if err != nil {
			return fmt.Errorf("error getting config directory: %w", err)
		}
		configDir = filepath.Join(userConfigDir, "portal")
	}

	dataDir := os.Getenv("PORTAL_DATA_HOME")
	if dataDir == "" {
		dataHome := os.Getenv("XDG_DATA_HOME")
		if dataHome == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("error getting home directory: %w", err)
			}
			dataHome = filepath.Join(homeDir, ".local", "share")
		}
		dataDir = filepath.Join(dataHome, "portal")
	}

	PortalSettings = &Settings{
		ConfigPath: configDir,
		DataPath:   dataDir,
	}
	return nil
}

// ConfigFilePath returns the path of config.toml.
func ConfigFilePath() string {
	return filepath.Join(PortalSettings.ConfigPath, "config.toml")
}

// DeviceStorePath returns the path of the device-local key/value store.
func DeviceStorePath() string {
	return filepath.Join(PortalSettings.DataPath, "device.toml")
}

// AuditLogPath returns the path of the audit log.
func AuditLogPath() string {
	return filepath.Join(PortalSettings.DataPath, "audit.jsonl")
}
