package domain

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

const (
	AppName = "hddimg"

	DefaultImageSizeBytes = 8 * 1024 * 1024 * 1024
	DefaultVerifyWorkers  = 4

	EnvLogLevel  = "HDDIMG_LOG_LEVEL"
	EnvConfigDir = "HDDIMG_CONFIG_DIR"
	EnvDataDir   = "HDDIMG_DATA_DIR"
	EnvImageSize = "HDDIMG_DEFAULT_SIZE"
)

type Config struct {
	ConfigDir             string
	DataDir               string
	LogLevel              slog.Level
	DefaultImageSizeBytes int64

	Help bool `json:"-"`
}

func NewDefaultConfig() *Config {
	configDir, _ := UserConfigDir()
	dataDir, _ := UserDataDir()
	return &Config{
		ConfigDir:             configDir,
		DataDir:               dataDir,
		LogLevel:              slog.LevelInfo,
		DefaultImageSizeBytes: DefaultImageSizeBytes,
	}
}

func (c *Config) Load(configDir string) error {
	*c = *NewDefaultConfig()
	if configDir == "" {
		configDir, _ = UserConfigDir()
	}
	if configDir == "" {
		return fmt.Errorf("failed to determine config directory")
	}
	c.ConfigDir = configDir
	err := EnsureDir(c.ConfigDir)
	cfgPath := filepath.Join(c.ConfigDir, "config.json")
	if err != nil {
		return fmt.Errorf("failed to ensure config dir: %w", err)
	}
	if cfgFileInfo, err := os.Stat(cfgPath); err == nil && cfgFileInfo.IsDir() {
		return fmt.Errorf("config file path is a directory")
	} else if err == nil {
		data, err := os.ReadFile(cfgPath)
		if err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		if err = json.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	} else if os.IsNotExist(err) {
		// Create initial config file
		if err := c.Save(); err != nil {
			return err
		}
	} else {
		return fmt.Errorf("failed to stat config path: %w", err)
	}

	return c.loadEnv()
}

// Save writes the config to disk
func (c *Config) Save() error {
	if c.ConfigDir == "" {
		return fmt.Errorf("config directory not set")
	}

	if err := EnsureDir(c.ConfigDir); err != nil {
		return fmt.Errorf("failed to ensure config dir: %w", err)
	}

	cfgPath := filepath.Join(c.ConfigDir, "config.json")
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err = os.WriteFile(cfgPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func (c *Config) loadEnv() error {
	if configDir := os.Getenv(EnvConfigDir); configDir != "" {
		c.ConfigDir = configDir
	}
	if dataDir := os.Getenv(EnvDataDir); dataDir != "" {
		c.DataDir = dataDir
	}
	if imageSize := os.Getenv(EnvImageSize); imageSize != "" {
		sizeBytes, err := ParseSizeBytes(imageSize)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", EnvImageSize, err)
		}
		c.DefaultImageSizeBytes = sizeBytes
	}
	if logLevel := os.Getenv(EnvLogLevel); logLevel != "" {
		if err := c.LogLevel.UnmarshalText([]byte(logLevel)); err != nil {
			return fmt.Errorf("invalid log level: %w", err)
		}
	}
	return nil
}
