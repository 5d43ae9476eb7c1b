package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

var (
	errInvalidPort       = errors.New("config: invalid port number")
	errProbeTimeoutRange = errors.New("config: probe_timeout must be 1s-60s")
	errHistoryLimitRange = errors.New("config: history_limit must be 1-1000")
)

// Config holds all application configuration.
type Config struct {
	Port         string        `mapstructure:"port"`
	LogLevel     string        `mapstructure:"log_level"`
	ProbeTimeout time.Duration `mapstructure:"probe_timeout"`
	HistoryPath  string        `mapstructure:"history_path"`
	HistoryLimit int           `mapstructure:"history_limit"`
}

// Load reads configuration from an optional arwscan.yaml plus ARWSCAN_*
// environment overrides. If path is empty, the current directory and
// ~/.config/arwscan are searched; a missing file falls back to defaults.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("arwscan")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "arwscan"))
		}
	}

	v.SetEnvPrefix("ARWSCAN")
	v.AutomaticEnv()

	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "INFO")
	v.SetDefault("probe_timeout", 5*time.Second)
	v.SetDefault("history_path", "arwscan.db")
	v.SetDefault("history_limit", 100)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("%w: %q", errInvalidPort, c.Port)
	}

	if c.ProbeTimeout < time.Second || c.ProbeTimeout > 60*time.Second {
		return fmt.Errorf("%w: got %s", errProbeTimeoutRange, c.ProbeTimeout)
	}

	if c.HistoryLimit < 1 || c.HistoryLimit > 1000 {
		return fmt.Errorf("%w: got %d", errHistoryLimitRange, c.HistoryLimit)
	}

	return nil
}
