package mapper

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/axiskey/mapper/internal/hud"
)

const DefaultConfigPath = "/etc/axiskey/config.toml"

type HUDConfig struct {
	Endpoint string        `toml:"endpoint"`
	Model    string        `toml:"model"`
	APIKey   string        `toml:"api_key"`
	Timeout  time.Duration `toml:"timeout"`
}

// Enabled reports whether HUD detection can be offered.
func (c HUDConfig) Enabled() bool {
	return c.APIKey != ""
}

type Config struct {
	ListenAddress   string        `toml:"listen_address"`
	DataDir         string        `toml:"data_dir"`
	LogLevel        string        `toml:"log_level"`
	MetricsEnabled  bool          `toml:"metrics_enabled"`
	HardwareRefresh time.Duration `toml:"hardware_refresh"`
	HUD             HUDConfig     `toml:"hud"`
}

func defaultConfig() *Config {
	return &Config{
		ListenAddress:   ":8090",
		DataDir:         "/var/lib/axiskey",
		LogLevel:        "info",
		MetricsEnabled:  true,
		HardwareRefresh: 10 * time.Minute,
		HUD: HUDConfig{
			Endpoint: hud.DefaultEndpoint,
			Model:    hud.DefaultModel,
			Timeout:  30 * time.Second,
		},
	}
}

// LoadConfig reads the service configuration from path and applies
// AXISKEY_* environment overrides. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	md, err := toml.DecodeFile(path, cfg)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		configLogger.Info().Str("path", path).Msg("config file not found, using defaults")
	case err != nil:
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	default:
		for _, key := range md.Undecoded() {
			configLogger.Warn().Str("key", key.String()).Msg("unknown config key")
		}
	}

	applyEnvOverrides(cfg, os.Getenv)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config, getenv func(string) string) {
	env := func(name string) string {
		return strings.TrimSpace(getenv(name))
	}

	if v := env("AXISKEY_LISTEN"); v != "" {
		cfg.ListenAddress = v
	}
	if v := env("AXISKEY_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := env("AXISKEY_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := env("AXISKEY_METRICS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.MetricsEnabled = b
		}
	}
	if v := env("AXISKEY_HARDWARE_REFRESH"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.HardwareRefresh = d
		}
	}
	if v := env("AXISKEY_HUD_API_KEY"); v != "" {
		cfg.HUD.APIKey = v
	}
}
