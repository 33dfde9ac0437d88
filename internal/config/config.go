// Copyright (c) 2025 Footprint
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept here; secrets go to OS keychain.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	ferrors "footprint/cli/internal/errors"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. FOOTPRINT_BRIDGE_KIND.
const EnvPrefix = "FOOTPRINT"

// Surfaces and bridges accepted by Validate.
var (
	Surfaces = []string{"terminal", "web"}
	Bridges  = []string{"fake", "grpc", "redis", "postgres"}
)

// Config holds non-sensitive CLI settings.
type Config struct {
	LogLevel  string       `json:"log_level" mapstructure:"log_level"`
	LogFormat string       `json:"log_format" mapstructure:"log_format"`
	Locale    string       `json:"locale" mapstructure:"locale"`
	Surface   string       `json:"surface" mapstructure:"surface"`
	WASMPath  string       `json:"wasm_path,omitempty" mapstructure:"wasm_path"`
	Web       WebConfig    `json:"web" mapstructure:"web"`
	Bridge    BridgeConfig `json:"bridge" mapstructure:"bridge"`
}

// WebConfig configures the browser surface.
type WebConfig struct {
	Addr string `json:"addr" mapstructure:"addr"`
}

// BridgeConfig selects and configures the host bridge.
type BridgeConfig struct {
	Kind         string `json:"kind" mapstructure:"kind"`
	GRPCTarget   string `json:"grpc_target,omitempty" mapstructure:"grpc_target"`
	GRPCInsecure bool   `json:"grpc_insecure,omitempty" mapstructure:"grpc_insecure"`
	RedisURL     string `json:"redis_url,omitempty" mapstructure:"redis_url"`
	RedisChannel string `json:"redis_channel" mapstructure:"redis_channel"`
}

// Default returns the configuration used when nothing else is set.
func Default() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: "text",
		Locale:    "en",
		Surface:   "terminal",
		Web:       WebConfig{Addr: "127.0.0.1:8787"},
		Bridge: BridgeConfig{
			Kind:         "fake",
			RedisURL:     "redis://127.0.0.1:6379/0",
			RedisChannel: "footprint:commands",
		},
	}
}

// Dir returns the XDG config directory for footprint.
// The directory is created with private permissions (0700) if missing.
// It falls back to ~/.config/footprint when XDG_CONFIG_HOME is unset.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	dir := filepath.Join(base, "footprint")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}

// Path returns the default config file location.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads configuration from file (the default path when file is empty) and
// applies FOOTPRINT_* environment overrides. A .env file in the working directory
// is loaded first when present. A missing config file yields defaults.
func Load(file string) (Config, error) {
	_ = godotenv.Load()

	if file == "" {
		p, err := Path()
		if err != nil {
			return Config{}, err
		}
		file = p
	}

	v := newViper()
	if _, err := os.Stat(file); err == nil {
		v.SetConfigFile(file)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, ferrors.Wrap(ferrors.ConfigInvalid, "read "+file, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, ferrors.Wrap(ferrors.ConfigInvalid, "decode "+file, err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	d := Default()
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("locale", d.Locale)
	v.SetDefault("surface", d.Surface)
	v.SetDefault("wasm_path", d.WASMPath)
	v.SetDefault("web.addr", d.Web.Addr)
	v.SetDefault("bridge.kind", d.Bridge.Kind)
	v.SetDefault("bridge.grpc_target", d.Bridge.GRPCTarget)
	v.SetDefault("bridge.grpc_insecure", d.Bridge.GRPCInsecure)
	v.SetDefault("bridge.redis_url", d.Bridge.RedisURL)
	v.SetDefault("bridge.redis_channel", d.Bridge.RedisChannel)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Validate rejects settings the port command cannot act on.
func (c Config) Validate() error {
	if !contains(Surfaces, c.Surface) {
		return ferrors.New(ferrors.ConfigInvalid, "unknown surface "+c.Surface+" (want "+strings.Join(Surfaces, "|")+")")
	}
	if !contains(Bridges, c.Bridge.Kind) {
		return ferrors.New(ferrors.ConfigInvalid, "unknown bridge "+c.Bridge.Kind+" (want "+strings.Join(Bridges, "|")+")")
	}
	if c.Surface == "web" && c.Web.Addr == "" {
		return ferrors.New(ferrors.ConfigInvalid, "web surface needs an address")
	}
	return nil
}

// Save writes configuration with 0600 permissions.
func Save(file string, c Config) error {
	if file == "" {
		p, err := Path()
		if err != nil {
			return err
		}
		file = p
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(file, b, 0o600)
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
