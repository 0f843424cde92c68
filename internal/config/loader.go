package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PTSRADAR_"

// EnvConfigPath names the variable holding the config file path.
const EnvConfigPath = EnvPrefix + "CONFIG"

// LoadConfig builds a Config by layering defaults, an optional YAML file and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file at path, or at $PTSRADAR_CONFIG when path is empty
//  3. env (prefix PTSRADAR_, "__" separates levels: PTSRADAR_HTTP__TIMEOUT=10s)
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}

	k := koanf.New(".")

	if path != "" {
		if !filepath.IsAbs(path) {
			cwd, err := os.Getwd()
			if err != nil {
				return nil, fmt.Errorf("failed to get current directory: %w", err)
			}
			path = filepath.Join(cwd, path)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, &Error{Path: path, Message: "failed to read config file", Cause: fmt.Errorf("%w: %w", ErrLoadConfig, err)}
		}
	}

	envProvider := env.Provider(EnvPrefix, ".", envKey)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, &Error{Message: "failed to read environment", Cause: fmt.Errorf("%w: %w", ErrLoadConfig, err)}
	}

	cfg := New()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, &Error{Path: path, Message: "failed to decode configuration", Cause: fmt.Errorf("%w: %w", ErrLoadConfig, err)}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envKey maps PTSRADAR_HTTP__USER_AGENT to http.user_agent.
func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	s = strings.ToLower(s)
	return strings.ReplaceAll(s, "__", ".")
}
