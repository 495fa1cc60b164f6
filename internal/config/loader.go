package config

import (
	"errors"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, an optional YAML file, and
// environment variables. Precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if MATCHFEED_CONFIG is set
//  3. env (prefix MATCHFEED_)
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("MATCHFEED_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// MATCHFEED_REDIS_URL -> redis_url, MATCHFEED_ADDR -> addr, ...
	envProvider := env.Provider("MATCHFEED_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "matchfeed_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if cfg.Addr == "" {
		return nil, errors.New("addr must not be empty")
	}
	if cfg.RefreshStream == "" {
		return nil, errors.New("refresh_stream must not be empty")
	}
	if cfg.DefaultMaxDurationHours <= 0 {
		return nil, errors.New("default_max_duration_hours must be positive")
	}
	return &cfg, nil
}
