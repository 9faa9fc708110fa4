package config

import (
	"errors"
	"fmt"
	"time"

	"dario.cat/mergo"
)

type configBuilder struct {
	configs []*StructuredConfig
	err     error
}

func newConfigBuilder() *configBuilder {
	return &configBuilder{
		configs: make([]*StructuredConfig, 0, 4),
	}
}

func (b *configBuilder) build() (*StructuredConfig, error) {
	if b.err != nil {
		return nil, fmt.Errorf("error occured during building config: %w", b.err)
	}

	config := new(StructuredConfig)
	for _, cfg := range b.configs {
		if err := mergo.Merge(config, cfg); err != nil {
			return nil, fmt.Errorf("error merging configs: %w", err)
		}
	}

	return config, config.validate()
}

func (b *configBuilder) withEnv() *configBuilder {
	envCfg := &StructuredConfig{}
	if err := parseEnv(envCfg); err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}

	b.configs = append(b.configs, envCfg)
	return b
}

func (b *configBuilder) withFlags() *configBuilder {
	flags := ParseFlags()

	b.configs = append(b.configs, flags)
	return b
}

func (b *configBuilder) withJSON() *configBuilder {
	var jsonPath string
	isJSONSpecified := false

	for _, cfg := range b.configs {
		if cfg.JSONFilePath != "" {
			isJSONSpecified = true
			jsonPath = cfg.JSONFilePath
		}
	}

	if isJSONSpecified {
		jsonCfg, err := parseJSON(jsonPath)
		if err != nil {
			b.err = errors.Join(b.err, err)
			return b
		}
		b.configs = append(b.configs, jsonCfg)
	}

	return b
}

// withDefaults appends a lowest-priority config carrying the documented
// default values, so that any field left unset by env, flags, and JSON
// falls back to a sane production default during the merge.
func (b *configBuilder) withDefaults() *configBuilder {
	b.configs = append(b.configs, &StructuredConfig{
		Server: Server{
			HTTPAddress:        "0.0.0.0:8080",
			RequestTimeout:     30 * time.Second,
			LoginRatePerMinute: 10,
			LoginRateBurst:     5,
		},
		Upstream: Upstream{
			RequestTimeout: 30 * time.Second,
		},
		Session: Session{
			AccessTTL:        30 * time.Minute,
			RefreshTTL:       7 * 24 * time.Hour,
			HydrationTimeout: 4 * time.Second,
			SecureCookies:    true,
			LoginPath:        "/login",
			LandingPath:      "/dashboard",
		},
		Activation: Activation{
			DefaultTTLHours: 72,
			MaxAttempts:     5,
		},
		Workers: Workers{
			SweepInterval: 5 * time.Minute,
		},
	})

	return b
}
