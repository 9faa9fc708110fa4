package config

// validate checks that the final merged [StructuredConfig] satisfies all
// application invariants before it is used at startup.
//
// Returns nil if the configuration is valid, or a descriptive error
// otherwise.
func (cfg *StructuredConfig) validate() error {
	if cfg.Upstream.BaseURL == "" {
		return ErrInvalidUpstreamConfigs
	}

	if cfg.Storage.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Session.AccessTTL <= 0 || cfg.Session.RefreshTTL <= 0 || cfg.Session.HydrationTimeout <= 0 {
		return ErrInvalidSessionConfigs
	}

	if cfg.Activation.DefaultTTLHours < 1 || cfg.Activation.DefaultTTLHours > 720 || cfg.Activation.MaxAttempts < 1 {
		return ErrInvalidActivationConfigs
	}

	return nil
}
