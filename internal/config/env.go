// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// parseEnv fills cfg from the process environment. Mapping follows the
// `env`/`envPrefix` tags on [StructuredConfig] and its nested sections, so
// e.g. SESSION_ACCESS_TTL lands in Session.AccessTTL.
func parseEnv(cfg any) error {
	err := env.Parse(cfg)
	if err != nil {
		return fmt.Errorf("error getting env configs: %w", err)
	}

	return nil
}
