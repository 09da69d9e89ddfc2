// Package config loads service configuration from the process environment
// and carries the shared fatal-exit helper for command mains.
package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ParseEnv fills target from the CHRONICLE_* environment variables declared
// in its env struct tags. Unset variables keep their envDefault values.
func ParseEnv(target any) error {
	if target == nil {
		return errors.New("config target is required")
	}
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("load environment config: %w", err)
	}
	return nil
}
