package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// The global config for the application. Populated from the environment on
// startup; see types.go for the recognized variables and their defaults.
var Config VanguardConfig

func init() {
	if err := env.Parse(&Config); err != nil {
		panic(fmt.Errorf("failed to parse config from environment: %w", err))
	}
}
