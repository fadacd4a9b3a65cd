package main

import (
	"fmt"

	"github.com/caarlos0/env/v7"
)

// environment is the configuration kept in the environment. Flags cover
// the per-run parameters.
type environment struct {
	DatabaseURL    string `env:"DATABASE_URL"`
	LogFormat      string `env:"LOG_FORMAT" envDefault:"auto"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	OutputDir      string `env:"NSEC3GEN_OUTPUT" envDefault:"output"`
	RedisAddr      string `env:"REDIS_ADDR"`
	RedisKeyPrefix string `env:"REDIS_KEY_PREFIX" envDefault:"nsec3"`
	RedisPassword  string `env:"REDIS_PASSWORD"`

	RedisDB int `env:"REDIS_DB" envDefault:"0"`
}

func parseEnvironment() (*environment, error) {
	envs := &environment{}
	if err := env.Parse(envs); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return envs, nil
}
