package config

import (
	"fmt"

	"github.com/caarlos0/env/v9"
)

// GlobalConfig holds settings shared by every service binary.
type GlobalConfig struct {
	ServerPort string `env:"SERVER_PORT" envDefault:"8080"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	GinMode    string `env:"GIN_MODE" envDefault:"release"`
}

func LoadGlobalConfig() (*GlobalConfig, error) {
	var cfg GlobalConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse global env: %w", err)
	}
	return &cfg, nil
}

// Address is the listen address for ServerPort.
func (c GlobalConfig) Address() string {
	return ":" + c.ServerPort
}
