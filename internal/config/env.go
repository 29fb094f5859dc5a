package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvConfig holds overrides read from the environment. Zero values mean unset.
type EnvConfig struct {
	FormURL     string `env:"PLAYLOG_FORM_URL"`
	Driver      string `env:"PLAYLOG_DRIVER"`
	DebuggerURL string `env:"PLAYLOG_DEBUGGER_URL"`
	ChromeBin   string `env:"PLAYLOG_CHROME_BIN"`
	Workers     int    `env:"PLAYLOG_WORKERS"`
}

// LoadEnv parses the PLAYLOG_* variables.
func LoadEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := env.Parse(&cfg); err != nil {
		return EnvConfig{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Overlay applies env values over the file config, so flags > env > file.
func (e EnvConfig) Overlay(fc FileConfig) FileConfig {
	if e.FormURL != "" {
		fc.Form.URL = &e.FormURL
	}
	if e.Driver != "" {
		fc.Browser.Driver = &e.Driver
	}
	if e.DebuggerURL != "" {
		fc.Browser.DebuggerURL = &e.DebuggerURL
	}
	if e.ChromeBin != "" {
		fc.Browser.Bin = &e.ChromeBin
	}
	if e.Workers != 0 {
		fc.Run.Workers = &e.Workers
	}
	return fc
}
