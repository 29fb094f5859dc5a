// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/playlog/internal/resolve"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Run     RunConfig     `toml:"run"`
	Browser BrowserConfig `toml:"browser"`
	Form    FormConfig    `toml:"form"`
	Tables  TablesConfig  `toml:"tables"`
}

// RunConfig maps run-related settings.
type RunConfig struct {
	Workers          *int      `toml:"workers"`
	Sequential       *bool     `toml:"sequential"`
	DryRun           *bool     `toml:"dry-run"`
	SuccessDelay     *Duration `toml:"success-delay"`
	FailureDelay     *Duration `toml:"failure-delay"`
	FailureThreshold *int      `toml:"failure-threshold"`
	Progress         *bool     `toml:"progress"`
}

// BrowserConfig maps browser settings.
type BrowserConfig struct {
	Driver         *string   `toml:"driver"`
	Headless       *bool     `toml:"headless"`
	Bin            *string   `toml:"bin"`
	DebuggerURL    *string   `toml:"debugger-url"`
	ElementTimeout *Duration `toml:"element-timeout"`
	SettleTimeout  *Duration `toml:"settle-timeout"`
}

// FormConfig maps the form address and wording overrides. Label keys are the
// kebab-case names of the wording fields, such as "hero-question" or "next".
type FormConfig struct {
	URL    *string           `toml:"url"`
	Labels map[string]string `toml:"labels"`
}

// TablesConfig extends the built-in lookup tables.
type TablesConfig struct {
	Heroes                 map[string]string `toml:"heroes"`
	Scenarios              map[string]string `toml:"scenarios"`
	Modulars               map[string]string `toml:"modulars"`
	NoAspectHeroes         []string          `toml:"no-aspect-heroes"`
	DualAspectHeroes       []string          `toml:"dual-aspect-heroes"`
	NoModularScenarios     []string          `toml:"no-modular-scenarios"`
	AltDifficultyScenarios []string          `toml:"alt-difficulty-scenarios"`
}

// Resolve converts the section into tables to merge over the defaults.
func (t TablesConfig) Resolve() resolve.Tables {
	return resolve.Tables{
		Heroes:                 t.Heroes,
		Scenarios:              t.Scenarios,
		Modulars:               t.Modulars,
		NoAspectHeroes:         resolve.NewSet(t.NoAspectHeroes...),
		DualAspectHeroes:       resolve.NewSet(t.DualAspectHeroes...),
		NoModularScenarios:     resolve.NewSet(t.NoModularScenarios...),
		AltDifficultyScenarios: resolve.NewSet(t.AltDifficultyScenarios...),
	}
}

// Duration is a time.Duration written as a string such as "2s".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(v)
	return nil
}

// Std returns the value as a time.Duration; nil gives 0.
func (d *Duration) Std() time.Duration {
	if d == nil {
		return 0
	}
	return time.Duration(*d)
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
