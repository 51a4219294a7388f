// Package config loads the configuration of the relaxed demo.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	relaxed "github.com/romdo/go-relaxed"
)

// Duration is a time.Duration written as a string such as "500ms" in YAML.
type Duration time.Duration

// UnmarshalYAML parses a duration string.
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}

	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)

	return nil
}

// MarshalYAML writes the duration as a string.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

type Config struct {
	Initial  string         `yaml:"initial"`
	Debounce DebounceConfig `yaml:"debounce"`
	Throttle ThrottleConfig `yaml:"throttle"`
	Log      LogConfig      `yaml:"log"`
	Replay   ReplayConfig   `yaml:"replay"`
}

type DebounceConfig struct {
	Delay    Duration `yaml:"delay"`
	Leading  bool     `yaml:"leading"`
	Trailing *bool    `yaml:"trailing"`
	MaxWait  Duration `yaml:"max_wait"`
}

type ThrottleConfig struct {
	Interval Duration `yaml:"interval"`
}

type LogConfig struct {
	File    string `yaml:"file"`
	Verbose bool   `yaml:"verbose"`
}

type ReplayConfig struct {
	// Script is a list of keystrokes, each a value typed at an offset from
	// the start of the replay.
	Script []Keystroke `yaml:"script"`
}

type Keystroke struct {
	At    Duration `yaml:"at"`
	Value string   `yaml:"value"`
}

// Default returns the configuration used when no file is given: a 500ms
// debounce and a 500ms throttle.
func Default() *Config {
	trailing := true

	return &Config{
		Initial: "Initial value",
		Debounce: DebounceConfig{
			Delay:    Duration(500 * time.Millisecond),
			Trailing: &trailing,
		},
		Throttle: ThrottleConfig{
			Interval: Duration(500 * time.Millisecond),
		},
		Log: LogConfig{
			File: "relaxed-demo.log",
		},
	}
}

// Load reads the YAML file at path on top of the defaults. Unknown fields are
// an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks that durations make sense.
func (c *Config) Validate() error {
	if c.Debounce.Delay < 0 {
		return fmt.Errorf("debounce delay must not be negative")
	}
	if c.Debounce.MaxWait < 0 {
		return fmt.Errorf("debounce max_wait must not be negative")
	}
	if c.Throttle.Interval < 0 {
		return fmt.Errorf("throttle interval must not be negative")
	}

	var last Duration
	for i, k := range c.Replay.Script {
		if k.At < last {
			return fmt.Errorf("replay script entry %d is out of order", i)
		}
		last = k.At
	}

	return nil
}

// DebounceConfig returns the debounce settings as a relaxed.Config.
func (c *Config) DebounceConfig() relaxed.Config {
	rc := relaxed.DefaultConfig(time.Duration(c.Debounce.Delay))
	rc.Leading = c.Debounce.Leading
	if c.Debounce.Trailing != nil {
		rc.Trailing = *c.Debounce.Trailing
	}
	rc.MaxWait = time.Duration(c.Debounce.MaxWait)

	return rc
}

// DebounceOptions returns the debounce settings as cell options.
func (c *Config) DebounceOptions() []relaxed.Option {
	rc := c.DebounceConfig()

	opts := []relaxed.Option{relaxed.MaxWait(rc.MaxWait)}
	if rc.Leading {
		opts = append(opts, relaxed.Leading())
	}
	if !rc.Trailing {
		opts = append(opts, relaxed.NoTrailing())
	}

	return opts
}
