// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ik5/audmix/pcm"
)

// Default device parameters, applied where a Config leaves a field zero.
const (
	DefaultSampleRate   = 48000
	DefaultChannels     = 2
	DefaultPeriodMillis = 10
)

// Config holds the engine-wide audio format. The zero value of Format,
// Capability and PeriodMillis is filled with defaults at construction;
// SampleRate and Channels must be set.
type Config struct {
	SampleRate   int
	Channels     int
	Format       pcm.Format
	Capability   Capability
	PeriodMillis int
}

// Validate rejects configurations the hot path could not execute
// error-free: non-positive rate or channels, or a format the converter
// does not support.
func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrInvalidConfiguration, c.SampleRate)
	}
	if c.Channels <= 0 {
		return fmt.Errorf("%w: channel count %d", ErrInvalidConfiguration, c.Channels)
	}
	if err := pcm.Validate(c.Format); err != nil {
		return fmt.Errorf("%w: format %s", ErrInvalidConfiguration, c.Format)
	}
	return nil
}

// withDefaults fills the optional fields. Format defaults to f32,
// capability to playback-only.
func (c Config) withDefaults() Config {
	if c.Format == pcm.FormatUnknown {
		c.Format = pcm.FormatF32
	}
	if c.Capability == 0 {
		c.Capability = CapabilityPlayback
	}
	if c.PeriodMillis == 0 {
		c.PeriodMillis = DefaultPeriodMillis
	}
	return c
}

// fileConfig is the YAML shape of a Config; format and capability are
// spelled as strings in configuration files.
type fileConfig struct {
	SampleRate   int    `yaml:"sample_rate"`
	Channels     int    `yaml:"channels"`
	Format       string `yaml:"format"`
	Capability   string `yaml:"capability"`
	PeriodMillis int    `yaml:"period_ms"`
}

// LoadConfig reads a YAML config file, expanding ${ENV} references
// before parsing. Missing fields fall back to defaults; the result is
// validated.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return ParseConfig([]byte(os.ExpandEnv(string(data))))
}

// ParseConfig parses YAML config data. See LoadConfig.
func ParseConfig(data []byte) (Config, error) {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}

	if fc.SampleRate == 0 {
		fc.SampleRate = DefaultSampleRate
	}
	if fc.Channels == 0 {
		fc.Channels = DefaultChannels
	}

	format, err := pcm.ParseFormat(fc.Format)
	if err != nil {
		return Config{}, fmt.Errorf("%w: format %q", ErrInvalidConfiguration, fc.Format)
	}

	capability, err := parseCapability(fc.Capability)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		SampleRate:   fc.SampleRate,
		Channels:     fc.Channels,
		Format:       format,
		Capability:   capability,
		PeriodMillis: fc.PeriodMillis,
	}.withDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func parseCapability(s string) (Capability, error) {
	switch s {
	case "", "playback":
		return CapabilityPlayback, nil
	case "record", "capture":
		return CapabilityRecord, nil
	case "duplex":
		return CapabilityDuplex, nil
	}
	return 0, fmt.Errorf("%w: capability %q", ErrInvalidConfiguration, s)
}
