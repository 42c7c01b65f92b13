package rowan

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
)

// Config holds engine and host settings. Start from DefaultConfig; NewEngine
// treats the zero value as DefaultConfig.
type Config struct {
	Title     string  `toml:"title"`
	Width     int     `toml:"width"`
	Height    int     `toml:"height"`
	TPS       int     `toml:"tps"`        // host ticks per second
	TimeScale float64 `toml:"time_scale"` // initial Clock scale
	Debug     bool    `toml:"debug"`
	LogLevel  string  `toml:"log_level"`
	Worker    bool    `toml:"worker"` // run the logic side on its own goroutine
}

// DefaultConfig returns the settings used when no config file is given.
func DefaultConfig() Config {
	return Config{
		Title:     "rowan",
		Width:     640,
		Height:    480,
		TPS:       60,
		TimeScale: 1,
		LogLevel:  "info",
	}
}

// LoadConfig decodes TOML over DefaultConfig and validates the result.
func LoadConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("config: size %dx%d must be positive", c.Width, c.Height)
	}
	if c.TPS <= 0 {
		return fmt.Errorf("config: tps %d must be positive", c.TPS)
	}
	if c.TimeScale < 0 {
		return fmt.Errorf("config: time_scale %v must not be negative", c.TimeScale)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: log_level: %w", err)
	}
	return nil
}

// Level returns the zerolog level named by LogLevel, or InfoLevel if it does
// not parse.
func (c Config) Level() zerolog.Level {
	l, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return l
}
