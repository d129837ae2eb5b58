package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config is the host runtime configuration read from HELLOXR_* environment variables.
type Config struct {
	LogLevel       string        `env:"HELLOXR_LOG_LEVEL" envDefault:"info"`
	LayoutPath     string        `env:"HELLOXR_LAYOUT"`
	AssetDir       string        `env:"HELLOXR_ASSET_DIR" envDefault:"."`
	SessionMode    string        `env:"HELLOXR_SESSION_MODE" envDefault:"immersive-vr"`
	SupportedModes []string      `env:"HELLOXR_SUPPORTED_MODES" envSeparator:"," envDefault:"immersive-vr,inline"`
	InspectorKeys  string        `env:"HELLOXR_INSPECTOR_KEYS" envDefault:"ctrl+alt+i"`
	ResetKey       string        `env:"HELLOXR_RESET_KEY" envDefault:"r"`
	TickInterval   time.Duration `env:"HELLOXR_TICK_INTERVAL" envDefault:"16ms"`
	WindowWidth    int           `env:"HELLOXR_WINDOW_WIDTH" envDefault:"1280"`
	WindowHeight   int           `env:"HELLOXR_WINDOW_HEIGHT" envDefault:"720"`
	Audio          bool          `env:"HELLOXR_AUDIO" envDefault:"true"`
	AudioBuffer    time.Duration `env:"HELLOXR_AUDIO_BUFFER" envDefault:"100ms"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("%w: tick interval must be positive, got %s", ErrInvalidConfig, c.TickInterval)
	}
	if c.WindowWidth <= 0 || c.WindowHeight <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalidConfig, c.WindowWidth, c.WindowHeight)
	}
	if strings.TrimSpace(c.SessionMode) == "" {
		return fmt.Errorf("%w: session mode is empty", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.InspectorKeys) == "" {
		return fmt.Errorf("%w: inspector keys are empty", ErrInvalidConfig)
	}
	if c.Audio && c.AudioBuffer <= 0 {
		return fmt.Errorf("%w: audio buffer must be positive, got %s", ErrInvalidConfig, c.AudioBuffer)
	}
	return nil
}

// Level returns the slog level named by LogLevel. Invalid names fall back to info;
// Validate reports them.
func (c Config) Level() slog.Level {
	lvl, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func parseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("%w: log level %q", ErrInvalidConfig, s)
	}
	return lvl, nil
}
