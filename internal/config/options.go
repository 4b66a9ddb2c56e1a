package config

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/dshills/keyscope/internal/input"
	"github.com/dshills/keyscope/internal/input/key"
)

// Options are the engine settings of a document.
type Options struct {
	AllowCombinationSubmatches          bool              `toml:"allow_combination_submatches" yaml:"allow_combination_submatches"`
	EnableHardSequences                 bool              `toml:"enable_hard_sequences" yaml:"enable_hard_sequences"`
	DefaultKeyEvent                     string            `toml:"default_key_event" yaml:"default_key_event"`
	SimulateMissingKeypressEvents       bool              `toml:"simulate_missing_keypress_events" yaml:"simulate_missing_keypress_events"`
	StopEventPropagationAfterHandling   bool              `toml:"stop_event_propagation_after_handling" yaml:"stop_event_propagation_after_handling"`
	IgnoreRepeatedEventsWhenKeyHeldDown bool              `toml:"ignore_repeated_events_when_key_held_down" yaml:"ignore_repeated_events_when_key_held_down"`
	IgnoreEventsCondition               string            `toml:"ignore_events_condition" yaml:"ignore_events_condition"`
	CustomKeyAliases                    map[string]string `toml:"custom_key_aliases" yaml:"custom_key_aliases"`
	Platform                            string            `toml:"platform" yaml:"platform"`
	LogLevel                            string            `toml:"log_level" yaml:"log_level"`
}

// DefaultOptions returns the options used for settings a document omits.
func DefaultOptions() Options {
	return Options{
		DefaultKeyEvent:                     key.KeyPress.String(),
		SimulateMissingKeypressEvents:       true,
		StopEventPropagationAfterHandling:   true,
		IgnoreRepeatedEventsWhenKeyHeldDown: true,
		Platform:                            "auto",
		LogLevel:                            "info",
	}
}

// EngineConfig converts the options into an engine configuration. The
// ignore condition is compiled here, so syntax errors surface before any
// transition is processed.
func (o Options) EngineConfig(logger *slog.Logger) (input.Config, error) {
	cfg := input.DefaultConfig()
	cfg.AllowCombinationSubmatches = o.AllowCombinationSubmatches
	cfg.EnableHardSequences = o.EnableHardSequences
	cfg.SimulateMissingKeypressEvents = o.SimulateMissingKeypressEvents
	cfg.StopEventPropagationAfterHandling = o.StopEventPropagationAfterHandling
	cfg.IgnoreRepeatedEventsWhenKeyHeldDown = o.IgnoreRepeatedEventsWhenKeyHeldDown
	cfg.Logger = logger

	if o.DefaultKeyEvent != "" {
		t, err := key.ParseEventType(o.DefaultKeyEvent)
		if err != nil {
			return input.Config{}, fmt.Errorf("%w: default_key_event: %w", ErrInvalidOption, err)
		}
		cfg.DefaultKeyEvent = t
	}

	p, err := input.ParsePlatform(o.Platform)
	if err != nil {
		return input.Config{}, fmt.Errorf("%w: platform: %w", ErrInvalidOption, err)
	}
	cfg.Platform = p

	if len(o.CustomKeyAliases) > 0 {
		cfg.CustomKeyAliases = make(map[int]string, len(o.CustomKeyAliases))
		for code, name := range o.CustomKeyAliases {
			n, err := strconv.Atoi(code)
			if err != nil {
				return input.Config{}, fmt.Errorf("%w: custom_key_aliases: key code %q is not a number", ErrInvalidOption, code)
			}
			if name == "" {
				return input.Config{}, fmt.Errorf("%w: custom_key_aliases: empty name for key code %d", ErrInvalidOption, n)
			}
			cfg.CustomKeyAliases[n] = name
		}
	}

	if o.IgnoreEventsCondition != "" {
		cond, err := CompileCondition(o.IgnoreEventsCondition, logger)
		if err != nil {
			return input.Config{}, fmt.Errorf("%w: ignore_events_condition: %w", ErrInvalidOption, err)
		}
		cfg.IgnoreEventsCondition = cond
	}

	return cfg, nil
}
