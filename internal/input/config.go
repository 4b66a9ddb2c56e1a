package input

import (
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/dshills/keyscope/internal/input/key"
)

// Platform selects the quirks the engine compensates for.
type Platform int

const (
	// PlatformOther delivers a keyup for every key.
	PlatformOther Platform = iota
	// PlatformMac suppresses the keyup of most keys released while Meta
	// (Command) is held.
	PlatformMac
)

// String returns the platform name.
func (p Platform) String() string {
	if p == PlatformMac {
		return "mac"
	}
	return "other"
}

// DetectPlatform returns the platform the process runs on.
func DetectPlatform() Platform {
	if runtime.GOOS == "darwin" {
		return PlatformMac
	}
	return PlatformOther
}

// ParsePlatform parses a platform name. "auto" and "" detect the running
// platform.
func ParsePlatform(s string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return DetectPlatform(), nil
	case "mac", "macos", "darwin":
		return PlatformMac, nil
	case "other", "linux", "windows":
		return PlatformOther, nil
	}
	return PlatformOther, fmt.Errorf("unknown platform %q", s)
}

// Config configures an Engine.
type Config struct {
	// AllowCombinationSubmatches lets a binding match a live combination
	// holding more keys than it names, e.g. "a" matching while Shift is held.
	AllowCombinationSubmatches bool

	// EnableHardSequences treats handler names that are valid key sequences,
	// and that no scope declares as an action, as bindings of themselves.
	EnableHardSequences bool

	// DefaultKeyEvent is the event type of sequences that do not name one.
	DefaultKeyEvent key.EventType

	// IgnoreEventsCondition, when set, is consulted for every transition.
	// Ignored transitions never match; an ignored keyup still releases the
	// key so the combination can end.
	IgnoreEventsCondition func(key.Transition) bool

	// SimulateMissingKeypressEvents synthesizes the keypress of keys the
	// input layer does not deliver one for, and of every key pressed while
	// Meta is held.
	SimulateMissingKeypressEvents bool

	// CustomKeyAliases maps raw key codes to key names. The names are valid
	// in key maps.
	CustomKeyAliases map[int]string

	// StopEventPropagationAfterHandling stops dispatch at the first handler
	// that runs. When false, the nearest matching handler of every scope
	// runs unless one calls StopPropagation.
	StopEventPropagationAfterHandling bool

	// IgnoreRepeatedEventsWhenKeyHeldDown drops auto-repeat transitions.
	IgnoreRepeatedEventsWhenKeyHeldDown bool

	// Platform selects hidden keyup simulation.
	Platform Platform

	// Logger receives debug output. Nil discards.
	Logger *slog.Logger
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DefaultKeyEvent:                     key.KeyPress,
		SimulateMissingKeypressEvents:       true,
		StopEventPropagationAfterHandling:   true,
		IgnoreRepeatedEventsWhenKeyHeldDown: true,
		Platform:                            DetectPlatform(),
	}
}

func (c Config) customNames() map[string]bool {
	if len(c.CustomKeyAliases) == 0 {
		return nil
	}
	names := make(map[string]bool, len(c.CustomKeyAliases))
	for _, name := range c.CustomKeyAliases {
		names[name] = true
	}
	return names
}
