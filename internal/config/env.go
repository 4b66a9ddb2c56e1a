package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment variables that override options.
const EnvPrefix = "KEYSCOPE_"

// ApplyEnv overrides options with prefixed environment variables given as
// "NAME=value" pairs, e.g. KEYSCOPE_ENABLE_HARD_SEQUENCES=true. Variables
// that name no option are ignored.
func ApplyEnv(o *Options, environ []string) error {
	values := make(map[string]any)
	for _, env := range environ {
		name, value, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		values[envToOption(name)] = parseEnvValue(value)
	}
	if len(values) == 0 {
		return nil
	}

	// Round-trip through YAML so values decode with the same rules, and
	// into the same fields, as a document's [options] table.
	data, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("encoding environment overrides: %w", err)
	}
	if err := yaml.Unmarshal(data, o); err != nil {
		return fmt.Errorf("%w: environment: %w", ErrInvalidOption, err)
	}
	return nil
}

// envToOption converts KEYSCOPE_DEFAULT_KEY_EVENT to default_key_event.
func envToOption(env string) string {
	return strings.ToLower(strings.TrimPrefix(env, EnvPrefix))
}

// parseEnvValue attempts to parse the string value into an appropriate type.
func parseEnvValue(s string) any {
	if s == "" {
		return s
	}

	switch strings.ToLower(s) {
	case "true", "yes", "on", "1":
		return true
	case "false", "no", "off", "0":
		return false
	}

	if strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[") {
		var v any
		if err := json.Unmarshal([]byte(s), &v); err == nil {
			return v
		}
	}

	return s
}
