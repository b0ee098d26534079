package secrets

import (
	"fmt"
	"os"
	"strings"
)

// Source describes where a secret may be found. Lookups happen in the order
// File, Env, Value and the first non-empty candidate wins.
type Source struct {
	// Name is used in error messages to give more context about the secret.
	Name string
	// File points to a file containing the secret value.
	File string
	// Env names environment variables to consult when File is not set.
	Env []string
	// Value is an inline secret value provided via configuration or flags.
	Value string
}

var lookupEnv = os.LookupEnv

// Load returns the resolved secret value from the provided source. The
// returned secret is always trimmed. An error is returned when no candidate
// contains a usable secret or when a configured file cannot be read.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	if file := strings.TrimSpace(src.File); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}
		secret := strings.TrimSpace(string(data))
		if secret == "" {
			return "", fmt.Errorf("%s file %q is empty", name, file)
		}
		return secret, nil
	}

	for _, key := range src.Env {
		value, ok := lookupEnv(key)
		if !ok {
			continue
		}
		if secret := strings.TrimSpace(value); secret != "" {
			return secret, nil
		}
	}

	if secret := strings.TrimSpace(src.Value); secret != "" {
		return secret, nil
	}

	if len(src.Env) > 0 {
		return "", fmt.Errorf("%s is not configured (checked env %s)", name, strings.Join(src.Env, ", "))
	}
	return "", fmt.Errorf("%s is not configured", name)
}
