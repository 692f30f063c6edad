package secrets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var ErrNotConfigured = errors.New("not configured")

// Source describes where a secret may come from. The first non-empty
// location wins, in order File, Value, Env.
type Source struct {
	// Name is used in error messages to give more context about the secret.
	Name string
	// Value is an inline secret from configuration or flags.
	Value string
	// File holds the secret. A leading ~/ is expanded to the home directory.
	File string
	// Env names an environment variable holding the secret.
	Env string
}

// Load returns the trimmed secret. An empty file or variable is an error
// rather than a silent fallback to the next location.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	if file := strings.TrimSpace(src.File); file != "" {
		return fromFile(name, file)
	}
	if secret := strings.TrimSpace(src.Value); secret != "" {
		return secret, nil
	}
	if env := strings.TrimSpace(src.Env); env != "" {
		return fromEnv(name, env)
	}

	return "", fmt.Errorf("%s: %w", name, ErrNotConfigured)
}

func fromFile(name, file string) (string, error) {
	path, err := expandHome(file)
	if err != nil {
		return "", fmt.Errorf("resolving %s file %q: %w", name, file, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
	}
	secret := strings.TrimSpace(string(data))
	if secret == "" {
		return "", fmt.Errorf("%s file %q is empty", name, file)
	}
	return secret, nil
}

func fromEnv(name, env string) (string, error) {
	secret := strings.TrimSpace(os.Getenv(env))
	if secret == "" {
		return "", fmt.Errorf("%s: %w (%s is empty)", name, ErrNotConfigured, env)
	}
	return secret, nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
