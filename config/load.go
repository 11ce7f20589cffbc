package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads configuration from an rc file with ENV interpolation.
// If rcPath is empty, it searches default locations. A missing rc file
// is not an error: the defaults are returned unchanged.
func Load(rcPath string, getenv func(string) string) (*Config, error) {
	cfg, _, err := LoadWithPath(rcPath, getenv)
	return cfg, err
}

// LoadWithPath reads configuration and returns both the config and the
// resolved rc path. The path is empty when no rc file was found.
func LoadWithPath(rcPath string, getenv func(string) string) (*Config, string, error) {
	path, err := resolveRCPath(rcPath, getenv)
	if err != nil {
		return nil, "", err
	}
	if path == "" {
		return Defaults(), "", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read rc file: %w", err)
	}

	// Interpolate environment variables
	data = interpolateEnv(data, getenv)

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := validate(cfg); err != nil {
		return nil, "", err
	}

	return cfg, path, nil
}

// resolveRCPath finds the rc file to use.
// Search order: explicit path > PIRC env > ~/.pirc.yaml.
// Only an explicitly named file is required to exist.
func resolveRCPath(explicit string, getenv func(string) string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("rc file not found: %s", explicit)
		}
		return explicit, nil
	}

	// Try PIRC environment variable
	if envPath := getenv("PIRC"); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("PIRC file not found: %s", envPath)
		}
		return envPath, nil
	}

	// Try ~/.pirc.yaml
	home, err := os.UserHomeDir()
	if err == nil {
		rc := filepath.Join(home, ".pirc.yaml")
		if _, err := os.Stat(rc); err == nil {
			return rc, nil
		}
	}

	return "", nil
}

// envPattern matches ${VAR} or ${VAR:-default}
var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// interpolateEnv replaces ${VAR} and ${VAR:-default} patterns with environment values.
func interpolateEnv(data []byte, getenv func(string) string) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		parts := envPattern.FindSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := string(parts[1])
		value := getenv(varName)

		if value == "" && len(parts) >= 3 && len(parts[2]) > 0 {
			value = string(parts[2])
		}

		return []byte(value)
	})
}

// validate checks the loaded configuration for errors.
func validate(cfg *Config) error {
	var errs []string

	if cfg.SampleSize < 1 {
		errs = append(errs, fmt.Sprintf("invalid sample_size: %d (must be at least 1)", cfg.SampleSize))
	}

	for alias, dsn := range cfg.SQL {
		if strings.TrimSpace(alias) == "" {
			errs = append(errs, "sql: alias name cannot be empty")
			continue
		}
		if strings.TrimSpace(dsn) == "" {
			errs = append(errs, fmt.Sprintf("sql.%s: connection string is empty", alias))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
