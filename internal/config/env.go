// Package config provides the env-var + YAML override pattern every node's
// own Config type builds on, generalizing the teacher's config.Load()
// shape (defaults, then env-var overrides, then validation) to a shared
// helper set instead of one monolithic Config struct.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// StringVar overrides dst with the environment variable key, if set.
func StringVar(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// IntVar overrides dst with the environment variable key, if set and valid.
func IntVar(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// FloatVar overrides dst with the environment variable key, if set and valid.
func FloatVar(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

// BoolVar overrides dst with the environment variable key, if set and valid.
func BoolVar(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

// DurationMsVar overrides dst (milliseconds) with the environment variable
// key, if set and valid.
func DurationMsVar(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			*dst = time.Duration(ms) * time.Millisecond
		}
	}
}

// LoadYAMLOverlay reads a YAML file at path, if it exists, and unmarshals
// it into dst (normally a pointer to a node's own Config). A missing file
// is not an error: nodes run on built-in defaults plus env overrides when
// no overlay file is present. The node entry points take the path from
// VISIONLOCK_CONFIG_FILE.
func LoadYAMLOverlay(path string, dst any) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}
