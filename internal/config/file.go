package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// LoadFile decodes the TOML settings file at path into cfg. Keys absent from
// the file keep their current values. Unknown keys are rejected.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read settings: %w", err)
	}
	return Decode(data, cfg)
}

// Decode applies TOML settings from data onto cfg with unknown-key rejection.
func Decode(data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("unknown settings key: %s", strict.String())
		}
		var de *toml.DecodeError
		if errors.As(err, &de) {
			row, col := de.Position()
			return fmt.Errorf("settings line %d column %d: %s", row, col, de.Error())
		}
		return fmt.Errorf("parse settings: %w", err)
	}
	return nil
}

// DefaultFileName is the settings file looked up when --config is not given.
const DefaultFileName = "tripmaster.toml"

// ResolveFile returns explicit when non-empty. Otherwise it returns the first
// existing DefaultFileName in dirs, or "" when none exists.
func ResolveFile(explicit string, dirs ...string) string {
	if explicit != "" {
		return explicit
	}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		p := filepath.Join(dir, DefaultFileName)
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return p
		}
	}
	return ""
}
