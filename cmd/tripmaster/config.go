package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/backmassage/tripmaster/internal/config"
)

// loadConfig layers defaults, the settings file and the flags the user set,
// then validates the result. Paths are not required when checkOnly is set.
func loadConfig(fs *pflag.FlagSet, flags *config.Flags, checkOnly bool) (*config.Config, error) {
	cfg := config.DefaultConfig()

	var dirs []string
	dirs = append(dirs, ".")
	if d, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(d, "tripmaster"))
	}
	if path := config.ResolveFile(flags.ConfigFile(), dirs...); path != "" {
		if err := config.LoadFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	flags.Apply(fs, &cfg)
	cfg.CheckOnly = checkOnly
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// absPath returns the absolute path with symlinks resolved, for comparing
// card and output hierarchies. A path that does not exist yet is returned
// absolute but unresolved.
func absPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if os.IsNotExist(err) {
		return abs, nil
	}
	return resolved, err
}
