// Package config loads the alpmdb command line configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the parsed config.toml. Command line flags override it.
type Config struct {
	Defaults Defaults `toml:"defaults"`
	Mirror   Mirror   `toml:"mirror"`
}

type Defaults struct {
	Format string `toml:"format"`
	Output string `toml:"output"`
	Arch   string `toml:"arch"`
	Distro string `toml:"distro"`
}

type Mirror struct {
	Mirrorlist string   `toml:"mirrorlist"`
	Servers    []string `toml:"servers"`
	MaxRetries int      `toml:"max_retries"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Defaults: Defaults{
			Format: "sync",
			Output: "plain",
			Arch:   "x86_64",
			Distro: "arch",
		},
		Mirror: Mirror{
			Mirrorlist: "/etc/pacman.d/mirrorlist",
			MaxRetries: 3,
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/alpmdb/config.toml, falling back to
// ~/.config when XDG_CONFIG_HOME is unset.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "alpmdb", "config.toml")
}

// Load reads path over the defaults. An empty path means DefaultPath. A
// missing file is not an error; keys absent from the file keep their
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
		if path == "" {
			return cfg, nil
		}
	}
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if cfg.Mirror.MaxRetries < 0 {
		return Config{}, fmt.Errorf("%s: [mirror].max_retries must not be negative", path)
	}
	return cfg, nil
}
