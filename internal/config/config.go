package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Config is the process-wide set of values derived from CLI flags. It is
// built once at startup and never mutated afterward, so every goroutine can
// read it through Get without synchronization.
type Config struct {
	Dir          string
	Port         uint16
	Import       string
	Cmd          string
	UIBackground string

	// BuildVersion is the running binary's major.minor.patch, stamped at
	// build time. CaptureController compares it against the major.minor a
	// child shell reports on ARE_YOU_RUNNING.
	BuildVersion string
}

var (
	once     sync.Once
	instance *Config
)

// Init builds the singleton from parsed flags. Calling it more than once
// is a programmer error and panics, since the rest of the process assumes
// config is fixed for its lifetime.
func Init(cfg Config) {
	did := false
	once.Do(func() {
		instance = &cfg
		did = true
	})
	if !did {
		panic("config: Init called more than once")
	}
}

// Get returns the process-wide config. It panics if Init has not run yet.
func Get() *Config {
	if instance == nil {
		panic("config: Get called before Init")
	}
	return instance
}

// MajorMinor returns the "major.minor" prefix of BuildVersion, the
// granularity the heartbeat version check compares at.
func (c *Config) MajorMinor() string {
	parts := strings.SplitN(c.BuildVersion, ".", 3)
	if len(parts) < 2 {
		return c.BuildVersion
	}
	return parts[0] + "." + parts[1]
}

// ResolveDir expands a possibly-relative storage directory against the
// user's home directory, matching the original's dirs::home_dir() join.
func ResolveDir(dir string) (string, error) {
	if filepath.IsAbs(dir) {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, dir), nil
}
