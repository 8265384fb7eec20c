// Package config handles jitimage.toml tool configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the configuration file the CLI looks for.
const FileName = "jitimage.toml"

// Config is the jitimage.toml tool configuration.
type Config struct {
	Image ImageConfig `toml:"image"`
	Log   LogConfig   `toml:"log"`
	Dump  DumpConfig  `toml:"dump"`
}

// ImageConfig selects how generated code is wrapped.
type ImageConfig struct {
	// Debug builds debugger-visible ELF images instead of raw mappings.
	Debug bool `toml:"debug"`
	// Register announces debug images to an attached debugger.
	Register bool `toml:"register"`
}

// LogConfig configures diagnostic logging.
type LogConfig struct {
	// Verbosity maps onto commonlog verbosity: 0 errors and warnings
	// only, higher values add notice/info/debug.
	Verbosity int `toml:"verbosity"`
}

// DumpConfig configures diagnostic output artifacts.
type DumpConfig struct {
	// Disassembly prints a listing of the built image's code.
	Disassembly bool `toml:"disassembly"`
	// ELFPath, if set, receives the debug image's container bytes.
	ELFPath string `toml:"elf-path"`
	// SnapshotPath, if set, receives a CBOR snapshot of the registration
	// list after the image is registered.
	SnapshotPath string `toml:"snapshot-path"`
}

// Default returns the configuration used when no jitimage.toml exists.
func Default() *Config {
	return &Config{
		Image: ImageConfig{Debug: true, Register: true},
	}
}

// Load parses a jitimage.toml file from the given directory.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var c Config
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	return &c, nil
}

// FindAndLoad walks up from startDir to find a jitimage.toml file, then
// loads it. Returns the defaults if no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return Default(), nil
		}
		dir = parent
	}
}
