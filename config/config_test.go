package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	tomlContent := `
[image]
debug = true
register = false

[log]
verbosity = 2

[dump]
disassembly = true
elf-path = "out.elf"
snapshot-path = "registry.cbor"
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(tomlContent), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !c.Image.Debug {
		t.Error("image debug should be true")
	}
	if c.Image.Register {
		t.Error("image register should be false")
	}
	if c.Log.Verbosity != 2 {
		t.Errorf("verbosity = %d, want 2", c.Log.Verbosity)
	}
	if !c.Dump.Disassembly {
		t.Error("dump disassembly should be true")
	}
	if c.Dump.ELFPath != "out.elf" {
		t.Errorf("elf path = %q, want out.elf", c.Dump.ELFPath)
	}
	if c.Dump.SnapshotPath != "registry.cbor" {
		t.Errorf("snapshot path = %q, want registry.cbor", c.Dump.SnapshotPath)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Error("Load of a directory without jitimage.toml should fail")
	}
}

func TestFindAndLoadWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	tomlContent := "[log]\nverbosity = 3\n"
	if err := os.WriteFile(filepath.Join(root, FileName), []byte(tomlContent), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := FindAndLoad(nested)
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if c.Log.Verbosity != 3 {
		t.Errorf("verbosity = %d, want 3 (from ancestor config)", c.Log.Verbosity)
	}
}

func TestFindAndLoadDefaults(t *testing.T) {
	c, err := FindAndLoad(t.TempDir())
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if c == nil {
		t.Fatal("expected defaults, got nil")
	}
	if !c.Image.Debug || !c.Image.Register {
		t.Errorf("defaults should build and register debug images: %+v", c.Image)
	}
}
