package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

// fakeBinder wraps a pflag.FlagSet to satisfy the flagBinder interface.
type fakeBinder struct {
	fs *pflag.FlagSet
}

func (f *fakeBinder) Flags() *pflag.FlagSet { return f.fs }

// newFlagBinder creates a FlagSet with all config flags registered at their defaults.
func newFlagBinder(defaults Config) *fakeBinder {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, defaults)

	return &fakeBinder{fs: fs}
}

// --- DefaultConfig ---

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Vocab.Path != "models/vocab.bin" {
		t.Errorf("Vocab.Path = %q; want %q", cfg.Vocab.Path, "models/vocab.bin")
	}

	if cfg.Vocab.Size != 32000 {
		t.Errorf("Vocab.Size = %d; want 32000", cfg.Vocab.Size)
	}

	if cfg.Encode.NFC {
		t.Error("Encode.NFC = true; want false")
	}

	if cfg.Encode.CollapseSpaces {
		t.Error("Encode.CollapseSpaces = true; want false")
	}

	if cfg.Server.ListenAddr != ":8080" {
		t.Errorf("Server.ListenAddr = %q; want %q", cfg.Server.ListenAddr, ":8080")
	}

	if cfg.Server.MaxTextBytes != 4096 {
		t.Errorf("Server.MaxTextBytes = %d; want 4096", cfg.Server.MaxTextBytes)
	}

	if cfg.Server.RequestTimeout != 60 {
		t.Errorf("Server.RequestTimeout = %d; want 60", cfg.Server.RequestTimeout)
	}

	if cfg.Server.ShutdownTimeout != 30 {
		t.Errorf("Server.ShutdownTimeout = %d; want 30", cfg.Server.ShutdownTimeout)
	}

	if cfg.Server.Workers != 2 {
		t.Errorf("Server.Workers = %d; want 2", cfg.Server.Workers)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q; want %q", cfg.LogLevel, "info")
	}
}

// --- Load ---

func TestLoad_DefaultsOnly(t *testing.T) {
	cfg, err := Load(LoadOptions{Defaults: DefaultConfig()})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg != DefaultConfig() {
		t.Errorf("Load() = %+v; want defaults %+v", cfg, DefaultConfig())
	}
}

func TestLoad_FlagOverride(t *testing.T) {
	defaults := DefaultConfig()
	binder := newFlagBinder(defaults)

	args := []string{
		"--vocab-path", "custom/vocab.bin",
		"--vocab-size", "512",
		"--encode-nfc",
		"--server-workers", "8",
	}
	if err := binder.fs.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := Load(LoadOptions{Cmd: binder, Defaults: defaults})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Vocab.Path != "custom/vocab.bin" {
		t.Errorf("Vocab.Path = %q; want %q", cfg.Vocab.Path, "custom/vocab.bin")
	}

	if cfg.Vocab.Size != 512 {
		t.Errorf("Vocab.Size = %d; want 512", cfg.Vocab.Size)
	}

	if !cfg.Encode.NFC {
		t.Error("Encode.NFC = false; want true")
	}

	if cfg.Server.Workers != 8 {
		t.Errorf("Server.Workers = %d; want 8", cfg.Server.Workers)
	}

	// Untouched fields keep their defaults.
	if cfg.Server.ListenAddr != defaults.Server.ListenAddr {
		t.Errorf("Server.ListenAddr = %q; want default %q", cfg.Server.ListenAddr, defaults.Server.ListenAddr)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("BPETOK_VOCAB_SIZE", "1024")
	t.Setenv("BPETOK_LOG_LEVEL", "debug")

	cfg, err := Load(LoadOptions{Defaults: DefaultConfig()})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Vocab.Size != 1024 {
		t.Errorf("Vocab.Size = %d; want 1024 from env", cfg.Vocab.Size)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q; want %q from env", cfg.LogLevel, "debug")
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bpetok.yaml")

	content := []byte("vocab:\n  path: file/vocab.bin\n  size: 256\nserver:\n  listen_addr: \":9999\"\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := Load(LoadOptions{ConfigFile: path, Defaults: DefaultConfig()})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Vocab.Path != "file/vocab.bin" {
		t.Errorf("Vocab.Path = %q; want %q", cfg.Vocab.Path, "file/vocab.bin")
	}

	if cfg.Vocab.Size != 256 {
		t.Errorf("Vocab.Size = %d; want 256", cfg.Vocab.Size)
	}

	if cfg.Server.ListenAddr != ":9999" {
		t.Errorf("Server.ListenAddr = %q; want %q", cfg.Server.ListenAddr, ":9999")
	}
}

func TestLoad_MissingExplicitConfigFile(t *testing.T) {
	_, err := Load(LoadOptions{ConfigFile: "/nonexistent/bpetok.yaml", Defaults: DefaultConfig()})
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestLoad_RejectsNonPositiveVocabSize(t *testing.T) {
	defaults := DefaultConfig()
	binder := newFlagBinder(defaults)

	if err := binder.fs.Parse([]string{"--vocab-size", "0"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	_, err := Load(LoadOptions{Cmd: binder, Defaults: defaults})
	if err == nil {
		t.Fatal("expected error for vocab size 0")
	}
}

func TestLoad_FlagBeatsEnv(t *testing.T) {
	t.Setenv("BPETOK_VOCAB_SIZE", "1024")

	defaults := DefaultConfig()
	binder := newFlagBinder(defaults)
	if err := binder.fs.Parse([]string{"--vocab-size", "64"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := Load(LoadOptions{Cmd: binder, Defaults: defaults})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Vocab.Size != 64 {
		t.Errorf("Vocab.Size = %d; want 64 (explicit flag beats env)", cfg.Vocab.Size)
	}
}
