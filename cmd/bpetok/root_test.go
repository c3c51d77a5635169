package main

import (
	"testing"

	"github.com/example/go-bpetok/internal/config"
)

func TestNewRootCmd_HasExpectedSubcommands(t *testing.T) {
	root := NewRootCmd()

	want := []string{"encode", "decode", "vocab", "serve", "bench", "health"}
	for _, name := range want {
		found := false

		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}

		if !found {
			t.Errorf("expected subcommand %q not found in root", name)
		}
	}
}

func TestNewRootCmd_HasPersistentConfigFlag(t *testing.T) {
	root := NewRootCmd()
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("expected --config persistent flag to be registered")
	}
}

func TestSetupLogger_DoesNotPanic(_ *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		setupLogger(level)
	}
}

func TestSetupLogger_InvalidLevelFallsBackToInfo(_ *testing.T) {
	// Should not panic on invalid level.
	setupLogger("not-a-level")
}

func TestRequireConfig_FailsWhenNotInitialized(t *testing.T) {
	origCfg, origLoaded := activeCfg, cfgLoaded

	t.Cleanup(func() { activeCfg, cfgLoaded = origCfg, origLoaded })

	activeCfg = config.Config{}
	cfgLoaded = false

	_, err := requireConfig()
	if err == nil {
		t.Fatal("expected error when config is not loaded")
	}
}

func TestRequireConfig_SucceedsWhenLoaded(t *testing.T) {
	origCfg, origLoaded := activeCfg, cfgLoaded

	t.Cleanup(func() { activeCfg, cfgLoaded = origCfg, origLoaded })

	activeCfg = config.Config{
		Vocab: config.VocabConfig{Path: "/some/vocab.bin", Size: 42},
	}
	cfgLoaded = true

	got, err := requireConfig()
	if err != nil {
		t.Fatalf("requireConfig returned unexpected error: %v", err)
	}

	if got.Vocab.Path != "/some/vocab.bin" {
		t.Errorf("unexpected vocab path: %q", got.Vocab.Path)
	}
}
