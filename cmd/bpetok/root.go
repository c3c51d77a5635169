package main

import (
	"errors"
	"log/slog"
	"os"

	"github.com/example/go-bpetok/internal/config"
	"github.com/example/go-bpetok/internal/server"
	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	activeCfg config.Config
	cfgLoaded bool
)

func NewRootCmd() *cobra.Command {
	defaults := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "bpetok",
		Short: "Subword tokenizer command line",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := config.Load(config.LoadOptions{
				Cmd:        cmd,
				ConfigFile: cfgFile,
				Defaults:   defaults,
			})
			if err != nil {
				return err
			}
			activeCfg = loaded
			cfgLoaded = true
			setupLogger(loaded.LogLevel)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Optional config file (yaml|toml|json)")
	config.RegisterFlags(cmd.PersistentFlags(), defaults)

	cmd.AddCommand(newEncodeCmd())
	cmd.AddCommand(newDecodeCmd())
	cmd.AddCommand(newVocabCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newBenchCmd())
	cmd.AddCommand(newHealthCmd())

	return cmd
}

// requireConfig returns the configuration loaded by PersistentPreRunE.
func requireConfig() (config.Config, error) {
	if !cfgLoaded {
		return config.Config{}, errors.New("configuration not loaded")
	}
	return activeCfg, nil
}

// setupLogger configures the process-wide slog default logger.
func setupLogger(levelStr string) {
	lvl, err := server.ParseLogLevel(levelStr)
	if err != nil {
		lvl = slog.LevelInfo
	}
	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(h))
}
