// Package config loads bpetok configuration from flags, environment
// variables, and an optional config file, in that order of precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Vocab    VocabConfig  `mapstructure:"vocab"`
	Encode   EncodeConfig `mapstructure:"encode"`
	Server   ServerConfig `mapstructure:"server"`
	LogLevel string       `mapstructure:"log_level"`
}

type VocabConfig struct {
	// Path is the binary vocabulary file.
	Path string `mapstructure:"path"`
	// Size is the number of entries to read. The file format does not
	// record it, so it must be configured to match the vocabulary.
	Size int `mapstructure:"size"`
}

type EncodeConfig struct {
	NFC            bool `mapstructure:"nfc"`
	CollapseSpaces bool `mapstructure:"collapse_spaces"`
}

type ServerConfig struct {
	ListenAddr      string `mapstructure:"listen_addr"`
	MaxTextBytes    int    `mapstructure:"max_text_bytes"`
	RequestTimeout  int    `mapstructure:"request_timeout"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"`
	Workers         int    `mapstructure:"workers"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

func DefaultConfig() Config {
	return Config{
		Vocab: VocabConfig{
			Path: "models/vocab.bin",
			Size: 32000,
		},
		Encode: EncodeConfig{
			NFC:            false,
			CollapseSpaces: false,
		},
		Server: ServerConfig{
			ListenAddr:      ":8080",
			MaxTextBytes:    4096,
			RequestTimeout:  60,
			ShutdownTimeout: 30,
			Workers:         2,
		},
		LogLevel: "info",
	}
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("vocab-path", defaults.Vocab.Path, "Path to binary vocabulary file")
	fs.Int("vocab-size", defaults.Vocab.Size, "Number of vocabulary entries to read")
	fs.Bool("encode-nfc", defaults.Encode.NFC, "Apply Unicode NFC normalization before encoding")
	fs.Bool("encode-collapse-spaces", defaults.Encode.CollapseSpaces, "Collapse runs of spaces/tabs before encoding")
	fs.String("server-listen-addr", defaults.Server.ListenAddr, "HTTP listen address")
	fs.Int("server-max-text-bytes", defaults.Server.MaxTextBytes, "Maximum text size accepted by POST /encode")
	fs.Int("server-request-timeout", defaults.Server.RequestTimeout, "Per-request timeout in seconds")
	fs.Int("server-shutdown-timeout", defaults.Server.ShutdownTimeout, "Graceful shutdown drain period in seconds")
	fs.Int("server-workers", defaults.Server.Workers, "Max concurrent encode requests (0 = unlimited)")
	fs.String("log-level", defaults.LogLevel, "Log level (debug|info|warn|error)")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := v.BindPFlags(opts.Cmd.Flags()); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}
	registerAliases(v)

	v.SetEnvPrefix("BPETOK")
	replacer := strings.NewReplacer("-", "_", ".", "_", "__", "_")
	v.SetEnvKeyReplacer(replacer)
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("bpetok")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if cfg.Vocab.Size <= 0 {
		return Config{}, fmt.Errorf("vocab size must be positive, got %d", cfg.Vocab.Size)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("vocab.path", c.Vocab.Path)
	v.SetDefault("vocab.size", c.Vocab.Size)
	v.SetDefault("encode.nfc", c.Encode.NFC)
	v.SetDefault("encode.collapse_spaces", c.Encode.CollapseSpaces)
	v.SetDefault("server.listen_addr", c.Server.ListenAddr)
	v.SetDefault("server.max_text_bytes", c.Server.MaxTextBytes)
	v.SetDefault("server.request_timeout", c.Server.RequestTimeout)
	v.SetDefault("server.shutdown_timeout", c.Server.ShutdownTimeout)
	v.SetDefault("server.workers", c.Server.Workers)
	v.SetDefault("log_level", c.LogLevel)
}

func registerAliases(v *viper.Viper) {
	v.RegisterAlias("vocab.path", "vocab-path")
	v.RegisterAlias("vocab.size", "vocab-size")
	v.RegisterAlias("encode.nfc", "encode-nfc")
	v.RegisterAlias("encode.collapse_spaces", "encode-collapse-spaces")
	v.RegisterAlias("server.listen_addr", "server-listen-addr")
	v.RegisterAlias("server.max_text_bytes", "server-max-text-bytes")
	v.RegisterAlias("server.request_timeout", "server-request-timeout")
	v.RegisterAlias("server.shutdown_timeout", "server-shutdown-timeout")
	v.RegisterAlias("server.workers", "server-workers")
	v.RegisterAlias("log_level", "log-level")
}
