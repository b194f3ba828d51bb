// Package config loads application configuration from an optional YAML
// file, environment variables and command-line flags, in that order of
// precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// envPrefix namespaces the environment variables, e.g. FLASHCARDS_LISTEN.
const envPrefix = "FLASHCARDS_"

// Config holds everything the process needs to run.
type Config struct {
	// DataDir holds the primary and secondary tier database files.
	DataDir string `koanf:"data-dir" validate:"required"`
	// Listen is the web UI address.
	Listen string `koanf:"listen" validate:"required,hostname_port"`
	// PrimaryQuota caps a single primary-tier value, in bytes. Zero
	// disables the cap.
	PrimaryQuota int `koanf:"primary-quota" validate:"min=0"`
	// BatchSize is the default number of cards per session.
	BatchSize int `koanf:"batch-size" validate:"min=1"`
}

// Flags defines the command-line flags mirroring the config keys.
func Flags() *pflag.FlagSet {
	f := pflag.NewFlagSet("flashcards", pflag.ContinueOnError)
	f.String("config", "", "path to a YAML config file")
	f.String("data-dir", "data", "directory for the storage tier databases")
	f.String("listen", "127.0.0.1:8080", "web UI listen address")
	f.Int("primary-quota", 5<<20, "primary tier per-value quota in bytes, 0 for unlimited")
	f.Int("batch-size", 10, "default cards per session")
	return f
}

// Load merges file, environment and flag values into a validated Config.
func Load(f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path, _ := f.GetString("config"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", "-")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
		return nil, fmt.Errorf("load flags: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
