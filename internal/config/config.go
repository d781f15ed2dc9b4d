// Package config loads docschema's layered configuration.
//
// Precedence, highest first: explicitly set flags, DOCSCHEMA_* environment
// variables, the YAML config file, built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"docschema/internal/dialect"
	"docschema/internal/schema"
	"docschema/internal/workbook"
)

// EnvPrefix prefixes every environment override. A double underscore
// separates nested keys: DOCSCHEMA_NAMING__MAX_LENGTH sets naming.max_length.
const EnvPrefix = "DOCSCHEMA_"

// Default values.
const (
	DefaultOutputDir     = "output"
	DefaultWorkbookFile  = "WordToExcel.xlsx"
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "console"
	DefaultFlushInterval = 10 * time.Second
)

// ErrMissingInput is returned by Validate when no input document is set.
var ErrMissingInput = errors.New("input document is required")

// Config is the resolved run configuration.
type Config struct {
	Input     string   `koanf:"input"`
	OutputDir string   `koanf:"output_dir"`
	TableName string   `koanf:"table_name"`
	Dialects  []string `koanf:"dialects"`
	Summary   bool     `koanf:"summary"`

	Workbook WorkbookConfig `koanf:"workbook"`
	Naming   NamingConfig   `koanf:"naming"`
	Profile  ProfileConfig  `koanf:"profile"`
	Log      LogConfig      `koanf:"log"`
	Metrics  MetricsConfig  `koanf:"metrics"`

	// FileUsed is the config file that was loaded, if any.
	FileUsed string `koanf:"-"`
}

// WorkbookConfig controls the intermediate spreadsheet.
type WorkbookConfig struct {
	Enabled   bool   `koanf:"enabled"`
	FileName  string `koanf:"file_name"`
	SheetName string `koanf:"sheet_name"`
}

// NamingConfig controls identifier normalization.
type NamingConfig struct {
	MaxLength        int  `koanf:"max_length"`
	SingularTable    bool `koanf:"singular_table"`
	QuoteIdentifiers bool `koanf:"quote_identifiers"`
}

// ProfileConfig controls column profiling.
type ProfileConfig struct {
	Workers int `koanf:"workers"`
}

// LogConfig selects the logger level and encoder.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// MetricsConfig selects the metrics backend.
type MetricsConfig struct {
	Backend    string        `koanf:"backend"`
	Tags       []string      `koanf:"tags"`
	FlushEvery time.Duration `koanf:"flush_every"`
}

func defaults() map[string]interface{} {
	names := make([]string, len(dialect.All))
	for i, d := range dialect.All {
		names[i] = d.String()
	}
	return map[string]interface{}{
		"output_dir":               DefaultOutputDir,
		"dialects":                 names,
		"summary":                  false,
		"workbook.enabled":         true,
		"workbook.file_name":       DefaultWorkbookFile,
		"workbook.sheet_name":      workbook.DefaultSheetName,
		"naming.max_length":        schema.DefaultMaxIdentLength,
		"naming.singular_table":    false,
		"naming.quote_identifiers": false,
		"profile.workers":          1,
		"log.level":                DefaultLogLevel,
		"log.format":               DefaultLogFormat,
		"metrics.backend":          "none",
		"metrics.flush_every":      DefaultFlushInterval.String(),
	}
}

// listKeys are comma-separated when they come from the environment.
var listKeys = map[string]bool{
	"dialects":     true,
	"metrics.tags": true,
}

// findConfigFile returns the explicit path, or docschema.yaml / docschema.yml
// in the working directory when present.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"docschema.yaml", "docschema.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load resolves the configuration. flags may be nil; only flags the user
// explicitly set override lower layers.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", used, err)
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			val := posflag.FlagVal(flags, f)
			if f.Name == "no-workbook" {
				b, _ := val.(bool)
				val = !b
			}
			return key, val
		}), nil); err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.FileUsed = used
	return &cfg, nil
}

// envKey maps DOCSCHEMA_NAMING__MAX_LENGTH to naming.max_length.
func envKey(name, value string) (string, interface{}) {
	key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	key = strings.ReplaceAll(key, "__", ".")
	if listKeys[key] {
		return key, splitList(value)
	}
	return key, value
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Input) == "" {
		return ErrMissingInput
	}
	if _, err := dialect.ParseList(c.Dialects); err != nil {
		return fmt.Errorf("dialects: %w", err)
	}
	if c.Profile.Workers < 0 {
		return fmt.Errorf("profile.workers must be >= 0, got %d", c.Profile.Workers)
	}
	if c.Naming.MaxLength < 0 || (c.Naming.MaxLength > 0 && c.Naming.MaxLength < schema.MinIdentLength) {
		return fmt.Errorf("naming.max_length must be 0 or >= %d, got %d", schema.MinIdentLength, c.Naming.MaxLength)
	}
	switch c.Metrics.Backend {
	case "", "none", "datadog":
	default:
		return fmt.Errorf("metrics.backend: unknown backend %q (want none|datadog)", c.Metrics.Backend)
	}
	return nil
}
