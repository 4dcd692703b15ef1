// Package commands implements the CLI command handlers for trigpiler.
package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/ha1tch/trigpiler/mappings"
	"github.com/ha1tch/trigpiler/parser"
	"github.com/ha1tch/trigpiler/translate"
)

// configName is the config file name without extension.
const configName = ".trigpiler"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for trigpiler settings.
const envPrefix = "TRIGPILER"

// Config holds the CLI configuration, loaded from file, environment and
// defaults. Per-command flags override it.
type Config struct {
	Dialect  string       `mapstructure:"dialect"`
	Mappings string       `mapstructure:"mappings"`
	Builtin  bool         `mapstructure:"builtin"`
	Limits   LimitsConfig `mapstructure:"limits"`
}

// LimitsConfig mirrors parser.Limits in configuration form.
type LimitsConfig struct {
	MaxLines        int `mapstructure:"max_lines"`
	MaxNestingDepth int `mapstructure:"max_nesting_depth"`
}

// ParserLimits converts the configured limits to the parser's form.
func (c *Config) ParserLimits() parser.Limits {
	return parser.Limits{
		MaxLines:        c.Limits.MaxLines,
		MaxNestingDepth: c.Limits.MaxNestingDepth,
	}
}

// Validate rejects configuration the commands cannot act on.
func (c *Config) Validate() error {
	if _, ok := translate.ByName(c.Dialect); !ok {
		return fmt.Errorf("unknown dialect %q (available: %s)",
			c.Dialect, strings.Join(translate.Names(), ", "))
	}
	return nil
}

// LoadConfig loads configuration from file, env vars and defaults. If
// configPath is non-empty it is used as the explicit config file path;
// otherwise the config file is searched in CWD and $HOME. A missing config
// file is not an error, defaults apply.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config
	if err := viperCfg.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("dialect", "postgres")
	viperCfg.SetDefault("mappings", "")
	viperCfg.SetDefault("builtin", true)
	viperCfg.SetDefault("limits.max_lines", parser.DefaultMaxLines)
	viperCfg.SetDefault("limits.max_nesting_depth", parser.DefaultMaxNestingDepth)
}

// loadTables builds the lookup tables: the builtin seed unless disabled,
// overlaid with the document at path when one is configured.
func loadTables(path string, builtin bool) (mappings.Tables, error) {
	base := mappings.New(nil, nil, nil)
	if builtin {
		base = mappings.Builtin()
	}
	if path == "" {
		return base, nil
	}
	doc, err := mappings.LoadFile(path)
	if err != nil {
		return mappings.Tables{}, err
	}
	return base.Merge(doc), nil
}
