package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/recordloom-cli/internal/normalize"
	"github.com/KaramelBytes/recordloom-cli/internal/source"
)

// Global configuration structure.
type Global struct {
	// Recognized fields
	DateColumns   []string `mapstructure:"date_columns" yaml:"date_columns" validate:"dive,required"`
	GenderColumn  string   `mapstructure:"gender_column" yaml:"gender_column"`
	WeightColumn  string   `mapstructure:"weight_column" yaml:"weight_column"`
	WeightOutput  string   `mapstructure:"weight_output" yaml:"weight_output"`
	KeepRawWeight bool     `mapstructure:"keep_raw_weight" yaml:"keep_raw_weight"`
	HeightColumn  string   `mapstructure:"height_column" yaml:"height_column"`

	// Input
	Delimiter   string `mapstructure:"delimiter" yaml:"delimiter" validate:"omitempty,oneof=0x2C ; tab"`
	SQLiteQuery string `mapstructure:"sqlite_query" yaml:"sqlite_query"`
	OutputTable string `mapstructure:"output_table" yaml:"output_table" validate:"required"`

	// Execution and diagnostics
	Workers           int    `mapstructure:"workers" yaml:"workers" validate:"gte=1,lte=64"`
	UnresolvedSamples int    `mapstructure:"unresolved_samples" yaml:"unresolved_samples" validate:"gte=0"`
	TraceFormat       string `mapstructure:"trace_format" yaml:"trace_format" validate:"oneof=markdown yaml json"`
	RunsDir           string `mapstructure:"runs_dir" yaml:"runs_dir"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format" validate:"oneof=text json"`
}

// Validate checks field constraints declared in struct tags.
func (c *Global) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// NormalizeOptions maps the configuration onto pipeline options.
func (c *Global) NormalizeOptions() normalize.Options {
	opt := normalize.DefaultOptions()
	opt.DateColumns = c.DateColumns
	opt.GenderColumn = c.GenderColumn
	opt.WeightColumn = c.WeightColumn
	opt.WeightOutput = c.WeightOutput
	opt.KeepRawWeight = c.KeepRawWeight
	opt.HeightColumn = c.HeightColumn
	opt.Workers = c.Workers
	opt.UnresolvedSamples = c.UnresolvedSamples
	return opt
}

func defaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".recordloom"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.recordloom/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := defaultDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults; command flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("RECORDLOOM")
	v.AutomaticEnv()

	d := normalize.DefaultOptions()
	v.SetDefault("date_columns", d.DateColumns)
	v.SetDefault("gender_column", d.GenderColumn)
	v.SetDefault("weight_column", d.WeightColumn)
	v.SetDefault("weight_output", d.WeightOutput)
	v.SetDefault("keep_raw_weight", false)
	v.SetDefault("height_column", d.HeightColumn)
	v.SetDefault("delimiter", "")
	v.SetDefault("sqlite_query", source.DefaultQuery)
	v.SetDefault("output_table", "cleaned")
	v.SetDefault("workers", d.Workers)
	v.SetDefault("unresolved_samples", d.UnresolvedSamples)
	v.SetDefault("trace_format", "markdown")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := defaultDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.RunsDir == "" {
		dir, err := defaultDir()
		if err != nil {
			return nil, err
		}
		c.RunsDir = filepath.Join(dir, "runs")
	}
	return &c, nil
}
