package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Defaults used when neither flags, env nor the config file set a value.
const (
	DefaultInputPath      = "shopping_behavior_updated.csv"
	DefaultOutputPath     = "category_discount_impact.csv"
	DefaultMinPerGroup    = 10
	DefaultMakeCharts     = true
	DefaultTopN           = 10
	DefaultPreviewRows    = 10
	DefaultCategoryColumn = "Category"
	DefaultAmountColumn   = "Purchase Amount (USD)"
	DefaultDiscountColumn = "Discount Applied"

	envPrefix = "DISCOUNT_IMPACT"
	dirName   = ".discount-impact"
)

// Global configuration structure.
type Global struct {
	InputPath    string `mapstructure:"input_path" yaml:"input_path" validate:"required"`
	OutputPath   string `mapstructure:"output_path" yaml:"output_path" validate:"required"`
	MarkdownPath string `mapstructure:"markdown_path" yaml:"markdown_path"`
	ChartDir     string `mapstructure:"chart_dir" yaml:"chart_dir"`

	MinPerGroup int  `mapstructure:"min_per_group" yaml:"min_per_group" validate:"min=1"`
	MakeCharts  bool `mapstructure:"make_charts" yaml:"make_charts"`
	TopN        int  `mapstructure:"top_n" yaml:"top_n" validate:"min=1"`
	PreviewRows int  `mapstructure:"preview_rows" yaml:"preview_rows" validate:"min=0"`

	// Input parsing; separators are checked by analysis.ParseSeparators
	Delimiter          string `mapstructure:"delimiter" yaml:"delimiter"`
	SheetName          string `mapstructure:"sheet_name" yaml:"sheet_name"`
	DecimalSeparator   string `mapstructure:"decimal_separator" yaml:"decimal_separator"`
	ThousandsSeparator string `mapstructure:"thousands_separator" yaml:"thousands_separator"`

	// Column names
	CategoryColumn string `mapstructure:"category_column" yaml:"category_column" validate:"required"`
	AmountColumn   string `mapstructure:"amount_column" yaml:"amount_column" validate:"required"`
	DiscountColumn string `mapstructure:"discount_column" yaml:"discount_column" validate:"required"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format" validate:"oneof=text json"`
}

// ResolvedChartDir returns the directory charts are written to.
// An empty chart_dir means "next to the output CSV".
func (c *Global) ResolvedChartDir() string {
	if c.ChartDir != "" {
		return c.ChartDir
	}
	return filepath.Dir(c.OutputPath)
}

var validate = validator.New()

// Validate checks field constraints and reports the first offending key.
func (c *Global) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("invalid config: %s fails %q (value %v)", keyFor(fe.StructField()), fe.Tag(), fe.Value())
	}
	return fmt.Errorf("invalid config: %w", err)
}

// keyFor maps a Go field name to its config key (the mapstructure tag).
func keyFor(field string) string {
	var b strings.Builder
	for i, r := range field {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, dirName), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.discount-impact/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := configDir()
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

// setDefaults registers every key of Defaults() so env overrides resolve.
func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("input_path", d.InputPath)
	v.SetDefault("output_path", d.OutputPath)
	v.SetDefault("markdown_path", d.MarkdownPath)
	v.SetDefault("chart_dir", d.ChartDir)
	v.SetDefault("min_per_group", d.MinPerGroup)
	v.SetDefault("make_charts", d.MakeCharts)
	v.SetDefault("top_n", d.TopN)
	v.SetDefault("preview_rows", d.PreviewRows)
	v.SetDefault("delimiter", d.Delimiter)
	v.SetDefault("sheet_name", d.SheetName)
	v.SetDefault("decimal_separator", d.DecimalSeparator)
	v.SetDefault("thousands_separator", d.ThousandsSeparator)
	v.SetDefault("category_column", d.CategoryColumn)
	v.SetDefault("amount_column", d.AmountColumn)
	v.SetDefault("discount_column", d.DiscountColumn)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (applied by the caller) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		dir, err := configDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		if err := v.ReadInConfig(); err != nil {
			var nf viper.ConfigFileNotFoundError
			if !errors.As(err, &nf) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// Defaults returns the configuration used when nothing is configured.
func Defaults() *Global {
	return &Global{
		InputPath:      DefaultInputPath,
		OutputPath:     DefaultOutputPath,
		MinPerGroup:    DefaultMinPerGroup,
		MakeCharts:     DefaultMakeCharts,
		TopN:           DefaultTopN,
		PreviewRows:    DefaultPreviewRows,
		CategoryColumn: DefaultCategoryColumn,
		AmountColumn:   DefaultAmountColumn,
		DiscountColumn: DefaultDiscountColumn,
		LogLevel:       "info",
		LogFormat:      "text",
	}
}
