package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/de-tools/mpesa-etl/pkg/logger"
	"github.com/de-tools/mpesa-etl/pkg/models/domain"
	"github.com/de-tools/mpesa-etl/pkg/services/derive"
	"github.com/de-tools/mpesa-etl/pkg/services/pipeline"
	"github.com/de-tools/mpesa-etl/pkg/services/validation"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const EnvPrefix = "MPESA_ETL"

type Config struct {
	ETL        ETLConfig        `mapstructure:"etl_config"`
	Validation ValidationConfig `mapstructure:"data_validation"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Pipeline   PipelineConfig   `mapstructure:"pipeline"`
}

type ETLConfig struct {
	InputFilePath   string         `mapstructure:"input_file_path"`
	OutputDir       string         `mapstructure:"output_dir"`
	OutputFilename  string         `mapstructure:"output_filename"`
	DateFormat      string         `mapstructure:"date_format"`
	AmountPrecision int32          `mapstructure:"amount_precision"`
	FeeRules        FeeRulesConfig `mapstructure:"transaction_fee_rules"`
}

type FeeRulesConfig struct {
	Threshold   float64 `mapstructure:"threshold"`
	FeeRateLow  float64 `mapstructure:"fee_rate_low"`
	FeeRateHigh float64 `mapstructure:"fee_rate_high"`
	MinFee      float64 `mapstructure:"min_fee"`
	MaxFee      float64 `mapstructure:"max_fee"`
}

type AmountRange struct {
	Min float64 `mapstructure:"min"`
	Max float64 `mapstructure:"max"`
}

type ValidationConfig struct {
	RequiredColumns []string    `mapstructure:"required_columns"`
	AmountRange     AmountRange `mapstructure:"amount_range"`
	AllowedTypes    []string    `mapstructure:"allowed_types"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type StorageConfig struct {
	DuckDBPath   string `mapstructure:"duckdb_path"`
	ProfilesPath string `mapstructure:"profiles_path"`
}

type PipelineConfig struct {
	Workers   int `mapstructure:"workers"`
	BatchSize int `mapstructure:"batch_size"`
}

func setDefaults(v *viper.Viper) {
	fees := derive.DefaultFeeRules()
	val := validation.DefaultSettings()
	run := pipeline.DefaultSettings()

	v.SetDefault("etl_config.input_file_path", "mpesa_sample.csv")
	v.SetDefault("etl_config.output_dir", "transformed_data")
	v.SetDefault("etl_config.output_filename", "transformed_mpesa_data.csv")
	v.SetDefault("etl_config.date_format", "%Y-%m-%d %H:%M:%S")
	v.SetDefault("etl_config.amount_precision", fees.Precision)
	v.SetDefault("etl_config.transaction_fee_rules.threshold", fees.Threshold.InexactFloat64())
	v.SetDefault("etl_config.transaction_fee_rules.fee_rate_low", fees.LowRate.InexactFloat64())
	v.SetDefault("etl_config.transaction_fee_rules.fee_rate_high", fees.HighRate.InexactFloat64())
	v.SetDefault("etl_config.transaction_fee_rules.min_fee", fees.MinFee.InexactFloat64())
	v.SetDefault("etl_config.transaction_fee_rules.max_fee", fees.MaxFee.InexactFloat64())
	v.SetDefault("data_validation.required_columns", val.RequiredColumns)
	v.SetDefault("data_validation.amount_range.min", val.AmountMin.InexactFloat64())
	v.SetDefault("data_validation.amount_range.max", val.AmountMax.InexactFloat64())
	v.SetDefault("data_validation.allowed_types", val.AllowedTypes)
	v.SetDefault("logging.level", "INFO")
	v.SetDefault("logging.format", logger.FormatConsole)
	v.SetDefault("storage.duckdb_path", "mpesa-etl.db")
	v.SetDefault("storage.profiles_path", "")
	v.SetDefault("pipeline.workers", run.Workers)
	v.SetDefault("pipeline.batch_size", run.BatchSize)
}

// LoadConfig reads the configuration file at path (JSON, YAML or TOML) on top of the
// defaults. An empty path yields the defaults. Environment variables such as
// MPESA_ETL_ETL_CONFIG_AMOUNT_PRECISION override both.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w: %w", domain.ErrInvalidConfig, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w: %w", domain.ErrInvalidConfig, err)
	}
	for i, column := range cfg.Validation.RequiredColumns {
		cfg.Validation.RequiredColumns[i] = domain.CanonicalColumn(column)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	fees := c.ETL.FeeRules
	switch {
	case c.Validation.AmountRange.Min > c.Validation.AmountRange.Max:
		return invalid("amount_range.min %v is greater than amount_range.max %v",
			c.Validation.AmountRange.Min, c.Validation.AmountRange.Max)
	case fees.Threshold <= 0:
		return invalid("transaction_fee_rules.threshold must be positive, got %v", fees.Threshold)
	case fees.FeeRateLow < 0 || fees.FeeRateHigh < 0:
		return invalid("transaction fee rates must not be negative")
	case fees.MinFee > fees.MaxFee:
		return invalid("transaction_fee_rules.min_fee %v is greater than max_fee %v", fees.MinFee, fees.MaxFee)
	case c.ETL.AmountPrecision < 0:
		return invalid("amount_precision must not be negative, got %d", c.ETL.AmountPrecision)
	case len(c.Validation.RequiredColumns) == 0:
		return invalid("data_validation.required_columns must not be empty")
	case c.Pipeline.Workers < 0 || c.Pipeline.BatchSize < 0:
		return invalid("pipeline workers and batch_size must not be negative")
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// PipelineSettings maps the file layout onto the settings consumed by a run.
func (c *Config) PipelineSettings() pipeline.Settings {
	settings := pipeline.DefaultSettings()

	settings.Validation.RequiredColumns = append([]string{}, c.Validation.RequiredColumns...)
	settings.Validation.AmountMin = decimal.NewFromFloat(c.Validation.AmountRange.Min)
	settings.Validation.AmountMax = decimal.NewFromFloat(c.Validation.AmountRange.Max)
	if len(c.Validation.AllowedTypes) > 0 {
		settings.Validation.AllowedTypes = append([]string{}, c.Validation.AllowedTypes...)
	}

	settings.Fees = derive.FeeRules{
		Threshold: decimal.NewFromFloat(c.ETL.FeeRules.Threshold),
		LowRate:   decimal.NewFromFloat(c.ETL.FeeRules.FeeRateLow),
		HighRate:  decimal.NewFromFloat(c.ETL.FeeRules.FeeRateHigh),
		MinFee:    decimal.NewFromFloat(c.ETL.FeeRules.MinFee),
		MaxFee:    decimal.NewFromFloat(c.ETL.FeeRules.MaxFee),
		Precision: c.ETL.AmountPrecision,
	}

	if c.Pipeline.Workers > 0 {
		settings.Workers = c.Pipeline.Workers
	}
	if c.Pipeline.BatchSize > 0 {
		settings.BatchSize = c.Pipeline.BatchSize
	}
	return settings
}

func (c *Config) LoggerConfig() logger.Config {
	return logger.Config{Level: c.Logging.Level, Format: c.Logging.Format}
}

func (c *Config) OutputPath() string {
	return filepath.Join(c.ETL.OutputDir, c.ETL.OutputFilename)
}

// TimeLayout converts the configured date format into a Go layout. strftime style
// formats are translated, anything without a % is taken as a Go layout already.
func (c *Config) TimeLayout() string {
	if !strings.Contains(c.ETL.DateFormat, "%") {
		return c.ETL.DateFormat
	}
	return strftimeReplacer.Replace(c.ETL.DateFormat)
}

var strftimeReplacer = strings.NewReplacer(
	"%Y", "2006",
	"%m", "01",
	"%d", "02",
	"%H", "15",
	"%M", "04",
	"%S", "05",
	"%f", "000000",
	"%z", "-0700",
	"%b", "Jan",
	"%y", "06",
	"%%", "%",
)
