// Package config loads the sketch-copy settings from defaults, an optional
// config file, SKETCHCOPY_* environment variables and bound command line flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes the environment variables read by Load.
const EnvPrefix = "SKETCHCOPY"

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config holds the settings of one sketch-copy run.
type Config struct {
	Document   string       `json:"document" mapstructure:"document"`
	Output     string       `json:"output" mapstructure:"output"`
	Report     string       `json:"report" mapstructure:"report"`
	MimeType   string       `json:"mimeType" mapstructure:"mimeType"`
	Sequential bool         `json:"sequential" mapstructure:"sequential"`
	Export     ExportConfig `json:"export" mapstructure:"export"`
	Log        LogConfig    `json:"log" mapstructure:"log"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.MimeType, validation.Required),
	); err != nil {
		return err
	}
	if err := c.Export.Validate(); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	return nil
}

// ExportConfig holds the rasterization settings of flattened layers.
type ExportConfig struct {
	Format string  `json:"format" mapstructure:"format"`
	Scale  float64 `json:"scale" mapstructure:"scale"`
}

// Validate validates the export configuration.
func (c *ExportConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Format, validation.Required, validation.In("png")),
		validation.Field(&c.Scale, validation.Required, validation.Min(0.0).Exclusive(), validation.Max(16.0)),
	)
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `json:"level" mapstructure:"level"`
	Format string `json:"format" mapstructure:"format"`
}

// Validate validates the log configuration.
func (c *LogConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Level, validation.Required, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.Format, validation.Required, validation.In(LogFormatText, LogFormatJSON)),
	)
}

// ZerologLevel returns the zerolog level matching Level.
func (c *LogConfig) ZerologLevel() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.Level)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("document", "")
	v.SetDefault("output", "")
	v.SetDefault("report", "")
	v.SetDefault("mimeType", "io.kodika.kodika.plugins.sketch")
	v.SetDefault("sequential", false)

	v.SetDefault("export.format", "png")
	v.SetDefault("export.scale", 3)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", LogFormatText)
}

// Load reads the configuration into v and decodes it.
//
// configFile names an explicit config file; when empty, a file named
// sketch-copy.{json,yaml,toml} is looked up in the working directory and
// skipped if absent. Environment variables override the file: export.scale
// is read from SKETCHCOPY_EXPORT_SCALE.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		v.SetConfigName("sketch-copy")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
