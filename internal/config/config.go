package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jisaac01/health-stats/internal/model"
	"github.com/jisaac01/health-stats/internal/reader"
	"github.com/jisaac01/health-stats/internal/schema"
	"github.com/spf13/viper"
)

// ErrNoInput is returned when no input path was configured.
var ErrNoInput = errors.New("no input file given (pass it as an argument, set input in the config file, or HEALTHPLOT_INPUT)")

const (
	defaultFormat   = "text"
	defaultWidth    = 800
	defaultDebounce = 250 * time.Millisecond
)

// Config holds all healthplot settings.
type Config struct {
	Input     string          `mapstructure:"input" yaml:"input"`
	Mode      model.Mode      `mapstructure:"mode" yaml:"mode"`
	Format    string          `mapstructure:"format" yaml:"format"` // text, json, png, svg
	Out       string          `mapstructure:"out" yaml:"out"`
	Discovery schema.Strategy `mapstructure:"discovery" yaml:"discovery"`
	OnBadLine reader.Policy   `mapstructure:"on_bad_line" yaml:"on_bad_line"`
	Width     float64         `mapstructure:"width" yaml:"width"`
	Height    float64         `mapstructure:"height" yaml:"height"`
	Open      bool            `mapstructure:"open" yaml:"open"`
	LogLevel  string          `mapstructure:"log_level" yaml:"log_level"`
	Debounce  time.Duration   `mapstructure:"debounce" yaml:"-"`
}

// SetDefaults registers every key so env vars and Unmarshal see them.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("input", "")
	v.SetDefault("mode", string(model.ModeFaceted))
	v.SetDefault("format", defaultFormat)
	v.SetDefault("out", "")
	v.SetDefault("discovery", string(schema.StrategyUnion))
	v.SetDefault("on_bad_line", string(reader.PolicyAbort))
	v.SetDefault("width", defaultWidth)
	v.SetDefault("height", 0)
	v.SetDefault("open", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("debounce", defaultDebounce)
}

// Decode reads the settings without validating them.
func Decode(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return c, nil
}

// Load decodes and validates the settings.
func Load(v *viper.Viper) (Config, error) {
	c, err := Decode(v)
	if err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate normalizes enum values and checks required settings.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Input) == "" {
		return ErrNoInput
	}

	mode, err := model.ParseMode(strings.ToLower(string(c.Mode)))
	if err != nil {
		return err
	}
	c.Mode = mode

	if c.Discovery, err = schema.ParseStrategy(string(c.Discovery)); err != nil {
		return err
	}
	if c.OnBadLine, err = reader.ParsePolicy(string(c.OnBadLine)); err != nil {
		return err
	}

	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	switch c.Format {
	case "":
		c.Format = defaultFormat
	case "text", "json":
	case "png", "svg":
		if c.Out == "" {
			c.Out = "healthplot." + c.Format
		}
	default:
		return fmt.Errorf("unknown format %q (want text, json, png or svg)", c.Format)
	}

	if c.Width <= 0 {
		return fmt.Errorf("width must be positive, got %v", c.Width)
	}
	if c.Height < 0 {
		return fmt.Errorf("height must not be negative, got %v", c.Height)
	}
	if c.Debounce <= 0 {
		c.Debounce = defaultDebounce
	}
	return nil
}

// IsImage reports whether the output is written to a file.
func (c Config) IsImage() bool {
	return c.Format == "png" || c.Format == "svg"
}

// MarshalYAML renders the debounce as a duration string.
func (c Config) MarshalYAML() (interface{}, error) {
	type plain Config
	return struct {
		plain    `yaml:",inline"`
		Debounce string `yaml:"debounce"`
	}{plain(c), c.Debounce.String()}, nil
}
