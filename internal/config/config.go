package config

import (
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/rm-hull/winter-studio/internal/winter"
	"github.com/spf13/viper"
)

type Config struct {
	Port           int    `mapstructure:"WINTER_PORT" validate:"gte=1,lte=65535"`
	ExportFilename string `mapstructure:"WINTER_EXPORT_FILENAME" validate:"required"`
	MaxUploadMB    int    `mapstructure:"WINTER_MAX_UPLOAD_MB" validate:"gte=1"`
	Seed           uint64 `mapstructure:"WINTER_SEED"`

	SnowCover  float64 `mapstructure:"WINTER_SNOW_COVER" validate:"gte=0,lte=100"`
	Snowflakes float64 `mapstructure:"WINTER_SNOWFLAKES" validate:"gte=0,lte=100"`
	Brightness float64 `mapstructure:"WINTER_BRIGHTNESS" validate:"gte=50,lte=150"`
	Contrast   float64 `mapstructure:"WINTER_CONTRAST" validate:"gte=50,lte=150"`
}

// Parameters returns the configured starting slider values.
func (c *Config) Parameters() winter.ParameterSet {
	return winter.ParameterSet{
		SnowCover:        c.SnowCover,
		SnowflakeDensity: c.Snowflakes,
		Brightness:       c.Brightness,
		Contrast:         c.Contrast,
	}
}

// bind every mapstructure tag so viper.Unmarshal sees environment values
func bindEnv(c Config) {
	typ := reflect.TypeOf(c)
	for i := 0; i < typ.NumField(); i++ {
		if tag := typ.Field(i).Tag.Get("mapstructure"); tag != "" {
			_ = viper.BindEnv(tag)
		}
	}
}

func Load() (*Config, error) {
	bindEnv(Config{})
	viper.AutomaticEnv()

	defaults := winter.DefaultParameters()
	viper.SetDefault("WINTER_PORT", 8080)
	viper.SetDefault("WINTER_EXPORT_FILENAME", "winter-photo.png")
	viper.SetDefault("WINTER_MAX_UPLOAD_MB", 20)
	viper.SetDefault("WINTER_SEED", 0)
	viper.SetDefault("WINTER_SNOW_COVER", defaults.SnowCover)
	viper.SetDefault("WINTER_SNOWFLAKES", defaults.SnowflakeDensity)
	viper.SetDefault("WINTER_BRIGHTNESS", defaults.Brightness)
	viper.SetDefault("WINTER_CONTRAST", defaults.Contrast)

	cfg := Config{}
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
