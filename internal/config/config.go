// Package config loads application settings with viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"findway/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const envPrefix = "FINDWAY"

// Provider selects where place search and reverse geocoding come from.
type Provider string

const (
	ProviderGoogle  Provider = "google"
	ProviderPostGIS Provider = "postgis"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Provider   Provider         `mapstructure:"provider" validate:"oneof=google postgis"`
	Google     GoogleConfig     `mapstructure:"google"`
	DB         DBConfig         `mapstructure:"db"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Location   LocationConfig   `mapstructure:"location"`
	Navigation NavigationConfig `mapstructure:"navigation"`
}

type ServerConfig struct {
	Address         string        `mapstructure:"address" validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Pretty bool   `mapstructure:"pretty"`
}

type GoogleConfig struct {
	APIKey   string        `mapstructure:"api_key" validate:"required"`
	BaseURL  string        `mapstructure:"base_url" validate:"omitempty,url"`
	Timeout  time.Duration `mapstructure:"timeout" validate:"gt=0"`
	Language string        `mapstructure:"language"`
}

type DBConfig struct {
	Source        string  `mapstructure:"source"`
	SearchRadiusM float64 `mapstructure:"search_radius_m" validate:"gt=0"`
}

// RedisConfig enables the directions cache when URL is set.
type RedisConfig struct {
	URL string        `mapstructure:"url"`
	TTL time.Duration `mapstructure:"ttl" validate:"gt=0"`
}

type LocationConfig struct {
	MinInterval         time.Duration `mapstructure:"min_interval" validate:"gt=0"`
	FastestInterval     time.Duration `mapstructure:"fastest_interval" validate:"gt=0,ltefield=MinInterval"`
	Accuracy            string        `mapstructure:"accuracy" validate:"oneof=high balanced low passive"`
	OnceMinInterval     time.Duration `mapstructure:"once_min_interval" validate:"gt=0"`
	OnceFastestInterval time.Duration `mapstructure:"once_fastest_interval" validate:"gt=0"`
	OnceTimeout         time.Duration `mapstructure:"once_timeout" validate:"gt=0"`
	PermissionGranted   bool          `mapstructure:"permission_granted"`
}

type NavigationConfig struct {
	FetchTimeout time.Duration `mapstructure:"fetch_timeout" validate:"gt=0"`
}

// ContinuousRequest is the request used for the lifecycle-bound subscription.
func (c LocationConfig) ContinuousRequest() models.LocationRequest {
	accuracy, _ := models.ParseAccuracy(c.Accuracy)
	return models.LocationRequest{
		MinInterval:     c.MinInterval,
		FastestInterval: c.FastestInterval,
		Accuracy:        accuracy,
	}
}

// OnceRequest is the request used for the startup fix.
func (c LocationConfig) OnceRequest() models.LocationRequest {
	accuracy, _ := models.ParseAccuracy(c.Accuracy)
	return models.LocationRequest{
		MinInterval:     c.OnceMinInterval,
		FastestInterval: c.OnceFastestInterval,
		Accuracy:        accuracy,
	}
}

// LoadConfig reads configuration from app.yaml in path, if present, and from
// FINDWAY_* environment variables, and validates it.
func LoadConfig(path string) (Config, error) {
	config, err := Load(path)
	if err != nil {
		return config, err
	}
	if err := Validate(config); err != nil {
		return config, err
	}
	return config, nil
}

// Load reads configuration like LoadConfig without validating it, for tools
// that only need part of it.
func Load(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("yaml")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err = v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return config, fmt.Errorf("config: failed to read config: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("config: failed to unmarshal config: %w", err)
	}
	return config, nil
}

// Validate checks the loaded values.
func Validate(config Config) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(config); err != nil {
		return fmt.Errorf("config: invalid configuration: %w", err)
	}
	if config.Provider == ProviderPostGIS && config.DB.Source == "" {
		return fmt.Errorf("config: db.source is required for the postgis provider")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "0.0.0.0:8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("provider", string(ProviderGoogle))
	v.SetDefault("google.api_key", "")
	v.SetDefault("google.base_url", "")
	v.SetDefault("google.timeout", 10*time.Second)
	v.SetDefault("google.language", "")
	v.SetDefault("db.source", "")
	v.SetDefault("db.search_radius_m", 10000.0)
	v.SetDefault("redis.url", "")
	v.SetDefault("redis.ttl", 10*time.Minute)
	v.SetDefault("location.min_interval", 5*time.Second)
	v.SetDefault("location.fastest_interval", 2*time.Second)
	v.SetDefault("location.accuracy", "high")
	v.SetDefault("location.once_min_interval", 10*time.Second)
	v.SetDefault("location.once_fastest_interval", 5*time.Second)
	v.SetDefault("location.once_timeout", 30*time.Second)
	v.SetDefault("location.permission_granted", false)
	v.SetDefault("navigation.fetch_timeout", 15*time.Second)
}
