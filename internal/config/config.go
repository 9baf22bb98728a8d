package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Log          LogConfig          `mapstructure:"log"`
	Order        OrderConfig        `mapstructure:"order"`
	Pricing      PricingConfig      `mapstructure:"pricing"`
	Notification NotificationConfig `mapstructure:"notification"`
	Auth         AuthConfig         `mapstructure:"auth"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port" validate:"min=1,max=65535"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout" validate:"gt=0"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout" validate:"gt=0"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host" validate:"required"`
	Port            int           `mapstructure:"port" validate:"min=1,max=65535"`
	User            string        `mapstructure:"user" validate:"required"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name" validate:"required"`
	MaxOpenConns    int           `mapstructure:"maxOpenConns" validate:"min=1"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns" validate:"min=0"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime"`
	Migrate         bool          `mapstructure:"migrate"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=json console"`
}

type OrderConfig struct {
	TxTimeout        time.Duration `mapstructure:"txTimeout" validate:"gt=0"`
	MaxRetryAttempts int           `mapstructure:"maxRetryAttempts" validate:"min=1,max=10"`
	NumberPrefix     string        `mapstructure:"numberPrefix" validate:"required,alphanum,max=8"`
}

type PricingConfig struct {
	// CacheTTL of zero disables the price cache.
	CacheTTL time.Duration `mapstructure:"cacheTTL" validate:"min=0"`
}

type NotificationConfig struct {
	QueueSize    int           `mapstructure:"queueSize" validate:"min=1"`
	Topic        string        `mapstructure:"topic" validate:"required"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout" validate:"gt=0"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwtSecret" validate:"required,min=16"`
	Issuer    string `mapstructure:"issuer"`
}

var defaults = map[string]any{
	"server.port":               8080,
	"server.readTimeout":        "10s",
	"server.writeTimeout":       "10s",
	"database.host":             "localhost",
	"database.port":             3306,
	"database.user":             "preventa",
	"database.password":         "secret",
	"database.name":             "preventa",
	"database.maxOpenConns":     25,
	"database.maxIdleConns":     5,
	"database.connMaxLifetime":  "5m",
	"database.migrate":          true,
	"log.level":                 "info",
	"log.format":                "json",
	"order.txTimeout":           "5s",
	"order.maxRetryAttempts":    3,
	"order.numberPrefix":        "PED",
	"pricing.cacheTTL":          "1m",
	"notification.queueSize":    50,
	"notification.topic":        "order-events",
	"notification.writeTimeout": "5s",
	"auth.jwtSecret":            "",
	"auth.issuer":               "",
}

// Load reads the yaml file at path (optional) and lets environment variables
// such as SERVER_PORT or DB_HOST override it.
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindLegacyEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// bindLegacyEnv keeps the flat variable names used by the deployment scripts.
func bindLegacyEnv(v *viper.Viper) {
	bindings := map[string]string{
		"server.port":              "SERVER_PORT",
		"database.host":            "DB_HOST",
		"database.port":            "DB_PORT",
		"database.user":            "DB_USER",
		"database.password":        "DB_PASSWORD",
		"database.name":            "DB_NAME",
		"database.maxOpenConns":    "DB_MAX_OPEN_CONNS",
		"database.maxIdleConns":    "DB_MAX_IDLE_CONNS",
		"database.connMaxLifetime": "DB_CONN_MAX_LIFETIME",
		"database.migrate":         "DB_MIGRATE",
		"log.level":                "LOG_LEVEL",
		"log.format":               "LOG_FORMAT",
		"auth.jwtSecret":           "JWT_SECRET",
		"auth.issuer":              "JWT_ISSUER",
	}
	for key, env := range bindings {
		_ = v.BindEnv(key, env)
	}
}
