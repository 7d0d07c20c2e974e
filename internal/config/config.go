package config

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	sslModeDisable = "disable"
	sslModeRequire = "require"
)

type (
	// Config carries every tunable the application reads. It is built once
	// in main and handed to constructors explicitly; nothing reads viper or
	// the environment after startup.
	Config struct {
		Host string `mapstructure:"HOST"`
		Port string `mapstructure:"PORT"`

		DBHost     string `mapstructure:"DB_HOST"`
		DBPort     string `mapstructure:"DB_PORT"`
		DBUser     string `mapstructure:"DB_USER"`
		DBPassword string `mapstructure:"DB_PASSWORD"`
		DBName     string `mapstructure:"DB_NAME"`
		DBSSLMode  string `mapstructure:"DB_SSL_MODE"`

		JWTSecret string `mapstructure:"JWT_SECRET"`

		// AppURL is the public base URL, used to build short links and
		// verification links.
		AppURL string `mapstructure:"APP_URL"`

		SMTPHost         string `mapstructure:"SMTP_HOST"`
		SMTPPort         int    `mapstructure:"SMTP_PORT"`
		SMTPSenderName   string `mapstructure:"SMTP_SENDER_NAME"`
		SMTPAuthEmail    string `mapstructure:"SMTP_AUTH_EMAIL"`
		SMTPAuthPassword string `mapstructure:"SMTP_AUTH_PASSWORD"`

		AWSS3Bucket  string `mapstructure:"AWS_S3_BUCKET"`
		AWSS3Region  string `mapstructure:"AWS_S3_REGION"`
		AWSAccessKey string `mapstructure:"AWS_ACCESS_KEY"`
		AWSSecretKey string `mapstructure:"AWS_SECRET_KEY"`

		// Catalog and recipe limits. Defaults mirror the product rules:
		// one item per page row of six, amounts and cooking times start at 1.
		ItemsOnPage    int `mapstructure:"ITEMS_ON_PAGE"`
		MinAmount      int `mapstructure:"MIN_AMOUNT"`
		MinCookingTime int `mapstructure:"MIN_COOKING_TIME"`
		MaxNameLength  int `mapstructure:"MAX_NAME_LENGTH"`
		MaxSlugLength  int `mapstructure:"MAX_SLUG_LENGTH"`
	}
)

func NewConfig() (*Config, error) {
	viper.SetEnvPrefix("RECIPEHUB")

	viper.SetDefault("HOST", "0.0.0.0")
	viper.SetDefault("PORT", "8000")
	viper.SetDefault("DB_HOST", "0.0.0.0")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "recipehub")
	viper.SetDefault("DB_SSL_MODE", sslModeDisable)
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("APP_URL", "http://localhost:8000")
	viper.SetDefault("SMTP_HOST", "")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("SMTP_SENDER_NAME", "")
	viper.SetDefault("SMTP_AUTH_EMAIL", "")
	viper.SetDefault("SMTP_AUTH_PASSWORD", "")
	viper.SetDefault("AWS_S3_BUCKET", "")
	viper.SetDefault("AWS_S3_REGION", "")
	viper.SetDefault("AWS_ACCESS_KEY", "")
	viper.SetDefault("AWS_SECRET_KEY", "")
	viper.SetDefault("ITEMS_ON_PAGE", 6)
	viper.SetDefault("MIN_AMOUNT", 1)
	viper.SetDefault("MIN_COOKING_TIME", 1)
	viper.SetDefault("MAX_NAME_LENGTH", 150)
	viper.SetDefault("MAX_SLUG_LENGTH", 50)

	envs := []string{
		"HOST", "PORT",
		"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSL_MODE",
		"JWT_SECRET", "APP_URL",
		"SMTP_HOST", "SMTP_PORT", "SMTP_SENDER_NAME", "SMTP_AUTH_EMAIL", "SMTP_AUTH_PASSWORD",
		"AWS_S3_BUCKET", "AWS_S3_REGION", "AWS_ACCESS_KEY", "AWS_SECRET_KEY",
		"ITEMS_ON_PAGE", "MIN_AMOUNT", "MIN_COOKING_TIME", "MAX_NAME_LENGTH", "MAX_SLUG_LENGTH",
	}
	for _, key := range envs {
		if err := viper.BindEnv(key); err != nil {
			return nil, err
		}
	}

	// config.yaml overrides are optional; env wins over file either way.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	_ = viper.ReadInConfig()

	cfg := Config{}
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	validSSLValues := []string{sslModeDisable, sslModeRequire}
	valid := false
	for _, validValue := range validSSLValues {
		if cfg.DBSSLMode == validValue {
			valid = true
			break
		}
	}
	if !valid {
		return errors.New(fmt.Sprintf("DB SSL mode is invalid: %s", cfg.DBSSLMode))
	}
	if cfg.ItemsOnPage < 1 {
		return errors.New("ITEMS_ON_PAGE must be at least 1")
	}
	if cfg.MinAmount < 1 || cfg.MinCookingTime < 1 {
		return errors.New("MIN_AMOUNT and MIN_COOKING_TIME must be at least 1")
	}
	return nil
}
