package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds everything the API binary needs at startup. Values come from
// the environment, with an optional .env file for local development.
type Config struct {
	ServerPort   string `mapstructure:"SERVER_PORT"`
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	JWTSecret    string `mapstructure:"JWT_SECRET"`
	ClientOrigin string `mapstructure:"CLIENT_ORIGIN"`

	// Payment gateway settings. KeySecret doubles as the HMAC secret the
	// provider signs payment confirmations with.
	PaymentBaseURL   string        `mapstructure:"PAYMENT_BASE_URL"`
	PaymentKeyID     string        `mapstructure:"PAYMENT_KEY_ID"`
	PaymentKeySecret string        `mapstructure:"PAYMENT_KEY_SECRET"`
	PaymentTimeout   time.Duration `mapstructure:"PAYMENT_TIMEOUT"`

	// Email notifications (optional; the service runs without them).
	AWSRegion string `mapstructure:"AWS_REGION"`
	EmailFrom string `mapstructure:"EMAIL_FROM"`
}

// LoadConfig reads configuration from the environment and, when present, a
// .env file in the given directory.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	// Defaults also register each key so AutomaticEnv picks it up.
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("CLIENT_ORIGIN", "http://localhost:5173")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("PAYMENT_BASE_URL", "https://api.razorpay.com")
	v.SetDefault("PAYMENT_KEY_ID", "")
	v.SetDefault("PAYMENT_KEY_SECRET", "")
	v.SetDefault("PAYMENT_TIMEOUT", "10s")
	v.SetDefault("AWS_REGION", "")
	v.SetDefault("EMAIL_FROM", "")

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing .env file is fine; the environment still applies.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: reading .env: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("config: DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("config: JWT_SECRET is required")
	}
	if cfg.PaymentKeySecret == "" {
		return nil, fmt.Errorf("config: PAYMENT_KEY_SECRET is required")
	}

	return cfg, nil
}
