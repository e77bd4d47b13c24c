/**
 * @description
 * This file handles configuration management for both the API service and
 * the scheduler worker. It uses the 'viper' library to load settings from
 * environment variables, providing defaults where sensible.
 */
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	ServerPort           string `mapstructure:"SERVER_PORT"`
	DatabaseURL          string `mapstructure:"DATABASE_URL"`
	JWTSecret            string `mapstructure:"JWT_SECRET"`
	InternalAPIKey       string `mapstructure:"INTERNAL_API_KEY"`
	AMQPURL              string `mapstructure:"AMQP_URL"`
	ExchangeRateAPIURL   string `mapstructure:"EXCHANGE_RATE_API_URL"`
	RenewalSweepSchedule string `mapstructure:"RENEWAL_SWEEP_SCHEDULE"`
	RateRefreshSchedule  string `mapstructure:"RATE_REFRESH_SCHEDULE"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("EXCHANGE_RATE_API_URL", "https://api.exchangerate-api.com/v4/latest/USD")
	viper.SetDefault("RENEWAL_SWEEP_SCHEDULE", "0 7 * * *") // Daily at 07:00.
	viper.SetDefault("RATE_REFRESH_SCHEDULE", "0 5 * * *")  // Daily at 05:00.
	viper.AutomaticEnv()

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("JWT_SECRET")
	_ = viper.BindEnv("INTERNAL_API_KEY")
	_ = viper.BindEnv("AMQP_URL")
	_ = viper.BindEnv("EXCHANGE_RATE_API_URL")
	_ = viper.BindEnv("RENEWAL_SWEEP_SCHEDULE")
	_ = viper.BindEnv("RATE_REFRESH_SCHEDULE")

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return &config, nil
}
