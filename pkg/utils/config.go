package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Hold     HoldConfig
	Booking  BookingConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
}

type AppConfig struct {
	Name          string
	Port          string
	Debug         bool
	LogPath       string
	Timezone      string
	StorageDriver string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	MaxConns int32
}

type HoldConfig struct {
	ConfirmationTTL time.Duration
	PaymentTTL      time.Duration
	SweepInterval   time.Duration
}

type BookingConfig struct {
	CheckInBuffer time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	RoomTTL  time.Duration
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// Location resolves APP_TIMEZONE; calendar-day logic for holds runs in it.
func (c *Config) Location() (*time.Location, error) {
	if c.App.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", c.App.Timezone, err)
	}
	return loc, nil
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("APP_NAME", "capsule-hotel")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("APP_TIMEZONE", "UTC")
	viper.SetDefault("STORAGE_DRIVER", "postgres")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("HOLD_CONFIRMATION_TTL", "5m")
	viper.SetDefault("HOLD_PAYMENT_TTL", "10m")
	viper.SetDefault("SWEEP_INTERVAL", "1m")
	viper.SetDefault("CHECKIN_BUFFER", "2h")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("ROOM_CACHE_TTL", "30s")
	viper.SetDefault("KAFKA_TOPIC", "capsule.reservations")

	// .env is optional; container deployments pass plain env vars
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !strings.Contains(err.Error(), "no such file") {
			return nil, err
		}
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:          viper.GetString("APP_NAME"),
			Port:          viper.GetString("PORT"),
			Debug:         viper.GetBool("DEBUG"),
			LogPath:       viper.GetString("LOG_PATH"),
			Timezone:      viper.GetString("APP_TIMEZONE"),
			StorageDriver: viper.GetString("STORAGE_DRIVER"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		Hold: HoldConfig{
			ConfirmationTTL: viper.GetDuration("HOLD_CONFIRMATION_TTL"),
			PaymentTTL:      viper.GetDuration("HOLD_PAYMENT_TTL"),
			SweepInterval:   viper.GetDuration("SWEEP_INTERVAL"),
		},
		Booking: BookingConfig{
			CheckInBuffer: viper.GetDuration("CHECKIN_BUFFER"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
			RoomTTL:  viper.GetDuration("ROOM_CACHE_TTL"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(viper.GetString("KAFKA_BROKERS")),
			Topic:   viper.GetString("KAFKA_TOPIC"),
		},
	}

	return config, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
