package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port       string
	PGHost     string
	PGPort     string
	PGDatabase string
	PGUser     string
	PGPassword string
	AMQPURL    string
	SecretKey  string
}

// LoadConfig reads configuration from the environment, with an optional
// .env file. The token signing secret has no default: the process refuses
// to start without one.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:       getEnv("PORT", "8080"),
		PGHost:     getEnv("PGHOST", "localhost"),
		PGPort:     getEnv("PGPORT", "5432"),
		PGDatabase: getEnv("PGDATABASE", "expense_tracker"),
		PGUser:     getEnv("PGUSER", "postgres"),
		PGPassword: os.Getenv("PGPASSWORD"),
		AMQPURL:    os.Getenv("AMQP_URL"),
		SecretKey:  os.Getenv("SECRET_KEY"),
	}

	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("SECRET_KEY must be set")
	}
	return cfg, nil
}

// DatabaseURL builds the connection string for pgxpool.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s",
		c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDatabase)
}

// MigrateURL is the same connection string under the scheme the
// golang-migrate pgx/v5 driver registers.
func (c *Config) MigrateURL() string {
	return fmt.Sprintf("pgx5://%s:%s@%s:%s/%s",
		c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDatabase)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
