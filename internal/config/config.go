package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config captures all runtime configuration for the service. It is built
// once in main and passed down explicitly; nothing reads the environment
// after Load returns.
type Config struct {
	Env      string
	Port     int
	LogLevel string

	DatabaseURL string
	AMQPURL     string

	SMTP SMTPConfig
}

// SMTPConfig stores the outbound mail account. The mailer receives this
// struct in its constructor instead of reading ambient globals.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	ReplyTo  string
}

// Load assembles the configuration from environment variables. The database
// URL may be given directly as DATABASE_URL or composed from the discrete
// DB_* variables.
func Load() (*Config, error) {
	cfg := &Config{
		Env:      getenv("APP_ENV", "development"),
		Port:     getenvInt("PORT", 8080),
		LogLevel: getenv("LOG_LEVEL", "info"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		AMQPURL:     os.Getenv("AMQP_URL"),

		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getenvInt("SMTP_PORT", 465),
			Username: os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
			FromName: os.Getenv("SMTP_FROM_NAME"),
			ReplyTo:  os.Getenv("SMTP_REPLY_TO"),
		},
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s?sslmode=disable",
			os.Getenv("DB_USER"),
			os.Getenv("DB_PASSWORD"),
			getenv("DB_HOST", "localhost"),
			getenv("DB_PORT", "5432"),
			os.Getenv("DB_NAME"),
		)
	}

	var missing []string
	for _, v := range []struct{ name, value string }{
		{"SMTP_HOST", cfg.SMTP.Host},
		{"SMTP_USER", cfg.SMTP.Username},
		{"SMTP_PASSWORD", cfg.SMTP.Password},
		{"SMTP_FROM", cfg.SMTP.From},
	} {
		if strings.TrimSpace(v.value) == "" {
			missing = append(missing, v.name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("config: missing required environment variables: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
