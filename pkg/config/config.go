package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	HTTPAddr string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	TelegramBotToken string
	TelegramChatID   string
	TelegramAPIURL   string

	RabbitURL      string
	RabbitExchange string

	SeedData bool
}

// Load reads configuration once at startup. A .env file is honored when present
// so the notifier credentials never have to live in the environment of the shell.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Info().Msg("loaded configuration from .env")
	}

	cfg := &Config{
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		DBHost:     getEnv("DB_HOST", "postgres"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "program"),
		DBPassword: getEnv("DB_PASSWORD", "test"),
		DBName:     getEnv("DB_NAME", "library"),

		TelegramBotToken: getEnv("BOT_TOKEN", ""),
		TelegramChatID:   getEnv("CHAT_ID", ""),
		TelegramAPIURL:   getEnv("TELEGRAM_API_URL", "https://api.telegram.org"),

		RabbitURL:      getEnv("RABBIT_URL", ""),
		RabbitExchange: getEnv("RABBIT_EXCHANGE", "borrowing_events"),

		SeedData: getEnv("SEED_DATA", "false") == "true",
	}
	return cfg
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
