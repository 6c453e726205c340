package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration values.
type Config struct {
	AppPort               string
	TelegramBotToken      string
	TelegramAPIURL        string
	TelegramWebhookURL    string
	TelegramWebhookSecret string
	BakongToken           string
	BakongAPIURL          string
	BankAccount           string
	MerchantName          string
	MerchantCity          string
	MerchantPhone         string
	Currency              string
	Expiration            time.Duration
	CheckInterval         time.Duration
	ExternalTimeout       time.Duration
}

// Load reads environment variables and returns a populated Config.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		AppPort:               getEnv("APP_PORT", "8080"),
		TelegramBotToken:      getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramAPIURL:        getEnv("TELEGRAM_API_URL", "https://api.telegram.org"),
		TelegramWebhookURL:    getEnv("TELEGRAM_WEBHOOK_URL", ""),
		TelegramWebhookSecret: getEnv("TELEGRAM_WEBHOOK_SECRET", ""),
		BakongToken:           getEnv("BAKONG_TOKEN", ""),
		BakongAPIURL:          getEnv("BAKONG_API_URL", "https://api-bakong.nbc.gov.kh"),
		BankAccount:           getEnv("BANK_ACCOUNT", ""),
		MerchantName:          getEnv("MERCHANT_NAME", ""),
		MerchantCity:          getEnv("MERCHANT_CITY", "Phnom Penh"),
		MerchantPhone:         getEnv("MERCHANT_PHONE", "85512345678"),
		Currency:              getEnv("CURRENCY", "KHR"),
		Expiration:            getEnvDuration("EXPIRATION_SECONDS", 300) * time.Second,
		CheckInterval:         getEnvDuration("CHECK_INTERVAL_SECONDS", 30) * time.Second,
		ExternalTimeout:       getEnvDuration("EXTERNAL_TIMEOUT_SECONDS", 10) * time.Second,
	}

	if err := cfg.validate(); err != nil {
		log.Fatal(err)
	}

	return cfg
}

func (c *Config) validate() error {
	if c.TelegramBotToken == "" {
		return errors.New("TELEGRAM_BOT_TOKEN must be set")
	}
	if c.BakongToken == "" {
		return errors.New("BAKONG_TOKEN must be set")
	}
	if c.BankAccount == "" {
		return errors.New("BANK_ACCOUNT must be set")
	}
	if c.MerchantName == "" {
		return errors.New("MERCHANT_NAME must be set")
	}
	if c.Currency != "KHR" && c.Currency != "USD" {
		return fmt.Errorf("CURRENCY must be KHR or USD, got %q", c.Currency)
	}
	if c.Expiration <= 0 {
		return errors.New("EXPIRATION_SECONDS must be positive")
	}
	// The poller's ticker panics on a non-positive interval.
	if c.CheckInterval <= 0 {
		return errors.New("CHECK_INTERVAL_SECONDS must be positive")
	}
	if c.ExternalTimeout <= 0 {
		return errors.New("EXTERNAL_TIMEOUT_SECONDS must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback int) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return time.Duration(parsed)
		}
	}
	return time.Duration(fallback)
}
