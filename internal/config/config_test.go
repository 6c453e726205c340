package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		AppPort:          "8080",
		TelegramBotToken: "123:abc",
		BakongToken:      "ey.bakong.token",
		BankAccount:      "merchant@bank",
		MerchantName:     "Coffee Corner",
		MerchantCity:     "Phnom Penh",
		Currency:         "KHR",
		Expiration:       5 * time.Minute,
		CheckInterval:    30 * time.Second,
		ExternalTimeout:  10 * time.Second,
	}
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	if err := validConfig().validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantVar string
	}{
		{"missing bot token", func(c *Config) { c.TelegramBotToken = "" }, "TELEGRAM_BOT_TOKEN"},
		{"missing bakong token", func(c *Config) { c.BakongToken = "" }, "BAKONG_TOKEN"},
		{"missing bank account", func(c *Config) { c.BankAccount = "" }, "BANK_ACCOUNT"},
		{"missing merchant name", func(c *Config) { c.MerchantName = "" }, "MERCHANT_NAME"},
		{"unsupported currency", func(c *Config) { c.Currency = "EUR" }, "CURRENCY"},
		{"zero expiration", func(c *Config) { c.Expiration = 0 }, "EXPIRATION_SECONDS"},
		{"zero check interval", func(c *Config) { c.CheckInterval = 0 }, "CHECK_INTERVAL_SECONDS"},
		{"negative check interval", func(c *Config) { c.CheckInterval = -time.Second }, "CHECK_INTERVAL_SECONDS"},
		{"zero external timeout", func(c *Config) { c.ExternalTimeout = 0 }, "EXTERNAL_TIMEOUT_SECONDS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.validate()
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !strings.Contains(err.Error(), tt.wantVar) {
				t.Errorf("error %q does not name %s", err, tt.wantVar)
			}
		})
	}
}
