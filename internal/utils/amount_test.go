package utils

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		currency string
		want     string
		wantErr  error
	}{
		{name: "whole riel", text: "5000", currency: "KHR", want: "5000"},
		{name: "surrounding spaces", text: " 5000 ", currency: "KHR", want: "5000"},
		{name: "usd with cents", text: "1.5", currency: "USD", want: "1.5"},
		{name: "not a number", text: "lunch", currency: "KHR", wantErr: ErrAmountNotNumeric},
		{name: "zero", text: "0", currency: "KHR", wantErr: ErrAmountNotPositive},
		{name: "negative", text: "-100", currency: "KHR", wantErr: ErrAmountNotPositive},
		{name: "fractional riel", text: "10.5", currency: "KHR", wantErr: ErrAmountPrecision},
		{name: "sub-cent usd", text: "1.555", currency: "USD", wantErr: ErrAmountPrecision},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.text, tt.currency)
			if err != tt.wantErr {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if tt.wantErr == nil && !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		amount   string
		currency string
		want     string
	}{
		{"100", "KHR", "100 KHR"},
		{"5000", "KHR", "5,000 KHR"},
		{"1234567", "KHR", "1,234,567 KHR"},
		{"1.5", "USD", "1.50 USD"},
		{"1234.5", "USD", "1,234.50 USD"},
		{"20", "USD", "20.00 USD"},
	}

	for _, tt := range tests {
		got := FormatAmount(decimal.RequireFromString(tt.amount), tt.currency)
		if got != tt.want {
			t.Errorf("FormatAmount(%s, %s) = %q, want %q", tt.amount, tt.currency, got, tt.want)
		}
	}
}
