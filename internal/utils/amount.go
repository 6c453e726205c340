package utils

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrAmountNotNumeric  = errors.New("amount is not a number")
	ErrAmountNotPositive = errors.New("amount must be greater than zero")
	ErrAmountPrecision   = errors.New("amount has too many decimal places")
)

// ParseAmount validates user-entered amount text for the given currency.
// KHR amounts must be whole riel, USD amounts allow up to two decimal places.
func ParseAmount(text, currency string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(text))
	if err != nil {
		return decimal.Zero, ErrAmountNotNumeric
	}
	if !amount.IsPositive() {
		return decimal.Zero, ErrAmountNotPositive
	}

	if currency == "KHR" {
		if !amount.Equal(amount.Truncate(0)) {
			return decimal.Zero, ErrAmountPrecision
		}
	} else if !amount.Equal(amount.Truncate(2)) {
		return decimal.Zero, ErrAmountPrecision
	}

	return amount, nil
}

// FormatAmount formats an amount with thousand separators and the currency.
func FormatAmount(amount decimal.Decimal, currency string) string {
	text := amount.Truncate(0).String()
	fraction := ""
	if currency == "USD" {
		parts := strings.SplitN(amount.StringFixed(2), ".", 2)
		text, fraction = parts[0], "."+parts[1]
	}

	// Add thousand separators
	var result strings.Builder
	length := len(text)
	for i, digit := range text {
		if i > 0 && (length-i)%3 == 0 {
			result.WriteString(",")
		}
		result.WriteRune(digit)
	}

	return result.String() + fraction + " " + currency
}
