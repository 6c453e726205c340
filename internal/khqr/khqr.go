// Package khqr builds EMVCo-compliant KHQR payloads for the Bakong payment
// network and derives the MD5 fingerprints Bakong uses to look them up.
package khqr

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	tagPayloadFormat   = "00"
	tagPointOfInit     = "01"
	tagMerchantAccount = "29"
	tagMCC             = "52"
	tagCurrency        = "53"
	tagAmount          = "54"
	tagCountry         = "58"
	tagMerchantName    = "59"
	tagMerchantCity    = "60"
	tagAdditionalData  = "62"
	tagTimestamp       = "99"
	tagCRC             = "63"

	subAccountID     = "00"
	subBillNumber    = "01"
	subMobileNumber  = "02"
	subStoreLabel    = "03"
	subTerminalLabel = "07"
	subCreationTime  = "00"

	payloadFormatEMV = "01"
	pointDynamic     = "12"
	merchantCategory = "5999"
	countryKH        = "KH"

	currencyNumericKHR = "116"
	currencyNumericUSD = "840"

	maxNameLen  = 25
	maxCityLen  = 15
	maxLabelLen = 25
	// E.164 cap.
	maxPhoneLen = 15
	// Bakong account IDs are at most 32 characters.
	maxAccountLen = 32
	// EMV tag 54 carries at most 13 characters.
	maxAmountLen = 13
	// TLV lengths are two digits, so no single value may exceed 99 bytes.
	maxValueLen = 99
)

var (
	ErrBankAccountRequired   = errors.New("bank account is required")
	ErrBankAccountTooLong    = errors.New("bank account exceeds 32 characters")
	ErrMerchantRequired      = errors.New("merchant name and city are required")
	ErrBillNumberRequired    = errors.New("bill number is required")
	ErrUnsupportedCurrency   = errors.New("currency must be KHR or USD")
	ErrInvalidAmount         = errors.New("amount must be greater than zero")
	ErrAmountTooLarge        = errors.New("amount exceeds 13 characters")
	ErrFractionalKHR         = errors.New("KHR amounts must be whole numbers")
	ErrAdditionalDataTooLong = errors.New("additional data exceeds 99 characters")
)

// Merchant is the static identity embedded into every generated payload.
type Merchant struct {
	BankAccount string
	Name        string
	City        string
	Phone       string
}

// Request describes one dynamic payment QR to generate.
type Request struct {
	BillNumber    string
	Amount        decimal.Decimal
	Currency      string
	StoreLabel    string
	TerminalLabel string
}

// Generator produces individual dynamic KHQR payloads for a single merchant.
type Generator struct {
	merchant Merchant
}

// NewGenerator creates a payload generator for the given merchant identity
func NewGenerator(m Merchant) *Generator {
	return &Generator{merchant: m}
}

// Generate builds the full EMV TLV payload, CRC included, for one payment
// request. The creation timestamp is taken from now.
func (g *Generator) Generate(req Request, now time.Time) (string, error) {
	if g.merchant.BankAccount == "" {
		return "", ErrBankAccountRequired
	}
	if len(g.merchant.BankAccount) > maxAccountLen {
		return "", ErrBankAccountTooLong
	}
	if g.merchant.Name == "" || g.merchant.City == "" {
		return "", ErrMerchantRequired
	}
	if req.BillNumber == "" {
		return "", ErrBillNumberRequired
	}

	currencyCode, err := numericCurrency(req.Currency)
	if err != nil {
		return "", err
	}
	amount, err := formatAmount(req.Amount, req.Currency)
	if err != nil {
		return "", err
	}
	additional := g.additionalData(req)
	if len(additional) > maxValueLen {
		return "", ErrAdditionalDataTooLong
	}

	var b strings.Builder
	b.WriteString(field(tagPayloadFormat, payloadFormatEMV))
	b.WriteString(field(tagPointOfInit, pointDynamic))
	b.WriteString(field(tagMerchantAccount, field(subAccountID, g.merchant.BankAccount)))
	b.WriteString(field(tagMCC, merchantCategory))
	b.WriteString(field(tagCurrency, currencyCode))
	b.WriteString(field(tagAmount, amount))
	b.WriteString(field(tagCountry, countryKH))
	b.WriteString(field(tagMerchantName, truncate(g.merchant.Name, maxNameLen)))
	b.WriteString(field(tagMerchantCity, truncate(g.merchant.City, maxCityLen)))
	b.WriteString(field(tagAdditionalData, additional))
	b.WriteString(field(tagTimestamp, field(subCreationTime, strconv.FormatInt(now.UnixMilli(), 10))))

	// The CRC covers everything up to and including its own tag and length.
	payload := b.String() + tagCRC + "04"
	return payload + crc16(payload), nil
}

func (g *Generator) additionalData(req Request) string {
	var b strings.Builder
	b.WriteString(field(subBillNumber, truncate(req.BillNumber, maxLabelLen)))
	if g.merchant.Phone != "" {
		b.WriteString(field(subMobileNumber, truncate(g.merchant.Phone, maxPhoneLen)))
	}
	if req.StoreLabel != "" {
		b.WriteString(field(subStoreLabel, truncate(req.StoreLabel, maxLabelLen)))
	}
	if req.TerminalLabel != "" {
		b.WriteString(field(subTerminalLabel, truncate(req.TerminalLabel, maxLabelLen)))
	}
	return b.String()
}

// Fingerprint returns the lowercase hex MD5 of a payload, the token Bakong's
// transaction lookup is keyed by.
func Fingerprint(payload string) string {
	sum := md5.Sum([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// NewBillNumber returns a fresh globally unique bill number within the EMV
// 25-character limit.
func NewBillNumber() string {
	id := uuid.New()
	return "TRX" + strings.ToUpper(hex.EncodeToString(id[:10]))
}

// Image renders a payload as a PNG QR image
func Image(payload string) ([]byte, error) {
	png, err := qrcode.Encode(payload, qrcode.Medium, 512)
	if err != nil {
		return nil, fmt.Errorf("failed to render QR image: %w", err)
	}
	return png, nil
}

func field(tag, value string) string {
	return fmt.Sprintf("%s%02d%s", tag, len(value), value)
}

// truncate caps s at max bytes without splitting a multibyte rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

func numericCurrency(currency string) (string, error) {
	switch currency {
	case "KHR":
		return currencyNumericKHR, nil
	case "USD":
		return currencyNumericUSD, nil
	default:
		return "", ErrUnsupportedCurrency
	}
}

func formatAmount(amount decimal.Decimal, currency string) (string, error) {
	if !amount.IsPositive() {
		return "", ErrInvalidAmount
	}
	text := amount.StringFixed(2)
	if currency == "KHR" {
		if !amount.Equal(amount.Truncate(0)) {
			return "", ErrFractionalKHR
		}
		text = amount.Truncate(0).String()
	}
	if len(text) > maxAmountLen {
		return "", ErrAmountTooLarge
	}
	return text, nil
}

// crc16 is the CRC-16/CCITT-FALSE checksum EMV QR payloads carry in tag 63.
func crc16(data string) string {
	crc := uint16(0xFFFF)
	for i := 0; i < len(data); i++ {
		crc ^= uint16(data[i]) << 8
		for bit := 0; bit < 8; bit++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return fmt.Sprintf("%04X", crc)
}
