package khqr

import (
	"bytes"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

var testMerchant = Merchant{
	BankAccount: "merchant@bank",
	Name:        "Coffee Corner",
	City:        "Phnom Penh",
	Phone:       "85512345678",
}

func TestGenerateKHRPayload(t *testing.T) {
	g := NewGenerator(testMerchant)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	payload, err := g.Generate(Request{
		BillNumber:    "TRX0123456789ABCDEF0123",
		Amount:        decimal.NewFromInt(5000),
		Currency:      "KHR",
		StoreLabel:    "Iced latte",
		TerminalLabel: "Bot Terminal",
	}, now)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if !strings.HasPrefix(payload, "000201"+"010212") {
		t.Errorf("payload missing dynamic header: %s", payload)
	}
	for _, want := range []string{
		"29170013merchant@bank",
		"52045999",
		"5303116",
		"54045000",
		"5802KH",
		"5913Coffee Corner",
		"6010Phnom Penh",
		"0123TRX0123456789ABCDEF0123",
		"021185512345678",
		"0310Iced latte",
		"0712Bot Terminal",
		"991700131714564800000",
	} {
		if !strings.Contains(payload, want) {
			t.Errorf("payload missing %q: %s", want, payload)
		}
	}

	// Trailing CRC must verify against the rest of the payload.
	if len(payload) < 8 {
		t.Fatalf("payload too short: %s", payload)
	}
	body, sum := payload[:len(payload)-4], payload[len(payload)-4:]
	if !strings.HasSuffix(body, "6304") {
		t.Errorf("payload missing CRC tag: %s", payload)
	}
	if got := crc16(body); got != sum {
		t.Errorf("CRC mismatch: payload carries %s, recomputed %s", sum, got)
	}
}

func TestGenerateUSDAmount(t *testing.T) {
	g := NewGenerator(testMerchant)

	payload, err := g.Generate(Request{
		BillNumber: "TRX1",
		Amount:     decimal.RequireFromString("1.5"),
		Currency:   "USD",
	}, time.Now())
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if !strings.Contains(payload, "5303840") {
		t.Errorf("expected USD numeric currency code in %s", payload)
	}
	if !strings.Contains(payload, "54041.50") {
		t.Errorf("expected two-decimal USD amount in %s", payload)
	}
}

func TestGenerateValidation(t *testing.T) {
	tests := []struct {
		name     string
		merchant Merchant
		req      Request
		wantErr  error
	}{
		{
			name:     "missing bank account",
			merchant: Merchant{Name: "A", City: "B"},
			req:      Request{BillNumber: "TRX1", Amount: decimal.NewFromInt(1), Currency: "KHR"},
			wantErr:  ErrBankAccountRequired,
		},
		{
			name:     "bank account too long",
			merchant: Merchant{BankAccount: strings.Repeat("a", 33), Name: "A", City: "B"},
			req:      Request{BillNumber: "TRX1", Amount: decimal.NewFromInt(1), Currency: "KHR"},
			wantErr:  ErrBankAccountTooLong,
		},
		{
			name:     "missing merchant name",
			merchant: Merchant{BankAccount: "a@b", City: "B"},
			req:      Request{BillNumber: "TRX1", Amount: decimal.NewFromInt(1), Currency: "KHR"},
			wantErr:  ErrMerchantRequired,
		},
		{
			name:     "missing bill number",
			merchant: testMerchant,
			req:      Request{Amount: decimal.NewFromInt(1), Currency: "KHR"},
			wantErr:  ErrBillNumberRequired,
		},
		{
			name:     "unsupported currency",
			merchant: testMerchant,
			req:      Request{BillNumber: "TRX1", Amount: decimal.NewFromInt(1), Currency: "EUR"},
			wantErr:  ErrUnsupportedCurrency,
		},
		{
			name:     "zero amount",
			merchant: testMerchant,
			req:      Request{BillNumber: "TRX1", Amount: decimal.Zero, Currency: "KHR"},
			wantErr:  ErrInvalidAmount,
		},
		{
			name:     "fractional riel",
			merchant: testMerchant,
			req:      Request{BillNumber: "TRX1", Amount: decimal.RequireFromString("10.5"), Currency: "KHR"},
			wantErr:  ErrFractionalKHR,
		},
		{
			name:     "amount too large",
			merchant: testMerchant,
			req:      Request{BillNumber: "TRX1", Amount: decimal.New(1, 13), Currency: "KHR"},
			wantErr:  ErrAmountTooLarge,
		},
		{
			name:     "additional data too long",
			merchant: testMerchant,
			req: Request{
				BillNumber:    strings.Repeat("B", 25),
				Amount:        decimal.NewFromInt(1),
				Currency:      "KHR",
				StoreLabel:    strings.Repeat("S", 25),
				TerminalLabel: strings.Repeat("T", 25),
			},
			wantErr: ErrAdditionalDataTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGenerator(tt.merchant).Generate(tt.req, time.Now())
			if err != tt.wantErr {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestGenerateTruncatesLongFields(t *testing.T) {
	g := NewGenerator(Merchant{
		BankAccount: "merchant@bank",
		Name:        strings.Repeat("N", 40),
		City:        strings.Repeat("C", 40),
		Phone:       strings.Repeat("8", 40),
	})

	payload, err := g.Generate(Request{
		BillNumber: "TRX1",
		Amount:     decimal.NewFromInt(100),
		Currency:   "KHR",
		StoreLabel: strings.Repeat("S", 40),
	}, time.Now())
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if !strings.Contains(payload, "5925"+strings.Repeat("N", 25)) {
		t.Errorf("merchant name not truncated to 25: %s", payload)
	}
	if !strings.Contains(payload, "6015"+strings.Repeat("C", 15)) {
		t.Errorf("merchant city not truncated to 15: %s", payload)
	}
	if !strings.Contains(payload, "0215"+strings.Repeat("8", 15)) {
		t.Errorf("phone not truncated to 15: %s", payload)
	}
	if !strings.Contains(payload, "0325"+strings.Repeat("S", 25)) {
		t.Errorf("store label not truncated to 25: %s", payload)
	}
}

func TestGenerateTruncatesOnRuneBoundary(t *testing.T) {
	g := NewGenerator(Merchant{
		BankAccount: "merchant@bank",
		Name:        strings.Repeat("ន", 12),
		City:        "Phnom Penh",
	})

	payload, err := g.Generate(Request{
		BillNumber: "TRX1",
		Amount:     decimal.NewFromInt(100),
		Currency:   "KHR",
		StoreLabel: strings.Repeat("ន", 10),
	}, time.Now())
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if !utf8.ValidString(payload) {
		t.Fatalf("payload contains a split rune: %q", payload)
	}
	// The 25-byte cap holds eight three-byte Khmer runes.
	if !strings.Contains(payload, "5924"+strings.Repeat("ន", 8)) {
		t.Errorf("merchant name not cut on a rune boundary: %q", payload)
	}
	if !strings.Contains(payload, "0324"+strings.Repeat("ន", 8)) {
		t.Errorf("store label not cut on a rune boundary: %q", payload)
	}
}

func TestCRC16KnownVector(t *testing.T) {
	// CRC-16/CCITT-FALSE check value for the standard "123456789" input.
	if got := crc16("123456789"); got != "29B1" {
		t.Errorf("expected 29B1, got %s", got)
	}
}

func TestFingerprint(t *testing.T) {
	if got := Fingerprint("hello"); got != "5d41402abc4b2a76b9719d911017c592" {
		t.Errorf("unexpected fingerprint %s", got)
	}
}

func TestNewBillNumber(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		bill := NewBillNumber()
		if !strings.HasPrefix(bill, "TRX") {
			t.Fatalf("missing TRX prefix: %s", bill)
		}
		if len(bill) != 23 {
			t.Fatalf("expected 23 characters, got %d: %s", len(bill), bill)
		}
		for _, c := range bill[3:] {
			if !strings.ContainsRune("0123456789ABCDEF", c) {
				t.Fatalf("non-hex character %q in %s", c, bill)
			}
		}
		if seen[bill] {
			t.Fatalf("duplicate bill number generated: %s", bill)
		}
		seen[bill] = true
	}
}

func TestImageRendersPNG(t *testing.T) {
	png, err := Image("00020101021263046F16")
	if err != nil {
		t.Fatalf("image rendering failed: %v", err)
	}
	if !bytes.HasPrefix(png, []byte{0x89, 'P', 'N', 'G'}) {
		t.Error("expected PNG magic bytes")
	}
}
