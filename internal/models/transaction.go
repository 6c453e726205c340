package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the settlement network's answer for one fingerprint.
type PaymentStatus string

const (
	PaymentStatusPaid   PaymentStatus = "PAID"
	PaymentStatusUnpaid PaymentStatus = "UNPAID"
)

// Outcome is the result of a single reconciliation attempt.
type Outcome string

const (
	// OutcomeNone means the transaction stays pending: the payment is still
	// unpaid, the status check failed, or another caller already retired it.
	OutcomeNone    Outcome = "NONE"
	OutcomePaid    Outcome = "PAID"
	OutcomeExpired Outcome = "EXPIRED"
)

// CheckResult is what a manual payment check reports back to the chat layer.
type CheckResult string

const (
	CheckPaid       CheckResult = "PAID"
	CheckExpired    CheckResult = "EXPIRED"
	CheckUnpaid     CheckResult = "UNPAID"
	CheckNotTracked CheckResult = "NOT_TRACKED"
)

// TransactionRecord is one in-flight KHQR payment request, from QR creation
// until it is paid or expires. Records are passed by value; only the store
// decides whether one is still pending.
type TransactionRecord struct {
	BillNumber  string
	MD5Hash     string
	ChatID      int64
	MessageID   int
	Amount      decimal.Decimal
	Currency    string
	Description string
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// Expired reports whether the payment window has closed at the given instant.
func (r TransactionRecord) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// Window is the configured lifetime of the payment request.
func (r TransactionRecord) Window() time.Duration {
	return r.ExpiresAt.Sub(r.CreatedAt)
}
