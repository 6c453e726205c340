package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/example/bakongbot/internal/khqr"
	"github.com/example/bakongbot/internal/metrics"
	"github.com/example/bakongbot/internal/models"
	"github.com/example/bakongbot/internal/store"
	"github.com/example/bakongbot/internal/utils"
)

// ConfirmCallbackPrefix marks callback data carrying a bill number to check.
const ConfirmCallbackPrefix = "confirm_"

const terminalLabel = "Bot Terminal"

// PhotoSender delivers the progress message and the QR photo for a new
// payment request.
type PhotoSender interface {
	SendMessage(ctx context.Context, chatID int64, text string) (int, error)
	SendPhoto(ctx context.Context, chatID int64, photo []byte, caption string, keyboard *InlineKeyboardMarkup) (int, error)
}

// PaymentService issues new KHQR payment requests and registers them for
// settlement tracking.
type PaymentService struct {
	store     *store.Store
	generator *khqr.Generator
	sender    PhotoSender
	currency  string
	window    time.Duration
	log       *logrus.Logger
}

// NewPaymentService wires the intake path to its store, payload generator and
// chat transport.
func NewPaymentService(st *store.Store, generator *khqr.Generator, sender PhotoSender, currency string, window time.Duration, log *logrus.Logger) *PaymentService {
	return &PaymentService{
		store:     st,
		generator: generator,
		sender:    sender,
		currency:  currency,
		window:    window,
		log:       log,
	}
}

// CreatePayment validates the requested amount, issues a QR with a confirm
// button into the chat and tracks the resulting transaction until it settles
// or expires.
func (s *PaymentService) CreatePayment(ctx context.Context, chatID int64, amountText, description string) (models.TransactionRecord, error) {
	amount, err := utils.ParseAmount(amountText, s.currency)
	if err != nil {
		return models.TransactionRecord{}, fmt.Errorf("validate amount: %w", err)
	}

	now := time.Now()
	if description == "" {
		description = fmt.Sprintf("Payment Ref %d", now.Unix())
	}

	rec := models.TransactionRecord{
		BillNumber:  khqr.NewBillNumber(),
		ChatID:      chatID,
		Amount:      amount,
		Currency:    s.currency,
		Description: description,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.window),
	}

	// Progress feedback is best-effort, the QR photo is what matters.
	if _, err := s.sender.SendMessage(ctx, chatID, CreatingMessage(utils.FormatAmount(amount, s.currency), rec.BillNumber)); err != nil {
		s.log.WithField("bill_number", rec.BillNumber).WithError(err).
			Warn("failed to send progress message")
	}

	payload, err := s.generator.Generate(khqr.Request{
		BillNumber:    rec.BillNumber,
		Amount:        amount,
		Currency:      s.currency,
		StoreLabel:    description,
		TerminalLabel: terminalLabel,
	}, now)
	if err != nil {
		return models.TransactionRecord{}, fmt.Errorf("generate KHQR payload: %w", err)
	}
	rec.MD5Hash = khqr.Fingerprint(payload)

	png, err := khqr.Image(payload)
	if err != nil {
		return models.TransactionRecord{}, fmt.Errorf("render QR image: %w", err)
	}

	keyboard := &InlineKeyboardMarkup{
		InlineKeyboard: [][]InlineKeyboardButton{{{
			Text:         ConfirmButtonText,
			CallbackData: ConfirmCallbackPrefix + rec.BillNumber,
		}}},
	}
	messageID, err := s.sender.SendPhoto(ctx, chatID, png, QRCaption(rec), keyboard)
	if err != nil {
		return models.TransactionRecord{}, fmt.Errorf("send QR photo: %w", err)
	}
	rec.MessageID = messageID

	if err := s.store.Insert(rec); err != nil {
		return models.TransactionRecord{}, fmt.Errorf("track transaction %s: %w", rec.BillNumber, err)
	}

	metrics.PaymentsCreated.Inc()
	s.log.WithFields(logrus.Fields{
		"bill_number": rec.BillNumber,
		"chat_id":     rec.ChatID,
		"amount":      utils.FormatAmount(rec.Amount, rec.Currency),
		"expires_at":  rec.ExpiresAt,
	}).Info("payment request issued")

	return rec, nil
}
