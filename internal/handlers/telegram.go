package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/example/bakongbot/internal/config"
	"github.com/example/bakongbot/internal/khqr"
	"github.com/example/bakongbot/internal/models"
	"github.com/example/bakongbot/internal/services"
	"github.com/example/bakongbot/internal/store"
	"github.com/example/bakongbot/internal/utils"
)

// TelegramHandler turns webhook updates into bot actions.
type TelegramHandler struct {
	cfg        *config.Config
	store      *store.Store
	payments   *services.PaymentService
	reconciler *services.ReconcileService
	telegram   *services.TelegramService
	log        *logrus.Logger
}

// NewTelegramHandler builds the webhook handler.
func NewTelegramHandler(cfg *config.Config, st *store.Store, payments *services.PaymentService, reconciler *services.ReconcileService, telegram *services.TelegramService, log *logrus.Logger) *TelegramHandler {
	return &TelegramHandler{
		cfg:        cfg,
		store:      st,
		payments:   payments,
		reconciler: reconciler,
		telegram:   telegram,
		log:        log,
	}
}

// HandleWebhook processes one Telegram update. It always answers 200 so
// Telegram does not re-deliver updates whose side effects already ran.
func (h *TelegramHandler) HandleWebhook(c *fiber.Ctx) error {
	var update services.Update
	if err := c.BodyParser(&update); err != nil {
		h.log.WithError(err).Warn("discarding malformed update")
		return c.SendStatus(fiber.StatusOK)
	}

	ctx := c.UserContext()

	switch {
	case update.CallbackQuery != nil:
		h.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		h.handleMessage(ctx, update.Message)
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *TelegramHandler) handleMessage(ctx context.Context, msg *services.Message) {
	text := strings.TrimSpace(msg.Text)
	if !strings.HasPrefix(text, "/") {
		return
	}

	command, args := splitCommand(text)
	switch command {
	case "/start", "/help":
		h.reply(ctx, msg.Chat.ID, services.HelpMessage(h.cfg.MerchantName, h.cfg.Expiration))
	case "/pay":
		h.handlePay(ctx, msg.Chat.ID, args)
	}
}

func (h *TelegramHandler) handlePay(ctx context.Context, chatID int64, args string) {
	if args == "" {
		h.reply(ctx, chatID, services.MissingAmountMessage())
		return
	}

	amountText, description := splitPayArgs(args)

	_, err := h.payments.CreatePayment(ctx, chatID, amountText, description)
	switch {
	case err == nil:
	case errors.Is(err, utils.ErrAmountNotNumeric),
		errors.Is(err, utils.ErrAmountNotPositive),
		errors.Is(err, utils.ErrAmountPrecision),
		errors.Is(err, khqr.ErrAmountTooLarge):
		h.reply(ctx, chatID, services.InvalidAmountMessage())
	default:
		h.log.WithField("chat_id", chatID).WithError(err).Error("payment request failed")
		h.reply(ctx, chatID, services.CreateFailedMessage())
	}
}

func (h *TelegramHandler) handleCallback(ctx context.Context, cb *services.CallbackQuery) {
	if cb.Message == nil || !strings.HasPrefix(cb.Data, services.ConfirmCallbackPrefix) {
		return
	}

	// Stop the loading spinner on the button right away.
	if err := h.telegram.AnswerCallbackQuery(ctx, cb.ID, services.CheckingCallbackText); err != nil {
		h.log.WithError(err).Warn("failed to answer callback query")
	}

	billNumber := strings.TrimPrefix(cb.Data, services.ConfirmCallbackPrefix)
	chatID := cb.Message.Chat.ID
	messageID := cb.Message.MessageID

	result, err := h.reconciler.TriggerCheck(ctx, billNumber)
	if err != nil {
		h.log.WithField("bill_number", billNumber).WithError(err).Warn("manual check failed")
		h.reply(ctx, chatID, services.CheckErrorMessage())
		return
	}

	switch result {
	case models.CheckPaid, models.CheckExpired:
		// The reconciler already removed the QR and announced the outcome.
	case models.CheckNotTracked:
		caption := strings.TrimSpace(cb.Message.Caption + "\n\n" + services.UntrackedCaptionNote)
		// Often fails because the poller deleted the QR message first.
		if err := h.telegram.EditMessageCaption(ctx, chatID, messageID, caption, nil); err != nil {
			h.log.WithField("bill_number", billNumber).WithError(err).Debug("could not mark caption as untracked")
		}
		h.reply(ctx, chatID, services.NotTrackedMessage(billNumber))
	case models.CheckUnpaid:
		if rec, ok := h.store.Get(billNumber); ok {
			keyboard := &services.InlineKeyboardMarkup{
				InlineKeyboard: [][]services.InlineKeyboardButton{{{
					Text:         services.ConfirmButtonText,
					CallbackData: cb.Data,
				}}},
			}
			if err := h.telegram.EditMessageCaption(ctx, chatID, messageID, services.UnpaidCaption(rec), keyboard); err != nil {
				h.log.WithField("bill_number", billNumber).WithError(err).Debug("could not update caption after manual check")
			}
		}
		h.reply(ctx, chatID, services.StillUnpaidMessage(billNumber))
	}
}

func (h *TelegramHandler) reply(ctx context.Context, chatID int64, text string) {
	if _, err := h.telegram.SendMessage(ctx, chatID, text); err != nil {
		h.log.WithField("chat_id", chatID).WithError(err).Warn("failed to send reply")
	}
}

func splitCommand(text string) (string, string) {
	command, args := text, ""
	if i := strings.IndexByte(text, ' '); i >= 0 {
		command, args = text[:i], strings.TrimSpace(text[i+1:])
	}
	// Commands in groups arrive as /pay@BotName.
	if i := strings.IndexByte(command, '@'); i >= 0 {
		command = command[:i]
	}
	return command, args
}

func splitPayArgs(args string) (string, string) {
	parts := strings.SplitN(args, " ", 2)
	if len(parts) == 2 {
		return parts[0], strings.TrimSpace(parts[1])
	}
	return parts[0], ""
}
