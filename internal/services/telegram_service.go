package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Update is an incoming Telegram webhook event.
type Update struct {
	UpdateID      int64          `json:"update_id"`
	Message       *Message       `json:"message"`
	CallbackQuery *CallbackQuery `json:"callback_query"`
}

// Message is a Telegram chat message.
type Message struct {
	MessageID int    `json:"message_id"`
	From      *User  `json:"from"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text"`
	Caption   string `json:"caption"`
}

// Chat identifies a Telegram conversation.
type Chat struct {
	ID int64 `json:"id"`
}

// User identifies a Telegram account.
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	Username  string `json:"username"`
}

// CallbackQuery is a press of an inline keyboard button.
type CallbackQuery struct {
	ID      string   `json:"id"`
	From    *User    `json:"from"`
	Message *Message `json:"message"`
	Data    string   `json:"data"`
}

// InlineKeyboardMarkup is an inline keyboard attached to a message.
type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

// InlineKeyboardButton is a single inline keyboard button.
type InlineKeyboardButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data,omitempty"`
}

type sendMessageRequest struct {
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type deleteMessageRequest struct {
	ChatID    int64 `json:"chat_id"`
	MessageID int   `json:"message_id"`
}

type editCaptionRequest struct {
	ChatID      int64                 `json:"chat_id"`
	MessageID   int                   `json:"message_id"`
	Caption     string                `json:"caption"`
	ParseMode   string                `json:"parse_mode"`
	ReplyMarkup *InlineKeyboardMarkup `json:"reply_markup,omitempty"`
}

type answerCallbackRequest struct {
	CallbackQueryID string `json:"callback_query_id"`
	Text            string `json:"text,omitempty"`
}

type setWebhookRequest struct {
	URL         string `json:"url"`
	SecretToken string `json:"secret_token,omitempty"`
}

type telegramResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
}

// TelegramService talks to the Telegram Bot API over plain HTTP.
type TelegramService struct {
	botToken string
	baseURL  string
	client   *http.Client
}

// NewTelegramService creates a Telegram client against the given API base URL
// with the given request timeout.
func NewTelegramService(botToken, baseURL string, timeout time.Duration) *TelegramService {
	return &TelegramService{
		botToken: botToken,
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
	}
}

// SendMessage sends an HTML-formatted message and returns its message ID.
func (s *TelegramService) SendMessage(ctx context.Context, chatID int64, text string) (int, error) {
	payload := sendMessageRequest{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "HTML",
	}

	var sent Message
	if err := s.call(ctx, "sendMessage", payload, &sent); err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// SendPhoto uploads a PNG with an HTML caption and an optional inline
// keyboard, returning the message ID of the posted photo.
func (s *TelegramService) SendPhoto(ctx context.Context, chatID int64, photo []byte, caption string, keyboard *InlineKeyboardMarkup) (int, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fields := map[string]string{
		"chat_id":    strconv.FormatInt(chatID, 10),
		"caption":    caption,
		"parse_mode": "HTML",
	}
	if keyboard != nil {
		markup, err := json.Marshal(keyboard)
		if err != nil {
			return 0, fmt.Errorf("marshal reply markup: %w", err)
		}
		fields["reply_markup"] = string(markup)
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return 0, fmt.Errorf("write %s field: %w", name, err)
		}
	}

	part, err := writer.CreateFormFile("photo", "khqr_payment.png")
	if err != nil {
		return 0, fmt.Errorf("create photo part: %w", err)
	}
	if _, err := part.Write(photo); err != nil {
		return 0, fmt.Errorf("write photo part: %w", err)
	}
	if err := writer.Close(); err != nil {
		return 0, fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.methodURL("sendPhoto"), &buf)
	if err != nil {
		return 0, fmt.Errorf("create sendPhoto request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var sent Message
	if err := s.do(req, "sendPhoto", &sent); err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// DeleteMessage removes a previously sent message.
func (s *TelegramService) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	return s.call(ctx, "deleteMessage", deleteMessageRequest{ChatID: chatID, MessageID: messageID}, nil)
}

// EditMessageCaption replaces the caption and keyboard of a photo message.
// A nil keyboard removes the buttons.
func (s *TelegramService) EditMessageCaption(ctx context.Context, chatID int64, messageID int, caption string, keyboard *InlineKeyboardMarkup) error {
	payload := editCaptionRequest{
		ChatID:      chatID,
		MessageID:   messageID,
		Caption:     caption,
		ParseMode:   "HTML",
		ReplyMarkup: keyboard,
	}
	return s.call(ctx, "editMessageCaption", payload, nil)
}

// AnswerCallbackQuery acknowledges an inline button press.
func (s *TelegramService) AnswerCallbackQuery(ctx context.Context, callbackID, text string) error {
	return s.call(ctx, "answerCallbackQuery", answerCallbackRequest{CallbackQueryID: callbackID, Text: text}, nil)
}

// SetWebhook registers the bot's webhook endpoint with Telegram.
func (s *TelegramService) SetWebhook(ctx context.Context, url, secret string) error {
	return s.call(ctx, "setWebhook", setWebhookRequest{URL: url, SecretToken: secret}, nil)
}

func (s *TelegramService) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", s.baseURL, s.botToken, method)
}

func (s *TelegramService) call(ctx context.Context, method string, payload, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.methodURL(method), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	return s.do(req, method, result)
}

func (s *TelegramService) do(req *http.Request, method string, result any) error {
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("execute %s request: %w", method, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", method, err)
	}

	var envelope telegramResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return fmt.Errorf("unmarshal %s response: status %d, body: %s", method, resp.StatusCode, string(respBody))
	}
	if !envelope.OK {
		return fmt.Errorf("telegram %s failed: %s", method, envelope.Description)
	}

	if result != nil && len(envelope.Result) > 0 {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return fmt.Errorf("unmarshal %s result: %w", method, err)
		}
	}
	return nil
}
