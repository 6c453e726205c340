package services

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func telegramOK(t *testing.T, w http.ResponseWriter, result any) {
	t.Helper()
	raw, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("failed to marshal result: %v", err)
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write([]byte(`{"ok":true,"result":` + string(raw) + `}`)); err != nil {
		t.Fatalf("failed to write response: %v", err)
	}
}

func TestSendMessage(t *testing.T) {
	var gotPath string
	var gotBody sendMessageRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		telegramOK(t, w, Message{MessageID: 77})
	}))
	defer server.Close()

	svc := NewTelegramService("test-token", server.URL, time.Second)
	messageID, err := svc.SendMessage(context.Background(), 1001, "<b>hello</b>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if messageID != 77 {
		t.Errorf("expected message id 77, got %d", messageID)
	}
	if gotPath != "/bottest-token/sendMessage" {
		t.Errorf("unexpected path %s", gotPath)
	}
	if gotBody.ChatID != 1001 || gotBody.Text != "<b>hello</b>" || gotBody.ParseMode != "HTML" {
		t.Errorf("unexpected payload %+v", gotBody)
	}
}

func TestSendPhotoMultipart(t *testing.T) {
	photo := []byte{0x89, 'P', 'N', 'G'}
	keyboard := &InlineKeyboardMarkup{
		InlineKeyboard: [][]InlineKeyboardButton{{{Text: "Confirm", CallbackData: "confirm_TRX1"}}},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("failed to parse multipart form: %v", err)
			return
		}
		if got := r.FormValue("chat_id"); got != "1001" {
			t.Errorf("expected chat_id 1001, got %s", got)
		}
		if got := r.FormValue("caption"); got != "scan me" {
			t.Errorf("expected caption, got %s", got)
		}
		if !strings.Contains(r.FormValue("reply_markup"), "confirm_TRX1") {
			t.Errorf("reply markup missing callback data: %s", r.FormValue("reply_markup"))
		}

		file, _, err := r.FormFile("photo")
		if err != nil {
			t.Errorf("photo part missing: %v", err)
			return
		}
		defer file.Close()
		content, err := io.ReadAll(file)
		if err != nil {
			t.Errorf("failed to read photo part: %v", err)
			return
		}
		if !bytes.Equal(content, photo) {
			t.Error("photo bytes do not round-trip")
		}

		telegramOK(t, w, Message{MessageID: 12})
	}))
	defer server.Close()

	svc := NewTelegramService("test-token", server.URL, time.Second)
	messageID, err := svc.SendPhoto(context.Background(), 1001, photo, "scan me", keyboard)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if messageID != 12 {
		t.Errorf("expected message id 12, got %d", messageID)
	}
}

func TestEditMessageCaptionDropsKeyboard(t *testing.T) {
	var rawBody []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("failed to read body: %v", err)
		}
		rawBody = body
		telegramOK(t, w, true)
	}))
	defer server.Close()

	svc := NewTelegramService("test-token", server.URL, time.Second)
	if err := svc.EditMessageCaption(context.Background(), 1001, 12, "done", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.Contains(string(rawBody), "reply_markup") {
		t.Errorf("nil keyboard must be omitted from payload: %s", rawBody)
	}
}

func TestSetWebhookSendsSecret(t *testing.T) {
	var gotBody setWebhookRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		telegramOK(t, w, true)
	}))
	defer server.Close()

	svc := NewTelegramService("test-token", server.URL, time.Second)
	if err := svc.SetWebhook(context.Background(), "https://bot.example.com/telegram/webhook", "hook-secret"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotBody.URL != "https://bot.example.com/telegram/webhook" || gotBody.SecretToken != "hook-secret" {
		t.Errorf("unexpected payload %+v", gotBody)
	}
}

func TestTelegramAPIErrorSurfaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		if _, err := w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`)); err != nil {
			t.Errorf("failed to write response: %v", err)
		}
	}))
	defer server.Close()

	svc := NewTelegramService("test-token", server.URL, time.Second)
	_, err := svc.SendMessage(context.Background(), 1, "hi")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "chat not found") {
		t.Errorf("expected API description in error, got %v", err)
	}
}
