package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestTelegramSend_PayloadShape(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bottoken123/sendMessage" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sender := NewTelegramSender("token123", "chat42").WithBaseURL(srv.URL)
	if err := sender.Send(context.Background(), "Order Placed", "BUY 10 @ 0.55"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if got["chat_id"] != "chat42" {
		t.Errorf("chat_id = %v", got["chat_id"])
	}
	if got["parse_mode"] != "Markdown" {
		t.Errorf("parse_mode = %v", got["parse_mode"])
	}
	if got["disable_web_page_preview"] != true {
		t.Errorf("disable_web_page_preview = %v", got["disable_web_page_preview"])
	}
	text, _ := got["text"].(string)
	if !strings.HasPrefix(text, "*Order Placed*\nBUY 10 @ 0.55\n") {
		t.Errorf("text = %q", text)
	}
	if !strings.Contains(text, "UTC") {
		t.Errorf("text missing timestamp line: %q", text)
	}
}

func TestTelegramSend_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"ok":false}`, http.StatusForbidden)
	}))
	defer srv.Close()

	sender := NewTelegramSender("token123", "chat42").WithBaseURL(srv.URL)
	err := sender.Send(context.Background(), "t", "m")
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Errorf("err = %v, want status 403", err)
	}
}

func TestDiscordSend_EmbedPayload(t *testing.T) {
	var got struct {
		Embeds []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Color       int    `json:"color"`
			Timestamp   string `json:"timestamp"`
			Footer      struct {
				Text string `json:"text"`
			} `json:"footer"`
		} `json:"embeds"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sender := NewDiscordSender(srv.URL)
	if err := sender.Send(context.Background(), "Order Cancelled", "order abc"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if len(got.Embeds) != 1 {
		t.Fatalf("embeds = %d, want 1", len(got.Embeds))
	}
	embed := got.Embeds[0]
	if embed.Title != "Order Cancelled" || embed.Description != "order abc" {
		t.Errorf("embed = %+v", embed)
	}
	if embed.Footer.Text != "polygate" {
		t.Errorf("footer = %q", embed.Footer.Text)
	}
	if embed.Timestamp == "" {
		t.Error("embed timestamp empty")
	}
}
