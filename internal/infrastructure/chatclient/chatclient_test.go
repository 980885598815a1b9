package chatclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tesso57/substackchat/internal/domain/conversation"
	"github.com/tesso57/substackchat/internal/infrastructure/datastream"
)

func TestSend_DecodesParts(t *testing.T) {
	var got struct {
		Messages []conversation.ChatMessage `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", datastream.ContentType)
		sw := datastream.NewWriter(w)
		_ = sw.StartMessage("m1")
		_ = sw.Text("Hi")
		_ = sw.FinishMessage("stop", datastream.Usage{})
	}))
	defer srv.Close()

	var parts []datastream.Part
	err := New(srv.URL+"/", nil).Send(context.Background(), []conversation.ChatMessage{{Role: conversation.RoleUser, Content: "hello"}}, func(p datastream.Part) {
		parts = append(parts, p)
	})
	if err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if len(parts) != 3 || parts[1].Text != "Hi" {
		t.Fatalf("unexpected parts %+v", parts)
	}
	if len(got.Messages) != 1 || got.Messages[0].Content != "hello" {
		t.Fatalf("server received %+v", got.Messages)
	}
}

func TestSend_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limit exceeded"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := New(srv.URL, nil).Send(context.Background(), nil, nil)
	if !IsRateLimited(err) {
		t.Fatalf("expected rate limit, got %v", err)
	}
	if IsRateLimited(fmt.Errorf("wrapped: %w", &StatusError{Code: 502})) {
		t.Fatal("502 is not a rate limit")
	}
}

func TestSend_StreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := datastream.NewWriter(w)
		_ = sw.StartMessage("m1")
		_ = sw.Error("An error occurred.")
	}))
	defer srv.Close()

	err := New(srv.URL, nil).Send(context.Background(), nil, nil)
	var streamErr *StreamError
	if !errors.As(err, &streamErr) || streamErr.Message != "An error occurred." {
		t.Fatalf("expected stream error, got %v", err)
	}
}
