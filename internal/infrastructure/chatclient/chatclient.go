// Package chatclient calls the chat endpoint and decodes its data stream.
package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tesso57/substackchat/internal/domain/conversation"
	"github.com/tesso57/substackchat/internal/infrastructure/datastream"
)

const chatPath = "/api/chat"

// StatusError reports a non-200 answer from the chat endpoint.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("chat request failed: %d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("chat request failed: %d %s: %s", e.Code, http.StatusText(e.Code), e.Body)
}

// IsRateLimited reports whether err is a 429 from the chat endpoint.
func IsRateLimited(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.Code == http.StatusTooManyRequests
}

// StreamError is an error part received after streaming began.
type StreamError struct {
	Message string
}

func (e *StreamError) Error() string {
	return "chat stream error: " + e.Message
}

// Client talks to a chat server. The HTTP client has no timeout; callers bound requests with ctx.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the server at baseURL.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return new(Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	})
}

// Send posts history and calls onPart for every decoded stream part.
// An error part ends the call with a StreamError.
func (c *Client) Send(ctx context.Context, history []conversation.ChatMessage, onPart func(datastream.Part)) error {
	body, err := json.Marshal(map[string]any{"messages": history})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatPath, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(detail))}
	}

	reader := datastream.NewReader(resp.Body)
	for {
		part, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if part.Type == datastream.PartError {
			return &StreamError{Message: part.Text}
		}
		if onPart != nil {
			onPart(part)
		}
	}
}
