package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tesso57/substackchat/internal/application/usecase"
	"github.com/tesso57/substackchat/internal/domain/conversation"
	"github.com/tesso57/substackchat/internal/infrastructure/ai"
	"github.com/tesso57/substackchat/internal/infrastructure/datastream"
)

type fakeChat struct {
	run     func(ctx context.Context, history []conversation.ChatMessage, stream usecase.ChatStream) error
	history []conversation.ChatMessage
}

func (f *fakeChat) Run(ctx context.Context, history []conversation.ChatMessage, stream usecase.ChatStream) error {
	f.history = history
	return f.run(ctx, history, stream)
}

func newTestServer(t *testing.T, chat ChatRunner, cfg Config) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewServer(chat, cfg, nil).Router())
	t.Cleanup(srv.Close)
	return srv
}

func postChat(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url+"/api/chat", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

const oneMessage = `{"messages":[{"role":"user","content":"How many posts are already published in https://cosasdefreelance.substack.com/"}]}`

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &fakeChat{}, Config{})
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var payload map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Equal(t, "ok", payload["status"])
}

func TestChat_StreamsParts(t *testing.T) {
	chat := &fakeChat{run: func(_ context.Context, _ []conversation.ChatMessage, stream usecase.ChatStream) error {
		require.NoError(t, stream.ToolCall(ai.ToolCall{ID: "c1", Name: "get_number_of_posts", Args: json.RawMessage(`{"url":"https://cosasdefreelance.substack.com/"}`)}))
		require.NoError(t, stream.ToolResult(ai.ToolResult{CallID: "c1", Content: json.RawMessage(`{"numberOfPosts":3}`)}))
		require.NoError(t, stream.FinishStep(ai.FinishToolCalls, ai.Usage{}, true))
		require.NoError(t, stream.Text("There are 3 posts."))
		require.NoError(t, stream.FinishStep(ai.FinishStop, ai.Usage{}, false))
		return stream.FinishMessage(ai.FinishStop, ai.Usage{PromptTokens: 4, CompletionTokens: 5})
	}}
	srv := newTestServer(t, chat, Config{})

	resp := postChat(t, srv.URL, oneMessage)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, datastream.ContentType, resp.Header.Get("Content-Type"))
	require.Equal(t, datastream.HeaderValue, resp.Header.Get(datastream.HeaderName))

	reader := datastream.NewReader(resp.Body)
	var types []string
	var text string
	for {
		part, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		types = append(types, string(part.Type))
		if part.Type == datastream.PartText {
			text += part.Text
		}
		if part.Type == datastream.PartStart {
			require.True(t, strings.HasPrefix(part.Start.MessageID, "msg-"))
		}
	}
	require.Equal(t, []string{"f", "9", "a", "e", "0", "e", "d"}, types)
	require.Equal(t, "There are 3 posts.", text)
	require.Len(t, chat.history, 1)
	require.Equal(t, conversation.RoleUser, chat.history[0].Role)
}

func TestChat_BadRequests(t *testing.T) {
	chat := &fakeChat{run: func(context.Context, []conversation.ChatMessage, usecase.ChatStream) error {
		t.Error("chat should not run for invalid requests")
		return nil
	}}
	srv := newTestServer(t, chat, Config{MaxBodyBytes: 512})

	for name, body := range map[string]string{
		"malformed":    `{"messages":`,
		"empty":        `{"messages":[]}`,
		"unknown role": `{"messages":[{"role":"system","content":"x"}]}`,
		"too large":    `{"messages":[{"role":"user","content":"` + strings.Repeat("a", 1024) + `"}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			resp := postChat(t, srv.URL, body)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestChat_UpstreamErrorsBeforeStreaming(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"rate limited", &ai.RateLimitError{Provider: "openai", Err: errors.New("429")}, http.StatusTooManyRequests},
		{"timeout", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"other", errors.New("connection reset"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chat := &fakeChat{run: func(context.Context, []conversation.ChatMessage, usecase.ChatStream) error {
				return tt.err
			}}
			srv := newTestServer(t, chat, Config{})
			resp := postChat(t, srv.URL, oneMessage)
			require.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestChat_ErrorAfterStreamingBecomesErrorPart(t *testing.T) {
	chat := &fakeChat{run: func(_ context.Context, _ []conversation.ChatMessage, stream usecase.ChatStream) error {
		require.NoError(t, stream.Text("Let me check"))
		return errors.New("model went away")
	}}
	srv := newTestServer(t, chat, Config{})

	resp := postChat(t, srv.URL, oneMessage)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	require.Equal(t, `3:"An error occurred."`, lines[len(lines)-1])
}

func TestChat_RequestTimeout(t *testing.T) {
	chat := &fakeChat{run: func(ctx context.Context, _ []conversation.ChatMessage, _ usecase.ChatStream) error {
		deadline, ok := ctx.Deadline()
		require.True(t, ok)
		require.WithinDuration(t, time.Now().Add(30*time.Second), deadline, 5*time.Second)
		return nil
	}}
	srv := newTestServer(t, chat, Config{})
	resp := postChat(t, srv.URL, oneMessage)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestChat_RateLimiter(t *testing.T) {
	chat := &fakeChat{run: func(_ context.Context, _ []conversation.ChatMessage, stream usecase.ChatStream) error {
		return stream.FinishMessage(ai.FinishStop, ai.Usage{})
	}}
	srv := newTestServer(t, chat, Config{RateLimit: 0.001, Burst: 1})

	first := postChat(t, srv.URL, oneMessage)
	require.Equal(t, http.StatusOK, first.StatusCode)
	second := postChat(t, srv.URL, oneMessage)
	require.Equal(t, http.StatusTooManyRequests, second.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, &fakeChat{}, Config{})
	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/chat", bytes.NewReader(nil))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
