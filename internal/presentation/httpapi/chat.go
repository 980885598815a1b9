package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/tesso57/substackchat/internal/domain/conversation"
	"github.com/tesso57/substackchat/internal/infrastructure/ai"
	"github.com/tesso57/substackchat/internal/infrastructure/datastream"
	"github.com/tesso57/substackchat/internal/infrastructure/logging"
)

// streamErrorMessage is sent to clients once streaming has begun; details stay in the log.
const streamErrorMessage = "An error occurred."

type chatRequest struct {
	Messages []conversation.ChatMessage `json:"messages"`
}

func (s *Server) chatHandler(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := conversation.Validate(req.Messages); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
	defer cancel()

	stream := &responseStream{w: w}
	err := s.chat.Run(ctx, req.Messages, stream)
	if err == nil {
		return
	}

	s.logger.Error("chat request failed",
		logging.String("message", conversation.LastUserContent(req.Messages)),
		logging.String("request_id", middleware.GetReqID(r.Context())),
		logging.Bool("streaming", stream.committed()),
		logging.Error(err),
	)
	if stream.committed() {
		_ = stream.writer.Error(streamErrorMessage)
		return
	}
	writeError(w, statusFor(err), errorMessage(err))
}

func statusFor(err error) int {
	switch {
	case ai.IsRateLimited(err):
		return http.StatusTooManyRequests
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func errorMessage(err error) string {
	switch {
	case ai.IsRateLimited(err):
		return "rate limit exceeded"
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	default:
		return "upstream model request failed"
	}
}

// responseStream writes headers and the message start lazily, so errors
// raised before the first event can still produce a proper status code.
type responseStream struct {
	w      http.ResponseWriter
	writer *datastream.Writer
}

func (s *responseStream) committed() bool {
	return s.writer != nil
}

func (s *responseStream) commit() error {
	if s.writer != nil {
		return nil
	}
	h := s.w.Header()
	h.Set("Content-Type", datastream.ContentType)
	h.Set(datastream.HeaderName, datastream.HeaderValue)
	h.Set("Cache-Control", "no-cache")
	s.w.WriteHeader(http.StatusOK)
	s.writer = datastream.NewWriter(s.w)
	return s.writer.StartMessage("msg-" + uuid.NewString())
}

func (s *responseStream) Text(delta string) error {
	if err := s.commit(); err != nil {
		return err
	}
	return s.writer.Text(delta)
}

func (s *responseStream) ToolCall(call ai.ToolCall) error {
	if err := s.commit(); err != nil {
		return err
	}
	return s.writer.ToolCall(call.ID, call.Name, call.Args)
}

func (s *responseStream) ToolResult(result ai.ToolResult) error {
	if err := s.commit(); err != nil {
		return err
	}
	return s.writer.ToolResult(result.CallID, result.Content)
}

func (s *responseStream) FinishStep(reason string, usage ai.Usage, continued bool) error {
	if err := s.commit(); err != nil {
		return err
	}
	return s.writer.FinishStep(reason, toStreamUsage(usage), continued)
}

func (s *responseStream) FinishMessage(reason string, usage ai.Usage) error {
	if err := s.commit(); err != nil {
		return err
	}
	return s.writer.FinishMessage(reason, toStreamUsage(usage))
}

func toStreamUsage(u ai.Usage) datastream.Usage {
	return datastream.Usage{PromptTokens: u.PromptTokens, CompletionTokens: u.CompletionTokens}
}
