package ai

import (
	"errors"
	"fmt"
)

// ErrMissingAPIKey is returned when a hosted provider is called without a credential.
var ErrMissingAPIKey = errors.New("api key is not configured")

// RateLimitError reports that a provider refused the call because of quota or rate limits.
type RateLimitError struct {
	Provider string
	Err      error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited: %v", e.Provider, e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// IsRateLimited reports whether err is, or wraps, a RateLimitError.
func IsRateLimited(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}

// ErrUnsupportedProvider is returned for unknown provider names.
type ErrUnsupportedProvider struct {
	Provider string
}

func (e ErrUnsupportedProvider) Error() string {
	return fmt.Sprintf("unsupported llm provider: %s", e.Provider)
}
