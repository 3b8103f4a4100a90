// Package llm talks to chat-completion providers. Every failure is returned
// as one of the typed errors below so callers can map it without string
// matching.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Request is a single chat completion: one system message, one user prompt.
type Request struct {
	System      string
	Prompt      string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// Completion is the provider's answer for a successful call.
type Completion struct {
	StatusCode int
	Body       []byte
	Text       string
	Model      string
	Attempts   int
}

type Completer interface {
	Complete(ctx context.Context, req Request) (*Completion, error)
}

// ConfigurationError means the client cannot be used at all (no credential).
type ConfigurationError struct{ Message string }

func (e *ConfigurationError) Error() string { return e.Message }

// ProviderError is a transport failure, a non-2xx answer or a malformed
// envelope. Status is zero when no response was received.
type ProviderError struct {
	Status int
	Body   string
	Err    error
}

func (e *ProviderError) Error() string {
	switch {
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("provider returned status %d: %v", e.Status, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("provider returned status %d", e.Status)
	case e.Err != nil:
		return fmt.Sprintf("provider request failed: %v", e.Err)
	default:
		return "provider request failed"
	}
}

func (e *ProviderError) Unwrap() error { return e.Err }

type ProviderTimeoutError struct{ Timeout time.Duration }

func (e *ProviderTimeoutError) Error() string {
	return fmt.Sprintf("provider did not answer within %s", e.Timeout)
}

// IsRetryable reports whether a failed attempt may be repeated: timeouts,
// 408, 429 and 5xx answers, and transport failures with no answer at all.
func IsRetryable(err error) bool {
	var timeout *ProviderTimeoutError
	if errors.As(err, &timeout) {
		return true
	}
	var perr *ProviderError
	if errors.As(err, &perr) {
		switch {
		case perr.Status == 0:
			return perr.Err != nil && !errors.Is(perr.Err, context.Canceled)
		case perr.Status == 408, perr.Status == 429:
			return true
		default:
			return perr.Status >= 500 && perr.Status <= 599
		}
	}
	return false
}
