package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/bilgisen/autostudio/internal/utils"
)

// ErrorKind is the user-facing category of an AI failure.
type ErrorKind string

const (
	KindNetwork   ErrorKind = "network"
	KindAuth      ErrorKind = "auth"
	KindRateLimit ErrorKind = "rate_limit"
	KindSafety    ErrorKind = "safety"
	KindTimeout   ErrorKind = "timeout"
	KindUnknown   ErrorKind = "unknown"
)

const maxUnknownMessage = 100

var (
	// ErrEmptyResponse means the model returned no usable content.
	ErrEmptyResponse = errors.New("no content in response")
	// ErrEmptyResult means the structured output parsed but held no items.
	ErrEmptyResult = errors.New("empty result")
)

// Error is a classified failure carrying a short message safe to show users.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// APIError is a non-2xx reply from the provider.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d (%s): %s", e.StatusCode, e.Status, e.Message)
}

// BlockedError is returned when the provider refuses on safety grounds.
type BlockedError struct {
	Reason string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("response blocked: %s", e.Reason)
}

var userMessages = map[ErrorKind]string{
	KindNetwork:   "AI Engine: Connection failed. This is often a temporary network issue. Please try again in a few seconds.",
	KindAuth:      "AI Engine: Invalid API Key. Please check your Gemini API key in Settings.",
	KindRateLimit: "AI Engine: Rate limit exceeded. Please wait a minute before trying again.",
	KindSafety:    "AI Engine: Content blocked by safety filters. Try rephrasing your topic.",
	KindTimeout:   "AI Engine: The request timed out. Please try again.",
}

// Classify maps any error to an *Error. Already classified errors are
// returned unchanged.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}

	kind := kindOf(err)
	msg, ok := userMessages[kind]
	if !ok {
		msg = truncate(err.Error(), maxUnknownMessage)
	}
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf returns the category of err.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	return Classify(err).Kind
}

func kindOf(err error) ErrorKind {
	var blocked *BlockedError
	if errors.As(err, &blocked) {
		return KindSafety
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusUnauthorized, apiErr.StatusCode == http.StatusForbidden:
			return KindAuth
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return KindRateLimit
		}
	}

	if errors.Is(err, utils.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return KindTimeout
		}
		return KindNetwork
	}

	// Errors without structure (SDK or proxy text) still carry the provider's
	// wording, so fall back to matching it.
	return kindFromText(err.Error())
}

func kindFromText(s string) ErrorKind {
	lower := strings.ToLower(s)
	switch {
	case strings.Contains(lower, "rpc failed"), strings.Contains(lower, "xhr error"),
		strings.Contains(lower, "connection refused"), strings.Contains(lower, "no such host"):
		return KindNetwork
	case strings.Contains(lower, "api key not valid"), strings.Contains(lower, "api_key_invalid"):
		return KindAuth
	case strings.Contains(lower, "quota exceeded"), strings.Contains(lower, "429"),
		strings.Contains(lower, "resource_exhausted"):
		return KindRateLimit
	case strings.Contains(lower, "safety"), strings.Contains(lower, "blocked"):
		return KindSafety
	}
	return KindUnknown
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
