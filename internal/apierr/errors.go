// Package apierr defines the typed error taxonomy shared by the transport
// and the service layers. Every failure leaving the transport is one of the
// types below; callers branch with errors.As / errors.Is instead of string
// matching.
package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// NetworkError signals that no response was received: connectivity loss,
// DNS failure, or a timed-out request.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("network error: %v", e.Err)
	}
	return "network error"
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError signals a response with a non-2xx status. Message holds the
// human-readable text extracted from the response body.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %d: %s", e.Status, e.Message)
}

// ErrSessionExpired signals that the authorization recovery protocol was
// exhausted: the refresh yielded no session, or the retried request was
// rejected again. The caller is expected to redirect to authentication.
var ErrSessionExpired = errors.New("session expired, please login again")

// ValidationError is raised by service-layer precondition checks before any
// network call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s %s", e.Field, e.Reason)
}

// bodyEnvelope matches the two JSON error shapes the backend emits.
type bodyEnvelope struct {
	Message string `json:"message"`
	ErrMsg  string `json:"error"`
}

// ExtractMessage pulls a human-readable message out of an error response
// body. Priority: plain string body, then a "message" field, then an
// "error" field, then a generic fallback.
func ExtractMessage(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return "an error occurred"
	}

	if !strings.HasPrefix(trimmed, "{") && !strings.HasPrefix(trimmed, "[") {
		var s string
		if err := json.Unmarshal([]byte(trimmed), &s); err == nil && s != "" {
			return s
		}
		return trimmed
	}

	var envelope bodyEnvelope
	if err := json.Unmarshal([]byte(trimmed), &envelope); err == nil {
		if envelope.Message != "" {
			return envelope.Message
		}
		if envelope.ErrMsg != "" {
			return envelope.ErrMsg
		}
	}

	return "an error occurred"
}

// UserMessage maps a typed error to the text shown to the operator,
// distinguishing bad credentials from connectivity loss from an expired
// session.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, ErrSessionExpired) {
		return "Session expired. Please login again."
	}

	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return "Network error. Please check your internet connection."
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.Status == http.StatusUnauthorized {
			return "Invalid username or password."
		}
		return httpErr.Message
	}

	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return valErr.Error()
	}

	return err.Error()
}
