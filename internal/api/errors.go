package api

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ErrSessionExpired is returned when a 401 survives the token refresh.
// The session has already been torn down when callers see it.
var ErrSessionExpired = errors.New("session expired")

// genericMessage is shown when the server gave nothing better.
const genericMessage = "Something went wrong. Please try again."

// AuthError indicates the API rejected the credentials.
type AuthError struct {
	Method string
	Path   string
	Err    error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed on %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// TransportError wraps failures that happened before an HTTP status was
// received: DNS, connection refused, timeouts.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("executing request %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransport reports whether err is a network/transport failure.
func IsTransport(err error) bool {
	var tErr *TransportError
	return errors.As(err, &tErr)
}

// APIError is a non-2xx response other than a surviving 401.
type APIError struct {
	Status  int
	Method  string
	Path    string
	Payload map[string]any
	Body    string
}

func (e *APIError) Error() string {
	if msg := e.serverMessage(); msg != "" {
		return fmt.Sprintf("api error (%d) on %s %s: %s", e.Status, e.Method, e.Path, msg)
	}
	return fmt.Sprintf("unexpected status %d on %s %s", e.Status, e.Method, e.Path)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsConflict reports whether err is a 409 from the API.
func IsConflict(err error) bool {
	return StatusCode(err) == http.StatusConflict
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	if IsAuthError(err) {
		return http.StatusUnauthorized
	}
	return 0
}

// UserMessage returns a message suitable for an alert: the server-provided
// message when there is one, a generic fallback otherwise.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrSessionExpired) {
		return "Your session has expired. Please sign in again."
	}
	if IsTransport(err) {
		return "Cannot reach the server. Check your connection."
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if msg := apiErr.serverMessage(); msg != "" {
			return msg
		}
	}
	return genericMessage
}

// serverMessage digs a human message out of the common payload shapes:
// {"detail": ...}, {"error": ...}, {"message": ...} or field errors
// {"email": ["already registered"]}.
func (e *APIError) serverMessage() string {
	if len(e.Payload) == 0 {
		return ""
	}

	for _, key := range []string{"detail", "error", "message", "mensaje"} {
		if s := stringValue(e.Payload[key]); s != "" {
			return s
		}
	}

	fields := make([]string, 0, len(e.Payload))
	for k := range e.Payload {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	for _, field := range fields {
		if s := stringValue(e.Payload[field]); s != "" {
			if field == "non_field_errors" {
				return s
			}
			return field + ": " + s
		}
	}
	return ""
}

func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []any:
		for _, item := range t {
			if s := stringValue(item); s != "" {
				return s
			}
		}
	}
	return ""
}
