package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnauthorized is returned when a call needs a bearer token and the
// session has none. AuthError unwraps to it.
var ErrUnauthorized = errors.New("not authenticated")

// AuthError indicates bad credentials or a missing, expired or rejected
// bearer token.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("auth error: %s", e.Message)
	}
	return fmt.Sprintf("auth error (%d): %s", e.StatusCode, e.Message)
}

// Unwrap lets errors.Is(err, ErrUnauthorized) match any AuthError.
func (e *AuthError) Unwrap() error { return ErrUnauthorized }

// ValidationError is a non-success response other than an auth failure.
// Detail carries the backend's "detail" message when it sent one.
type ValidationError struct {
	StatusCode int
	Detail     string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("request failed (%d): %s", e.StatusCode, e.Detail)
}

// NetworkError means the request never produced an HTTP response.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// Message returns the best user-facing text for err: the backend detail
// when one was sent, otherwise fallback.
func Message(err error, fallback string) string {
	var authErr *AuthError
	if errors.As(err, &authErr) && authErr.Message != "" {
		return authErr.Message
	}
	var valErr *ValidationError
	if errors.As(err, &valErr) && valErr.Detail != "" {
		return valErr.Detail
	}
	return fallback
}

// errorBody is the backend's error envelope. Detail is either a plain
// string or a list of field errors.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

type fieldError struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

// parseDetail extracts the "detail" text from an error response body.
func parseDetail(body []byte) string {
	var eb errorBody
	if json.Unmarshal(body, &eb) != nil || len(eb.Detail) == 0 {
		return ""
	}

	var s string
	if json.Unmarshal(eb.Detail, &s) == nil {
		return s
	}

	var fields []fieldError
	if json.Unmarshal(eb.Detail, &fields) == nil {
		msgs := make([]string, 0, len(fields))
		for _, f := range fields {
			if f.Msg != "" {
				msgs = append(msgs, f.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}

	return ""
}
