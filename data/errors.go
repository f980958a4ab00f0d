package data

import (
	"errors"
	"fmt"
	"strings"
)

// ErrRequestFailed is matched by every error the Client returns.
var ErrRequestFailed = errors.New("request failed")

// RequestError describes a failed API call.
type RequestError struct {
	// Op is the logical operation, e.g. "listing instances".
	Op string
	// StatusCode is the HTTP status, or 0 if no response was received.
	StatusCode int
	// Message is the server-supplied (or generic) description.
	Message string
	// Err is the underlying cause, if any.
	Err error
}

func (e *RequestError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Op)
	if e.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Message)
	} else if e.StatusCode != 0 {
		fmt.Fprintf(&sb, ": server returned status %d", e.StatusCode)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrRequestFailed) true for any RequestError.
func (e *RequestError) Is(target error) bool {
	return target == ErrRequestFailed
}
