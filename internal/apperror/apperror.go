// Package apperror tags errors with an origin status so handlers can tell
// caller mistakes (EXT) from server faults (INT).
package apperror

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusInternal Status = "INT"
	StatusExternal Status = "EXT"
	StatusUnknown  Status = "UNKNOWN"
)

const unknownReason = "UNKNOWN"

// ParseStatus normalizes s, mapping anything unrecognized to StatusUnknown.
func ParseStatus(s string) Status {
	switch Status(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusInternal:
		return StatusInternal
	case StatusExternal:
		return StatusExternal
	default:
		return StatusUnknown
	}
}

type Error struct {
	Reason string
	Status Status
	Time   time.Time
	Err    error
}

func New(reason string, status Status, err error) *Error {
	if reason == "" {
		reason = unknownReason
	}
	return &Error{
		Reason: reason,
		Status: ParseStatus(string(status)),
		Time:   time.Now().UTC(),
		Err:    err,
	}
}

// Internal marks a server-side failure (database, mailer, provider).
func Internal(reason string, err error) *Error {
	return New(reason, StatusInternal, err)
}

// External marks a failure caused by the caller's input.
func External(reason string) *Error {
	return New(reason, StatusExternal, nil)
}

func Externalf(format string, args ...any) *Error {
	return New(fmt.Sprintf(format, args...), StatusExternal, nil)
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Status, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Status, e.Reason)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// JSON returns the loggable form of the error.
func (e *Error) JSON() map[string]any {
	var cause any
	if e.Err != nil {
		cause = e.Err.Error()
	}
	return map[string]any{
		"status": string(e.Status),
		"reason": e.Reason,
		"date":   e.Time.Format(time.RFC3339),
		"err":    cause,
	}
}

// StatusOf returns the status of the first *Error in err's chain.
func StatusOf(err error) Status {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return StatusUnknown
}

func IsExternal(err error) bool {
	return StatusOf(err) == StatusExternal
}
