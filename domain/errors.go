package domain

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorKind string

const (
	KindValidation          ErrorKind = "validation_error"
	KindNotFound            ErrorKind = "not_found"
	KindForbidden           ErrorKind = "forbidden"
	KindUnauthorized        ErrorKind = "unauthorized"
	KindInvalidTransition   ErrorKind = "invalid_transition"
	KindAlreadyClaimed      ErrorKind = "already_claimed"
	KindImmutableAfterClaim ErrorKind = "immutable_after_claim"
)

// FieldError names one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the error type every service operation returns for a rejected request.
// Infrastructure failures are returned wrapped as-is.
type Error struct {
	Kind    ErrorKind    `json:"kind"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound) works
// for every not-found error regardless of its message. An already-claimed
// error is also an invalid transition.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	if t.Kind == e.Kind {
		return true
	}
	return e.Kind == KindAlreadyClaimed && t.Kind == KindInvalidTransition
}

var (
	ErrValidation          = &Error{Kind: KindValidation, Message: "validation failed"}
	ErrNotFound            = &Error{Kind: KindNotFound, Message: "resource not found"}
	ErrForbidden           = &Error{Kind: KindForbidden, Message: "not allowed"}
	ErrUnauthorized        = &Error{Kind: KindUnauthorized, Message: "authentication required"}
	ErrInvalidTransition   = &Error{Kind: KindInvalidTransition, Message: "invalid transition"}
	ErrAlreadyClaimed      = &Error{Kind: KindAlreadyClaimed, Message: "donation is no longer available"}
	ErrImmutableAfterClaim = &Error{Kind: KindImmutableAfterClaim, Message: "donation can no longer be edited"}
)

func NewValidationError(fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Message: "validation failed", Fields: fields}
}

func NewNotFound(what string) *Error {
	return &Error{Kind: KindNotFound, Message: what + " not found"}
}

func NewForbidden(format string, args ...any) *Error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

func NewInvalidTransition(current, event string) *Error {
	return &Error{
		Kind:    KindInvalidTransition,
		Message: fmt.Sprintf("cannot %s a donation in state %q", event, current),
	}
}

func NewAlreadyClaimed(id string) *Error {
	return &Error{Kind: KindAlreadyClaimed, Message: fmt.Sprintf("donation %s is no longer available", id)}
}

func NewImmutableAfterClaim(current string) *Error {
	return &Error{
		Kind:    KindImmutableAfterClaim,
		Message: fmt.Sprintf("donation in state %q can no longer be edited", current),
	}
}

// KindOf returns the kind of a domain error, or "" for anything else.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
