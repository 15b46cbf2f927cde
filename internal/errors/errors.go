// Copyright (c) 2025 Chatbox
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package errors defines typed errors with categories for user-friendly reporting.
// It provides a structured approach to error handling with machine-readable error kinds
// and human-friendly messages. The session controller branches on kinds (an unauthorized
// response triggers a token refresh, a network failure does not), and the CLI uses them
// to pick how a failure is presented.
//
// The package supports wrapping underlying errors while maintaining error kind information.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// Validation indicates the identity service rejected the input (duplicate username,
	// wrong password). The message is shown to the user verbatim.
	Validation Kind = "validation"
	// Unauthorized indicates the service answered 401 for a bearer-authenticated call.
	Unauthorized Kind = "unauthorized"
	// SessionExpired indicates a refresh attempt failed and the session fell back to guest.
	SessionExpired Kind = "session_expired"
	// Network indicates the request never produced an HTTP response.
	Network Kind = "network"
	// Service indicates any other non-2xx response.
	Service Kind = "service"
	// NotAuthenticated indicates an account-only operation was invoked in guest mode.
	NotAuthenticated Kind = "not_authenticated"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// KindOf returns the kind of the first *E in err's chain, or "" when there is none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message returns the human-friendly message of the first *E in err's chain,
// falling back to err.Error() for foreign errors.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *E
	if stderrors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return err.Error()
}
