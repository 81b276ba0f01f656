// Copyright © 2024 gg20-driver Authors
//
// This file is part of gg20-driver. The full gg20-driver copyright notice,
// including terms governing use, modification, and redistribution, is
// contained in the file LICENSE at the root of the source code
// distribution tree.

// Package errs carries the five fatal error kinds from spec.md §7 as one
// wrapped error type, in the spirit of the teacher's tss.Error (cause,
// task, round, culprits) but idiomatic for errors.Is/errors.As.
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies why a protocol run aborted.
type Kind int

const (
	// Config is a missing or invalid parameter, caught before any I/O.
	Config Kind = iota
	// Transport is a send or recv failure; the run cannot be resumed.
	Transport
	// Codec is a malformed incoming payload.
	Codec
	// Protocol is the cryptographic state machine rejecting a message or
	// failing to advance.
	Protocol
	// Completion is pick_output returning nothing when the plan requires
	// an artifact; it indicates a round-plan/library mismatch.
	Completion
)

func (k Kind) String() string {
	switch k {
	case Config:
		return "ConfigError"
	case Transport:
		return "TransportError"
	case Codec:
		return "CodecError"
	case Protocol:
		return "ProtocolError"
	case Completion:
		return "CompletionError"
	default:
		return "UnknownError"
	}
}

// Error is the single fatal-error carrier every component returns.
type Error struct {
	Kind  Kind
	Task  string // "keygen" or "signing"
	Round int    // -1 when not applicable
	cause error
}

func (e *Error) Error() string {
	if e.Round >= 0 {
		return fmt.Sprintf("%s: task %s, round %d: %v", e.Kind, e.Task, e.Round, e.cause)
	}
	return fmt.Sprintf("%s: task %s: %v", e.Kind, e.Task, e.cause)
}

func (e *Error) Unwrap() error { return e.cause }

// New wraps cause with a stack trace and classifies it. round < 0 means
// "not round-scoped" (e.g. a ConfigError raised before the protocol
// starts).
func New(kind Kind, task string, round int, cause error) *Error {
	return &Error{Kind: kind, Task: task, Round: round, cause: errors.WithStack(cause)}
}

// As reports whether err is, or wraps, an *Error of the given kind.
func As(err error, kind Kind) (*Error, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return nil, false
	}
	return e, e.Kind == kind
}
