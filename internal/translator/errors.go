package translator

import (
	"errors"
	"fmt"
)

// FailureClass tags a chunk translation failure as retryable or not.
// The executor branches on the tag, not on the error's concrete type.
type FailureClass int

const (
	// ClassTransient marks failures worth retrying: rate limits,
	// timeouts, server-side errors, an open circuit breaker.
	ClassTransient FailureClass = iota
	// ClassPermanent marks failures a retry cannot fix: empty or
	// malformed responses, client-side request errors.
	ClassPermanent
)

func (c FailureClass) String() string {
	if c == ClassTransient {
		return "transient"
	}
	return "permanent"
}

// ChunkError is a classified chunk translation failure.
type ChunkError struct {
	Class FailureClass
	Err   error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("%s translation failure: %v", e.Class, e.Err)
}

func (e *ChunkError) Unwrap() error { return e.Err }

// NewTransient wraps err as a retryable chunk failure.
func NewTransient(err error) error {
	return &ChunkError{Class: ClassTransient, Err: err}
}

// NewPermanent wraps err as a non-retryable chunk failure.
func NewPermanent(err error) error {
	return &ChunkError{Class: ClassPermanent, Err: err}
}

// IsTransient reports whether err is a retryable chunk failure.
// Unclassified errors are treated as permanent.
func IsTransient(err error) bool {
	var ce *ChunkError
	if errors.As(err, &ce) {
		return ce.Class == ClassTransient
	}
	return false
}
