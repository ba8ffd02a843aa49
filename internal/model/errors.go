package model

import (
	"errors"
	"fmt"
)

// ErrValidation is wrapped by every input validation error.
// Validation errors are raised before any call to a collaborator.
var ErrValidation = errors.New("validation failed")

// Validation errors
var (
	ErrUsernameRequired    = fmt.Errorf("%w: username is required", ErrValidation)
	ErrUsernameTooLong     = fmt.Errorf("%w: username too long", ErrValidation)
	ErrInvalidText         = fmt.Errorf("%w: text must be valid UTF-8 without NUL bytes", ErrValidation)
	ErrContentRequired     = fmt.Errorf("%w: content is required", ErrValidation)
	ErrContentTooLong      = fmt.Errorf("%w: content too long", ErrValidation)
	ErrIdentityRequired    = fmt.Errorf("%w: display name is required", ErrValidation)
	ErrInvalidPage         = fmt.Errorf("%w: page must be >= 1", ErrValidation)
	ErrInvalidSort         = fmt.Errorf("%w: invalid sort", ErrValidation)
	ErrInvalidFilter       = fmt.Errorf("%w: invalid filter", ErrValidation)
	ErrInvalidID           = fmt.Errorf("%w: invalid id", ErrValidation)
	ErrFileNameRequired    = fmt.Errorf("%w: file name is required", ErrValidation)
	ErrFileTooLarge        = fmt.Errorf("%w: file too large", ErrValidation)
	ErrUnsupportedFileType = fmt.Errorf("%w: unsupported file type", ErrValidation)
	ErrInvalidAttachment   = fmt.Errorf("%w: attachment does not match an upload", ErrValidation)
)

// Lookup errors
var (
	ErrMessageNotFound = errors.New("message not found")
	ErrReplyNotFound   = errors.New("reply not found")
)

// Store failure kinds, matched with errors.Is against a *StoreError.
var (
	ErrQuery       = errors.New("query failed")
	ErrPersistence = errors.New("persistence failed")
)

// FailureCause narrows down why the persistence collaborator failed.
type FailureCause int

const (
	CauseUnknown FailureCause = iota
	CauseRelationMissing
	CausePermissionDenied
	CauseConnection
)

func (c FailureCause) String() string {
	switch c {
	case CauseRelationMissing:
		return "relation_missing"
	case CausePermissionDenied:
		return "permission_denied"
	case CauseConnection:
		return "connection"
	}
	return "unknown"
}

// StoreError reports a failed read (Kind == ErrQuery) or write (Kind == ErrPersistence).
type StoreError struct {
	Kind  error
	Op    string
	Cause FailureCause
	Err   error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v (%s): %v", e.Op, e.Kind, e.Cause, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool {
	return target == e.Kind
}

// NewQueryError wraps a failed read.
func NewQueryError(op string, cause FailureCause, err error) *StoreError {
	return &StoreError{Kind: ErrQuery, Op: op, Cause: cause, Err: err}
}

// NewPersistenceError wraps a failed write.
func NewPersistenceError(op string, cause FailureCause, err error) *StoreError {
	return &StoreError{Kind: ErrPersistence, Op: op, Cause: cause, Err: err}
}

// CauseOf returns the failure cause carried by err, or CauseUnknown.
func CauseOf(err error) FailureCause {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Cause
	}
	return CauseUnknown
}
