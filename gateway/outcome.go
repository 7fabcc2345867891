package gateway

import (
	"errors"
	"fmt"

	"github.com/richinex/sociomind/model"
)

// OutcomeKind tags how a live invocation ended.
type OutcomeKind int

const (
	// Success carries a validated payload.
	Success OutcomeKind = iota
	// StructuralFailure means the backend answered but the output did not fit the shape.
	StructuralFailure
	// CredentialFailure means the key was rejected, expired or out of quota.
	CredentialFailure
	// TransientFailure covers network faults, timeouts and anything unclassified.
	TransientFailure
)

// String returns the journal name of the kind.
func (k OutcomeKind) String() string {
	switch k {
	case Success:
		return "success"
	case StructuralFailure:
		return "structural_failure"
	case CredentialFailure:
		return "credential_failure"
	case TransientFailure:
		return "transient_failure"
	default:
		return "unknown"
	}
}

// Outcome is the tagged result of one live invocation. Value is meaningful
// only for Success; Raw holds the backend text when there was any.
type Outcome[T any] struct {
	Kind  OutcomeKind
	Value T
	Raw   string
	Err   error
}

func succeeded[T any](value T, raw string) Outcome[T] {
	return Outcome[T]{Kind: Success, Value: value, Raw: raw}
}

func malformed[T any](raw string, err error) Outcome[T] {
	return Outcome[T]{Kind: StructuralFailure, Raw: raw, Err: err}
}

func faulted[T any](kind OutcomeKind, err error) Outcome[T] {
	return Outcome[T]{Kind: kind, Err: err}
}

// GenerationError is returned to callers when an operation cannot produce a
// payload. Kind is CredentialFailure or TransientFailure.
type GenerationError struct {
	Op   model.OperationKind
	Kind OutcomeKind
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// IsCredentialFailure reports whether err is a GenerationError caused by a
// rejected or exhausted credential.
func IsCredentialFailure(err error) bool {
	var gerr *GenerationError
	return errors.As(err, &gerr) && gerr.Kind == CredentialFailure
}

// IsTransientFailure reports whether err is a GenerationError caused by a
// network fault or an unclassified backend error.
func IsTransientFailure(err error) bool {
	var gerr *GenerationError
	return errors.As(err, &gerr) && gerr.Kind == TransientFailure
}
