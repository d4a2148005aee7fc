// Package apperr carries the domain error taxonomy as a single tagged
// error type instead of an exception hierarchy. Handlers switch on Kind to
// pick the HTTP status; services attach kind-specific payload fields.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation           Kind = "validation"
	KindForeignKey           Kind = "foreign_key"
	KindReferentialIntegrity Kind = "referential_integrity"
	KindBusinessLogic        Kind = "business_logic"
	KindNotFound             Kind = "not_found"
	KindAlreadyExists        Kind = "already_exists"
	KindInternal             Kind = "internal"
)

type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`

	// Validation / foreign key payload
	Field string `json:"field,omitempty"`
	Value string `json:"value,omitempty"`

	// Referential integrity payload
	EntityType     string `json:"entity_type,omitempty"`
	EntityID       string `json:"entity_id,omitempty"`
	DependentCount int    `json:"dependent_count,omitempty"`

	// Wrapped cause, set for KindInternal
	Err error `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(field, format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: fmt.Sprintf(format, args...)}
}

// ForeignKey reports a reference that does not resolve to an existing row.
func ForeignKey(field, value, format string, args ...interface{}) *Error {
	return &Error{Kind: KindForeignKey, Field: field, Value: value, Message: fmt.Sprintf(format, args...)}
}

// ReferentialIntegrity reports a destructive operation blocked by
// existing dependents.
func ReferentialIntegrity(entityType, entityID string, dependentCount int, format string, args ...interface{}) *Error {
	return &Error{
		Kind:           KindReferentialIntegrity,
		EntityType:     entityType,
		EntityID:       entityID,
		DependentCount: dependentCount,
		Message:        fmt.Sprintf(format, args...),
	}
}

func BusinessLogic(format string, args ...interface{}) *Error {
	return &Error{Kind: KindBusinessLogic, Message: fmt.Sprintf(format, args...)}
}

func NotFound(entityType, entityID string) *Error {
	return &Error{
		Kind:       KindNotFound,
		EntityType: entityType,
		EntityID:   entityID,
		Message:    fmt.Sprintf("%s %s not found", entityType, entityID),
	}
}

func AlreadyExists(field, value string) *Error {
	return &Error{
		Kind:    KindAlreadyExists,
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf("%s %s already exists", field, value),
	}
}

// Internal wraps an unexpected storage-layer failure.
func Internal(err error, format string, args ...interface{}) *Error {
	return &Error{Kind: KindInternal, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the Kind from any error in the chain. Unrecognized
// errors report KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

func IsNotFound(err error) bool {
	return IsKind(err, KindNotFound)
}
