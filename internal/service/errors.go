package service

import (
	"errors"
	"fmt"

	"go-inventory-ledger/pkg/validator"

	"github.com/google/uuid"
)

// ValidationError rejects malformed input before anything is written.
type ValidationError struct {
	Field   string
	Message string
	Details []*validator.ErrorResponse
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConflictError reports a product name already taken by another product.
type ConflictError struct {
	Name string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("product with name %q already exists", e.Name)
}

// NotFoundError reports a missing operation target.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// SecondaryWriteFailure is a ledger append or history cascade that failed
// after the product write already succeeded. It is logged and counted, never
// returned to callers of the catalog operations.
type SecondaryWriteFailure struct {
	Operation string
	ProductID uuid.UUID
	Err       error
}

func (e *SecondaryWriteFailure) Error() string {
	return fmt.Sprintf("%s for product %s: %v", e.Operation, e.ProductID, e.Err)
}

func (e *SecondaryWriteFailure) Unwrap() error { return e.Err }

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
