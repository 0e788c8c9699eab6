package models

import (
	"errors"
	"fmt"
)

// Error kinds shared by the lifecycle and query paths. Callers match them with errors.Is;
// the concrete error carries the detail.
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrShipmentNotFound = errors.New("shipment not found")
	ErrPersistence      = errors.New("persistence failure")
	ErrLedgerWrite      = errors.New("ledger write failure")
	ErrNotification     = errors.New("notification failure")
)

// ValidationError is a rejected request. Its message is safe to show to the caller.
type ValidationError struct {
	Msg string
}

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }
