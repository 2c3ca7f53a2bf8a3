package service

import (
	"errors"
	"fmt"
)

// Common service errors
var (
	// ErrPermissionDenied is returned when a user doesn't have permission for an action
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when there's a conflict (e.g., duplicate)
	ErrConflict = errors.New("resource conflict")

	// ErrUnauthorized is returned when user is not authenticated
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUserNotFound is returned when a user is not found
	ErrUserNotFound = errors.New("user not found")

	// ErrClinicNotFound is returned when a clinic is not found
	ErrClinicNotFound = errors.New("clinic not found")

	// ErrWarehouseNotFound is returned when a warehouse is not found
	ErrWarehouseNotFound = errors.New("warehouse not found")

	// ErrProductNotFound is returned when an order line references a missing product
	ErrProductNotFound = errors.New("product not found")

	// ErrInvalidRole is returned when an invalid role is provided
	ErrInvalidRole = errors.New("invalid role")

	// ErrInvalidVisitType is returned when an invalid visit type is provided
	ErrInvalidVisitType = errors.New("invalid visit type")
)

// DebtWarningRequiredError is the recoverable rejection raised when an order
// hits the debt warning threshold without acknowledgment. It is not a
// terminal failure: the caller is expected to resubmit the same request with
// debtWarningAcknowledged set.
type DebtWarningRequiredError struct {
	DebtAmount float64
}

func (e *DebtWarningRequiredError) Error() string {
	return fmt.Sprintf("clinic has outstanding debt of %.2f, acknowledgment required", e.DebtAmount)
}

// AsDebtWarningRequired unwraps err into a DebtWarningRequiredError if it is one
func AsDebtWarningRequired(err error) (*DebtWarningRequiredError, bool) {
	var dw *DebtWarningRequiredError
	if errors.As(err, &dw) {
		return dw, true
	}
	return nil, false
}
