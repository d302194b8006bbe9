package shared

import "fmt"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is allows errors.Is matching against sentinel domain errors by code,
// so wrapped errors created with NewDomainErrorf compare equal to their sentinel.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewDomainErrorf creates a new domain error with a formatted message
func NewDomainErrorf(code, format string, args ...interface{}) *DomainError {
	return &DomainError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrValidation          = NewDomainError("VALIDATION_ERROR", "Invalid input provided")
	ErrDuplicateKey        = NewDomainError("DUPLICATE_KEY", "Resource already exists")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden           = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")

	// Stock mutation errors
	ErrInsufficientStock          = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrInsufficientAvailableStock = NewDomainError("INSUFFICIENT_AVAILABLE_STOCK", "Insufficient available stock to reserve")
	ErrInsufficientReservedStock  = NewDomainError("INSUFFICIENT_RESERVED_STOCK", "Insufficient reserved stock")

	// Purchase order workflow errors
	ErrInvalidTransition        = NewDomainError("INVALID_TRANSITION", "Invalid purchase order status transition")
	ErrManualReceivedNotAllowed = NewDomainError("MANUAL_RECEIVED_NOT_ALLOWED", "Status cannot be manually set to received; it is set automatically when all lines are received")
	ErrReceiptBeforeSend        = NewDomainError("RECEIPT_BEFORE_SEND", "Cannot record a receipt for a purchase order in draft status")
	ErrOverReceipt              = NewDomainError("OVER_RECEIPT", "Cannot receive more than ordered")
)
