// Package apperror provides structured error handling following RFC 7807 Problem Details.
// All business errors must use AppError for consistent API responses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes following domain-driven design
const (
	// Infrastructure errors (5xx)
	CodeInternal = "INTERNAL_ERROR"
	CodeDatabase = "DATABASE_ERROR"
	CodeTimeout  = "TIMEOUT_ERROR"

	// Validation errors (400)
	CodeValidation   = "VALIDATION_ERROR"
	CodeInvalidInput = "INVALID_INPUT"

	// Business rule violations (422)
	CodeBusinessRule            = "BUSINESS_RULE_VIOLATION"
	CodeMissingBOM              = "MISSING_BOM"
	CodeCyclicPlan              = "CYCLIC_PLAN"
	CodeAlreadyProduced         = "QUANTITY_ALREADY_PRODUCED"
	CodeNoUpdateableProductions = "NO_UPDATEABLE_PRODUCTIONS"
	CodeInvalidProductionState  = "INVALID_PRODUCTION_STATE"
	CodeNoSaleOrigin            = "NO_SALE_ORIGIN"
	CodeAmbiguousOrigin         = "AMBIGUOUS_ORIGIN"
	CodeInvalidSaleState        = "INVALID_SALE_STATE"

	// Pending acknowledgeable warnings (409)
	CodePendingWarning = "PENDING_WARNING"

	// Authorization errors (401, 403)
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"

	// Conflict (409)
	CodeConflict  = "CONFLICT"
	CodeDuplicate = "DUPLICATE_ENTRY"
)

// AppError is the standard error type for the platform.
// It implements error interface and provides structured details for API responses.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (field errors, quantities, etc.)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions for common errors ---

// NewValidation creates a validation error (400)
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFound creates a not found error (404)
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewBusinessRule creates a business rule violation error (422)
func NewBusinessRule(code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewMissingBOM is raised when a cost plan has no root BOM and therefore
// cannot generate any production.
func NewMissingBOM(planID any) *AppError {
	return &AppError{
		Code:       CodeMissingBOM,
		Message:    "Cost plan has no BOM, no production can be created",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"cost_plan_id": planID},
	}
}

// NewCyclicPlan is raised when cost plan BOM lines form a cycle.
func NewCyclicPlan(planID, productID any) *AppError {
	return &AppError{
		Code:       CodeCyclicPlan,
		Message:    "Cost plan BOM lines form a cycle",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"cost_plan_id": planID, "product_id": productID},
	}
}

// NewAlreadyProduced is raised when the requested quantity is below what
// committed productions already cover.
func NewAlreadyProduced() *AppError {
	return &AppError{
		Code:       CodeAlreadyProduced,
		Message:    "The new quantity is lower than the quantity already produced",
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewNoUpdateableProductions is raised when no draft/waiting production can
// absorb a quantity change.
func NewNoUpdateableProductions() *AppError {
	return &AppError{
		Code:       CodeNoUpdateableProductions,
		Message:    "There is no production that can be updated",
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewPendingWarning creates an acknowledgeable warning (409).
// The client may retry the operation after acknowledging the key.
func NewPendingWarning(key, message string) *AppError {
	return &AppError{
		Code:       CodePendingWarning,
		Message:    message,
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"warning_key": key},
	}
}

// NewInternal creates an internal server error (hides details from client)
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewUnauthorized creates an authentication error (401)
func NewUnauthorized(message string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewForbidden creates an authorization error (403)
func NewForbidden(message string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

// NewConflict creates a conflict error (409)
func NewConflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewConcurrentModification is raised when an optimistic lock fails (409)
func NewConcurrentModification(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    fmt.Sprintf("%s was modified concurrently", entity),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewDuplicate creates a duplicate entry error (409)
func NewDuplicate(entity, field, value string) *AppError {
	return &AppError{
		Code:       CodeDuplicate,
		Message:    fmt.Sprintf("%s with this %s already exists", entity, field),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "field": field, "value": value},
	}
}

// --- Helper functions ---

// IsAppError checks if error is AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns appropriate HTTP status for any error
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// IsNotFound checks if error is CodeNotFound
func IsNotFound(err error) bool {
	return HasCode(err, CodeNotFound)
}

// IsPendingWarning checks if error is an acknowledgeable warning.
func IsPendingWarning(err error) bool {
	return HasCode(err, CodePendingWarning)
}

// HasCode checks if error carries the given code.
func HasCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}
