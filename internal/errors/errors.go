// Package errors provides custom error types for the moneta API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
)

// Reference data errors.
var (
	ErrAccountNotFound  = &AppError{Code: "ACCOUNT_NOT_FOUND", Message: "Account not found", StatusCode: http.StatusNotFound}
	ErrCategoryNotFound = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found", StatusCode: http.StatusNotFound}
	ErrPersonNotFound   = &AppError{Code: "PERSON_NOT_FOUND", Message: "Person not found", StatusCode: http.StatusNotFound}
	ErrShopNotFound     = &AppError{Code: "SHOP_NOT_FOUND", Message: "Shop not found", StatusCode: http.StatusNotFound}
)

// Transaction and refund-chain errors.
var (
	ErrTransactionNotFound    = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrInvalidTransactionType = &AppError{Code: "INVALID_TRANSACTION_TYPE", Message: "Unsupported transaction type", StatusCode: http.StatusBadRequest}
	ErrTransactionVoid        = &AppError{Code: "TRANSACTION_VOID", Message: "Transaction is void", StatusCode: http.StatusBadRequest}

	// Guard violations: edits and voids are blocked while other non-void
	// transactions still reference the target through the refund chain.
	ErrHasActiveChildren = &AppError{Code: "HAS_ACTIVE_CHILDREN", Message: "Transaction has active linked transactions; void them first", StatusCode: http.StatusConflict}
	ErrHasLinkedChildren = &AppError{Code: "HAS_LINKED_CHILDREN", Message: "Transaction has linked transactions and cannot be edited", StatusCode: http.StatusConflict}

	ErrNoCategoryLine   = &AppError{Code: "NO_CATEGORY_LINE", Message: "Transaction has no refundable category line", StatusCode: http.StatusBadRequest}
	ErrZeroRefundAmount = &AppError{Code: "ZERO_REFUND_AMOUNT", Message: "Refund amount resolves to zero", StatusCode: http.StatusBadRequest}
	ErrNoPendingLine    = &AppError{Code: "NO_PENDING_LINE", Message: "Transaction is not an open refund request", StatusCode: http.StatusBadRequest}
)

// System configuration errors.
var (
	ErrSystemCategoryMissing = &AppError{Code: "SYSTEM_CATEGORY_MISSING", Message: "A required system category is not configured", StatusCode: http.StatusInternalServerError}
)
