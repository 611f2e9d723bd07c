package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrProductNotFound is returned when a product is not found.
	ErrProductNotFound = errors.New("product not found")
	// ErrPurchaseNotFound is returned when a purchase is not found.
	ErrPurchaseNotFound = errors.New("purchase not found")
	// ErrEmailAlreadyExists is returned when registering an email that is taken.
	ErrEmailAlreadyExists = errors.New("email already exists")
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidToken is returned for malformed, expired or revoked tokens.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrUserNotVerified is returned when an unverified account tries to log in.
	ErrUserNotVerified = errors.New("user is not verified")
	// ErrInsufficientStock is returned when quantity exceeds remaining stock.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInvalidQuantity is returned when quantity is zero or negative.
	ErrInvalidQuantity = errors.New("invalid quantity")
	// ErrInvalidPrice is returned when a product price is negative.
	ErrInvalidPrice = errors.New("invalid price")
	// ErrPasswordMismatch is returned when new password and confirmation differ.
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrInvalidAmount is returned when a monetary amount is negative or unparsable.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrMaxAmountExceeded is returned when a purchase would push the balance
	// over the user's credit ceiling.
	ErrMaxAmountExceeded = errors.New("purchase exceeds max amount")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Infrastructure
// failures fall through to a generic 500 so internals never leak.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrProductNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "PRODUCT_NOT_FOUND")
	case errors.Is(err, ErrPurchaseNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "PURCHASE_NOT_FOUND")
	case errors.Is(err, ErrEmailAlreadyExists):
		return NewHTTPError(http.StatusConflict, err.Error(), "EMAIL_ALREADY_EXISTS")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrInvalidToken):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_TOKEN")
	case errors.Is(err, ErrUserNotVerified):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "USER_NOT_VERIFIED")
	case errors.Is(err, ErrInsufficientStock):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INSUFFICIENT_STOCK")
	case errors.Is(err, ErrInvalidQuantity):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_QUANTITY")
	case errors.Is(err, ErrInvalidPrice):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_PRICE")
	case errors.Is(err, ErrPasswordMismatch):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "PASSWORD_MISMATCH")
	case errors.Is(err, ErrInvalidAmount):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_AMOUNT")
	case errors.Is(err, ErrMaxAmountExceeded):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "MAX_AMOUNT_EXCEEDED")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
