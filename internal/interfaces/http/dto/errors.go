package dto

import "net/http"

// Error codes exposed by the API. Domain errors carry the same codes, so
// handlers can map them to HTTP statuses without translation.

// General error codes
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "INVALID_INPUT"
	// ErrCodeEmptyCart is used when a checkout carries no items
	ErrCodeEmptyCart = "EMPTY_CART"
	// ErrCodeInvalidQuantity is used when a cart line quantity is not positive
	ErrCodeInvalidQuantity = "INVALID_QUANTITY"
	// ErrCodeInvalidProduct is used when a cart line references no product
	ErrCodeInvalidProduct = "INVALID_PRODUCT"
	// ErrCodeInvalidUser is used when an order is created without an owner
	ErrCodeInvalidUser = "INVALID_USER"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "UNAUTHORIZED"
	// ErrCodeTokenExpired is used when the auth token has expired
	ErrCodeTokenExpired = "TOKEN_EXPIRED"
	// ErrCodeInvalidToken is used when the auth token is invalid
	ErrCodeInvalidToken = "INVALID_TOKEN"
	// ErrCodeForbidden is used when the user lacks permission
	ErrCodeForbidden = "FORBIDDEN"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeProductUnavailable is used when a checkout references a product
	// that does not exist or is not for sale
	ErrCodeProductUnavailable = "PRODUCT_UNAVAILABLE"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "INVALID_STATE"
	// ErrCodeInsufficientStock is used when stock cannot cover the requested quantity
	ErrCodeInsufficientStock = "INSUFFICIENT_STOCK"
	// ErrCodeInvalidTransition is used when an order status change is not allowed
	ErrCodeInvalidTransition = "INVALID_TRANSITION"
	// ErrCodeDeliveryNotDue is used when an order is marked delivered before its window elapsed
	ErrCodeDeliveryNotDue = "DELIVERY_NOT_DUE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeInternal: http.StatusInternalServerError,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:       http.StatusBadRequest,
	ErrCodeInvalidInput:     http.StatusBadRequest,
	ErrCodeEmptyCart:        http.StatusBadRequest,
	ErrCodeInvalidQuantity:  http.StatusBadRequest,
	ErrCodeInvalidProduct:   http.StatusBadRequest,
	ErrCodeInvalidUser:      http.StatusBadRequest,
	"INVALID_PRODUCT_NAME":  http.StatusBadRequest,
	"INVALID_PRICE":         http.StatusBadRequest,
	"INVALID_STOCK":         http.StatusBadRequest,
	"INVALID_IMAGE_URL":     http.StatusBadRequest,
	"INVALID_DELIVERY_DATE": http.StatusBadRequest,

	// Auth errors
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeInvalidToken: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeProductUnavailable:  http.StatusNotFound,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:      http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock: http.StatusUnprocessableEntity,
	ErrCodeInvalidTransition: http.StatusUnprocessableEntity,
	ErrCodeDeliveryNotDue:    http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
