package dto

import (
	"net/http"
	"strings"
)

// Transport error codes, produced by the HTTP layer itself.
// Format: ERR_<CATEGORY>
const (
	ErrCodeInternal     = "ERR_INTERNAL"
	ErrCodeValidation   = "ERR_VALIDATION"
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
	ErrCodeInvalidID    = "ERR_INVALID_ID"
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
	ErrCodeNotFound     = "ERR_NOT_FOUND"
	ErrCodeRateLimited  = "ERR_RATE_LIMITED"
	ErrCodeBodyTooLarge = "ERR_BODY_TOO_LARGE"
)

// Domain error codes with a fixed status. Codes outside this table are
// resolved by prefix in GetHTTPStatus.
const (
	CodeNotFound            = "NOT_FOUND"
	CodeInvalidInput        = "INVALID_INPUT"
	CodeInvalidState        = "INVALID_STATE"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	CodeInsufficientStock   = "INSUFFICIENT_STOCK"
	CodeNetwork             = "NETWORK_ERROR"
)

// ErrorCodeHTTPStatus maps exact error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
	ErrCodeInvalidID:    http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeRateLimited:  http.StatusTooManyRequests,
	ErrCodeBodyTooLarge: http.StatusRequestEntityTooLarge,

	CodeNotFound:            http.StatusNotFound,
	CodeInvalidInput:        http.StatusBadRequest,
	CodeInvalidState:        http.StatusUnprocessableEntity,
	CodeUnauthorized:        http.StatusUnauthorized,
	CodeConcurrencyConflict: http.StatusConflict,
	CodeInsufficientStock:   http.StatusUnprocessableEntity,
	CodeNetwork:             http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status for an error code.
//
//	INVALID_*  -> 400 (field validation, dangling references)
//	ALREADY_*  -> 409 (duplicates, repeated transitions)
//	*_ERR_*    -> 500
//	other domain codes -> 422 (business rule)
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	switch {
	case strings.HasPrefix(code, "ERR_"):
		return http.StatusInternalServerError
	case strings.HasPrefix(code, "INVALID_"):
		return http.StatusBadRequest
	case strings.HasPrefix(code, "ALREADY_"):
		return http.StatusConflict
	case code == "":
		return http.StatusInternalServerError
	}
	return http.StatusUnprocessableEntity
}
