package apierror

import (
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
)

type ErrorCode string

const (
	ErrNotFound       ErrorCode = "NOT_FOUND"
	ErrConflict       ErrorCode = "CONFLICT"
	ErrBadRequest     ErrorCode = "BAD_REQUEST"
	ErrInvalidInput   ErrorCode = "INVALID_INPUT"
	ErrInternalServer ErrorCode = "INTERNAL_SERVER_ERROR"

	// Ledger posting failures. All of these are raised before any balance
	// mutation happens, so a caller seeing one can assume no side effects.
	ErrImbalancedEntries ErrorCode = "IMBALANCED_ENTRIES"
	ErrUnknownAccount    ErrorCode = "UNKNOWN_ACCOUNT"
	ErrEmptyTransaction  ErrorCode = "EMPTY_TRANSACTION"
	ErrAlreadyPosted     ErrorCode = "ALREADY_POSTED"
	ErrAlreadyReversed   ErrorCode = "ALREADY_REVERSED"
)

type APIError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (e APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAPIError(code ErrorCode, message string, details interface{}) APIError {
	logrus.Error(details)
	return APIError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// CodeOf extracts the error code from an error, returning ErrInternalServer
// for anything that is not an APIError.
func CodeOf(err error) ErrorCode {
	if apiErr, ok := err.(APIError); ok {
		return apiErr.Code
	}
	return ErrInternalServer
}

func MapErrorToHTTPStatus(err error) int {
	if apiErr, ok := err.(APIError); ok {
		switch apiErr.Code {
		case ErrNotFound, ErrUnknownAccount:
			return http.StatusNotFound
		case ErrConflict, ErrAlreadyPosted, ErrAlreadyReversed:
			return http.StatusConflict
		case ErrInvalidInput, ErrBadRequest, ErrImbalancedEntries, ErrEmptyTransaction:
			return http.StatusBadRequest
		case ErrInternalServer:
			return http.StatusInternalServerError
		default:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}
