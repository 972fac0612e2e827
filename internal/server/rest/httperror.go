package rest

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophtasks/internal/common"
)

const (
	msgBadRequest         = "bad request"
	msgValidation         = "validation failed"
	msgInvalidCredentials = "invalid email or password"
	msgUnauthorized       = "unauthorized"
	msgNotFound           = "not found"
	msgConflict           = "already exists"
	msgInternal           = "internal server error"
)

// HTTPError is an error with a status code and a message that is safe to
// show to the client. The cause is only ever logged.
type HTTPError struct {
	cause   error
	Code    int
	Message string
	Fields  map[string]string
}

func (he *HTTPError) Error() string {
	return he.Message
}

func (he *HTTPError) Unwrap() error {
	return he.cause
}

func NewHTTPError(code int, message string, cause error) *HTTPError {
	return &HTTPError{cause: cause, Code: code, Message: message}
}

func ErrBadRequest(message string, cause error) *HTTPError {
	if message == "" {
		message = msgBadRequest
	}
	return NewHTTPError(http.StatusBadRequest, message, cause)
}

func ErrUnauthorized(cause error) *HTTPError {
	return NewHTTPError(http.StatusUnauthorized, msgUnauthorized, cause)
}

// FromError maps service errors onto HTTP statuses. Unknown errors become a
// 500 with a generic message.
func FromError(err error) *HTTPError {
	var he *HTTPError
	if errors.As(err, &he) {
		return he
	}

	var ve *common.ValidationError
	switch {
	case errors.As(err, &ve):
		return &HTTPError{cause: err, Code: http.StatusBadRequest, Message: msgValidation, Fields: ve.Fields}
	case errors.Is(err, common.ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, msgInvalidCredentials, err)
	case errors.Is(err, common.ErrInvalidToken):
		return NewHTTPError(http.StatusUnauthorized, msgUnauthorized, err)
	case errors.Is(err, common.ErrorNotFound):
		return NewHTTPError(http.StatusNotFound, msgNotFound, err)
	case errors.Is(err, common.ErrConflict):
		return NewHTTPError(http.StatusConflict, msgConflict, err)
	default:
		return NewHTTPError(http.StatusInternalServerError, msgInternal, err)
	}
}
