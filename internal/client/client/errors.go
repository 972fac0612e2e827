package client

import "github.com/dmitrijs2005/gophtasks/internal/common"

var (
	ErrUnavailable  = common.ErrUnavailable
	ErrUnauthorized = common.ErrInvalidToken
)

// APIError is a non-2xx response. Message is the server's "error" field.
type APIError struct {
	Status  int
	Message string
	kind    error
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return e.kind.Error()
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.kind
}
