// Package client talks to the GophTasks server over its JSON HTTP API and
// bootstraps the CLI's local SQLite database.
//
// HTTP status codes are mapped back onto the sentinel errors in
// internal/common, so callers match failures with errors.Is:
//
//	401 -> common.ErrInvalidCredentials (sign-in) or ErrUnauthorized
//	400 -> *common.ValidationError when the body carries fields
//	404 -> common.ErrorNotFound
//	409 -> common.ErrConflict
//	5xx -> common.ErrorInternal
//
// Transport failures match ErrUnavailable.
package client
