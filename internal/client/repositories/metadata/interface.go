// Package metadata is a small key/value store in the client's local
// database. The CLI keeps its session token here.
package metadata

import "context"

// Well-known keys.
const (
	KeyAuthToken = "authToken"
	KeyLastEmail = "lastEmail"
)

// Repository stores string values by key. Get returns common.ErrorNotFound
// for an unknown key.
type Repository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string]string, error)
	Clear(ctx context.Context) error
}
