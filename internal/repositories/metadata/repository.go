// Package metadata stores vault-level key/value settings such as the
// password salt and verifier.
package metadata

import "context"

// Well-known keys.
const (
	KeySalt     = "salt"
	KeyVerifier = "verifier"
)

type Repository interface {
	// Get returns (nil, nil) when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
}
