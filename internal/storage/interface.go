package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested key does not exist.
var ErrNotFound = errors.New("not found")

// Well-known storage keys. Every other key is an identity's public key,
// under which that identity's profile blob is stored.
const (
	KeyIdentities           = "keys"
	KeyCurrentPubKey        = "current_pubkey"
	KeyCurrentOptionsPubKey = "current_options_pubkey"
)

// Backend is the key-value persistence interface for the agent. Values are
// opaque JSON blobs with no schema versioning; every Set replaces the whole
// value. Failures propagate unchanged to the caller — no retries happen at
// this layer or above it.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	Close()
}
