// Package profile persists per-identity profile records: the permission
// map, relay list and protocol-handler preference stored under an
// identity's public key.
package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/org/nostrvault/internal/storage"
	"github.com/org/nostrvault/pkg/models"
)

// ErrNoProfile is returned by Get when an identity has no profile record.
// Write paths that refuse to auto-create (permission updates, relay saves)
// surface it to their callers.
var ErrNoProfile = errors.New("no profile for identity")

// Accessor reads and writes profile blobs through the storage backend.
type Accessor struct {
	store storage.Backend
}

// NewAccessor creates an Accessor backed by the given storage.
func NewAccessor(store storage.Backend) *Accessor {
	return &Accessor{store: store}
}

// GetOrCreate returns the profile stored under the identity's public key.
// When no record exists, a fresh default is persisted before returning so
// that subsequent reads are idempotent; created reports whether this call
// did so.
func (a *Accessor) GetOrCreate(ctx context.Context, pubkey string) (prof *models.Profile, created bool, err error) {
	prof, err = a.Get(ctx, pubkey)
	if err == nil {
		return prof, false, nil
	}
	if !errors.Is(err, ErrNoProfile) {
		return nil, false, err
	}
	prof = models.NewProfile()
	if err := a.Save(ctx, pubkey, prof); err != nil {
		return nil, false, err
	}
	return prof, true, nil
}

// Get returns the stored profile without creating one. Absence is reported
// as ErrNoProfile wrapping the identity's public key.
func (a *Accessor) Get(ctx context.Context, pubkey string) (*models.Profile, error) {
	raw, err := a.store.Get(ctx, pubkey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w %s", ErrNoProfile, pubkey)
		}
		return nil, err
	}
	prof := &models.Profile{}
	if err := json.Unmarshal(raw, prof); err != nil {
		return nil, fmt.Errorf("decoding profile for %s: %w", pubkey, err)
	}
	if prof.Permissions == nil {
		prof.Permissions = map[string]models.Grant{}
	}
	if prof.Relays == nil {
		prof.Relays = map[string]models.RelayPolicy{}
	}
	return prof, nil
}

// Save replaces the identity's whole profile blob. There are no
// partial-field updates.
func (a *Accessor) Save(ctx context.Context, pubkey string, prof *models.Profile) error {
	raw, err := json.Marshal(prof)
	if err != nil {
		return fmt.Errorf("encoding profile for %s: %w", pubkey, err)
	}
	return a.store.Set(ctx, pubkey, raw)
}

// Remove deletes the identity's profile record.
func (a *Accessor) Remove(ctx context.Context, pubkey string) error {
	return a.store.Remove(ctx, pubkey)
}
