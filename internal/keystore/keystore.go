// Package keystore manages stored identities and the profile glue outside
// the permission map: relay lists and protocol-handler preferences.
package keystore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/org/nostrvault/internal/crypto"
	"github.com/org/nostrvault/internal/profile"
	"github.com/org/nostrvault/internal/storage"
	"github.com/org/nostrvault/pkg/models"
)

// ErrKeyNotFound is returned when no identity record exists for a pubkey.
var ErrKeyNotFound = errors.New("key not found")

// Service stores identity records under the shared identity table and the
// two current-identity pointers, sealing private keys at rest.
type Service struct {
	store    storage.Backend
	profiles *profile.Accessor
	sealKey  []byte
}

// NewService creates a Service. sealKey is the 32-byte store key derived
// from the agent secret.
func NewService(store storage.Backend, profiles *profile.Accessor, sealKey []byte) *Service {
	return &Service{store: store, profiles: profiles, sealKey: sealKey}
}

// Keys returns all stored identity records keyed by public key. An empty
// store yields an empty map, not an error.
func (s *Service) Keys(ctx context.Context) (map[string]models.KeyRecord, error) {
	raw, err := s.store.Get(ctx, storage.KeyIdentities)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return map[string]models.KeyRecord{}, nil
		}
		return nil, err
	}
	keys := map[string]models.KeyRecord{}
	if err := json.Unmarshal(raw, &keys); err != nil {
		return nil, fmt.Errorf("decoding identity records: %w", err)
	}
	return keys, nil
}

// AddKey seals the private key and stores the identity record under its
// public key, overwriting any previous record for the same pubkey.
func (s *Service) AddKey(ctx context.Context, pubkey, name string, privateKey []byte) error {
	keys, err := s.Keys(ctx)
	if err != nil {
		return err
	}
	sealed, err := crypto.Seal(privateKey, s.sealKey)
	if err != nil {
		return fmt.Errorf("sealing private key: %w", err)
	}
	keys[pubkey] = models.KeyRecord{
		Name:      name,
		SealedKey: sealed,
		CreatedAt: time.Now().Unix(),
	}
	return s.saveKeys(ctx, keys)
}

// PrivateKey unseals and returns the identity's private key.
func (s *Service) PrivateKey(ctx context.Context, pubkey string) ([]byte, error) {
	keys, err := s.Keys(ctx)
	if err != nil {
		return nil, err
	}
	rec, ok := keys[pubkey]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, pubkey)
	}
	plaintext, err := crypto.Open(rec.SealedKey, s.sealKey)
	if err != nil {
		return nil, fmt.Errorf("unsealing private key for %s: %w", pubkey, err)
	}
	return plaintext, nil
}

// RemoveKey deletes the identity record and its profile blob. Removing an
// unknown pubkey is a no-op.
func (s *Service) RemoveKey(ctx context.Context, pubkey string) error {
	keys, err := s.Keys(ctx)
	if err != nil {
		return err
	}
	if _, ok := keys[pubkey]; !ok {
		return nil
	}
	delete(keys, pubkey)
	if err := s.saveKeys(ctx, keys); err != nil {
		return err
	}
	return s.profiles.Remove(ctx, pubkey)
}

func (s *Service) saveKeys(ctx context.Context, keys map[string]models.KeyRecord) error {
	raw, err := json.Marshal(keys)
	if err != nil {
		return fmt.Errorf("encoding identity records: %w", err)
	}
	return s.store.Set(ctx, storage.KeyIdentities, raw)
}

// CurrentPubKey returns the active identity's public key, or "" when none
// is selected.
func (s *Service) CurrentPubKey(ctx context.Context) (string, error) {
	return s.getPointer(ctx, storage.KeyCurrentPubKey)
}

// SetCurrentPubKey selects the active identity.
func (s *Service) SetCurrentPubKey(ctx context.Context, pubkey string) error {
	return s.setPointer(ctx, storage.KeyCurrentPubKey, pubkey)
}

// CurrentOptionsPubKey returns the identity selected in the options
// surface, or "" when none is selected.
func (s *Service) CurrentOptionsPubKey(ctx context.Context) (string, error) {
	return s.getPointer(ctx, storage.KeyCurrentOptionsPubKey)
}

// SetCurrentOptionsPubKey selects the options-surface identity.
func (s *Service) SetCurrentOptionsPubKey(ctx context.Context, pubkey string) error {
	return s.setPointer(ctx, storage.KeyCurrentOptionsPubKey, pubkey)
}

func (s *Service) getPointer(ctx context.Context, key string) (string, error) {
	raw, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	var pubkey string
	if err := json.Unmarshal(raw, &pubkey); err != nil {
		return "", fmt.Errorf("decoding %s: %w", key, err)
	}
	return pubkey, nil
}

func (s *Service) setPointer(ctx context.Context, key, pubkey string) error {
	raw, err := json.Marshal(pubkey)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, key, raw)
}

// Relays returns the identity's relay list, creating the profile if absent.
func (s *Service) Relays(ctx context.Context, pubkey string) (map[string]models.RelayPolicy, error) {
	prof, _, err := s.profiles.GetOrCreate(ctx, pubkey)
	if err != nil {
		return nil, err
	}
	return prof.Relays, nil
}

// SaveRelays replaces the identity's relay list. Like permission updates it
// refuses to auto-create a profile and fails with profile.ErrNoProfile for
// an identity that has never been read.
func (s *Service) SaveRelays(ctx context.Context, pubkey string, relays map[string]models.RelayPolicy) error {
	prof, err := s.profiles.Get(ctx, pubkey)
	if err != nil {
		return err
	}
	prof.Relays = relays
	return s.profiles.Save(ctx, pubkey, prof)
}

// SetProtocolHandler records the identity's protocol-handler preference,
// creating the profile if absent.
func (s *Service) SetProtocolHandler(ctx context.Context, pubkey, handler string) error {
	prof, _, err := s.profiles.GetOrCreate(ctx, pubkey)
	if err != nil {
		return err
	}
	prof.ProtocolHandler = handler
	return s.profiles.Save(ctx, pubkey, prof)
}

// ProtocolHandler returns the identity's protocol-handler preference.
func (s *Service) ProtocolHandler(ctx context.Context, pubkey string) (string, error) {
	prof, _, err := s.profiles.GetOrCreate(ctx, pubkey)
	if err != nil {
		return "", err
	}
	return prof.ProtocolHandler, nil
}
