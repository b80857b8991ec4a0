// Package permission implements the per-identity, per-host grant store and
// its lazy expiry policy.
package permission

import (
	"context"
	"time"

	"github.com/org/nostrvault/internal/audit"
	"github.com/org/nostrvault/internal/profile"
	"github.com/org/nostrvault/pkg/models"
)

// ExpiryWindow is how long an expirable grant stays valid after its
// created_at timestamp.
const ExpiryWindow = 300 * time.Second

// Store reads and mutates permission grants through the profile accessor.
type Store struct {
	profiles *profile.Accessor
	auditor  *audit.Logger
}

// NewStore creates a Store.
func NewStore(profiles *profile.Accessor, auditor *audit.Logger) *Store {
	return &Store{profiles: profiles, auditor: auditor}
}

// Read returns the identity's host→grant map, evicting every expirable
// grant older than ExpiryWindow. Expiry is read-triggered only: an expired
// grant stays in storage until the next Read for its identity, and the
// pruned profile is persisted before returning.
func (s *Store) Read(ctx context.Context, pubkey string) (map[string]models.Grant, error) {
	prof, _, err := s.profiles.GetOrCreate(ctx, pubkey)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().Unix() - int64(ExpiryWindow/time.Second)
	pruned := false
	for host, g := range prof.Permissions {
		if g.Condition == models.ConditionExpirable && g.CreatedAt < cutoff {
			delete(prof.Permissions, host)
			s.auditor.GrantExpired(pubkey, host, g)
			pruned = true
		}
	}
	if pruned {
		if err := s.profiles.Save(ctx, pubkey, prof); err != nil {
			return nil, err
		}
	}
	return prof.Permissions, nil
}

// Level returns the granted level for host. A missing grant is level 0,
// not an error.
func (s *Store) Level(ctx context.Context, pubkey, host string) (int, error) {
	perms, err := s.Read(ctx, pubkey)
	if err != nil {
		return 0, err
	}
	return perms[host].Level, nil
}

// Update writes or overwrites the (identity, host) grant, stamping
// created_at with the current time. It does not auto-create a profile:
// callers must have read the identity's permissions at least once, and an
// update against an unknown identity fails with profile.ErrNoProfile.
func (s *Store) Update(ctx context.Context, pubkey, host string, pol models.PermissionPolicy) error {
	prof, err := s.profiles.Get(ctx, pubkey)
	if err != nil {
		return err
	}
	grant := models.Grant{
		Level:     pol.Level,
		Condition: pol.Condition,
		CreatedAt: time.Now().Unix(),
	}
	prof.Permissions[host] = grant
	if err := s.profiles.Save(ctx, pubkey, prof); err != nil {
		return err
	}
	s.auditor.GrantWritten(pubkey, host, grant)
	return nil
}

// Remove deletes the (identity, host) grant and persists. Removing an
// absent grant is a no-op, not an error.
func (s *Store) Remove(ctx context.Context, pubkey, host string) error {
	prof, _, err := s.profiles.GetOrCreate(ctx, pubkey)
	if err != nil {
		return err
	}
	delete(prof.Permissions, host)
	if err := s.profiles.Save(ctx, pubkey, prof); err != nil {
		return err
	}
	s.auditor.GrantRevoked(pubkey, host)
	return nil
}
