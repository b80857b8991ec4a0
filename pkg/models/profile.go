package models

// Grant conditions. An expirable grant is evicted lazily once it is older
// than the permission store's expiry window; a permanent grant survives
// until explicitly revoked.
const (
	ConditionExpirable = "expirable"
	ConditionPermanent = "permanent"
)

// Grant records one requesting host's authorization for an identity.
// At most one grant exists per (identity, host) pair; a later grant
// overwrites the earlier one and refreshes CreatedAt.
type Grant struct {
	Level     int    `json:"level"`
	Condition string `json:"condition"`
	CreatedAt int64  `json:"created_at"` // unix seconds
}

// PermissionPolicy is the caller-supplied part of a grant. The permission
// store stamps CreatedAt itself when the grant is written.
type PermissionPolicy struct {
	Level     int    `json:"level"`
	Condition string `json:"condition"`
}

// RelayPolicy marks how an identity uses one relay.
type RelayPolicy struct {
	Read  bool `json:"read"`
	Write bool `json:"write"`
}

// Profile is the per-identity container, stored under the identity's
// public key. It is owned exclusively by that identity and every save
// replaces the whole value.
type Profile struct {
	Permissions     map[string]Grant       `json:"permissions"`       // host → grant
	Relays          map[string]RelayPolicy `json:"relays"`            // url → policy
	ProtocolHandler string                 `json:"protocol_handler"`
}

// NewProfile returns an empty profile with initialized maps.
func NewProfile() *Profile {
	return &Profile{
		Permissions: map[string]Grant{},
		Relays:      map[string]RelayPolicy{},
	}
}
