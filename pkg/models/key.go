package models

// KeyRecord is one stored identity, keyed by its public key in the shared
// identity table. The private key is sealed at rest (AES-256-GCM,
// nonce-prefixed) under the agent's store key.
type KeyRecord struct {
	Name      string `json:"name"`
	SealedKey []byte `json:"private_key"`
	CreatedAt int64  `json:"created_at"` // unix seconds
}
