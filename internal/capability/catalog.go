package capability

// Capability identifiers requestable by external sites. The numeric levels
// attached to them below are a fixed contract shared with every consumer of
// this agent.
const (
	GetPublicKey = "getPublicKey"
	GetRelays    = "getRelays"
	SignEvent    = "signEvent"
	NIP04Encrypt = "nip04.encrypt"
	NIP04Decrypt = "nip04.decrypt"

	// ReplaceURL requires no level at all. It is always permitted and never
	// subject to the authorization scale.
	ReplaceURL = "replaceURL"
)

// tier groups the capabilities unlocked at one minimum level.
type tier struct {
	Level        int
	Capabilities []string
}

// catalog is sorted ascending by level. AllowedCapabilities breaks out of
// its walk at the first tier above the queried level, which is only valid
// while this ordering holds.
var catalog = []tier{
	{1, []string{GetPublicKey}},
	{5, []string{GetRelays}},
	{10, []string{SignEvent}},
	{20, []string{NIP04Encrypt, NIP04Decrypt}},
}

// names maps capability identifiers to their display descriptions.
var names = map[string]string{
	GetPublicKey: "read your public key",
	GetRelays:    "read your list of preferred relays",
	SignEvent:    "sign events using your private key",
	NIP04Encrypt: "encrypt messages to peers",
	NIP04Decrypt: "decrypt messages from peers",
	ReplaceURL:   "replace displayed URL",
}

// Describe returns the display description for a capability identifier, or
// the empty string for an unknown one.
func Describe(id string) string {
	return names[id]
}
