package capability

import (
	"reflect"
	"testing"
)

func TestAllowedCapabilitiesNothing(t *testing.T) {
	got := AllowedCapabilities(0)
	if !reflect.DeepEqual(got, []string{Nothing}) {
		t.Errorf("level 0: expected [%q], got %v", Nothing, got)
	}
}

func TestAllowedCapabilitiesByLevel(t *testing.T) {
	cases := []struct {
		level int
		want  []string
	}{
		{1, []string{"read your public key"}},
		{4, []string{"read your public key"}},
		{5, []string{"read your public key", "read your list of preferred relays"}},
		{7, []string{"read your public key", "read your list of preferred relays"}},
		{10, []string{
			"read your public key",
			"read your list of preferred relays",
			"sign events using your private key",
		}},
		{20, []string{
			"read your public key",
			"read your list of preferred relays",
			"sign events using your private key",
			"encrypt messages to peers",
			"decrypt messages from peers",
		}},
		{100, []string{
			"read your public key",
			"read your list of preferred relays",
			"sign events using your private key",
			"encrypt messages to peers",
			"decrypt messages from peers",
		}},
	}
	for _, tc := range cases {
		got := AllowedCapabilities(tc.level)
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("level %d: expected %v, got %v", tc.level, tc.want, got)
		}
	}
}

// Capabilities granted at a level must be a prefix of those granted at any
// higher level.
func TestAllowedCapabilitiesMonotonic(t *testing.T) {
	prev := []string{}
	for level := 1; level <= 25; level++ {
		got := AllowedCapabilities(level)
		if len(got) < len(prev) {
			t.Fatalf("level %d grants fewer capabilities than level %d", level, level-1)
		}
		for i, d := range prev {
			if got[i] != d {
				t.Fatalf("level %d: capability %d changed from %q to %q", level, i, d, got[i])
			}
		}
		prev = got
	}
}

func TestPermissionsString(t *testing.T) {
	cases := []struct {
		level int
		want  string
	}{
		{0, "none"},
		{1, "read your public key"},
		{5, "read your public key and read your list of preferred relays"},
		{10, "read your public key, read your list of preferred relays and sign events using your private key"},
		{20, "read your public key, read your list of preferred relays, sign events using your private key, encrypt messages to peers and decrypt messages from peers"},
	}
	for _, tc := range cases {
		if got := PermissionsString(tc.level); got != tc.want {
			t.Errorf("level %d:\n  expected %q\n  got      %q", tc.level, tc.want, got)
		}
	}
}

func TestAllows(t *testing.T) {
	cases := []struct {
		level int
		id    string
		want  bool
	}{
		{0, GetPublicKey, false},
		{1, GetPublicKey, true},
		{7, GetRelays, true},
		{7, SignEvent, false},
		{10, SignEvent, true},
		{10, NIP04Encrypt, false},
		{20, NIP04Encrypt, true},
		{20, NIP04Decrypt, true},
		{0, ReplaceURL, true}, // level-independent
		{20, "unknownCap", false},
	}
	for _, tc := range cases {
		if got := Allows(tc.level, tc.id); got != tc.want {
			t.Errorf("Allows(%d, %q): expected %v, got %v", tc.level, tc.id, tc.want, got)
		}
	}
}

func TestDescribe(t *testing.T) {
	if got := Describe(SignEvent); got != "sign events using your private key" {
		t.Errorf("unexpected description: %q", got)
	}
	if got := Describe("bogus"); got != "" {
		t.Errorf("unknown identifier should describe as empty, got %q", got)
	}
}
