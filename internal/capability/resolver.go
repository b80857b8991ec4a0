// Package capability defines the tiered permission scale and resolves
// numeric authorization levels into the capabilities they grant.
package capability

import "strings"

// Sentinels consumers render verbatim when a level grants no capability.
// Nothing appears inside capability listings, None inside summary phrases.
const (
	Nothing = "nothing"
	None    = "none"
)

// AllowedCapabilities returns the display descriptions of every capability
// whose minimum level is at or below level, in catalog order. A level that
// grants nothing returns the single sentinel entry Nothing rather than an
// empty slice.
func AllowedCapabilities(level int) []string {
	var descs []string
	for _, t := range catalog {
		if t.Level > level {
			break
		}
		for _, id := range t.Capabilities {
			descs = append(descs, names[id])
		}
	}
	if len(descs) == 0 {
		return []string{Nothing}
	}
	return descs
}

// PermissionsString renders the capabilities granted at level as one
// English phrase: None when the level grants nothing, a single description
// unmodified, and otherwise "A, B and C" with no comma before the "and".
func PermissionsString(level int) string {
	descs := AllowedCapabilities(level)
	if len(descs) == 1 {
		if descs[0] == Nothing {
			return None
		}
		return descs[0]
	}
	return strings.Join(descs[:len(descs)-1], ", ") + " and " + descs[len(descs)-1]
}

// Allows reports whether a grant at level permits the capability id.
// Level-independent capabilities are always permitted; unknown identifiers
// never are.
func Allows(level int, id string) bool {
	if id == ReplaceURL {
		return true
	}
	for _, t := range catalog {
		if t.Level > level {
			break
		}
		for _, c := range t.Capabilities {
			if c == id {
				return true
			}
		}
	}
	return false
}
