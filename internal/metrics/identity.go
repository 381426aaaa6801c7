package metrics

import "strings"

// NormalizeIdentity canonicalizes a device identifier: trimmed, uppercase, dashes removed.
// An empty result must never be used as a join key.
func NormalizeIdentity(raw string) string {
	id := strings.TrimSpace(raw)
	if id == "" {
		return ""
	}
	return strings.ToUpper(strings.ReplaceAll(id, "-", ""))
}

// SameIdentity reports whether two raw identifiers refer to the same device.
// Empty identifiers match nothing, including each other.
func SameIdentity(a, b string) bool {
	na := NormalizeIdentity(a)
	return na != "" && na == NormalizeIdentity(b)
}
