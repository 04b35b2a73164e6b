package buildsystem

import "github.com/cespare/xxhash/v2"

// hashString is the one hashing primitive every signature mixes with XOR.
func hashString(s string) uint64 {
	return xxhash.Sum64String(s)
}
