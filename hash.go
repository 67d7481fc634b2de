// Fingerprint algorithms for change detection.
//
// The store fingerprints each serialized dataset so that a save of an
// unchanged dataset can be skipped (callers may invoke Save at high
// frequency) and a completed migration can be verified cheaply. Three
// algorithms are supported, selectable via Config.HashAlgorithm.
package shelf

import (
	"fmt"
	"hash/fnv"

	"github.com/zeebo/xxh3"
	"golang.org/x/crypto/blake2b"
)

// Hash algorithm constants.
const (
	AlgXXHash3 = 1 // Default, fastest
	AlgFNV1a   = 2 // No external dependencies
	AlgBlake2b = 3 // Best distribution
)

// fingerprint generates a 16 hex character digest of a serialized
// dataset using the specified algorithm.
func fingerprint(data []byte, alg int) string {
	switch alg {
	case AlgXXHash3:
		return fmt.Sprintf("%016x", xxh3.Hash(data))
	case AlgFNV1a:
		h := fnv.New64a()
		h.Write(data)
		return fmt.Sprintf("%016x", h.Sum64())
	case AlgBlake2b:
		h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
		h.Write(data)
		return fmt.Sprintf("%016x", h.Sum(nil))
	default:
		return ""
	}
}
