package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
)

// ValidateKey checks that key is a permutation of the alphabet.
//
// An empty key is reported as an ArgumentError naming "key". Any other key
// whose sorted bytes differ from CanonicalAlphabet (wrong length, repeated
// symbols, foreign symbols) is reported as a KeyError.
func ValidateKey(key string) error {
	if key == "" {
		return &ArgumentError{Param: "key", Reason: "key is required"}
	}

	if len(key) != AlphabetSize {
		return &KeyError{Key: key}
	}

	sorted := []byte(key)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	if string(sorted) != CanonicalAlphabet {
		return &KeyError{Key: key}
	}

	return nil
}

// KeyFingerprint returns a short hex digest identifying key in logs without
// revealing it.
func KeyFingerprint(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}
