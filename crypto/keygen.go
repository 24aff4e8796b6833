package crypto

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// GenerateKey creates a random key: a shuffle of Alphabet drawn from the
// system's cryptographically secure random source.
func GenerateKey() (string, error) {
	return GenerateKeyFrom(rand.Reader)
}

// GenerateKeyFrom creates a key using entropy read from r.
func GenerateKeyFrom(r io.Reader) (string, error) {
	key, err := Shuffle(r, Alphabet)
	if err != nil {
		return "", fmt.Errorf("failed to generate key: %w", err)
	}
	return key, nil
}

// Shuffle returns a uniformly random permutation of the bytes of s using the
// Fisher-Yates algorithm with indices drawn from r.
func Shuffle(r io.Reader, s string) (string, error) {
	if r == nil {
		return "", &ArgumentError{Param: "r", Reason: "random source is required"}
	}

	buf := []byte(s)
	for i := len(buf) - 1; i > 0; i-- {
		j, err := randomIndex(r, i+1)
		if err != nil {
			return "", err
		}
		buf[i], buf[j] = buf[j], buf[i]
	}

	return string(buf), nil
}

// randomIndex returns a uniform value in [0, n) by rejection sampling 64-bit
// words from r.
func randomIndex(r io.Reader, n int) (int, error) {
	bound := uint64(n)
	limit := math.MaxUint64 - math.MaxUint64%bound

	var word [8]byte
	for {
		if _, err := io.ReadFull(r, word[:]); err != nil {
			return 0, fmt.Errorf("failed to read random index: %w", err)
		}
		if v := binary.BigEndian.Uint64(word[:]); v < limit {
			return int(v % bound), nil
		}
	}
}
