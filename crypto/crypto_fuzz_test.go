package crypto

import (
	"errors"
	"testing"
)

// FuzzEncryptDecrypt fuzzes the whole-text round trip
func FuzzEncryptDecrypt(f *testing.F) {
	f.Add("Hello, World!", int64(1))
	f.Add("", int64(2))
	f.Add("   ", int64(3))
	f.Add("\x00\xff binary", int64(4))

	f.Fuzz(func(t *testing.T, plaintext string, seed int64) {
		// Skip very large inputs to keep iterations fast
		if len(plaintext) > 10000 {
			return
		}

		key, err := GenerateKeyFrom(&seededReader{state: uint64(seed)})
		if err != nil {
			t.Fatalf("GenerateKeyFrom failed: %v", err)
		}

		ciphertext, err := Encrypt(plaintext, key)
		if err != nil {
			t.Fatalf("Encrypt failed: %v", err)
		}

		decrypted, err := Decrypt(ciphertext, key)
		if err != nil {
			t.Fatalf("Decrypt failed: %v", err)
		}

		if decrypted != Pad(plaintext) {
			t.Errorf("Decryption mismatch: got %q, want %q", decrypted, Pad(plaintext))
		}
	})
}

// FuzzDecrypt feeds arbitrary ciphertext to Decrypt: it must never panic and
// never report an internal invariant violation.
func FuzzDecrypt(f *testing.F) {
	f.Add("I2GTWe6kHqkuktS1owpt")
	f.Add("SGVsbG8=")
	f.Add("ABC")
	f.Add("")

	f.Fuzz(func(t *testing.T, ciphertext string) {
		_, err := Decrypt(ciphertext, identityKey)
		if errors.Is(err, ErrInvariantViolation) {
			t.Fatalf("Decrypt(%q) hit an invariant violation: %v", ciphertext, err)
		}
	})
}

// FuzzValidateKey checks that any key ValidateKey accepts builds a state.
func FuzzValidateKey(f *testing.F) {
	f.Add(CanonicalAlphabet)
	f.Add(Alphabet)
	f.Add("abcde")
	f.Add("")

	f.Fuzz(func(t *testing.T, key string) {
		if ValidateKey(key) != nil {
			return
		}
		if _, err := NewState(key); err != nil {
			t.Fatalf("NewState rejected a validated key %q: %v", key, err)
		}
	})
}

// seededReader is a deterministic xorshift byte source.
type seededReader struct {
	state uint64
}

func (r *seededReader) Read(p []byte) (int, error) {
	if r.state == 0 {
		r.state = 0x9e3779b97f4a7c15
	}
	for i := range p {
		r.state ^= r.state << 13
		r.state ^= r.state >> 7
		r.state ^= r.state << 17
		p[i] = byte(r.state)
	}
	return len(p), nil
}
