package crypto

import (
	"strings"
	"testing"
)

// BenchmarkGenerateKey measures key generation performance
func BenchmarkGenerateKey(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := GenerateKey(); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkValidateKey measures key validation performance
func BenchmarkValidateKey(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if err := ValidateKey(reversedKey); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkEncryptChar measures the per-symbol transform
func BenchmarkEncryptChar(b *testing.B) {
	state, err := NewState(identityKey)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := state.EncryptChar(Alphabet[i%AlphabetSize]); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkEncrypt measures whole-text encryption of a 1KB message
func BenchmarkEncrypt(b *testing.B) {
	plaintext := strings.Repeat("L64 benchmark text ", 54)

	b.SetBytes(int64(len(plaintext)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Encrypt(plaintext, identityKey); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkDecrypt measures whole-text decryption of a 1KB message
func BenchmarkDecrypt(b *testing.B) {
	plaintext := strings.Repeat("L64 benchmark text ", 54)
	ciphertext, err := Encrypt(plaintext, identityKey)
	if err != nil {
		b.Fatal(err)
	}

	b.SetBytes(int64(len(ciphertext)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Decrypt(ciphertext, identityKey); err != nil {
			b.Fatal(err)
		}
	}
}
