// Package limits provides centralized size limits for cipher inputs and key
// store entries. This ensures consistent validation across the engine, the key
// store and the command-line front end.
package limits

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// MaxPlaintextSize is the largest plaintext, in bytes, accepted by Encrypt.
	// This prevents memory exhaustion (1MB limit)
	MaxPlaintextSize = 1024 * 1024

	// MaxCiphertextSize is the largest ciphertext accepted by Decrypt: the
	// Base64 length of a padded MaxPlaintextSize plaintext.
	MaxCiphertextSize = 4 * ((MaxPlaintextSize + 2) / 3)

	// MaxKeyNameLength bounds the file name used for a stored key.
	MaxKeyNameLength = 128
)

var (
	// ErrMessageTooLarge indicates text exceeds the maximum size
	ErrMessageTooLarge = errors.New("message too large")

	// ErrNameEmpty indicates an empty key name was provided
	ErrNameEmpty = errors.New("empty key name")

	// ErrNameInvalid indicates a key name that cannot be used as a file name
	ErrNameInvalid = errors.New("invalid key name")
)

// ValidateTextSize validates text against the specified maximum size.
// Empty text is valid: the cipher maps it to empty output.
func ValidateTextSize(text string, maxSize int) error {
	if len(text) > maxSize {
		return fmt.Errorf("%w: size %d exceeds limit %d", ErrMessageTooLarge, len(text), maxSize)
	}
	return nil
}

// ValidatePlaintext validates plaintext size against MaxPlaintextSize.
func ValidatePlaintext(text string) error {
	if err := ValidateTextSize(text, MaxPlaintextSize); err != nil {
		return fmt.Errorf("plaintext: %w", err)
	}
	return nil
}

// ValidateCiphertext validates ciphertext size against MaxCiphertextSize.
func ValidateCiphertext(text string) error {
	if err := ValidateTextSize(text, MaxCiphertextSize); err != nil {
		return fmt.Errorf("ciphertext: %w", err)
	}
	return nil
}

// ValidateKeyName checks that name can be stored as a single file inside the
// key store directory. Hidden names are reserved for store metadata.
func ValidateKeyName(name string) error {
	if name == "" {
		return ErrNameEmpty
	}
	if len(name) > MaxKeyNameLength {
		return fmt.Errorf("%w: length %d exceeds limit %d", ErrNameInvalid, len(name), MaxKeyNameLength)
	}
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".tmp") {
		return fmt.Errorf("%w: %q is reserved", ErrNameInvalid, name)
	}
	if strings.ContainsAny(name, `/\`+"\x00") {
		return fmt.Errorf("%w: %q contains a path separator", ErrNameInvalid, name)
	}
	return nil
}
