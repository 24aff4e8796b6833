package crypto

import (
	"crypto/subtle"
	"errors"
	"runtime"
)

// SecureWipe overwrites a buffer holding key material with zeros.
// It returns an error if the buffer is nil.
func SecureWipe(data []byte) error {
	if data == nil {
		return errors.New("cannot wipe nil data")
	}

	// The constant-time compare reads the buffer so the following copy is not
	// treated as a dead store.
	zeros := make([]byte, len(data))
	subtle.ConstantTimeCompare(data, zeros)
	copy(data, zeros)

	runtime.KeepAlive(data)
	runtime.KeepAlive(zeros)

	return nil
}

// ZeroBytes is SecureWipe without the nil check error.
func ZeroBytes(data []byte) {
	_ = SecureWipe(data)
}
