// Package limits provides centralized size constants and validation functions
// for the l64 cipher. This package ensures consistent size enforcement across
// the engine, the key store and the command-line tool.
//
// # Size Hierarchy
//
//   - MaxPlaintextSize (1MB): the largest plaintext Encrypt accepts. This
//     prevents memory exhaustion, since the engine holds the whole text and
//     its Base64 form in memory.
//
//   - MaxCiphertextSize: the Base64 length of a max-size plaintext after it
//     has been padded to a multiple of 3. Decrypt rejects anything longer.
//
//   - MaxKeyNameLength (128): the longest name under which the key store
//     will persist a key.
//
// # Validation Functions
//
// Text validators only enforce the upper bound; empty text is valid input for
// the cipher and maps to empty output:
//
//	if err := limits.ValidatePlaintext(text); err != nil {
//	    // errors.Is(err, limits.ErrMessageTooLarge)
//	}
//
// For custom size limits, use the generic ValidateTextSize function:
//
//	err := limits.ValidateTextSize(text, 4096)
//
// Key names must be usable as a single file name inside the store directory:
//
//	err := limits.ValidateKeyName("default")
//
// # Error Types
//
//   - ErrMessageTooLarge: text exceeds the specified limit
//   - ErrNameEmpty: an empty key name was provided
//   - ErrNameInvalid: a key name is too long, reserved, or contains a path
//     separator
//
// Errors are wrapped with the actual and maximum sizes; match them with
// errors.Is.
package limits
