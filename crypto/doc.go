// Package crypto implements the L64 cipher, an LC4-style matrix substitution
// cipher over the 64 symbols of the Base64 alphabet.
//
// The cipher keeps an 8x8 matrix holding a permutation of the alphabet and a
// cursor pointing at one of its cells. Each symbol is replaced by the symbol
// found at its own position shifted by the value under the cursor; then one
// row and one column of the matrix rotate and the cursor moves. Because the
// matrix changes after every symbol, repeated plaintext does not produce
// repeated ciphertext.
//
// L64 is a classical construction. It makes no claim of modern cryptographic
// security and offers no integrity protection.
//
// # Keys
//
// A key is any permutation of [Alphabet]. Generate one with the system's
// secure random source:
//
//	key, err := crypto.GenerateKey()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// [ValidateKey] accepts a key exactly when its sorted symbols equal
// [CanonicalAlphabet].
//
// # Encryption and Decryption
//
//	ciphertext, err := crypto.Encrypt("Hello, World!", key)
//	plaintext, err := crypto.Decrypt(ciphertext, key)
//	plaintext = crypto.TrimPadding(plaintext) // "Hello, World!"
//
// Encrypt pads the plaintext with trailing spaces to a multiple of 3 bytes,
// so its Base64 form has no '=' padding, then substitutes each Base64 symbol.
// Decrypt returns the padded plaintext: it cannot tell padding apart from
// spaces that were part of the message, so trimming is left to the caller.
//
// Decrypting with the wrong key is not detected and yields garbage.
//
// # Low-level API
//
// [State] exposes the matrix and the per-symbol transforms
// ([State.EncryptChar], [State.DecryptChar]) for callers that manage the
// Base64 step themselves. [Stream] keeps a State alive across calls so a long
// symbol sequence can be processed in chunks.
//
// # Key Storage
//
// [KeyStore] keeps named keys on disk, sealed with AES-256-GCM under a key
// derived from a master password with PBKDF2:
//
//	store, err := crypto.NewKeyStore("/path/to/keys", []byte(password))
//	defer store.Close()
//	err = store.StoreKey("default", key)
//	key, err = store.LoadKey("default")
//
// Opening a store with the wrong master password fails with [ErrKeyStoreAuth]
// before anything can be written under it.
//
// # Errors
//
// Errors fall into three kinds, matched with errors.Is:
//
//   - [ErrInvalidArgument] ([*ArgumentError]): a missing or malformed argument,
//     naming the parameter.
//   - [ErrInvalidKey] ([*KeyError]): a key that is not a permutation of the
//     alphabet. The message contains the key and the canonical alphabet.
//   - [ErrInvariantViolation] ([*InvariantError]): the engine lost track of a
//     symbol. This indicates a bug and is never caused by validated input.
//
// # Thread Safety
//
// Encrypt and Decrypt build their own State per call and may run
// concurrently. A State is not safe for concurrent use. Stream and KeyStore
// serialize access internally.
package crypto
