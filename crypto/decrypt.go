package crypto

import (
	"fmt"
	"strings"

	"github.com/opd-ai/l64/limits"
	"github.com/sirupsen/logrus"
)

// DecryptChar inverts EncryptChar for the same state. It rotates the same row
// and column and advances the cursor by c, exactly as the encrypting side
// did, so both matrices stay identical.
func (s *State) DecryptChar(c byte) (byte, error) {
	cRow, cCol, err := s.Find(c)
	if err != nil {
		return 0, err
	}

	rows, cols, err := s.shift()
	if err != nil {
		return 0, err
	}

	pRow := mod(cRow-rows, MatrixSize)
	pCol := mod(cCol-cols, MatrixSize)
	p := s.At(pRow, pCol)

	s.RotateRowRight(pRow)
	s.RotateColDown(cCol)

	if err := s.advance(c); err != nil {
		return 0, err
	}
	return p, nil
}

// DecryptSymbols folds DecryptChar over symbols, carrying s forward.
func DecryptSymbols(s *State, symbols string) (string, error) {
	out := make([]byte, len(symbols))
	for k := 0; k < len(symbols); k++ {
		p, err := s.DecryptChar(symbols[k])
		if err != nil {
			return "", err
		}
		out[k] = p
	}
	return string(out), nil
}

// Decrypt reverses Encrypt. The padding spaces Encrypt appended are returned
// untouched: the engine cannot tell them apart from trailing spaces of the
// original text. Use TrimPadding when the plaintext is known not to end in
// spaces.
//
// A wrong but well-formed key is not detected. It yields wrong plaintext or,
// when the recovered symbols are not valid Base64, an ArgumentError.
func Decrypt(ciphertext, key string) (string, error) {
	logger := NewLogger("Decrypt")
	logger.Entry("decrypting text")
	defer logger.Exit()

	if err := ValidateKey(key); err != nil {
		logger.WithError(err, "validation", "validate_key").Warn("Rejected key")
		return "", err
	}
	if err := limits.ValidateCiphertext(ciphertext); err != nil {
		return "", &ArgumentError{Param: "ciphertext", Reason: "too large", Err: err}
	}
	if err := checkSymbols(ciphertext); err != nil {
		return "", err
	}

	state, err := NewState(key)
	if err != nil {
		return "", err
	}

	encoded, err := DecryptSymbols(&state, ciphertext)
	if err != nil {
		logger.WithError(err, "invariant", "decrypt_symbols").Error("Cipher state corrupted")
		return "", err
	}

	plaintext, err := DecodeText(encoded)
	if err != nil {
		logger.WithError(err, "codec", "decode_text").Debug("Recovered symbols are not valid Base64")
		return "", &ArgumentError{Param: "ciphertext", Reason: "does not decode under this key", Err: err}
	}

	logger.WithFields(OperationFields("decrypt", "success", logrus.Fields{
		"key_fingerprint": KeyFingerprint(key),
		"ciphertext_size": len(ciphertext),
		"plaintext_size":  len(plaintext),
	})).Debug("Decryption completed")

	return plaintext, nil
}

// TrimPadding removes trailing PaddingSymbol characters.
func TrimPadding(text string) string {
	return strings.TrimRight(text, string(PaddingSymbol))
}

// checkSymbols rejects ciphertext bytes outside the alphabet before they can
// reach the engine, where a miss would look like an internal defect.
func checkSymbols(text string) error {
	for k := 0; k < len(text); k++ {
		if !IsSymbol(text[k]) {
			return &ArgumentError{
				Param:  "ciphertext",
				Reason: fmt.Sprintf("symbol %q at offset %d is not in the alphabet", text[k], k),
			}
		}
	}
	return nil
}
