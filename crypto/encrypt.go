package crypto

import (
	"strings"

	"github.com/opd-ai/l64/limits"
	"github.com/sirupsen/logrus"
)

// PaddingSymbol is appended to plaintext until its length is a multiple of 3,
// so the Base64 form never contains '='.
const PaddingSymbol = ' '

// Pad appends PaddingSymbol to text until its length is a multiple of 3.
func Pad(text string) string {
	if r := len(text) % 3; r != 0 {
		return text + strings.Repeat(string(PaddingSymbol), 3-r)
	}
	return text
}

// EncryptChar substitutes one alphabet symbol and advances the state.
//
// The ciphertext symbol sits at the plaintext position shifted by the value
// of the cursor cell. Afterwards the plaintext row rotates right, the
// ciphertext column rotates down, and the cursor moves by the ciphertext
// value.
func (s *State) EncryptChar(p byte) (byte, error) {
	pRow, pCol, err := s.Find(p)
	if err != nil {
		return 0, err
	}

	rows, cols, err := s.shift()
	if err != nil {
		return 0, err
	}

	cRow := mod(pRow+rows, MatrixSize)
	cCol := mod(pCol+cols, MatrixSize)
	c := s.At(cRow, cCol)

	s.RotateRowRight(pRow)
	s.RotateColDown(cCol)

	if err := s.advance(c); err != nil {
		return 0, err
	}
	return c, nil
}

// EncryptSymbols folds EncryptChar over symbols, carrying s forward.
func EncryptSymbols(s *State, symbols string) (string, error) {
	out := make([]byte, len(symbols))
	for k := 0; k < len(symbols); k++ {
		c, err := s.EncryptChar(symbols[k])
		if err != nil {
			return "", err
		}
		out[k] = c
	}
	return string(out), nil
}

// Encrypt pads plaintext, Base64-encodes it and substitutes every resulting
// symbol under a state freshly built from key.
func Encrypt(plaintext, key string) (string, error) {
	logger := NewLogger("Encrypt")
	logger.Entry("encrypting text")
	defer logger.Exit()

	if err := ValidateKey(key); err != nil {
		logger.WithError(err, "validation", "validate_key").Warn("Rejected key")
		return "", err
	}
	if err := limits.ValidatePlaintext(plaintext); err != nil {
		return "", &ArgumentError{Param: "plaintext", Reason: "too large", Err: err}
	}

	state, err := NewState(key)
	if err != nil {
		return "", err
	}

	encoded := EncodeText(Pad(plaintext))
	ciphertext, err := EncryptSymbols(&state, encoded)
	if err != nil {
		logger.WithError(err, "invariant", "encrypt_symbols").Error("Cipher state corrupted")
		return "", err
	}

	logger.WithFields(OperationFields("encrypt", "success", logrus.Fields{
		"key_fingerprint": KeyFingerprint(key),
		"plaintext_size":  len(plaintext),
		"ciphertext_size": len(ciphertext),
	})).Debug("Encryption completed")

	return ciphertext, nil
}
