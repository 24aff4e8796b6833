package crypto

import (
	"errors"
	"sort"
	"strings"
	"testing"
)

func TestAlphabetConstants(t *testing.T) {
	if len(Alphabet) != AlphabetSize {
		t.Fatalf("len(Alphabet) = %d, want %d", len(Alphabet), AlphabetSize)
	}
	if MatrixSize*MatrixSize != AlphabetSize {
		t.Fatalf("MatrixSize^2 = %d, want %d", MatrixSize*MatrixSize, AlphabetSize)
	}

	sorted := []byte(Alphabet)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	if string(sorted) != CanonicalAlphabet {
		t.Errorf("sorted Alphabet = %q, want %q", sorted, CanonicalAlphabet)
	}
	if strings.ContainsRune(Alphabet, '=') {
		t.Error("Alphabet must not contain the Base64 padding symbol")
	}
}

func TestIndexOf(t *testing.T) {
	for want := 0; want < len(Alphabet); want++ {
		got, err := IndexOf(Alphabet[want])
		if err != nil {
			t.Fatalf("IndexOf(%q) error: %v", Alphabet[want], err)
		}
		if got != want {
			t.Errorf("IndexOf(%q) = %d, want %d", Alphabet[want], got, want)
		}
	}

	for _, b := range []byte{'=', '-', '_', ' ', 0, 0xff} {
		_, err := IndexOf(b)
		if !errors.Is(err, ErrInvariantViolation) {
			t.Errorf("IndexOf(%q) error = %v, want invariant violation", b, err)
		}
		if IsSymbol(b) {
			t.Errorf("IsSymbol(%q) = true", b)
		}
	}
}

func TestValidateKey(t *testing.T) {
	cases := []struct {
		name    string
		key     string
		wantErr error
	}{
		{"canonical order", CanonicalAlphabet, nil},
		{"base64 order", Alphabet, nil},
		{"reversed", reversedKey, nil},
		{"empty", "", ErrInvalidArgument},
		{"blank", " ", ErrInvalidKey},
		{"short", "abcde", ErrInvalidKey},
		{"one short", CanonicalAlphabet[1:], ErrInvalidKey},
		{"one long", CanonicalAlphabet + "z", ErrInvalidKey},
		{"duplicate", CanonicalAlphabet[:63] + "y", ErrInvalidKey},
		{"foreign symbol", CanonicalAlphabet[:63] + "-", ErrInvalidKey},
		{"padding symbol", "=" + CanonicalAlphabet[1:], ErrInvalidKey},
		{"multibyte", "é" + CanonicalAlphabet[2:], ErrInvalidKey},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateKey(tc.key)
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("ValidateKey() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("ValidateKey() error = %v, want %v", err, tc.wantErr)
			}
			if tc.wantErr == ErrInvalidKey {
				msg := err.Error()
				if !strings.Contains(msg, "'"+tc.key+"'") {
					t.Errorf("error %q does not embed the key", msg)
				}
				if !strings.Contains(msg, CanonicalAlphabet) {
					t.Errorf("error %q does not embed the canonical alphabet", msg)
				}
			}
		})
	}
}

func TestValidateKeyEmptyNamesParameter(t *testing.T) {
	err := ValidateKey("")

	var argErr *ArgumentError
	if !errors.As(err, &argErr) {
		t.Fatalf("ValidateKey(\"\") error = %T, want *ArgumentError", err)
	}
	if argErr.Param != "key" {
		t.Errorf("Param = %q, want %q", argErr.Param, "key")
	}
	if !strings.Contains(err.Error(), `"key"`) {
		t.Errorf("error %q does not name the parameter", err)
	}
}

func TestKeyFingerprint(t *testing.T) {
	a := KeyFingerprint(identityKey)
	b := KeyFingerprint(identityKey)
	c := KeyFingerprint(reversedKey)

	if a != b {
		t.Error("KeyFingerprint is not deterministic")
	}
	if a == c {
		t.Error("different keys produced the same fingerprint")
	}
	if len(a) != 16 {
		t.Errorf("len(KeyFingerprint) = %d, want 16", len(a))
	}
	if strings.Contains(a, identityKey[:8]) {
		t.Error("fingerprint reveals key material")
	}
}
