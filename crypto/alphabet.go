package crypto

const (
	// Alphabet is the working symbol set in Base64 index order, without the
	// '=' padding symbol. IndexOf returns positions in this order.
	Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

	// CanonicalAlphabet holds the same symbols sorted by byte value.
	// A key is valid when its sorted bytes equal this string.
	CanonicalAlphabet = "+/0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// AlphabetSize is the number of symbols, and the required key length.
	AlphabetSize = 64

	// MatrixSize is the side of the square state matrix (sqrt of AlphabetSize).
	MatrixSize = 8
)

// symbolIndex maps every byte to its position in Alphabet, or -1.
var symbolIndex = buildSymbolIndex()

func buildSymbolIndex() [256]int {
	var idx [256]int
	for i := range idx {
		idx[i] = -1
	}
	for i := 0; i < len(Alphabet); i++ {
		idx[Alphabet[i]] = i
	}
	return idx
}

// IsSymbol reports whether b belongs to the alphabet.
func IsSymbol(b byte) bool {
	return symbolIndex[b] >= 0
}

// IndexOf returns the position of symbol in Alphabet.
// A miss means a non-alphabet byte reached the engine, which validated input
// never allows, so it is reported as an InvariantError.
func IndexOf(symbol byte) (int, error) {
	i := symbolIndex[symbol]
	if i < 0 {
		return 0, &InvariantError{Op: "index", Symbol: symbol}
	}
	return i, nil
}
