package crypto

import "strings"

// State is the mutable cipher state: an 8x8 matrix holding a permutation of
// the alphabet, stored row-major, plus the cursor (i, j) whose cell drives
// the shift applied to the next symbol.
//
// State is a plain value. Encrypt and Decrypt build a fresh one per call, so
// two calls never share a matrix.
type State struct {
	grid [AlphabetSize]byte
	i, j int
}

// NewState validates key and loads it into a new matrix row by row with the
// cursor at (0, 0).
func NewState(key string) (State, error) {
	if err := ValidateKey(key); err != nil {
		return State{}, err
	}

	var s State
	copy(s.grid[:], key)
	return s, nil
}

// At returns the symbol at (row, col). Both must lie in [0, MatrixSize);
// At panics otherwise.
func (s *State) At(row, col int) byte {
	return s.grid[row*MatrixSize+col]
}

// Cursor returns the active cell.
func (s *State) Cursor() (i, j int) {
	return s.i, s.j
}

// Find returns the position of symbol in the matrix.
func (s *State) Find(symbol byte) (row, col int, err error) {
	for k, b := range s.grid {
		if b == symbol {
			return k / MatrixSize, k % MatrixSize, nil
		}
	}
	return 0, 0, &InvariantError{Op: "find", Symbol: symbol}
}

// RotateRowRight shifts row one position to the right; the last column wraps
// to the first. row must lie in [0, MatrixSize); RotateRowRight panics
// otherwise.
func (s *State) RotateRowRight(row int) {
	base := row * MatrixSize
	last := s.grid[base+MatrixSize-1]
	copy(s.grid[base+1:base+MatrixSize], s.grid[base:base+MatrixSize-1])
	s.grid[base] = last
}

// RotateColDown shifts col one position down; the last row wraps to the
// first. col must lie in [0, MatrixSize); RotateColDown panics otherwise.
func (s *State) RotateColDown(col int) {
	last := s.grid[(MatrixSize-1)*MatrixSize+col]
	for r := MatrixSize - 1; r > 0; r-- {
		s.grid[r*MatrixSize+col] = s.grid[(r-1)*MatrixSize+col]
	}
	s.grid[col] = last
}

// advance moves the cursor by the value of the ciphertext symbol c.
// Both directions call it with c, which keeps their cursors in step.
func (s *State) advance(c byte) error {
	v, err := IndexOf(c)
	if err != nil {
		return err
	}
	s.i = mod(s.i+v/MatrixSize, MatrixSize)
	s.j = mod(s.j+v%MatrixSize, MatrixSize)
	return nil
}

// shift returns the row and column offsets encoded by the cursor cell.
func (s *State) shift() (rows, cols int, err error) {
	v, err := IndexOf(s.At(s.i, s.j))
	if err != nil {
		return 0, 0, err
	}
	return v / MatrixSize, v % MatrixSize, nil
}

// String renders the matrix one row per line.
func (s *State) String() string {
	var b strings.Builder
	for r := 0; r < MatrixSize; r++ {
		if r > 0 {
			b.WriteByte('\n')
		}
		b.Write(s.grid[r*MatrixSize : (r+1)*MatrixSize])
	}
	return b.String()
}

// mod returns a modulo b in [0, b), also for negative a.
func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
