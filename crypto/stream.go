package crypto

import "sync"

// Direction selects the transform a Stream applies.
type Direction int

const (
	DirectionEncrypt Direction = iota
	DirectionDecrypt
)

func (d Direction) String() string {
	if d == DirectionDecrypt {
		return "decrypt"
	}
	return "encrypt"
}

// Stream is a long-lived engine whose state carries over from one Process
// call to the next, so a symbol sequence can be transformed in chunks.
//
// Stream works on alphabet symbols only. It neither pads nor Base64-encodes;
// feed it EncodeText output. Exactly one Process or Reset runs at a time.
type Stream struct {
	mu        sync.Mutex
	key       string
	direction Direction
	initial   State
	state     State
	processed int
}

// NewEncryptStream returns a Stream that encrypts under key.
func NewEncryptStream(key string) (*Stream, error) {
	return newStream(key, DirectionEncrypt)
}

// NewDecryptStream returns a Stream that decrypts under key.
func NewDecryptStream(key string) (*Stream, error) {
	return newStream(key, DirectionDecrypt)
}

func newStream(key string, d Direction) (*Stream, error) {
	state, err := NewState(key)
	if err != nil {
		return nil, err
	}
	return &Stream{key: key, direction: d, initial: state, state: state}, nil
}

// Process transforms symbols, continuing from the state left by earlier
// calls. Splitting a sequence across calls gives the same output as a single
// call on the whole sequence.
//
// Symbols are checked before any is processed; on error the state is left
// as it was.
func (s *Stream) Process(symbols string) (string, error) {
	for k := 0; k < len(symbols); k++ {
		if !IsSymbol(symbols[k]) {
			return "", &ArgumentError{Param: "symbols", Reason: "contains a symbol outside the alphabet"}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state
	var (
		out string
		err error
	)
	if s.direction == DirectionDecrypt {
		out, err = DecryptSymbols(&work, symbols)
	} else {
		out, err = EncryptSymbols(&work, symbols)
	}
	if err != nil {
		NewLogger("Stream.Process").
			WithField("direction", s.direction.String()).
			WithError(err, "invariant", "process_symbols").
			Error("Stream state corrupted")
		return "", err
	}

	s.state = work
	s.processed += len(symbols)
	return out, nil
}

// Processed returns the number of symbols transformed since the last Reset.
func (s *Stream) Processed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processed
}

// Reset restores the state the key produced at construction.
func (s *Stream) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = s.initial
	s.processed = 0

	NewLogger("Stream.Reset").
		WithField("direction", s.direction.String()).
		WithField("key_fingerprint", KeyFingerprint(s.key)).
		Debug("Stream state reset")
}
