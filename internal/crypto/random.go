package crypto

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"sync"
)

// RandomSource yields uniform integers in [0, bound).
type RandomSource interface {
	Intn(bound int) int
}

// SecureSource is a RandomSource backed by the OS entropy pool.
// Draws are serialized so one source can be shared between goroutines.
type SecureSource struct {
	mu     sync.Mutex
	reader io.Reader
}

// NewSecureSource returns a source reading from crypto/rand.
func NewSecureSource() *SecureSource {
	return &SecureSource{reader: rand.Reader}
}

// NewSourceFromReader returns a source reading from r. Only tests should
// pass anything other than crypto/rand.Reader.
func NewSourceFromReader(r io.Reader) *SecureSource {
	return &SecureSource{reader: r}
}

// Intn returns a uniform integer in [0, bound). It panics if bound <= 0 or
// the entropy source fails; neither is recoverable by the caller.
func (s *SecureSource) Intn(bound int) int {
	if bound <= 0 {
		panic(fmt.Sprintf("crypto: Intn called with bound %d", bound))
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := rand.Int(s.reader, big.NewInt(int64(bound)))
	if err != nil {
		panic(fmt.Sprintf("crypto: reading entropy: %v", err))
	}
	return int(n.Int64())
}
