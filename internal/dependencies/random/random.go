package random

import (
	"crypto/rand"
	"math/big"
	mathrand "math/rand/v2"
)

// Random provides random number generation that can be mocked for testing
type Random interface {
	// Intn returns a random int in [0, n)
	Intn(n int) int

	// Uint64 returns a random 64-bit value, used to seed deterministic sources
	Uint64() uint64
}

// CryptoRandom implements Random using crypto/rand
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// Intn returns a cryptographically random int in [0, n)
func (r *CryptoRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	max := big.NewInt(int64(n))
	result, err := rand.Int(rand.Reader, max)
	if err != nil {
		// Fall back to 0 on error (should never happen with crypto/rand)
		return 0
	}
	return int(result.Int64())
}

// Uint64 returns a cryptographically random uint64
func (r *CryptoRandom) Uint64() uint64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0
	}
	var v uint64
	for _, b := range buf {
		v = v<<8 | uint64(b)
	}
	return v
}

// SeededRandom is a deterministic Random: the same seed always yields the same sequence.
// Deals are driven by it so that a hand can be replayed from its seed.
type SeededRandom struct {
	rng *mathrand.Rand
}

// NewSeeded creates a SeededRandom from a seed
func NewSeeded(seed uint64) *SeededRandom {
	return &SeededRandom{rng: mathrand.New(mathrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Intn returns a deterministic int in [0, n)
func (r *SeededRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return r.rng.IntN(n)
}

// Uint64 returns the next deterministic uint64
func (r *SeededRandom) Uint64() uint64 {
	return r.rng.Uint64()
}
