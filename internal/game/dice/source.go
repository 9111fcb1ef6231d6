package dice

import (
	"crypto/rand"
	"encoding/binary"
	"math"
	"math/big"
	mrand "math/rand"
)

// cryptoSource implements Source using crypto/rand.
//
// Invariant: All values produced are uniformly distributed and safe for concurrent use.
type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand.
// Battles never draw from it directly; NewSeed uses it for runs that were not given a seed.
//
// Postcondition: Every value returned by Intn is in [0, n).
func NewCryptoSource() Source {
	return &cryptoSource{}
}

// Intn returns a cryptographically secure random int in [0, n).
//
// Precondition: n > 0. Panics with "dice: Intn called with n <= 0" if n <= 0.
func (c *cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	val, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("dice: crypto/rand failure: " + err.Error())
	}
	return int(val.Int64())
}

// Float64 returns a secure random float in [0, 1) with 53 bits of precision.
func (c *cryptoSource) Float64() float64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic("dice: crypto/rand failure: " + err.Error())
	}
	return float64(binary.BigEndian.Uint64(b[:])>>11) / (1 << 53)
}

// NewSeed draws a non-zero seed from a crypto source.
//
// Postcondition: result >= 1.
func NewSeed() int64 {
	return NewSeedFrom(NewCryptoSource())
}

// NewSeedFrom draws a non-zero seed from src.
//
// Precondition: src must be non-nil and accept n up to math.MaxInt.
// Postcondition: result >= 1.
func NewSeedFrom(src Source) int64 {
	return int64(src.Intn(math.MaxInt)) + 1
}

// SeededSource is a deterministic Source backed by math/rand.
//
// It is NOT safe for concurrent use; each battle or worker owns its own.
type SeededSource struct {
	rng *mrand.Rand
}

// NewSeededSource returns a deterministic Source for the given seed.
// A zero seed is replaced by 1.
//
// Postcondition: Two sources built from the same seed produce identical sequences.
func NewSeededSource(seed int64) *SeededSource {
	if seed == 0 {
		seed = 1
	}
	return &SeededSource{rng: mrand.New(mrand.NewSource(seed))}
}

// Intn returns a deterministic pseudo-random int in [0, n).
//
// Precondition: n > 0.
func (s *SeededSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	return s.rng.Intn(n)
}

// Float64 returns a deterministic pseudo-random float in [0, 1).
func (s *SeededSource) Float64() float64 {
	return s.rng.Float64()
}
