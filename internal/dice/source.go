package dice

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"sync"
)

// Source is the randomness provider for weighted sampling.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Float64 returns a uniformly distributed value in [0, 1).
	Float64() float64
}

// pseudoSource implements Source with math/rand. Weighted draws are not a
// security-sensitive use of randomness, so a seeded PRNG is the default: it
// is fast and makes simulated rolls reproducible from a known seed.
type pseudoSource struct {
	rng *lockedRand
}

// NewPseudoSource returns a Source backed by math/rand seeded with seed.
//
// Postcondition: two sources built from the same seed produce the same
// sequence of values.
func NewPseudoSource(seed int64) Source {
	return &pseudoSource{rng: newLockedRand(seed)}
}

// Float64 returns a pseudo-random value in [0, 1).
func (p *pseudoSource) Float64() float64 {
	return p.rng.Float64()
}

// lockedRand guards a math/rand.Rand with a mutex; rand.Rand itself is not
// safe for concurrent use.
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func newLockedRand(seed int64) *lockedRand {
	return &lockedRand{r: rand.New(rand.NewSource(seed))}
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

// cryptoSource implements Source using crypto/rand, for callers that want
// draws independent of any seed.
type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand.
func NewCryptoSource() Source {
	return &cryptoSource{}
}

// Float64 returns a uniformly distributed value in [0, 1) built from 53
// random bits.
//
// Panics with "dice: crypto/rand failure: <err>" if crypto/rand fails.
func (c *cryptoSource) Float64() float64 {
	var buf [8]byte
	if _, err := cryptorand.Read(buf[:]); err != nil {
		panic("dice: crypto/rand failure: " + err.Error())
	}
	return float64(binary.LittleEndian.Uint64(buf[:])>>11) / (1 << 53)
}
