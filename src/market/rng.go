package market

import (
	"math/rand"
	"time"
)

// -----------------------------------------------------------------------------
// Random sources. Every stochastic component receives one explicitly instead
// of reaching for an ambient generator, so tests can replay exact draws.
// -----------------------------------------------------------------------------

type SeededSource struct {
	r *rand.Rand
}

// -----------------------------------------------------------------------------

// NewSeededSource returns a deterministic source for the given seed.
func NewSeededSource(seed int64) *SeededSource {
	return &SeededSource{r: rand.New(rand.NewSource(seed))}
}

// -----------------------------------------------------------------------------

// NewTimeSource returns a source seeded from the wall clock.
func NewTimeSource() *SeededSource {
	return NewSeededSource(time.Now().UnixNano())
}

// -----------------------------------------------------------------------------

func (s *SeededSource) Float64() float64 {
	return s.r.Float64()
}

// -----------------------------------------------------------------------------

func (s *SeededSource) Intn(n int) int {
	return s.r.Intn(n)
}
