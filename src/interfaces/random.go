package interfaces

// -----------------------------------------------------------------------------
// IRandomSource is the injected randomness capability. Every stochastic
// component draws through it, so a seeded source replays deterministically
// in tests.
// -----------------------------------------------------------------------------

type IRandomSource interface {

	// Float64 returns a uniform draw in [0, 1).
	Float64() float64

	// -----------------------------------------------------------------------------

	// Intn returns a uniform draw in [0, n). n must be > 0.
	Intn(n int) int
}
