package utils

// -----------------------------------------------------------------------------

// EpsilonPrice is the minimum tradable price. Every price mutation clamps to
// this floor so downstream percentage calculations never divide by zero.
const EpsilonPrice = 0.01
