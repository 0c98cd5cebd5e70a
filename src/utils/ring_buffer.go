package utils

// -----------------------------------------------------------------------------
// PriceHistory is a fixed-size circular buffer of prices.
// True ring buffer - no resizing on append, oldest entry evicted when full.
// -----------------------------------------------------------------------------

type PriceHistory struct {
	data     []float64
	capacity int
	index    int // Next write position
	size     int // Current number of elements
}

// -----------------------------------------------------------------------------

// NewPriceHistory creates a buffer with fixed capacity.
func NewPriceHistory(capacity int) *PriceHistory {
	if capacity <= 0 {
		capacity = 100 // Default live-display size
	}

	return &PriceHistory{
		data:     make([]float64, capacity),
		capacity: capacity,
	}
}

// -----------------------------------------------------------------------------

// Append adds a price, evicting the oldest entry when the buffer is full.
func (ph *PriceHistory) Append(price float64) {
	ph.data[ph.index] = price
	ph.index = (ph.index + 1) % ph.capacity

	if ph.size < ph.capacity {
		ph.size++
	}
}

// -----------------------------------------------------------------------------

// Latest returns the n most recent prices, oldest-first.
func (ph *PriceHistory) Latest(n int) []float64 {
	if ph.size == 0 || n <= 0 {
		return []float64{}
	}

	count := n
	if n > ph.size {
		count = ph.size
	}

	result := make([]float64, count)
	startIdx := (ph.index - count + ph.capacity) % ph.capacity
	for i := 0; i < count; i++ {
		result[i] = ph.data[(startIdx+i)%ph.capacity]
	}

	return result
}

// -----------------------------------------------------------------------------

// All returns every stored price in insertion order (oldest to newest).
func (ph *PriceHistory) All() []float64 {
	if ph.size == 0 {
		return []float64{}
	}

	result := make([]float64, ph.size)

	var startIdx int
	if ph.size == ph.capacity {
		// Buffer is full, oldest is at current index (wrap-around)
		startIdx = ph.index
	}

	for i := 0; i < ph.size; i++ {
		result[i] = ph.data[(startIdx+i)%ph.capacity]
	}

	return result
}

// -----------------------------------------------------------------------------

// Last returns the most recent price, or 0 when empty.
func (ph *PriceHistory) Last() float64 {
	if ph.size == 0 {
		return 0
	}
	return ph.data[(ph.index-1+ph.capacity)%ph.capacity]
}

// -----------------------------------------------------------------------------

// Size returns current number of elements
func (ph *PriceHistory) Size() int {
	return ph.size
}

// -----------------------------------------------------------------------------

// Capacity returns buffer capacity (fixed)
func (ph *PriceHistory) Capacity() int {
	return ph.capacity
}

// -----------------------------------------------------------------------------

// Clear resets the buffer
func (ph *PriceHistory) Clear() {
	ph.index = 0
	ph.size = 0
}
