package market

// symbolBuffer is a bounded rolling window of prices for one symbol.
// It is owned by exactly one worker, so no locking is needed around
// mutation; arrival order is preserved and the oldest entry is evicted
// once the buffer is full.
type symbolBuffer struct {
	prices []float64
	head   int // next write position
	count  int

	lastSignal int
}

func newSymbolBuffer(capacity int) *symbolBuffer {
	return &symbolBuffer{
		prices: make([]float64, capacity),
	}
}

// push appends a price, evicting the oldest once at capacity.
func (b *symbolBuffer) push(price float64) {
	b.prices[b.head] = price
	b.head = (b.head + 1) % len(b.prices)
	if b.count < len(b.prices) {
		b.count++
	}
}

func (b *symbolBuffer) len() int {
	return b.count
}

// snapshot copies the window into a fresh slice in arrival order, oldest
// first, so indicator functions can run without touching worker state.
func (b *symbolBuffer) snapshot() []float64 {
	out := make([]float64, b.count)
	start := b.head - b.count
	if start < 0 {
		start += len(b.prices)
	}
	for i := 0; i < b.count; i++ {
		out[i] = b.prices[(start+i)%len(b.prices)]
	}
	return out
}
