package event

import (
	"sync"
)

// tickPool recycles Tick events on the high-volume ingest path.
var tickPool = sync.Pool{
	New: func() any {
		return &Tick{}
	},
}

// AcquireTick returns a zeroed Tick from the pool.
func AcquireTick() *Tick {
	return tickPool.Get().(*Tick)
}

// ReleaseTick resets the Tick and returns it to the pool.
// The caller must not touch the event after release.
func ReleaseTick(t *Tick) {
	*t = Tick{}
	tickPool.Put(t)
}

// Warmup pre-populates the pool to avoid allocation bursts at startup.
func Warmup() {
	const warmupSize = 128
	ticks := make([]*Tick, 0, warmupSize)
	for i := 0; i < warmupSize; i++ {
		ticks = append(ticks, AcquireTick())
	}
	for _, t := range ticks {
		ReleaseTick(t)
	}
}
