package sampler

import "golang.org/x/exp/rand"

// golden is the 64-bit golden-ratio increment used to spread worker seeds.
const golden = 0x9E3779B97F4A7C15

// NewStream returns a random stream for one worker. Streams for distinct
// workers under the same seed are independently seeded and must not be
// shared between goroutines.
func NewStream(seed uint64, worker int) *rand.Rand {
	return rand.New(rand.NewSource(seed + uint64(worker)*golden))
}

// Fixed replays a fixed sequence of draws, cycling when exhausted. It
// pins selection at breakpoint boundaries in tests and reproductions.
type Fixed struct {
	vals []float64
	next int
}

// NewFixed returns a source replaying vals.
func NewFixed(vals ...float64) *Fixed {
	return &Fixed{vals: vals}
}

// Float64 implements Source.
func (f *Fixed) Float64() float64 {
	if len(f.vals) == 0 {
		return 0
	}
	v := f.vals[f.next%len(f.vals)]
	f.next++
	return v
}
