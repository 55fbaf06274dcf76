package feed

// mulberry32 is a small 32-bit PRNG with good distribution for its size.
// The same construction runs client-side, so the permutation a viewer sees
// is reproducible anywhere from the session seed alone.
type mulberry32 struct {
	state uint32
}

func newMulberry32(seed uint32) *mulberry32 {
	return &mulberry32{state: seed}
}

func (r *mulberry32) next() uint32 {
	r.state += 0x6D2B79F5
	z := r.state
	z = (z ^ (z >> 15)) * (z | 1)
	z ^= z + (z^(z>>7))*(z|61)
	return z ^ (z >> 14)
}

// float64 returns a value in [0, 1)
func (r *mulberry32) float64() float64 {
	return float64(r.next()) / 4294967296.0
}

// SeededShuffle permutes items in place with a Fisher-Yates shuffle driven
// by a Mulberry32 generator. The same (items, seed) pair always produces
// the same permutation.
func SeededShuffle[T any](items []T, seed uint32) []T {
	rng := newMulberry32(seed)
	for i := len(items) - 1; i > 0; i-- {
		j := int(rng.float64() * float64(i+1))
		items[i], items[j] = items[j], items[i]
	}
	return items
}
