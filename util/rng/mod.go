package rng

import "math"

// Source is anything that yields successive raw 64-bit outputs.
type Source interface {
	Next() uint64
}

// maxRaw is the divisor used to normalize raw outputs. Dividing by 2^64-1
// rather than 2^64 means the largest raw output maps to exactly 1.0, so
// samples lie in the closed interval [0, 1].
const maxRaw = float64(math.MaxUint64)

// ToFloat normalizes a raw output to [0, 1].
func ToFloat(raw uint64) float64 {
	return float64(raw) / maxRaw
}

// Sample draws n values from src, in order. n <= 0 draws nothing.
func Sample(n int, src Source) []float64 {
	if n <= 0 {
		return []float64{}
	}

	ret := make([]float64, n)
	SampleInto(ret, src)

	return ret
}

// SampleInto fills dst with len(dst) successive draws from src.
func SampleInto(dst []float64, src Source) {
	for i := range dst {
		dst[i] = ToFloat(src.Next())
	}
}

// jumpImpl advances state as if permute had been called once for every
// set bit position of the jump polynomial in table.
func jumpImpl(state []uint64, table []uint64, permute func([]uint64) uint64) {
	s := make([]uint64, len(state))

	for i := 0; i < len(table); i++ {
		for b := 0; b < 64; b++ {
			if table[i]&(uint64(1)<<b) != 0 {
				for j := 0; j < len(state); j++ {
					s[j] ^= state[j]
				}
			}
			_ = permute(state)
		}
	}

	copy(state, s)
}
