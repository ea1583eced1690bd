package rng

import "github.com/xor-shift/prng/util"

// permutes a [2]uint64 state according to xoroshiro128+ (55, 14, 36)
// https://xoroshiro.di.unimi.it/xoroshiro128plus.c (2016 revision)
//
// All arithmetic wraps modulo 2^64.
func xoroshiro128PPermuteState(s []uint64) (result uint64) {
	s0 := s[0]
	s1 := s[1]
	result = s0 + s1

	s1 ^= s0
	s[0] = util.RotL(s0, 55) ^ s1 ^ (s1 << 14)
	s[1] = util.RotL(s1, 36)

	return
}
