package util

import (
	"fmt"
	"unsafe"
)

// RotL rotates x left by k bits. k is expected to be in [0, bit width];
// both ends of that range return x unchanged since Go shifts an unsigned
// value by its full width to zero. Larger k yields 0.
func RotL[T uint8 | uint16 | uint32 | uint64](x T, k uint) T {
	BitWidth := unsafe.Sizeof(x) * 8
	return (x << k) | (x >> (uint(BitWidth) - k))
}

// ArrayToString renders every element as zero-padded lowercase hex, concatenated.
func ArrayToString[T uint8 | uint16 | uint32 | uint64](arr []T) string {
	ret := ""

	for _, v := range arr {
		bitWidth := int(unsafe.Sizeof(v) * 8)
		ret += fmt.Sprintf("%0[1]*[2]x", bitWidth/4, v)
	}

	return ret
}
