package rng

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/xor-shift/prng/util"
)

var (
	// DefaultSeed is the seed pair used when the caller has no preference.
	DefaultSeed = [2]uint64{125, 234523}

	ErrZeroState    = errors.New("xoroshiro128+ state must not be all zero")
	ErrBadStateText = errors.New("malformed xoroshiro128+ state text")
)

// Xoroshiro128PState is the full state of a xoroshiro128+ generator.
//
// It is plain data and does no locking; callers sharing one state between
// goroutines must serialize access themselves. An all-zero state is a
// fixed point of the transition and only ever yields zeros.
type Xoroshiro128PState struct {
	State [2]uint64
}

func NewXoroshiro128P(s0, s1 uint64) (*Xoroshiro128PState, error) {
	if s0 == 0 && s1 == 0 {
		return nil, ErrZeroState
	}

	return &Xoroshiro128PState{
		State: [2]uint64{s0, s1},
	}, nil
}

func NewDefaultXoroshiro128P() *Xoroshiro128PState {
	return &Xoroshiro128PState{
		State: DefaultSeed,
	}
}

// Next returns the next raw output and advances the state by one step.
func (state *Xoroshiro128PState) Next() uint64 {
	return xoroshiro128PPermuteState(state.State[:])
}

func (state *Xoroshiro128PState) Sample(n int) []float64 {
	return Sample(n, state)
}

// Jump advances the state by 2^64 steps. Calling it repeatedly on one
// seed produces starting points for non-overlapping streams.
func (state *Xoroshiro128PState) Jump() {
	jump := [2]uint64{0xbeac0467eba5facb, 0xd86b048b86aa9922}

	jumpImpl(state.State[:], jump[:], xoroshiro128PPermuteState)
}

// Split returns a copy of the current state, then jumps the receiver past
// the 2^64 outputs the copy may use.
func (state *Xoroshiro128PState) Split() *Xoroshiro128PState {
	ret := &Xoroshiro128PState{State: state.State}
	state.Jump()

	return ret
}

// Uint64 makes the state usable as a math/rand Source64.
func (state *Xoroshiro128PState) Uint64() uint64 {
	return state.Next()
}

func (state *Xoroshiro128PState) Int63() int64 {
	return int64(state.Next() >> 1)
}

// Seed resets the state to (seed, 0), or to DefaultSeed if seed is zero.
func (state *Xoroshiro128PState) Seed(seed int64) {
	if seed == 0 {
		state.State = DefaultSeed
		return
	}

	state.State = [2]uint64{uint64(seed), 0}
}

// String formats the state as 32 hex digits, s0 first.
func (state *Xoroshiro128PState) String() string {
	return util.ArrayToString(state.State[:])
}

func (state *Xoroshiro128PState) MarshalText() ([]byte, error) {
	return []byte(state.String()), nil
}

func (state *Xoroshiro128PState) UnmarshalText(text []byte) error {
	if len(text) != 32 {
		return fmt.Errorf("%w: expected 32 hex digits, got %d", ErrBadStateText, len(text))
	}

	var parsed [2]uint64
	for i := range parsed {
		v, err := strconv.ParseUint(string(text[i*16:(i+1)*16]), 16, 64)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrBadStateText, err)
		}
		parsed[i] = v
	}

	if parsed[0] == 0 && parsed[1] == 0 {
		return ErrZeroState
	}

	state.State = parsed

	return nil
}

// ParseXoroshiro128P parses the format produced by String.
func ParseXoroshiro128P(text string) (*Xoroshiro128PState, error) {
	state := &Xoroshiro128PState{}
	if err := state.UnmarshalText([]byte(text)); err != nil {
		return nil, err
	}

	return state, nil
}
