package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/xor-shift/prng/common"
	"github.com/xor-shift/prng/util/rng"
)

// MaxSampleCount caps a single draw.
const MaxSampleCount = 1 << 16

var ErrBadCount = errors.New("sample count out of range")

type Publisher interface {
	Publish(batch common.SampleBatch) error
}

type StreamStore interface {
	Save(ctx context.Context, name string, state *rng.Xoroshiro128PState, steps uint64) error
}

// State owns one generator and serializes every access to it.
type State struct {
	mu sync.Mutex

	stream string
	gen    rng.Xoroshiro128PState
	steps  uint64
	jumps  uint64

	publisher Publisher
	store     StreamStore
}

// StateSnapshot is used to roll back a draw that could not be persisted.
type StateSnapshot struct {
	State string `json:"state"`
	Steps uint64 `json:"steps"`
	Jumps uint64 `json:"jumps"`

	gen [2]uint64
}

func NewState(stream string, gen *rng.Xoroshiro128PState, steps uint64) *State {
	return &State{
		stream: stream,
		gen:    *gen,
		steps:  steps,
	}
}

func (state *State) WithPublisher(publisher Publisher) *State {
	state.publisher = publisher
	return state
}

func (state *State) WithStore(store StreamStore) *State {
	state.store = store
	return state
}

func (state *State) takeSnapshot() StateSnapshot {
	return StateSnapshot{
		State: state.gen.String(),
		Steps: state.steps,
		Jumps: state.jumps,
		gen:   state.gen.State,
	}
}

func (state *State) loadSnapshot(snapshot StateSnapshot) {
	state.gen.State = snapshot.gen
	state.steps = snapshot.Steps
	state.jumps = snapshot.Jumps
}

func (state *State) Snapshot() StateSnapshot {
	state.mu.Lock()
	defer state.mu.Unlock()

	return state.takeSnapshot()
}

// persist saves the current state, restoring snapshot if that fails.
// Must be called with mu held.
func (state *State) persist(ctx context.Context, snapshot StateSnapshot) error {
	if state.store == nil {
		return nil
	}

	if err := state.store.Save(ctx, state.stream, &state.gen, state.steps); err != nil {
		state.loadSnapshot(snapshot)
		return err
	}

	return nil
}

// Draw takes n successive outputs from the generator.
func (state *State) Draw(ctx context.Context, n int) (common.SampleBatch, error) {
	if n < 0 || n > MaxSampleCount {
		return common.SampleBatch{}, fmt.Errorf("%w (got %d, max %d)", ErrBadCount, n, MaxSampleCount)
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	snapshot := state.takeSnapshot()

	batch := common.SampleBatch{
		Stream:    state.stream,
		FirstStep: state.steps,
		Raw:       make([]uint64, n),
		Values:    make([]float64, n),
	}

	for i := 0; i < n; i++ {
		batch.Raw[i] = state.gen.Next()
		batch.Values[i] = rng.ToFloat(batch.Raw[i])
	}

	state.steps += uint64(n)
	batch.State = state.gen.String()

	if n == 0 {
		return batch, nil
	}

	if err := state.persist(ctx, snapshot); err != nil {
		return common.SampleBatch{}, err
	}

	if state.publisher != nil {
		if err := state.publisher.Publish(batch); err != nil {
			log.Printf("publishing a batch of %d samples failed: %s", n, err)
		}
	}

	return batch, nil
}

func (state *State) Jump(ctx context.Context) (StateSnapshot, error) {
	state.mu.Lock()
	defer state.mu.Unlock()

	snapshot := state.takeSnapshot()

	state.gen.Jump()
	state.jumps++

	if err := state.persist(ctx, snapshot); err != nil {
		return StateSnapshot{}, err
	}

	return state.takeSnapshot(), nil
}

// Reset replaces the generator state with the one encoded in text.
func (state *State) Reset(ctx context.Context, text string) (StateSnapshot, error) {
	parsed, err := rng.ParseXoroshiro128P(text)
	if err != nil {
		return StateSnapshot{}, err
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	snapshot := state.takeSnapshot()

	state.gen = *parsed
	state.steps = 0
	state.jumps = 0

	if err := state.persist(ctx, snapshot); err != nil {
		return StateSnapshot{}, err
	}

	return state.takeSnapshot(), nil
}
