package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xor-shift/prng/common"
	"github.com/xor-shift/prng/util/rng"
)

type fakeStore struct {
	saved map[string]string
	steps map[string]uint64
	err   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{saved: map[string]string{}, steps: map[string]uint64{}}
}

func (s *fakeStore) Save(_ context.Context, name string, state *rng.Xoroshiro128PState, steps uint64) error {
	if s.err != nil {
		return s.err
	}

	s.saved[name] = state.String()
	s.steps[name] = steps

	return nil
}

type fakePublisher struct {
	batches []common.SampleBatch
	err     error
}

func (p *fakePublisher) Publish(batch common.SampleBatch) error {
	p.batches = append(p.batches, batch)
	return p.err
}

func TestDrawFollowsGenerator(t *testing.T) {
	state := NewState("test", rng.NewDefaultXoroshiro128P(), 0)
	reference := rng.NewDefaultXoroshiro128P()

	first, err := state.Draw(context.Background(), 3)
	require.NoError(t, err)
	second, err := state.Draw(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, uint64(0), first.FirstStep)
	assert.Equal(t, uint64(3), second.FirstStep)
	assert.Equal(t, uint64(234648), first.Raw[0])

	all := append(first.Raw, second.Raw...)
	for i, v := range all {
		assert.Equal(t, reference.Next(), v, "draw %d", i)
	}

	assert.Equal(t, reference.String(), second.State)
	assert.Equal(t, uint64(5), state.Snapshot().Steps)
}

func TestDrawBounds(t *testing.T) {
	state := NewState("test", rng.NewDefaultXoroshiro128P(), 0)

	_, err := state.Draw(context.Background(), -1)
	assert.ErrorIs(t, err, ErrBadCount)

	_, err = state.Draw(context.Background(), MaxSampleCount+1)
	assert.ErrorIs(t, err, ErrBadCount)

	batch, err := state.Draw(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, batch.Values)

	snapshot := state.Snapshot()
	assert.Equal(t, uint64(0), snapshot.Steps)
	assert.Equal(t, "000000000000007d000000000003941b", snapshot.State)
}

func TestDrawPersistsAndPublishes(t *testing.T) {
	streams := newFakeStore()
	publisher := &fakePublisher{err: errors.New("broker down")}

	state := NewState("dice", rng.NewDefaultXoroshiro128P(), 0).
		WithStore(streams).
		WithPublisher(publisher)

	batch, err := state.Draw(context.Background(), 4)
	require.NoError(t, err)

	assert.Equal(t, batch.State, streams.saved["dice"])
	assert.Equal(t, uint64(4), streams.steps["dice"])
	require.Len(t, publisher.batches, 1)
	assert.Equal(t, batch, publisher.batches[0])
}

func TestDrawRollsBackOnStoreFailure(t *testing.T) {
	streams := newFakeStore()
	streams.err = errors.New("db down")

	state := NewState("dice", rng.NewDefaultXoroshiro128P(), 0).WithStore(streams)
	before := state.Snapshot()

	_, err := state.Draw(context.Background(), 4)
	assert.ErrorIs(t, err, streams.err)
	assert.Equal(t, before, state.Snapshot())

	streams.err = nil
	batch, err := state.Draw(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(234648), batch.Raw[0])
}

func TestJumpAndReset(t *testing.T) {
	state := NewState("test", rng.NewDefaultXoroshiro128P(), 0)

	snapshot, err := state.Jump(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ba983b79616e539a4ad64a92e3974970", snapshot.State)
	assert.Equal(t, uint64(1), snapshot.Jumps)

	snapshot, err = state.Reset(context.Background(), "000000000000007d000000000003941b")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), snapshot.Jumps)

	_, err = state.Reset(context.Background(), "00000000000000000000000000000000")
	assert.ErrorIs(t, err, rng.ErrZeroState)

	_, err = state.Reset(context.Background(), "short")
	assert.ErrorIs(t, err, rng.ErrBadStateText)

	batch, err := state.Draw(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(234648), batch.Raw[0])
}
