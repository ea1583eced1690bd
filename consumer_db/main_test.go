package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xor-shift/prng/common"
	"github.com/xor-shift/prng/util/rng"
)

type memStore map[string]uint64

func (m memStore) Save(_ context.Context, name string, _ *rng.Xoroshiro128PState, steps uint64) error {
	m[name] = steps
	return nil
}

func TestRecord(t *testing.T) {
	streams := memStore{}
	r := &recorder{streams: streams}

	state := rng.NewDefaultXoroshiro128P()
	batch := common.SampleBatch{
		Stream:    "dice",
		FirstStep: 10,
		Values:    state.Sample(4),
		State:     state.String(),
	}

	require.NoError(t, r.record(batch))
	assert.Equal(t, uint64(14), streams["dice"])

	batch.State = "00000000000000000000000000000000"
	assert.ErrorIs(t, r.record(batch), rng.ErrZeroState)
}
