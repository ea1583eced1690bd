package common

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// SampleBatch is one draw from a named stream, as sent over AMQP.
//
// FirstStep is the number of raw outputs the stream had produced before
// this batch. State is the generator state after the batch.
type SampleBatch struct {
	Stream    string    `json:"stream"`
	FirstStep uint64    `json:"firstStep"`
	Raw       []uint64  `json:"raw"`
	Values    []float64 `json:"values"`
	State     string    `json:"state"`
}

func (b SampleBatch) Len() int {
	if len(b.Raw) > len(b.Values) {
		return len(b.Raw)
	}

	return len(b.Values)
}

// NextStep is the step counter after the batch has been drawn.
func (b SampleBatch) NextStep() uint64 {
	return b.FirstStep + uint64(b.Len())
}

func EncodeBatch(batch SampleBatch) ([]byte, error) {
	var buffer bytes.Buffer

	if err := gob.NewEncoder(&buffer).Encode(batch); err != nil {
		return nil, fmt.Errorf("encoding a batch with gob: %w", err)
	}

	return buffer.Bytes(), nil
}

func DecodeBatch(body []byte) (SampleBatch, error) {
	var batch SampleBatch

	if err := gob.NewDecoder(bytes.NewReader(body)).Decode(&batch); err != nil {
		return batch, fmt.Errorf("decoding a batch with gob: %w", err)
	}

	return batch, nil
}
