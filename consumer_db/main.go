package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/xor-shift/prng/common"
	"github.com/xor-shift/prng/config"
	"github.com/xor-shift/prng/store"
	"github.com/xor-shift/prng/util/rng"
)

// recorder keeps the stream store in step with published batches.
type recorder struct {
	streams interface {
		Save(ctx context.Context, name string, state *rng.Xoroshiro128PState, steps uint64) error
	}
}

func (r *recorder) record(batch common.SampleBatch) error {
	state, err := rng.ParseXoroshiro128P(batch.State)
	if err != nil {
		return fmt.Errorf("batch for stream %s at step %d: %w", batch.Stream, batch.FirstStep, err)
	}

	if err = r.streams.Save(context.TODO(), batch.Stream, state, batch.NextStep()); err != nil {
		return err
	}

	log.Printf("%s: %d samples @ %d, state %s", batch.Stream, batch.Len(), batch.FirstStep, batch.State)

	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config failed: %s", err)
	}

	if !cfg.HasDB() || !cfg.HasAMQP() {
		log.Fatalln("consumer_db needs both DB_ADDRESS and AMQP_URL")
	}

	streams, err := store.Open(cfg.MySQL())
	if err != nil {
		log.Fatalln(err)
	}
	defer streams.Close()

	if err = streams.Init(context.TODO()); err != nil {
		log.Fatalf("creating the stream table failed: %s", err)
	}

	r := &recorder{streams: streams}

	consumer, err := common.NewAMQPConsumer(
		cfg.AMQPURL,
		cfg.AMQPExchange,
		"prng_samples_queue_db",
		"prng_samples_consumer_db",
		r.record,
		func(err error) { log.Printf("failed recording a batch: %s", err) })
	if err != nil {
		log.Fatalln(err)
	}

	if err = consumer.Start(); err != nil {
		log.Fatalln(err)
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	<-interrupt

	if err = consumer.Stop(); err != nil {
		log.Printf("stopping the consumer failed: %s", err)
	}
	consumer.Wait()

	if err = consumer.Close(); err != nil {
		log.Printf("closing the consumer failed: %s", err)
	}
}
