package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/kataras/iris/v12"
	"github.com/xor-shift/prng/common"
	"github.com/xor-shift/prng/config"
	"github.com/xor-shift/prng/store"
	"github.com/xor-shift/prng/util/rng"
)

func countParam(ctx iris.Context) (int, error) {
	if !ctx.URLParamExists("n") {
		return 1, nil
	}

	return ctx.URLParamInt("n")
}

func badRequest(ctx iris.Context, err error) {
	ctx.StatusCode(iris.StatusBadRequest)
	_, _ = ctx.Text("bad request: %s", err)
}

func newApp(state *State) *iris.Application {
	app := iris.New()

	draw := func(ctx iris.Context) (common.SampleBatch, bool) {
		n, err := countParam(ctx)
		if err != nil {
			badRequest(ctx, err)
			return common.SampleBatch{}, false
		}

		batch, err := state.Draw(ctx.Request().Context(), n)
		if errors.Is(err, ErrBadCount) {
			badRequest(ctx, err)
			return batch, false
		}
		if err != nil {
			app.Logger().Warnf("draw of %d failed: %s", n, err)
			ctx.StatusCode(iris.StatusInternalServerError)
			return batch, false
		}

		return batch, true
	}

	app.Get("/sample", func(ctx iris.Context) {
		if batch, ok := draw(ctx); ok {
			_, _ = ctx.JSON(batch.Values)
		}
	})

	// raw outputs go out as decimal strings, JSON numbers lose precision past 2^53
	app.Get("/raw", func(ctx iris.Context) {
		if batch, ok := draw(ctx); ok {
			raw := make([]string, len(batch.Raw))
			for i, v := range batch.Raw {
				raw[i] = strconv.FormatUint(v, 10)
			}
			_, _ = ctx.JSON(raw)
		}
	})

	app.Get("/state", func(ctx iris.Context) {
		_, _ = ctx.JSON(state.Snapshot())
	})

	app.Post("/jump", func(ctx iris.Context) {
		snapshot, err := state.Jump(ctx.Request().Context())
		if err != nil {
			app.Logger().Warnf("jump failed: %s", err)
			ctx.StatusCode(iris.StatusInternalServerError)
			return
		}

		app.Logger().Printf("jumped stream %s (%d jumps)", state.stream, snapshot.Jumps)
		_, _ = ctx.JSON(snapshot)
	})

	app.Post("/reset", func(ctx iris.Context) {
		var body struct {
			State string `json:"state"`
		}

		if err := ctx.ReadJSON(&body); err != nil {
			badRequest(ctx, err)
			return
		}

		snapshot, err := state.Reset(ctx.Request().Context(), body.State)
		if errors.Is(err, rng.ErrBadStateText) || errors.Is(err, rng.ErrZeroState) {
			badRequest(ctx, err)
			return
		}
		if err != nil {
			app.Logger().Warnf("reset failed: %s", err)
			ctx.StatusCode(iris.StatusInternalServerError)
			return
		}

		app.Logger().Printf("reset stream %s to %s", state.stream, snapshot.State)
		_, _ = ctx.JSON(snapshot)
	})

	return app
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config failed: %s", err)
	}

	gen, err := cfg.NewGenerator()
	if err != nil {
		log.Fatalln(err)
	}

	state := NewState(cfg.StreamName, gen, 0)

	if cfg.HasDB() {
		streams, err := store.Open(cfg.MySQL())
		if err != nil {
			log.Fatalln(err)
		}
		defer streams.Close()

		if err = streams.Init(context.TODO()); err != nil {
			log.Fatalf("creating the stream table failed: %s", err)
		}

		saved, steps, err := streams.Load(context.TODO(), cfg.StreamName)
		switch {
		case err == nil:
			log.Printf("resuming stream %s at step %d", cfg.StreamName, steps)
			state = NewState(cfg.StreamName, saved, steps)
		case errors.Is(err, store.ErrNotFound):
			log.Printf("starting stream %s from seed %s", cfg.StreamName, gen)
		default:
			log.Fatalf("loading stream %s failed: %s", cfg.StreamName, err)
		}

		state.WithStore(streams)
	}

	if cfg.HasAMQP() {
		publisher, err := common.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Fatalf("connecting to amqp failed: %s", err)
		}
		defer publisher.Close()

		state.WithPublisher(publisher)
	}

	app := newApp(state)

	if err := app.Listen(fmt.Sprintf(":%d", cfg.HTTPPort)); err != nil {
		log.Fatalln(err)
	}
}
