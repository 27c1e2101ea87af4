package scheduler

import (
	"context"
	"time"

	"leadhunt-engine/internal/logger"
)

type Task func(ctx context.Context) error

// Every runs task once immediately and then on each tick until ctx is done.
func Every(ctx context.Context, log logger.Logger, interval time.Duration, name string, task Task) {
	if log == nil {
		log = logger.NewNop()
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	run := func() {
		if err := task(ctx); err != nil {
			log.Warn("scheduled task failed", logger.String("task", name), logger.Error(err))
		}
	}

	// run immediately
	go run()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			run()
		}
	}
}
