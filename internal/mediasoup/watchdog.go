package mediasoup

import (
	"context"
	"time"

	"github.com/prik73/mediasoup-concept-2/internal/log"
	"github.com/prik73/mediasoup-concept-2/internal/retry"
)

// Watchdog polls the worker's health endpoint. After maxFailures
// consecutive failures it calls onDown exactly once. The worker owns all
// live media state, so a dead worker means every session is already gone
// and the process should restart rather than limp along.
type Watchdog struct {
	client      Client
	interval    time.Duration
	maxFailures int
	onDown      func()
	logger      *log.Logger
	cancel      context.CancelFunc
	done        chan struct{}
}

func NewWatchdog(
	client Client,
	interval time.Duration,
	maxFailures int,
	onDown func(),
	logger *log.Logger,
) *Watchdog {
	if maxFailures <= 0 {
		maxFailures = 3
	}
	return &Watchdog{
		client:      client,
		interval:    interval,
		maxFailures: maxFailures,
		onDown:      onDown,
		logger:      logger,
		done:        make(chan struct{}),
	}
}

// WaitReady blocks until the worker answers a health probe, with backoff.
func (w *Watchdog) WaitReady(ctx context.Context) error {
	r := retry.New(w.logger, 500*time.Millisecond, 5*time.Second, time.Minute)
	return r.Do(ctx, func() error {
		return w.client.Health(ctx)
	})
}

func (w *Watchdog) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	go w.run(ctx)
}

func (w *Watchdog) Stop() {
	if w.cancel != nil {
		w.cancel()
		<-w.done
	}
}

func (w *Watchdog) run(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.client.Health(ctx); err != nil {
				failures++
				w.logger.Warn("worker health probe failed",
					log.Int("failures", failures),
					log.Error(err))
				if failures >= w.maxFailures {
					w.logger.Error("worker is down")
					if w.onDown != nil {
						w.onDown()
					}
					return
				}
				continue
			}
			failures = 0
		}
	}
}
