package shutdown

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/yndnr/docmesh-go/internal/telemetry/logger"
)

type hook struct {
	name string
	fn   func(context.Context) error
}

// Handler runs named teardown steps once the process is asked to stop.
type Handler struct {
	timeout time.Duration
	logger  logger.Logger

	stopCtx context.Context
	stop    context.CancelCauseFunc

	mu    sync.Mutex
	hooks []hook

	once sync.Once
	done chan struct{}
}

// NewHandler creates a handler whose hooks share a deadline of timeout.
// A nil logger discards output.
func NewHandler(timeout time.Duration, l logger.Logger) *Handler {
	if l == nil {
		l = logger.Nop()
	}
	ctx, cancel := context.WithCancelCause(context.Background())
	return &Handler{
		timeout: timeout,
		logger:  l,
		stopCtx: ctx,
		stop:    cancel,
		done:    make(chan struct{}),
	}
}

// OnShutdown registers fn under name. Hooks run last registered first.
func (h *Handler) OnShutdown(name string, fn func(context.Context) error) {
	h.mu.Lock()
	h.hooks = append(h.hooks, hook{name: name, fn: fn})
	h.mu.Unlock()
}

// Trigger asks Wait to return as if a signal had arrived. The first
// reason wins.
func (h *Handler) Trigger(reason string) {
	h.stop(errors.New(reason))
}

// Wait blocks until SIGINT, SIGTERM or Trigger and then runs the hooks.
func (h *Handler) Wait() error {
	ctx, unnotify := signal.NotifyContext(h.stopCtx, syscall.SIGINT, syscall.SIGTERM)
	<-ctx.Done()
	unnotify()

	if cause := context.Cause(h.stopCtx); cause != nil {
		h.logger.Info("shutdown triggered", "reason", cause.Error())
	} else {
		h.logger.Info("shutdown signal received")
	}

	runCtx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()
	return h.Run(runCtx)
}

// Run executes every hook even if some fail and returns their joined
// errors. Only the first call does anything.
func (h *Handler) Run(ctx context.Context) error {
	var err error
	h.once.Do(func() {
		defer close(h.done)

		h.mu.Lock()
		hooks := append([]hook(nil), h.hooks...)
		h.mu.Unlock()

		var errs []error
		for i := len(hooks) - 1; i >= 0; i-- {
			hk := hooks[i]
			start := time.Now()
			if e := hk.fn(ctx); e != nil {
				h.logger.Error("shutdown hook failed", "hook", hk.name, "error", e)
				errs = append(errs, fmt.Errorf("%s: %w", hk.name, e))
				continue
			}
			h.logger.Debug("shutdown hook finished", "hook", hk.name, "duration", time.Since(start))
		}
		err = errors.Join(errs...)
	})
	return err
}

// Done is closed once Run has finished.
func (h *Handler) Done() <-chan struct{} {
	return h.done
}
