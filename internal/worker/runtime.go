package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxTasks bounds concurrently running tasks.
const DefaultMaxTasks = 16

var (
	// ErrNotRunning is returned when spawning on a runtime that is not started
	ErrNotRunning = errors.New("runtime is not running")
	// ErrRuntimeBusy is returned when the task limit is reached
	ErrRuntimeBusy = errors.New("runtime task limit reached")
)

// Runtime executes background tasks under a shared context.
type Runtime struct {
	maxTasks int
	logger   *zap.Logger

	mu      sync.Mutex
	group   *errgroup.Group
	ctx     context.Context
	cancel  context.CancelFunc
	running bool
}

// New creates a stopped runtime
func New(maxTasks int, logger *zap.Logger) *Runtime {
	if maxTasks <= 0 {
		maxTasks = DefaultMaxTasks
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runtime{
		maxTasks: maxTasks,
		logger:   logger,
	}
}

// Start makes the runtime accept tasks. Tasks get a context derived from parent.
func (r *Runtime) Start(parent context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return fmt.Errorf("runtime already started")
	}

	r.ctx, r.cancel = context.WithCancel(parent)
	r.group = new(errgroup.Group)
	r.group.SetLimit(r.maxTasks)
	r.running = true

	r.logger.Info("runtime started", zap.Int("max_tasks", r.maxTasks))
	return nil
}

// Running reports whether the runtime accepts tasks
func (r *Runtime) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Spawn runs task on the runtime. It never blocks: when the task limit is
// reached ErrRuntimeBusy is returned.
func (r *Runtime) Spawn(name string, task func(ctx context.Context)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return ErrNotRunning
	}

	ctx := r.ctx
	ok := r.group.TryGo(func() error {
		task(ctx)
		return nil
	})
	if !ok {
		r.logger.Warn("task rejected", zap.String("task", name), zap.Int("max_tasks", r.maxTasks))
		return ErrRuntimeBusy
	}

	r.logger.Debug("task spawned", zap.String("task", name))
	return nil
}

// Shutdown stops accepting tasks, cancels the task context and waits for
// running tasks until ctx is done.
func (r *Runtime) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = false
	r.cancel()
	group := r.group
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		_ = group.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("runtime stopped")
		return nil
	case <-ctx.Done():
		r.logger.Warn("runtime shutdown timed out")
		return fmt.Errorf("waiting for tasks: %w", ctx.Err())
	}
}
