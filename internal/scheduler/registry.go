package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type task struct {
	cancel context.CancelFunc
}

// Registry supervises interval tasks keyed by owner (guild or channel id).
// Starting a key again replaces the previous task; Close cancels everything
// and waits for the loops to drain.
type Registry struct {
	logger *zap.Logger

	mu     sync.Mutex
	tasks  map[string]*task
	group  *errgroup.Group
	ctx    context.Context
	cancel context.CancelFunc
	closed bool
}

func NewRegistry(logger *zap.Logger) *Registry {
	ctx, cancel := context.WithCancel(context.Background())
	group, ctx := errgroup.WithContext(ctx)
	return &Registry{
		logger: logger,
		tasks:  make(map[string]*task),
		group:  group,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start runs fn every interval until the key is stopped or the registry
// closes. fn errors are logged, not fatal to the loop.
func (r *Registry) Start(key string, interval time.Duration, fn func(ctx context.Context) error) {
	r.register(key, func(taskCtx context.Context) {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-taskCtx.Done():
				return
			case <-ticker.C:
				if err := fn(taskCtx); err != nil {
					r.logger.Warn("scheduled task failed", zap.String("key", key), zap.Error(err))
				}
			}
		}
	})
}

// StartOnce runs fn a single time after delay unless cancelled first.
func (r *Registry) StartOnce(key string, delay time.Duration, fn func(ctx context.Context) error) {
	r.register(key, func(taskCtx context.Context) {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-taskCtx.Done():
		case <-timer.C:
			if err := fn(taskCtx); err != nil {
				r.logger.Warn("scheduled task failed", zap.String("key", key), zap.Error(err))
			}
		}
	})
}

func (r *Registry) register(key string, loop func(ctx context.Context)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	if previous, ok := r.tasks[key]; ok {
		previous.cancel()
	}

	taskCtx, cancel := context.WithCancel(r.ctx)
	t := &task{cancel: cancel}
	r.tasks[key] = t

	r.group.Go(func() error {
		defer r.remove(key, t)
		loop(taskCtx)
		return nil
	})
}

// Stop cancels the task for key, reporting whether one was running.
func (r *Registry) Stop(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[key]
	if !ok {
		return false
	}
	t.cancel()
	delete(r.tasks, key)
	return true
}

// Active reports whether a task is registered for key.
func (r *Registry) Active(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.tasks[key]
	return ok
}

// Close cancels all tasks and waits for their loops to exit.
func (r *Registry) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.cancel()
	_ = r.group.Wait()
}

func (r *Registry) remove(key string, t *task) {
	t.cancel()
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.tasks[key]; ok && current == t {
		delete(r.tasks, key)
	}
}
