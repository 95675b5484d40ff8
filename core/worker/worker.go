package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/stamp-indexer/common/errs"
	"github.com/gaze-network/stamp-indexer/pkg/logger"
	"github.com/gaze-network/stamp-indexer/pkg/logger/slogx"
	"golang.org/x/sync/errgroup"
)

const defaultShutdownTimeout = 180 * time.Second

// Worker is the long running part of a module, started by the run command.
type Worker interface {
	Name() string
	Run(ctx context.Context) error
	Shutdown() error
	ShutdownWithContext(ctx context.Context) error
}

// Task is a background job of a module. Errors are logged and never stop the worker.
type Task struct {
	Name string

	// Interval between runs. Zero runs the task once on start.
	Interval time.Duration

	Run func(ctx context.Context) error
}

// Runner runs the tasks of a module until it is shut down or its context is done.
type Runner struct {
	name  string
	tasks []Task

	quitOnce sync.Once
	quit     chan struct{}
	done     chan struct{}

	// run after every task returned
	cleanupFuncs []func(context.Context) error
}

var _ Worker = (*Runner)(nil)

func New(name string, tasks ...Task) *Runner {
	return &Runner{
		name:  name,
		tasks: tasks,
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}
}

// OnShutdown registers cleanups run after every task stopped, in registration order.
func (r *Runner) OnShutdown(fn func(context.Context) error) {
	r.cleanupFuncs = append(r.cleanupFuncs, fn)
}

func (r *Runner) Name() string {
	return r.name
}

func (r *Runner) Shutdown() error {
	return r.ShutdownWithContext(context.Background())
}

func (r *Runner) ShutdownWithTimeout(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return r.ShutdownWithContext(ctx)
}

// ShutdownWithContext stops the tasks and waits for Run to return.
func (r *Runner) ShutdownWithContext(ctx context.Context) (err error) {
	r.quitOnce.Do(func() {
		close(r.quit)
		select {
		case <-r.done:
		case <-time.After(defaultShutdownTimeout):
			err = errors.Wrapf(errs.Timeout, "%s worker shutdown timeout", r.name)
		case <-ctx.Done():
			err = errors.Wrapf(ctx.Err(), "%s worker shutdown context canceled", r.name)
		}
	})
	return
}

func (r *Runner) Run(ctx context.Context) error {
	defer close(r.done)
	ctx = logger.WithContext(ctx, slog.String("package", "worker"), slog.String("worker", r.name))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-r.quit:
			logger.InfoContext(ctx, "Got quit signal, stopping worker")
			cancel()
		case <-ctx.Done():
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	for _, task := range r.tasks {
		task := task
		g.Go(func() error {
			r.runTask(gctx, task)
			return nil
		})
	}
	_ = g.Wait()

	// wait for the quit signal so one-shot tasks don't stop the application
	select {
	case <-r.quit:
	case <-ctx.Done():
	}

	var cleanupErr error
	for _, cleanup := range r.cleanupFuncs {
		if err := cleanup(context.WithoutCancel(ctx)); err != nil {
			logger.ErrorContext(ctx, "Failed to clean up worker", slogx.Error(err))
			cleanupErr = errors.CombineErrors(cleanupErr, err)
		}
	}
	return errors.WithStack(cleanupErr)
}

func (r *Runner) runTask(ctx context.Context, task Task) {
	ctx = logger.WithContext(ctx, slog.String("task", task.Name))

	run := func() {
		start := time.Now()
		if err := task.Run(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.ErrorContext(ctx, "Task failed", slogx.Error(err), slogx.Duration("duration", time.Since(start)))
			return
		}
		logger.DebugContext(ctx, "Task completed", slogx.Duration("duration", time.Since(start)))
	}

	run()
	if task.Interval <= 0 {
		return
	}

	ticker := time.NewTicker(task.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run()
		}
	}
}
