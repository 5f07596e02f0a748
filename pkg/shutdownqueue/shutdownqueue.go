// Package shutdownqueue provides a LIFO queue of cleanup tasks drained once
// at the end of a process or run.
//
// Register tasks as resources are opened, then drain them with:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
//	defer cancel()
//	err := q.Shutdown(ctx)
//
// Tasks run once, in reverse order of registration. Panics are recovered.
// Shutdown is idempotent and returns an aggregated error via errors.Join.
package shutdownqueue

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Task is a shutdown function. It should honor ctx and return an error
// if it can't finish (or ctx is canceled).
type Task func(ctx context.Context) error

type Queue struct {
	mu     sync.Mutex
	tasks  []Task
	closed bool
}

func New() *Queue {
	return &Queue{tasks: make([]Task, 0, 8)}
}

// Add registers a task to be run on Shutdown, in LIFO order.
// If t is nil or shutdown has already started, Add does nothing.
func (q *Queue) Add(t Task) {
	if t == nil {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.tasks = append(q.tasks, t)
}

// Len reports the number of pending tasks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.tasks)
}

// Shutdown drains all registered tasks in LIFO order. Calls after the first
// are no-ops.
//
// If ctx is canceled mid-drain, Shutdown stops early and returns the context
// error joined with any task errors so far.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()

	if q.closed {
		q.mu.Unlock()

		return nil
	}

	q.closed = true
	tasks := q.tasks
	q.tasks = nil

	q.mu.Unlock()

	var errs []error

	for i := len(tasks) - 1; i >= 0; i-- {
		select {
		case <-ctx.Done():
			errs = append(errs, fmt.Errorf("shutdown canceled: %w", ctx.Err()))

			return errors.Join(errs...)
		default:
		}

		func(t Task) {
			defer func() {
				r := recover()
				if r != nil {
					errs = append(errs, fmt.Errorf("panic in shutdown task: %v", r))
				}
			}()

			err := t(ctx)
			if err != nil {
				errs = append(errs, err)
			}
		}(tasks[i])
	}

	return errors.Join(errs...)
}
