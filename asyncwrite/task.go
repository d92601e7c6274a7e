package asyncwrite

import (
	"context"
	"time"

	"github.com/code19m/errx"
)

// Task is the pending result of one submitted write.
type Task[E any] struct {
	id      string
	timeout time.Duration
	done    chan struct{}
	result  *E
	err     error
}

func newTask[E any](id string, timeout time.Duration) *Task[E] {
	return &Task[E]{
		id:      id,
		timeout: timeout,
		done:    make(chan struct{}),
	}
}

// ID identifies the write in logs.
func (t *Task[E]) ID() string {
	return t.id
}

// Done is closed once the write finished, successfully or not.
func (t *Task[E]) Done() <-chan struct{} {
	return t.done
}

// Await blocks until the write finished, the configured timeout elapsed or ctx ends.
// Store failures are returned as they are. Running out of time, from either the timeout
// or ctx, fails with CodeAsyncTimeout.
func (t *Task[E]) Await(ctx context.Context) (*E, error) {
	timer := time.NewTimer(t.timeout)
	defer timer.Stop()

	select {
	case <-t.done:
		return t.result, t.err
	case <-timer.C:
		return nil, errx.New(
			"asynchronous write did not complete in time",
			errx.WithCode(CodeAsyncTimeout),
			errx.WithType(errx.T_Internal),
			errx.WithDetails(errx.D{"task_id": t.id, "timeout": t.timeout.String()}),
		)
	case <-ctx.Done():
		return nil, errx.Wrap(
			ctx.Err(),
			errx.WithCode(CodeAsyncTimeout),
			errx.WithType(errx.T_Internal),
			errx.WithDetails(errx.D{"task_id": t.id}),
		)
	}
}

func (t *Task[E]) finish(result *E, err error) {
	t.result, t.err = result, err
	close(t.done)
}

func closedError(id string) error {
	return errx.New(
		"asynchronous writer is closed",
		errx.WithCode(CodeWriterClosed),
		errx.WithType(errx.T_Internal),
		errx.WithDetails(errx.D{"task_id": id}),
	)
}
