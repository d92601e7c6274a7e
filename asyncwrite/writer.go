// Package asyncwrite runs repository writes in the background and lets the caller
// wait for them with a bound.
//
// Writes travel through an in-process watermill channel to a single consumer that
// performs them one at a time. The channel delivers each message on its own
// goroutine, so writes submitted close together may reach the store in any order.
// Submit never blocks on the store: it returns a Task the caller awaits.
package asyncwrite

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/code19m/errx"
	"github.com/creasty/defaults"

	"github.com/rise-and-shine/entityrepo/observability/logger"
)

// WriteFunc stores one entity, typically a repository Create.
type WriteFunc[E any] func(ctx context.Context, entity *E) (*E, error)

// Writer performs writes submitted from any goroutine.
type Writer[E any] struct {
	cfg    Config
	write  WriteFunc[E]
	pubsub *gochannel.GoChannel
	log    logger.Logger

	mu      sync.RWMutex
	closed  bool
	pending map[string]*Task[E]

	consumerDone chan struct{}
}

type Option func(*options)

type options struct {
	log logger.Logger
}

// WithLogger sets the logger. Defaults to the global logger named "asyncwrite".
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

// New starts a Writer that stores entities with write.
// Zero values in cfg are replaced by their defaults.
func New[E any](write WriteFunc[E], cfg Config, opts ...Option) (*Writer[E], error) {
	if err := defaults.Set(&cfg); err != nil {
		return nil, errx.Wrap(err)
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Named("asyncwrite")
	}

	pubsub := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer: cfg.Buffer,
			PreserveContext:     true,
		},
		newLoggerAdapter(o.log),
	)

	messages, err := pubsub.Subscribe(context.Background(), cfg.Topic)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	w := &Writer[E]{
		cfg:          cfg,
		write:        write,
		pubsub:       pubsub,
		log:          o.log,
		pending:      make(map[string]*Task[E]),
		consumerDone: make(chan struct{}),
	}
	go w.consume(messages)

	return w, nil
}

// Submit queues entity for writing. The entity is copied: later changes by the caller
// do not affect the write. The write is not cancelled when ctx is, but the
// values carried by ctx reach the store call.
func (w *Writer[E]) Submit(ctx context.Context, entity *E) *Task[E] {
	id := watermill.NewUUID()
	task := newTask[E](id, w.cfg.Timeout)

	payload, err := json.Marshal(entity)
	if err != nil {
		task.finish(nil, errx.Wrap(err, errx.WithDetails(errx.D{"task_id": id})))
		return task
	}

	msg := message.NewMessage(id, payload)
	msg.SetContext(context.WithoutCancel(ctx))

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		task.finish(nil, closedError(id))
		return task
	}
	w.pending[id] = task
	w.mu.Unlock()

	if err = w.pubsub.Publish(w.cfg.Topic, msg); err != nil {
		if t := w.take(id); t != nil {
			t.finish(nil, errx.Wrap(err, errx.WithCode(CodeWriterClosed), errx.WithDetails(errx.D{"task_id": id})))
		}
	}

	return task
}

// Close stops the consumer. Writes not yet started fail with CodeWriterClosed;
// a write in progress is allowed to finish.
func (w *Writer[E]) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	err := w.pubsub.Close()
	<-w.consumerDone

	w.mu.Lock()
	pending := w.pending
	w.pending = make(map[string]*Task[E])
	w.mu.Unlock()

	for id, task := range pending {
		task.finish(nil, closedError(id))
	}
	if len(pending) > 0 {
		w.log.With("dropped", len(pending)).Warn("async writer closed with queued writes")
	}

	return errx.Wrap(err)
}

func (w *Writer[E]) consume(messages <-chan *message.Message) {
	defer close(w.consumerDone)

	for msg := range messages {
		w.handle(msg)
		msg.Ack()
	}
}

func (w *Writer[E]) handle(msg *message.Message) {
	task := w.take(msg.UUID)
	if task == nil {
		return
	}
	if w.isClosed() {
		task.finish(nil, closedError(task.id))
		return
	}

	var entity E
	if err := json.Unmarshal(msg.Payload, &entity); err != nil {
		task.finish(nil, errx.Wrap(err, errx.WithDetails(errx.D{"task_id": task.id})))
		return
	}

	ctx := msg.Context()
	result, err := w.write(ctx, &entity)
	if err != nil {
		w.log.WithContext(ctx).With("task_id", task.id).Errorx(err)
	}
	task.finish(result, err)
}

func (w *Writer[E]) take(id string) *Task[E] {
	w.mu.Lock()
	defer w.mu.Unlock()

	task, ok := w.pending[id]
	if !ok {
		return nil
	}
	delete(w.pending, id)
	return task
}

func (w *Writer[E]) isClosed() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.closed
}
