package asyncwrite_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/code19m/errx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/rise-and-shine/entityrepo/asyncwrite"
)

type record struct {
	ID     string `json:"id"`
	NodeID string `json:"node_id"`
}

type store struct {
	mu      sync.Mutex
	records []record
}

func (s *store) create(_ context.Context, r *record) (*record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, *r)
	return r, nil
}

func (s *store) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestSubmitAndAwait(t *testing.T) {
	s := &store{}
	w, err := asyncwrite.New(s.create, asyncwrite.Config{Timeout: time.Second})
	require.NoError(t, err)
	defer func() { require.NoError(t, w.Close()) }()

	r := &record{ID: "m1", NodeID: "gw-1"}
	task := w.Submit(t.Context(), r)
	r.NodeID = "changed after submit"

	got, err := task.Await(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "gw-1", got.NodeID)
	assert.Equal(t, 1, s.len())
}

func TestManySubmitters(t *testing.T) {
	s := &store{}
	w, err := asyncwrite.New(s.create, asyncwrite.Config{})
	require.NoError(t, err)
	defer func() { require.NoError(t, w.Close()) }()

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := w.Submit(t.Context(), &record{ID: "x"}).Await(t.Context())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, s.len())
}

func TestWritesNeverOverlap(t *testing.T) {
	s := &store{}
	var running, peak atomic.Int32
	w, err := asyncwrite.New(func(ctx context.Context, r *record) (*record, error) {
		n := running.Add(1)
		defer running.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		return s.create(ctx, r)
	}, asyncwrite.Config{Timeout: 10 * time.Second})
	require.NoError(t, err)
	defer func() { require.NoError(t, w.Close()) }()

	want := make([]string, 0, 50)
	tasks := make([]*asyncwrite.Task[record], 0, 50)
	for i := range 50 {
		id := fmt.Sprintf("m%d", i)
		want = append(want, id)
		tasks = append(tasks, w.Submit(t.Context(), &record{ID: id}))
	}
	for _, task := range tasks {
		_, err := task.Await(t.Context())
		require.NoError(t, err)
	}

	assert.Equal(t, int32(1), peak.Load())

	s.mu.Lock()
	defer s.mu.Unlock()
	got := make([]string, 0, len(s.records))
	for _, r := range s.records {
		got = append(got, r.ID)
	}
	assert.ElementsMatch(t, want, got)
}

func TestStoreFailureIsReturnedAsIs(t *testing.T) {
	storeErr := errx.New("store down", errx.WithCode("TECHNICAL_FAILURE"))
	w, err := asyncwrite.New(func(context.Context, *record) (*record, error) {
		return nil, storeErr
	}, asyncwrite.Config{Timeout: time.Second})
	require.NoError(t, err)
	defer func() { require.NoError(t, w.Close()) }()

	_, err = w.Submit(t.Context(), &record{ID: "m1"}).Await(t.Context())
	require.Error(t, err)
	assert.True(t, errx.IsCodeIn(err, "TECHNICAL_FAILURE"))
	assert.False(t, errx.IsCodeIn(err, asyncwrite.CodeAsyncTimeout))
}

func TestAwaitTimeout(t *testing.T) {
	release := make(chan struct{})
	w, err := asyncwrite.New(func(_ context.Context, r *record) (*record, error) {
		<-release
		return r, nil
	}, asyncwrite.Config{Timeout: 20 * time.Millisecond})
	require.NoError(t, err)

	task := w.Submit(t.Context(), &record{ID: "slow"})
	_, err = task.Await(t.Context())
	require.Error(t, err)
	assert.True(t, errx.IsCodeIn(err, asyncwrite.CodeAsyncTimeout))

	close(release)
	<-task.Done()
	got, err := task.Await(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "slow", got.ID)

	require.NoError(t, w.Close())
}

func TestAwaitContextCanceled(t *testing.T) {
	release := make(chan struct{})
	w, err := asyncwrite.New(func(_ context.Context, r *record) (*record, error) {
		<-release
		return r, nil
	}, asyncwrite.Config{Timeout: time.Minute})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	task := w.Submit(ctx, &record{ID: "m1"})
	cancel()

	_, err = task.Await(ctx)
	require.Error(t, err)
	assert.True(t, errx.IsCodeIn(err, asyncwrite.CodeAsyncTimeout))

	close(release)
	_, err = task.Await(t.Context())
	require.NoError(t, err, "canceling the caller does not cancel the write")
	require.NoError(t, w.Close())
}

func TestSubmitAfterClose(t *testing.T) {
	s := &store{}
	w, err := asyncwrite.New(s.create, asyncwrite.Config{})
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	_, err = w.Submit(t.Context(), &record{ID: "late"}).Await(t.Context())
	require.Error(t, err)
	assert.True(t, errx.IsCodeIn(err, asyncwrite.CodeWriterClosed))
	assert.Zero(t, s.len())
}
