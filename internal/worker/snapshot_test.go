package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/dentalcare/internal/model"
)

type countingSnapshotter struct {
	calls atomic.Int32
	err   error
}

func (c *countingSnapshotter) Snapshot(_ context.Context, month string) (*model.MonthlyStats, error) {
	c.calls.Add(1)
	if month != "" {
		return nil, errors.New("worker must snapshot the current month")
	}
	if c.err != nil {
		return nil, c.err
	}
	return &model.MonthlyStats{}, nil
}

func runWorker(t *testing.T, w *SnapshotWorker) (stop func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()
	return func() {
		cancel()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("worker did not stop")
		}
	}
}

func TestSnapshotWorkerRunsOnStartAndOnTick(t *testing.T) {
	s := &countingSnapshotter{}
	stop := runWorker(t, NewSnapshotWorker(s, SnapshotConfig{Interval: 10 * time.Millisecond, RunOnStart: true}, nil))
	defer stop()

	assert.Eventually(t, func() bool { return s.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
}

func TestSnapshotWorkerWaitsForFirstTick(t *testing.T) {
	s := &countingSnapshotter{}
	stop := runWorker(t, NewSnapshotWorker(s, SnapshotConfig{Interval: time.Hour}, nil))

	time.Sleep(20 * time.Millisecond)
	stop()
	assert.Equal(t, int32(0), s.calls.Load())
}

func TestSnapshotWorkerKeepsRunningAfterFailure(t *testing.T) {
	s := &countingSnapshotter{err: errors.New("storage down")}
	stop := runWorker(t, NewSnapshotWorker(s, SnapshotConfig{Interval: 10 * time.Millisecond, RunOnStart: true}, nil))
	defer stop()

	assert.Eventually(t, func() bool { return s.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
}
