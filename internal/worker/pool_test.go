package worker_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lbraga/studytrack/internal/worker"
)

type signalJob struct {
	done chan struct{}
}

func (j *signalJob) Name() string { return "signal" }

func (j *signalJob) Run(ctx context.Context) error {
	close(j.done)
	return nil
}

func TestTrySubmitRejectsWhenFull(t *testing.T) {
	pool := worker.NewPool(1, 1)

	require.True(t, pool.TrySubmit(&signalJob{done: make(chan struct{})}))
	require.False(t, pool.TrySubmit(&signalJob{done: make(chan struct{})}))
	require.Equal(t, 1, pool.QueueSize())
}

func TestPoolRunsSubmittedJobs(t *testing.T) {
	pool := worker.NewPool(2, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)

	job := &signalJob{done: make(chan struct{})}
	require.True(t, pool.TrySubmit(job))

	select {
	case <-job.done:
	case <-time.After(2 * time.Second):
		t.Fatal("job was never run")
	}
	pool.Stop()
}
