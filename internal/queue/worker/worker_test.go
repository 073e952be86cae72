package worker_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/inkwell/bloghub/internal/domain/job"
	"github.com/inkwell/bloghub/internal/queue/worker"
)

type fakeJobsRepo struct {
	mu      sync.Mutex
	claimed bool
	done    []string

	rescheduled []string
	failed      []string
}

func (f *fakeJobsRepo) ClaimNext(ctx context.Context, workerID string) (job.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.claimed {
		return job.Job{}, job.ErrJobNotFound
	}

	f.claimed = true

	return job.Job{ID: "job-1", Type: "user.welcome_email", MaxAttempts: 3}, nil
}

func (f *fakeJobsRepo) MarkDone(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	f.done = append(f.done, id)
	f.mu.Unlock()

	return nil
}

func (f *fakeJobsRepo) MarkFailed(ctx context.Context, id string, errMsg string) error {
	f.mu.Lock()
	f.failed = append(f.failed, id)
	f.mu.Unlock()
	return nil
}

func (f *fakeJobsRepo) Reschedule(ctx context.Context, id string, runAt time.Time, errMsg string) error {
	f.mu.Lock()
	f.rescheduled = append(f.rescheduled, id)
	f.mu.Unlock()
	return nil
}

func (f *fakeJobsRepo) RequeueStaleProcessing(ctx context.Context, lockTTL time.Duration) (int64, error) {
	return 0, nil
}

type execFunc func(ctx context.Context, j job.Job) error

func (f execFunc) Execute(ctx context.Context, j job.Job) error { return f(ctx, j) }

// A job claimed before shutdown must be allowed to finish during the drain:
// its context stays alive after the run context is cancelled, and the
// completion still reaches the repo.
func TestShutdownDrainLetsInFlightJobFinish(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	repo := &fakeJobsRepo{}

	var mu sync.Mutex
	var jobCtxErr error

	exec := execFunc(func(jctx context.Context, j job.Job) error {
		// stop the worker while this job is mid-flight
		cancel()

		// give the drain a moment to start waiting on us
		time.Sleep(100 * time.Millisecond)

		mu.Lock()
		jobCtxErr = jctx.Err()
		mu.Unlock()

		return nil
	})

	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	w := worker.New(worker.Config{
		WorkerID:      "test-worker",
		PollInterval:  10 * time.Millisecond,
		Concurrency:   1,
		LockTTL:       5 * time.Second,
		ShutdownGrace: 2 * time.Second,
	}, repo, exec, nil, log)

	runDone := make(chan error, 1)

	go func() { runDone <- w.Run(ctx) }()

	select {
	case err := <-runDone:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("worker did not drain within the grace period")
	}

	mu.Lock()
	defer mu.Unlock()

	if jobCtxErr != nil {
		t.Fatalf("job context cancelled during drain: %v", jobCtxErr)
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()

	if len(repo.done) != 1 || repo.done[0] != "job-1" {
		t.Fatalf("done jobs = %v, want [job-1]", repo.done)
	}
}
