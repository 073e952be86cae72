package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/inkwell/bloghub/internal/domain/job"
	"github.com/inkwell/bloghub/internal/observability"
)

type JobsRepository interface {
	ClaimNext(ctx context.Context, workerID string) (job.Job, error)
	MarkDone(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, errMsg string) error
	Reschedule(ctx context.Context, id string, runAt time.Time, errMsg string) error
	RequeueStaleProcessing(ctx context.Context, lockTTL time.Duration) (int64, error)
}

type Executor interface {
	Execute(ctx context.Context, j job.Job) error
}

type Config struct {
	WorkerID      string
	PollInterval  time.Duration
	Concurrency   int
	LockTTL       time.Duration
	ShutdownGrace time.Duration
}

type Worker struct {
	cfg  Config
	repo JobsRepository
	exec Executor
	prom *observability.Prom
	log  *slog.Logger

	readyMu sync.RWMutex
	ready   bool
}

func New(cfg Config, repo JobsRepository, exec Executor, prom *observability.Prom, log *slog.Logger) *Worker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 250 * time.Millisecond
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 60 * time.Second
	}
	if cfg.ShutdownGrace <= 0 {
		cfg.ShutdownGrace = 10 * time.Second
	}

	return &Worker{
		cfg:  cfg,
		repo: repo,
		exec: exec,
		prom: prom,
		log:  log,
	}
}

// Run polls for claimable jobs until ctx is cancelled. Each claimed job runs
// on its own goroutine, bounded by a semaphore of cfg.Concurrency.
func (w *Worker) Run(ctx context.Context) error {
	w.setReady(true)
	defer w.setReady(false)

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	staleTicker := time.NewTicker(w.cfg.LockTTL)
	defer staleTicker.Stop()

	sem := make(chan struct{}, w.cfg.Concurrency)
	var wg sync.WaitGroup

	for {
		select {
		case <-ctx.Done():
			w.log.Info("worker shutting down, draining in-flight jobs")

			done := make(chan struct{})

			go func() {
				wg.Wait()
				close(done)
			}()

			select {
			case <-done:
			case <-time.After(w.cfg.ShutdownGrace):
				w.log.Error("shutdown grace elapsed with jobs still running")
			}

			return nil

		case <-staleTicker.C:
			n, err := w.repo.RequeueStaleProcessing(ctx, w.cfg.LockTTL)

			if err != nil && !errors.Is(err, context.Canceled) {
				w.log.Error("stale requeue failed", "err", err)
			} else if n > 0 {
				w.log.Warn("requeued stale jobs", "count", n)
			}

		case <-ticker.C:
			// drain everything claimable this tick, up to free slots
			for w.claimAndRun(ctx, sem, &wg) {
			}
		}
	}
}

// claimAndRun claims one job and, when one is available, runs it on its own
// goroutine. Returns false when there is no free slot or nothing to claim.
// The semaphore slot is released by the job goroutine.
func (w *Worker) claimAndRun(ctx context.Context, sem chan struct{}, wg *sync.WaitGroup) bool {
	select {
	case sem <- struct{}{}:
	default:
		// all slots busy, wait for next tick
		return false
	}

	claimCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	j, err := w.repo.ClaimNext(claimCtx, w.cfg.WorkerID)
	cancel()

	if err != nil {
		<-sem

		if !errors.Is(err, job.ErrJobNotFound) && !errors.Is(err, context.Canceled) {
			w.log.Error("claim failed", "err", err)
		}
		return false
	}

	wg.Add(1)

	go func() {
		defer wg.Done()
		defer func() { <-sem }()

		// shutdown cancels ctx while the drain still waits for this job;
		// detach so the job can finish, bounded by its lock window
		jobCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.cfg.LockTTL)
		defer cancel()

		w.process(jobCtx, j)
	}()

	return true
}

func (w *Worker) process(ctx context.Context, j job.Job) {
	if w.prom != nil {
		w.prom.JobsInFlight.Inc()
		defer w.prom.JobsInFlight.Dec()
	}

	start := time.Now()
	err := w.exec.Execute(ctx, j)
	result := "done"

	if err != nil {
		result = w.handleFailure(ctx, j, err)
	} else if merr := w.repo.MarkDone(ctx, j.ID); merr != nil {
		w.log.Error("mark done failed", "job_id", j.ID, "err", merr)
	}

	if w.prom != nil {
		w.prom.JobResults.WithLabelValues(j.Type, result).Inc()
		w.prom.JobDuration.WithLabelValues(j.Type, result).Observe(time.Since(start).Seconds())
	}

	w.log.Info("job processed",
		"job_id", j.ID,
		"job_type", j.Type,
		"result", result,
		"attempt", j.Attempts,
	)
}

// handleFailure either reschedules with backoff or, once attempts run out,
// parks the job as failed. Returns the metric result label.
func (w *Worker) handleFailure(ctx context.Context, j job.Job, execErr error) string {
	if j.Attempts+1 >= j.MaxAttempts {
		if err := w.repo.MarkFailed(ctx, j.ID, execErr.Error()); err != nil {
			w.log.Error("mark failed failed", "job_id", j.ID, "err", err)
		}
		return "failed"
	}

	runAt := time.Now().UTC().Add(ExponentialBackoff(j.Attempts))

	if err := w.repo.Reschedule(ctx, j.ID, runAt, execErr.Error()); err != nil {
		w.log.Error("reschedule failed", "job_id", j.ID, "err", err)
	}

	return "retry"
}

func (w *Worker) setReady(v bool) {
	w.readyMu.Lock()
	w.ready = v
	w.readyMu.Unlock()
}
