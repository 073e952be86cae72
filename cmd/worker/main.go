package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/inkwell/bloghub/internal/config"
	"github.com/inkwell/bloghub/internal/db"
	"github.com/inkwell/bloghub/internal/notifications"
	"github.com/inkwell/bloghub/internal/observability"
	"github.com/inkwell/bloghub/internal/queue/worker"
	"github.com/inkwell/bloghub/internal/repo/postgres"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	registry := prometheus.NewRegistry()
	prom := observability.NewProm(registry)

	jobsRepo := postgres.NewJobsRepo(pool, prom)
	usersRepo := postgres.NewUsersRepo(pool)
	postsRepo := postgres.NewPostsRepo(pool, prom)
	commentsRepo := postgres.NewCommentsRepo(pool)

	notifier := notifications.NewProtectedNotifier(
		notifications.NewLogNotifier(),
		notifications.ProtectedNotifierConfig{},
	)

	dispatcher := worker.NewDispatcher(usersRepo, postsRepo, commentsRepo, notifier)

	host, _ := os.Hostname()
	workerID := host + "-" + strconv.Itoa(os.Getpid())

	w := worker.New(worker.Config{
		WorkerID:      workerID,
		PollInterval:  250 * time.Millisecond,
		Concurrency:   4,
		LockTTL:       time.Minute,
		ShutdownGrace: 10 * time.Second,
	}, jobsRepo, dispatcher, prom, log)

	// small sidecar server for liveness/readiness probes
	healthSrv := &http.Server{
		Addr:              ":9091",
		Handler:           w.HealthHandler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := healthSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("health server failed", "err", err)
		}
	}()

	log.Info("worker starting", "worker_id", workerID)

	if err := w.Run(ctx); err != nil {
		log.Error("worker stopped with error", "err", err)
	}

	sctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()
	_ = healthSrv.Shutdown(sctx)

	log.Info("worker shutdown complete")
}
