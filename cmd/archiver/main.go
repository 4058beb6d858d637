package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Mohid710/AEO-Snippet-Optimizer/db"
	"github.com/Mohid710/AEO-Snippet-Optimizer/internal/archive"
	"github.com/Mohid710/AEO-Snippet-Optimizer/internal/config"
	"github.com/Mohid710/AEO-Snippet-Optimizer/internal/repository"
)

func main() {

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb, err := db.ConnectRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("error connecting to Redis: %v", err)
	}
	defer rdb.Close()

	conn, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("error connecting to DB: %v", err)
	}
	defer conn.Close()

	if err := db.Migrate(ctx, conn); err != nil {
		log.Fatalf("error migrating DB: %v", err)
	}

	pending, err := db.GetQueueLength(ctx, rdb, db.ArchiveQueueKey)
	if err != nil {
		slog.Error("error reading queue length", "error", err)
	}
	slog.Info("archiver started", "pending", pending)

	worker := archive.NewWorker(archive.NewRedisQueue(rdb), repository.NewAnalysisRepository(conn))

	stats, err := worker.Run(ctx)
	if err != nil {
		slog.Error("archiver stopped", "error", err, "saved", stats.Saved, "requeued", stats.Requeued, "dead_lettered", stats.DeadLettered)
		return
	}

	slog.Info("archive queue drained", "saved", stats.Saved, "requeued", stats.Requeued, "dead_lettered", stats.DeadLettered)
}
