package archive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Mohid710/AEO-Snippet-Optimizer/db"
	"github.com/Mohid710/AEO-Snippet-Optimizer/internal/model"
	"github.com/Mohid710/AEO-Snippet-Optimizer/internal/repository"

	"github.com/redis/go-redis/v9"
)

const DefaultMaxRetries = 3

var ErrQueueEmpty = errors.New("archive queue is empty")

type Queue interface {
	Pop(ctx context.Context, timeout time.Duration) (string, error)
	Requeue(ctx context.Context, data string) error
	DeadLetter(ctx context.Context, data string) error
}

type Store interface {
	SaveAnalysis(ctx context.Context, a *model.Analysis) error
}

type Stats struct {
	Saved        int
	Requeued     int
	DeadLettered int
}

// Worker drains the archive queue into the store. Entries that keep failing
// are moved to the dead-letter list after MaxRetries attempts.
type Worker struct {
	queue      Queue
	store      Store
	MaxRetries int
	PopTimeout time.Duration
	RetryDelay time.Duration
}

func NewWorker(queue Queue, store Store) *Worker {
	return &Worker{
		queue:      queue,
		store:      store,
		MaxRetries: DefaultMaxRetries,
		PopTimeout: 5 * time.Second,
		RetryDelay: 5 * time.Second,
	}
}

// Run processes entries until the queue stays empty for PopTimeout or ctx ends.
func (w *Worker) Run(ctx context.Context) (Stats, error) {
	var stats Stats
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		processed, err := w.processOne(ctx, &stats)
		if err != nil {
			return stats, err
		}
		if !processed {
			return stats, nil
		}
	}
}

func (w *Worker) processOne(ctx context.Context, stats *Stats) (bool, error) {
	data, err := w.queue.Pop(ctx, w.PopTimeout)
	if errors.Is(err, ErrQueueEmpty) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("popping archive queue: %w", err)
	}

	entry, err := repository.DecodeArchiveEntry(data)
	if err != nil {
		slog.Error("dropping malformed archive entry", "error", err)
		stats.DeadLettered++
		return true, w.queue.DeadLetter(ctx, data)
	}

	err = w.store.SaveAnalysis(ctx, &entry.Analysis)
	if err == nil {
		slog.Info("analysis archived", "analysis_id", entry.Analysis.ID)
		stats.Saved++
		return true, nil
	}

	entry.Attempts++
	slog.Error("error archiving analysis", "error", err, "analysis_id", entry.Analysis.ID, "attempts", entry.Attempts)

	encoded, encErr := repository.EncodeArchiveEntry(*entry)
	if encErr != nil {
		return true, encErr
	}

	if entry.Attempts >= w.MaxRetries {
		slog.Warn("analysis exceeded max retries, moving to dead letter", "analysis_id", entry.Analysis.ID)
		stats.DeadLettered++
		return true, w.queue.DeadLetter(ctx, encoded)
	}

	stats.Requeued++
	if err := w.queue.Requeue(ctx, encoded); err != nil {
		return true, err
	}

	if w.RetryDelay > 0 {
		select {
		case <-ctx.Done():
			return true, ctx.Err()
		case <-time.After(w.RetryDelay):
		}
	}
	return true, nil
}

// RedisQueue is the Queue backed by the Redis lists the API pushes to.
type RedisQueue struct {
	rdb *redis.Client
}

func NewRedisQueue(rdb *redis.Client) *RedisQueue {
	return &RedisQueue{rdb: rdb}
}

func (q *RedisQueue) Pop(ctx context.Context, timeout time.Duration) (string, error) {
	data, err := db.PopFromQueue(ctx, q.rdb, db.ArchiveQueueKey, timeout)
	if errors.Is(err, redis.Nil) {
		return "", ErrQueueEmpty
	}
	return data, err
}

func (q *RedisQueue) Requeue(ctx context.Context, data string) error {
	return db.PushToQueue(ctx, q.rdb, db.ArchiveQueueKey, data)
}

func (q *RedisQueue) DeadLetter(ctx context.Context, data string) error {
	return db.PushToQueue(ctx, q.rdb, db.DeadLetterKey, data)
}
