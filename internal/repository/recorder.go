package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Mohid710/AEO-Snippet-Optimizer/db"
	"github.com/Mohid710/AEO-Snippet-Optimizer/internal/model"

	"github.com/redis/go-redis/v9"
)

// Recorder keeps a finished analysis somewhere durable.
type Recorder interface {
	Record(ctx context.Context, a *model.Analysis) error
}

type NopRecorder struct{}

func (NopRecorder) Record(ctx context.Context, a *model.Analysis) error {
	return nil
}

// QueueRecorder hands analyses to the archiver through a Redis list.
type QueueRecorder struct {
	rdb      *redis.Client
	queueKey string
}

func NewQueueRecorder(rdb *redis.Client) *QueueRecorder {
	return &QueueRecorder{rdb: rdb, queueKey: db.ArchiveQueueKey}
}

func (q *QueueRecorder) Record(ctx context.Context, a *model.Analysis) error {
	data, err := EncodeArchiveEntry(model.ArchiveEntry{Analysis: *a})
	if err != nil {
		return err
	}
	if err := db.PushToQueue(ctx, q.rdb, q.queueKey, data); err != nil {
		return fmt.Errorf("pushing analysis %s to archive queue: %w", a.ID, err)
	}
	return nil
}

func EncodeArchiveEntry(entry model.ArchiveEntry) (string, error) {
	data, err := json.Marshal(entry)
	if err != nil {
		return "", fmt.Errorf("encoding archive entry: %w", err)
	}
	return string(data), nil
}

func DecodeArchiveEntry(data string) (*model.ArchiveEntry, error) {
	var entry model.ArchiveEntry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		return nil, fmt.Errorf("decoding archive entry: %w", err)
	}
	if entry.Analysis.ID == "" {
		return nil, fmt.Errorf("decoding archive entry: missing analysis id")
	}
	return &entry, nil
}
