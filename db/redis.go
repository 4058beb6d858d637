package db

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	ArchiveQueueKey = "aeo:queue:archive"
	DeadLetterKey   = "aeo:queue:failed"
)

func ConnectRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is not set")
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		opt = &redis.Options{Addr: redisURL}
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

func PushToQueue(ctx context.Context, rdb *redis.Client, queueKey string, data string) error {
	return rdb.LPush(ctx, queueKey, data).Err()
}

// PopFromQueue blocks up to timeout; an empty queue yields redis.Nil.
func PopFromQueue(ctx context.Context, rdb *redis.Client, queueKey string, timeout time.Duration) (string, error) {
	result, err := rdb.BRPop(ctx, timeout, queueKey).Result()
	if err != nil {
		return "", err
	}
	return result[1], nil
}

func GetQueueLength(ctx context.Context, rdb *redis.Client, queueKey string) (int64, error) {
	return rdb.LLen(ctx, queueKey).Result()
}
