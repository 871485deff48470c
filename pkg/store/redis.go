package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/chenBenjamin97/lunge-classifier/pkg/config"
	"github.com/chenBenjamin97/lunge-classifier/pkg/utils"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const latestKeyPrefix = "pose:latest:"

//RedisStore shares the newest Record of every session through redis, so other processes can read the live classification.
//Keys expire after the configured TTL once a session stops publishing.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(cfg *config.RedisConfig) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &RedisStore{
		client: client,
		ttl:    cfg.TTL,
	}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func latestKey(sessionID string) string {
	return latestKeyPrefix + sessionID
}

func (s *RedisStore) SetLatest(ctx context.Context, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("RedisStore: could not encode record, got '%w'", err)
	}

	return s.client.Set(ctx, latestKey(rec.SessionID), data, s.ttl).Err()
}

func (s *RedisStore) Latest(ctx context.Context, sessionID string) (Record, error) {
	data, err := s.client.Get(ctx, latestKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		utils.Logger.Error("failed to unmarshal pose record",
			zap.String("session", sessionID), zap.Error(err))
		return Record{}, err
	}

	return rec, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
