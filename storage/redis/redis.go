package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"scanmyride/config"
	"scanmyride/pkg/logger"
	"scanmyride/storage"
)

const keyPrefix = "scanmyride:client:"

// Store keeps each client's state in one Redis hash.
type Store struct {
	rdb *goredis.Client
	log logger.ILogger
}

func New(ctx context.Context, cfg config.Config, log logger.ILogger) (storage.IStorage, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisHost + ":" + cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Error("redis ping failed", logger.Error(err))
		_ = rdb.Close()
		return nil, err
	}
	log.Info("Redis connected")
	return NewWithClient(rdb, log), nil
}

func NewWithClient(rdb *goredis.Client, log logger.ILogger) *Store {
	return &Store{rdb: rdb, log: log}
}

func (s *Store) ClientState() storage.IClientStateStorage { return s }

func (s *Store) Close() {
	if err := s.rdb.Close(); err != nil {
		s.log.Warning("redis close error", logger.Error(err))
	}
}

func (s *Store) Get(ctx context.Context, clientID, key string) (string, bool, error) {
	value, err := s.rdb.HGet(ctx, keyPrefix+clientID, key).Result()
	if err == goredis.Nil {
		return "", false, nil
	}
	if err != nil {
		s.log.Error("failed to get client state", logger.String("key", key), logger.Error(err))
		return "", false, err
	}
	return value, true, nil
}

func (s *Store) Set(ctx context.Context, clientID, key, value string) error {
	if err := s.rdb.HSet(ctx, keyPrefix+clientID, key, value).Err(); err != nil {
		s.log.Error("failed to set client state", logger.String("key", key), logger.Error(err))
		return err
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, clientID string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.rdb.HDel(ctx, keyPrefix+clientID, keys...).Err(); err != nil {
		s.log.Error("failed to delete client state", logger.Any("keys", keys), logger.Error(err))
		return err
	}
	return nil
}

func (s *Store) Truncate(ctx context.Context) error {
	iter := s.rdb.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			s.log.Error("failed to truncate client state", logger.Error(err))
			return err
		}
	}
	if err := iter.Err(); err != nil {
		s.log.Error("failed to scan client state", logger.Error(err))
		return err
	}
	return nil
}
