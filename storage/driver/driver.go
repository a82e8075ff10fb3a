// Package driver picks the client-state backend named by STORAGE_DRIVER.
package driver

import (
	"context"
	"fmt"

	"scanmyride/config"
	"scanmyride/pkg/logger"
	"scanmyride/storage"
	"scanmyride/storage/memory"
	"scanmyride/storage/postgres"
	"scanmyride/storage/redis"
)

func Open(ctx context.Context, cfg config.Config, log logger.ILogger) (storage.IStorage, error) {
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		return postgres.New(ctx, cfg, log)
	case config.StorageRedis:
		return redis.New(ctx, cfg, log)
	case config.StorageMemory:
		log.Warning("client state is kept in memory and will not survive a restart")
		return memory.New(), nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}
