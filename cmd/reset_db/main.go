package main

import (
	"context"
	"os"

	"scanmyride/config"
	"scanmyride/pkg/logger"
	"scanmyride/storage/driver"
)

// reset_db forgets every stored session, user snapshot and profile selection.
func main() {
	cfg := config.Load()
	log := logger.New(cfg.ServiceName, cfg.LoggerLevel)

	stg, err := driver.Open(context.Background(), cfg, log)
	if err != nil {
		log.Error("failed to open client-state storage", logger.Error(err))
		os.Exit(1)
	}
	defer stg.Close()

	if err := stg.ClientState().Truncate(context.Background()); err != nil {
		log.Error("failed to truncate client state", logger.Error(err))
		return
	}
	log.Info("client state truncated", logger.String("storage", cfg.StorageDriver))
}
