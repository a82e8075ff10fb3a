package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"scanmyride/config"
	"scanmyride/pkg/apiclient"
	"scanmyride/pkg/bot"
	"scanmyride/pkg/logger"
	"scanmyride/pkg/web"
	"scanmyride/service"
	"scanmyride/storage/driver"
)

func main() {
	cfg := config.Load()

	log := logger.New(cfg.ServiceName, cfg.LoggerLevel)

	stg, err := driver.Open(context.Background(), cfg, log)
	if err != nil {
		log.Error("failed to open client-state storage", logger.Error(err))
		os.Exit(1)
	}
	defer stg.Close()

	api := apiclient.New(cfg.APIBaseURL, cfg.APITimeout, log)
	svc := service.New(stg, api, service.Options{
		PublicBaseURL: cfg.PublicBaseURL,
		Retry: service.RetryPolicy{
			MaxAttempts: cfg.PublicFetchMaxAttempts,
			Interval:    cfg.PublicFetchInterval,
		},
		StickerScale: cfg.StickerScale,
	}, log)

	server, err := web.New(cfg, svc, log)
	if err != nil {
		log.Error("failed to initialize public web", logger.Error(err))
		os.Exit(1)
	}
	go func() {
		if err := server.Run(); err != nil {
			log.Error("public web stopped", logger.Error(err))
		}
	}()

	var console *bot.Bot
	if cfg.TelegramBotToken == "" {
		log.Warning("TG_BOT_TOKEN is empty, owner console disabled")
	} else {
		console, err = bot.New(cfg, svc, log)
		if err != nil {
			log.Error("failed to initialize owner console", logger.Error(err))
			os.Exit(1)
		}
		go console.Start()
	}

	log.Info("🚀 scanmyride is running", logger.String("api", cfg.APIBaseURL), logger.String("storage", cfg.StorageDriver))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")
	if console != nil {
		console.Stop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("public web shutdown failed", logger.Error(err))
	}
}
