package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/hungwahenry/cheevo-sub000/internal/config"
	"github.com/hungwahenry/cheevo-sub000/internal/infra/logger"
	"github.com/hungwahenry/cheevo-sub000/internal/jobs/bansweep"
	pgrepo "github.com/hungwahenry/cheevo-sub000/internal/repo/postgres"
	redrepo "github.com/hungwahenry/cheevo-sub000/internal/repo/redis"
)

func main() {
	cfgPath := os.Getenv("APP_CONFIG")
	if cfgPath == "" {
		cfgPath = "configs/config.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer func() {
		_ = redisClient.Close()
	}()

	job := bansweep.New(pgrepo.NewBanRepo(pool), cfg.Sweeper.Interval, log)
	job.AttachBanCache(redrepo.NewBanCacheRepo(redisClient))

	log.Info("ban sweeper started", zap.Duration("interval", cfg.Sweeper.Interval))
	if err := job.RunLoop(ctx); err != nil {
		log.Fatal("ban sweeper failed", zap.Error(err))
	}
	log.Info("ban sweeper stopped")
}
