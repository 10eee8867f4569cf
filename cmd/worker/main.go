// Package main runs the background analytics worker: it drains the Redis event queue into the
// database and notifies live dashboards.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/promogame/backend/config"
	"github.com/promogame/backend/internal/analytics"
	"github.com/promogame/backend/internal/realtime"
	"github.com/promogame/backend/internal/stores"
	"github.com/promogame/backend/internal/worker"
	"github.com/promogame/backend/pkg/logger"
	"github.com/promogame/backend/pkg/queue"
	"github.com/promogame/backend/pkg/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log)
	defer log.Sync()

	ctx := context.Background()
	db, err := stores.Open(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("database", zap.Error(err))
	}
	defer db.Close()

	rdb, err := redis.NewClient(ctx, redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	}, log)
	if err != nil {
		log.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	pubsub := realtime.NewRedisPubSub(rdb.Client, log)
	writer := analytics.NewWriter(db.Analytics, pubsub, log)
	jobQueue := queue.NewQueue(rdb.Client, log)
	processor := worker.NewAnalyticsProcessor(writer, jobQueue, log)

	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		processor.Run(workerCtx)
		close(done)
	}()
	pending, _ := jobQueue.Pending(ctx)
	log.Info("worker started", zap.String("database", db.Driver), zap.Int64("pending_jobs", pending))
	if dead, err := jobQueue.DeadLetters(ctx, 20); err == nil && len(dead) > 0 {
		for _, j := range dead {
			log.Warn("dead-lettered job", zap.String("job_id", j.ID),
				zap.Int("attempt", j.Attempt), zap.String("last_error", j.LastError))
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	select {
	case <-done:
	case <-time.After(queue.PollTimeout + 2*time.Second):
	}
	log.Info("worker stopped")
}
