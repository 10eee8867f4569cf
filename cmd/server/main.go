// Package main runs the campaign builder HTTP API with WebSocket stats and graceful shutdown.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/promogame/backend/config"
	"github.com/promogame/backend/internal/analytics"
	"github.com/promogame/backend/internal/assets"
	"github.com/promogame/backend/internal/auth"
	"github.com/promogame/backend/internal/campaigns"
	"github.com/promogame/backend/internal/games"
	"github.com/promogame/backend/internal/middleware"
	"github.com/promogame/backend/internal/models"
	"github.com/promogame/backend/internal/play"
	"github.com/promogame/backend/internal/realtime"
	"github.com/promogame/backend/internal/stores"
	"github.com/promogame/backend/internal/templates"
	"github.com/promogame/backend/internal/worker"
	"github.com/promogame/backend/pkg/logger"
	"github.com/promogame/backend/pkg/queue"
	"github.com/promogame/backend/pkg/redis"
	"github.com/promogame/backend/pkg/response"
	"github.com/promogame/backend/pkg/storage"
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

	if n, err := templates.Seed(ctx, db.Templates, time.Now()); err != nil {
		log.Warn("seed templates", zap.Error(err))
	} else if n > 0 {
		log.Info("starter templates seeded", zap.Int("count", n))
	}

	// Redis is optional: without it sessions, instant-win caps and stats fan-out stay in process.
	var (
		rdb      *redis.Client
		sessions play.SessionStore
		winners  games.WinnerCap
		jobQueue *queue.Queue
		hub      *realtime.Hub
	)
	sessionTTL := time.Duration(cfg.Play.SessionTTLMinutes) * time.Minute
	if cfg.Redis.Addr != "" {
		rdb, err = redis.NewClient(ctx, redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		}, log)
		if err != nil {
			log.Warn("redis unavailable, running single-instance", zap.Error(err))
			rdb = nil
		}
	}
	if rdb != nil {
		defer rdb.Close()
		pubsub := realtime.NewRedisPubSub(rdb.Client, log)
		hub = realtime.NewHub(log, pubsub, pubsub)
		sessions = play.NewRedisSessions(rdb.Client, sessionTTL)
		winners = play.NewRedisCap(rdb.Client, play.InstantWinCounter(db.Participants))
		jobQueue = queue.NewQueue(rdb.Client, log)
	} else {
		hub = realtime.NewHub(log, nil, nil)
		sessions = play.NewMemorySessions(sessionTTL)
		winners = games.NewSeededMemoryCap(play.InstantWinCounter(db.Participants))
	}

	var s3Client *storage.S3
	if cfg.AWS.AssetsBucket != "" {
		s3Client, err = storage.NewS3(ctx, storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			Bucket:               cfg.AWS.AssetsBucket,
			Endpoint:             cfg.AWS.Endpoint,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}, log)
		if err != nil {
			log.Warn("s3 disabled", zap.Error(err))
			s3Client = nil
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)

	// Analytics: events go through the Redis queue when present, else straight to the store.
	writer := analytics.NewWriter(db.Analytics, hub, log)
	var recorder *analytics.Recorder
	if jobQueue != nil {
		recorder = analytics.NewRecorder(jobQueue, writer, log)
	} else {
		recorder = analytics.NewRecorder(nil, writer, log)
	}

	authHandler := auth.NewHandler(db.Users, jwtService, cfg.Auth.AdminEmailList(), log)
	campaignHandler := campaigns.NewHandler(db.Campaigns, log)
	playHandler := play.NewHandler(db.Campaigns, db.Participants, sessions, recorder, winners, log)
	dashboardHandler := play.NewDashboardHandler(db.Campaigns, db.Participants, log)
	statsHandler := analytics.NewHandler(db.Campaigns, db.Analytics, log)
	templateHandler := templates.NewHandler(db.Templates, db.Campaigns, log)
	var assetHandler *assets.Handler
	if s3Client != nil {
		assetHandler = assets.NewHandler(s3Client, log)
	} else {
		assetHandler = assets.NewHandler(nil, log)
	}

	validateToken := func(token string) (uuid.UUID, error) {
		claims, err := jwtService.Validate(token)
		if err != nil {
			return uuid.Nil, err
		}
		return claims.UserID, nil
	}
	authorizeCampaign := func(ctx context.Context, userID, campaignID uuid.UUID) error {
		camp, err := db.Campaigns.Get(ctx, campaignID)
		if err != nil {
			return err
		}
		if camp.UserID != userID {
			return errors.New("not the campaign owner")
		}
		return nil
	}
	upgrader := realtime.NewUpgrader(splitOrigins(cfg.Server.CORSAllowedOrigins))

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(splitOrigins(cfg.Server.CORSAllowedOrigins)))
	router.Use(middleware.Logger(log))

	router.GET("/health", func(c *gin.Context) {
		response.OK(c, gin.H{
			"status":   "ok",
			"database": db.Driver,
			"redis":    rdb != nil && rdb.Healthy(c.Request.Context()),
			"storage":  s3Client != nil,
		})
	})

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/signup", authHandler.Signup)
		authGroup.POST("/login", authHandler.Login)
	}

	// Public participation flow (no JWT).
	public := router.Group("/p/:slug")
	{
		public.GET("", playHandler.Page)
		public.POST("/participations", playHandler.Participate)
		public.POST("/participations/:pid/answers", playHandler.Answers)
		public.POST("/participations/:pid/game", playHandler.StartGame)
		public.POST("/sessions/:sid/actions", playHandler.Act)
	}

	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		api.GET("/account", authHandler.Account)
		api.PUT("/account", authHandler.UpdateAccount)
		api.GET("/users", middleware.RequireRole(models.RoleAdmin), authHandler.List)

		api.GET("/campaigns", campaignHandler.List)
		api.GET("/campaigns/new", campaignHandler.New)
		api.POST("/campaigns", campaignHandler.Create)
		api.GET("/campaigns/:id", campaignHandler.Get)
		api.PUT("/campaigns/:id", campaignHandler.Replace)
		api.PATCH("/campaigns/:id", campaignHandler.Patch)
		api.DELETE("/campaigns/:id", campaignHandler.Delete)
		api.GET("/campaigns/:id/editor", campaignHandler.Editor)
		api.POST("/campaigns/:id/questions", campaignHandler.AddQuestion)
		api.DELETE("/campaigns/:id/questions/:qid", campaignHandler.RemoveQuestion)
		api.POST("/campaigns/:id/fields", campaignHandler.AddField)
		api.DELETE("/campaigns/:id/fields/:fid", campaignHandler.RemoveField)
		api.POST("/editor/preview", campaignHandler.Preview)

		api.GET("/campaigns/:id/participations", dashboardHandler.List)
		api.GET("/campaigns/:id/export", dashboardHandler.Export)
		api.GET("/campaigns/:id/stats", statsHandler.ByCampaign)
		api.GET("/stats", statsHandler.Overview)

		api.POST("/assets", assetHandler.Upload)
		api.POST("/assets/upload-url", assetHandler.UploadURL)
		api.DELETE("/assets", assetHandler.Delete)

		api.GET("/templates", templateHandler.List)
		api.GET("/templates/:id", templateHandler.Get)
		api.POST("/templates", middleware.RequireRole(models.RoleAdmin), templateHandler.Create)
		api.DELETE("/templates/:id", middleware.RequireRole(models.RoleAdmin), templateHandler.Delete)
		api.POST("/templates/:id/instantiate", templateHandler.Instantiate)
	}

	// WebSocket (token in query; no Authorization header required)
	router.GET("/ws", realtime.ServeWs(hub, upgrader, log, validateToken, authorizeCampaign))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	if jobQueue != nil && cfg.Worker.Embedded {
		processor := worker.NewAnalyticsProcessor(writer, jobQueue, log)
		go processor.Run(workerCtx)
		log.Info("analytics worker started")
	}

	go func() {
		log.Info("server listening", zap.String("port", cfg.Server.Port), zap.String("database", db.Driver))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	workerCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", zap.Error(err))
	}
	log.Info("server stopped")
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
