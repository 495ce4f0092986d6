package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"factory-dispatch/internal/config"
	httpctl "factory-dispatch/internal/controllers/http"
	"factory-dispatch/internal/infra/database"
	"factory-dispatch/internal/infra/rabbitmq"
	"factory-dispatch/internal/logger"
	"factory-dispatch/internal/repository/gormrepo"
	"factory-dispatch/internal/services"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	_ = logger.Init("info", false)
	cfg, err := config.LoadServer(os.Getenv("FACTORY_CONFIG"))
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}
	if err := logger.Init(cfg.LogLevel, false); err != nil {
		logger.Fatal("logger", zap.Error(err))
	}
	defer logger.Sync()

	db, err := database.Open(cfg)
	if err != nil {
		logger.Fatal("db: connect", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}
	if cfg.DBDriver != "sqlite" {
		sqlDB, _ := db.DB()
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetMaxIdleConns(20)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
		sqlDB.SetConnMaxIdleTime(1 * time.Minute)
	}

	repo := gormrepo.NewOrderRepository(db)

	var publisher rabbitmq.PublisherInterface = rabbitmq.NopPublisher{}
	if cfg.RabbitMQURL != "" {
		pub, err := rabbitmq.NewPublisher(cfg.RabbitMQURL, cfg.Exchange)
		if err != nil {
			logger.Fatal("failed to init publisher", zap.Error(err))
		}
		defer pub.Close()
		publisher = pub
	}

	s := services.NewFactoryService(repo, publisher)

	if cfg.RedisHost != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:         cfg.RedisHost + ":6379",
			DB:           0,
			PoolSize:     50,
			MinIdleConns: 5,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
		})
		defer redisClient.Close()
		s.SetRedisClient(redisClient)
	}

	handler := httpctl.NewHandler(s, cfg.Token)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	handler.RegisterRoutes(r)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("starting order store", zap.String("port", cfg.Port), zap.String("db_driver", cfg.DBDriver))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server run", zap.Error(err))
	}
}
