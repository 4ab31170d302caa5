package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/feriahub/marketplace-backend/internal/adapters/cache"
	"github.com/feriahub/marketplace-backend/internal/adapters/repository/mongodb"
	"github.com/feriahub/marketplace-backend/internal/config"
	"github.com/feriahub/marketplace-backend/internal/handlers"
	"github.com/feriahub/marketplace-backend/internal/services/application"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	cfg := config.Load()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logrus.Info("Connecting to MongoDB...")
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	if err := client.Ping(ctx, nil); err != nil {
		logrus.WithError(err).Fatal("Failed to ping MongoDB")
	}
	db := client.Database(cfg.Mongo.Database)
	logrus.Info("Connected to MongoDB")

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		logrus.WithError(err).Fatal("Failed to create indexes")
	}

	var views cache.ViewCache
	if cfg.Redis.URL != "" {
		redisClient, err := cache.NewRedisClient(cfg.Redis.URL)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to connect to Redis")
		}
		defer redisClient.Close()
		views = cache.NewRedisCache(redisClient)
		logrus.Info("Using Redis view cache")
	} else {
		views = cache.NewMemoryCache()
		logrus.Info("REDIS_URL not set, using in-process view cache")
	}

	identity := mongodb.NewIdentityStore(db)
	svc := application.NewService(
		mongodb.NewApplicationRepository(db),
		identity,
		mongodb.NewVendorProfileRepository(db),
		mongodb.NewAuditStore(db),
		views,
		cfg.Cache.Staleness,
	)

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	handlers.SetupRoutes(router, svc, identity)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTP.Port,
		Handler: router,
	}

	go func() {
		logrus.Infof("Server listening on port %s", cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Forced shutdown")
	}
	if err := client.Disconnect(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Failed to disconnect MongoDB")
	}
	logrus.Info("Server stopped")
}
