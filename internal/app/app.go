// Package app assembles the form service: database, stores, workbook source,
// optional definition cache, and the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/formbridge/formbridge/internal/config"
	"github.com/formbridge/formbridge/internal/db"
	"github.com/formbridge/formbridge/internal/excel"
	"github.com/formbridge/formbridge/internal/http/api/forms"
	"github.com/formbridge/formbridge/internal/store"
)

// Migrate opens the database and applies the schema.
func Migrate(ctx context.Context, cfg config.AppConfig) error {
	conn, err := db.Open(cfg.Database.DSN)
	if err != nil {
		return err
	}
	return db.Migrate(conn)
}

// Run boots the form service and serves until the context is cancelled.
func Run(ctx context.Context, cfg config.AppConfig) error {
	conn, err := db.Open(cfg.Database.DSN)
	if err != nil {
		return err
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}

	cache := store.NewCache(newRedisClient(ctx, cfg.Redis), 5*time.Minute)
	definitions := store.NewDefinitions(conn, cache)
	submissions := store.NewSubmissions(conn)
	source := excel.NewSource(cfg.Excel.BaseDir)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	forms.RegisterFormRoutes(engine, definitions, submissions, source, cfg.AutoFill.Debounce())

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: engine,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("listening on %s", server.Addr)
		if errServe := server.ListenAndServe(); errServe != nil && !errors.Is(errServe, http.ErrServerClosed) {
			errCh <- errServe
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if errShutdown := server.Shutdown(shutdownCtx); errShutdown != nil {
			return errShutdown
		}
		return <-errCh
	case errServe := <-errCh:
		return errServe
	}
}

// newRedisClient connects the optional definition cache. A missing address
// disables caching; an unreachable server is logged and treated the same.
func newRedisClient(ctx context.Context, cfg config.RedisConfig) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if errPing := client.Ping(pingCtx).Err(); errPing != nil {
		log.WithError(errPing).Warn("redis unreachable, definition cache disabled")
		_ = client.Close()
		return nil
	}
	return client
}
