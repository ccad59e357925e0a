package main

import (
	"context"
	"net/http"
	"os"

	"github.com/notedhq/noted/internal/api"
	"github.com/notedhq/noted/internal/auth"
	"github.com/notedhq/noted/internal/cache"
	"github.com/notedhq/noted/internal/captcha"
	"github.com/notedhq/noted/internal/config"
	"github.com/notedhq/noted/internal/db"
	apperrors "github.com/notedhq/noted/internal/errors"
	"github.com/notedhq/noted/internal/health"
	"github.com/notedhq/noted/internal/logger"
	"github.com/notedhq/noted/internal/notes"
	"github.com/notedhq/noted/internal/web"
	"github.com/redis/go-redis/v9"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

	log := logger.New(os.Stdout, logger.LevelInfo, "server")
	logger.SetDefault(log)

	database, err := db.New(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)
	if err != nil {
		log.Error(ctx, "failed to connect to database", apperrors.DatabaseError("could not open database connection").WithCause(err))
		os.Exit(1)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		log.Error(ctx, "failed to run migrations", apperrors.DatabaseError("schema migration failed").WithCause(err))
		os.Exit(1)
	}

	// Redis only backs the landing-page counter; the service runs without it.
	var noteCache *cache.Cache
	var redisClient *redis.Client
	if c, err := cache.New(cfg.RedisAddr); err != nil {
		log.Warn(ctx, "redis unavailable, note-count caching disabled", map[string]interface{}{
			"addr":  cfg.RedisAddr,
			"error": err.Error(),
		})
	} else {
		noteCache = c
		redisClient = c.Client()
		defer noteCache.Close()
	}

	userRepo := db.NewUserRepository(database)
	noteRepo := db.NewNoteRepository(database)

	authService := auth.NewService(userRepo, cfg.JWTSecret)
	captchaClient := captcha.NewClient(cfg.CaptchaVerifyURL, cfg.CaptchaSecret)
	authHandlers := auth.NewHandlers(authService, captchaClient)
	noteHandlers := notes.NewHandlers(noteRepo)

	webHandlers, err := web.NewHandlers(cfg.TemplateDir, noteRepo, noteCache)
	if err != nil {
		log.Error(ctx, "failed to parse templates", err)
		os.Exit(1)
	}

	healthHandler := health.NewHandler(health.NewChecker(database.DB, redisClient))

	router := api.NewRouter(authHandlers, authService, noteHandlers, webHandlers, healthHandler, cfg.StaticDir)

	log.Info(ctx, "starting server", map[string]interface{}{
		"addr": cfg.ServerAddr,
	})
	if err := http.ListenAndServe(cfg.ServerAddr, router); err != nil {
		log.Error(ctx, "server failed", err)
		os.Exit(1)
	}
}
