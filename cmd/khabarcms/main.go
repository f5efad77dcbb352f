// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the KhabarCMS server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"khabarcms/internal/cache"
	"khabarcms/internal/config"
	"khabarcms/internal/content"
	"khabarcms/internal/database"
	"khabarcms/internal/handlers"
	"khabarcms/internal/middleware"
	"khabarcms/internal/models"
	"khabarcms/internal/router"
	"khabarcms/internal/session"
	"khabarcms/internal/storage"
	"khabarcms/internal/store"
	"khabarcms/internal/store/memstore"
)

// Login attempts allowed per client IP per window.
const (
	loginLimit  = 5
	loginWindow = time.Minute
)

func main() {
	// A missing .env file is fine; the environment wins either way.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.IsDev() {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"store", cfg.StoreDriver,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	posts, categories, closeStore, err := openStores(ctx, cfg)
	if err != nil {
		slog.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	// Connect to Valkey (Redis-compatible cache + session store).
	valkeyClient, err := cache.ConnectValkey(ctx, cache.ValkeyOptions{
		Addr:     cfg.ValkeyAddr(),
		Password: cfg.ValkeyPassword,
		DB:       cfg.ValkeyDB,
	})
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	sessionStore := session.NewStore(valkeyClient, cfg.IsProduction())

	var listCache content.ListCache
	if cfg.ListCacheTTL > 0 {
		listCache = cache.NewListCache(valkeyClient, cfg.ListCacheTTL)
	}
	svc := content.NewService(posts, categories, listCache)

	blobs, uploadDir, err := openBlobs(cfg)
	if err != nil {
		slog.Error("failed to initialize upload storage", "error", err)
		os.Exit(1)
	}

	creds, err := handlers.NewCredentials(cfg.AdminUser, cfg.AdminPass, cfg.AdminPassHash, cfg.AdminTOTPSecret)
	if err != nil {
		slog.Error("invalid operator credentials", "error", err)
		os.Exit(1)
	}
	if cfg.AdminPass == config.DevAdminPassword && cfg.AdminPassHash == "" {
		slog.Warn("using the development operator password", "username", cfg.AdminUser)
	}

	loginLimiter := middleware.NewRateLimiter(loginLimit, loginWindow)
	defer loginLimiter.Stop()

	r := router.New(router.Deps{
		Sessions:        sessionStore,
		Posts:           handlers.NewPosts(svc, handlers.NewIntake(blobs, cfg.UploadMaxBytes())),
		Categories:      handlers.NewCategories(svc),
		Auth:            handlers.NewAuth(sessionStore, creds),
		Pages:           handlers.NewPages(cfg.PublicDir),
		LoginLimiter:    loginLimiter,
		UploadDir:       uploadDir,
		UploadURLPrefix: cfg.UploadURLPrefix,
		CORSOrigins:     cfg.CORSOrigins,
	})

	// WriteTimeout must accommodate large multipart uploads.
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutdown signal received")

	// Give active requests up to 30 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

// openStores returns the post and category stores for the configured driver.
// The postgres driver migrates on start and seeds categories in development;
// the memory driver always starts with the default categories.
func openStores(ctx context.Context, cfg *config.Config) (content.PostRepository, content.CategoryRepository, func(), error) {
	if cfg.StoreDriver == config.DriverMemory {
		categories := memstore.NewCategoryStore()
		for _, c := range database.DefaultCategories {
			if _, err := categories.Create(ctx, &models.Category{NameEn: c.NameEn, NameUr: c.NameUr}); err != nil {
				return nil, nil, nil, err
			}
		}
		slog.Warn("using the in-memory store; content is lost on restart")
		return memstore.NewPostStore(), categories, func() {}, nil
	}

	db, err := database.Connect(ctx, cfg.DSN())
	if err != nil {
		return nil, nil, nil, err
	}
	closeDB := func() {
		if err := db.Close(); err != nil {
			slog.Warn("database close failed", "error", err)
		}
	}

	if err := database.Migrate(ctx, db); err != nil {
		closeDB()
		return nil, nil, nil, err
	}
	if cfg.IsDev() {
		if err := database.Seed(ctx, db); err != nil {
			closeDB()
			return nil, nil, nil, err
		}
	}
	return store.NewPostStore(db), store.NewCategoryStore(db), closeDB, nil
}

// openBlobs picks S3 when it is configured and the local upload directory
// otherwise. uploadDir is empty when files are not served locally.
func openBlobs(cfg *config.Config) (blobs storage.Backend, uploadDir string, err error) {
	s3Backend, err := storage.NewS3(storage.S3Config{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Bucket:    cfg.S3Bucket,
		PublicURL: cfg.S3PublicURL,
	})
	if err != nil {
		return nil, "", err
	}
	if s3Backend != nil {
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
		return s3Backend, "", nil
	}

	fs, err := storage.NewFS(cfg.UploadDir, cfg.UploadURLPrefix)
	if err != nil {
		return nil, "", err
	}
	slog.Info("storing uploads on disk", "dir", fs.Dir())
	return fs, fs.Dir(), nil
}

