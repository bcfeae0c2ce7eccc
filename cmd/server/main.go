package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gcsstorage "cloud.google.com/go/storage"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/cyberpunkpath/gateway/internal/cache"
	"github.com/cyberpunkpath/gateway/internal/config"
	"github.com/cyberpunkpath/gateway/internal/cyberpunkpath"
	"github.com/cyberpunkpath/gateway/internal/gateway"
	"github.com/cyberpunkpath/gateway/internal/ledger"
	"github.com/cyberpunkpath/gateway/internal/objstore"
	"github.com/cyberpunkpath/gateway/internal/processor"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	configDir := envOrDefault("CONFIG_DIR", "./config")
	env := envOrDefault("APP_ENVIRONMENT", "local")

	cfg, err := config.Load(configDir, env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	storageBackend, err := buildStorage(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("build storage backend: %w", err)
	}
	slog.Info("object store ready", "backend", cfg.Storage.Client.Kind)

	respCache, closeCache, err := buildCache(cfg.Cache)
	if err != nil {
		return fmt.Errorf("build response cache: %w", err)
	}
	defer closeCache()
	slog.Info("response cache ready", "backend", cfg.Cache.Kind)

	var led *ledger.Ledger
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		led, err = ledger.Connect(ctx, dsn)
		if err != nil {
			return fmt.Errorf("connect ledger: %w", err)
		}
		defer led.Close()
		if err := led.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate ledger schema: %w", err)
		}
		slog.Info("ledger connected")
	} else {
		slog.Info("DATABASE_URL unset, ledger writes disabled")
	}

	proc := processor.New(processor.Config{
		MaxConcurrency:  int64(cfg.Processor.Concurrency),
		Timeout:         30 * time.Second,
		CustomTags:      cfg.CustomTags,
		DisabledFilters: cfg.Processor.DisabledFilters,
		MaxFilterOps:    cfg.Processor.MaxFilterOps,
	})

	signer := cyberpunkpath.NewSigner(cfg.Application.HMACSecret)

	svc := gateway.New(storageBackend, respCache, proc, signer)
	svc.Ledger = led

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(slogMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)
	svc.Routes(r)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Application.Host, cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // streaming responses — no write timeout
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutCtx)
	}()

	slog.Info("listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}

func buildStorage(ctx context.Context, cfg config.Storage) (objstore.ObjectStore, error) {
	safeChars := cyberpunkpath.ParseSafeChars(cfg.SafeChars)
	switch cfg.Client.Kind {
	case "s3":
		return objstore.NewS3(ctx, objstore.S3Config{
			Endpoint:       cfg.Client.Endpoint,
			AccessKey:      cfg.Client.AccessKey,
			SecretKey:      cfg.Client.SecretKey,
			Bucket:         cfg.Client.Bucket,
			PathPrefix:     cfg.PathPrefix,
			SafeChars:      safeChars,
			ConnectRetries: 5,
			ConnectBackoff: 2 * time.Second,
		})
	case "gcs":
		client, err := gcsstorage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("gcs client: %w", err)
		}
		return objstore.NewGCS(client, cfg.Client.Bucket, cfg.PathPrefix, safeChars), nil
	default:
		baseDir := cfg.Client.BaseDir
		if baseDir == "" {
			baseDir = cfg.BaseDir
		}
		return objstore.NewLocalFS(baseDir, cfg.PathPrefix, safeChars)
	}
}

func buildCache(cfg config.Cache) (cache.Cache, func(), error) {
	switch cfg.Kind {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.URI})
		return cache.NewRedisCache(client), func() { _ = client.Close() }, nil
	default:
		c, err := cache.NewFSCache(cfg.BaseDir)
		if err != nil {
			return nil, func() {}, err
		}
		return c, func() {}, nil
	}
}

func slogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Range")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Range, Accept-Ranges")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
