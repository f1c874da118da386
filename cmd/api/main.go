package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"okrhub/api/internal/app"
	"okrhub/api/internal/config"
	"okrhub/api/internal/session"
	"okrhub/api/internal/store"
)

// openRepository selects the persistence mode once for the lifetime of the
// process: a reachable database means connected mode, anything else falls
// back to the in-memory demo store.
func openRepository(ctx context.Context, cfg config.Config) (store.Repository, bool) {
	if cfg.DemoMode {
		log.Printf("Demo mode forced; using in-memory store")
		return store.NewMemoryStore(), true
	}
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		log.Printf("No DATABASE_URL configured; using in-memory store")
		return store.NewMemoryStore(), true
	}

	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Printf("WARNING: database connection failed, falling back to demo mode: %v", err)
		return store.NewMemoryStore(), true
	}
	if err := store.ApplyMigrations(ctx, db); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}
	log.Printf("Connected to PostgreSQL")
	return store.NewPostgresStore(db), false
}

func main() {
	cfg := config.Load()
	ctx := context.Background()

	repo, demoMode := openRepository(ctx, cfg)
	defer repo.Close()

	var service *app.Service
	if strings.TrimSpace(cfg.RedisURL) != "" {
		log.Printf("Using Redis for session storage")
		redisStore, err := session.NewRedisStore(cfg.RedisURL)
		if err != nil {
			log.Fatalf("redis connection failed: %v", err)
		}
		defer redisStore.Close()
		service = app.New(cfg, repo, redisStore, demoMode)
	} else {
		service = app.New(cfg, repo, nil, demoMode)
	}

	httpServer := app.NewHTTPServer(service, cfg.CORSOrigin)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("OKR Hub API listening on %s (demo=%v)", cfg.Addr, demoMode)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
