package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/analytics-tagger/internal/analytics/flashstore"
	"github.com/ignite/analytics-tagger/internal/analytics/provider"
	"github.com/ignite/analytics-tagger/internal/analytics/trackingbag"
	"github.com/ignite/analytics-tagger/internal/config"
	"github.com/ignite/analytics-tagger/internal/page"
	"github.com/ignite/analytics-tagger/internal/pkg/logger"
	"github.com/ignite/analytics-tagger/internal/tracking"
)

func main() {
	defaultPath := os.Getenv("CONFIG_PATH")
	if defaultPath == "" {
		defaultPath = "config.yaml"
	}
	configPath := flag.String("config", defaultPath, "path to the YAML config file")
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
	if cfg.Logging.RedactPII != nil {
		logger.SetRedactPII(*cfg.Logging.RedactPII)
	}

	// Fail at startup rather than on the first request.
	if _, err := provider.New(cfg.Analytics, nil); err != nil {
		log.Fatalf("Invalid analytics config: %v", err)
	}
	newProvider := func(bag *trackingbag.Bag) (provider.Provider, error) {
		return provider.New(cfg.Analytics, bag)
	}

	var pageOpts []page.Option
	if cfg.Analytics.DisableScriptBlock {
		pageOpts = append(pageOpts, page.WithScriptTag())
	}
	pages, err := page.New(cfg.Page, pageOpts...)
	if err != nil {
		log.Fatalf("Failed to load page layout: %v", err)
	}

	store, closeStore := openStore(cfg)
	defer closeStore()

	sessions := tracking.NewSessions(store, cfg.Session, newProvider)
	handler := tracking.NewHandler(sessions, pages, cfg.Page.CSP)

	addr := fmt.Sprintf("%s:%d", cfg.Server.GetHost(), cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      tracking.NewRouter(handler, cfg.Server.AllowedOrigins),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("analytics service listening on %s (provider=%s)", addr, cfg.Analytics.Provider)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down analytics service...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

// openStore connects to Redis when configured and falls back to process
// memory when it is not set or unreachable.
func openStore(cfg *config.Config) (flashstore.Store, func()) {
	ttl := cfg.Session.FlashTTL()
	memory := func() (flashstore.Store, func()) {
		return flashstore.NewMemoryStore(ttl, nil), func() {}
	}

	if cfg.Redis.URL == "" {
		log.Println("REDIS_URL not set: pending tracking commands kept in memory")
		return memory()
	}

	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		opts = &redis.Options{Addr: cfg.Redis.URL}
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Printf("Warning: Redis connection failed (%s): %v, falling back to memory store", opts.Addr, err)
		client.Close()
		return memory()
	}

	log.Printf("Redis connected: %s (cross-host tracking handoff enabled)", opts.Addr)
	return flashstore.NewRedisStore(client, cfg.Redis.KeyPrefix, ttl), func() { client.Close() }
}
