package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/goliatone/go-quoteform"
	"github.com/goliatone/go-quoteform/internal/config"
	"github.com/goliatone/go-quoteform/internal/logging"
	"github.com/goliatone/go-quoteform/internal/metrics"
	"github.com/goliatone/go-quoteform/internal/server"
	"github.com/goliatone/go-quoteform/internal/session"
	"github.com/goliatone/go-quoteform/pkg/postal"
	"github.com/goliatone/go-quoteform/pkg/quote"
	"github.com/goliatone/go-quoteform/pkg/renderers/vanilla"
)

func main() {
	cfg := config.Load()

	addr := flag.String("addr", cfg.Addr, "listen address")
	rendererName := flag.String("renderer", "", "renderer to use (default renderer if empty)")
	variant := flag.String("theme-variant", cfg.ThemeVariant, "theme variant (light or dark)")
	secure := flag.Bool("secure-cookie", false, "mark the session cookie Secure")
	flag.Parse()

	logger := logging.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore := sessionStore(ctx, cfg, logger)
	defer closeStore()

	registry, err := quoteform.NewRegistry(vanilla.WithTheme(vanilla.DefaultThemeName, *variant))
	if err != nil {
		log.Fatalf("configure renderers: %v", err)
	}
	renderer, err := registry.Get(*rendererName)
	if err != nil {
		log.Fatalf("select renderer: %v", err)
	}

	srv, err := server.New(server.Config{
		Logger:         logger,
		Store:          store,
		Renderer:       renderer,
		Lookup:         postal.NewClient(postal.WithBaseURL(cfg.LookupURL), postal.WithTimeout(cfg.LookupTimeout)),
		Messenger:      quote.Messenger{Destination: cfg.WhatsAppNumber},
		Metrics:        metrics.NewQuoteMetrics(nil),
		MetricsHandler: promhttp.Handler(),
		Assets:         vanilla.AssetsFS(),
		LookupTimeout:  cfg.LookupTimeout,
		SessionTTL:     cfg.SessionTTL,
		ThemeVariant:   *variant,
		SecureCookie:   *secure,
	})
	if err != nil {
		log.Fatalf("configure server: %v", err)
	}

	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("quote form listening", "addr", *addr, "renderer", renderer.Name())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

// sessionStore picks Redis when configured, otherwise an in-memory store
// swept on the session TTL.
func sessionStore(ctx context.Context, cfg *config.Config, logger *logging.Logger) (session.Store, func()) {
	if cfg.UseRedis() {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Fatalf("connect redis %s: %v", cfg.RedisAddr, err)
		}
		logger.Info("using redis session store", "addr", cfg.RedisAddr)
		return session.NewRedisStore(client, cfg.SessionTTL), func() { _ = client.Close() }
	}

	store := session.NewMemoryStore(cfg.SessionTTL)
	if cfg.SessionTTL > 0 {
		go func() {
			ticker := time.NewTicker(cfg.SessionTTL)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if n := store.Sweep(); n > 0 {
						logger.Debug("swept expired sessions", "count", n)
					}
				}
			}
		}()
	}
	return store, func() {}
}
