package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/quickcart/internal/config"
	"github.com/Skotchmaster/quickcart/internal/events"
	"github.com/Skotchmaster/quickcart/internal/httpserver"
	authmw "github.com/Skotchmaster/quickcart/internal/middleware/auth"
	"github.com/Skotchmaster/quickcart/internal/ratelimit"
	"github.com/Skotchmaster/quickcart/internal/repo"
	"github.com/Skotchmaster/quickcart/internal/search"
	"github.com/Skotchmaster/quickcart/internal/service"
	pkgdb "github.com/Skotchmaster/quickcart/pkg/db"
	"github.com/Skotchmaster/quickcart/pkg/logging"
	"github.com/Skotchmaster/quickcart/pkg/tokens"
)

const shutdownTimeout = 10 * time.Second

func serve(ctx context.Context, cfg *config.Config) error {
	l := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)

	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := pkgdb.Open(initCtx, pkgdb.Options{Driver: cfg.DB.Driver, DSN: cfg.DB.URL})
	if err != nil {
		return err
	}
	defer func() {
		if err := pkgdb.Close(db); err != nil {
			l.Error("db_close_failed", "error", err)
		}
	}()
	if err := repo.Migrate(initCtx, db); err != nil {
		return err
	}
	gormRepo := &repo.GormRepo{DB: db}

	ts, err := tokens.NewService(tokens.Config{
		Secret: []byte(cfg.JWT.Secret),
		TTL:    cfg.JWT.TTL,
		Issuer: cfg.JWT.Issuer,
	})
	if err != nil {
		return fmt.Errorf("token service: %w", err)
	}

	var pub events.Publisher = events.Nop{}
	if len(cfg.Kafka.Brokers) > 0 {
		prod, err := events.NewProducer(cfg.Kafka.Brokers)
		if err != nil {
			return err
		}
		pub = prod
		l.Info("kafka_enabled", "brokers", cfg.Kafka.Brokers)
	}
	defer func() {
		if err := pub.Close(); err != nil {
			l.Error("kafka_close_failed", "error", err)
		}
	}()

	catalog := &service.CatalogService{Repo: gormRepo, Events: pub}
	if cfg.Search.URL != "" {
		es, err := search.NewClient(initCtx, search.Config{
			URL:      cfg.Search.URL,
			User:     cfg.Search.User,
			Password: cfg.Search.Password,
			Index:    cfg.Search.Index,
		}, l)
		if err != nil {
			return err
		}
		catalog.Index = es
	}

	var loginLimit *ratelimit.Limiter
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		defer func() {
			if err := rdb.Close(); err != nil {
				l.Error("redis_close_failed", "error", err)
			}
		}()
		if err := rdb.Ping(initCtx).Err(); err != nil {
			l.Warn("redis_unreachable", "addr", cfg.Redis.Addr, "error", err)
		}
		loginLimit = ratelimit.New(rdb, cfg.RateLimit.Limit, cfg.RateLimit.Window)
	}

	authSvc := &service.AuthService{Repo: gormRepo, Tokens: ts, Events: pub}
	deps := &httpserver.Deps{
		Auth:    &httpserver.AuthHTTP{Svc: authSvc},
		Users:   &httpserver.UsersHTTP{Svc: &service.UserService{Repo: gormRepo, Events: pub}, Auth: authSvc},
		Catalog: &httpserver.CatalogHTTP{Svc: catalog},
		Guard:   &authmw.Guard{Tokens: ts, Users: gormRepo},
		Ready:   gormRepo.Ping,
	}
	if loginLimit != nil {
		deps.LoginLimit = loginLimit.Middleware
	}

	e := httpserver.New(l)
	if len(cfg.TrustedProxies) > 0 {
		if err := httpserver.TrustProxies(e, cfg.TrustedProxies); err != nil {
			return err
		}
		l.Info("trusted_proxies", "cidrs", cfg.TrustedProxies)
	}
	httpserver.Register(e, deps)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		l.Info("http_listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	l.Info("shutting_down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error("http_shutdown_failed", "error", err)
	}

	l.Info("shutdown_complete")
	return nil
}
