// Command hireauthd serves the hireauth HTTP API.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hiredeck/hireauth"
	"github.com/hiredeck/hireauth/httpapi"
	"github.com/hiredeck/hireauth/store/inmem"
	"github.com/hiredeck/hireauth/store/postgres"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		zap.NewExample().Fatal("config", zap.Error(err))
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		zap.NewExample().Fatal("logger", zap.Error(err))
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg serverConfig, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() { _ = rdb.Close() }()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return err
	}

	accounts, cleanup, err := newAccountStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	engineCfg := hireauth.DefaultConfig()
	engineCfg.Token.AccessSecret = []byte(cfg.AccessSecret)
	engineCfg.Token.RefreshSecret = []byte(cfg.RefreshSecret)
	engineCfg.Token.AccessTTL = cfg.AccessTTL
	engineCfg.Token.RefreshTTL = cfg.RefreshTTL
	engineCfg.Session.MaxPerAccount = cfg.MaxSessions

	engine, err := hireauth.New().
		WithConfig(engineCfg).
		WithRedis(rdb).
		WithAccountStore(accounts).
		WithAuditSink(hireauth.NewJSONWriterSink(os.Stdout)).
		WithWarnLogger(logger.Sugar().Warnf).
		Build()
	if err != nil {
		return err
	}
	defer engine.Close()

	api := httpapi.NewServer(engine, httpapi.Config{
		CookieSecure: cfg.CookieSecure,
		RefreshTTL:   cfg.RefreshTTL,
	})

	mux := api.Routes()
	mux.Handle("GET /admin/metrics", api.Guard(hireauth.RoleAdmin)(metricsHandler(engine)))

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.ListenAddr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func metricsHandler(engine *hireauth.Engine) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		out := make(map[string]uint64)
		for id, v := range engine.MetricsSnapshot() {
			out[id.String()] = v
		}
		out["audit_dropped"] = engine.AuditDropped()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	})
}

func newAccountStore(ctx context.Context, cfg serverConfig, logger *zap.Logger) (hireauth.AccountStore, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL unset, using in-memory account store")
		return inmem.New(), func() {}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	store, err := postgres.New(pool)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	return store, pool.Close, nil
}

func newLogger(level string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	c := zap.NewProductionConfig()
	c.Level = zap.NewAtomicLevelAt(lvl)
	c.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return c.Build()
}
