package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"blog-service/internal/config"
	"blog-service/internal/service"
	"blog-service/internal/session"
	"blog-service/internal/storage/mongo"
	"blog-service/internal/token"
	transport "blog-service/internal/transport/http"
)

// Константы для определения окружения.
const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

// Повтор подключения к первичному хранилищу: фиксированный бэкофф,
// повторяем до успеха или до сигнала завершения.
const mongoRetryBackoff = 5 * time.Second

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting application", "env", cfg.Env)

	// Корневой контекст по сигналам.
	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	// Подключение к MongoDB с ретраями.
	str := connectMongo(rootCtx, cfg.Mongo.URL, log)
	if str == nil {
		// Завершение по сигналу до того, как хранилище поднялось.
		os.Exit(1)
	}
	log.Info("mongo_connected")

	// Redis — fail-fast: без хранилища сессий сервис бесполезен.
	sessions, err := session.NewRedisStore(cfg.Redis.URL, "")
	if err != nil {
		log.Error("redis_connect_failed", slog.String("err", err.Error()))
		_ = str.Close(context.Background())
		os.Exit(1)
	}
	log.Info("redis_connected")

	// Кодек токенов: ключи декодируются один раз при старте.
	tokens, err := token.New(cfg.Auth)
	if err != nil {
		log.Error("token_keys_invalid", slog.String("err", err.Error()))
		_ = str.Close(context.Background())
		_ = sessions.Close()
		os.Exit(1)
	}

	svc := service.New(str, sessions, tokens, cfg.Auth)
	log.Info("service_initialized")

	var ready int32 // 0 — not ready; 1 — ready

	api := transport.NewRouter(svc, transport.Options{
		Logger:  log,
		Timeout: cfg.Timeouts.Service,
		Cookie:  cfg.Cookie,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if atomic.LoadInt32(&ready) == 1 {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		}
		http.Error(w, "not ready", http.StatusServiceUnavailable)
	})
	mux.Handle("/", api)

	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErrCh := make(chan error, 1)
	go func() {
		log.Info("http_listen_start", "addr", cfg.HTTP.Addr())
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	atomic.StoreInt32(&ready, 1)

	// Ожидание сигнала завершения или фатальной ошибки сервера.
	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case err := <-serveErrCh:
		if err != nil {
			log.Error("http_serve_failed", slog.String("err", err.Error()))
		}
	}

	atomic.StoreInt32(&ready, 0)

	// Graceful shutdown: даём in-flight запросам дорешаться.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_force_stop", slog.String("err", err.Error()))
	}
	shutdownCancel()

	// Явная очистка перед выходом.
	_ = sessions.Close()
	_ = str.Close(context.Background())

	log.Info("service_stopped")
}

// connectMongo подключается к MongoDB, повторяя попытки с фиксированным
// бэкоффом, пока не получится или пока не попросили завершиться.
// Возвращает nil только при отменённом контексте.
func connectMongo(ctx context.Context, mongoURL string, log *slog.Logger) *mongo.Mongo {
	for {
		dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
		str, err := mongo.New(dbCtx, mongoURL)
		dbCancel()

		if err == nil {
			return str
		}

		log.Error("mongo_connect_failed",
			slog.String("err", err.Error()),
			slog.Duration("retry_in", mongoRetryBackoff),
		)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(mongoRetryBackoff):
		}
	}
}

// setupLogger настраивает slog по окружению.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	}

	return log
}
