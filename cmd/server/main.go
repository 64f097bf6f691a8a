package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"skilltalk/internal/auth"
	"skilltalk/internal/config"
	"skilltalk/internal/httpapi"
	"skilltalk/internal/realtime"
	"skilltalk/internal/service"
	"skilltalk/internal/store/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	logger := newLogger(cfg)
	tokens := auth.NewTokenCodec([]byte(cfg.JWTSecret), cfg.TokenTTL)
	hub := realtime.NewHub(logger)

	var (
		authSvc     *service.AuthService
		usersSvc    *service.UsersService
		profileSvc  *service.ProfileService
		followsSvc  *service.FollowsService
		messagesSvc *service.MessageService
		dbPing      func(context.Context) error
	)

	if cfg.DBDSN != "" {
		pgPool, err := postgres.Open(context.Background(), cfg.DBDSN)
		if err != nil {
			logger.Error("db open failed", "err", err)
			os.Exit(1)
		}
		defer pgPool.Close()

		users := postgres.NewUsersStore(pgPool)
		follows := postgres.NewFollowsStore(pgPool)
		messages := postgres.NewMessagesStore(pgPool)
		userSearch := postgres.NewUserSearchStore(pgPool)

		authSvc = &service.AuthService{Users: users, Tokens: tokens}
		usersSvc = &service.UsersService{Store: userSearch}
		profileSvc = &service.ProfileService{Users: users, Follows: follows}
		followsSvc = &service.FollowsService{
			Users:    users,
			Follows:  follows,
			Notifier: hub,
			Logger:   logger,
		}
		messagesSvc = &service.MessageService{
			Messages: messages,
			Users:    users,
			Relay:    hub,
			Logger:   logger,
		}
		hub.SetMessageSender(messagesSvc)
		dbPing = pgPool.Ping
	}

	router := httpapi.NewRouter(httpapi.RouterOpts{
		Logger:   logger,
		IsProd:   cfg.IsProd(),
		DBPing:   dbPing,
		Auth:     authSvc,
		Users:    usersSvc,
		Profile:  profileSvc,
		Follows:  followsSvc,
		Messages: messagesSvc,
		Tokens:   tokens,
		WS:       hub,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "env", cfg.Env, "addr", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info", "":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.IsProd() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
