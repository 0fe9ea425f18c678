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

	"github.com/certhub/examdesk/internal/bot"
	"github.com/certhub/examdesk/internal/config"
	"github.com/certhub/examdesk/internal/db"
	"github.com/certhub/examdesk/internal/events"
	"github.com/certhub/examdesk/internal/handlers"
	"github.com/certhub/examdesk/internal/services"
	"github.com/certhub/examdesk/internal/web"
)

func main() {
	cfg := config.Load()
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(log)

	conn, err := db.Open(cfg.DatabaseURL, cfg.DatabaseKey, log)
	if err != nil {
		log.Error("db init", "err", err)
		os.Exit(1)
	}
	defer db.Close(conn) //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := services.New(conn, log)
	tg := bot.NewClient(cfg.TelegramToken)
	loc := cfg.Location()

	notify := events.Multi{events.Log(log), bot.NewNotifier(tg, cfg.TelegramChatID, log)}
	env := handlers.NewEnv(svc, handlers.NewAuth(cfg.AdminPassword, cfg.SessionSecret), notify, log, loc)

	go bot.NewDigest(svc, tg, cfg.TelegramChatID, cfg.RemindOffsets, loc, log).Run(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           web.Router(env),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("examdesk listening", "addr", cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server", "err", err)
		}
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("http shutdown", "err", err)
		}
	}
}
