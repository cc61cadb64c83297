package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	cfg, err := LoadConfig()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	if err := RunMigrations(cfg.MigrateURL()); err != nil {
		slog.Error("run migrations", "error", err)
		os.Exit(1)
	}

	store, err := NewPostgresStore(context.Background(), cfg.DatabaseURL())
	if err != nil {
		slog.Error("initialize store", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("connected to database", "host", cfg.PGHost, "database", cfg.PGDatabase)

	var publisher AlertPublisher = NoopPublisher{}
	if cfg.AMQPURL != "" {
		rabbit, err := NewRabbitMQPublisher(cfg.AMQPURL)
		if err != nil {
			slog.Error("connect to rabbitmq", "error", err)
			os.Exit(1)
		}
		defer rabbit.Close()
		publisher = rabbit
		slog.Info("budget alert publisher connected")
	}

	h := NewHandler(store, NewTokenService(cfg.SecretKey), publisher)

	mux := chi.NewRouter()
	RegisterRoutes(mux, h)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	slog.Info("starting server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
