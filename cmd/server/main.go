package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/divvyhq/divvy/internal/auth"
	"github.com/divvyhq/divvy/internal/config"
	"github.com/divvyhq/divvy/internal/fieldcrypt"
	"github.com/divvyhq/divvy/internal/server"
	"github.com/divvyhq/divvy/internal/service"
	"github.com/divvyhq/divvy/internal/storage"
	"github.com/divvyhq/divvy/internal/storage/mongo"
	"github.com/divvyhq/divvy/internal/storage/sqlite"
	"github.com/divvyhq/divvy/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.JSON)

	store, err := openStore(cfg.Storage)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "driver", cfg.Storage.Driver)

	crypt, err := fieldcrypt.New(cfg.Auth.FieldSecret)
	if err != nil {
		slog.Error("Failed to initialize field encryption", "error", err)
		os.Exit(1)
	}

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenDuration)
	authenticator := auth.NewPasswordAuthenticator(store)

	membership := service.NewMembershipService(store, crypt)
	expenses := service.NewExpenseService(store, membership)
	settlements := service.NewSettlementService(store, membership)
	balances := service.NewBalanceService(store)

	api := server.New(jwtManager, authenticator, membership, expenses, settlements, balances)

	// Wrap with h2c for HTTP/2 without TLS
	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      h2c.NewHandler(api.Handler(), &http2.Server{}),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		slog.Info("Server starting", "address", cfg.HTTP.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Shutdown failed", "error", err)
	}
}

func openStore(cfg config.StorageConfig) (storage.Store, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		return mongo.New(context.Background(), cfg.MongoURI, cfg.MongoDB)
	default:
		return sqlite.New(cfg.SQLitePath)
	}
}
