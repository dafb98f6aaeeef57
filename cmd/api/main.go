package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/workforce-verify/internal/config"
	"github.com/workforce-verify/internal/infrastructure/dynamo"
	jwtinfra "github.com/workforce-verify/internal/infrastructure/jwt"
	"github.com/workforce-verify/internal/infrastructure/mail"
	"github.com/workforce-verify/internal/infrastructure/postgres"
	"github.com/workforce-verify/internal/pkg/logger"
	transporthttp "github.com/workforce-verify/internal/transport/http"
	"go.uber.org/zap"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel, cfg.AppEnv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	if envErr != nil {
		log.Info("no .env file found, reading from environment")
	}

	ctx := context.Background()

	// Bootstrap the identity table (creates it if it doesn't exist).
	dynamoClient, err := dynamo.NewClient(ctx, cfg)
	if err != nil {
		log.Fatal("dynamodb client", zap.Error(err))
	}
	dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables, log.Named("dynamo"))

	pool, err := postgres.Open(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		log.Fatal("postgres unavailable", zap.Error(err))
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal("postgres migration failed", zap.Error(err))
	}

	// JWT verifier (optional, admin routes are disabled without it).
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewVerifier(cfg); err == nil {
		jwtProvider = p
	} else {
		log.Warn("JWT verifier not available", zap.Error(err))
	}

	deps := &transporthttp.Deps{
		Identities:    dynamo.NewIdentityRepo(dynamoClient, cfg.DynamoTables.Identities),
		Profiles:      postgres.NewProfileRepo(pool),
		Verifications: postgres.NewVerificationRepo(pool),
		Mailer:        mail.NewDispatcherFromConfig(cfg.Mail, log.Named("mail")),
		JWTProvider:   jwtProvider,
		Log:           log,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("port", cfg.AppPort), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
		return
	}
	log.Info("server stopped")
}
