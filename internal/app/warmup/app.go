// Package warmup собирает приложение: базу данных, кеш, брокер, платежный
// шлюз, сервисы и HTTP-сервер.
package warmup

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/WarmUp-AI/WebDev/internal/cache"
	"github.com/WarmUp-AI/WebDev/internal/config"
	"github.com/WarmUp-AI/WebDev/internal/lib/jwt"
	"github.com/WarmUp-AI/WebDev/internal/lib/rabbitmq"
	"github.com/WarmUp-AI/WebDev/internal/lib/secretbox"
	"github.com/WarmUp-AI/WebDev/internal/lib/sl"
	"github.com/WarmUp-AI/WebDev/internal/migrations"
	"github.com/WarmUp-AI/WebDev/internal/paymentgateway"
	accountservice "github.com/WarmUp-AI/WebDev/internal/services/account"
	authservice "github.com/WarmUp-AI/WebDev/internal/services/auth"
	orderservice "github.com/WarmUp-AI/WebDev/internal/services/order"
	statsservice "github.com/WarmUp-AI/WebDev/internal/services/stats"
	"github.com/WarmUp-AI/WebDev/internal/storage/repository"
)

type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	rabbitConn, err := rabbitmq.Connect(cfg.RabbitConnection, 5, 3*time.Second)
	if err != nil {
		return nil, err
	}
	rabbitChannel, err := rabbitmq.SetupChannel(rabbitConn)
	if err != nil {
		return nil, err
	}
	publisher := rabbitmq.NewPublisher(rabbitChannel)

	cipher, err := secretbox.New(cfg.EncryptionKey)
	if err != nil {
		return nil, err
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	gateway := paymentgateway.NewClient(cfg.Stripe)

	authService := authservice.NewAuthService(db, jwtMaker)
	orderService := orderservice.NewOrderService(logger, db, db, gateway, publisher)
	accountService := accountservice.NewAccountService(db, db, cipher)
	statsService := statsservice.NewStatsService(logger, db, cacheRedis)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, jwtMaker, db, Services{
		Auth:    authService,
		Order:   orderService,
		Account: accountService,
		Stats:   statsService,
		Gateway: gateway,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if closeErr := a.db.DB.Close(); closeErr != nil {
			a.logger.Error("failed to close database", sl.Err(closeErr))
		}
		return err
	}
}
