package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nkiryanov/medify/internal/db"
	"github.com/nkiryanov/medify/internal/handlers"
	"github.com/nkiryanov/medify/internal/logger"
	"github.com/nkiryanov/medify/internal/repository/postgres"
	"github.com/nkiryanov/medify/internal/service/appointment"
	"github.com/nkiryanov/medify/internal/service/auth"
	"github.com/nkiryanov/medify/internal/service/auth/revocation"
	"github.com/nkiryanov/medify/internal/service/auth/tokenmanager"
	"github.com/nkiryanov/medify/internal/service/dashboard"
	"github.com/nkiryanov/medify/internal/service/doctor"
	"github.com/nkiryanov/medify/internal/service/review"
	"github.com/nkiryanov/medify/internal/service/user"
)

const shutdownTimeout = 5 * time.Second

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler

	logger  logger.Logger
	pool    *pgxpool.Pool
	revoked *revocation.Store
}

func NewServerApp(ctx context.Context, c *Config, logger logger.Logger) (*ServerApp, error) {
	// Token manager goes first: no reason to touch the database with bad secret
	tokenManager, err := tokenmanager.New(tokenmanager.Config{
		SecretKey: c.JWTSecret,
		Alg:       c.JWTAlg,
		AccessTTL: c.AccessTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("error while creating token manager. Err: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Initialize repositories
	storage := postgres.NewStorage(pool)

	// Initialize services
	// Revocation store lives as long as the process: revoked tokens are forgotten on restart
	revoked := revocation.New()
	userService := user.NewService(auth.DefaultHasher, storage)
	authService, err := auth.NewAuthService(userService, tokenManager, revoked)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}

	router := handlers.NewRouter(handlers.Services{
		Auth:         authService,
		Users:        userService,
		Doctors:      doctor.NewService(storage.Doctor()),
		Appointments: appointment.NewService(storage),
		Reviews:      review.NewService(storage),
		Dashboard:    dashboard.NewService(storage.Dashboard()),
		DB:           pool,
	}, logger)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    router,
		logger:     logger,
		pool:       pool,
		revoked:    revoked,
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
// Returns nil if server was stopped by context
func (s *ServerApp) Run(ctx context.Context) error {
	defer s.pool.Close()

	httpServer := &http.Server{
		Addr:              s.ListenAddr,
		Handler:           s.Handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	sweeperStopped := s.revoked.RunSweeper(srvCtx, revocation.DefaultSweepInterval, s.logger)

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); errors.Is(err, context.DeadlineExceeded) {
			s.logger.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		s.logger.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	s.logger.Info("Starting server", "address", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed
	<-sweeperStopped

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
