package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"

	"doctor-booking-api/internal/api"
	"doctor-booking-api/internal/app"
	"doctor-booking-api/internal/catalog"
	"doctor-booking-api/internal/clock"
	"doctor-booking-api/internal/config"
	"doctor-booking-api/internal/handler"
	"doctor-booking-api/internal/middleware"
	"doctor-booking-api/internal/model"
	"doctor-booking-api/internal/notify"
	"doctor-booking-api/internal/realtime"
	"doctor-booking-api/internal/store"
	"doctor-booking-api/internal/workflow"
)

const migrationFile = "db/migrations/001_init.sql"

func newLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger.Level(cfg.Level())
}

// loadDoctors picks the doctor source: Postgres when DATABASE_URL is set,
// then DOCTORS_FILE, then the built-in list. The returned func releases the
// source.
func loadDoctors(ctx context.Context, cfg *config.Config, logger zerolog.Logger) ([]model.Doctor, func(), error) {
	nop := func() {}
	switch {
	case cfg.DatabaseURL != "":
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("db: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("db ping: %w", err)
		}
		logger.Info().Msg("connected to postgres")
		migrate(ctx, pool, logger)

		doctors, err := catalog.LoadPG(ctx, pool)
		if err == nil && len(doctors) == 0 {
			if err = catalog.SeedPG(ctx, pool, catalog.Default()); err == nil {
				logger.Info().Msg("seeded doctors table")
				doctors, err = catalog.LoadPG(ctx, pool)
			}
		}
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return doctors, pool.Close, nil
	case cfg.DoctorsFile != "":
		doctors, err := catalog.LoadFile(cfg.DoctorsFile)
		if err != nil {
			return nil, nil, err
		}
		return doctors, nop, nil
	}
	return catalog.Default(), nop, nil
}

func migrate(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) {
	migration, err := os.ReadFile(migrationFile)
	if err != nil {
		logger.Warn().Err(err).Msg("migration file not found, skipping")
		return
	}
	if _, err := pool.Exec(ctx, string(migration)); err != nil {
		logger.Warn().Err(err).Msg("migration failed")
		return
	}
	logger.Info().Msg("migration applied")
}

func runServer(ctx context.Context, cfg *config.Config) error {
	logger := newLogger(cfg)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	clk := clock.Real(loc)

	doctors, closeSrc, err := loadDoctors(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeSrc()
	cat, err := catalog.New(doctors)
	if err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	logger.Info().Int("doctors", cat.Len()).Msg("catalog loaded")

	hub := realtime.NewHub(logger)
	st := store.New(store.WithClock(clk))
	st.Subscribe(hub.AppointmentCreated)

	a := app.New(cat, st,
		app.WithClock(clk),
		app.WithLogger(logger),
		app.WithNotifier(notify.NewLog(logger)),
		app.WithSessionOptions(workflow.WithDelays(cfg.SubmitDelay, cfg.ConfirmDelay)),
	)

	rl := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go rl.Run(ctx)
	go sweepSessions(ctx, a, clk, cfg.SessionTTL, logger)

	// grpc
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		middleware.UnaryRecovery(logger),
		middleware.UnaryLogger(logger),
		middleware.RateLimit(rl),
	))
	handler.Register(srv, handler.New(a))

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	go func() {
		logger.Info().Str("port", cfg.GRPCPort).Msg("grpc listening")
		if err := srv.Serve(lis); err != nil {
			logger.Error().Err(err).Msg("grpc stopped")
		}
	}()

	// http
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Content-Type", "X-Request-ID"},
	}))
	api.NewHandler(a, hub, rl).RegisterRoutes(e)

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("http listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http stopped")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	srv.GracefulStop()
	a.Sessions().CloseAll()
	hub.CloseAll()
	logger.Info().Msg("server stopped")
	return nil
}

func sweepSessions(ctx context.Context, a *app.App, clk clock.Clock, ttl time.Duration, logger zerolog.Logger) {
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := a.Sessions().Sweep(clk.Now(), ttl); n > 0 {
				logger.Debug().Int("sessions", n).Msg("expired sessions removed")
			}
		}
	}
}
