package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/c14220110/poliklinik-billing/config"
	adminModels "github.com/c14220110/poliklinik-billing/internal/administrasi/models"
	adminServices "github.com/c14220110/poliklinik-billing/internal/administrasi/services"
	"github.com/c14220110/poliklinik-billing/internal/common/middlewares"
	"github.com/c14220110/poliklinik-billing/internal/common/response"
	"github.com/c14220110/poliklinik-billing/internal/repository/mariadb"
	"github.com/c14220110/poliklinik-billing/internal/routes"
	storage "github.com/c14220110/poliklinik-billing/pkg/storage/mariadb"
	"github.com/c14220110/poliklinik-billing/pkg/utils"
	"github.com/c14220110/poliklinik-billing/ws"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "poliklinik-billing",
		Short:         "Layanan billing dan pembayaran poliklinik",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(hashPasswordCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func logDotEnv(logger zerolog.Logger, cfg *config.Config) {
	if !cfg.DotEnvLoaded {
		logger.Warn().Msg(".env file not found, relying on environment variables")
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}).
			Level(level).With().Timestamp().Logger()
	}
	return logger
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Menjalankan HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)
			logDotEnv(logger, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runServer(cfg, logger)
		},
	}
}

func runServer(cfg *config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = uuid.NewString()
		logger.Warn().Msg("JWT_SECRET kosong, memakai secret acak (token tidak bertahan setelah restart)")
	}
	fees, err := cfg.ConsultationFees()
	if err != nil {
		return err
	}
	tariff := adminServices.ConsultationTariff{
		adminModels.VisitTypeOutpatient: fees.Outpatient,
		adminModels.VisitTypeInpatient:  fees.Inpatient,
		adminModels.VisitTypeEmergency:  fees.Emergency,
	}

	db, err := storage.Connect(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	hub := ws.NewHub(logger)
	go hub.Run(ctx)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = response.ErrorHandler(logger)

	// Global middleware
	e.Use(middlewares.Recovery(logger))
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middlewares.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, echo.HeaderXRequestID},
	}))

	routes.Init(e, routes.Deps{
		Store:     mariadb.New(db),
		Hub:       hub,
		Tariff:    tariff,
		JWTSecret: cfg.JWTSecret,
		JWTTTL:    cfg.JWTTTL,
		Logger:    logger,
	})

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.AppEnv).Msg("Server berjalan")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Menjalankan migrasi database",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"up", "down", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)
			logDotEnv(logger, cfg)
			if cfg.DBName == "" {
				return errors.New("DB_NAME is required")
			}
			ctx := cmd.Context()
			db, err := storage.Connect(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer db.Close()
			return storage.Migrate(ctx, db, args[0], logger)
		},
	}
	return cmd
}

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Membuat hash bcrypt untuk kolom Karyawan.password",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var password string
			if len(args) == 1 {
				password = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			if password == "" {
				return errors.New("password must not be empty")
			}
			hash, err := utils.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
