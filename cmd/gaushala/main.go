package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	slogecho "github.com/samber/slog-echo"
	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/gaushala-net/gaushala/client"
	"github.com/gaushala-net/gaushala/internal/config"
	"github.com/gaushala-net/gaushala/internal/infra/database"
	"github.com/gaushala-net/gaushala/internal/infra/gateway"
	"github.com/gaushala-net/gaushala/internal/infra/repository"
	"github.com/gaushala-net/gaushala/internal/present/rest"
	"github.com/gaushala-net/gaushala/internal/present/rest/middleware"
	"github.com/gaushala-net/gaushala/internal/service"
	"github.com/gaushala-net/gaushala/internal/usecase"
)

const serviceName = "gaushala"

func main() {
	app := cli.App{
		Name:  serviceName,
		Usage: "community knowledge and workshop service for cattle farmers",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "path to the yaml config file",
				Value:   "/etc/gaushala/config.yaml",
				EnvVars: []string{"GAUSHALA_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "debug, info, warn or error",
				Value:   "info",
				EnvVars: []string{"GAUSHALA_LOG_LEVEL", "LOG_LEVEL"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP server",
				Action: runServe,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "bind",
						Usage:   "address to listen on, overrides the config file",
						EnvVars: []string{"GAUSHALA_BIND"},
					},
				},
			},
			{
				Name:   "migrate",
				Usage:  "create or update the database schema and exit",
				Action: runMigrate,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("exiting", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func setup(cctx *cli.Context) (config.Config, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cctx.String("log-level"))); err != nil {
		return config.Config{}, fmt.Errorf("invalid log level: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	return config.Load(cctx.String("config"))
}

func runMigrate(cctx *cli.Context) error {
	cfg, err := setup(cctx)
	if err != nil {
		return err
	}

	db, err := database.NewPostgres(cfg.Server.PostgresDsn)
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}
	return database.Migrate(db)
}

func runServe(cctx *cli.Context) error {
	cfg, err := setup(cctx)
	if err != nil {
		return err
	}
	if bind := cctx.String("bind"); bind != "" {
		cfg.Server.Bind = bind
	}

	ctx, stop := signal.NotifyContext(cctx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Server.EnableTrace {
		shutdown, err := setupTraceProvider(ctx, cfg.Server.TraceEndpoint, serviceName)
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(ctx); err != nil {
				slog.Error("failed to shutdown trace provider", slog.String("error", err.Error()))
			}
		}()
	}

	location, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("invalid timezone: %w", err)
	}

	db, err := database.NewPostgres(cfg.Server.PostgresDsn)
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	rdb, err := database.NewRedis(ctx, cfg.Server.RedisAddr, cfg.Server.RedisDB)
	if err != nil {
		return err
	}
	defer rdb.Close()
	mc := database.NewMemcached(cfg.Server.MemcachedAddr)

	httpClient := client.New(serviceName, cfg.Classifier.Timeout)
	classifier := gateway.NewClassifierGateway(httpClient, cfg.Classifier.Endpoint, cfg.Classifier.Model, cfg.Classifier.APIKey)
	media := gateway.NewMediaGateway(httpClient, cfg.Media.Endpoint, cfg.Media.CloudName, cfg.Media.UploadPreset)

	profileRepo := repository.NewProfileRepository(db)
	postRepo := repository.NewPostRepository(db)
	workshopRepo := repository.NewCachedWorkshopRepository(repository.NewWorkshopRepository(db), mc, time.Minute)

	signalService := service.NewSignalService(rdb)
	identityService := service.NewIdentityService(profileRepo, cfg.Auth.RoleTTL)
	authService := service.NewAuthService(cfg.Auth)

	postUsecase := usecase.NewPostUsecase(
		usecase.NewContentGate(classifier),
		usecase.NewCategorizer(classifier),
		postRepo,
		profileRepo,
		media,
		signalService,
	)
	verificationUsecase := usecase.NewVerificationUsecase(postRepo, profileRepo, identityService, signalService)
	workshopUsecase := usecase.NewWorkshopUsecase(workshopRepo, profileRepo, media, signalService, location)
	registrationUsecase := usecase.NewRegistrationUsecase(workshopRepo, profileRepo, signalService)
	profileUsecase := usecase.NewProfileUsecase(profileRepo)

	handler := rest.NewHandler(
		postUsecase,
		verificationUsecase,
		workshopUsecase,
		registrationUsecase,
		profileUsecase,
		signalService,
	)
	authMiddleware := middleware.NewAuthMiddleware(authService)

	e := echo.New()
	e.HideBanner = true
	e.Use(slogecho.New(slog.Default()))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(echomiddleware.BodyLimit("32M"))
	e.Use(otelecho.Middleware(serviceName))
	e.Use(echoprometheus.NewMiddleware(serviceName))
	e.Use(authMiddleware.IdentifyIdentity)

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echoprometheus.NewHandler())
	handler.RegisterRoutes(e)

	go func() {
		slog.Info("server starting", slog.String("bind", cfg.Server.Bind))
		if err := e.Start(cfg.Server.Bind); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
