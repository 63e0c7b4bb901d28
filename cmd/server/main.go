package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/teciza/desk/internal/config"
	"github.com/teciza/desk/internal/container"
	deskhttp "github.com/teciza/desk/internal/interfaces/http"
	"github.com/teciza/desk/pkg/utils"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the YAML config file")
	envFile := flag.String("env", ".env", "optional dotenv file loaded before the config")
	flag.Parse()

	if err := gotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Failed to load %s: %v\n", *envFile, err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting desk service",
		zap.String("version", version),
		zap.String("address", cfg.Server.Addr()))

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Desk service stopped with error", zap.Error(err))
	}
	logger.Info("Desk service exited")
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	containerCfg, err := container.FromAppConfig(cfg)
	if err != nil {
		return err
	}

	c, err := container.NewContainer(containerCfg, logger)
	if err != nil {
		return err
	}
	if err := c.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := c.Close(); err != nil {
			logger.Error("Failed to close container", zap.Error(err))
		}
	}()

	deskhttp.Version = version
	server := deskhttp.NewServer(
		deskhttp.ServerConfig{
			Host:            cfg.Server.Host,
			Port:            cfg.Server.Port,
			ReadTimeout:     cfg.Server.ReadTimeout,
			WriteTimeout:    cfg.Server.WriteTimeout,
			ShutdownTimeout: cfg.Server.ShutdownTimeout,
			Mode:            cfg.Server.Mode,
			AllowedOrigins:  cfg.Server.AllowedOrigins,
			JWTSecret:       cfg.Auth.JWTSecret,
			DefaultLanguage: cfg.Desk.DefaultLanguage,
		},
		c.Services().Form,
		c.Services().Report,
		func(ctx context.Context) (bool, interface{}) {
			h := c.Health(ctx)
			return h.Overall, h.Components
		},
		container.NewServiceLogger(logger),
	)

	if cfg.Auth.JWTSecret == "" {
		logger.Info("No JWT secret configured, all requests are served as Guest")
	}

	return server.Start(ctx)
}
