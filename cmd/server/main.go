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

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v3"

	"github.com/andy6609/ircserv/internal/config"
	"github.com/andy6609/ircserv/internal/ircd"
)

const version = "ircserv-1.0"

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "load .env:", err)
	}

	data, err := config.LoadFile(config.ConfigPath(os.Args))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cmd := &cli.Command{
		Name:      "ircserv",
		Usage:     "a small IRC server",
		ArgsUsage: "[host:port_network:password_network] <port> <password>",
		Version:   version,
		Flags:     config.Flags(data),
		Action:    run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.FromCommand(cmd)
	if err != nil {
		return err
	}
	logger := cfg.Logger(os.Stderr)
	slog.SetDefault(logger)

	if cfg.Network != nil {
		logger.Warn("network relay configured but server linking is not supported; ignoring",
			"host", cfg.Network.Host, "port", cfg.Network.Port)
	}

	opts := cfg.ServerOptions(version)
	opts.Created = time.Now()

	srv := ircd.NewServer(cfg.ListenAddr(), opts, logger)
	if err := srv.Start(); err != nil {
		return err
	}

	var metrics *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metrics = &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", "error", err)
			}
		}()
		logger.Info("metrics listening", "addr", cfg.MetricsAddr)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var fatal error
	select {
	case <-ctx.Done():
	case fatal = <-srv.Err():
		logger.Error("server failed", "error", fatal)
	}

	if metrics != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = metrics.Shutdown(shutdownCtx)
	}
	srv.Stop()
	return fatal
}
