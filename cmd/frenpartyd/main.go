package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"frenparty/config"
	"frenparty/core"
	"frenparty/observability"
	"frenparty/observability/logging"
	"frenparty/rpc"
	"frenparty/storage"
)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		logging.Setup("frenpartyd", "").Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := logging.Setup("frenpartyd", cfg.RuntimeEnvironment(os.Getenv("FRENPARTY_ENV")))

	params, err := cfg.MarketParams()
	if err != nil {
		logger.Error("invalid market config", slog.Any("error", err))
		os.Exit(1)
	}

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		logger.Error("failed to open database", slog.String("dataDir", cfg.DataDir), slog.Any("error", err))
		os.Exit(1)
	}

	node, err := core.NewNode(db, params)
	if err != nil {
		logger.Error("failed to start node", slog.Any("error", err))
		_ = db.Close()
		os.Exit(1)
	}
	node.SetEmitter(observability.NewSink(logger))

	server := rpc.NewServer(node, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(cfg.RPCAddress)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", slog.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("rpc shutdown failed", slog.Any("error", err))
		}
		cancel()
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("rpc server failed", slog.Any("error", err))
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("rpc server failed", slog.Any("error", err))
		}
	}

	if err := node.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "error closing node: %v\n", err)
	}
}
