package root

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/rpggio/streamos/internal/assistant"
	"github.com/rpggio/streamos/internal/config"
	"github.com/rpggio/streamos/internal/mcp"
	"github.com/rpggio/streamos/internal/transport"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard RPC endpoint and the MCP tool server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	// Use stderr for logs in stdio mode to keep stdout clean for JSON-RPC.
	logWriter := io.Writer(os.Stdout)
	if cfg.Transport.Mode == "stdio" {
		logWriter = os.Stderr
	}
	if cfg.Log.Path != "" {
		file, err := openCappedFile(cfg.Log.Path, maxLogSizeBytes, keepLogSizeBytes)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			defer file.Close()
			logWriter = file
		}
	}
	level := new(slog.LevelVar)
	level.Set(config.ParseLevel(cfg.Log.Level))
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{Level: level}))

	if cfg.Path != "" {
		watcher, err := config.WatchLevel(ctx, cfg.Path, level, logger)
		if err != nil {
			logger.Warn("config watch disabled", "path", cfg.Path, "error", err)
		} else {
			defer watcher.Stop()
		}
	}

	var model assistant.Model
	if cfg.Assistant.APIKey != "" {
		gm, err := assistant.NewGeminiModel(ctx, cfg.Assistant.APIKey, cfg.Assistant.Model)
		if err != nil {
			return fmt.Errorf("creating assistant client: %w", err)
		}
		model = gm
	} else {
		logger.Info("assistant disabled", "reason", "no api key")
	}

	a, cleanup, err := openApp(ctx, cfg, model, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	services := mcp.NewServices(a)
	mcpServer := mcp.NewServer(mcp.Config{Services: services, Logger: logger})

	if cfg.Transport.Mode == "stdio" {
		return runStdioMode(ctx, logger, mcpServer)
	}

	var auth func(http.Handler) http.Handler
	if cfg.Auth.Enabled {
		auth = transport.AuthMiddleware(transport.NewStaticTokens(cfg.Auth.Tokens))
	}
	router := transport.NewServer(mcp.NewHandler(services), auth, mcp.NewHTTPHandler(mcpServer))
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	return runHTTPMode(ctx, logger, router, addr, cfg.Auth.Enabled)
}

func runStdioMode(ctx context.Context, logger *slog.Logger, mcpServer *sdkmcp.Server) error {
	logger.Info("starting stdio transport", "auth", "disabled")

	// Run blocks until stdin closes or the context is canceled.
	if err := mcpServer.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio server: %w", err)
	}
	logger.Info("shutting down")
	return nil
}

func runHTTPMode(ctx context.Context, logger *slog.Logger, handler http.Handler, addr string, authEnabled bool) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr, "auth", authEnabled)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logger.Info("shutting down")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		return err
	}
	return nil
}
