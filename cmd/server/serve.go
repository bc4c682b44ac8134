package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"farmdash/internal/dashboard"
	"farmdash/internal/farm"
	mcpserver "farmdash/internal/mcp"
	"farmdash/internal/records"
	"farmdash/internal/settings"
	"farmdash/internal/table"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

//go:embed static
var staticFS embed.FS

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard, JSON API and MCP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := st.close(closeCtx); err != nil {
			logger.Warn("failed to close storage", zap.Error(err))
		}
	}()

	mux, sessions, err := newMux(st)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting", zap.Int("port", cfg.Server.Port))
		logger.Info("endpoints available",
			zap.String("web", fmt.Sprintf("http://localhost:%d", cfg.Server.Port)),
			zap.String("api", fmt.Sprintf("http://localhost:%d/api", cfg.Server.Port)),
			zap.Bool("mcp", cfg.Server.MCP),
		)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GetShutdownTimeout())
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", zap.Error(err))
		}
		return nil
	})
	g.Go(func() error {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				sessions.Prune()
			}
		}
	})

	err = g.Wait()
	logger.Info("server stopped")
	return err
}

// newMux wires every HTTP surface onto one router.
func newMux(st *stores) (*http.ServeMux, *dashboard.Sessions, error) {
	mux := http.NewServeMux()

	source, farmSettings, err := dashboardBackend(cfg, st, logger)
	if err != nil {
		return nil, nil, err
	}

	// Static files
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get static fs: %w", err)
	}
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(sub))))

	// REST API endpoints
	records.NewHandler(st.records, logger.Named("api")).Register(mux)
	settings.NewHandler(st.settings, logger.Named("api")).Register(mux)

	// HTMX dashboard
	newBoard := func() *dashboard.Board {
		return dashboard.NewBoard(farm.Schemas(), func(s *table.Schema) *table.Table {
			return table.New(s, source(s), table.Options{
				PageSize: cfg.Dashboard.PageSize,
				TTL:      table.StatusTTL{Success: cfg.GetSuccessTTL(), Error: cfg.GetErrorTTL()},
				Logger:   logger.Named("table"),
			})
		})
	}
	sessions := dashboard.NewSessions(cfg.GetSessionTTL(), newBoard, logger.Named("session"))
	dashboard.NewHandler(sessions, source, farmSettings, logger.Named("dashboard")).Register(mux)

	// MCP endpoint (HTTP transport)
	// MCP uses POST for requests and GET for SSE streams
	if cfg.Server.MCP {
		mcpHTTP := server.NewStreamableHTTPServer(mcpserver.NewServer(st.records, st.settings))
		mux.Handle("POST /mcp", mcpHTTP)
		mux.Handle("GET /mcp", mcpHTTP)
		mux.Handle("DELETE /mcp", mcpHTTP)
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return mux, sessions, nil
}
