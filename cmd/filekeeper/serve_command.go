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

	"github.com/jmuk/filekeeper/pkg/tools"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func serveHTTP(ctx context.Context, addr string, srv *mcp.Server, logger *slog.Logger) error {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return srv
	}, nil)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()
	logger.Info("Serving streamable HTTP", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func newServeCommand(ctx *commandContext) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server over stdio, or over streamable HTTP with --http",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			ft, err := ctx.fileTools()
			if err != nil {
				return err
			}
			s, err := ctx.newSession()
			if err != nil {
				return err
			}
			defer s.Close()
			logger, err := s.GetLogger("server")
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(s.With(cmd.Context()), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := tools.NewServer(ft, s)
			if listen == "" {
				listen = cfg.Listen
			}
			if listen != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Serving on %s (session %s)\n", listen, s.ID())
				return serveHTTP(runCtx, listen, srv, logger)
			}
			logger.Info("Serving stdio")
			if err := srv.Run(runCtx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Server stopped", "error", err)
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&listen, "http", "", "Serve streamable HTTP on this address instead of stdio")
	return cmd
}
