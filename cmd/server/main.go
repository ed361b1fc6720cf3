package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"neontetris/pb"
	"neontetris/server"
	"neontetris/tetris"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
)

// shutdownTimeout bounds how long open sessions may keep the server alive
// after a shutdown signal.
const shutdownTimeout = 5 * time.Second

type config struct {
	Addr     string
	Marathon bool
	Debug    bool
}

func defaultConfig() *config {
	return &config{
		Addr: getEnvOrDefault("NEONTETRIS_ADDR", ":9000"),
	}
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func newRootCmd() *cobra.Command {
	cfg := defaultConfig()
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Run the Neon Tetris session server",
		Long: `server hosts Neon Tetris sessions over gRPC. Every Play stream gets
its own game which runs on the server until the stream ends.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&cfg.Addr, "addr", cfg.Addr, "Listen address (env: NEONTETRIS_ADDR)")
	cmd.Flags().BoolVar(&cfg.Marathon, "marathon", cfg.Marathon, "Use the marathon gravity curve")
	cmd.Flags().BoolVarP(&cfg.Debug, "debug", "d", cfg.Debug, "Debug logging")
	return cmd
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config) error {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	gameConfig := tetris.DefaultConfig()
	if cfg.Marathon {
		gameConfig.Gravity = tetris.MarathonGravity
	}

	lis, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		logger.Error("failed to listen", slog.String("error", err.Error()))
		return fmt.Errorf("failed to listen: %w", err)
	}
	s := grpc.NewServer()
	pb.RegisterSessionServiceServer(s, server.New(&server.Options{
		Logger: logger,
		Config: gameConfig,
	}))

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("addr", lis.Addr().String()))
		errCh <- s.Serve(lis)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("failed to serve", slog.String("error", err.Error()))
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("shutting down server")
	}

	stopped := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(shutdownTimeout):
		logger.Warn("sessions still open, forcing shutdown")
		s.Stop()
	}
	return nil
}
