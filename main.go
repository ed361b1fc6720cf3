package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"neontetris/client"
	"neontetris/tetris"

	"github.com/spf13/cobra"
)

const (
	hideCursor = "\033[2J\033[?25l" // also clear screen
	showCursor = "\033[24;0H\n\r\033[?25h"
)

type config struct {
	Addr     string
	LogFile  string
	NoGhost  bool
	Marathon bool
	Debug    bool
}

func defaultConfig() *config {
	return &config{
		Addr:    getEnvOrDefault("NEONTETRIS_ADDR", "localhost:9000"),
		LogFile: os.Getenv("NEONTETRIS_LOG_FILE"),
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
		Use:   "neontetris",
		Short: "Play Neon Tetris in the terminal",
		Long: `neontetris plays Neon Tetris in the terminal, either locally or on a
session server started with cmd/server.

Keys: arrows or wasd move, up/e/z and q/x rotate, space drops, c holds,
p pauses, r restarts, 1-4 use the power-ups and esc goes back to the lobby.`,
		SilenceUsage: true,
		RunE: func(*cobra.Command, []string) error {
			return run(cfg)
		},
	}
	cmd.Flags().StringVar(&cfg.Addr, "addr", cfg.Addr, "Session server address (env: NEONTETRIS_ADDR)")
	cmd.Flags().StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Write logs to this file (env: NEONTETRIS_LOG_FILE)")
	cmd.Flags().BoolVar(&cfg.NoGhost, "no-ghost", cfg.NoGhost, "Hide the landing position of the tetromino")
	cmd.Flags().BoolVar(&cfg.Marathon, "marathon", cfg.Marathon, "Use the marathon gravity curve for local games")
	cmd.Flags().BoolVarP(&cfg.Debug, "debug", "d", cfg.Debug, "Debug logging")
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cfg *config) error {
	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	gameConfig := tetris.DefaultConfig()
	if cfg.Marathon {
		gameConfig.Gravity = tetris.MarathonGravity
	}
	c, err := client.New(logger, &client.Options{
		NoGhost: cfg.NoGhost,
		Address: cfg.Addr,
		Config:  gameConfig,
	})
	if err != nil {
		return fmt.Errorf("unable to start client: %w", err)
	}

	fmt.Print(hideCursor)
	defer fmt.Print(showCursor)
	defer func() {
		if err := c.Close(); err != nil {
			logger.Error("unable to close keyboard", slog.String("error", err.Error()))
		}
	}()
	c.Start()
	return nil
}

// newLogger writes JSON logs to the log file. The terminal is in raw mode
// while playing so without a file logs are discarded.
func newLogger(cfg *config) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	if cfg.LogFile == "" {
		return slog.New(slog.NewJSONHandler(io.Discard, nil)), func() {}, nil
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to open log file: %w", err)
	}
	logger := slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}))
	return logger, func() { f.Close() }, nil
}
