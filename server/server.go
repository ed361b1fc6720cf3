// Package server hosts one independent game per gRPC stream.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"neontetris/pb"
	"neontetris/tetris"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Game is the part of tetris.Game a session needs.
type Game interface {
	Start()
	Stop()
	Action(tetris.Action)
	GetUpdate() <-chan *tetris.Snapshot
}

type Options struct {
	Logger *slog.Logger
	// Config is used by the default game factory.
	Config tetris.Config
	// NewGame builds the game of every new session. The logger carries the
	// session id.
	NewGame func(l *slog.Logger) Game
}

type Server struct {
	pb.UnimplementedSessionServiceServer

	logger   *slog.Logger
	newGame  func(*slog.Logger) Game
	sessions map[string]Game
	mu       sync.Mutex
}

func New(o *Options) *Server {
	if o == nil {
		o = &Options{}
	}
	s := &Server{
		logger:   o.Logger,
		newGame:  o.NewGame,
		sessions: make(map[string]Game),
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if s.newGame == nil {
		cfg := o.Config
		s.newGame = func(l *slog.Logger) Game {
			return tetris.NewConfigurableGame(&tetris.Options{Config: cfg, Logger: l})
		}
	}
	return s
}

// Sessions returns the ids of the running sessions.
func (s *Server) Sessions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Play starts a game for the stream. Received messages are commands, every
// update of the game is sent back as a snapshot tagged with the session id.
// The game is stopped when either side ends the stream.
func (s *Server) Play(stream pb.PlayServer) error {
	id := uuid.New().String()
	logger := s.logger.With(slog.String("session", id))
	game := s.newGame(logger)

	s.mu.Lock()
	s.sessions[id] = game
	s.mu.Unlock()
	defer func() {
		game.Stop()
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		logger.Info("session closed")
	}()

	game.Start()
	logger.Info("session opened")

	recvErrCh := make(chan error, 1)
	go func() {
		for {
			msg, err := stream.Recv()
			if err != nil {
				recvErrCh <- err
				return
			}
			a, err := pb.ActionFromProto(msg)
			if err != nil {
				logger.Warn("ignoring command", slog.String("error", err.Error()))
				continue
			}
			game.Action(a)
		}
	}()

	ctx := stream.Context()
	for {
		select {
		case snap := <-game.GetUpdate():
			msg, err := pb.SnapshotToProto(id, snap)
			if err != nil {
				logger.Error("unable to encode snapshot", slog.String("error", err.Error()))
				return status.Errorf(codes.Internal, "unable to encode snapshot: %v", err)
			}
			if err := stream.Send(msg); err != nil {
				return s.streamEnd(logger, fmt.Errorf("unable to send snapshot: %w", err))
			}
		case err := <-recvErrCh:
			return s.streamEnd(logger, err)
		case <-ctx.Done():
			return s.streamEnd(logger, ctx.Err())
		}
	}
}

// streamEnd tells a client leaving apart from a broken stream. Only the
// latter is returned as an error.
func (s *Server) streamEnd(logger *slog.Logger, err error) error {
	if errors.Is(err, io.EOF) {
		logger.Debug("client closed the stream")
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = status.FromContextError(err).Err()
	}
	switch status.Code(err) {
	case codes.Canceled, codes.DeadlineExceeded:
		logger.Debug("stream ended", slog.String("error", err.Error()))
		return nil
	}
	logger.Error("stream failed", slog.String("error", err.Error()))
	return fmt.Errorf("session stream: %w", err)
}
