package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"neontetris/pb"
	"neontetris/tetris"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

// remoteGame plays a game hosted by the session server. Commands are sent on
// the stream and snapshots received from it are published like a local game
// does. The update channel is closed when the stream ends.
type remoteGame struct {
	conn     *grpc.ClientConn
	stream   pb.PlayClient
	cancel   context.CancelFunc
	updateCh chan *tetris.Snapshot
	logger   *slog.Logger
	stopOnce sync.Once
	sendMu   sync.Mutex

	sessionID string
	mu        sync.Mutex
}

func dialRemote(ctx context.Context, addr string, l *slog.Logger) (*remoteGame, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("unable to create gRPC client: %w", err)
	}
	g, err := newRemoteGame(ctx, pb.NewSessionServiceClient(conn), l)
	if err != nil {
		if cErr := conn.Close(); cErr != nil {
			l.Error("unable to close gRPC client", slog.String("error", cErr.Error()))
		}
		return nil, err
	}
	g.conn = conn
	return g, nil
}

func newRemoteGame(ctx context.Context, c pb.SessionServiceClient, l *slog.Logger) (*remoteGame, error) {
	ctx, cancel := context.WithCancel(ctx)
	stream, err := c.Play(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("unable to open Play stream: %w", err)
	}
	return &remoteGame{
		stream:   stream,
		cancel:   cancel,
		updateCh: make(chan *tetris.Snapshot),
		logger:   l,
	}, nil
}

// Start receives snapshots until the stream ends. The server starts the game
// as soon as the stream is open.
func (r *remoteGame) Start() {
	go r.receive()
}

func (r *remoteGame) receive() {
	defer close(r.updateCh)
	ctx := r.stream.Context()
	for {
		msg, err := r.stream.Recv()
		if err != nil {
			r.logStreamEnd("stream.Recv()", err)
			return
		}
		id, s, err := pb.SnapshotFromProto(msg)
		if err != nil {
			r.logger.Error("unable to decode snapshot", slog.String("error", err.Error()))
			continue
		}
		r.mu.Lock()
		if r.sessionID == "" {
			r.logger.Info("joined session", slog.String("session", id))
		}
		r.sessionID = id
		r.mu.Unlock()
		select {
		case r.updateCh <- s:
		case <-ctx.Done():
			return
		}
	}
}

// session returns the id the server gave to the game, empty until the first
// snapshot arrived.
func (r *remoteGame) session() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessionID
}

func (r *remoteGame) GetUpdate() <-chan *tetris.Snapshot {
	return r.updateCh
}

func (r *remoteGame) Action(a tetris.Action) {
	r.sendMu.Lock()
	defer r.sendMu.Unlock()
	if err := r.stream.Send(pb.ActionToProto(a)); err != nil {
		r.logStreamEnd("stream.Send()", err)
	}
}

// Stop ends the stream and closes the connection. It is safe to call more
// than once.
func (r *remoteGame) Stop() {
	r.stopOnce.Do(func() {
		r.sendMu.Lock()
		if err := r.stream.CloseSend(); err != nil {
			r.logger.Debug("unable to close stream", slog.String("error", err.Error()))
		}
		r.sendMu.Unlock()
		r.cancel()
		if r.conn != nil {
			if err := r.conn.Close(); err != nil {
				r.logger.Error("unable to close gRPC client", slog.String("error", err.Error()))
			}
		}
		r.logger.Info("left session", slog.String("session", r.session()))
	})
}

func (r *remoteGame) logStreamEnd(op string, err error) {
	if errors.Is(err, io.EOF) {
		r.logger.Debug(op+" closed with EOF", slog.String("msg", err.Error()))
		return
	}
	st, ok := status.FromError(err)
	switch {
	case ok && st.Code() == codes.Canceled:
		r.logger.Debug(op+" closed with Cancel", slog.String("msg", st.Message()))
	case ok && st.Code() == codes.DeadlineExceeded:
		r.logger.Debug(op+" closed with DeadlineExceeded", slog.String("msg", st.Message()))
	default:
		r.logger.Error(op+" failed", slog.String("error", err.Error()))
	}
}
