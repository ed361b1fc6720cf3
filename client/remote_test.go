package client

import (
	"bytes"
	"context"
	"log"
	"log/slog"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"neontetris/pb"
	"neontetris/server"
	"neontetris/tetris"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
)

func TestRemoteGame(t *testing.T) {
	client, closer := testServer(t)
	defer closer()

	logs := &syncBuffer{}
	logger := slog.New(slog.NewTextHandler(logs, nil))
	game, err := newRemoteGame(context.Background(), client, logger)
	if err != nil {
		t.Fatalf("unable to open remote game: %v", err)
	}
	game.Start()

	s := nextRemoteUpdate(t, game)
	if s.Phase != tetris.Active || s.Tetromino.X != 3 {
		t.Errorf("wanted an active game with the tetromino at X 3, got %s at %d", s.Phase, s.Tetromino.X)
	}
	id := game.session()
	if id == "" {
		t.Error("wanted a session id")
	}

	game.Action(tetris.MoveLeft)
	s = nextRemoteUpdate(t, game)
	if s.Tetromino.X != 2 {
		t.Errorf("wanted X 2, got %d", s.Tetromino.X)
	}

	game.Stop()
	game.Stop()
	select {
	case _, ok := <-game.GetUpdate():
		if ok {
			t.Error("wanted updates to be closed after stop")
		}
	case <-time.After(time.Second):
		t.Error("timeout waiting for updates to close")
	}
	if want := "left session\" session=" + id; !strings.Contains(logs.String(), want) {
		t.Errorf("wanted %q in logs, got %q", want, logs.String())
	}
}

type syncBuffer struct {
	buf bytes.Buffer
	mu  sync.Mutex
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func nextRemoteUpdate(t *testing.T, g *remoteGame) *tetris.Snapshot {
	t.Helper()
	select {
	case s, ok := <-g.GetUpdate():
		if !ok {
			t.Fatal("updates closed")
		}
		return s
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for update")
	}
	return nil
}

func testServer(t *testing.T) (pb.SessionServiceClient, func()) {
	buffer := 101024 * 1024
	lis := bufconn.Listen(buffer)

	s := grpc.NewServer()
	pb.RegisterSessionServiceServer(s, server.New(&server.Options{
		NewGame: func(*slog.Logger) server.Game {
			game, _, _ := tetris.NewTestGame(tetris.J)
			return game
		},
	}))
	go func() {
		if err := s.Serve(lis); err != nil {
			log.Printf("unable to serve: %v", err)
		}
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet", grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) {
		return lis.Dial()
	}), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("error connecting to server: %v", err)
	}

	closer := func() {
		if err := conn.Close(); err != nil {
			log.Printf("error closing connection: %v", err)
		}
		if err := lis.Close(); err != nil {
			log.Printf("error closing listener: %v", err)
		}
		s.Stop()
	}
	return pb.NewSessionServiceClient(conn), closer
}
