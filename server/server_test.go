package server

import (
	"context"
	"log"
	"log/slog"
	"net"
	"testing"
	"time"

	"neontetris/pb"
	"neontetris/tetris"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func TestPlayOpensOneSessionPerStream(t *testing.T) {
	ctx := context.Background()
	client, srv, closer := testServer(t)
	defer closer()

	first, err := client.Play(ctx)
	require.NoError(t, err)
	second, err := client.Play(ctx)
	require.NoError(t, err)

	id1, s1 := recvSnapshot(t, first)
	id2, s2 := recvSnapshot(t, second)
	assert.NotEmpty(t, id1)
	assert.NotEqual(t, id1, id2)
	assert.Equal(t, tetris.Active, s1.Phase)
	assert.Equal(t, tetris.Active, s2.Phase)
	assert.Len(t, srv.Sessions(), 2)
}

func TestPlayAppliesCommands(t *testing.T) {
	ctx := context.Background()
	client, _, closer := testServer(t)
	defer closer()

	stream, err := client.Play(ctx)
	require.NoError(t, err)
	id, s := recvSnapshot(t, stream)
	require.Equal(t, 3, s.Tetromino.X)

	require.NoError(t, stream.Send(pb.ActionToProto(tetris.MoveLeft)))
	gotID, s := recvSnapshot(t, stream)
	assert.Equal(t, id, gotID)
	assert.Equal(t, 2, s.Tetromino.X)
	require.Len(t, s.Events, 1)
	assert.Equal(t, tetris.EventMove, s.Events[0].Type)

	// unknown commands are dropped without closing the stream.
	require.NoError(t, stream.Send(wrapperspb.String("teleport")))
	require.NoError(t, stream.Send(pb.ActionToProto(tetris.DropDown)))
	_, s = recvSnapshot(t, stream)
	assert.Equal(t, 36, s.Score)
	assert.False(t, s.Stack[19][2].Empty())
}

func TestPlayEndsSessionWhenClientLeaves(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	client, srv, closer := testServer(t)
	defer closer()

	closed, err := client.Play(ctx)
	require.NoError(t, err)
	recvSnapshot(t, closed)
	require.NoError(t, closed.CloseSend())

	canceled, err := client.Play(ctx)
	require.NoError(t, err)
	recvSnapshot(t, canceled)
	cancel()

	assert.Eventually(t, func() bool { return len(srv.Sessions()) == 0 }, time.Second, 10*time.Millisecond)
}

func recvSnapshot(t *testing.T, stream pb.PlayClient) (string, *tetris.Snapshot) {
	t.Helper()
	msg, err := stream.Recv()
	require.NoError(t, err)
	id, s, err := pb.SnapshotFromProto(msg)
	require.NoError(t, err)
	return id, s
}

func testServer(t *testing.T) (pb.SessionServiceClient, *Server, func()) {
	buffer := 101024 * 1024
	lis := bufconn.Listen(buffer)

	srv := New(&Options{
		NewGame: func(*slog.Logger) Game {
			game, _, _ := tetris.NewTestGame(tetris.J)
			return game
		},
	})
	s := grpc.NewServer()
	pb.RegisterSessionServiceServer(s, srv)
	go func() {
		if err := s.Serve(lis); err != nil {
			log.Printf("unable to serve: %v", err)
		}
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet", grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) {
		return lis.Dial()
	}), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)

	closer := func() {
		if err := conn.Close(); err != nil {
			log.Printf("error closing connection: %v", err)
		}
		if err := lis.Close(); err != nil {
			log.Printf("error closing listener: %v", err)
		}
		s.Stop()
	}

	return pb.NewSessionServiceClient(conn), srv, closer
}
