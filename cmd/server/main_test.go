package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	t.Setenv("NEONTETRIS_ADDR", "")
	assert.Equal(t, ":9000", defaultConfig().Addr)

	t.Setenv("NEONTETRIS_ADDR", "127.0.0.1:9100")
	assert.Equal(t, "127.0.0.1:9100", defaultConfig().Addr)
}

func TestRunShutsDownOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- run(ctx, &config{Addr: "127.0.0.1:0"}) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for the server to stop")
	}
}

func TestRunListenError(t *testing.T) {
	err := run(context.Background(), &config{Addr: "not-an-address"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to listen")
}
