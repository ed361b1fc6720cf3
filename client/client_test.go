package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"sync"
	"testing"
	"time"

	"neontetris/tetris"

	"github.com/eiannone/keyboard"
)

type mockTetris struct {
	updateCh    chan *tetris.Snapshot
	start, stop bool
	actions     []tetris.Action
	mu          sync.Mutex
}

func newMockTetris() *mockTetris {
	return &mockTetris{updateCh: make(chan *tetris.Snapshot)}
}

func (m *mockTetris) GetUpdate() <-chan *tetris.Snapshot { return m.updateCh }
func (m *mockTetris) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.start = true
}
func (m *mockTetris) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stop = true
}
func (m *mockTetris) Action(a tetris.Action) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actions = append(m.actions, a)
}
func (m *mockTetris) started() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.start
}
func (m *mockTetris) stopped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stop
}
func (m *mockTetris) received() []tetris.Action {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]tetris.Action(nil), m.actions...)
}

type mockRender struct {
	gameCount  int
	lobbies    []lobbyMessage
	resetCount int
	mu         sync.Mutex
}

func (m *mockRender) game(*tetris.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gameCount++
}
func (m *mockRender) lobby(l lobbyMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lobbies = append(m.lobbies, l)
}
func (m *mockRender) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetCount++
}
func (m *mockRender) games() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gameCount
}
func (m *mockRender) lastLobby() lobbyMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.lobbies) == 0 {
		return nil
	}
	return m.lobbies[len(m.lobbies)-1]
}

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal(msg)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func testClient(games ...*mockTetris) (*Client, *mockRender, chan keyboard.KeyEvent) {
	render := &mockRender{}
	kCh := make(chan keyboard.KeyEvent)
	var mu sync.Mutex
	cl := &Client{
		newLocal: func() tetrisGame {
			mu.Lock()
			defer mu.Unlock()
			g := games[0]
			games = games[1:]
			return g
		},
		newRemote: func(context.Context) (tetrisGame, error) {
			return nil, errors.New("connection refused")
		},
		render: render,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		kbCh:   kCh,
		state:  &state{current: lobby},
	}
	return cl, render, kCh
}

func TestClient(t *testing.T) {
	tts := newMockTetris()
	cl, render, kCh := testClient(tts)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() { cl.Start(); wg.Done() }()

	// 'p' starts a local game and renders its updates.
	kCh <- keyboard.KeyEvent{Rune: 'p'}
	eventually(t, tts.started, "wanted tetris.Start() to be called")
	if cl.state.get() != playing {
		t.Errorf("wanted state to be playing, got %d", cl.state.get())
	}
	tts.updateCh <- &tetris.Snapshot{Phase: tetris.Active}
	eventually(t, func() bool { return render.games() == 1 }, "wanted render.game() to be called once")

	// while in game, keys should direct to tetris actions.
	keys := []keyboard.KeyEvent{
		{Rune: 'a'},
		{Key: keyboard.KeyArrowRight},
		{Key: keyboard.KeySpace},
		{Rune: 'c'},
		{Rune: 'k'}, // not mapped
		{Rune: '1'},
		{Rune: 'p'},
	}
	for _, k := range keys {
		kCh <- k
	}
	want := []tetris.Action{tetris.MoveLeft, tetris.MoveRight, tetris.DropDown, tetris.Hold, tetris.UseBomb, tetris.Pause}
	eventually(t, func() bool { return len(tts.received()) == len(want) }, "wanted every mapped key to reach the game")
	if got := tts.received(); !reflect.DeepEqual(got, want) {
		t.Errorf("wanted actions %v, got %v", want, got)
	}

	// game over sends the player back to the lobby.
	tts.updateCh <- &tetris.Snapshot{Phase: tetris.GameOver, Score: 42}
	eventually(t, func() bool { return cl.state.get() == lobby }, "wanted state to be lobby after game over")
	eventually(t, tts.stopped, "wanted tetris.Stop() to be called")
	if got := render.lastLobby(); !reflect.DeepEqual(got, gameOver(42)) {
		t.Errorf("wanted game over lobby, got %v", got)
	}

	// 'q' should quit the game back in the lobby
	kCh <- keyboard.KeyEvent{Rune: 'q'}
	wgDone := make(chan struct{})
	go func() { wg.Wait(); close(wgDone) }()
	select {
	case <-time.After(time.Second):
		t.Errorf("timeout waiting for quit")
	case <-wgDone:
	}
}

func TestClientLeaveGame(t *testing.T) {
	first, second := newMockTetris(), newMockTetris()
	cl, render, kCh := testClient(first, second)
	go cl.Start()
	defer func() { kCh <- keyboard.KeyEvent{Key: keyboard.KeyCtrlC} }()

	kCh <- keyboard.KeyEvent{Rune: 'p'}
	eventually(t, first.started, "wanted first game to start")
	kCh <- keyboard.KeyEvent{Key: keyboard.KeyEsc}
	eventually(t, first.stopped, "wanted first game to be stopped")
	if cl.state.get() != lobby {
		t.Errorf("wanted state to be lobby, got %d", cl.state.get())
	}
	if got := render.lastLobby(); !reflect.DeepEqual(got, defaultLobby()) {
		t.Errorf("wanted default lobby, got %v", got)
	}

	kCh <- keyboard.KeyEvent{Rune: 'p'}
	eventually(t, second.started, "wanted a new game to start")
}

func TestClientOnlineError(t *testing.T) {
	cl, render, kCh := testClient()
	go cl.Start()
	defer func() { kCh <- keyboard.KeyEvent{Key: keyboard.KeyCtrlC} }()

	kCh <- keyboard.KeyEvent{Rune: 'o'}
	want := errorMessage("unable to reach the server")
	eventually(t, func() bool { return reflect.DeepEqual(render.lastLobby(), want) }, "wanted error lobby")
	if cl.state.get() != lobby {
		t.Errorf("wanted state to be lobby, got %d", cl.state.get())
	}
}

func TestActionFor(t *testing.T) {
	tests := []struct {
		key    keyboard.KeyEvent
		action tetris.Action
	}{
		{key: keyboard.KeyEvent{Rune: 's'}, action: tetris.MoveDown},
		{key: keyboard.KeyEvent{Key: keyboard.KeyArrowDown}, action: tetris.MoveDown},
		{key: keyboard.KeyEvent{Rune: 'a'}, action: tetris.MoveLeft},
		{key: keyboard.KeyEvent{Key: keyboard.KeyArrowLeft}, action: tetris.MoveLeft},
		{key: keyboard.KeyEvent{Rune: 'd'}, action: tetris.MoveRight},
		{key: keyboard.KeyEvent{Key: keyboard.KeyArrowRight}, action: tetris.MoveRight},
		{key: keyboard.KeyEvent{Rune: 'e'}, action: tetris.RotateRight},
		{key: keyboard.KeyEvent{Rune: 'z'}, action: tetris.RotateRight},
		{key: keyboard.KeyEvent{Key: keyboard.KeyArrowUp}, action: tetris.RotateRight},
		{key: keyboard.KeyEvent{Rune: 'q'}, action: tetris.RotateLeft},
		{key: keyboard.KeyEvent{Rune: 'x'}, action: tetris.RotateLeft},
		{key: keyboard.KeyEvent{Key: keyboard.KeySpace}, action: tetris.DropDown},
		{key: keyboard.KeyEvent{Rune: 'c'}, action: tetris.Hold},
		{key: keyboard.KeyEvent{Rune: 'p'}, action: tetris.Pause},
		{key: keyboard.KeyEvent{Rune: 'r'}, action: tetris.Restart},
		{key: keyboard.KeyEvent{Rune: '1'}, action: tetris.UseBomb},
		{key: keyboard.KeyEvent{Rune: '2'}, action: tetris.UseTime},
		{key: keyboard.KeyEvent{Rune: '3'}, action: tetris.UseLaser},
		{key: keyboard.KeyEvent{Rune: '4'}, action: tetris.UseGhost},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("key %v", tt.key), func(t *testing.T) {
			got, ok := actionFor(tt.key)
			if !ok || got != tt.action {
				t.Errorf("wanted action %v, got %v", tt.action, got)
			}
		})
	}

	if _, ok := actionFor(keyboard.KeyEvent{Rune: 'k'}); ok {
		t.Error("wanted unmapped key to be ignored")
	}
}
