package tetris_test

import (
	"neontetris/tetris"
	"testing"
	"time"
)

func nextUpdate(t *testing.T, game *tetris.Game) *tetris.Snapshot {
	t.Helper()
	select {
	case s := <-game.GetUpdate():
		return s
	case <-time.After(1 * time.Second):
		t.Fatal("Timed out waiting for update")
	}
	return nil
}

func TestUpdates(t *testing.T) {
	game, ticker, clock := tetris.NewTestGame(tetris.J)
	defer game.Stop()
	game.Start()

	s := nextUpdate(t, game)
	if s.Phase != tetris.Active {
		t.Fatalf("wanted the first update to be active, got %s", s.Phase)
	}
	if s.Tetromino.X != 3 || s.Tetromino.Y != 0 {
		t.Errorf("wanted tetromino at (3, 0), got (%d, %d)", s.Tetromino.X, s.Tetromino.Y)
	}

	game.Action(tetris.MoveLeft)
	s = nextUpdate(t, game)
	if s.Tetromino.X != 2 {
		t.Errorf("wanted X 2, got %d", s.Tetromino.X)
	}
	if len(s.Events) != 1 || s.Events[0].Type != tetris.EventMove {
		t.Errorf("wanted a move event, got %v", s.Events)
	}

	clock.Advance(time.Second)
	ticker.Tick()
	s = nextUpdate(t, game)
	if s.Tetromino.Y != 1 {
		t.Errorf("wanted gravity to move the tetromino to Y 1, got %d", s.Tetromino.Y)
	}
	if len(s.Events) != 0 {
		t.Errorf("wanted no events, got %v", s.Events)
	}

	if r := game.Read(); r.Tetromino.Y != 1 || r.Tetromino.X != 2 {
		t.Errorf("wanted Read to match the last update, got (%d, %d)", r.Tetromino.X, r.Tetromino.Y)
	}
}

func TestUpdatesOnlyOnChange(t *testing.T) {
	game, ticker, clock := tetris.NewTestGame(tetris.J)
	defer game.Stop()
	game.Start()
	nextUpdate(t, game)

	clock.Advance(100 * time.Millisecond)
	ticker.Tick()
	select {
	case s := <-game.GetUpdate():
		t.Errorf("wanted no update for an idle frame, got %v", s)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestStartStop(t *testing.T) {
	game, ticker, _ := tetris.NewTestGame(tetris.J)
	game.Start()
	nextUpdate(t, game)
	if !ticker.IsReset() {
		t.Errorf("Expected ticker to be reset")
	}
	game.Stop()
	if !ticker.IsStop() {
		t.Errorf("Expected ticker to be stopped")
	}

	done := make(chan struct{})
	go func() {
		game.Action(tetris.MoveLeft)
		game.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Error("Expected actions after stop not to block")
	}
}

func TestGameOverUpdate(t *testing.T) {
	game, _, _ := tetris.NewTestGame(tetris.O)
	defer game.Stop()
	game.Start()
	nextUpdate(t, game)

	// O tetrominoes stacked in the middle reach the top after ten drops.
	var s *tetris.Snapshot
	for range 10 {
		game.Action(tetris.DropDown)
		s = nextUpdate(t, game)
	}
	if !s.GameOver() {
		t.Fatalf("wanted game over, got %s", s.Phase)
	}
	found := false
	for _, e := range s.Events {
		if e.Type == tetris.EventGameOver {
			found = true
		}
	}
	if !found {
		t.Error("wanted a game over event")
	}
}
