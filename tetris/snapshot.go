package tetris

// Snapshot is a copy of the session for renderers. Nothing in it is shared
// with the running game.
type Snapshot struct {
	Stack         Stack
	Tetromino     *Tetromino
	NextTetromino *Tetromino
	HeldTetromino *Tetromino
	// GhostY is the row the current tetromino would land on.
	GhostY  int
	CanHold bool

	Phase        Phase
	Score        int
	LinesClear   int
	Level        int
	Combo        int
	ComboVisible bool
	SlowMotion   bool
	PowerUps     Inventory
	Achievements map[Achievement]bool

	// Events are the transient events since the previous update. Only
	// snapshots published by a Game carry them.
	Events []Event
}

// Snapshot returns a deep copy of the session without pending events.
func (t *Tetris) Snapshot() *Snapshot {
	achievements := make(map[Achievement]bool, len(t.Achievements))
	for k, v := range t.Achievements {
		achievements[k] = v
	}
	return &Snapshot{
		Stack:         t.Stack.copy(),
		Tetromino:     t.Tetromino.copy(),
		NextTetromino: t.NextTetromino.copy(),
		HeldTetromino: t.HeldTetromino.copy(),
		GhostY:        t.ghostY(),
		CanHold:       t.CanHold,
		Phase:         t.Phase,
		Score:         t.Score,
		LinesClear:    t.LinesClear,
		Level:         t.Level,
		Combo:         t.Combo,
		ComboVisible:  t.ComboVisible,
		SlowMotion:    t.SlowMotion,
		PowerUps:      t.PowerUps.copy(),
		Achievements:  achievements,
	}
}

// GameOver reports whether the snapshot was taken after the game ended.
func (s *Snapshot) GameOver() bool {
	return s != nil && s.Phase == GameOver
}
