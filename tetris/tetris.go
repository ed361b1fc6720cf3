// Package tetris contains the logic of the game: the tetromino catalog, the
// stack, scoring, power-ups and the session state machine. Nothing in this
// package blocks or starts goroutines, see Game for the loop driving it.
package tetris

import "time"

type Phase string

const (
	Idle     Phase = "idle"     // Before the first start.
	Active   Phase = "active"   // Gravity runs and commands are accepted.
	Paused   Phase = "paused"   // Gravity frozen, only pause/start/restart accepted.
	GameOver Phase = "gameover" // A tetromino collided on spawn.
)

type Action string

const (
	MoveLeft    Action = "left"      // Moves the Tetromino one step to the left.
	MoveRight   Action = "right"     // Moves the Tetromino one step to the right.
	MoveDown    Action = "down"      // Moves the Tetromino one step down. Soft drop.
	DropDown    Action = "drop"      // Drops the Tetromino down the stack. Hard drop.
	RotateRight Action = "rotatecw"  // Rotates the Tetromino clockwise.
	RotateLeft  Action = "rotateccw" // Rotates the Tetromino counter-clockwise.
	Hold        Action = "hold"      // Swaps the Tetromino with the held one.
	UseBomb     Action = "bomb"
	UseTime     Action = "time"
	UseLaser    Action = "laser"
	UseGhost    Action = "ghost"
	Start       Action = "start"   // Starts a new game keeping the power-ups.
	Pause       Action = "pause"   // Toggles pause.
	Restart     Action = "restart" // Starts a new game with a full inventory.
)

var actions = []Action{
	MoveLeft, MoveRight, MoveDown, DropDown, RotateRight, RotateLeft, Hold,
	UseBomb, UseTime, UseLaser, UseGhost, Start, Pause, Restart,
}

// ParseAction validates a command received from outside the process.
func ParseAction(s string) (Action, bool) {
	for _, a := range actions {
		if string(a) == s {
			return a, true
		}
	}
	return "", false
}

// Tetris is the state of a single game session. It is not safe for
// concurrent use, Game serializes access to it.
type Tetris struct {
	Stack         Stack
	Tetromino     *Tetromino
	NextTetromino *Tetromino
	HeldTetromino *Tetromino
	// CanHold is cleared by a hold and restored by the next lock.
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

	config     Config
	rand       Random
	sched      *scheduler
	generation int
	dropTimer  time.Duration
	comboTask  int
	slowTask   int
	events     []Event
}

// New returns an idle session. Zero fields of c take their default value and
// a nil r draws pieces from math/rand/v2.
func New(c Config, r Random) *Tetris {
	c = c.withDefaults()
	if r == nil {
		r = NewRandom()
	}
	return &Tetris{
		Stack:        emptyStack(c.Rows, c.Cols),
		CanHold:      true,
		Phase:        Idle,
		Level:        1,
		PowerUps:     c.PowerUps.copy(),
		Achievements: newAchievements(),
		config:       c,
		rand:         r,
		sched:        newScheduler(),
	}
}

// Apply runs a player command and reports whether it changed anything.
// Commands other than Start, Restart and Pause are ignored unless the game
// is Active.
func (t *Tetris) Apply(a Action) bool {
	switch a {
	case Start:
		t.start()
		return true
	case Restart:
		t.restart()
		return true
	case Pause:
		return t.togglePause()
	}

	if t.Phase != Active || t.Tetromino == nil {
		return false
	}
	switch a {
	case MoveLeft:
		return t.move(-1, 0)
	case MoveRight:
		return t.move(1, 0)
	case MoveDown:
		return t.softDrop()
	case DropDown:
		t.drop()
		return true
	case RotateRight:
		return t.rotate(1)
	case RotateLeft:
		return t.rotate(-1)
	case Hold:
		return t.hold()
	case UseBomb, UseTime, UseLaser, UseGhost:
		return t.activate(PowerUp(a))
	}
	return false
}

// Tick advances the session by elapsed time. Scheduled tasks always run,
// gravity only while Active. It reports whether the state changed.
func (t *Tetris) Tick(elapsed time.Duration) bool {
	changed := t.sched.advance(elapsed, t.generation) > 0
	if t.Phase != Active || t.Tetromino == nil {
		return changed
	}
	t.dropTimer += elapsed
	if t.dropTimer < t.DropInterval() {
		return changed
	}
	t.dropTimer = 0
	if !t.move(0, 1) {
		t.lock()
	}
	return true
}

// DropInterval is the current time between gravity steps.
func (t *Tetris) DropInterval() time.Duration {
	return t.config.dropInterval(t.Level, t.SlowMotion)
}

func (t *Tetris) start() {
	t.generation++
	t.Stack = emptyStack(t.config.Rows, t.config.Cols)
	t.Score = 0
	t.LinesClear = 0
	t.Level = 1
	t.Combo = 0
	t.ComboVisible = false
	t.SlowMotion = false
	t.comboTask = 0
	t.slowTask = 0
	t.dropTimer = 0
	t.HeldTetromino = nil
	t.CanHold = true
	t.Tetromino = nil
	t.NextTetromino = nil
	t.Phase = Active
	t.spawn()
}

func (t *Tetris) restart() {
	t.PowerUps = t.config.PowerUps.copy()
	t.start()
}

func (t *Tetris) togglePause() bool {
	switch t.Phase {
	case Active:
		t.Phase = Paused
	case Paused:
		t.Phase = Active
	default:
		return false
	}
	return true
}

func (t *Tetris) schedule(d time.Duration, fn func()) int {
	return t.sched.after(d, t.generation, fn)
}

// move replaces the tetromino with a copy translated by dx, dy if the copy
// fits in the stack.
func (t *Tetris) move(dx, dy int) bool {
	candidate := t.Tetromino.moved(dx, dy)
	if t.Stack.collides(candidate) {
		return false
	}
	t.Tetromino = candidate
	if dx != 0 {
		t.emit(Event{Type: EventMove})
	}
	return true
}

func (t *Tetris) softDrop() bool {
	if !t.move(0, 1) {
		return false
	}
	t.Score++
	return true
}

// drop moves the tetromino down until it lands, scoring 2 points per row,
// and locks it.
func (t *Tetris) drop() {
	distance := 0
	for t.move(0, 1) {
		distance++
	}
	t.Score += distance * 2

	landed := t.Tetromino
	t.emit(Event{Type: EventHardDrop, Count: distance})
	t.emit(Event{Type: EventShake, Magnitude: 10})
	t.emit(Event{
		Type:  EventParticles,
		X:     float64(landed.X) + float64(landed.width())/2,
		Y:     float64(landed.Y),
		Count: 15,
	})
	t.lock()
}

// rotate turns the tetromino 90 degrees and tries the kick offsets in order,
// keeping the first placement that fits. Nothing changes if none does.
func (t *Tetris) rotate(direction int) bool {
	current := t.Tetromino
	grid := rotateGrid(current.Grid, direction)
	for _, k := range t.config.Kicks {
		candidate := current.copy()
		candidate.Grid = grid
		candidate.X += k.X
		candidate.Y += k.Y
		if t.Stack.collides(candidate) {
			continue
		}
		t.Tetromino = candidate
		t.emit(Event{Type: EventRotate})
		if t.isTSpin(candidate) {
			t.unlock(TSpin)
			t.emit(Event{Type: EventTSpin})
			t.emit(Event{Type: EventParticles, X: float64(candidate.X), Y: float64(candidate.Y), Count: 20})
		}
		return true
	}
	return false
}

// isTSpin checks the corners of the 3x3 box a T tetromino sits in. Three or
// more occupied corners make a T-Spin. Corners outside the stack don't count.
//
//	.	0 1 2
//	0	C . C
//	1	. . .
//	2	C . C
func (t *Tetris) isTSpin(p *Tetromino) bool {
	if p.Shape != T {
		return false
	}
	filled := 0
	for _, c := range [][2]int{{0, 0}, {2, 0}, {0, 2}, {2, 2}} {
		if t.Stack.occupied(p.X+c[0], p.Y+c[1]) {
			filled++
		}
	}
	return filled >= 3
}

// hold swaps the tetromino with the held one, or with the next one when
// nothing is held yet. The tetromino going into hold loses its rotation.
func (t *Tetris) hold() bool {
	if !t.CanHold {
		return false
	}
	t.CanHold = false
	held := newTetromino(t.Tetromino.Shape, t.config.Cols)
	if t.HeldTetromino != nil {
		t.Tetromino = newTetromino(t.HeldTetromino.Shape, t.config.Cols)
		t.checkSpawn()
	} else {
		t.spawn()
	}
	t.HeldTetromino = held
	return true
}

// lock transfers the tetromino to the stack, clears lines and brings in the
// next tetromino.
func (t *Tetris) lock() {
	t.Stack.lock(t.Tetromino)
	t.Tetromino = nil
	t.CanHold = true
	t.clearLines()
	t.spawn()
}

// spawn promotes the next tetromino to current and draws a new next one.
func (t *Tetris) spawn() {
	if t.NextTetromino == nil {
		t.NextTetromino = draw(t.rand, t.config.Cols)
	}
	t.Tetromino = t.NextTetromino
	t.NextTetromino = draw(t.rand, t.config.Cols)
	t.dropTimer = 0
	t.checkSpawn()
}

// checkSpawn ends the game if the freshly placed tetromino doesn't fit.
func (t *Tetris) checkSpawn() {
	if !t.Stack.collides(t.Tetromino) {
		return
	}
	t.Phase = GameOver
	t.emit(Event{Type: EventGameOver})
}

// ghostY is the row the tetromino would land on if dropped.
func (t *Tetris) ghostY() int {
	if t.Tetromino == nil {
		return 0
	}
	p := t.Tetromino
	for !t.Stack.collides(p.moved(0, 1)) {
		p = p.moved(0, 1)
	}
	return p.Y
}
