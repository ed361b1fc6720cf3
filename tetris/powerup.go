package tetris

type PowerUp string

const (
	Bomb     PowerUp = "bomb"  // Clears a 3x3 block in the lower part of the stack.
	TimeWarp PowerUp = "time"  // Slows gravity down for a while.
	Laser    PowerUp = "laser" // Clears the row at the current tetromino.
	Ghost    PowerUp = "ghost" // Score bonus.
)

var powerUps = []PowerUp{Bomb, TimeWarp, Laser, Ghost}

const (
	bombScore  = 500
	laserScore = 300
	ghostScore = 1000
)

// Inventory holds the remaining uses of every power-up.
type Inventory map[PowerUp]int

func defaultInventory() Inventory {
	return Inventory{
		Bomb:     3,
		TimeWarp: 2,
		Laser:    2,
		Ghost:    1,
	}
}

func (i Inventory) copy() Inventory {
	c := make(Inventory, len(i))
	for k, v := range i {
		c[k] = v
	}
	return c
}

// activate spends one use of p and applies its effect. It returns false
// without touching anything when the game is not running or p is depleted.
func (t *Tetris) activate(p PowerUp) bool {
	if t.Phase != Active {
		return false
	}
	if _, ok := t.PowerUps[p]; !ok || t.PowerUps[p] <= 0 {
		return false
	}
	t.PowerUps[p]--
	t.emit(Event{Type: EventPowerUp, PowerUp: p})

	switch p {
	case Bomb:
		t.bomb()
	case TimeWarp:
		t.slowMotion()
	case Laser:
		t.laser()
	case Ghost:
		// the preview of upcoming pieces was never built, the ghost is only
		// a score bonus.
		t.Score += ghostScore
	}
	return true
}

//	.	0 1 2 3 4 5 6 7 8 9
//	14	. . . . X X X . . .
//	15	. . . . X C X . . .
//	16	. . . . X X X . . .
func (t *Tetris) bomb() {
	cy := t.Stack.rows() * 3 / 4
	cx := t.Stack.cols() / 2
	for _, c := range t.Stack.clearArea(cx, cy, 1) {
		t.emit(Event{Type: EventParticles, X: float64(c[0]) + 0.5, Y: float64(c[1]) + 0.5, Count: 10})
	}
	t.emit(Event{Type: EventShake, Magnitude: 15})
	t.Score += bombScore
}

// slowMotion turns slow motion on for the configured duration. Using it
// again while active restarts the countdown.
func (t *Tetris) slowMotion() {
	t.SlowMotion = true
	t.emit(Event{Type: EventSlowMotion, Active: true})
	if t.slowTask != 0 {
		t.sched.cancel(t.slowTask)
	}
	t.slowTask = t.schedule(t.config.SlowMotionDuration, func() {
		t.slowTask = 0
		t.SlowMotion = false
		t.emit(Event{Type: EventSlowMotion, Active: false})
	})
}

func (t *Tetris) laser() {
	if t.Tetromino == nil {
		return
	}
	y := t.Tetromino.Y
	if !t.Stack.clearRow(y) {
		return
	}
	t.emit(Event{Type: EventLineClear, Rows: []int{y}, Count: 1})
	t.Score += laserScore
}
