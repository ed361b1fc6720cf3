package tetris

import (
	"math"
	"time"
)

// Offset is a wall kick candidate applied to a rotated tetromino.
type Offset struct {
	X, Y int
}

// Gravity selects how the drop interval shrinks with the level.
type Gravity string

const (
	// LinearGravity divides the base drop interval by the level.
	LinearGravity Gravity = "linear"
	// MarathonGravity follows https://tetris.wiki/Marathon
	MarathonGravity Gravity = "marathon"
)

type Config struct {
	Rows int
	Cols int

	// DropInterval is the gravity interval at level 1.
	DropInterval time.Duration
	Gravity      Gravity

	// SlowMotionFactor multiplies the drop interval while the time power-up
	// is active.
	SlowMotionFactor   int
	SlowMotionDuration time.Duration
	ComboDisplay       time.Duration

	// FrameInterval is how often the game loop ticks the simulation.
	FrameInterval time.Duration

	// Kicks are tried in order after every rotation. This is a simplified
	// table shared by every piece and orientation, not SRS kick data.
	Kicks []Offset

	PowerUps Inventory
}

func DefaultConfig() Config {
	return Config{
		Rows:               20,
		Cols:               10,
		DropInterval:       time.Second,
		Gravity:            LinearGravity,
		SlowMotionFactor:   3,
		SlowMotionDuration: 10 * time.Second,
		ComboDisplay:       2 * time.Second,
		FrameInterval:      16 * time.Millisecond,
		Kicks: []Offset{
			{0, 0},
			{-1, 0},
			{1, 0},
			{0, -1},
			{-1, -1},
			{1, -1},
		},
		PowerUps: defaultInventory(),
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Rows <= 0 {
		c.Rows = d.Rows
	}
	if c.Cols <= 0 {
		c.Cols = d.Cols
	}
	if c.DropInterval <= 0 {
		c.DropInterval = d.DropInterval
	}
	if c.Gravity == "" {
		c.Gravity = d.Gravity
	}
	if c.SlowMotionFactor <= 0 {
		c.SlowMotionFactor = d.SlowMotionFactor
	}
	if c.SlowMotionDuration <= 0 {
		c.SlowMotionDuration = d.SlowMotionDuration
	}
	if c.ComboDisplay <= 0 {
		c.ComboDisplay = d.ComboDisplay
	}
	if c.FrameInterval <= 0 {
		c.FrameInterval = d.FrameInterval
	}
	if len(c.Kicks) == 0 {
		c.Kicks = d.Kicks
	}
	if c.PowerUps == nil {
		c.PowerUps = d.PowerUps
	}
	return c
}

// dropInterval returns the gravity interval for the given level.
func (c Config) dropInterval(level int, slowMotion bool) time.Duration {
	if level < 1 {
		level = 1
	}
	var d time.Duration
	switch c.Gravity {
	case MarathonGravity:
		// Time = (0.8-((Level-1)*0.007))^(Level-1)
		// the guideline stops speeding up at level 20.
		l := min(level, 20)
		seconds := math.Pow(0.8-float64(l-1)*0.007, float64(l-1))
		d = time.Duration(seconds * float64(time.Second))
	default:
		d = c.DropInterval / time.Duration(level)
	}
	if slowMotion && c.SlowMotionFactor > 1 {
		d *= time.Duration(c.SlowMotionFactor)
	}
	return d
}
