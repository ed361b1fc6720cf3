package tetris

import (
	"math/rand/v2"
	"time"
)

// Random picks the next tetromino. It is an interface so tests can queue
// the pieces they need.
type Random interface {
	// IntN returns an int in [0, n).
	IntN(n int) int
}

type mathRandom struct{}

func (mathRandom) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	return rand.IntN(n)
}

// NewRandom returns the default Random backed by math/rand/v2.
func NewRandom() Random { return mathRandom{} }

// Clock measures the time elapsed between game loop frames.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// NewClock returns a Clock backed by the system clock.
func NewClock() Clock { return realClock{} }

// draw picks a shape uniformly at random from the catalog and builds its
// spawn tetromino. There is no bag, every draw is independent.
func draw(r Random, cols int) *Tetromino {
	i := r.IntN(len(shapes))
	if i < 0 || i >= len(shapes) {
		i = 0
	}
	return newTetromino(shapes[i], cols)
}
