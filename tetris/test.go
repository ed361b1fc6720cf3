package tetris

import (
	"io"
	"log/slog"
	"sync"
	"time"
)

// MockTicker is a mock implementation of the ticker interface.
type MockTicker struct {
	ch          chan time.Time
	stop, reset bool
	mu          sync.Mutex
}

func NewMockTicker() *MockTicker          { return &MockTicker{ch: make(chan time.Time)} }
func (m *MockTicker) C() <-chan time.Time { return m.ch }
func (m *MockTicker) Tick()               { m.ch <- time.Now() }
func (m *MockTicker) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stop = true
}
func (m *MockTicker) Reset(time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset = true
}
func (m *MockTicker) IsReset() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reset
}
func (m *MockTicker) IsStop() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stop
}

// MockClock is a manual clock for the game loop.
type MockClock struct {
	now time.Time
	mu  sync.Mutex
}

func NewMockClock() *MockClock { return &MockClock{now: time.Unix(0, 0)} }

func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

// QueueRandom draws the queued shapes in order and then keeps repeating the
// last one.
type QueueRandom struct {
	queue []int
	pos   int
	mu    sync.Mutex
}

func NewQueueRandom(shapes ...Shape) *QueueRandom {
	q := &QueueRandom{}
	q.Queue(shapes...)
	return q
}

func (q *QueueRandom) Queue(s ...Shape) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, shape := range s {
		for i, v := range shapes {
			if v == shape {
				q.queue = append(q.queue, i)
			}
		}
	}
}

func (q *QueueRandom) IntN(int) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.queue) == 0 {
		return 0
	}
	if q.pos >= len(q.queue) {
		return q.queue[len(q.queue)-1]
	}
	v := q.queue[q.pos]
	q.pos++
	return v
}

// NewTestTetris creates an active session where every drawn tetromino has
// the given shape, so the current and next tetrominoes are known.
func NewTestTetris(shape Shape) *Tetris {
	t := New(DefaultConfig(), NewQueueRandom(shape))
	t.Apply(Start)
	t.Events()
	return t
}

// NewTestGame creates a game with manual ticker and clock.
func NewTestGame(shapes ...Shape) (*Game, *MockTicker, *MockClock) {
	ticker := NewMockTicker()
	clock := NewMockClock()
	g := NewConfigurableGame(&Options{
		Config: DefaultConfig(),
		Ticker: ticker,
		Clock:  clock,
		Random: NewQueueRandom(shapes...),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return g, ticker, clock
}
