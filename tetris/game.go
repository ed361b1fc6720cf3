package tetris

import (
	"io"
	"log/slog"
	"sync"
	"time"
)

type Ticker interface {
	C() <-chan time.Time
	Reset(time.Duration)
	Stop()
}

type wrappedTicker struct {
	ticker *time.Ticker
}

func newWrappedTicker(d time.Duration) *wrappedTicker {
	return &wrappedTicker{ticker: time.NewTicker(d)}
}

func (t *wrappedTicker) C() <-chan time.Time   { return t.ticker.C }
func (t *wrappedTicker) Stop()                 { t.ticker.Stop() }
func (t *wrappedTicker) Reset(d time.Duration) { t.ticker.Reset(d) }

// Game drives a Tetris session from a single goroutine. Frames from the
// ticker and player actions are handled one at a time, so scheduled tasks,
// gravity and commands never run concurrently.
type Game struct {
	updateCh chan *Snapshot
	actionCh chan Action
	doneCh   chan struct{}
	stopOnce sync.Once

	tetris *Tetris
	ticker Ticker
	clock  Clock
	frame  time.Duration
	logger *slog.Logger
	mu     sync.RWMutex
}

type Options struct {
	Config Config
	Ticker Ticker
	Clock  Clock
	Random Random
	Logger *slog.Logger
}

func NewGame(l *slog.Logger) *Game {
	return NewConfigurableGame(&Options{Config: DefaultConfig(), Logger: l})
}

func NewConfigurableGame(o *Options) *Game {
	cfg := o.Config.withDefaults()
	g := &Game{
		updateCh: make(chan *Snapshot),
		actionCh: make(chan Action),
		doneCh:   make(chan struct{}),
		tetris:   New(cfg, o.Random),
		ticker:   o.Ticker,
		clock:    o.Clock,
		frame:    cfg.FrameInterval,
		logger:   o.Logger,
	}
	if g.ticker == nil {
		// the ticker is reset to the frame interval once the loop starts.
		g.ticker = newWrappedTicker(time.Hour)
	}
	if g.clock == nil {
		g.clock = NewClock()
	}
	if g.logger == nil {
		g.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return g
}

// Start begins a new session and the game loop. The first update is sent as
// soon as the loop is running.
func (g *Game) Start() {
	g.mu.Lock()
	g.tetris.Apply(Start)
	g.mu.Unlock()
	go g.listen()
}

// Stop ends the game loop. It is safe to call more than once.
func (g *Game) Stop() {
	g.stopOnce.Do(func() {
		g.ticker.Stop()
		close(g.doneCh)
	})
}

// Action queues a player command. It returns once the loop picked it up or
// the game was stopped.
func (g *Game) Action(a Action) {
	select {
	case g.actionCh <- a:
	case <-g.doneCh:
	}
}

// GetUpdate returns the channel snapshots are published on. Every snapshot
// carries the events that happened since the previous one.
func (g *Game) GetUpdate() <-chan *Snapshot {
	return g.updateCh
}

// Read returns a copy of the current session that's safe to read
// concurrently. Pending events are left for the next update.
func (g *Game) Read() *Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.tetris.Snapshot()
}

func (g *Game) listen() {
	g.ticker.Reset(g.frame)
	g.logger.Debug("game loop started")
	defer g.logger.Debug("game loop stopped")

	last := g.clock.Now()
	if !g.publish() {
		return
	}
	for {
		var changed bool
		select {
		case <-g.ticker.C():
			now := g.clock.Now()
			g.mu.Lock()
			changed = g.tetris.Tick(now.Sub(last))
			g.mu.Unlock()
			last = now
		case a := <-g.actionCh:
			g.mu.Lock()
			changed = g.tetris.Apply(a)
			g.mu.Unlock()
			g.logger.Debug("action", slog.String("action", string(a)), slog.Bool("applied", changed))
		case <-g.doneCh:
			return
		}
		if changed && !g.publish() {
			return
		}
	}
}

// publish sends a snapshot with the pending events. It gives up when the
// game is stopped while waiting for a reader.
func (g *Game) publish() bool {
	g.mu.Lock()
	s := g.tetris.Snapshot()
	s.Events = g.tetris.Events()
	g.mu.Unlock()
	for _, e := range s.Events {
		if e.Type == EventGameOver {
			g.logger.Info("game over",
				slog.Int("score", s.Score),
				slog.Int("lines", s.LinesClear),
				slog.Int("level", s.Level),
			)
		}
	}
	select {
	case g.updateCh <- s:
		return true
	case <-g.doneCh:
		return false
	}
}
