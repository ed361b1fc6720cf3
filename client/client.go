// Package client plays a game in the terminal, either locally or hosted by a
// session server.
package client

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"neontetris/tetris"

	"github.com/eiannone/keyboard"
)

type clientState int

const (
	lobby clientState = iota
	waiting
	playing
)

type state struct {
	current clientState
	mu      sync.Mutex
}

func (s *state) get() clientState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *state) set(c clientState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = c
}

type tetrisGame interface {
	Start()
	GetUpdate() <-chan *tetris.Snapshot
	Action(tetris.Action)
	Stop()
}

type renderer interface {
	game(*tetris.Snapshot)
	lobby(lobbyMessage)
	reset()
}

type Client struct {
	newLocal  func() tetrisGame
	newRemote func(context.Context) (tetrisGame, error)
	render    renderer
	logger    *slog.Logger
	kbCh      <-chan keyboard.KeyEvent
	state     *state

	// current is the game being played and cancel ends it.
	current tetrisGame
	cancel  context.CancelFunc
	mu      sync.Mutex
}

type Options struct {
	NoGhost bool
	Address string
	Config  tetris.Config
}

func New(l *slog.Logger, o *Options) (*Client, error) {
	kb, err := keyboard.GetKeys(20)
	if err != nil {
		return nil, fmt.Errorf("failed to open keyboard: %w", err)
	}
	return &Client{
		newLocal: func() tetrisGame {
			return tetris.NewConfigurableGame(&tetris.Options{Config: o.Config, Logger: l})
		},
		newRemote: func(ctx context.Context) (tetrisGame, error) {
			return dialRemote(ctx, o.Address, l)
		},
		render: newRender(l, o.NoGhost),
		logger: l,
		kbCh:   kb,
		state:  &state{current: lobby},
	}, nil
}

// Close releases the keyboard and restores the terminal.
func (c *Client) Close() error {
	c.stopGame()
	return keyboard.Close()
}

// Start shows the lobby and handles keys until the player quits.
func (c *Client) Start() {
	c.render.reset()
	c.render.lobby(defaultLobby())
	c.listenKB()
	c.stopGame()
}

func (c *Client) listenKB() {
	for {
		event, ok := <-c.kbCh
		if !ok {
			c.logger.Error("Keyboard events channel closed unexpectedly")
			return
		}
		if event.Err != nil {
			c.logger.Error("keysEvents error", slog.String("error", event.Err.Error()))
			return
		}
		if event.Key == keyboard.KeyCtrlC {
			return
		}
		switch c.state.get() {
		case lobby:
			switch event.Rune {
			case 'p':
				c.state.set(playing)
				ctx := c.session()
				c.play(ctx, c.newLocal())
			case 'o':
				c.state.set(waiting)
				c.render.lobby(waitingServer())
				c.playOnline(c.session())
			case 'q':
				return
			}
		case waiting:
			if event.Rune == 'c' || event.Key == keyboard.KeyEsc {
				c.stopGame()
				c.state.set(lobby)
				c.render.lobby(defaultLobby())
			}
		case playing:
			if event.Key == keyboard.KeyEsc {
				c.stopGame()
				c.state.set(lobby)
				c.render.lobby(defaultLobby())
				continue
			}
			a, ok := actionFor(event)
			if !ok {
				continue
			}
			if g := c.game(); g != nil {
				g.Action(a)
			}
		}
	}
}

// actionFor maps a key to a game command.
func actionFor(event keyboard.KeyEvent) (tetris.Action, bool) {
	switch {
	case event.Key == keyboard.KeyArrowLeft || event.Rune == 'a':
		return tetris.MoveLeft, true
	case event.Key == keyboard.KeyArrowRight || event.Rune == 'd':
		return tetris.MoveRight, true
	case event.Key == keyboard.KeyArrowDown || event.Rune == 's':
		return tetris.MoveDown, true
	case event.Key == keyboard.KeyArrowUp || event.Rune == 'z' || event.Rune == 'e':
		return tetris.RotateRight, true
	case event.Rune == 'x' || event.Rune == 'q':
		return tetris.RotateLeft, true
	case event.Key == keyboard.KeySpace:
		return tetris.DropDown, true
	case event.Rune == 'c':
		return tetris.Hold, true
	case event.Rune == 'p':
		return tetris.Pause, true
	case event.Rune == 'r':
		return tetris.Restart, true
	case event.Rune == '1':
		return tetris.UseBomb, true
	case event.Rune == '2':
		return tetris.UseTime, true
	case event.Rune == '3':
		return tetris.UseLaser, true
	case event.Rune == '4':
		return tetris.UseGhost, true
	}
	return "", false
}

func (c *Client) game() tetrisGame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// session cancels the previous game, if any, and returns the context of the
// next one.
func (c *Client) session() context.Context {
	c.stopGame()
	ctx, cancel := context.WithCancel(context.Background())
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()
	return ctx
}

// play starts g and renders its updates until the game is over, the
// connection is lost or ctx is canceled.
func (c *Client) play(ctx context.Context, g tetrisGame) {
	c.mu.Lock()
	c.current = g
	c.mu.Unlock()

	c.render.reset()
	g.Start()
	go c.listenTetris(ctx, g)
}

func (c *Client) playOnline(ctx context.Context) {
	go func() {
		g, err := c.newRemote(ctx)
		if err != nil {
			c.logger.Error("unable to join server", slog.String("error", err.Error()))
			if ctx.Err() == nil {
				c.state.set(lobby)
				c.render.lobby(errorMessage("unable to reach the server"))
			}
			return
		}
		if ctx.Err() != nil {
			g.Stop()
			return
		}
		c.state.set(playing)
		c.play(ctx, g)
	}()
}

func (c *Client) listenTetris(ctx context.Context, g tetrisGame) {
	defer g.Stop()
	for {
		select {
		case u, ok := <-g.GetUpdate():
			if !ok {
				c.logger.Debug("game updates closed")
				c.state.set(lobby)
				c.render.lobby(errorMessage("connection lost"))
				return
			}
			c.render.game(u)
			if u.GameOver() {
				c.state.set(lobby)
				c.render.lobby(gameOver(u.Score))
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) stopGame() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.current = nil
}
