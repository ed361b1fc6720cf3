package client

import (
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"text/template"

	"neontetris/tetris"
)

const (
	// ASCII colors.
	Cyan    = "36"
	Blue    = "34"
	Orange  = "38;5;214"
	Yellow  = "33"
	Green   = "32"
	Red     = "31"
	Magenta = "35"

	resetPos    = "\033[H"        // Reset cursor position to 0,0
	clearScreen = "\033[2J\033[H" // Clear the screen and reset the cursor
	bell        = "\a"             // Audible cue for line clears
	boldOn      = "\033[1m"
	dimOn       = "\033[2m"
	attrOff     = "\033[0m"
	eraseLine   = "\033[K"

	emptyCell  = "  "
	ghostCell  = "[]"
	hiddenCell = "\x1b[2m..\x1b[0m" // Board cells while paused
)

//go:embed "layout.tmpl"
var layout string

var colorMap = map[tetris.Shape]string{
	tetris.I: Cyan,
	tetris.J: Blue,
	tetris.L: Orange,
	tetris.O: Yellow,
	tetris.S: Green,
	tetris.Z: Red,
	tetris.T: Magenta,
}

type templateData struct {
	Game    *tetris.Snapshot
	NoGhost bool
	// Message is the latest notable event, kept on screen until the next.
	Message string

	mu sync.Mutex
}

type render struct {
	writer   io.Writer
	logger   *slog.Logger
	template *template.Template
	*templateData
}

func newRender(l *slog.Logger, noGhost bool) *render {
	return &render{
		writer:       os.Stdout,
		logger:       l,
		template:     loadTemplate(),
		templateData: &templateData{NoGhost: noGhost},
	}
}

func (r *render) reset() {
	r.templateData.mu.Lock()
	r.templateData.Game = nil
	r.templateData.Message = ""
	r.templateData.mu.Unlock()
	fmt.Fprint(r.writer, clearScreen)
}

func (r *render) game(s *tetris.Snapshot) {
	r.templateData.mu.Lock()
	defer r.templateData.mu.Unlock()
	r.templateData.Game = s
	if m, ok := message(s.Events); ok {
		r.templateData.Message = m
	}
	for _, e := range s.Events {
		if e.Type == tetris.EventLineClear {
			fmt.Fprint(r.writer, bell)
			break
		}
	}
	fmt.Fprint(r.writer, resetPos)
	if err := r.template.Execute(r.writer, r.templateData); err != nil {
		r.logger.Error("unable to execute template", slog.String("error", err.Error()))
	}
}

type lobbyMessage []string

func defaultLobby() lobbyMessage {
	return lobbyMessage{
		"Welcome to Neon Tetris",
		"",
		"(p)lay   (o)nline   (q)uit",
	}
}

func gameOver(score int) lobbyMessage {
	return lobbyMessage{
		"Game Over :)",
		fmt.Sprintf("score %d", score),
		"(p)lay   (o)nline   (q)uit",
	}
}

func waitingServer() lobbyMessage {
	return lobbyMessage{
		"connecting to server...",
		"",
		"(c)ancel",
	}
}

func errorMessage(msg string) lobbyMessage {
	return lobbyMessage{
		"something went wrong :(",
		msg,
		"(p)lay   (o)nline   (q)uit",
	}
}

// lobby draws a box with the message over whatever is on screen.
func (r *render) lobby(m lobbyMessage) {
	const width = 38
	fmt.Fprintf(r.writer, "\033[10;9H+%s+", strings.Repeat("-", width))
	for i, line := range m {
		if len(line) > width {
			line = line[:width]
		}
		left := (width - len(line)) / 2
		right := width - len(line) - left
		fmt.Fprintf(r.writer, "\033[%d;9H|%s%s%s|", 11+i, strings.Repeat(" ", left), line, strings.Repeat(" ", right))
	}
	fmt.Fprintf(r.writer, "\033[%d;9H+%s+", 11+len(m), strings.Repeat("-", width))
}

func loadTemplate() *template.Template {
	funcMap := template.FuncMap{
		"board":  board,
		"border": border,
		"panel":  panel,
	}

	// we use the console raw so new lines don't automatically transform into carriage return
	// to fix that we add a carriage return to every new line in the layout.
	l := strings.ReplaceAll(layout, "\n", "\r\n")
	l = strings.ReplaceAll(l, "Neon Tetris", boldOn+"Neon Tetris"+attrOff)
	return template.Must(template.New("layout").Funcs(funcMap).Parse(l))
}

func paint(shape tetris.Shape) string {
	c, ok := colorMap[shape]
	if !ok {
		return emptyCell
	}
	return fmt.Sprintf("\x1b[7m\x1b[%sm[]\x1b[0m", c)
}

// board renders the stack with the ghost and the current tetromino on top,
// one string per cell. Without a game it renders an empty 20x10 board.
func board(t *templateData) [][]string {
	if t == nil || t.Game == nil || len(t.Game.Stack) == 0 {
		return blank(20, 10)
	}
	s := t.Game
	rendered := blank(len(s.Stack), len(s.Stack[0]))
	if s.Phase == tetris.Paused {
		for y := range rendered {
			for x := range rendered[y] {
				rendered[y][x] = hiddenCell
			}
		}
		return rendered
	}
	for y, row := range s.Stack {
		for x, c := range row {
			if !c.Empty() {
				rendered[y][x] = paint(c.Shape)
			}
		}
	}

	if s.Tetromino == nil {
		return rendered
	}
	put := func(y int, cell string) {
		for iy, row := range s.Tetromino.Grid {
			for ix, v := range row {
				x, y := s.Tetromino.X+ix, y+iy
				if v && y >= 0 && y < len(rendered) && x >= 0 && x < len(rendered[y]) {
					rendered[y][x] = cell
				}
			}
		}
	}
	if !t.NoGhost {
		put(s.GhostY, ghostCell)
	}
	put(s.Tetromino.Y, paint(s.Tetromino.Shape))
	return rendered
}

func blank(rows, cols int) [][]string {
	rendered := make([][]string, rows)
	for y := range rendered {
		rendered[y] = make([]string, cols)
		for x := range rendered[y] {
			rendered[y][x] = emptyCell
		}
	}
	return rendered
}

func border(t *templateData) string {
	cols := 10
	if t != nil && t.Game != nil && len(t.Game.Stack) > 0 {
		cols = len(t.Game.Stack[0])
	}
	return strings.Repeat("-", cols*len(emptyCell))
}

// piece renders a preview in a 4x2 box, empty rows for a nil tetromino.
func piece(t *tetris.Tetromino) []string {
	var rendered []string
	for i := range 2 {
		row := []string{emptyCell, emptyCell, emptyCell, emptyCell}
		if t != nil && i < len(t.Grid) {
			for iv, v := range t.Grid[i] {
				if v && iv < len(row) {
					row[iv] = paint(t.Shape)
				}
			}
		}
		rendered = append(rendered, strings.Join(row, ""))
	}
	return rendered
}

// panel returns the side panel lines, one per board row.
func panel(t *templateData) []string {
	lines := make([]string, len(board(t)))
	if t == nil || t.Game == nil {
		for i := range lines {
			lines[i] = eraseLine
		}
		return lines
	}
	s := t.Game
	next := piece(s.NextTetromino)
	held := piece(s.HeldTetromino)
	holdLabel := "Hold"
	if !s.CanHold {
		holdLabel = dimOn + "Hold" + attrOff
	}

	var side []string
	side = append(side,
		fmt.Sprintf("Score  %d", s.Score),
		fmt.Sprintf("Level  %d", s.Level),
		fmt.Sprintf("Lines  %d", s.LinesClear),
		combo(s),
		"",
		"Next",
	)
	side = append(side, next...)
	side = append(side, "", holdLabel)
	side = append(side, held...)
	side = append(side, "", powerUps(s), statusLine(s), "", t.Message)
	for i := range lines {
		if i < len(side) {
			lines[i] = side[i]
		}
		lines[i] += eraseLine
	}
	return lines
}

func combo(s *tetris.Snapshot) string {
	if !s.ComboVisible || s.Combo < 2 {
		return ""
	}
	return fmt.Sprintf("%sCOMBO x%d%s", boldOn, s.Combo, attrOff)
}

// powerUpKeys lists the power-ups in the order of the keys using them.
var powerUpKeys = []struct {
	key string
	p   tetris.PowerUp
}{
	{"1", tetris.Bomb},
	{"2", tetris.TimeWarp},
	{"3", tetris.Laser},
	{"4", tetris.Ghost},
}

func powerUps(s *tetris.Snapshot) string {
	parts := make([]string, 0, len(powerUpKeys))
	for _, k := range powerUpKeys {
		parts = append(parts, fmt.Sprintf("%s:%s %d", k.key, k.p, s.PowerUps[k.p]))
	}
	return strings.Join(parts, " ")
}

func statusLine(s *tetris.Snapshot) string {
	switch {
	case s.Phase == tetris.Paused:
		return "PAUSED"
	case s.SlowMotion:
		return "SLOW MOTION"
	}
	return ""
}

var clearNames = []string{"", "SINGLE", "DOUBLE", "TRIPLE", "TETRIS!"}

// message picks the most notable event of an update for the panel.
func message(events []tetris.Event) (string, bool) {
	var m string
	rank := 0
	for _, e := range events {
		var candidate string
		var r int
		switch e.Type {
		case tetris.EventAchievement:
			candidate, r = "Unlocked "+string(e.Achievement), 4
		case tetris.EventTSpin:
			candidate, r = "T-SPIN!", 3
		case tetris.EventLineClear:
			candidate, r = clearNames[min(len(e.Rows), len(clearNames)-1)], 2
		case tetris.EventPowerUp:
			candidate, r = string(e.PowerUp)+"!", 1
		}
		if r > rank {
			m, rank = candidate, r
		}
	}
	return m, rank > 0
}
