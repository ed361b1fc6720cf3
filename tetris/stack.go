package tetris

import "sort"

// Cell is a single position of the stack. The zero value is an empty cell.
type Cell struct {
	Shape Shape
	Color string
	Glow  string
}

func (c Cell) Empty() bool { return c.Shape == "" }

// NewCell returns the cell a locked tetromino of shape s leaves behind.
// Unknown shapes give an empty cell.
func NewCell(s Shape) Cell {
	d, ok := catalog[s]
	if !ok {
		return Cell{}
	}
	return Cell{Shape: s, Color: d.color, Glow: d.glow}
}

// Stack is the playfield, Stack[y][x].
// Rows are 0 > ROWS-1 top to bottom and represent the Y axis.
// Columns are 0 > COLS-1 left to right and represent the X axis.
type Stack [][]Cell

func emptyStack(rows, cols int) Stack {
	s := make(Stack, rows)
	for i := range s {
		s[i] = make([]Cell, cols)
	}
	return s
}

func (s Stack) rows() int { return len(s) }

func (s Stack) cols() int {
	if len(s) == 0 {
		return 0
	}
	return len(s[0])
}

func (s Stack) inBounds(x, y int) bool {
	return y >= 0 && y < s.rows() && x >= 0 && x < s.cols()
}

func (s Stack) occupied(x, y int) bool {
	return s.inBounds(x, y) && !s[y][x].Empty()
}

// collides reports whether the tetromino overlaps the walls, the floor or a
// locked cell. Cells above the top row never collide so pieces can rotate
// and spawn partially out of view.
//
//	.	0 1 2 3 4 5 6 7 8 9		0 1 2
//	0	X X X O X X X X X X		O X X
//	1	X X X O O O X X X X		O O O
//	2	X X X X X C X X X X
func (s Stack) collides(t *Tetromino) bool {
	for iy, row := range t.Grid {
		for ix, c := range row {
			if !c {
				continue
			}
			x, y := t.X+ix, t.Y+iy
			if x < 0 || x >= s.cols() || y >= s.rows() {
				return true
			}
			if y >= 0 && !s[y][x].Empty() {
				return true
			}
		}
	}
	return false
}

// lock copies the tetromino's cells into the stack.
func (s Stack) lock(t *Tetromino) {
	for iy, row := range t.Grid {
		for ix, c := range row {
			x, y := t.X+ix, t.Y+iy
			if c && s.inBounds(x, y) {
				s[y][x] = Cell{Shape: t.Shape, Color: t.Color, Glow: t.Glow}
			}
		}
	}
}

// fullRows returns the indexes of the complete rows scanning from the
// bottom of the stack up.
func (s Stack) fullRows() []int {
	var full []int
	for y := s.rows() - 1; y >= 0; y-- {
		complete := true
		for _, c := range s[y] {
			if c.Empty() {
				complete = false
				break
			}
		}
		if complete {
			full = append(full, y)
		}
	}
	return full
}

// removeRows splices every given row out of the stack and pushes an empty
// row on top for each one. Rows are removed from the top down, removing a
// row only shifts the rows above it so the remaining indexes stay valid.
func (s Stack) removeRows(rows []int) {
	sorted := append([]int(nil), rows...)
	sort.Ints(sorted)
	for _, r := range sorted {
		if r < 0 || r >= s.rows() {
			continue
		}
		removed := s[r]
		copy(s[1:r+1], s[:r])
		for x := range removed {
			removed[x] = Cell{}
		}
		s[0] = removed
	}
}

// clearRow empties row y in place without compacting the stack.
func (s Stack) clearRow(y int) bool {
	if y < 0 || y >= s.rows() {
		return false
	}
	for x := range s[y] {
		s[y][x] = Cell{}
	}
	return true
}

// clearArea empties the square of the given radius around (cx, cy) and
// returns the in-bounds positions it covered.
func (s Stack) clearArea(cx, cy, radius int) [][2]int {
	var cleared [][2]int
	for y := cy - radius; y <= cy+radius; y++ {
		for x := cx - radius; x <= cx+radius; x++ {
			if !s.inBounds(x, y) {
				continue
			}
			s[y][x] = Cell{}
			cleared = append(cleared, [2]int{x, y})
		}
	}
	return cleared
}

func (s Stack) copy() Stack {
	c := make(Stack, len(s))
	for i := range s {
		c[i] = make([]Cell, len(s[i]))
		copy(c[i], s[i])
	}
	return c
}
