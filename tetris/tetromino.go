package tetris

type Shape string

const (
	I Shape = "I"
	O Shape = "O"
	T Shape = "T"
	S Shape = "S"
	Z Shape = "Z"
	J Shape = "J"
	L Shape = "L"
)

// shapes lists the catalog in draw order.
var shapes = []Shape{I, O, T, S, Z, J, L}

type Tetromino struct {
	Grid  [][]bool
	X     int
	Y     int
	Shape Shape
	Color string
	Glow  string
}

type definition struct {
	grid  [][]bool
	color string
	glow  string
}

// catalog holds the spawn orientation of every shape. Grids are tight
// bounding boxes, the I is a single row and the O a 2x2.
var catalog = map[Shape]definition{
	/*
		.	0 1 2 3
		0	O O O O
	*/
	I: {
		grid:  [][]bool{{true, true, true, true}},
		color: "#00d4ff",
		glow:  "rgba(0, 212, 255, 0.6)",
	},
	/*
		.	0 1
		0	O O
		1	O O
	*/
	O: {
		grid:  [][]bool{{true, true}, {true, true}},
		color: "#ffff00",
		glow:  "rgba(255, 255, 0, 0.6)",
	},
	/*
		.	0 1 2
		0	X O X
		1	O O O
	*/
	T: {
		grid:  [][]bool{{false, true, false}, {true, true, true}},
		color: "#bc13fe",
		glow:  "rgba(188, 19, 254, 0.6)",
	},
	/*
		.	0 1 2
		0	X O O
		1	O O X
	*/
	S: {
		grid:  [][]bool{{false, true, true}, {true, true, false}},
		color: "#39ff14",
		glow:  "rgba(57, 255, 20, 0.6)",
	},
	/*
		.	0 1 2
		0	O O X
		1	X O O
	*/
	Z: {
		grid:  [][]bool{{true, true, false}, {false, true, true}},
		color: "#ff006e",
		glow:  "rgba(255, 0, 110, 0.6)",
	},
	/*
		.	0 1 2
		0	O X X
		1	O O O
	*/
	J: {
		grid:  [][]bool{{true, false, false}, {true, true, true}},
		color: "#00a8ff",
		glow:  "rgba(0, 168, 255, 0.6)",
	},
	/*
		.	0 1 2
		0	X X O
		1	O O O
	*/
	L: {
		grid:  [][]bool{{false, false, true}, {true, true, true}},
		color: "#ff9f00",
		glow:  "rgba(255, 159, 0, 0.6)",
	},
}

// newTetromino builds the spawn orientation of shape, centered horizontally
// on a board with cols columns and touching row 0.
func newTetromino(shape Shape, cols int) *Tetromino {
	d, ok := catalog[shape]
	if !ok {
		return nil
	}
	t := &Tetromino{
		Grid:  copyGrid(d.grid),
		Shape: shape,
		Color: d.color,
		Glow:  d.glow,
	}
	t.X = (cols - t.width()) / 2
	return t
}

func (t *Tetromino) width() int {
	if len(t.Grid) == 0 {
		return 0
	}
	return len(t.Grid[0])
}

func (t *Tetromino) copy() *Tetromino {
	if t == nil {
		return nil
	}
	c := *t
	c.Grid = copyGrid(t.Grid)
	return &c
}

// moved returns a copy of the tetromino translated by dx, dy.
func (t *Tetromino) moved(dx, dy int) *Tetromino {
	c := t.copy()
	c.X += dx
	c.Y += dy
	return c
}

func copyGrid(g [][]bool) [][]bool {
	c := make([][]bool, len(g))
	for i := range g {
		c[i] = make([]bool, len(g[i]))
		copy(c[i], g[i])
	}
	return c
}

// rotateGrid rotates a N x M grid 90 degrees into a M x N grid, clockwise when
// direction is positive and counter-clockwise otherwise.
//
//	clockwise			counter-clockwise
//	O X X     O O		O X X     X O
//	O O O  >  O X		O O O  >  X O
//	          O X		          O O
func rotateGrid(g [][]bool, direction int) [][]bool {
	n := len(g)
	if n == 0 {
		return nil
	}
	m := len(g[0])
	rotated := make([][]bool, m)
	for i := range rotated {
		rotated[i] = make([]bool, n)
	}
	for i := range n {
		for j := range m {
			if direction > 0 {
				rotated[j][n-1-i] = g[i][j]
			} else {
				rotated[m-1-j][i] = g[i][j]
			}
		}
	}
	return rotated
}
