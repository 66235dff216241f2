package engine

// Cell is a single board cell. A zero Value means the cell is empty.
type Cell struct {
	Value CardValue `json:"value"`
}

// Empty reports whether the cell holds no card
func (c Cell) Empty() bool {
	return c.Value == 0
}

// Board is a fixed-size grid of placed cards
type Board struct {
	rows  int
	cols  int
	cells [][]Cell
}

// neighborOffsets is up, down, left, right. The order is part of the contract.
var neighborOffsets = [4]struct{ dr, dc int }{
	{-1, 0},
	{1, 0},
	{0, -1},
	{0, 1},
}

// NewBoard creates a rows x cols board with every cell empty
func NewBoard(rows, cols int) *Board {
	cells := make([][]Cell, rows)
	for i := range cells {
		cells[i] = make([]Cell, cols)
	}
	return &Board{rows: rows, cols: cols, cells: cells}
}

// Rows returns the board height
func (b *Board) Rows() int { return b.rows }

// Cols returns the board width
func (b *Board) Cols() int { return b.cols }

// IsValidCell checks bounds
func (b *Board) IsValidCell(r, c int) bool {
	return r >= 0 && r < b.rows && c >= 0 && c < b.cols
}

// IsEmpty is false for out-of-bounds coordinates
func (b *Board) IsEmpty(r, c int) bool {
	return b.IsValidCell(r, c) && b.cells[r][c].Empty()
}

// Value returns the card at (r, c) and whether the cell is occupied
func (b *Board) Value(r, c int) (CardValue, bool) {
	if !b.IsValidCell(r, c) || b.cells[r][c].Empty() {
		return 0, false
	}
	return b.cells[r][c].Value, true
}

// Place puts value into an empty cell
func (b *Board) Place(r, c int, value CardValue) error {
	if !b.IsValidCell(r, c) {
		return ErrOutOfBounds
	}
	if !b.cells[r][c].Empty() {
		return ErrCellOccupied
	}
	b.cells[r][c].Value = value
	return nil
}

// Clear empties an occupied cell. Clearing an empty cell fails with
// ErrCellAlreadyEmpty and leaves the board untouched.
func (b *Board) Clear(r, c int) error {
	if !b.IsValidCell(r, c) {
		return ErrOutOfBounds
	}
	if b.cells[r][c].Empty() {
		return ErrCellAlreadyEmpty
	}
	b.cells[r][c] = Cell{}
	return nil
}

// NeighborsOf returns the in-bounds orthogonal neighbors in up, down, left, right order
func (b *Board) NeighborsOf(r, c int) []Position {
	neighbors := make([]Position, 0, len(neighborOffsets))
	for _, off := range neighborOffsets {
		nr, nc := r+off.dr, c+off.dc
		if b.IsValidCell(nr, nc) {
			neighbors = append(neighbors, Position{Row: nr, Col: nc})
		}
	}
	return neighbors
}

// OccupiedCount counts cells holding a card
func (b *Board) OccupiedCount() int {
	count := 0
	for _, row := range b.cells {
		for _, cell := range row {
			if !cell.Empty() {
				count++
			}
		}
	}
	return count
}

// EmptyCells lists empty cells in row-major order
func (b *Board) EmptyCells() []Position {
	var empty []Position
	for r, row := range b.cells {
		for c, cell := range row {
			if cell.Empty() {
				empty = append(empty, Position{Row: r, Col: c})
			}
		}
	}
	return empty
}

// Snapshot copies the board values; empty cells are 0
func (b *Board) Snapshot() [][]CardValue {
	out := make([][]CardValue, b.rows)
	for r, row := range b.cells {
		out[r] = make([]CardValue, b.cols)
		for c, cell := range row {
			out[r][c] = cell.Value
		}
	}
	return out
}
