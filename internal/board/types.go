// internal/board/types.go
//
// Core type definitions for the puzzle board.
// Defines:
//   - Cell:  one glyph with its clause membership and position in the clause.
//   - Group: the ordered cells of one clause, as handed to the arranger.
//   - Grid:  the frozen row-major board produced by the arranger.

package board

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrInfeasible is returned when a group cannot be laid out in the
	// current grid. Callers retry with a fresh grid; partial grids are
	// never reused.
	ErrInfeasible = errors.New("board: arrangement infeasible")

	// ErrMalformedGroup reports upstream data that cannot be arranged
	// (no groups, an empty group, duplicate ids, or gaps in the order).
	ErrMalformedGroup = errors.New("board: malformed group")
)

// Cell is a single character tile.
type Cell struct {
	Char    string `json:"char"`    // one glyph
	GroupID int    `json:"groupId"` // clause the glyph belongs to
	Order   int    `json:"order"`   // 0-based position within the clause
}

// Group is one clause's cells. Orders must cover 0..len-1 exactly once;
// the slice itself may arrive in any order.
type Group []Cell

// ID returns the clause id shared by the group's cells.
func (g Group) ID() int {
	if len(g) == 0 {
		return -1
	}
	return g[0].GroupID
}

// Grid is a rows×cols board. A nil entry is an empty tile.
// Grids are only built by this package and never change afterwards.
type Grid struct {
	rows, cols int
	cells      []*Cell
	sizes      map[int]int // groupId -> character count
}

func newGrid(rows, cols int) *Grid {
	return &Grid{
		rows:  rows,
		cols:  cols,
		cells: make([]*Cell, rows*cols),
		sizes: make(map[int]int),
	}
}

// Rows reports the number of rows.
func (g *Grid) Rows() int { return g.rows }

// Cols reports the number of columns.
func (g *Grid) Cols() int { return g.cols }

// Len reports the number of tiles (rows*cols).
func (g *Grid) Len() int { return len(g.cells) }

// InBounds reports whether idx is a valid linear index.
func (g *Grid) InBounds(idx int) bool { return idx >= 0 && idx < len(g.cells) }

// Position converts a linear index to (row, col).
func (g *Grid) Position(idx int) (row, col int) { return idx / g.cols, idx % g.cols }

// Index converts (row, col) to a linear index.
func (g *Grid) Index(row, col int) int { return row*g.cols + col }

// At returns the cell at idx. ok is false for empty or out-of-range tiles.
func (g *Grid) At(idx int) (Cell, bool) {
	if !g.InBounds(idx) || g.cells[idx] == nil {
		return Cell{}, false
	}
	return *g.cells[idx], true
}

// Adjacent reports king-move adjacency of two in-range indices.
func (g *Grid) Adjacent(a, b int) bool {
	if !g.InBounds(a) || !g.InBounds(b) {
		return false
	}
	return Adjacent(a, b, g.cols)
}

// GroupSize returns how many characters clause id has on the board.
func (g *Grid) GroupSize(id int) int { return g.sizes[id] }

// GroupIDs returns the clause ids on the board in ascending order.
func (g *Grid) GroupIDs() []int {
	ids := make([]int, 0, len(g.sizes))
	for id := range g.sizes {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Occupied counts non-empty tiles.
func (g *Grid) Occupied() int {
	n := 0
	for _, c := range g.cells {
		if c != nil {
			n++
		}
	}
	return n
}

// String renders the board one row per line; empty tiles print as "·".
func (g *Grid) String() string {
	var b strings.Builder
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			if c > 0 {
				b.WriteByte(' ')
			}
			if cell := g.cells[g.Index(r, c)]; cell != nil {
				b.WriteString(cell.Char)
			} else {
				b.WriteString("·")
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// put writes c at idx during arrangement.
func (g *Grid) put(idx int, c Cell) {
	g.cells[idx] = &c
	g.sizes[c.GroupID]++
}
