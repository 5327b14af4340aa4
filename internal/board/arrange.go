// internal/board/arrange.go
//
// Grid arranger.
// Responsibilities:
//   - Size the board from the character count and a viewport column cap.
//   - Lay every clause along a path of king-move adjacent empty tiles
//     (depth-first search with backtracking), in clause order.
//   - Retry with a taller board on failure, a bounded number of times,
//     then fall back to serpentine packing which always succeeds.
//
// Notes:
//   - Each attempt starts from an empty grid; failed partial grids are dropped.
//   - A step budget caps a single attempt's search.

package board

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/rs/zerolog/log"
)

// Options configures arrangement behavior.
type Options struct {
	MaxAttempts int        // DFS attempts before falling back to packing
	GrowStep    int        // rows added after each failed attempt
	StepBudget  int        // DFS node expansions allowed per attempt
	Shuffle     bool       // randomize group, start and neighbour order
	Rand        *rand.Rand // randomness source; nil means a time-seeded PCG
}

// DefaultOptions returns the standard arrangement options.
func DefaultOptions() *Options {
	return &Options{
		MaxAttempts: 6,
		GrowStep:    1,
		StepBudget:  20000,
		Shuffle:     true,
	}
}

// Arranger places clause groups onto grids.
// An Arranger is not safe for concurrent use; its random source is shared
// across calls.
type Arranger struct {
	opts Options
	rng  *rand.Rand
}

// NewArranger builds an Arranger. A nil opts means DefaultOptions.
func NewArranger(opts *Options) *Arranger {
	if opts == nil {
		opts = DefaultOptions()
	}
	o := *opts
	if o.MaxAttempts < 0 {
		o.MaxAttempts = 0
	}
	if o.GrowStep < 0 {
		o.GrowStep = 0
	}
	if o.StepBudget <= 0 {
		o.StepBudget = DefaultOptions().StepBudget
	}
	rng := o.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Arranger{opts: o, rng: rng}
}

// Arrange lays out groups for a viewport, retrying with taller grids and
// falling back to packing. It only fails on malformed input.
func (a *Arranger) Arrange(groups []Group, mobile bool) (*Grid, error) {
	norm, total, err := normalize(groups)
	if err != nil {
		return nil, err
	}
	rows, cols := Dimensions(total, mobile)

	for attempt := 0; attempt < a.opts.MaxAttempts; attempt++ {
		r := rows + attempt*a.opts.GrowStep
		g, err := a.place(norm, total, r, cols)
		if err == nil {
			return g, nil
		}
		if !errors.Is(err, ErrInfeasible) {
			return nil, err
		}
		log.Debug().Err(err).Int("attempt", attempt+1).Int("rows", r).Int("cols", cols).Msg("arrangement attempt failed")
	}

	log.Warn().Int("attempts", a.opts.MaxAttempts).Int("chars", total).Msg("arrangement falling back to packing")
	return a.pack(norm, total, cols), nil
}

// Place makes one attempt on a rows×cols grid. It returns ErrInfeasible
// when any group cannot be laid out; the caller decides whether to retry.
func (a *Arranger) Place(groups []Group, rows, cols int) (*Grid, error) {
	norm, total, err := normalize(groups)
	if err != nil {
		return nil, err
	}
	return a.place(norm, total, rows, cols)
}

func (a *Arranger) place(groups []Group, total, rows, cols int) (*Grid, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: empty %dx%d grid", ErrInfeasible, rows, cols)
	}
	if total > rows*cols {
		return nil, fmt.Errorf("%w: %d chars exceed %dx%d grid", ErrInfeasible, total, rows, cols)
	}

	g := newGrid(rows, cols)
	budget := a.opts.StepBudget
	for _, gi := range a.groupOrder(len(groups)) {
		grp := groups[gi]
		path, ok := a.findPath(g, len(grp), &budget)
		if !ok {
			return nil, fmt.Errorf("%w: group %d (%d chars) in %dx%d grid", ErrInfeasible, grp.ID(), len(grp), rows, cols)
		}
		for k, idx := range path {
			g.put(idx, grp[k])
		}
	}
	return g, nil
}

// findPath searches for n empty, mutually chained tiles. Every empty tile
// is tried as a start; the step budget is shared across starts.
func (a *Arranger) findPath(g *Grid, n int, budget *int) ([]int, bool) {
	visited := make([]bool, g.Len())
	path := make([]int, 0, n)
	dirs := a.directions()

	var dfs func(idx int) bool
	dfs = func(idx int) bool {
		if len(path) == n {
			return true
		}
		if *budget <= 0 {
			return false
		}
		*budget--

		row, col := g.Position(idx)
		for _, d := range dirs {
			nr, nc := row+d[0], col+d[1]
			if nr < 0 || nr >= g.rows || nc < 0 || nc >= g.cols {
				continue
			}
			next := g.Index(nr, nc)
			if visited[next] || g.cells[next] != nil {
				continue
			}
			visited[next] = true
			path = append(path, next)
			if dfs(next) {
				return true
			}
			visited[next] = false
			path = path[:len(path)-1]
		}
		return false
	}

	for _, start := range a.starts(g) {
		visited[start] = true
		path = append(path[:0], start)
		if dfs(start) {
			return path, true
		}
		visited[start] = false
		if *budget <= 0 {
			break
		}
	}
	return nil, false
}

// pack writes every group in serpentine row order: left-to-right on even
// rows, right-to-left on odd rows. Consecutive positions are always
// king-move adjacent, so clause order holds without search.
func (a *Arranger) pack(groups []Group, total, cols int) *Grid {
	g := newGrid(ceilDiv(total, cols), cols)
	k := 0
	for _, gi := range a.groupOrder(len(groups)) {
		for _, c := range groups[gi] {
			row, col := k/cols, k%cols
			if row%2 == 1 {
				col = cols - 1 - col
			}
			g.put(g.Index(row, col), c)
			k++
		}
	}
	return g
}

func (a *Arranger) groupOrder(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	if a.opts.Shuffle {
		a.rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
	}
	return order
}

func (a *Arranger) starts(g *Grid) []int {
	var out []int
	for i, c := range g.cells {
		if c == nil {
			out = append(out, i)
		}
	}
	if a.opts.Shuffle {
		a.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	}
	return out
}

func (a *Arranger) directions() [8][2]int {
	dirs := directions
	if a.opts.Shuffle {
		a.rng.Shuffle(len(dirs), func(i, j int) { dirs[i], dirs[j] = dirs[j], dirs[i] })
	}
	return dirs
}

// normalize validates groups and returns copies sorted by Order.
func normalize(groups []Group) ([]Group, int, error) {
	if len(groups) == 0 {
		return nil, 0, fmt.Errorf("%w: no groups", ErrMalformedGroup)
	}
	seen := make(map[int]bool, len(groups))
	out := make([]Group, len(groups))
	total := 0
	for i, grp := range groups {
		if len(grp) == 0 {
			return nil, 0, fmt.Errorf("%w: group at position %d is empty", ErrMalformedGroup, i)
		}
		id := grp.ID()
		if seen[id] {
			return nil, 0, fmt.Errorf("%w: duplicate group id %d", ErrMalformedGroup, id)
		}
		seen[id] = true

		sorted := make(Group, len(grp))
		filled := make([]bool, len(grp))
		for _, c := range grp {
			if c.GroupID != id {
				return nil, 0, fmt.Errorf("%w: group %d holds a cell of group %d", ErrMalformedGroup, id, c.GroupID)
			}
			if c.Order < 0 || c.Order >= len(grp) || filled[c.Order] {
				return nil, 0, fmt.Errorf("%w: group %d has bad order %d", ErrMalformedGroup, id, c.Order)
			}
			if c.Char == "" {
				return nil, 0, fmt.Errorf("%w: group %d has an empty character", ErrMalformedGroup, id)
			}
			filled[c.Order] = true
			sorted[c.Order] = c
		}
		out[i] = sorted
		total += len(grp)
	}
	return out, total, nil
}
