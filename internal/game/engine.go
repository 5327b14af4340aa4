// internal/game/engine.go
//
// Session engine for one poem.
// Responsibilities:
//   - Arrange the poem's clauses onto a board when the session starts or is refreshed.
//   - Own the selection path and completion set; every change goes through
//     Press, Enter, Release and Leave.
//   - On a completed clause: freeze its tiles, record connections, add the
//     clause to the completion set and award PointsPerClause.
//
// Notes:
//   - A Game is not safe for concurrent use. The session store serializes
//     access per game.
//   - Invalid extensions are ignored silently; an invalid release clears the
//     selection with no penalty.

package game

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/poemlink/internal/board"
	"github.com/robalobadob/poemlink/internal/poem"
)

// Setup describes the poem a session plays.
type Setup struct {
	Poem       poem.Poem
	Level      poem.Level // empty for free play
	Stage      int        // 1-based; 0 for free play
	PoemIndex  int        // position within the stage
	Difficulty Difficulty
	Mobile     bool // narrow viewport column cap
}

// Game holds the state of a single poem session.
type Game struct {
	ID        string
	Owner     string // player id (account or anonymous cookie)
	Setup     Setup
	Clauses   []poem.Clause
	Grid      *board.Grid
	Score     int
	StartedAt time.Time

	arranger    *board.Arranger
	selection   []int
	dragging    bool
	used        map[int]bool
	connections []Connection
	completed   map[int]struct{}
}

// New segments the poem, arranges the board and starts a session.
// A nil arranger uses board defaults.
func New(s Setup, arr *board.Arranger) (*Game, error) {
	if s.Difficulty == "" {
		s.Difficulty = Easy
	}
	clauses, err := poem.Segment(s.Poem.Text)
	if err != nil {
		return nil, fmt.Errorf("segment %q: %w", s.Poem.Title, err)
	}
	if arr == nil {
		arr = board.NewArranger(nil)
	}
	g := &Game{
		ID:       uuid.NewString(),
		Setup:    s,
		Clauses:  clauses,
		arranger: arr,
	}
	if err := g.Refresh(); err != nil {
		return nil, err
	}
	return g, nil
}

// Refresh rearranges the same poem and resets score, selection and
// completion state.
func (g *Game) Refresh() error {
	grid, err := g.arranger.Arrange(poem.Groups(g.Clauses), g.Setup.Mobile)
	if err != nil {
		return fmt.Errorf("arrange %q: %w", g.Setup.Poem.Title, err)
	}
	g.Grid = grid
	g.Score = 0
	g.StartedAt = time.Now().UTC()
	g.selection = nil
	g.dragging = false
	g.used = make(map[int]bool)
	g.connections = nil
	g.completed = make(map[int]struct{})
	log.Debug().Str("gameId", g.ID).Int("rows", grid.Rows()).Int("cols", grid.Cols()).Msg("board arranged")
	return nil
}

// Press starts a selection at idx. Returns false if idx cannot start one.
func (g *Game) Press(idx int) bool {
	g.selection, g.dragging = nil, false
	if g.used[idx] || !ValidateExtension(g.Grid, nil, idx) {
		return false
	}
	g.selection = []int{idx}
	g.dragging = true
	return true
}

// Enter extends the selection with idx. Returns false if the move is rejected.
func (g *Game) Enter(idx int) bool {
	if !g.dragging || g.used[idx] || !ValidateExtension(g.Grid, g.selection, idx) {
		return false
	}
	g.selection = append(g.selection, idx)
	return true
}

// Release ends the drag. A complete clause is frozen and scored; anything
// else is cleared.
func (g *Game) Release() Outcome {
	if !g.dragging {
		return Outcome{}
	}
	path := g.selection
	g.selection, g.dragging = nil, false

	if !IsCompleteGroup(g.Grid, path) {
		return Outcome{Cleared: len(path) > 0}
	}
	first, _ := g.Grid.At(path[0])
	if _, done := g.completed[first.GroupID]; done {
		return Outcome{Cleared: true}
	}
	return g.complete(first.GroupID, path)
}

// Leave cancels the drag, as when the pointer leaves the board.
func (g *Game) Leave() {
	g.selection, g.dragging = nil, false
}

func (g *Game) complete(id int, path []int) Outcome {
	for i, idx := range path {
		g.used[idx] = true
		if i > 0 {
			g.connections = append(g.connections, Connection{From: path[i-1], To: idx})
		}
	}
	g.completed[id] = struct{}{}
	g.Score += PointsPerClause

	out := Outcome{
		ClauseCompleted: true,
		GroupID:         id,
		ScoreDelta:      PointsPerClause,
		PoemCompleted:   g.Finished(),
	}
	log.Debug().Str("gameId", g.ID).Int("groupId", id).Bool("poemCompleted", out.PoemCompleted).Msg("clause completed")
	return out
}

// Finished reports whether every clause is solved.
func (g *Game) Finished() bool {
	return len(g.completed) == len(g.Grid.GroupIDs())
}

// Dragging reports whether a selection is in progress.
func (g *Game) Dragging() bool { return g.dragging }

// Selection returns a copy of the in-progress path.
func (g *Game) Selection() []int { return append([]int{}, g.selection...) }

// CompletionSet returns solved clause ids in ascending order.
func (g *Game) CompletionSet() []int {
	ids := make([]int, 0, len(g.completed))
	for id := range g.completed {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Connections returns a copy of the drawn segments.
func (g *Game) Connections() []Connection {
	return append([]Connection{}, g.connections...)
}

// Hint returns the tile path of the lowest unsolved clause.
func (g *Game) Hint() ([]int, error) {
	if !g.Setup.Difficulty.Rules().ShowHints {
		return nil, ErrHintsDisabled
	}
	for _, id := range g.Grid.GroupIDs() {
		if _, done := g.completed[id]; done {
			continue
		}
		if path := board.Solve(g.Grid, id); path != nil {
			return path, nil
		}
	}
	return nil, ErrPoemComplete
}

// Snapshot copies the state for rendering.
func (g *Game) Snapshot() Snapshot {
	rules := g.Setup.Difficulty.Rules()
	s := Snapshot{
		ID:          g.ID,
		Title:       g.Setup.Poem.Title,
		Author:      g.Setup.Poem.Author,
		Level:       string(g.Setup.Level),
		Stage:       g.Setup.Stage,
		PoemIndex:   g.Setup.PoemIndex,
		Difficulty:  g.Setup.Difficulty,
		Rules:       rules,
		Rows:        g.Grid.Rows(),
		Cols:        g.Grid.Cols(),
		Tiles:       make([]Tile, g.Grid.Len()),
		Selection:   g.Selection(),
		Connections: g.Connections(),
		Completed:   g.CompletionSet(),
		Score:       g.Score,
		Finished:    g.Finished(),
	}
	for i := range s.Tiles {
		c, ok := g.Grid.At(i)
		if !ok {
			s.Tiles[i] = Tile{Index: i, Empty: true}
			continue
		}
		t := Tile{Index: i, Char: c.Char, Used: g.used[i]}
		if rules.ShowHints && c.Order == 0 {
			t.Hint = true
		}
		if rules.ShowOrder {
			order := c.Order
			t.Order = &order
		}
		s.Tiles[i] = t
	}
	for _, c := range g.Clauses {
		_, done := g.completed[c.ID]
		clue := Clue{ID: c.ID, Length: len(c.Cells), Revealed: done}
		if done {
			clue.Text = c.Text
		}
		s.Clues = append(s.Clues, clue)
	}
	return s
}
