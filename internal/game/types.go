// internal/game/types.go
//
// Core type definitions for the poem puzzle session.
// Defines:
//   - Difficulty / Rules: what the player is shown at each level.
//   - Connection: a drawn segment between two tiles of a solved clause.
//   - Outcome: the result of releasing a selection.
//   - Snapshot: the read-only view handed to the renderer.

package game

import (
	"errors"
	"fmt"
)

// PointsPerClause is awarded for every clause reconstructed.
const PointsPerClause = 10

var (
	ErrUnknownDifficulty = errors.New("game: unknown difficulty")
	ErrHintsDisabled     = errors.New("game: hints are disabled at this difficulty")
	ErrPoemComplete      = errors.New("game: every clause is already solved")
)

// Difficulty selects the hint rules for a session.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// ParseDifficulty validates a difficulty name. Empty means Easy.
func ParseDifficulty(s string) (Difficulty, error) {
	switch Difficulty(s) {
	case "":
		return Easy, nil
	case Easy, Medium, Hard:
		return Difficulty(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDifficulty, s)
}

// Rules describes what a difficulty reveals.
//
// Forgiving is reported to clients but does not change validation: an
// invalid release clears the selection without penalty at every level.
type Rules struct {
	ShowHints bool `json:"showHints"` // mark each clause's first character
	ShowOrder bool `json:"showOrder"` // show each tile's position in its clause
	Forgiving bool `json:"forgiving"`
}

// Rules returns the rule set for d.
func (d Difficulty) Rules() Rules {
	switch d {
	case Medium:
		return Rules{ShowHints: true, Forgiving: true}
	case Hard:
		return Rules{}
	default:
		return Rules{ShowHints: true, ShowOrder: true, Forgiving: true}
	}
}

// Connection is a straight segment between consecutive tiles of a solved clause.
type Connection struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Outcome reports what a release did.
type Outcome struct {
	ClauseCompleted bool `json:"clauseCompleted"`
	GroupID         int  `json:"groupId"`
	ScoreDelta      int  `json:"scoreDelta"`
	PoemCompleted   bool `json:"poemCompleted"`
	Cleared         bool `json:"cleared"` // an in-progress selection was dropped without completing
}

// Tile is one board position as the renderer sees it. Clause membership is
// never exposed; Order is only set when the rules show it.
type Tile struct {
	Index int    `json:"index"`
	Char  string `json:"char,omitempty"`
	Empty bool   `json:"empty,omitempty"`
	Used  bool   `json:"used,omitempty"`
	Hint  bool   `json:"hint,omitempty"`
	Order *int   `json:"order,omitempty"`
}

// Clue is a clause card. Text is revealed once the clause is solved.
type Clue struct {
	ID       int    `json:"id"`
	Length   int    `json:"length"`
	Revealed bool   `json:"revealed"`
	Text     string `json:"text,omitempty"`
}

// Snapshot is a copy of the session state; mutating it has no effect on the game.
type Snapshot struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Author      string       `json:"author"`
	Level       string       `json:"level,omitempty"`
	Stage       int          `json:"stage,omitempty"`
	PoemIndex   int          `json:"poemIndex"`
	Difficulty  Difficulty   `json:"difficulty"`
	Rules       Rules        `json:"rules"`
	Rows        int          `json:"rows"`
	Cols        int          `json:"cols"`
	Tiles       []Tile       `json:"tiles"`
	Selection   []int        `json:"selection"`
	Connections []Connection `json:"connections"`
	Completed   []int        `json:"completed"`
	Clues       []Clue       `json:"clues"`
	Score       int          `json:"score"`
	Finished    bool         `json:"finished"`
}
