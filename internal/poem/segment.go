// internal/poem/segment.go
//
// Splits poem text into clauses, one clause per punctuation-delimited
// segment, and annotates every character with its clause id and position.
//
// Delimiters:
//   - Full-width ，。？！；：、
//   - ASCII , . ? ! ; :
//   - Any whitespace (line breaks inside the corpus are not clause content).

package poem

import (
	"errors"
	"strings"
	"unicode"

	"github.com/robalobadob/poemlink/internal/board"
)

// ErrEmptyPoem is returned when text contains no clause characters.
var ErrEmptyPoem = errors.New("poem: no clauses in text")

// Clause is one segment of a poem with its annotated characters.
type Clause struct {
	ID    int          `json:"id"`
	Text  string       `json:"text"`
	Cells []board.Cell `json:"-"`
}

// Group returns the clause as arranger input.
func (c Clause) Group() board.Group { return board.Group(c.Cells) }

func isDelimiter(r rune) bool {
	switch r {
	case '，', '。', '？', '！', '；', '：', '、', ',', '.', '?', '!', ';', ':':
		return true
	}
	return false
}

// Segment splits text into clauses. Clause ids are assigned in reading order
// starting at 0.
func Segment(text string) ([]Clause, error) {
	var out []Clause
	var cur []rune
	flush := func() {
		if len(cur) == 0 {
			return
		}
		id := len(out)
		cells := make([]board.Cell, len(cur))
		for i, r := range cur {
			cells[i] = board.Cell{Char: string(r), GroupID: id, Order: i}
		}
		out = append(out, Clause{ID: id, Text: string(cur), Cells: cells})
		cur = nil
	}

	for _, r := range text {
		switch {
		case isDelimiter(r):
			flush()
		case unicode.IsSpace(r):
			// skipped, but does not end a clause
		default:
			cur = append(cur, r)
		}
	}
	flush()

	if len(out) == 0 {
		return nil, ErrEmptyPoem
	}
	return out, nil
}

// Groups converts clauses to arranger input.
func Groups(clauses []Clause) []board.Group {
	out := make([]board.Group, len(clauses))
	for i, c := range clauses {
		out[i] = c.Group()
	}
	return out
}

// Total counts characters across clauses.
func Total(clauses []Clause) int {
	n := 0
	for _, c := range clauses {
		n += len(c.Cells)
	}
	return n
}

// Joined renders clauses back as a single line separated by "，".
func Joined(clauses []Clause) string {
	parts := make([]string, len(clauses))
	for i, c := range clauses {
		parts[i] = c.Text
	}
	return strings.Join(parts, "，")
}
