// internal/poem/corpus.go
//
// Poem corpora grouped by school level, and their division into stages.
//
// Loading (Load):
//   1. If dir is set (POEMS_DIR), read <dir>/<level>.json for every level.
//   2. Otherwise use the embedded defaults from the assets package.
//
// File format: a JSON array of {"num", "title", "author", "text"}.
// Every poem must segment into at least one clause; a bad file fails the
// whole load so a broken corpus is noticed at startup.

package poem

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/robalobadob/poemlink/assets"
)

// PoemsPerStage is how many poems make up one stage.
const PoemsPerStage = 2

// Level is a corpus difficulty tier.
type Level string

const (
	Elementary Level = "elementary" // 小学
	Middle     Level = "middle"     // 初中
	High       Level = "high"       // 高中
)

// Levels lists all levels in display order.
var Levels = []Level{Elementary, Middle, High}

// Label returns the display name of a level.
func (l Level) Label() string {
	switch l {
	case Elementary:
		return "小学"
	case Middle:
		return "初中"
	case High:
		return "高中"
	}
	return string(l)
}

var (
	ErrUnknownLevel = errors.New("poem: unknown level")
	ErrUnknownStage = errors.New("poem: unknown stage")
	ErrNoPoems      = errors.New("poem: poem list is empty")
)

// ParseLevel validates a level name. Empty means Elementary.
func ParseLevel(s string) (Level, error) {
	if s == "" {
		return Elementary, nil
	}
	for _, l := range Levels {
		if string(l) == s {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLevel, s)
}

// Poem is one corpus entry.
type Poem struct {
	Num    int    `json:"num"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Text   string `json:"text"`
}

// Corpus holds the poems of every level.
type Corpus struct {
	poems map[Level][]Poem
}

// Load reads all level corpora from dir, or from the embedded defaults when
// dir is empty.
func Load(dir string) (*Corpus, error) {
	c := &Corpus{poems: make(map[Level][]Poem, len(Levels))}
	for _, l := range Levels {
		var (
			raw []byte
			err error
		)
		if dir != "" {
			raw, err = os.ReadFile(filepath.Join(dir, string(l)+".json"))
		} else {
			raw, err = assets.PoemFile(string(l))
		}
		if err != nil {
			return nil, fmt.Errorf("read %s poems: %w", l, err)
		}
		poems, err := parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse %s poems: %w", l, err)
		}
		c.poems[l] = poems
	}
	return c, nil
}

func parse(raw []byte) ([]Poem, error) {
	var poems []Poem
	if err := json.Unmarshal(raw, &poems); err != nil {
		return nil, err
	}
	if len(poems) == 0 {
		return nil, ErrNoPoems
	}
	for i, p := range poems {
		if _, err := Segment(p.Text); err != nil {
			return nil, fmt.Errorf("poem %d (%q): %w", i, p.Title, err)
		}
	}
	return poems, nil
}

// Poems returns every poem of a level.
func (c *Corpus) Poems(l Level) []Poem { return c.poems[l] }

// StageCount returns how many stages a level has.
func (c *Corpus) StageCount(l Level) int {
	n := len(c.poems[l])
	return (n + PoemsPerStage - 1) / PoemsPerStage
}

// Stage returns the poems of a 1-based stage id.
func (c *Corpus) Stage(l Level, id int) ([]Poem, error) {
	if id < 1 || id > c.StageCount(l) {
		return nil, fmt.Errorf("%w: %s stage %d", ErrUnknownStage, l, id)
	}
	poems := c.poems[l]
	start := (id - 1) * PoemsPerStage
	end := min(start+PoemsPerStage, len(poems))
	return poems[start:end], nil
}

// RandomPoem picks a poem uniformly. rng may be nil.
func RandomPoem(poems []Poem, rng *rand.Rand) (Poem, error) {
	if len(poems) == 0 {
		return Poem{}, ErrNoPoems
	}
	if rng == nil {
		return poems[rand.IntN(len(poems))], nil
	}
	return poems[rng.IntN(len(poems))], nil
}
