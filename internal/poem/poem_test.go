package poem

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/poemlink/internal/board"
)

func TestSegment(t *testing.T) {
	clauses, err := Segment("床前明月光，疑是地上霜。\n举头望明月，低头思故乡。")
	require.NoError(t, err)

	var texts []string
	for _, c := range clauses {
		texts = append(texts, c.Text)
	}
	if diff := cmp.Diff([]string{"床前明月光", "疑是地上霜", "举头望明月", "低头思故乡"}, texts); diff != "" {
		t.Errorf("clauses mismatch (-want +got):\n%s", diff)
	}

	first := clauses[0]
	assert.Equal(t, 0, first.ID)
	assert.Equal(t, []board.Cell{
		{Char: "床", GroupID: 0, Order: 0},
		{Char: "前", GroupID: 0, Order: 1},
		{Char: "明", GroupID: 0, Order: 2},
		{Char: "月", GroupID: 0, Order: 3},
		{Char: "光", GroupID: 0, Order: 4},
	}, first.Cells)
	assert.Equal(t, 3, clauses[3].Cells[0].GroupID)
	assert.Equal(t, 20, Total(clauses))
}

func TestSegmentDelimiters(t *testing.T) {
	clauses, err := Segment("鹅，鹅，鹅，曲项向天歌。乡书何处达？归雁洛阳边！a,b;c:d")
	require.NoError(t, err)
	var texts []string
	for _, c := range clauses {
		texts = append(texts, c.Text)
	}
	assert.Equal(t, []string{"鹅", "鹅", "鹅", "曲项向天歌", "乡书何处达", "归雁洛阳边", "a", "b", "c", "d"}, texts)
}

func TestSegmentEmpty(t *testing.T) {
	for _, text := range []string{"", "   ", "，。？！"} {
		_, err := Segment(text)
		assert.ErrorIs(t, err, ErrEmptyPoem, "text %q", text)
	}
}

func TestLoadEmbedded(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	for _, l := range Levels {
		assert.NotEmpty(t, c.Poems(l), "level %s", l)
	}

	// 6 elementary poems -> 3 stages of 2.
	assert.Equal(t, 3, c.StageCount(Elementary))
	stage, err := c.Stage(Elementary, 1)
	require.NoError(t, err)
	require.Len(t, stage, PoemsPerStage)
	assert.Equal(t, "静夜思", stage[0].Title)

	// 3 high poems -> last stage holds one.
	last, err := c.Stage(High, c.StageCount(High))
	require.NoError(t, err)
	assert.Len(t, last, 1)

	_, err = c.Stage(Elementary, 0)
	assert.ErrorIs(t, err, ErrUnknownStage)
	_, err = c.Stage(Elementary, 99)
	assert.ErrorIs(t, err, ErrUnknownStage)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	for _, l := range Levels {
		body := `[{"num":1,"title":"t","author":"a","text":"春眠不觉晓，处处闻啼鸟。"}]`
		require.NoError(t, os.WriteFile(filepath.Join(dir, string(l)+".json"), []byte(body), 0o644))
	}
	c, err := Load(dir)
	require.NoError(t, err)
	assert.Len(t, c.Poems(Middle), 1)
	assert.Equal(t, 1, c.StageCount(Middle))
}

func TestLoadDirRejectsBadCorpus(t *testing.T) {
	dir := t.TempDir()
	for _, l := range Levels {
		require.NoError(t, os.WriteFile(filepath.Join(dir, string(l)+".json"), []byte(`[{"text":"。。"}]`), 0o644))
	}
	_, err := Load(dir)
	assert.ErrorIs(t, err, ErrEmptyPoem)

	_, err = Load(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, Elementary, l)

	l, err = ParseLevel("high")
	require.NoError(t, err)
	assert.Equal(t, "高中", l.Label())

	_, err = ParseLevel("college")
	assert.ErrorIs(t, err, ErrUnknownLevel)
}

func TestRandomPoem(t *testing.T) {
	_, err := RandomPoem(nil, nil)
	assert.ErrorIs(t, err, ErrNoPoems)

	poems := []Poem{{Title: "a"}, {Title: "b"}}
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 10; i++ {
		p, err := RandomPoem(poems, rng)
		require.NoError(t, err)
		assert.Contains(t, []string{"a", "b"}, p.Title)
	}
}
