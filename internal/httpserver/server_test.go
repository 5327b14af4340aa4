package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/poemlink/assets"
	"github.com/robalobadob/poemlink/internal/database"
	"github.com/robalobadob/poemlink/internal/game"
	"github.com/robalobadob/poemlink/internal/poem"
	"github.com/robalobadob/poemlink/internal/store"
)

type client struct {
	t    *testing.T
	base string
	http *http.Client
}

func newTestServer(t *testing.T) *client {
	t.Helper()
	t.Setenv("JWT_SECRET", "test_secret")

	db, err := database.Open(filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	fsys, err := assets.Migrations()
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, fsys))

	corpus, err := poem.Load("")
	require.NoError(t, err)

	srv := New(store.NewMemoryStore(0), db, corpus, nil)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return newClient(t, ts.URL)
}

func newClient(t *testing.T, base string) *client {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &client{t: t, base: base, http: &http.Client{Jar: jar}}
}

// do sends body as JSON and decodes the response into out (if non-nil).
func (c *client) do(method, path string, body, out any) int {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, c.base+path, &buf)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	res, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer res.Body.Close()
	if out != nil {
		require.NoError(c.t, json.NewDecoder(res.Body).Decode(out))
	}
	return res.StatusCode
}

// solve plays every clause of a game by asking for hints.
func (c *client) solve(id string) releaseRes {
	c.t.Helper()
	var last releaseRes
	for {
		var hint struct {
			Path []int `json:"path"`
		}
		status := c.do(http.MethodPost, "/game/"+id+"/hint", nil, &hint)
		if status == http.StatusConflict {
			return last
		}
		require.Equal(c.t, http.StatusOK, status)

		var mv moveRes
		require.Equal(c.t, http.StatusOK, c.do(http.MethodPost, "/game/"+id+"/press", indexReq{Index: &hint.Path[0]}, &mv))
		require.True(c.t, mv.Accepted)
		for _, idx := range hint.Path[1:] {
			idx := idx
			c.do(http.MethodPost, "/game/"+id+"/enter", indexReq{Index: &idx}, &mv)
			require.True(c.t, mv.Accepted, "enter %d", idx)
		}
		require.Equal(c.t, http.StatusOK, c.do(http.MethodPost, "/game/"+id+"/release", nil, &last))
		require.True(c.t, last.Outcome.ClauseCompleted)
		require.Equal(c.t, game.PointsPerClause, last.Outcome.ScoreDelta)
	}
}

func TestHealth(t *testing.T) {
	c := newTestServer(t)
	var body map[string]bool
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/health", nil, &body))
	assert.True(t, body["ok"])
}

func TestNewGameFreePlay(t *testing.T) {
	c := newTestServer(t)

	var snap game.Snapshot
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/game/new", nil, &snap))
	assert.NotEmpty(t, snap.ID)
	assert.Equal(t, game.Easy, snap.Difficulty)
	assert.Len(t, snap.Tiles, snap.Rows*snap.Cols)
	for _, clue := range snap.Clues {
		assert.False(t, clue.Revealed)
		assert.Empty(t, clue.Text)
	}

	var got game.Snapshot
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/game/"+snap.ID, nil, &got))
	assert.Equal(t, snap.Tiles, got.Tiles)

	// Another player can neither see nor end the game.
	other := newClient(t, c.base)
	assert.Equal(t, http.StatusNotFound, other.do(http.MethodGet, "/game/"+snap.ID, nil, nil))
	assert.Equal(t, http.StatusNotFound, other.do(http.MethodDelete, "/game/"+snap.ID, nil, nil))

	assert.Equal(t, http.StatusNoContent, c.do(http.MethodDelete, "/game/"+snap.ID, nil, nil))
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/game/"+snap.ID, nil, nil))
}

func TestNewGameRejectsBadInput(t *testing.T) {
	c := newTestServer(t)
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPost, "/game/new", map[string]string{"level": "college"}, nil))
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPost, "/game/new", map[string]string{"difficulty": "brutal"}, nil))
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodPost, "/game/new", map[string]any{"stage": 99}, nil))
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodPost, "/game/new", map[string]any{"stage": 1, "poem": 5}, nil))
}

func TestMoveRequiresIndex(t *testing.T) {
	c := newTestServer(t)
	var snap game.Snapshot
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/game/new", nil, &snap))
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPost, "/game/"+snap.ID+"/press", map[string]any{}, nil))
}

func TestHardHidesHints(t *testing.T) {
	c := newTestServer(t)
	var snap game.Snapshot
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/game/new", map[string]string{"difficulty": "hard"}, &snap))
	for _, tile := range snap.Tiles {
		assert.False(t, tile.Hint)
		assert.Nil(t, tile.Order)
	}
	assert.Equal(t, http.StatusForbidden, c.do(http.MethodPost, "/game/"+snap.ID+"/hint", nil, nil))
}

func TestStageProgression(t *testing.T) {
	c := newTestServer(t)

	// Stage 2 is locked for a fresh player.
	assert.Equal(t, http.StatusForbidden, c.do(http.MethodPost, "/game/new", map[string]any{"stage": 2}, nil))

	var stageDone bool
	for i := 0; i < poem.PoemsPerStage; i++ {
		var snap game.Snapshot
		require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/game/new", map[string]any{"stage": 1, "poem": i}, &snap))
		last := c.solve(snap.ID)
		assert.True(t, last.Outcome.PoemCompleted)
		assert.True(t, last.Snapshot.Finished)
		assert.Equal(t, len(snap.Clues)*game.PointsPerClause, last.Snapshot.Score)
		for _, clue := range last.Snapshot.Clues {
			assert.True(t, clue.Revealed)
			assert.NotEmpty(t, clue.Text)
		}
		stageDone = last.StageCompleted
	}
	assert.True(t, stageDone)

	var stages stagesRes
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/levels/elementary/stages", nil, &stages))
	require.Len(t, stages.Stages, 3)
	assert.True(t, stages.Stages[0].Completed)
	assert.True(t, stages.Stages[1].Unlocked)
	assert.False(t, stages.Stages[2].Unlocked)

	assert.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/game/new", map[string]any{"stage": 2}, nil))
}

func TestRefreshResetsScore(t *testing.T) {
	c := newTestServer(t)
	var snap game.Snapshot
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/game/new", map[string]any{"stage": 1}, &snap))
	c.solve(snap.ID)

	var fresh game.Snapshot
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/game/"+snap.ID+"/refresh", nil, &fresh))
	assert.Equal(t, snap.ID, fresh.ID)
	assert.Zero(t, fresh.Score)
	assert.Empty(t, fresh.Completed)
	assert.False(t, fresh.Finished)
}

func TestLevels(t *testing.T) {
	c := newTestServer(t)
	var levels []levelRes
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/levels", nil, &levels))
	require.Len(t, levels, 3)
	assert.Equal(t, poem.Elementary, levels[0].Level)
	assert.Equal(t, "小学", levels[0].Label)
	assert.Equal(t, 3, levels[0].Stages)

	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/levels/college/stages", nil, nil))
}

func TestAuthClaimsGuestProgress(t *testing.T) {
	c := newTestServer(t)
	for i := 0; i < poem.PoemsPerStage; i++ {
		var snap game.Snapshot
		require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/game/new", map[string]any{"stage": 1, "poem": i}, &snap))
		c.solve(snap.ID)
	}

	creds := credentials{Username: "li_bai", Password: "moonlight"}
	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/auth/me", nil, nil))
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/auth/signup", creds, nil))
	assert.Equal(t, http.StatusConflict, c.do(http.MethodPost, "/auth/signup", creds, nil))

	var me authUser
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/auth/me", nil, &me))
	assert.Equal(t, "li_bai", me.Username)

	// A new device logging in sees the claimed progress.
	device := newClient(t, c.base)
	assert.Equal(t, http.StatusUnauthorized, device.do(http.MethodPost, "/auth/login", credentials{Username: "li_bai", Password: "wrong-pass"}, nil))
	require.Equal(t, http.StatusOK, device.do(http.MethodPost, "/auth/login", creds, nil))
	var stages stagesRes
	require.Equal(t, http.StatusOK, device.do(http.MethodGet, "/levels/elementary/stages", nil, &stages))
	assert.True(t, stages.Stages[0].Completed)
	assert.True(t, stages.Stages[1].Unlocked)

	require.Equal(t, http.StatusOK, device.do(http.MethodPost, "/auth/logout", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, device.do(http.MethodGet, "/auth/me", nil, nil))
}

func TestValidateSignup(t *testing.T) {
	tests := []struct {
		name, user, pass string
		ok               bool
	}{
		{"valid", "du_fu", "password1", true},
		{"short name", "du", "password1", false},
		{"bad chars", "du fu", "password1", false},
		{"short password", "du_fu", "short", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateSignup(tt.user, tt.pass)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
