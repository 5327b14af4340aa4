package progress

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/poemlink/assets"
	"github.com/robalobadob/poemlink/internal/database"
	"github.com/robalobadob/poemlink/internal/poem"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "progress.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	fsys, err := assets.Migrations()
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, fsys))
	return NewStore(db)
}

func TestRecordPoemCompletesStage(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	r := PoemResult{PlayerID: "p1", Level: poem.Elementary, Stage: 1, PoemIndex: 0, Score: 40}

	done, err := s.RecordPoem(ctx, r, 2)
	require.NoError(t, err)
	assert.False(t, done)

	// Replaying the same poem does not count twice.
	done, err = s.RecordPoem(ctx, r, 2)
	require.NoError(t, err)
	assert.False(t, done)

	r.PoemIndex = 1
	done, err = s.RecordPoem(ctx, r, 2)
	require.NoError(t, err)
	assert.True(t, done)

	stages, err := s.CompletedStages(ctx, "p1", poem.Elementary)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, stages)

	other, err := s.CompletedStages(ctx, "p1", poem.High)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestClaim(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	_, err := s.RecordPoem(ctx, PoemResult{PlayerID: "anon", Level: poem.Middle, Stage: 2, PoemIndex: 0}, 1)
	require.NoError(t, err)
	_, err = s.RecordPoem(ctx, PoemResult{PlayerID: "user", Level: poem.Middle, Stage: 2, PoemIndex: 0}, 1)
	require.NoError(t, err)
	_, err = s.RecordPoem(ctx, PoemResult{PlayerID: "anon", Level: poem.Middle, Stage: 3, PoemIndex: 0}, 1)
	require.NoError(t, err)

	require.NoError(t, s.Claim(ctx, "anon", "user"))

	stages, err := s.CompletedStages(ctx, "user", poem.Middle)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, stages)

	left, err := s.CompletedStages(ctx, "anon", poem.Middle)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestUnlocked(t *testing.T) {
	tests := []struct {
		name      string
		completed []int
		want      []int
	}{
		{"fresh player", nil, []int{1}},
		{"first done", []int{1}, []int{1, 2}},
		{"gaps kept", []int{3, 1}, []int{1, 3, 4}},
		{"duplicates", []int{2, 2}, []int{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Unlocked(tt.completed))
		})
	}
}
