// internal/progress/store.go
//
// Stage progress persisted in SQLite.
// A player finishes a stage once every poem in it has been completed;
// the next stage unlocks as soon as the previous one is done, and stage 1
// is always open.

package progress

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/robalobadob/poemlink/internal/poem"
)

// Store records poem and stage completions per player.
type Store struct{ db *sql.DB }

// NewStore wraps an open, migrated database.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// PoemResult is one completed poem.
type PoemResult struct {
	PlayerID  string
	Level     poem.Level
	Stage     int
	PoemIndex int
	Score     int
}

// RecordPoem stores a completed poem and marks the stage complete when all
// stageSize poems are done. Repeats are ignored. It reports whether the
// stage is complete after this call.
func (s *Store) RecordPoem(ctx context.Context, r PoemResult, stageSize int) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
        INSERT OR IGNORE INTO poem_completions (player_id, level, stage, poem_index, score)
        VALUES (?, ?, ?, ?, ?)`,
		r.PlayerID, string(r.Level), r.Stage, r.PoemIndex, r.Score,
	); err != nil {
		return false, fmt.Errorf("insert poem completion: %w", err)
	}

	var done int
	if err := tx.QueryRowContext(ctx, `
        SELECT COUNT(DISTINCT poem_index) FROM poem_completions
        WHERE player_id=? AND level=? AND stage=?`,
		r.PlayerID, string(r.Level), r.Stage,
	).Scan(&done); err != nil {
		return false, fmt.Errorf("count poem completions: %w", err)
	}

	stageDone := done >= stageSize
	if stageDone {
		if _, err := tx.ExecContext(ctx, `
            INSERT OR IGNORE INTO stage_completions (player_id, level, stage) VALUES (?, ?, ?)`,
			r.PlayerID, string(r.Level), r.Stage,
		); err != nil {
			return false, fmt.Errorf("insert stage completion: %w", err)
		}
	}
	return stageDone, tx.Commit()
}

// CompletedStages lists the stage ids a player has finished, ascending.
func (s *Store) CompletedStages(ctx context.Context, playerID string, level poem.Level) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT stage FROM stage_completions
        WHERE player_id=? AND level=?
        ORDER BY stage ASC`, playerID, string(level))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// Claim moves an anonymous player's progress onto an account. Rows the
// account already has are kept and the anonymous duplicates dropped.
func (s *Store) Claim(ctx context.Context, anonID, userID string) error {
	if anonID == "" || userID == "" || anonID == userID {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"poem_completions", "stage_completions"} {
		if _, err := tx.ExecContext(ctx, `UPDATE OR IGNORE `+table+` SET player_id=? WHERE player_id=?`, userID, anonID); err != nil {
			return fmt.Errorf("claim %s: %w", table, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE player_id=?`, anonID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return tx.Commit()
}

// Unlocked returns the playable stage ids given the completed ones:
// stage 1, every completed stage, and the stage after the highest one.
// The result is sorted and free of duplicates.
func Unlocked(completed []int) []int {
	set := map[int]struct{}{1: {}}
	highest := 0
	for _, id := range completed {
		set[id] = struct{}{}
		highest = max(highest, id)
	}
	if highest > 0 {
		set[highest+1] = struct{}{}
	}
	out := make([]int, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}
