// internal/httpserver/routes_levels.go
//
// HTTP routes for level and stage selection.
//   - GET /levels                 → every level with its stage count
//   - GET /levels/{level}/stages  → stages of a level with unlock state for the caller
//
// Stage 1 is always unlocked; finishing stage n unlocks stage n+1.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/poemlink/internal/poem"
	"github.com/robalobadob/poemlink/internal/progress"
)

// mountLevels registers the /levels routes.
func (s *Server) mountLevels(r chi.Router) {
	r.Route("/levels", func(r chi.Router) {
		r.Get("/", s.handleLevels)
		r.Get("/{level}/stages", s.handleStages)
	})
}

type levelRes struct {
	Level  poem.Level `json:"level"`
	Label  string     `json:"label"`
	Stages int        `json:"stages"`
}

func (s *Server) handleLevels(w http.ResponseWriter, r *http.Request) {
	out := make([]levelRes, 0, len(poem.Levels))
	for _, l := range poem.Levels {
		out = append(out, levelRes{Level: l, Label: l.Label(), Stages: s.corpus.StageCount(l)})
	}
	_ = json.NewEncoder(w).Encode(out)
}

type stagePoem struct {
	Title  string `json:"title"`
	Author string `json:"author"`
}

type stageRes struct {
	ID        int         `json:"id"`
	Poems     []stagePoem `json:"poems"`
	Unlocked  bool        `json:"unlocked"`
	Completed bool        `json:"completed"`
}

type stagesRes struct {
	Level  poem.Level `json:"level"`
	Stages []stageRes `json:"stages"`
}

// handleStages lists a level's stages for the calling player.
func (s *Server) handleStages(w http.ResponseWriter, r *http.Request) {
	level, err := poem.ParseLevel(chi.URLParam(r, "level"))
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown_level")
		return
	}
	player := s.playerID(w, r)
	done, err := s.progress.CompletedStages(r.Context(), player, level)
	if err != nil {
		log.Error().Err(err).Str("player", player).Msg("load progress")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	unlocked := progress.Unlocked(done)

	res := stagesRes{Level: level}
	for id := 1; id <= s.corpus.StageCount(level); id++ {
		poems, err := s.corpus.Stage(level, id)
		if errors.Is(err, poem.ErrUnknownStage) {
			break
		}
		st := stageRes{
			ID:        id,
			Unlocked:  slices.Contains(unlocked, id),
			Completed: slices.Contains(done, id),
		}
		for _, p := range poems {
			st.Poems = append(st.Poems, stagePoem{Title: p.Title, Author: p.Author})
		}
		res.Stages = append(res.Stages, st)
	}
	_ = json.NewEncoder(w).Encode(res)
}
