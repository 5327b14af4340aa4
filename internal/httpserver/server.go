// internal/httpserver/server.go
//
// HTTP server wiring for the poemlink backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health".
//   - Game endpoints (optional auth): POST /game/new, GET /game/{id},
//     DELETE /game/{id}, pointer transitions under /game/{id}/..., hints and refresh.
//   - Level/stage listing with unlock state: mounted under /levels.
//   - Auth endpoints: /auth/*.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Guests are identified by an anonymous cookie; their progress is
//     claimed by the account on signup/login.
//   - Every game mutation runs inside store.Update, so one game has one
//     writer at a time.

package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/poemlink/internal/board"
	"github.com/robalobadob/poemlink/internal/game"
	"github.com/robalobadob/poemlink/internal/poem"
	"github.com/robalobadob/poemlink/internal/progress"
	"github.com/robalobadob/poemlink/internal/store"
)

// Server bundles router, session store, corpus and DB-backed stores.
type Server struct {
	r        *chi.Mux
	store    store.Store
	db       *sql.DB
	corpus   *poem.Corpus
	progress *progress.Store
	arrange  board.Options
}

// New constructs a Server, installs middleware, and registers routes.
// A nil opts means board.DefaultOptions.
func New(st store.Store, db *sql.DB, corpus *poem.Corpus, opts *board.Options) *Server {
	if opts == nil {
		opts = board.DefaultOptions()
	}
	s := &Server{
		r:        chi.NewRouter(),
		store:    st,
		db:       db,
		corpus:   corpus,
		progress: progress.NewStore(db),
		arrange:  *opts,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(10 * time.Second))
	s.r.Use(jsonContentType)
	s.r.Use(corsFromEnv)

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"service":"poemlink","endpoints":["/health","/levels","POST /game/new","/game/{id}","/auth/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	// Game + levels: OPTIONAL AUTH (guests can play)
	s.r.Group(func(r chi.Router) {
		r.Use(s.withOptionalAuth())
		r.Post("/game/new", s.handleNewGame)
		r.Route("/game/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetGame)
			r.Delete("/", s.handleDeleteGame)
			r.Post("/press", s.handlePress)
			r.Post("/enter", s.handleEnter)
			r.Post("/release", s.handleRelease)
			r.Post("/leave", s.handleLeave)
			r.Post("/hint", s.handleHint)
			r.Post("/refresh", s.handleRefresh)
		})
		s.mountLevels(r)
	})

	s.mountAuthRoutes()

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found")
	})
	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsFromEnv enables credentialed CORS for a single origin.
// Uses CLIENT_ORIGIN env var; defaults to http://localhost:3000.
func corsFromEnv(next http.Handler) http.Handler {
	origin := getEnv("CLIENT_ORIGIN", "http://localhost:3000")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ GAME ---------------------------------------

// newGameReq is the payload for POST /game/new.
// Stage 0 is free play: a random poem from the level.
type newGameReq struct {
	Level      string `json:"level"`
	Stage      int    `json:"stage"`
	Poem       int    `json:"poem"`
	Difficulty string `json:"difficulty"`
	Mobile     bool   `json:"mobile"`
}

// handleNewGame picks the poem, arranges a board and stores the session.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	level, err := poem.ParseLevel(req.Level)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown_level")
		return
	}
	diff, err := game.ParseDifficulty(req.Difficulty)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown_difficulty")
		return
	}
	owner := s.playerID(w, r)

	setup := game.Setup{Level: level, Stage: req.Stage, PoemIndex: req.Poem, Difficulty: diff, Mobile: req.Mobile}
	if req.Stage == 0 {
		p, err := poem.RandomPoem(s.corpus.Poems(level), nil)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "no_poems")
			return
		}
		setup.Poem, setup.PoemIndex = p, 0
	} else {
		poems, err := s.corpus.Stage(level, req.Stage)
		if err != nil {
			writeError(w, http.StatusNotFound, "unknown_stage")
			return
		}
		if req.Poem < 0 || req.Poem >= len(poems) {
			writeError(w, http.StatusNotFound, "unknown_poem")
			return
		}
		unlocked, err := s.unlockedStages(r.Context(), owner, level)
		if err != nil {
			log.Error().Err(err).Str("player", owner).Msg("load progress")
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}
		if !slices.Contains(unlocked, req.Stage) {
			writeError(w, http.StatusForbidden, "stage_locked")
			return
		}
		setup.Poem = poems[req.Poem]
	}

	opts := s.arrange
	g, err := game.New(setup, board.NewArranger(&opts))
	if err != nil {
		log.Error().Err(err).Str("title", setup.Poem.Title).Msg("start game")
		writeError(w, http.StatusInternalServerError, "load_failed")
		return
	}
	g.Owner = owner
	if err := s.store.Save(r.Context(), g); err != nil {
		log.Error().Err(err).Msg("save game")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	log.Info().Str("gameId", g.ID).Str("level", string(level)).Int("stage", req.Stage).Str("title", setup.Poem.Title).Msg("game started")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(g.Snapshot())
}

// withGame runs fn on the caller's game under the store lock and maps
// lookup failures to 404.
func (s *Server) withGame(w http.ResponseWriter, r *http.Request, fn func(g *game.Game) error) bool {
	id := chi.URLParam(r, "id")
	ids := s.callerIDs(w, r)
	err := s.store.Update(r.Context(), id, func(g *game.Game) error {
		if !slices.Contains(ids, g.Owner) {
			return store.ErrNotFound
		}
		return fn(g)
	})
	switch {
	case err == nil:
		return true
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found")
	case errors.Is(err, game.ErrHintsDisabled):
		writeError(w, http.StatusForbidden, "hints_disabled")
	case errors.Is(err, game.ErrPoemComplete):
		writeError(w, http.StatusConflict, "poem_complete")
	default:
		log.Error().Err(err).Str("gameId", id).Msg("game update")
		writeError(w, http.StatusInternalServerError, "server_error")
	}
	return false
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	var snap game.Snapshot
	if s.withGame(w, r, func(g *game.Game) error {
		snap = g.Snapshot()
		return nil
	}) {
		_ = json.NewEncoder(w).Encode(snap)
	}
}

// handleDeleteGame ends a session early.
func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	if !s.withGame(w, r, func(g *game.Game) error { return nil }) {
		return
	}
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		log.Error().Err(err).Msg("delete game")
		writeError(w, http.StatusInternalServerError, "delete_failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// indexReq carries a tile index for press/enter.
type indexReq struct {
	Index *int `json:"index"`
}

// moveRes answers press/enter.
type moveRes struct {
	Accepted  bool          `json:"accepted"`
	Selection []int         `json:"selection"`
	Snapshot  game.Snapshot `json:"snapshot"`
}

func decodeIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	var req indexReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Index == nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return 0, false
	}
	return *req.Index, true
}

func (s *Server) handlePress(w http.ResponseWriter, r *http.Request) {
	s.handleMove(w, r, (*game.Game).Press)
}

func (s *Server) handleEnter(w http.ResponseWriter, r *http.Request) {
	s.handleMove(w, r, (*game.Game).Enter)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request, move func(*game.Game, int) bool) {
	idx, ok := decodeIndex(w, r)
	if !ok {
		return
	}
	var res moveRes
	if s.withGame(w, r, func(g *game.Game) error {
		res.Accepted = move(g, idx)
		res.Selection = g.Selection()
		res.Snapshot = g.Snapshot()
		return nil
	}) {
		_ = json.NewEncoder(w).Encode(res)
	}
}

// releaseRes answers release.
type releaseRes struct {
	Outcome        game.Outcome  `json:"outcome"`
	StageCompleted bool          `json:"stageCompleted"`
	Snapshot       game.Snapshot `json:"snapshot"`
}

// handleRelease ends the drag and, when the poem is finished inside a
// stage, records progress (best effort, non-fatal if it fails).
func (s *Server) handleRelease(w http.ResponseWriter, r *http.Request) {
	var (
		res   releaseRes
		setup game.Setup
		owner string
	)
	if !s.withGame(w, r, func(g *game.Game) error {
		res.Outcome = g.Release()
		res.Snapshot = g.Snapshot()
		setup, owner = g.Setup, g.Owner
		return nil
	}) {
		return
	}

	if res.Outcome.PoemCompleted && setup.Stage > 0 {
		log.Info().Str("player", owner).Str("level", string(setup.Level)).Int("stage", setup.Stage).Int("poem", setup.PoemIndex).Msg("poem completed")
		if poems, err := s.corpus.Stage(setup.Level, setup.Stage); err == nil {
			done, err := s.progress.RecordPoem(r.Context(), progress.PoemResult{
				PlayerID:  owner,
				Level:     setup.Level,
				Stage:     setup.Stage,
				PoemIndex: setup.PoemIndex,
				Score:     res.Snapshot.Score,
			}, len(poems))
			if err != nil {
				log.Warn().Err(err).Str("player", owner).Msg("record progress")
			}
			res.StageCompleted = done
		}
	}
	_ = json.NewEncoder(w).Encode(res)
}

func (s *Server) handleLeave(w http.ResponseWriter, r *http.Request) {
	var snap game.Snapshot
	if s.withGame(w, r, func(g *game.Game) error {
		g.Leave()
		snap = g.Snapshot()
		return nil
	}) {
		_ = json.NewEncoder(w).Encode(snap)
	}
}

func (s *Server) handleHint(w http.ResponseWriter, r *http.Request) {
	var path []int
	if s.withGame(w, r, func(g *game.Game) error {
		var err error
		path, err = g.Hint()
		return err
	}) {
		_ = json.NewEncoder(w).Encode(map[string][]int{"path": path})
	}
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var snap game.Snapshot
	if s.withGame(w, r, func(g *game.Game) error {
		if err := g.Refresh(); err != nil {
			return err
		}
		snap = g.Snapshot()
		return nil
	}) {
		_ = json.NewEncoder(w).Encode(snap)
	}
}

// ------------------------------- small util --------------------------------

// writeError writes a {"error": code} body with status.
func writeError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code})
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// unlockedStages loads a player's completed stages and derives what is playable.
func (s *Server) unlockedStages(ctx context.Context, player string, level poem.Level) ([]int, error) {
	done, err := s.progress.CompletedStages(ctx, player, level)
	if err != nil {
		return nil, err
	}
	return progress.Unlocked(done), nil
}
