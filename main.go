package main

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/poemlink/assets"
	"github.com/robalobadob/poemlink/internal/board"
	"github.com/robalobadob/poemlink/internal/database"
	"github.com/robalobadob/poemlink/internal/httpserver"
	"github.com/robalobadob/poemlink/internal/poem"
	"github.com/robalobadob/poemlink/internal/store"
)

const sessionTTL = 2 * time.Hour

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	db, err := database.Open(getEnv("DB_PATH", "./data/app.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("open db")
	}
	defer db.Close()
	migrations, err := assets.Migrations()
	if err != nil {
		log.Fatal().Err(err).Msg("load migrations")
	}
	if err := database.Migrate(db, migrations); err != nil {
		log.Fatal().Err(err).Msg("migrate db")
	}

	corpus, err := poem.Load(os.Getenv("POEMS_DIR"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load poem corpus")
	}

	mem := store.NewMemoryStore(sessionTTL)
	go func() {
		for range time.Tick(sessionTTL / 4) {
			if n := mem.Sweep(); n > 0 {
				log.Debug().Int("removed", n).Int("live", mem.Len()).Msg("swept sessions")
			}
		}
	}()

	opts := board.DefaultOptions()
	if v := os.Getenv("ARRANGE_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			opts.MaxAttempts = n
		} else {
			log.Warn().Str("value", v).Msg("ignoring ARRANGE_MAX_ATTEMPTS")
		}
	}

	srv := httpserver.New(mem, db, corpus, opts)
	port := getEnv("PORT", "5175")
	log.Info().Str("port", port).Msg("starting poemlink server")
	if err := srv.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
