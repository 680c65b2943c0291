// Command seed loads seasons and the ranked entity pool from a JSON file
// into the configured database.  Records that already exist are skipped,
// so the same file can be applied repeatedly.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/iliyamo/fantasy-corps/internal/config"
	"github.com/iliyamo/fantasy-corps/internal/database"
	"github.com/iliyamo/fantasy-corps/internal/logging"
	"github.com/iliyamo/fantasy-corps/internal/model"
	"github.com/iliyamo/fantasy-corps/internal/repository"
	"github.com/iliyamo/fantasy-corps/internal/store"
)

// fixture is the seed file layout.
type fixture struct {
	Seasons  []model.Season `json:"seasons"`
	Entities []model.Entity `json:"entities"`
}

type summary struct {
	Seasons, Entities, Skipped int
}

func main() {
	path := flag.String("file", "seed.json", "seed file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Service: "fantasy-corps-seed"})

	f, err := os.Open(*path)
	if err != nil {
		log.Fatal().Err(err).Msg("open seed file")
	}
	defer f.Close()

	db, err := database.Open(database.Options{
		Driver: cfg.DB.Driver, User: cfg.DB.User, Pass: cfg.DB.Pass,
		Host: cfg.DB.Host, Port: cfg.DB.Port, Name: cfg.DB.Name, Path: cfg.DB.SQLitePath,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()
	ctx := context.Background()
	if err := repository.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	sum, err := load(ctx, repository.NewSQLStore(db), f, log)
	if err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
	log.Info().Int("seasons", sum.Seasons).Int("entities", sum.Entities).Int("skipped", sum.Skipped).Msg("seed applied")
}

func load(ctx context.Context, st store.Store, r io.Reader, log zerolog.Logger) (summary, error) {
	var fx fixture
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fx); err != nil {
		return summary{}, fmt.Errorf("decode seed: %w", err)
	}

	var sum summary
	for _, e := range fx.Entities {
		if e.ID == "" || e.HistoricalPlacement < 1 {
			return sum, fmt.Errorf("entity %q: id and placement >= 1 are required", e.ID)
		}
		switch err := st.CreateEntity(ctx, e); {
		case errors.Is(err, store.ErrAlreadyExists):
			sum.Skipped++
		case err != nil:
			return sum, fmt.Errorf("entity %s: %w", e.ID, err)
		default:
			sum.Entities++
		}
	}
	for _, s := range fx.Seasons {
		if s.Status == "" {
			s.Status = model.SeasonPending
		}
		if s.ChampionshipStage == "" {
			s.ChampionshipStage = model.StageRegular
		}
		if _, err := model.ParseStage(string(s.ChampionshipStage)); err != nil {
			return sum, fmt.Errorf("season %s: %w", s.ID, err)
		}
		switch err := st.CreateSeason(ctx, s); {
		case errors.Is(err, store.ErrAlreadyExists):
			sum.Skipped++
			log.Debug().Str(logging.FieldSeason, s.ID).Msg("season exists, skipped")
		case err != nil:
			return sum, fmt.Errorf("season %s: %w", s.ID, err)
		default:
			sum.Seasons++
		}
	}
	return sum, nil
}
