package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iliyamo/fantasy-corps/internal/database"
	"github.com/iliyamo/fantasy-corps/internal/model"
	"github.com/iliyamo/fantasy-corps/internal/store"
)

func newTestStore(t *testing.T) *SQLStore {
	t.Helper()
	db, err := database.Open(database.Options{Driver: database.DriverSQLite})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := Migrate(context.Background(), db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return NewSQLStore(db)
}

func testSeason() model.Season {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	return model.Season{
		ID:                "live-2024",
		Name:              "Summer 2024",
		Type:              model.SeasonLive,
		StartDate:         start,
		EndDate:           start.AddDate(0, 2, 0),
		Status:            model.SeasonPending,
		ChampionshipStage: model.StageRegular,
		Rules: model.Rules{
			MaxPoints: 150,
			ChangeWindows: []model.ChangeWindow{
				{Name: "week-1", Start: start, End: start.AddDate(0, 0, 7), AllowedChanges: 3},
				{Name: "open", Start: start.AddDate(0, 0, 8), End: start.AddDate(0, 0, 9), AllowedChanges: model.Unlimited},
			},
		},
	}
}

func TestSeasonRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	want := testSeason()
	if err := s.CreateSeason(ctx, want); err != nil {
		t.Fatalf("CreateSeason: %v", err)
	}
	if err := s.CreateSeason(ctx, want); !errors.Is(err, store.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	got, err := s.GetSeason(ctx, want.ID)
	if err != nil {
		t.Fatalf("GetSeason: %v", err)
	}
	if !got.StartDate.Equal(want.StartDate) || got.ChampionshipStage != model.StageRegular {
		t.Fatalf("unexpected season %+v", got)
	}
	if len(got.Rules.ChangeWindows) != 2 || !got.Rules.ChangeWindows[1].IsUnlimited() {
		t.Fatalf("rules not preserved: %+v", got.Rules)
	}
	if _, err := s.GetSeason(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEntityPoolOrdering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for _, e := range []model.Entity{
		{ID: "cadets-2024", Name: "Cadets", HistoricalPlacement: 3, PointCost: 20, Year: 2024},
		{ID: "bd-2024", Name: "Blue Devils", HistoricalPlacement: 1, PointCost: 25, Year: 2024},
		{ID: "bd-2023", Name: "Blue Devils", HistoricalPlacement: 1, PointCost: 25, Year: 2023},
	} {
		if err := s.CreateEntity(ctx, e); err != nil {
			t.Fatalf("CreateEntity: %v", err)
		}
	}
	pool, err := s.ListEntities(ctx, 2024)
	if err != nil {
		t.Fatalf("ListEntities: %v", err)
	}
	if len(pool) != 2 || pool[0].ID != "bd-2024" || pool[1].ID != "cadets-2024" {
		t.Fatalf("unexpected pool %+v", pool)
	}
}

func TestEntryCreateAndRosterChange(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	season := testSeason()
	if err := s.CreateSeason(ctx, season); err != nil {
		t.Fatalf("CreateSeason: %v", err)
	}
	entry := model.Entry{SeasonID: season.ID, UserID: "u1", DisplayName: "Drum Major", Status: model.StatusCompetitive, JoinedAt: season.StartDate}
	if err := s.CreateEntry(ctx, entry); err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}
	if err := s.CreateEntry(ctx, entry); !errors.Is(err, store.ErrEntryExists) {
		t.Fatalf("expected ErrEntryExists, got %v", err)
	}
	dup := model.Entry{SeasonID: season.ID, UserID: "u2", DisplayName: " drum major ", Status: model.StatusSoundSport}
	if err := s.CreateEntry(ctx, dup); !errors.Is(err, store.ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}

	change := store.RosterChange{SeasonID: season.ID, UserID: "u1", Caption: model.CaptionGE1, EntityID: "bd-2024", Window: "week-1", Counted: true}
	if err := s.ApplyRosterChange(ctx, change); err != nil {
		t.Fatalf("first change: %v", err)
	}
	change.Caption, change.EntityID, change.ExpectedUsed = model.CaptionP, "cadets-2024", 1
	change.ExpectedRoster = model.Roster{GE1: "bd-2024"}
	if err := s.ApplyRosterChange(ctx, change); err != nil {
		t.Fatalf("second change: %v", err)
	}
	// stale counter
	change.Caption, change.EntityID = model.CaptionB, "bd-2024"
	change.ExpectedRoster = model.Roster{GE1: "bd-2024", P: "cadets-2024"}
	if err := s.ApplyRosterChange(ctx, change); !errors.Is(err, store.ErrChangeConflict) {
		t.Fatalf("expected ErrChangeConflict, got %v", err)
	}
	// unlimited windows do not touch counters but still check the roster
	open := store.RosterChange{SeasonID: season.ID, UserID: "u1", Caption: model.CaptionMA, EntityID: "bd-2024", Window: "open",
		ExpectedRoster: model.Roster{GE1: "bd-2024"}}
	if err := s.ApplyRosterChange(ctx, open); !errors.Is(err, store.ErrChangeConflict) {
		t.Fatalf("stale roster: expected ErrChangeConflict, got %v", err)
	}
	open.ExpectedRoster = model.Roster{GE1: "bd-2024", P: "cadets-2024"}
	if err := s.ApplyRosterChange(ctx, open); err != nil {
		t.Fatalf("uncounted change: %v", err)
	}
	missing := open
	missing.UserID = "nobody"
	if err := s.ApplyRosterChange(ctx, missing); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	got, err := s.GetEntry(ctx, season.ID, "u1")
	if err != nil {
		t.Fatalf("GetEntry: %v", err)
	}
	if got.Roster.GE1 != "bd-2024" || got.Roster.P != "cadets-2024" || got.Roster.B != "" || got.Roster.MA != "bd-2024" {
		t.Fatalf("unexpected roster %+v", got.Roster)
	}
	if got.ChangesUsed["week-1"] != 2 || got.ChangesUsed["open"] != 0 {
		t.Fatalf("unexpected counters %+v", got.ChangesUsed)
	}

	all, err := s.ListParticipants(ctx, season.ID)
	if err != nil {
		t.Fatalf("ListParticipants: %v", err)
	}
	if len(all) != 1 || all[0].ChangesUsed["week-1"] != 2 {
		t.Fatalf("unexpected participants %+v", all)
	}
}

func TestCommitShowResultIsAtomic(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	season := testSeason()
	if err := s.CreateSeason(ctx, season); err != nil {
		t.Fatalf("CreateSeason: %v", err)
	}
	res := model.ShowResult{
		ID: "prelims", SeasonID: season.ID, Stage: model.StagePrelims, CreatedAt: time.Now().UTC(),
		Scores: map[string]model.Score{"u1": {Total: 88.5, Status: model.StatusCompetitive}},
	}

	// wrong expected stage: nothing written
	err := s.CommitShowResult(ctx, store.StageCommit{SeasonID: season.ID, From: model.StagePrelims, To: model.StageSemifinals, Result: res})
	if !errors.Is(err, store.ErrStageConflict) {
		t.Fatalf("expected ErrStageConflict, got %v", err)
	}
	if _, err := s.GetShowResult(ctx, season.ID, "prelims"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected no result, got %v", err)
	}

	if err := s.UpdateSeasonStage(ctx, season.ID, model.StageRegular, model.StagePrelims); err != nil {
		t.Fatalf("UpdateSeasonStage: %v", err)
	}
	if err := s.CommitShowResult(ctx, store.StageCommit{SeasonID: season.ID, From: model.StagePrelims, To: model.StageSemifinals, Status: model.SeasonActive, Result: res}); err != nil {
		t.Fatalf("CommitShowResult: %v", err)
	}
	got, err := s.GetShowResult(ctx, season.ID, "prelims")
	if err != nil {
		t.Fatalf("GetShowResult: %v", err)
	}
	if got.Scores["u1"].Total != 88.5 {
		t.Fatalf("unexpected scores %+v", got.Scores)
	}
	updated, _ := s.GetSeason(ctx, season.ID)
	if updated.ChampionshipStage != model.StageSemifinals || updated.Status != model.SeasonActive {
		t.Fatalf("unexpected season %+v", updated)
	}

	// duplicate id rolls back the stage move
	err = s.CommitShowResult(ctx, store.StageCommit{SeasonID: season.ID, From: model.StageSemifinals, To: model.StageFinals, Result: res})
	if !errors.Is(err, store.ErrResultExists) {
		t.Fatalf("expected ErrResultExists, got %v", err)
	}
	updated, _ = s.GetSeason(ctx, season.ID)
	if updated.ChampionshipStage != model.StageSemifinals {
		t.Fatalf("stage moved despite failed insert: %s", updated.ChampionshipStage)
	}
}

func TestRegularShowCommitKeepsStage(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	season := testSeason()
	if err := s.CreateSeason(ctx, season); err != nil {
		t.Fatalf("CreateSeason: %v", err)
	}
	for i, id := range []string{"show-1", "show-2"} {
		res := model.ShowResult{ID: id, SeasonID: season.ID, Stage: model.StageRegular, CreatedAt: season.StartDate.Add(time.Duration(i) * time.Hour)}
		if err := s.CommitShowResult(ctx, store.StageCommit{SeasonID: season.ID, From: model.StageRegular, To: model.StageRegular, Status: model.SeasonActive, Result: res}); err != nil {
			t.Fatalf("commit %s: %v", id, err)
		}
	}
	list, err := s.ListShowResults(ctx, season.ID)
	if err != nil {
		t.Fatalf("ListShowResults: %v", err)
	}
	if len(list) != 2 || list[0].ID != "show-1" {
		t.Fatalf("unexpected results %+v", list)
	}
}
