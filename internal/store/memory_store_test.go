package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iliyamo/fantasy-corps/internal/model"
)

func seededStore(t *testing.T) *MemoryStore {
	t.Helper()
	s := NewMemoryStore()
	ctx := context.Background()
	if err := s.CreateSeason(ctx, model.Season{ID: "s1", Status: model.SeasonPending, ChampionshipStage: model.StageRegular}); err != nil {
		t.Fatalf("CreateSeason: %v", err)
	}
	if err := s.CreateEntry(ctx, model.Entry{SeasonID: "s1", UserID: "u1", DisplayName: "Blue Coats Fan"}); err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}
	return s
}

func TestMemoryStoreCreateEntryRejectsDuplicates(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	err := s.CreateEntry(ctx, model.Entry{SeasonID: "s1", UserID: "u1", DisplayName: "other"})
	if !errors.Is(err, ErrEntryExists) {
		t.Fatalf("expected ErrEntryExists, got %v", err)
	}
	err = s.CreateEntry(ctx, model.Entry{SeasonID: "s1", UserID: "u2", DisplayName: "blue coats fan"})
	if !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
}

func TestMemoryStoreApplyRosterChangeCountsAtomically(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	change := RosterChange{SeasonID: "s1", UserID: "u1", Caption: model.CaptionB, EntityID: "bd", Window: "w1", Counted: true}
	if err := s.ApplyRosterChange(ctx, change); err != nil {
		t.Fatalf("ApplyRosterChange: %v", err)
	}
	// stale expectation: counter is now 1
	change.EntityID = "cadets"
	if err := s.ApplyRosterChange(ctx, change); !errors.Is(err, ErrChangeConflict) {
		t.Fatalf("expected ErrChangeConflict, got %v", err)
	}
	e, _ := s.GetEntry(ctx, "s1", "u1")
	if e.Roster.B != "bd" || e.ChangesUsed["w1"] != 1 {
		t.Fatalf("unexpected entry after conflict: %+v", e)
	}
}

func TestMemoryStoreApplyRosterChangeRejectsStaleRoster(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	if err := s.ApplyRosterChange(ctx, RosterChange{SeasonID: "s1", UserID: "u1", Caption: model.CaptionP, EntityID: "crown", Window: "open"}); err != nil {
		t.Fatalf("ApplyRosterChange: %v", err)
	}
	// validated against the empty roster, but P is now set
	stale := RosterChange{SeasonID: "s1", UserID: "u1", Caption: model.CaptionGE1, EntityID: "bd", Window: "open"}
	if err := s.ApplyRosterChange(ctx, stale); !errors.Is(err, ErrChangeConflict) {
		t.Fatalf("expected ErrChangeConflict, got %v", err)
	}
	stale.ExpectedRoster = model.Roster{P: "crown"}
	if err := s.ApplyRosterChange(ctx, stale); err != nil {
		t.Fatalf("fresh change: %v", err)
	}
	e, _ := s.GetEntry(ctx, "s1", "u1")
	if e.Roster != (model.Roster{GE1: "bd", P: "crown"}) {
		t.Fatalf("unexpected roster %+v", e.Roster)
	}
}

func TestMemoryStoreSeasonWindowsAreCopied(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	windows := []model.ChangeWindow{{Name: "week-1", AllowedChanges: 2}}
	if err := s.CreateSeason(ctx, model.Season{ID: "s1", Rules: model.Rules{ChangeWindows: windows}}); err != nil {
		t.Fatalf("CreateSeason: %v", err)
	}
	windows[0].AllowedChanges = 9

	got, _ := s.GetSeason(ctx, "s1")
	got.Rules.ChangeWindows[0].Name = "mutated"
	all, _ := s.ListSeasons(ctx)
	all[0].Rules.ChangeWindows[0].AllowedChanges = 7

	again, _ := s.GetSeason(ctx, "s1")
	if w := again.Rules.ChangeWindows[0]; w.Name != "week-1" || w.AllowedChanges != 2 {
		t.Fatalf("stored windows changed through a caller: %+v", w)
	}
}

func TestMemoryStoreCommitShowResult(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()
	res := model.ShowResult{ID: "prelims", SeasonID: "s1", Stage: model.StagePrelims, CreatedAt: time.Now()}

	err := s.CommitShowResult(ctx, StageCommit{SeasonID: "s1", From: model.StagePrelims, To: model.StageSemifinals, Result: res})
	if !errors.Is(err, ErrStageConflict) {
		t.Fatalf("expected ErrStageConflict, got %v", err)
	}
	if _, err := s.GetShowResult(ctx, "s1", "prelims"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("result written despite conflict: %v", err)
	}

	if err := s.UpdateSeasonStage(ctx, "s1", model.StageRegular, model.StagePrelims); err != nil {
		t.Fatalf("UpdateSeasonStage: %v", err)
	}
	err = s.CommitShowResult(ctx, StageCommit{SeasonID: "s1", From: model.StagePrelims, To: model.StageSemifinals, Status: model.SeasonActive, Result: res})
	if err != nil {
		t.Fatalf("CommitShowResult: %v", err)
	}
	season, _ := s.GetSeason(ctx, "s1")
	if season.ChampionshipStage != model.StageSemifinals || season.Status != model.SeasonActive {
		t.Fatalf("unexpected season %+v", season)
	}
	if err := s.PutShowResult(ctx, res); !errors.Is(err, ErrResultExists) {
		t.Fatalf("expected ErrResultExists, got %v", err)
	}
}
