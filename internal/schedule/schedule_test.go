package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/fantasy-corps/internal/lock"
	"github.com/iliyamo/fantasy-corps/internal/model"
	"github.com/iliyamo/fantasy-corps/internal/season"
)

type listFunc func(context.Context) ([]model.Season, error)

func (f listFunc) ListSeasons(ctx context.Context) ([]model.Season, error) { return f(ctx) }

type fakeRunner struct {
	calls []string
	errs  map[string]error
}

func (f *fakeRunner) RunRegularShow(_ context.Context, id string) (season.Outcome, error) {
	f.calls = append(f.calls, id)
	if err := f.errs[id]; err != nil {
		return season.Outcome{}, err
	}
	return season.Outcome{SeasonID: id, Stage: model.StageRegular, ResultID: "show-1"}, nil
}

var now = time.Date(2024, 7, 1, 20, 0, 0, 0, time.UTC)

func TestDue(t *testing.T) {
	base := model.Season{
		StartDate:         now.AddDate(0, -1, 0),
		EndDate:           now.AddDate(0, 1, 0),
		Status:            model.SeasonActive,
		ChampionshipStage: model.StageRegular,
	}
	cases := []struct {
		name string
		mod  func(*model.Season)
		want bool
	}{
		{"in progress", func(*model.Season) {}, true},
		{"pending but started", func(s *model.Season) { s.Status = model.SeasonPending }, true},
		{"not started", func(s *model.Season) { s.StartDate = now.Add(time.Hour) }, false},
		{"ended", func(s *model.Season) { s.EndDate = now.Add(-time.Hour) }, false},
		{"open ended", func(s *model.Season) { s.EndDate = time.Time{} }, true},
		{"championships", func(s *model.Season) { s.ChampionshipStage = model.StagePrelims }, false},
		{"complete", func(s *model.Season) { s.Status = model.SeasonComplete }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := base
			tc.mod(&s)
			if got := Due(s, now); got != tc.want {
				t.Fatalf("Due = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRunDue(t *testing.T) {
	seasons := []model.Season{
		{ID: "a", StartDate: now.AddDate(0, -1, 0), ChampionshipStage: model.StageRegular, Status: model.SeasonActive},
		{ID: "b", StartDate: now.AddDate(0, -1, 0), ChampionshipStage: model.StageFinals, Status: model.SeasonActive},
		{ID: "c", StartDate: now.AddDate(0, -1, 0), ChampionshipStage: model.StageRegular, Status: model.SeasonActive},
		{ID: "d", StartDate: now.AddDate(0, -1, 0), ChampionshipStage: model.StageRegular, Status: model.SeasonActive},
	}
	runner := &fakeRunner{errs: map[string]error{"c": lock.ErrBusy, "d": errors.New("db down")}}
	s := New(Config{}, listFunc(func(context.Context) ([]model.Season, error) { return seasons, nil }), runner, zerolog.Nop())
	s.now = func() time.Time { return now }

	if got := s.RunDue(context.Background()); got != 1 {
		t.Fatalf("RunDue = %d, want 1", got)
	}
	if len(runner.calls) != 3 || runner.calls[0] != "a" || runner.calls[1] != "c" || runner.calls[2] != "d" {
		t.Fatalf("calls = %v", runner.calls)
	}
}

func TestStartRejectsBadSpec(t *testing.T) {
	s := New(Config{Spec: "not a cron"}, listFunc(nil), &fakeRunner{}, zerolog.Nop())
	if err := s.Start(context.Background()); err == nil {
		s.Stop()
		t.Fatal("expected parse error")
	}
}

func TestStartStopDisabled(t *testing.T) {
	s := New(Config{}, listFunc(nil), &fakeRunner{}, zerolog.Nop())
	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	s.Stop()

	s = New(Config{Spec: "@every 1h"}, listFunc(nil), &fakeRunner{}, zerolog.Nop())
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.Stop()
}
