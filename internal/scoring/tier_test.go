package scoring

import (
	"fmt"
	"testing"

	"github.com/iliyamo/fantasy-corps/internal/model"
)

func TestComputeThresholds(t *testing.T) {
	totals := []float64{90, 10, 80, 20, 70, 30, 60, 40, 50}
	th, ok := ComputeThresholds(totals)
	if !ok {
		t.Fatal("expected thresholds")
	}
	if th.Top != 70 || th.Bottom != 40 {
		t.Fatalf("unexpected thresholds %+v", th)
	}
	if totals[0] != 90 {
		t.Fatal("input slice was reordered")
	}
}

func TestClassify(t *testing.T) {
	scores := map[string]model.Score{}
	for i := 1; i <= 9; i++ {
		scores[fmt.Sprintf("c%d", i)] = model.Score{Total: float64(i * 10), Status: model.StatusCompetitive}
	}
	scores["s-high"] = model.Score{Total: 75, Status: model.StatusSoundSport}
	scores["s-mid"] = model.Score{Total: 50, Status: model.StatusSoundSport}
	scores["s-low"] = model.Score{Total: 20, Status: model.StatusSoundSport}
	scores["s-edge"] = model.Score{Total: 70, Status: model.StatusSoundSport}

	got := Classify(scores)
	want := map[string]model.Rating{
		"s-high": model.RatingI,
		"s-mid":  model.RatingII,
		"s-low":  model.RatingIII,
		"s-edge": model.RatingI,
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d ratings, got %v", len(want), got)
	}
	for uid, r := range want {
		if got[uid] != r {
			t.Errorf("%s: expected %s, got %s", uid, r, got[uid])
		}
	}
}

func TestClassifyWithoutCompetitivePool(t *testing.T) {
	scores := map[string]model.Score{
		"s1": {Total: 50, Status: model.StatusSoundSport},
	}
	got := Classify(scores)
	if got["s1"] != model.RatingUnrated {
		t.Fatalf("expected unrated, got %q", got["s1"])
	}
}

func TestApplyOnlyRatesSoundSport(t *testing.T) {
	scores := map[string]model.Score{
		"c1": {Total: 10, Status: model.StatusCompetitive},
		"s1": {Total: 15, Status: model.StatusSoundSport},
	}
	Apply(scores)
	if scores["c1"].Rating != "" {
		t.Fatalf("competitive entry rated: %q", scores["c1"].Rating)
	}
	if scores["s1"].Rating != model.RatingI {
		t.Fatalf("expected I, got %q", scores["s1"].Rating)
	}
}
