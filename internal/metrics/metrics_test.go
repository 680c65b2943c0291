package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorderCounts(t *testing.T) {
	r := NewRecorder()
	r.StageRun("prelims", OutcomeOK)
	r.StageRun("prelims", OutcomeOK)
	r.RosterChange(OutcomeRejected)
	r.ShowScored("prelims", 20*time.Millisecond, 30)

	if got := testutil.ToFloat64(r.stageRuns.WithLabelValues("prelims", OutcomeOK)); got != 2 {
		t.Fatalf("expected 2 stage runs, got %v", got)
	}
	if got := testutil.ToFloat64(r.participants.WithLabelValues("prelims")); got != 30 {
		t.Fatalf("expected 30 participants, got %v", got)
	}

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "fantasy_roster_changes_total") {
		t.Fatalf("metrics output missing roster counter")
	}
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	r.StageRun("finals", OutcomeError)
	r.RosterChange(OutcomeOK)
	r.ShowScored("finals", time.Second, 1)
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 from nil recorder, got %d", rec.Code)
	}
}
