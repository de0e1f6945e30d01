package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"callflow/internal/analyzer"
	"callflow/internal/config"
	"callflow/internal/discover"
	"callflow/internal/graph"
	"callflow/internal/ingest"
	"callflow/internal/logging"
	"callflow/internal/metrics"
)

func testResult() *analyzer.Result {
	units := []*ingest.SourceUnit{
		{
			Path:   "app.js",
			Module: "app",
			Functions: []*ingest.FunctionRecord{
				{Name: "start", Calls: []string{"listen"}, FanOut: 1, Line: 1},
				{Name: "listen", FanIn: 1, Line: 5},
			},
		},
	}
	return &analyzer.Result{
		Root:  "/tmp/project",
		Files: []discover.File{{RelPath: "app.js"}},
		Graph: &graph.Graph{Units: units},
		Flow: []metrics.IFCEntry{
			{Path: "app.js", Function: "start", Line: 1, FanOut: 1, Rating: metrics.RatingLow},
			{Path: "app.js", Function: "listen", Line: 5, FanIn: 1, Rating: metrics.RatingLow},
		},
		Cohesion: []metrics.CohesionScore{
			{Module: "app", Score: 0.5, Rating: metrics.RatingMedium},
		},
		StartedAt: time.Now(),
		Duration:  42 * time.Millisecond,
	}
}

func TestOpenCreatesDatabase(t *testing.T) {
	root := t.TempDir()
	db, err := Open(root, logging.Discard())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	want := filepath.Join(root, config.ConfigDirName, "history.db")
	if db.Path() != want {
		t.Errorf("expected db at %s, got %s", want, db.Path())
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("database file missing: %v", err)
	}
}

func TestSaveAndListRuns(t *testing.T) {
	root := t.TempDir()
	db, err := Open(root, logging.Discard())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	id, err := db.SaveRun(testResult())
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if id == "" {
		t.Fatal("expected non-empty run id")
	}

	runs, err := db.ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}

	r := runs[0]
	if r.ID != id {
		t.Errorf("id mismatch: %s vs %s", r.ID, id)
	}
	if r.Functions != 2 || r.Files != 1 {
		t.Errorf("unexpected counts: %+v", r)
	}
	if r.AvgCohesion != 0.5 {
		t.Errorf("expected avg cohesion 0.5, got %v", r.AvgCohesion)
	}
	if r.DurationMs != 42 {
		t.Errorf("expected 42ms, got %d", r.DurationMs)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	root := t.TempDir()
	db, err := Open(root, logging.Discard())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	first := testResult()
	first.StartedAt = time.Now().Add(-time.Hour)
	if _, err := db.SaveRun(first); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	second := testResult()
	second.StartedAt = time.Now()
	latest, err := db.SaveRun(second)
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	runs, err := db.ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != latest {
		t.Errorf("expected newest run first, got %s", runs[0].ID)
	}
}

func TestListRunsLimit(t *testing.T) {
	root := t.TempDir()
	db, err := Open(root, logging.Discard())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	for i := 0; i < 3; i++ {
		r := testResult()
		r.StartedAt = time.Now().Add(time.Duration(i) * time.Minute)
		if _, err := db.SaveRun(r); err != nil {
			t.Fatalf("SaveRun: %v", err)
		}
	}

	runs, err := db.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs with limit, got %d", len(runs))
	}
}
