package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"callflow/internal/analyzer"
	"callflow/internal/discover"
	"callflow/internal/graph"
	"callflow/internal/ingest"
	"callflow/internal/metrics"
)

func sampleResult() *analyzer.Result {
	units := []*ingest.SourceUnit{
		{
			Path:   "app.js",
			Module: "app",
			Functions: []*ingest.FunctionRecord{
				{Name: "start", Calls: []string{"listen"}, FanIn: 0, FanOut: 1, Line: 1},
				{Name: "listen", FanIn: 1, FanOut: 0, Line: 5},
			},
		},
	}
	g := graph.Aggregate(units)
	return &analyzer.Result{
		Root:  "/tmp/project",
		Files: []discover.File{{RelPath: "app.js"}},
		Graph: g,
		Flow: []metrics.IFCEntry{
			{Path: "app.js", Function: "start", Line: 1, FanOut: 1, Rating: metrics.RatingLow},
			{Path: "app.js", Function: "listen", Line: 5, FanIn: 1, Rating: metrics.RatingLow},
		},
		Cohesion: []metrics.CohesionScore{
			{Module: "app", Score: 1, Rating: metrics.RatingHigh},
		},
	}
}

func TestWriteContainsSections(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriter(&buf).Write(sampleResult()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Call Graph Analysis",
		"Modules",
		"Information Flow",
		"Coupling",
		"Cohesion",
		"Legend",
		"start",
		"listen",
		"No coupled pairs detected.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestWriteSummaryFanTotals(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriter(&buf).Write(sampleResult()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()

	// One unit, two functions: start has fanOut 1, listen has fanIn 1.
	for _, want := range []string{
		"Modules:    1",
		"Fan-In:     1 total, 0.50 avg per function",
		"Fan-Out:    1 total, 0.50 avg per function",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q", want)
		}
	}
}

func TestWriteSortsByFanInThenFanOut(t *testing.T) {
	result := sampleResult()
	result.Flow = []metrics.IFCEntry{
		{Path: "a.js", Function: "zeta", FanIn: 1, FanOut: 0},
		{Path: "a.js", Function: "alpha", FanIn: 3, FanOut: 2},
		{Path: "a.js", Function: "mid", FanIn: 3, FanOut: 1},
	}

	var buf bytes.Buffer
	if err := NewWriter(&buf).Write(result); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()

	alpha := strings.Index(out, "alpha")
	mid := strings.Index(out, "mid")
	zeta := strings.Index(out, "zeta")
	if !(alpha < mid && mid < zeta) {
		t.Errorf("rows out of order: alpha=%d mid=%d zeta=%d", alpha, mid, zeta)
	}
}

func TestWriteFileAlsoWritesToDisk(t *testing.T) {
	root := t.TempDir()
	var buf bytes.Buffer

	path, err := NewWriter(&buf).WriteFile(sampleResult(), root, "callflow-report.txt")
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if path != filepath.Join(root, "callflow-report.txt") {
		t.Errorf("unexpected path %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if string(data) != buf.String() {
		t.Error("file content differs from stream content")
	}
	if !strings.Contains(string(data), "Legend") {
		t.Error("file report missing legend")
	}
}

func TestWriteSkippedFilesListed(t *testing.T) {
	result := sampleResult()
	result.Files = append(result.Files, discover.File{RelPath: "broken.js"})
	result.Skipped = []string{"broken.js"}

	var buf bytes.Buffer
	if err := NewWriter(&buf).Write(result); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.Contains(buf.String(), "broken.js") {
		t.Error("skipped file not listed")
	}
	if !strings.Contains(buf.String(), "1 skipped") {
		t.Error("skipped count missing from summary")
	}
}
