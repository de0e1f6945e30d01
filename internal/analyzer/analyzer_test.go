//go:build cgo

package analyzer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"callflow/internal/cferrors"
	"callflow/internal/config"
	"callflow/internal/logging"
	"callflow/internal/metrics"
	"callflow/internal/rules"
)

func newAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	rs, err := rules.Default()
	if err != nil {
		t.Fatalf("default rules: %v", err)
	}
	return New(config.DefaultConfig(), rs, logging.Discard())
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
	return root
}

func TestRunEmptyTree(t *testing.T) {
	root := t.TempDir()
	_, err := newAnalyzer(t).Run(context.Background(), root)
	if err == nil {
		t.Fatal("expected error for empty tree")
	}
	if cferrors.CodeOf(err) != cferrors.NoSourceFiles {
		t.Errorf("expected NO_SOURCE_FILES, got %s", cferrors.CodeOf(err))
	}
}

func TestRunSingleFilePipeline(t *testing.T) {
	root := writeTree(t, map[string]string{
		"utils.js": `
function generateRoomId() {
  return format(random());
}
function format(n) {
  return pad(n);
}
function pad(n) {
  return n;
}
`,
	})

	result, err := newAnalyzer(t).Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.FunctionCount() != 3 {
		t.Errorf("expected 3 functions, got %d", result.FunctionCount())
	}

	flows := byFunction(result.Flow)
	format := flows["format"]
	// format is called once and calls pad once: (1*1)^2 = 1.
	if format.FanIn != 1 || format.FanOut != 1 {
		t.Errorf("format: expected fanIn=1 fanOut=1, got %d/%d", format.FanIn, format.FanOut)
	}
	if format.Score != 1 || format.Rating != metrics.RatingLow {
		t.Errorf("format: expected score 1 Low, got %d %s", format.Score, format.Rating)
	}
	// generateRoomId is never called: fanIn 0, rating Low.
	gen := flows["generateRoomId"]
	if gen.FanIn != 0 || gen.Score != 0 || gen.Rating != metrics.RatingLow {
		t.Errorf("generateRoomId: got %+v", gen)
	}
}

func TestRunCrossFileFanIn(t *testing.T) {
	root := writeTree(t, map[string]string{
		"util.js": `
function helper() {
  return 1;
}
`,
		"a.js": `
function first() {
  helper();
  helper();
}
`,
		"b.js": `
function second() {
  helper();
}
`,
	})

	result, err := newAnalyzer(t).Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	helper := byFunction(result.Flow)["helper"]
	// Two caller files, each counted once regardless of call count.
	if helper.FanIn != 2 {
		t.Errorf("expected fanIn=2, got %d", helper.FanIn)
	}
}

func TestRunSkipsIgnoredDirs(t *testing.T) {
	root := writeTree(t, map[string]string{
		"app.js":                 `function run() {}`,
		"node_modules/dep.js":    `function hidden() {}`,
		"build/out.js":           `function built() {}`,
		".git/hooks/pre.js":      `function hook() {}`,
		"src/nested/handlers.js": `function handle() {}`,
	})

	result, err := newAnalyzer(t).Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Files) != 2 {
		t.Fatalf("expected 2 files, got %d: %+v", len(result.Files), result.Files)
	}
	if result.FunctionCount() != 2 {
		t.Errorf("expected 2 functions, got %d", result.FunctionCount())
	}
}

func TestRunProducesCohesionPerModule(t *testing.T) {
	root := writeTree(t, map[string]string{
		"rooms.js": `
function createRoom(id) {
  return registerRoom(id);
}
function registerRoom(id) {
  return id;
}
`,
		"lone.js": `
function solo() {}
`,
	})

	result, err := newAnalyzer(t).Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(result.Cohesion) != 2 {
		t.Fatalf("expected 2 cohesion scores, got %d", len(result.Cohesion))
	}
	byModule := make(map[string]metrics.CohesionScore)
	for _, s := range result.Cohesion {
		byModule[s.Module] = s
	}
	if s := byModule["rooms"]; s.Score != 1 || s.Rating != metrics.RatingHigh {
		t.Errorf("rooms: %+v", s)
	}
	if s := byModule["lone"]; s.Reason != "single function module" {
		t.Errorf("lone: %+v", s)
	}
}

func TestRunModuleCoupling(t *testing.T) {
	root := writeTree(t, map[string]string{
		"db.js": `
function query(sql) {
  return sql;
}
`,
		"auth.js": `
function login(user) {
  db.query(user);
  db.connect();
  return user;
}
`,
	})

	result, err := newAnalyzer(t).Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(result.Coupling) != 1 {
		t.Fatalf("expected 1 coupled pair, got %+v", result.Coupling)
	}
	p := result.Coupling[0]
	if p.Calls != 2 || p.Level != metrics.LevelLoose {
		t.Errorf("unexpected pair %+v", p)
	}
}

func byFunction(entries []metrics.IFCEntry) map[string]metrics.IFCEntry {
	m := make(map[string]metrics.IFCEntry, len(entries))
	for _, e := range entries {
		m[e.Function] = e
	}
	return m
}
