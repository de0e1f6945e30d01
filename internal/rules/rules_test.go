package rules

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultRuleset(t *testing.T) {
	rs, err := Default()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !rs.IsBuiltin("console") {
		t.Error("console should be on the default deny-list")
	}
	if !rs.IsBuiltin("setTimeout") {
		t.Error("setTimeout should be on the default deny-list")
	}
	if rs.IsBuiltin("generateRoomId") {
		t.Error("project functions must not be denied")
	}

	if len(rs.Groups) != 3 {
		t.Errorf("expected 3 default groups, got %d", len(rs.Groups))
	}
	if rs.TightThreshold() != 5 {
		t.Errorf("expected tight threshold 5, got %d", rs.TightThreshold())
	}

	high, medium := rs.CohesionBands()
	if high != 0.7 || medium != 0.3 {
		t.Errorf("expected bands 0.7/0.3, got %v/%v", high, medium)
	}
}

func TestLoadFromFileReplacesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.toml")
	content := `
builtins = ["print"]
cohesion_keywords = ["order"]

[thresholds]
tight = 2

[[groups]]
name = "orders"
keywords = ["order", "checkout"]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	rs, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !rs.IsBuiltin("print") {
		t.Error("user deny-list entry missing")
	}
	if rs.IsBuiltin("console") {
		t.Error("defaults should be replaced, not merged")
	}
	if rs.TightThreshold() != 2 {
		t.Errorf("expected tight threshold 2, got %d", rs.TightThreshold())
	}
	if len(rs.Groups) != 1 || rs.Groups[0].Name != "orders" {
		t.Errorf("expected single user group, got %+v", rs.Groups)
	}
}

func TestLoadEmptyPathGivesDefaults(t *testing.T) {
	rs, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rs.Builtins) == 0 {
		t.Error("expected embedded defaults")
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("expected error for missing rules file")
	}
}
