// Package rules holds the configurable analysis ruleset: the built-in
// deny-list, the functional-group partition, and cohesion keywords.
package rules

import (
	_ "embed"
	"fmt"

	"github.com/BurntSushi/toml"
)

// Embedded default ruleset; a user rules file replaces it wholesale.
//
//go:embed default_rules.toml
var embeddedRules []byte

// Group is one functional partition, matched by name-keyword substrings.
type Group struct {
	Name     string   `toml:"name"`
	Keywords []string `toml:"keywords"`
}

// Thresholds holds the classification cut-offs.
type Thresholds struct {
	Tight          int     `toml:"tight"`
	HighCohesion   float64 `toml:"high_cohesion"`
	MediumCohesion float64 `toml:"medium_cohesion"`
}

// Ruleset is the full analysis rule table.
type Ruleset struct {
	Builtins         []string   `toml:"builtins"`
	CohesionKeywords []string   `toml:"cohesion_keywords"`
	Thresholds       Thresholds `toml:"thresholds"`
	Groups           []Group    `toml:"groups"`

	builtinSet map[string]struct{}
}

// DefaultTOML returns the embedded ruleset file verbatim, for writing an
// editable copy into a project.
func DefaultTOML() []byte {
	out := make([]byte, len(embeddedRules))
	copy(out, embeddedRules)
	return out
}

// Default returns the embedded ruleset.
func Default() (*Ruleset, error) {
	var rs Ruleset
	if err := toml.Unmarshal(embeddedRules, &rs); err != nil {
		return nil, fmt.Errorf("failed to parse embedded rules: %w", err)
	}
	rs.index()
	return &rs, nil
}

// LoadFromFile loads a ruleset from a TOML file, replacing the defaults.
func LoadFromFile(path string) (*Ruleset, error) {
	var rs Ruleset
	if _, err := toml.DecodeFile(path, &rs); err != nil {
		return nil, fmt.Errorf("failed to load rules from %s: %w", path, err)
	}
	rs.index()
	return &rs, nil
}

// Load returns the ruleset from path when given, the defaults otherwise.
func Load(path string) (*Ruleset, error) {
	if path == "" {
		return Default()
	}
	return LoadFromFile(path)
}

func (rs *Ruleset) index() {
	rs.builtinSet = make(map[string]struct{}, len(rs.Builtins))
	for _, b := range rs.Builtins {
		rs.builtinSet[b] = struct{}{}
	}
}

// IsBuiltin reports whether name is on the deny-list of host built-ins.
func (rs *Ruleset) IsBuiltin(name string) bool {
	_, ok := rs.builtinSet[name]
	return ok
}

// TightThreshold returns the call count above which a pair is tightly coupled.
func (rs *Ruleset) TightThreshold() int {
	if rs.Thresholds.Tight <= 0 {
		return 5
	}
	return rs.Thresholds.Tight
}

// CohesionBands returns the high and medium cohesion cut-offs.
func (rs *Ruleset) CohesionBands() (high, medium float64) {
	high = rs.Thresholds.HighCohesion
	if high <= 0 {
		high = 0.7
	}
	medium = rs.Thresholds.MediumCohesion
	if medium <= 0 {
		medium = 0.3
	}
	return high, medium
}
