package metrics

import (
	"strings"

	"callflow/internal/graph"
	"callflow/internal/ingest"
	"callflow/internal/logging"
	"callflow/internal/rules"
)

// Calculator derives structural metrics from an aggregated call graph.
type Calculator struct {
	rules  *rules.Ruleset
	logger *logging.Logger
}

// NewCalculator creates a calculator using the given ruleset's group table,
// keyword list, and thresholds.
func NewCalculator(rs *rules.Ruleset, logger *logging.Logger) *Calculator {
	return &Calculator{
		rules:  rs,
		logger: logger,
	}
}

// Coupling computes coupled pairs. With a single module the configurable
// functional groups partition its functions; with several modules the
// modules themselves are the partition.
func (c *Calculator) Coupling(g *graph.Graph) []CouplingPair {
	if len(g.Units) == 1 {
		return c.groupCoupling(g.Units[0])
	}
	return c.moduleCoupling(g)
}

// groupCoupling counts calls crossing the keyword-defined functional groups
// of a single module.
func (c *Calculator) groupCoupling(unit *ingest.SourceUnit) []CouplingPair {
	groups := c.rules.Groups
	members := make([][]*ingest.FunctionRecord, len(groups))
	for gi, grp := range groups {
		for _, fn := range unit.Functions {
			if nameMatchesAny(fn.Name, grp.Keywords) {
				members[gi] = append(members[gi], fn)
			}
		}
	}

	pairs := make([]CouplingPair, 0)
	for i := 0; i < len(groups); i++ {
		for j := i + 1; j < len(groups); j++ {
			calls := crossGroupCalls(members[i], groups[j].Keywords) +
				crossGroupCalls(members[j], groups[i].Keywords)
			if calls == 0 {
				continue
			}
			pairs = append(pairs, CouplingPair{
				A:     groups[i].Name,
				B:     groups[j].Name,
				Calls: calls,
				Level: c.level(calls),
			})
		}
	}
	return pairs
}

// crossGroupCalls counts calls by the given functions whose target contains
// any of the other group's keywords.
func crossGroupCalls(fns []*ingest.FunctionRecord, keywords []string) int {
	calls := 0
	for _, fn := range fns {
		for _, target := range fn.Calls {
			if nameMatchesAny(target, keywords) {
				calls++
			}
		}
	}
	return calls
}

// moduleCoupling counts calls between module pairs: a call couples the pair
// when its target name contains the other module's name.
func (c *Calculator) moduleCoupling(g *graph.Graph) []CouplingPair {
	pairs := make([]CouplingPair, 0)
	for i := 0; i < len(g.Units); i++ {
		for j := i + 1; j < len(g.Units); j++ {
			a, b := g.Units[i], g.Units[j]
			calls := callsMentioningModule(a, b.Module) + callsMentioningModule(b, a.Module)
			if calls == 0 {
				continue
			}
			pairs = append(pairs, CouplingPair{
				A:     a.Module,
				B:     b.Module,
				Calls: calls,
				Level: c.level(calls),
			})
		}
	}
	return pairs
}

func callsMentioningModule(unit *ingest.SourceUnit, module string) int {
	needle := strings.ToLower(module)
	calls := 0
	for _, fn := range unit.Functions {
		for _, target := range fn.Calls {
			if strings.Contains(strings.ToLower(target), needle) {
				calls++
			}
		}
	}
	for _, cr := range unit.Calls {
		if strings.Contains(strings.ToLower(cr.Target), needle) {
			calls++
		}
	}
	return calls
}

func (c *Calculator) level(calls int) string {
	if calls > c.rules.TightThreshold() {
		return LevelTight
	}
	return LevelLoose
}

// Cohesion scores every module: the fraction of function pairs showing at
// least one kind of relatedness evidence.
func (c *Calculator) Cohesion(g *graph.Graph) []CohesionScore {
	scores := make([]CohesionScore, 0, len(g.Units))
	for _, unit := range g.Units {
		scores = append(scores, c.moduleCohesion(unit))
	}
	return scores
}

func (c *Calculator) moduleCohesion(unit *ingest.SourceUnit) CohesionScore {
	n := len(unit.Functions)
	switch n {
	case 0:
		return CohesionScore{Module: unit.Module, Score: 1, Rating: RatingHigh, Reason: "no functions"}
	case 1:
		return CohesionScore{Module: unit.Module, Score: 1, Rating: RatingHigh, Reason: "single function module"}
	}

	related := 0
	total := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			total++
			if c.pairRelated(unit.Functions[i], unit.Functions[j]) {
				related++
			}
		}
	}

	score := float64(related) / float64(total)
	return CohesionScore{
		Module: unit.Module,
		Score:  score,
		Rating: c.cohesionRating(score),
	}
}

// pairRelated checks the four evidence kinds: one calls the other, a shared
// parameter name, a shared call-target base object, or a shared domain
// keyword in both names.
func (c *Calculator) pairRelated(a, b *ingest.FunctionRecord) bool {
	if callsBySubstring(a, b.Name) || callsBySubstring(b, a.Name) {
		return true
	}

	if sharesParam(a, b) {
		return true
	}

	if sharesCallBase(a, b) {
		return true
	}

	an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name)
	for _, kw := range c.rules.CohesionKeywords {
		if strings.Contains(an, kw) && strings.Contains(bn, kw) {
			return true
		}
	}

	return false
}

func callsBySubstring(fn *ingest.FunctionRecord, name string) bool {
	for _, target := range fn.Calls {
		if target == name || strings.Contains(target, name) {
			return true
		}
	}
	return false
}

func sharesParam(a, b *ingest.FunctionRecord) bool {
	for _, pa := range a.Params {
		if pa == ingest.ParamPlaceholder {
			continue
		}
		for _, pb := range b.Params {
			if pa == pb {
				return true
			}
		}
	}
	return false
}

func sharesCallBase(a, b *ingest.FunctionRecord) bool {
	bases := make(map[string]struct{}, len(a.Calls))
	for _, target := range a.Calls {
		bases[graph.BaseTarget(target)] = struct{}{}
	}
	for _, target := range b.Calls {
		if _, ok := bases[graph.BaseTarget(target)]; ok {
			return true
		}
	}
	return false
}

func (c *Calculator) cohesionRating(score float64) string {
	high, medium := c.rules.CohesionBands()
	switch {
	case score > high:
		return RatingHigh
	case score > medium:
		return RatingMedium
	default:
		return RatingLow
	}
}

// Flow computes the information-flow complexity of every function:
// (fanIn x fanOut) squared, but only when both flows are present.
func (c *Calculator) Flow(g *graph.Graph) []IFCEntry {
	entries := make([]IFCEntry, 0)
	for _, unit := range g.Units {
		for _, fn := range unit.Functions {
			entries = append(entries, flowEntry(unit.Path, fn))
		}
	}
	return entries
}

func flowEntry(path string, fn *ingest.FunctionRecord) IFCEntry {
	score := 0
	if fn.FanIn > 0 && fn.FanOut > 0 {
		score = fn.FanIn * fn.FanOut
		score = score * score
	}

	return IFCEntry{
		Path:     path,
		Function: fn.Name,
		Line:     fn.Line,
		FanIn:    fn.FanIn,
		FanOut:   fn.FanOut,
		Score:    score,
		Rating:   flowRating(fn.FanIn, fn.FanOut, score),
	}
}

func flowRating(fanIn, fanOut, score int) string {
	switch {
	case fanIn == 0 && fanOut == 0:
		return RatingNone
	case fanIn == 0 || fanOut == 0:
		return RatingLow
	case score > 100:
		return RatingVeryHigh
	case score > 25:
		return RatingHigh
	case score > 5:
		return RatingMedium
	default:
		return RatingLow
	}
}

// nameMatchesAny reports whether name contains any keyword,
// case-insensitively.
func nameMatchesAny(name string, keywords []string) bool {
	lower := strings.ToLower(name)
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
