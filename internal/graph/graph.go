// Package graph merges per-file scan results into the project-wide call
// graph and computes fan-in and fan-out at function and module granularity.
package graph

import (
	"strconv"
	"strings"

	"callflow/internal/ingest"
)

// ModuleMetrics holds module-granularity fan counts. Module fan-in is a
// coarser heuristic than function fan-in and intentionally counts
// intra-module pairs on top of cross-module matches; the two statistics are
// reported separately and never reconciled.
type ModuleMetrics struct {
	Name          string `json:"name"`
	Path          string `json:"path"`
	FunctionCount int    `json:"functionCount"`
	FanIn         int    `json:"fanIn"`
	FanOut        int    `json:"fanOut"`
}

// Graph is the aggregated, read-only view of all scanned units.
type Graph struct {
	Units   []*ingest.SourceUnit
	Modules []*ModuleMetrics
}

// Aggregate builds the project call graph. It must run only after every file
// has been scanned: fan-in counts callers across the whole project, so a
// partial aggregation would under-count.
func Aggregate(units []*ingest.SourceUnit) *Graph {
	g := &Graph{
		Units:   units,
		Modules: make([]*ModuleMetrics, 0, len(units)),
	}

	for _, unit := range units {
		for _, fn := range unit.Functions {
			fn.FanIn = fanIn(units, unit, fn)
		}
		g.Modules = append(g.Modules, moduleMetrics(units, unit))
	}

	return g
}

// fanIn counts distinct caller identities referencing fn by name. Intra-file
// callers are keyed by (file, name, line); callers from other files are keyed
// by file path. The two passes look at disjoint files, so a caller can never
// be counted twice.
func fanIn(units []*ingest.SourceUnit, home *ingest.SourceUnit, fn *ingest.FunctionRecord) int {
	callers := make(map[string]struct{})

	for _, other := range home.Functions {
		if other == fn {
			continue
		}
		if other.HasCall(fn.Name) {
			callers[intraKey(home.Path, other)] = struct{}{}
		}
	}

	for _, unit := range units {
		if unit.Path == home.Path {
			continue
		}
		if unitCalls(unit, fn.Name) {
			callers[unit.Path] = struct{}{}
		}
	}

	return len(callers)
}

// unitCalls reports whether any call recorded in the unit, function-attributed
// or module-scope, targets name.
func unitCalls(unit *ingest.SourceUnit, name string) bool {
	for _, fn := range unit.Functions {
		if fn.HasCall(name) {
			return true
		}
	}
	for _, call := range unit.Calls {
		if call.Target == name {
			return true
		}
	}
	return false
}

func intraKey(path string, fn *ingest.FunctionRecord) string {
	return path + "|" + fn.Name + "|" + strconv.Itoa(fn.Line)
}

// moduleMetrics computes the module-granularity fan counts for one unit.
func moduleMetrics(units []*ingest.SourceUnit, unit *ingest.SourceUnit) *ModuleMetrics {
	m := &ModuleMetrics{
		Name:          unit.Module,
		Path:          unit.Path,
		FunctionCount: len(unit.Functions),
	}

	defined := make(map[string]struct{}, len(unit.Functions))
	for _, fn := range unit.Functions {
		defined[fn.Name] = struct{}{}
	}

	// Module fan-out: distinct base targets among calls that leave the
	// module. The base target is the part before the first dot.
	external := make(map[string]struct{})
	for _, target := range allTargets(unit) {
		if _, local := defined[target]; local {
			continue
		}
		external[BaseTarget(target)] = struct{}{}
	}
	m.FanOut = len(external)

	// Module fan-in, part (a): every cross-module call target matching one
	// of this module's function names.
	for _, other := range units {
		if other.Path == unit.Path {
			continue
		}
		for _, target := range allTargets(other) {
			if _, ok := defined[target]; ok {
				m.FanIn++
			}
		}
	}

	// Part (b): distinct ordered intra-module caller-to-callee pairs,
	// matched by substring against the recorded call-name format.
	for _, caller := range unit.Functions {
		for _, callee := range unit.Functions {
			if caller == callee {
				continue
			}
			if callsBySubstring(caller, callee.Name) {
				m.FanIn++
			}
		}
	}

	return m
}

// allTargets returns every call target recorded in the unit, both
// function-attributed and module-scope.
func allTargets(unit *ingest.SourceUnit) []string {
	var targets []string
	for _, fn := range unit.Functions {
		targets = append(targets, fn.Calls...)
	}
	for _, call := range unit.Calls {
		targets = append(targets, call.Target)
	}
	return targets
}

func callsBySubstring(fn *ingest.FunctionRecord, name string) bool {
	for _, target := range fn.Calls {
		if strings.Contains(target, name) {
			return true
		}
	}
	return false
}

// BaseTarget returns the portion of a call name before the first dot, or the
// whole name when there is none.
func BaseTarget(target string) string {
	if i := strings.Index(target, "."); i >= 0 {
		return target[:i]
	}
	return target
}
