// Package analyzer runs the full pipeline: discover files, extract call
// facts per file, aggregate the graph, and compute metrics.
package analyzer

import (
	"context"
	"time"

	"callflow/internal/cferrors"
	"callflow/internal/config"
	"callflow/internal/discover"
	"callflow/internal/graph"
	"callflow/internal/ingest"
	"callflow/internal/logging"
	"callflow/internal/metrics"
	"callflow/internal/rules"
)

// Result holds everything one analysis run produced.
type Result struct {
	Root      string
	Files     []discover.File
	Skipped   []string // files that failed to parse
	Graph     *graph.Graph
	Flow      []metrics.IFCEntry
	Coupling  []metrics.CouplingPair
	Cohesion  []metrics.CohesionScore
	StartedAt time.Time
	Duration  time.Duration
}

// Analyzer wires the pipeline stages together.
type Analyzer struct {
	cfg    *config.Config
	rules  *rules.Ruleset
	logger *logging.Logger
}

func New(cfg *config.Config, rs *rules.Ruleset, logger *logging.Logger) *Analyzer {
	return &Analyzer{
		cfg:    cfg,
		rules:  rs,
		logger: logger,
	}
}

// Run analyzes every matching source file under root. Individual files
// that fail to parse are skipped with a warning; an empty tree is an
// error.
func (a *Analyzer) Run(ctx context.Context, root string) (*Result, error) {
	started := time.Now()

	if !ingest.IsAvailable() {
		return nil, cferrors.New(cferrors.ParserUnavailable,
			"this build has no parser support (compiled without cgo)", nil)
	}

	walker := discover.NewWalker(a.cfg.Extensions, a.cfg.IgnoreDirs, a.logger)
	files, err := walker.Discover(root)
	if err != nil {
		return nil, cferrors.New(cferrors.InternalError, "source discovery failed", err)
	}
	if len(files) == 0 {
		return nil, cferrors.New(cferrors.NoSourceFiles,
			"no source files found under "+root, nil)
	}

	a.logger.Info("discovered source files", map[string]interface{}{
		"root":  root,
		"count": len(files),
	})

	extractor := ingest.NewExtractor(a.rules, a.logger)

	units := make([]*ingest.SourceUnit, 0, len(files))
	var skipped []string
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		unit, err := extractor.ScanFile(ctx, f.AbsPath, f.RelPath)
		if err != nil {
			a.logger.Warn("skipping file", map[string]interface{}{
				"file":  f.RelPath,
				"error": err.Error(),
			})
			skipped = append(skipped, f.RelPath)
			continue
		}
		units = append(units, unit)
	}

	if len(units) == 0 {
		return nil, cferrors.New(cferrors.ParseFailure,
			"every discovered file failed to parse", nil)
	}

	g := graph.Aggregate(units)

	calc := metrics.NewCalculator(a.rules, a.logger)
	result := &Result{
		Root:      root,
		Files:     files,
		Skipped:   skipped,
		Graph:     g,
		Flow:      calc.Flow(g),
		Coupling:  calc.Coupling(g),
		Cohesion:  calc.Cohesion(g),
		StartedAt: started,
		Duration:  time.Since(started),
	}

	a.logger.Info("analysis complete", map[string]interface{}{
		"files":     len(files),
		"skipped":   len(skipped),
		"functions": result.FunctionCount(),
		"duration":  result.Duration.String(),
	})

	return result, nil
}

// FunctionCount returns the total number of functions across all units.
func (r *Result) FunctionCount() int {
	total := 0
	for _, unit := range r.Graph.Units {
		total += len(unit.Functions)
	}
	return total
}

// CallCount returns the total number of recorded calls, module-scope
// ones included.
func (r *Result) CallCount() int {
	total := 0
	for _, unit := range r.Graph.Units {
		for _, fn := range unit.Functions {
			total += len(fn.Calls)
		}
		total += len(unit.Calls)
	}
	return total
}
