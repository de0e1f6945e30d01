//go:build !cgo

package ingest

import (
	"context"
	"errors"

	"callflow/internal/logging"
	"callflow/internal/rules"
)

// ErrNoCGO is returned when syntax analysis is unavailable due to missing CGO.
var ErrNoCGO = errors.New("syntax analysis requires CGO (tree-sitter)")

// Extractor scans source files into SourceUnits.
// This is a stub implementation for non-CGO builds.
type Extractor struct{}

// NewExtractor creates a new extractor.
// Returns nil when CGO is disabled.
func NewExtractor(rs *rules.Ruleset, logger *logging.Logger) *Extractor {
	return nil
}

// ScanFile reads and scans one file.
// Stub implementation returns an error.
func (e *Extractor) ScanFile(ctx context.Context, absPath, relPath string) (*SourceUnit, error) {
	return nil, ErrNoCGO
}

// ScanSource scans source bytes into a SourceUnit.
// Stub implementation returns an error.
func (e *Extractor) ScanSource(ctx context.Context, relPath string, source []byte, lang Language) (*SourceUnit, error) {
	return nil, ErrNoCGO
}

// IsAvailable returns whether syntax analysis is available.
// Returns false when CGO is disabled.
func IsAvailable() bool {
	return false
}
