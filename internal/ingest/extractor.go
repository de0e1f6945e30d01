//go:build cgo

package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"callflow/internal/logging"
	"callflow/internal/rules"
)

// Extractor scans source files into SourceUnits: every function definition
// with its resolved name, parameters, and the calls made directly in its
// body.
type Extractor struct {
	parser *Parser
	rules  *rules.Ruleset
	logger *logging.Logger
}

// NewExtractor creates an extractor using the given ruleset's deny-list.
func NewExtractor(rs *rules.Ruleset, logger *logging.Logger) *Extractor {
	return &Extractor{
		parser: NewParser(),
		rules:  rs,
		logger: logger,
	}
}

// ScanFile reads and scans one file. relPath becomes the SourceUnit path.
func (e *Extractor) ScanFile(ctx context.Context, absPath, relPath string) (*SourceUnit, error) {
	ext := strings.ToLower(filepath.Ext(absPath))
	lang, ok := LanguageFromExtension(ext)
	if !ok {
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}

	source, err := os.ReadFile(absPath)
	if err != nil {
		return nil, err
	}

	return e.ScanSource(ctx, relPath, source, lang)
}

// ScanSource scans source bytes into a SourceUnit.
func (e *Extractor) ScanSource(ctx context.Context, relPath string, source []byte, lang Language) (*SourceUnit, error) {
	root, err := e.parser.Parse(ctx, source, lang)
	if err != nil {
		return nil, err
	}

	unit := &SourceUnit{
		Path:      relPath,
		Module:    moduleName(relPath),
		Functions: make([]*FunctionRecord, 0),
	}

	resolver := newNameResolver(source)
	seen := make(map[uint32]struct{})

	walkWithAncestors(root, func(node *sitter.Node, ancestors []*sitter.Node) {
		if !isFunctionNode(node) {
			return
		}
		// The same definition can be reached again through another
		// traversal path; revisits are discarded.
		if _, dup := seen[node.StartByte()]; dup {
			return
		}
		seen[node.StartByte()] = struct{}{}

		name, kind := resolver.resolve(node, ancestors)
		rec := &FunctionRecord{
			Name:   name,
			Params: e.extractParams(node, source),
			Calls:  make([]string, 0),
			Line:   nodeLine(node),
			Kind:   kind,
		}
		e.extractCalls(node, source, rec)
		unit.Functions = append(unit.Functions, rec)
	})

	e.extractModuleScope(root, source, unit)
	e.extractImportsExports(root, source, unit)

	if e.logger != nil {
		e.logger.Debug("Scanned file", map[string]interface{}{
			"path":      relPath,
			"functions": len(unit.Functions),
		})
	}

	return unit, nil
}

// extractCalls collects the calls made directly inside fn's body. Recursion
// stops at nested function definitions: their calls belong to them, never to
// the lexically enclosing function.
func (e *Extractor) extractCalls(fn *sitter.Node, source []byte, rec *FunctionRecord) {
	body := fn.ChildByFieldName("body")
	if body == nil {
		return
	}
	// An expression body can itself be a function definition, as in a
	// curried arrow. Its calls belong to the inner function, which gets
	// its own record from the main traversal.
	if isFunctionNode(body) {
		return
	}

	var walk func(node *sitter.Node)
	walk = func(node *sitter.Node) {
		if node.Type() == "call_expression" {
			e.recordCall(node, source, rec)
		}
		for i := 0; i < int(node.ChildCount()); i++ {
			child := node.Child(i)
			if child == nil || isFunctionNode(child) {
				continue
			}
			walk(child)
		}
	}
	walk(body)
}

// recordCall classifies one call expression and records it on the function.
func (e *Extractor) recordCall(call *sitter.Node, source []byte, rec *FunctionRecord) {
	callee := call.ChildByFieldName("function")
	if callee == nil {
		return
	}

	switch callee.Type() {
	case "identifier":
		target := nodeText(callee, source)
		if e.rules.IsBuiltin(target) {
			return
		}
		if !rec.HasCall(target) {
			rec.Calls = append(rec.Calls, target)
			rec.FanOut++
		}

	case "member_expression":
		// Member calls are assumed external; tracked for dependency
		// bookkeeping but they do not raise fan-out.
		target := nodeText(callee, source)
		if !rec.HasCall(target) {
			rec.Calls = append(rec.Calls, target)
		}
	}
}

// extractModuleScope records calls made outside any function body.
func (e *Extractor) extractModuleScope(root *sitter.Node, source []byte, unit *SourceUnit) {
	var walk func(node *sitter.Node)
	walk = func(node *sitter.Node) {
		if node.Type() == "call_expression" {
			if cr, ok := e.moduleScopeCall(node, source); ok {
				unit.Calls = append(unit.Calls, cr)
			}
		}
		for i := 0; i < int(node.ChildCount()); i++ {
			child := node.Child(i)
			if child == nil || isFunctionNode(child) {
				continue
			}
			walk(child)
		}
	}
	walk(root)
}

func (e *Extractor) moduleScopeCall(call *sitter.Node, source []byte) (CallRecord, bool) {
	callee := call.ChildByFieldName("function")
	if callee == nil {
		return CallRecord{}, false
	}

	switch callee.Type() {
	case "identifier":
		target := nodeText(callee, source)
		if e.rules.IsBuiltin(target) {
			return CallRecord{}, false
		}
		return CallRecord{Target: target, Line: nodeLine(call), Kind: CallDirect}, true
	case "member_expression":
		return CallRecord{Target: nodeText(callee, source), Line: nodeLine(call), Kind: CallMember}, true
	}
	return CallRecord{}, false
}

// extractParams reads the declared parameter names positionally, substituting
// a placeholder for destructured or complex parameters.
func (e *Extractor) extractParams(fn *sitter.Node, source []byte) []string {
	params := make([]string, 0)

	// Parenless arrows carry a single identifier parameter.
	if single := fn.ChildByFieldName("parameter"); single != nil {
		return append(params, nodeText(single, source))
	}

	list := fn.ChildByFieldName("parameters")
	if list == nil {
		return params
	}

	for i := 0; i < int(list.NamedChildCount()); i++ {
		p := list.NamedChild(i)
		if p == nil {
			continue
		}
		params = append(params, paramName(p, source))
	}
	return params
}

func paramName(p *sitter.Node, source []byte) string {
	switch p.Type() {
	case "identifier":
		return nodeText(p, source)
	case "assignment_pattern":
		if left := p.ChildByFieldName("left"); left != nil && left.Type() == "identifier" {
			return nodeText(left, source)
		}
	case "required_parameter", "optional_parameter":
		// TypeScript wraps the pattern in a parameter node.
		if pat := p.ChildByFieldName("pattern"); pat != nil && pat.Type() == "identifier" {
			return nodeText(pat, source)
		}
	}
	return ParamPlaceholder
}

// extractImportsExports collects import sources and exported names. These are
// informational only; nothing downstream depends on them.
func (e *Extractor) extractImportsExports(root *sitter.Node, source []byte, unit *SourceUnit) {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		node := root.NamedChild(i)
		if node == nil {
			continue
		}
		switch node.Type() {
		case "import_statement":
			if src := node.ChildByFieldName("source"); src != nil {
				unit.Imports = append(unit.Imports, stripQuotes(nodeText(src, source)))
			}
		case "export_statement":
			if decl := node.ChildByFieldName("declaration"); decl != nil {
				if name := decl.ChildByFieldName("name"); name != nil {
					unit.Exports = append(unit.Exports, nodeText(name, source))
				}
			}
		}
	}
}

// walkWithAncestors visits every node with its ancestor chain, outermost
// first. The stack is owned by the traversal; visitors must copy it if they
// keep it.
func walkWithAncestors(root *sitter.Node, visit func(node *sitter.Node, ancestors []*sitter.Node)) {
	var stack []*sitter.Node

	var walk func(node *sitter.Node)
	walk = func(node *sitter.Node) {
		visit(node, stack)

		stack = append(stack, node)
		for i := 0; i < int(node.ChildCount()); i++ {
			if child := node.Child(i); child != nil {
				walk(child)
			}
		}
		stack = stack[:len(stack)-1]
	}
	walk(root)
}

// moduleName derives the module name from the file name.
func moduleName(relPath string) string {
	base := filepath.Base(relPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
