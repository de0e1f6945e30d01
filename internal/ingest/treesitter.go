//go:build cgo

package ingest

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Parser wraps tree-sitter for multi-language parsing.
type Parser struct {
	parser *sitter.Parser
}

// NewParser creates a new tree-sitter parser.
func NewParser() *Parser {
	return &Parser{
		parser: sitter.NewParser(),
	}
}

// Parse parses source code and returns the AST root node. Tree-sitter
// recovers from localized syntax errors by emitting ERROR nodes, so a tree
// comes back for anything short of a parser failure.
func (p *Parser) Parse(ctx context.Context, source []byte, lang Language) (*sitter.Node, error) {
	tsLang, err := getLanguage(lang)
	if err != nil {
		return nil, err
	}

	p.parser.SetLanguage(tsLang)
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	return tree.RootNode(), nil
}

// getLanguage returns the tree-sitter Language for a given language identifier.
func getLanguage(lang Language) (*sitter.Language, error) {
	switch lang {
	case LangJavaScript:
		return javascript.GetLanguage(), nil
	case LangTypeScript:
		return typescript.GetLanguage(), nil
	case LangTSX:
		return tsx.GetLanguage(), nil
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
}

// functionNodeTypes are the node types that define a function.
var functionNodeTypes = map[string]struct{}{
	"function_declaration":           {},
	"generator_function_declaration": {},
	"function_expression":            {},
	"function":                       {}, // pre-0.21 grammar name for function_expression
	"generator_function":             {},
	"arrow_function":                 {},
	"method_definition":              {},
}

// isFunctionNode reports whether a node defines a function.
func isFunctionNode(node *sitter.Node) bool {
	_, ok := functionNodeTypes[node.Type()]
	return ok
}

// nodeText returns the source text covered by the node.
func nodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

// nodeLine returns the 1-based line of the node's start.
func nodeLine(node *sitter.Node) int {
	return int(node.StartPoint().Row) + 1
}

// IsAvailable returns whether syntax analysis is available.
// Returns true when CGO is enabled.
func IsAvailable() bool {
	return true
}
