//go:build cgo

package ingest

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
)

// nameResolver assigns a stable name to every function definition in one
// file. Anonymous functions are named from their enclosing context; the
// synthesized-name counter lives here so it is scoped to a single file scan.
type nameResolver struct {
	source  []byte
	counter int
}

func newNameResolver(source []byte) *nameResolver {
	return &nameResolver{source: source}
}

// resolve returns the canonical name and kind for a function definition node.
// ancestors is the node's ancestor chain, outermost first.
func (r *nameResolver) resolve(fn *sitter.Node, ancestors []*sitter.Node) (string, FunctionKind) {
	kind := kindOf(fn)

	// Explicitly named definitions keep their declared name.
	if name := nodeText(fn.ChildByFieldName("name"), r.source); name != "" {
		return name, kind
	}

	// Anonymous: walk the enclosing context outward, innermost ancestor
	// first. The first matching rule wins.
	child := fn
	for i := len(ancestors) - 1; i >= 0; i-- {
		anc := ancestors[i]
		if name, ok := r.matchContext(anc, child); ok {
			return name, kind
		}
		child = anc
	}

	r.counter++
	return fmt.Sprintf("anonymous_%d", r.counter), kind
}

// matchContext applies the naming rules against one ancestor level.
func (r *nameResolver) matchContext(anc, child *sitter.Node) (string, bool) {
	switch anc.Type() {
	case "variable_declarator":
		// const handler = function() {...}
		if sameNode(anc.ChildByFieldName("value"), child) {
			return nodeText(anc.ChildByFieldName("name"), r.source), true
		}

	case "assignment_expression":
		// module.exports.start = () => {...}
		if sameNode(anc.ChildByFieldName("right"), child) {
			return nodeText(anc.ChildByFieldName("left"), r.source), true
		}

	case "pair":
		// { onJoin: function() {...} }
		if sameNode(anc.ChildByFieldName("value"), child) {
			return stripQuotes(nodeText(anc.ChildByFieldName("key"), r.source)), true
		}

	case "call_expression":
		// socket.on('draw', function(data) {...})
		if child.Type() != "arguments" {
			break
		}
		callee := anc.ChildByFieldName("function")
		if callee == nil || callee.Type() != "member_expression" {
			break
		}
		base := nodeText(callee.ChildByFieldName("object"), r.source) + "." +
			nodeText(callee.ChildByFieldName("property"), r.source)
		if lit := r.firstStringArgument(child); lit != "" {
			return base + "_" + lit, true
		}
		return base + "_handler", true
	}

	return "", false
}

// firstStringArgument returns the value of the first string literal among the
// call arguments, or empty when there is none.
func (r *nameResolver) firstStringArgument(args *sitter.Node) string {
	for i := 0; i < int(args.NamedChildCount()); i++ {
		arg := args.NamedChild(i)
		if arg != nil && arg.Type() == "string" {
			return stripQuotes(nodeText(arg, r.source))
		}
	}
	return ""
}

func kindOf(fn *sitter.Node) FunctionKind {
	switch fn.Type() {
	case "arrow_function":
		return KindArrow
	case "function_expression", "function", "generator_function":
		return KindNamedExpression
	default:
		return KindDeclaration
	}
}

func sameNode(a, b *sitter.Node) bool {
	if a == nil || b == nil {
		return false
	}
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}

func stripQuotes(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '\'' || first == '"' || first == '`') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
