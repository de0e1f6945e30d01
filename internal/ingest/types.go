// Package ingest parses source files and extracts function definitions and
// the calls made inside them.
package ingest

// Language represents a supported programming language.
type Language string

const (
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
)

// FunctionKind classifies how a function was written in source.
type FunctionKind string

const (
	KindDeclaration     FunctionKind = "declaration"
	KindNamedExpression FunctionKind = "named-expression"
	KindArrow           FunctionKind = "arrow"
)

// CallKind classifies the callee shape of an observed call.
type CallKind string

const (
	CallDirect CallKind = "direct-identifier"
	CallMember CallKind = "member-expression"
)

// ParamPlaceholder stands in for destructured or otherwise complex parameters
// whose names cannot be read positionally.
const ParamPlaceholder = "<pattern>"

// CallRecord is one observed call. Source is the resolved name of the
// enclosing function, or empty for module-scope calls.
type CallRecord struct {
	Source string   `json:"source,omitempty"`
	Target string   `json:"target"`
	Line   int      `json:"line"`
	Kind   CallKind `json:"kind"`
}

// FunctionRecord is one function definition. Identity is (file path, Name,
// Line); FanIn and FanOut are filled in by the aggregator after every file
// has been scanned.
type FunctionRecord struct {
	Name   string       `json:"name"`
	Params []string     `json:"params"`
	Calls  []string     `json:"calls"` // outgoing targets, deduplicated, insertion order
	FanIn  int          `json:"fanIn"`
	FanOut int          `json:"fanOut"`
	Line   int          `json:"line"`
	Kind   FunctionKind `json:"kind"`
}

// SourceUnit is one analyzed file. Module is derived from the filename.
// Immutable after extraction except for the aggregator's fan counters.
type SourceUnit struct {
	Path      string            `json:"path"`
	Module    string            `json:"module"`
	Functions []*FunctionRecord `json:"functions"`
	Calls     []CallRecord      `json:"calls"` // module-scope calls, unattributed
	Imports   []string          `json:"imports,omitempty"`
	Exports   []string          `json:"exports,omitempty"`
}

// HasCall reports whether the function already recorded target.
func (f *FunctionRecord) HasCall(target string) bool {
	for _, c := range f.Calls {
		if c == target {
			return true
		}
	}
	return false
}

// LanguageFromExtension returns the Language for a file extension.
func LanguageFromExtension(ext string) (Language, bool) {
	switch ext {
	case ".js", ".jsx", ".mjs", ".cjs":
		return LangJavaScript, true
	case ".ts", ".mts", ".cts":
		return LangTypeScript, true
	case ".tsx":
		return LangTSX, true
	default:
		return "", false
	}
}
