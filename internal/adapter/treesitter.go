package adapter

import (
	"fmt"
	"strings"

	"github.com/dusk-indust/codescope/internal/ir"
	"github.com/dusk-indust/codescope/internal/metrics"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// NodeKind is a tree-sitter node type name. Each language declares the
// closed set of kinds its tables recognize.
type NodeKind string

// declaration says which symbol kind a node declares and which field holds
// its name.
type declaration struct {
	kind  ir.SymbolKind
	field string
}

// langSpec is the per-language table driving TreeSitterAdapter.
type langSpec struct {
	name       string
	extensions []string
	grammar    *tree_sitter.Language
	comments   metrics.CommentSyntax

	// declare is a pure lookup from node kind to declaration.
	declare func(NodeKind) (declaration, bool)

	// refine adjusts a declaration using the node itself, for grammars where
	// the node kind alone is not enough (Go type specs). May be nil.
	refine func(node *tree_sitter.Node, d declaration) declaration

	// imports returns the raw import targets of node, or nil when node is
	// not an import.
	imports func(node *tree_sitter.Node, source []byte) []string

	// decision reports whether node adds one to branching complexity.
	decision func(node *tree_sitter.Node) bool

	// functionLike kinds own their complexity and are not descended into
	// when scoring an enclosing function.
	functionLike map[NodeKind]bool
}

// TreeSitterAdapter parses one language with a tree-sitter grammar and a
// langSpec table. A new tree-sitter parser is created per Parse call, so the
// adapter is safe for concurrent use.
type TreeSitterAdapter struct {
	spec *langSpec
}

var _ Adapter = (*TreeSitterAdapter)(nil)

func newTreeSitterAdapter(spec *langSpec) *TreeSitterAdapter {
	return &TreeSitterAdapter{spec: spec}
}

// Name returns the language handled by the adapter.
func (a *TreeSitterAdapter) Name() string {
	return a.spec.name
}

// MatchExtensions returns the extensions handled by the adapter.
func (a *TreeSitterAdapter) MatchExtensions() []string {
	out := make([]string, len(a.spec.extensions))
	copy(out, a.spec.extensions)
	return out
}

// Parse builds the Module IR for one source file.
func (a *TreeSitterAdapter) Parse(path string, source []byte) (*ir.Module, error) {
	parser := tree_sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(a.spec.grammar); err != nil {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("set language %s: %w", a.spec.name, err)}
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, &ParseError{Path: path, Err: ErrNilTree}
	}
	defer tree.Close()

	root := tree.RootNode()

	m := ir.NewModule(path)
	lang := DetectLanguage(path)
	if lang == "unknown" {
		lang = a.spec.name
	}
	m.Language = ir.Ptr(lang)

	lines := a.spec.comments.Count(source)
	m.LOC = lines.Code
	m.CommentLines = lines.Comment
	m.BlankLines = lines.Blank

	m.Symbols = a.extractSymbols(root, source)
	m.Outgoing = a.extractImports(root, source)
	metrics.ApplyScores(m)

	return m, nil
}

// extractSymbols walks the tree in pre-order and records every declaration
// the language table recognizes. Declarations without a name are skipped.
func (a *TreeSitterAdapter) extractSymbols(root *tree_sitter.Node, source []byte) []ir.Symbol {
	symbols := []ir.Symbol{}

	walk(root, func(node *tree_sitter.Node) bool {
		d, ok := a.spec.declare(NodeKind(node.Kind()))
		if !ok {
			return true
		}
		if a.spec.refine != nil {
			d = a.spec.refine(node, d)
		}

		nameNode := node.ChildByFieldName(d.field)
		if nameNode == nil {
			return true
		}
		name := nameNode.Utf8Text(source)
		if name == "" {
			return true
		}

		start := node.StartPosition().Row
		end := node.EndPosition().Row
		sym := ir.Symbol{
			Kind:      d.kind,
			Name:      name,
			LOC:       int(end-start) + 1,
			StartLine: int(start) + 1,
			Metrics:   []ir.QualityMetric{},
		}
		if d.kind == ir.SymbolKindFunction {
			sym.BranchingComplexity = ir.Ptr(a.branchingComplexity(node))
		}
		symbols = append(symbols, sym)
		return true
	})

	return symbols
}

// extractImports walks the tree in pre-order and records one import edge per
// non-empty import target.
func (a *TreeSitterAdapter) extractImports(root *tree_sitter.Node, source []byte) []ir.DepEdge {
	edges := []ir.DepEdge{}

	walk(root, func(node *tree_sitter.Node) bool {
		for _, target := range a.spec.imports(node, source) {
			target = trimQuotes(target)
			if target == "" {
				continue
			}
			edges = append(edges, ir.NewImportEdge(target))
		}
		return true
	})

	return edges
}

// walk visits node and its descendants in pre-order. Children are skipped
// when visit returns false.
func walk(node *tree_sitter.Node, visit func(*tree_sitter.Node) bool) {
	cursor := node.Walk()
	defer cursor.Close()
	walkCursor(cursor, visit)
}

func walkCursor(cursor *tree_sitter.TreeCursor, visit func(*tree_sitter.Node) bool) {
	if !visit(cursor.Node()) {
		return
	}
	if cursor.GotoFirstChild() {
		walkCursor(cursor, visit)
		for cursor.GotoNextSibling() {
			walkCursor(cursor, visit)
		}
		cursor.GotoParent()
	}
}

// fieldText returns the text of node's field child, or "".
func fieldText(node *tree_sitter.Node, field string, source []byte) string {
	child := node.ChildByFieldName(field)
	if child == nil {
		return ""
	}
	return child.Utf8Text(source)
}

// operatorIs reports whether node's operator field is one of ops.
func operatorIs(node *tree_sitter.Node, ops ...string) bool {
	op := node.ChildByFieldName("operator")
	if op == nil {
		return false
	}
	kind := op.Kind()
	for _, want := range ops {
		if kind == want {
			return true
		}
	}
	return false
}

func trimQuotes(s string) string {
	return strings.Trim(strings.TrimSpace(s), "\"'`")
}
