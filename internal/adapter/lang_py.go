package adapter

import (
	"github.com/dusk-indust/codescope/internal/ir"
	"github.com/dusk-indust/codescope/internal/metrics"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// Python node kinds.
const (
	pyFunctionDefinition  NodeKind = "function_definition"
	pyClassDefinition     NodeKind = "class_definition"
	pyImportStatement     NodeKind = "import_statement"
	pyImportFromStatement NodeKind = "import_from_statement"
	pyAliasedImport       NodeKind = "aliased_import"

	pyIfStatement           NodeKind = "if_statement"
	pyElifClause            NodeKind = "elif_clause"
	pyForStatement          NodeKind = "for_statement"
	pyWhileStatement        NodeKind = "while_statement"
	pyExceptClause          NodeKind = "except_clause"
	pyBooleanOperator       NodeKind = "boolean_operator"
	pyConditionalExpression NodeKind = "conditional_expression"

	pyLambda NodeKind = "lambda"
)

// NewPythonAdapter returns an adapter for .py and .pyi files.
func NewPythonAdapter() *TreeSitterAdapter {
	return newTreeSitterAdapter(&langSpec{
		name:       "python",
		extensions: []string{".py", ".pyi"},
		grammar:    tree_sitter.NewLanguage(tree_sitter_python.Language()),
		comments:   metrics.HashStyle,
		declare:    pyDeclaration,
		imports:    pyImports,
		decision:   pyDecision,
		functionLike: map[NodeKind]bool{
			pyFunctionDefinition: true,
			pyLambda:             true,
		},
	})
}

func pyDeclaration(kind NodeKind) (declaration, bool) {
	switch kind {
	case pyFunctionDefinition:
		return declaration{kind: ir.SymbolKindFunction, field: "name"}, true
	case pyClassDefinition:
		return declaration{kind: ir.SymbolKindClass, field: "name"}, true
	}
	return declaration{}, false
}

// pyImports returns the module names of `import a, b as c` and the module of
// `from x import y`.
func pyImports(node *tree_sitter.Node, source []byte) []string {
	switch NodeKind(node.Kind()) {
	case pyImportStatement:
		var out []string
		for i := uint(0); i < node.NamedChildCount(); i++ {
			child := node.NamedChild(i)
			if child == nil {
				continue
			}
			if NodeKind(child.Kind()) == pyAliasedImport {
				out = append(out, fieldText(child, "name", source))
				continue
			}
			out = append(out, child.Utf8Text(source))
		}
		return out
	case pyImportFromStatement:
		if name := fieldText(node, "module_name", source); name != "" {
			return []string{name}
		}
	}
	return nil
}

func pyDecision(node *tree_sitter.Node) bool {
	switch NodeKind(node.Kind()) {
	case pyIfStatement, pyElifClause, pyForStatement, pyWhileStatement,
		pyExceptClause, pyBooleanOperator, pyConditionalExpression:
		return true
	}
	return false
}
