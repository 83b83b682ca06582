package adapter

import (
	"github.com/dusk-indust/codescope/internal/ir"
	"github.com/dusk-indust/codescope/internal/metrics"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// TypeScript and JavaScript node kinds.
const (
	tsClassDeclaration     NodeKind = "class_declaration"
	tsFunctionDeclaration  NodeKind = "function_declaration"
	tsInterfaceDeclaration NodeKind = "interface_declaration"
	tsTypeAliasDeclaration NodeKind = "type_alias_declaration"
	tsEnumDeclaration      NodeKind = "enum_declaration"
	tsImportStatement      NodeKind = "import_statement"

	tsIfStatement    NodeKind = "if_statement"
	tsForStatement   NodeKind = "for_statement"
	tsForInStatement NodeKind = "for_in_statement"
	tsWhileStatement NodeKind = "while_statement"
	tsDoStatement    NodeKind = "do_statement"
	tsSwitchCase     NodeKind = "switch_case"
	tsCatchClause    NodeKind = "catch_clause"
	tsBinaryExpr     NodeKind = "binary_expression"

	tsFunctionExpression    NodeKind = "function_expression"
	tsArrowFunction         NodeKind = "arrow_function"
	tsMethodDefinition      NodeKind = "method_definition"
	tsGeneratorFunctionDecl NodeKind = "generator_function_declaration"
	tsGeneratorFunction     NodeKind = "generator_function"
)

// NewTypeScriptAdapter returns an adapter for .ts, .mts and .cts files.
func NewTypeScriptAdapter() *TreeSitterAdapter {
	return newTreeSitterAdapter(tsSpec(
		"typescript",
		[]string{".ts", ".mts", ".cts"},
		tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()),
	))
}

// NewTSXAdapter returns an adapter for .tsx files and for the JavaScript
// family, which the TSX grammar also accepts.
func NewTSXAdapter() *TreeSitterAdapter {
	return newTreeSitterAdapter(tsSpec(
		"tsx",
		[]string{".tsx", ".js", ".jsx", ".mjs", ".cjs"},
		tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTSX()),
	))
}

func tsSpec(name string, exts []string, grammar *tree_sitter.Language) *langSpec {
	return &langSpec{
		name:       name,
		extensions: exts,
		grammar:    grammar,
		comments:   metrics.CStyle,
		declare:    tsDeclaration,
		imports:    tsImports,
		decision:   tsDecision,
		functionLike: map[NodeKind]bool{
			tsFunctionDeclaration:   true,
			tsFunctionExpression:    true,
			tsArrowFunction:         true,
			tsMethodDefinition:      true,
			tsGeneratorFunctionDecl: true,
			tsGeneratorFunction:     true,
		},
	}
}

// tsDeclaration recognizes exactly the five named declaration forms.
// Anonymous declarations such as `export default class {}` carry no name and
// are skipped by the walker.
func tsDeclaration(kind NodeKind) (declaration, bool) {
	switch kind {
	case tsClassDeclaration:
		return declaration{kind: ir.SymbolKindClass, field: "name"}, true
	case tsFunctionDeclaration:
		return declaration{kind: ir.SymbolKindFunction, field: "name"}, true
	case tsInterfaceDeclaration:
		return declaration{kind: ir.SymbolKindInterface, field: "name"}, true
	case tsTypeAliasDeclaration:
		return declaration{kind: ir.SymbolKindType, field: "name"}, true
	case tsEnumDeclaration:
		return declaration{kind: ir.SymbolKindEnum, field: "name"}, true
	}
	return declaration{}, false
}

func tsImports(node *tree_sitter.Node, source []byte) []string {
	if NodeKind(node.Kind()) != tsImportStatement {
		return nil
	}
	sourceNode := node.ChildByFieldName("source")
	if sourceNode == nil {
		return nil
	}
	return []string{sourceNode.Utf8Text(source)}
}

func tsDecision(node *tree_sitter.Node) bool {
	switch NodeKind(node.Kind()) {
	case tsIfStatement, tsForStatement, tsForInStatement, tsWhileStatement,
		tsDoStatement, tsSwitchCase, tsCatchClause:
		return true
	case tsBinaryExpr:
		return operatorIs(node, "&&", "||")
	}
	return false
}
