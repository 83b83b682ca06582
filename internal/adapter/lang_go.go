package adapter

import (
	"github.com/dusk-indust/codescope/internal/ir"
	"github.com/dusk-indust/codescope/internal/metrics"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
)

// Go node kinds.
const (
	goFunctionDeclaration NodeKind = "function_declaration"
	goMethodDeclaration   NodeKind = "method_declaration"
	goTypeSpec            NodeKind = "type_spec"
	goTypeAlias           NodeKind = "type_alias"
	goConstSpec           NodeKind = "const_spec"
	goVarSpec             NodeKind = "var_spec"
	goImportSpec          NodeKind = "import_spec"
	goStructType          NodeKind = "struct_type"
	goInterfaceType       NodeKind = "interface_type"

	goIfStatement       NodeKind = "if_statement"
	goForStatement      NodeKind = "for_statement"
	goExpressionCase    NodeKind = "expression_case"
	goTypeCase          NodeKind = "type_case"
	goCommunicationCase NodeKind = "communication_case"
	goBinaryExpression  NodeKind = "binary_expression"

	goFuncLiteral NodeKind = "func_literal"
)

// NewGoAdapter returns an adapter for .go files.
func NewGoAdapter() *TreeSitterAdapter {
	return newTreeSitterAdapter(&langSpec{
		name:       "go",
		extensions: []string{".go"},
		grammar:    tree_sitter.NewLanguage(tree_sitter_go.Language()),
		comments:   metrics.CStyle,
		declare:    goDeclaration,
		refine:     goRefine,
		imports:    goImports,
		decision:   goDecision,
		functionLike: map[NodeKind]bool{
			goFunctionDeclaration: true,
			goMethodDeclaration:   true,
			goFuncLiteral:         true,
		},
	})
}

func goDeclaration(kind NodeKind) (declaration, bool) {
	switch kind {
	case goFunctionDeclaration, goMethodDeclaration:
		return declaration{kind: ir.SymbolKindFunction, field: "name"}, true
	case goTypeSpec, goTypeAlias:
		return declaration{kind: ir.SymbolKindType, field: "name"}, true
	case goConstSpec:
		return declaration{kind: ir.SymbolKindConst, field: "name"}, true
	case goVarSpec:
		return declaration{kind: ir.SymbolKindVariable, field: "name"}, true
	}
	return declaration{}, false
}

// goRefine maps struct types to classes and interface types to interfaces.
func goRefine(node *tree_sitter.Node, d declaration) declaration {
	if NodeKind(node.Kind()) != goTypeSpec {
		return d
	}
	typeNode := node.ChildByFieldName("type")
	if typeNode == nil {
		return d
	}
	switch NodeKind(typeNode.Kind()) {
	case goStructType:
		d.kind = ir.SymbolKindClass
	case goInterfaceType:
		d.kind = ir.SymbolKindInterface
	}
	return d
}

func goImports(node *tree_sitter.Node, source []byte) []string {
	if NodeKind(node.Kind()) != goImportSpec {
		return nil
	}
	if path := fieldText(node, "path", source); path != "" {
		return []string{path}
	}
	return nil
}

func goDecision(node *tree_sitter.Node) bool {
	switch NodeKind(node.Kind()) {
	case goIfStatement, goForStatement, goExpressionCase, goTypeCase, goCommunicationCase:
		return true
	case goBinaryExpression:
		return operatorIs(node, "&&", "||")
	}
	return false
}
