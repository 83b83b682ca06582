package adapter

import (
	"github.com/dusk-indust/codescope/internal/ir"
	"github.com/dusk-indust/codescope/internal/metrics"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
)

// Rust node kinds.
const (
	rsFunctionItem   NodeKind = "function_item"
	rsStructItem     NodeKind = "struct_item"
	rsEnumItem       NodeKind = "enum_item"
	rsTraitItem      NodeKind = "trait_item"
	rsTypeItem       NodeKind = "type_item"
	rsConstItem      NodeKind = "const_item"
	rsStaticItem     NodeKind = "static_item"
	rsUseDeclaration NodeKind = "use_declaration"

	rsIfExpression    NodeKind = "if_expression"
	rsForExpression   NodeKind = "for_expression"
	rsWhileExpression NodeKind = "while_expression"
	rsLoopExpression  NodeKind = "loop_expression"
	rsMatchArm        NodeKind = "match_arm"
	rsBinaryExpr      NodeKind = "binary_expression"

	rsClosureExpression NodeKind = "closure_expression"
)

// NewRustAdapter returns an adapter for .rs files.
func NewRustAdapter() *TreeSitterAdapter {
	return newTreeSitterAdapter(&langSpec{
		name:       "rust",
		extensions: []string{".rs"},
		grammar:    tree_sitter.NewLanguage(tree_sitter_rust.Language()),
		comments:   metrics.CStyle,
		declare:    rsDeclaration,
		imports:    rsImports,
		decision:   rsDecision,
		functionLike: map[NodeKind]bool{
			rsFunctionItem:      true,
			rsClosureExpression: true,
		},
	})
}

func rsDeclaration(kind NodeKind) (declaration, bool) {
	switch kind {
	case rsFunctionItem:
		return declaration{kind: ir.SymbolKindFunction, field: "name"}, true
	case rsStructItem:
		return declaration{kind: ir.SymbolKindClass, field: "name"}, true
	case rsEnumItem:
		return declaration{kind: ir.SymbolKindEnum, field: "name"}, true
	case rsTraitItem:
		return declaration{kind: ir.SymbolKindInterface, field: "name"}, true
	case rsTypeItem:
		return declaration{kind: ir.SymbolKindType, field: "name"}, true
	case rsConstItem:
		return declaration{kind: ir.SymbolKindConst, field: "name"}, true
	case rsStaticItem:
		return declaration{kind: ir.SymbolKindVariable, field: "name"}, true
	}
	return declaration{}, false
}

func rsImports(node *tree_sitter.Node, source []byte) []string {
	if NodeKind(node.Kind()) != rsUseDeclaration {
		return nil
	}
	if arg := fieldText(node, "argument", source); arg != "" {
		return []string{arg}
	}
	return nil
}

func rsDecision(node *tree_sitter.Node) bool {
	switch NodeKind(node.Kind()) {
	case rsIfExpression, rsForExpression, rsWhileExpression, rsLoopExpression, rsMatchArm:
		return true
	case rsBinaryExpr:
		return operatorIs(node, "&&", "||")
	}
	return false
}
