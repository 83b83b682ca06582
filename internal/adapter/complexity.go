package adapter

import tree_sitter "github.com/tree-sitter/go-tree-sitter"

// branchingComplexity returns 1 plus the number of decision points in fn's
// body. Nested function-like nodes are not descended into; they are scored
// on their own when the symbol walk reaches them.
func (a *TreeSitterAdapter) branchingComplexity(fn *tree_sitter.Node) int {
	complexity := 1

	body := fn.ChildByFieldName("body")
	if body == nil {
		return complexity
	}

	walk(body, func(node *tree_sitter.Node) bool {
		if a.spec.functionLike[NodeKind(node.Kind())] {
			return false
		}
		if a.spec.decision(node) {
			complexity++
		}
		return true
	})

	return complexity
}
