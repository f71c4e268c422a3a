package heightmap

// buildBalancedTree combines leaves (in document order) into a single
// balanced node by repeated midpoint split, the same shape as the
// teacher's rope rebalancer (pkg/rope/balance.go's buildBalancedTree/
// collectLeaves), generalised from text chunks to height-map leaves.
func buildBalancedTree(leaves []node) node {
	return buildBalancedRange(leaves, 0, len(leaves))
}

func buildBalancedRange(leaves []node, start, end int) node {
	if start >= end {
		return NewGap(0, 0)
	}
	if start == end-1 {
		return leaves[start]
	}
	mid := (start + end) / 2
	left := buildBalancedRange(leaves, start, mid)
	right := buildBalancedRange(leaves, mid, end)
	return newBranch(left, right)
}

// collectLeaves flattens a tree back into its leaves in document order,
// the inverse of buildBalancedTree.
func collectLeaves(n node) []node {
	if b, ok := n.(*branch); ok {
		return append(collectLeaves(b.left), collectLeaves(b.right)...)
	}
	return []node{n}
}

// isBalanced reports whether every branch satisfies size(larger) <=
// 2*size(smaller), using character length as the size metric.
func isBalanced(n node) bool {
	b, ok := n.(*branch)
	if !ok {
		return true
	}
	ls, rs := b.left.length(), b.right.length()
	if ls == 0 {
		ls = 1
	}
	if rs == 0 {
		rs = 1
	}
	if ls > 2*rs || rs > 2*ls {
		return false
	}
	return isBalanced(b.left) && isBalanced(b.right)
}
