package engine

import (
	"fmt"
	"io"
	"strings"
)

// PrintTree writes a depth-first, pre-order rendering of the tree to w: two
// spaces of indent per level, "- leaf (size N)" followed by one "- <key>"
// line per cell, or "- internal (size N)" followed by its children.
func (t *BTree) PrintTree(w io.Writer) error {
	return t.printSubtree(w, rootPageNo, 0)
}

func (t *BTree) printSubtree(w io.Writer, pageNo uint32, depth int) error {
	page, err := t.pager.Get(pageNo)
	if err != nil {
		return err
	}
	indent := strings.Repeat("  ", depth)

	if Type(page) == NodeTypeLeaf {
		n := LeafNumCells(page)
		fmt.Fprintf(w, "%s- leaf (size %d)\n", indent, n)
		for i := uint32(0); i < n; i++ {
			fmt.Fprintf(w, "%s  - %d\n", indent, LeafKey(page, i))
		}
		return nil
	}

	numKeys := InternalNumKeys(page)
	fmt.Fprintf(w, "%s- internal (size %d)\n", indent, numKeys)
	for i := uint32(0); i <= numKeys; i++ {
		child := InternalChild(page, i)
		if err := t.printSubtree(w, child, depth+1); err != nil {
			return err
		}
	}
	return nil
}
