package engine

import "rowtree/pager"

// Node type tags stored in the first byte of every page.
const (
	NodeTypeInternal byte = 0
	NodeTypeLeaf     byte = 1
)

// InvalidPage marks an unset right_child pointer on an internal node.
const InvalidPage uint32 = 0xFFFFFFFF

// noSibling is the next_leaf sentinel meaning "end of chain". It collides in
// value with the root page number (0), which is safe in practice: the root
// is a leaf only before the first split, at which point it has no sibling by
// construction, and after any split the root is always internal. See
// SPEC_FULL.md §10 for the full discussion of this anomaly.
const noSibling uint32 = 0

// Common header: type(1) | is_root(1) | parent(4).
const (
	typeOffset   = 0
	isRootOffset = typeOffset + 1
	parentOffset = isRootOffset + 1

	commonHeaderSize = parentOffset + 4
)

// Leaf header (after the common header): num_cells(4) | next_leaf(4).
const (
	leafNumCellsOffset = commonHeaderSize
	leafNextLeafOffset = leafNumCellsOffset + 4

	leafHeaderSize = leafNextLeafOffset + 4
)

// Leaf cell: key(4) | row(RowSize).
const (
	leafKeySize    = 4
	leafValueSize  = RowSize
	leafCellSize   = leafKeySize + leafValueSize
	leafCellKeyOff = 0
	leafCellValOff = leafKeySize
)

// LeafMaxCells is how many cells fit in a page body after the leaf header.
var LeafMaxCells = (pager.PageSize - leafHeaderSize) / leafCellSize

// LeafRightSplitCount and LeafLeftSplitCount divide LeafMaxCells+1 cells
// between the two leaves produced by a split.
var (
	LeafRightSplitCount = (LeafMaxCells + 1 + 1) / 2
	LeafLeftSplitCount  = (LeafMaxCells + 1) - LeafRightSplitCount
)

// Internal header (after the common header): num_keys(4) | right_child(4).
const (
	internalNumKeysOffset    = commonHeaderSize
	internalRightChildOffset = internalNumKeysOffset + 4

	internalHeaderSize = internalRightChildOffset + 4
)

// Internal cell: child(4) | key(4).
const (
	internalChildSize   = 4
	internalKeySize     = 4
	internalCellSize    = internalChildSize + internalKeySize
	internalCellChldOff = 0
	internalCellKeyOff  = internalChildSize
)

// InternalMaxKeys is deliberately small (not derived from page size) so that
// ordinary test runs exercise internal splits, per the spec.
const InternalMaxKeys = 3
