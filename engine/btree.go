// Package engine implements the on-disk B+tree: the node codec, the row
// codec, and the search/insert/split algorithm that sits on top of the
// pager. Page 0 is always the root.
package engine

import (
	"errors"
	"fmt"

	"rowtree/pager"
)

const rootPageNo = 0

// ErrDuplicateKey is returned by Insert when the key is already present.
var ErrDuplicateKey = errors.New("engine: duplicate key")

// ErrCorrupt marks an invariant violation: a child index past num_keys, a
// read of an INVALID right_child, or any other state that indicates a bug
// rather than a runtime condition.
var ErrCorrupt = errors.New("engine: corrupt tree state")

// BTree is the ordered index over u32 keys mapping to Rows, backed by pager.
type BTree struct {
	pager *pager.Pager
}

// Open wraps an already-open pager, initializing page 0 as an empty leaf
// root if the file is brand new.
func Open(p *pager.Pager) (*BTree, error) {
	t := &BTree{pager: p}
	if p.NumPages() == 0 {
		root, err := p.Get(rootPageNo)
		if err != nil {
			return nil, fmt.Errorf("engine: initialize root: %w", err)
		}
		InitializeLeaf(root)
		SetIsRoot(root, true)
		p.Touch(rootPageNo)
	}
	return t, nil
}

// MaxKey descends to the rightmost leaf reachable from pageNo and returns
// its last key. For a leaf, that is simply its own last key.
func (t *BTree) MaxKey(pageNo uint32) (uint32, error) {
	page, err := t.pager.Get(pageNo)
	if err != nil {
		return 0, err
	}
	if Type(page) == NodeTypeLeaf {
		n := LeafNumCells(page)
		if n == 0 {
			return 0, fmt.Errorf("%w: max key of empty leaf %d", ErrCorrupt, pageNo)
		}
		return LeafKey(page, n-1), nil
	}
	right := InternalRightChild(page)
	if right == InvalidPage {
		return 0, fmt.Errorf("%w: internal node %d has no right child", ErrCorrupt, pageNo)
	}
	return t.MaxKey(right)
}

// Find descends from the root and returns a cursor on the leaf where key
// would live: pointing at the matching cell if key is present, else at the
// insertion point.
func (t *BTree) Find(key uint32) (*Cursor, error) {
	return t.findFrom(rootPageNo, key)
}

func (t *BTree) findFrom(pageNo uint32, key uint32) (*Cursor, error) {
	page, err := t.pager.Get(pageNo)
	if err != nil {
		return nil, err
	}
	if Type(page) == NodeTypeLeaf {
		return &Cursor{PageNo: pageNo, CellNo: leafFindCellNo(page, key)}, nil
	}
	child := internalFindChild(page, key)
	return t.findFrom(child, key)
}

// leafFindCellNo binary searches a leaf for key, returning either its index
// or the index of the first key greater than it.
func leafFindCellNo(page *pager.Page, key uint32) uint32 {
	lo, hi := uint32(0), LeafNumCells(page)
	for lo < hi {
		mid := lo + (hi-lo)/2
		if LeafKey(page, mid) == key {
			return mid
		}
		if LeafKey(page, mid) < key {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// internalFindChild finds the smallest separator key >= key and returns the
// page number of the subtree rooted there (the right child if key exceeds
// every separator).
func internalFindChild(page *pager.Page, key uint32) uint32 {
	numKeys := InternalNumKeys(page)
	lo, hi := uint32(0), numKeys
	for lo < hi {
		mid := lo + (hi-lo)/2
		if key <= InternalKey(page, mid) {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return InternalChild(page, lo)
}

// ScanStart returns a cursor positioned at the globally minimum key.
func (t *BTree) ScanStart() (*Cursor, error) {
	cur, err := t.Find(0)
	if err != nil {
		return nil, err
	}
	page, err := t.pager.Get(cur.PageNo)
	if err != nil {
		return nil, err
	}
	cur.EndOfTable = LeafNumCells(page) == 0
	return cur, nil
}

// Advance moves the cursor to the next cell in ascending key order,
// following sibling pointers across leaf boundaries.
func (t *BTree) Advance(cur *Cursor) error {
	page, err := t.pager.Get(cur.PageNo)
	if err != nil {
		return err
	}
	cur.CellNo++
	if cur.CellNo < LeafNumCells(page) {
		return nil
	}
	next := LeafNextLeaf(page)
	if next == noSibling {
		cur.EndOfTable = true
		return nil
	}
	cur.PageNo = next
	cur.CellNo = 0
	return nil
}

// RowAt returns the row the cursor currently addresses. The caller must
// ensure the cursor is not EndOfTable.
func (t *BTree) RowAt(cur *Cursor) (Row, error) {
	page, err := t.pager.Get(cur.PageNo)
	if err != nil {
		return Row{}, err
	}
	return DeserializeRow(LeafValue(page, cur.CellNo))
}

// Insert adds key/row to the tree, splitting and promoting as needed.
// Returns ErrDuplicateKey if key is already present.
func (t *BTree) Insert(key uint32, row Row) error {
	cur, err := t.Find(key)
	if err != nil {
		return err
	}
	leaf, err := t.pager.Get(cur.PageNo)
	if err != nil {
		return err
	}
	if cur.CellNo < LeafNumCells(leaf) && LeafKey(leaf, cur.CellNo) == key {
		return ErrDuplicateKey
	}
	return t.leafInsert(cur, key, row)
}

func (t *BTree) leafInsert(cur *Cursor, key uint32, row Row) error {
	leaf, err := t.pager.Get(cur.PageNo)
	if err != nil {
		return err
	}
	numCells := LeafNumCells(leaf)
	if numCells >= uint32(LeafMaxCells) {
		return t.leafSplitAndInsert(cur, key, row)
	}
	for i := numCells; i > cur.CellNo; i-- {
		CopyLeafCell(leaf, i-1, leaf, i)
	}
	if err := WriteLeafCell(leaf, cur.CellNo, key, row); err != nil {
		return err
	}
	SetLeafNumCells(leaf, numCells+1)
	t.pager.Touch(cur.PageNo)
	return nil
}

func (t *BTree) leafSplitAndInsert(cur *Cursor, key uint32, row Row) error {
	oldPageNo := cur.PageNo
	oldPage, err := t.pager.Get(oldPageNo)
	if err != nil {
		return err
	}
	wasRoot := IsRoot(oldPage)
	oldMax := LeafKey(oldPage, LeafNumCells(oldPage)-1)

	newPageNo := t.pager.NewPageNum()
	newPage, err := t.pager.Get(newPageNo)
	if err != nil {
		return err
	}
	InitializeLeaf(newPage)
	SetParent(newPage, Parent(oldPage))
	SetLeafNextLeaf(newPage, LeafNextLeaf(oldPage))
	SetLeafNextLeaf(oldPage, newPageNo)

	left := uint32(LeafLeftSplitCount)
	total := uint32(LeafMaxCells) + 1
	for i := int(total) - 1; i >= 0; i-- {
		idx := uint32(i)
		dest := oldPage
		destIdx := idx
		if idx >= left {
			dest = newPage
			destIdx = idx - left
		}
		switch {
		case idx == cur.CellNo:
			if err := WriteLeafCell(dest, destIdx, key, row); err != nil {
				return err
			}
		case idx > cur.CellNo:
			CopyLeafCell(oldPage, idx-1, dest, destIdx)
		default:
			CopyLeafCell(oldPage, idx, dest, destIdx)
		}
	}
	SetLeafNumCells(oldPage, left)
	SetLeafNumCells(newPage, uint32(LeafRightSplitCount))
	t.pager.Touch(oldPageNo)
	t.pager.Touch(newPageNo)

	if wasRoot {
		return t.createNewRoot(newPageNo)
	}

	newMax, err := t.MaxKey(oldPageNo)
	if err != nil {
		return err
	}
	parentPageNo := Parent(oldPage)
	if err := t.updateParentKey(parentPageNo, oldMax, newMax); err != nil {
		return err
	}
	return t.internalInsert(parentPageNo, newPageNo)
}

// createNewRoot grows the tree by one level: the current root's contents
// move verbatim into a freshly allocated left child, and the root page is
// reinitialized as an internal node with that left child and rightChildPage
// as its two children.
func (t *BTree) createNewRoot(rightChildPage uint32) error {
	oldRoot, err := t.pager.Get(rootPageNo)
	if err != nil {
		return err
	}
	leftPageNo := t.pager.NewPageNum()
	leftPage, err := t.pager.Get(leftPageNo)
	if err != nil {
		return err
	}
	leftPage.Data = oldRoot.Data
	SetIsRoot(leftPage, false)
	if Type(leftPage) == NodeTypeInternal {
		numKeys := InternalNumKeys(leftPage)
		for i := uint32(0); i <= numKeys; i++ {
			childPageNo := InternalChild(leftPage, i)
			childPage, err := t.pager.Get(childPageNo)
			if err != nil {
				return err
			}
			SetParent(childPage, leftPageNo)
			t.pager.Touch(childPageNo)
		}
	}
	t.pager.Touch(leftPageNo)

	leftMax, err := t.MaxKey(leftPageNo)
	if err != nil {
		return err
	}

	InitializeInternal(oldRoot)
	SetIsRoot(oldRoot, true)
	SetInternalNumKeys(oldRoot, 1)
	SetInternalChild(oldRoot, 0, leftPageNo)
	SetInternalKey(oldRoot, 0, leftMax)
	SetInternalRightChild(oldRoot, rightChildPage)
	t.pager.Touch(rootPageNo)

	SetParent(leftPage, rootPageNo)
	t.pager.Touch(leftPageNo)

	rightPage, err := t.pager.Get(rightChildPage)
	if err != nil {
		return err
	}
	SetParent(rightPage, rootPageNo)
	t.pager.Touch(rightChildPage)

	return nil
}

// findChildSlot returns the index in [0, NumKeys] at which a child with max
// key childMax should be inserted among the parent's existing separators.
func findChildSlot(parent *pager.Page, childMax uint32) uint32 {
	numKeys := InternalNumKeys(parent)
	i := uint32(0)
	for i < numKeys && InternalKey(parent, i) < childMax {
		i++
	}
	return i
}

// internalInsert links childPage into parentPage as the subtree holding keys
// up to (and including) childMax, splitting the parent first if it is full.
func (t *BTree) internalInsert(parentPageNo uint32, childPageNo uint32) error {
	parent, err := t.pager.Get(parentPageNo)
	if err != nil {
		return err
	}
	childMax, err := t.MaxKey(childPageNo)
	if err != nil {
		return err
	}

	numKeys := InternalNumKeys(parent)
	if numKeys >= InternalMaxKeys {
		return t.internalSplitAndInsert(parentPageNo, childPageNo)
	}

	child, err := t.pager.Get(childPageNo)
	if err != nil {
		return err
	}

	rightChild := InternalRightChild(parent)
	if rightChild == InvalidPage {
		SetInternalRightChild(parent, childPageNo)
		SetParent(child, parentPageNo)
		t.pager.Touch(parentPageNo)
		t.pager.Touch(childPageNo)
		return nil
	}

	rightMax, err := t.MaxKey(rightChild)
	if err != nil {
		return err
	}
	if childMax > rightMax {
		SetInternalChild(parent, numKeys, rightChild)
		SetInternalKey(parent, numKeys, rightMax)
		SetInternalRightChild(parent, childPageNo)
	} else {
		i := findChildSlot(parent, childMax)
		for j := numKeys; j > i; j-- {
			CopyInternalCell(parent, j-1, j)
		}
		SetInternalChild(parent, i, childPageNo)
		SetInternalKey(parent, i, childMax)
	}
	SetInternalNumKeys(parent, numKeys+1)
	SetParent(child, parentPageNo)
	t.pager.Touch(parentPageNo)
	t.pager.Touch(childPageNo)
	return nil
}

// updateParentKey rewrites the separator cell equal to oldKey to newKey. If
// no such cell exists (the grandparent doesn't hold this subtree's previous
// max as a separator — it may be the right_child side), it is a documented
// no-op rather than an error.
func (t *BTree) updateParentKey(parentPageNo uint32, oldKey, newKey uint32) error {
	parent, err := t.pager.Get(parentPageNo)
	if err != nil {
		return err
	}
	numKeys := InternalNumKeys(parent)
	for i := uint32(0); i < numKeys; i++ {
		if InternalKey(parent, i) == oldKey {
			SetInternalKey(parent, i, newKey)
			t.pager.Touch(parentPageNo)
			return nil
		}
	}
	return nil
}

// internalSplitAndInsert is the hardest path: the parent is full, so it is
// split into two internal nodes (growing the tree by a level if parent was
// the root) before incomingChild is linked in.
func (t *BTree) internalSplitAndInsert(parentPageNo uint32, incomingChildPageNo uint32) error {
	oldMax, err := t.MaxKey(parentPageNo)
	if err != nil {
		return err
	}
	parentPage, err := t.pager.Get(parentPageNo)
	if err != nil {
		return err
	}
	wasRoot := IsRoot(parentPage)

	newPageNo := t.pager.NewPageNum()
	newPage, err := t.pager.Get(newPageNo)
	if err != nil {
		return err
	}
	InitializeInternal(newPage)
	t.pager.Touch(newPageNo)

	actualParentPageNo := parentPageNo
	if wasRoot {
		if err := t.createNewRoot(newPageNo); err != nil {
			return err
		}
		root, err := t.pager.Get(rootPageNo)
		if err != nil {
			return err
		}
		actualParentPageNo = InternalChild(root, 0)
	}

	parentPage, err = t.pager.Get(actualParentPageNo)
	if err != nil {
		return err
	}

	rightChild := InternalRightChild(parentPage)
	if err := t.internalInsert(newPageNo, rightChild); err != nil {
		return err
	}

	for i := InternalMaxKeys - 1; i > InternalMaxKeys/2; i-- {
		parentPage, err = t.pager.Get(actualParentPageNo)
		if err != nil {
			return err
		}
		moved := InternalChild(parentPage, uint32(i))
		if err := t.internalInsert(newPageNo, moved); err != nil {
			return err
		}
		parentPage, err = t.pager.Get(actualParentPageNo)
		if err != nil {
			return err
		}
		SetInternalNumKeys(parentPage, InternalNumKeys(parentPage)-1)
		t.pager.Touch(actualParentPageNo)
	}

	parentPage, err = t.pager.Get(actualParentPageNo)
	if err != nil {
		return err
	}
	numKeys := InternalNumKeys(parentPage)
	if numKeys == 0 {
		return fmt.Errorf("%w: internal split left parent %d with no keys", ErrCorrupt, actualParentPageNo)
	}
	newRightChild := InternalChild(parentPage, numKeys-1)
	SetInternalRightChild(parentPage, newRightChild)
	SetInternalNumKeys(parentPage, numKeys-1)
	t.pager.Touch(actualParentPageNo)

	incomingMax, err := t.MaxKey(incomingChildPageNo)
	if err != nil {
		return err
	}
	parentMax, err := t.MaxKey(actualParentPageNo)
	if err != nil {
		return err
	}
	destination := newPageNo
	if incomingMax < parentMax {
		destination = actualParentPageNo
	}
	if err := t.internalInsert(destination, incomingChildPageNo); err != nil {
		return err
	}

	parentPage, err = t.pager.Get(actualParentPageNo)
	if err != nil {
		return err
	}
	grandparentPageNo := Parent(parentPage)
	newParentMax, err := t.MaxKey(actualParentPageNo)
	if err != nil {
		return err
	}
	if err := t.updateParentKey(grandparentPageNo, oldMax, newParentMax); err != nil {
		return err
	}

	if !wasRoot {
		if err := t.internalInsert(grandparentPageNo, newPageNo); err != nil {
			return err
		}
		newNodePage, err := t.pager.Get(newPageNo)
		if err != nil {
			return err
		}
		SetParent(newNodePage, grandparentPageNo)
		t.pager.Touch(newPageNo)
	}
	return nil
}
