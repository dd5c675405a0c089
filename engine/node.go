package engine

import (
	"encoding/binary"

	"rowtree/pager"
)

// Type reports whether a page holds a leaf or internal node.
func Type(p *pager.Page) byte { return p.Data[typeOffset] }

func setType(p *pager.Page, t byte) { p.Data[typeOffset] = t }

// IsRoot reports the page's is_root flag.
func IsRoot(p *pager.Page) bool { return p.Data[isRootOffset] != 0 }

// SetIsRoot sets the page's is_root flag.
func SetIsRoot(p *pager.Page, v bool) {
	if v {
		p.Data[isRootOffset] = 1
	} else {
		p.Data[isRootOffset] = 0
	}
}

// Parent returns the page number of the node's parent.
func Parent(p *pager.Page) uint32 {
	return binary.LittleEndian.Uint32(p.Data[parentOffset : parentOffset+4])
}

// SetParent sets the page number of the node's parent.
func SetParent(p *pager.Page, pageNo uint32) {
	binary.LittleEndian.PutUint32(p.Data[parentOffset:parentOffset+4], pageNo)
}

// --- leaf accessors ---

// LeafNumCells returns the number of cells stored in a leaf page.
func LeafNumCells(p *pager.Page) uint32 {
	return binary.LittleEndian.Uint32(p.Data[leafNumCellsOffset : leafNumCellsOffset+4])
}

// SetLeafNumCells sets the cell count of a leaf page.
func SetLeafNumCells(p *pager.Page, n uint32) {
	binary.LittleEndian.PutUint32(p.Data[leafNumCellsOffset:leafNumCellsOffset+4], n)
}

// LeafNextLeaf returns the page number of the next leaf in key order, or the
// sentinel noSibling if this is the last leaf.
func LeafNextLeaf(p *pager.Page) uint32 {
	return binary.LittleEndian.Uint32(p.Data[leafNextLeafOffset : leafNextLeafOffset+4])
}

// SetLeafNextLeaf sets the next-leaf sibling pointer.
func SetLeafNextLeaf(p *pager.Page, pageNo uint32) {
	binary.LittleEndian.PutUint32(p.Data[leafNextLeafOffset:leafNextLeafOffset+4], pageNo)
}

func leafCellOffset(cellNo uint32) int {
	return leafHeaderSize + int(cellNo)*leafCellSize
}

// LeafKey returns the key stored in cell cellNo of a leaf page.
func LeafKey(p *pager.Page, cellNo uint32) uint32 {
	off := leafCellOffset(cellNo) + leafCellKeyOff
	return binary.LittleEndian.Uint32(p.Data[off : off+4])
}

// SetLeafKey sets the key stored in cell cellNo of a leaf page.
func SetLeafKey(p *pager.Page, cellNo uint32, key uint32) {
	off := leafCellOffset(cellNo) + leafCellKeyOff
	binary.LittleEndian.PutUint32(p.Data[off:off+4], key)
}

// LeafValue returns the raw RowSize-byte slice for cell cellNo of a leaf
// page. Callers pass this straight to DeserializeRow/SerializeRow.
func LeafValue(p *pager.Page, cellNo uint32) []byte {
	off := leafCellOffset(cellNo) + leafCellValOff
	return p.Data[off : off+leafValueSize]
}

// CopyLeafCell copies the whole (key, value) cell at srcIdx in src to dstIdx
// in dst, used when shifting or redistributing cells during insert/split.
func CopyLeafCell(src *pager.Page, srcIdx uint32, dst *pager.Page, dstIdx uint32) {
	srcOff := leafCellOffset(srcIdx)
	dstOff := leafCellOffset(dstIdx)
	copy(dst.Data[dstOff:dstOff+leafCellSize], src.Data[srcOff:srcOff+leafCellSize])
}

// WriteLeafCell writes key and row into cell cellNo of a leaf page.
func WriteLeafCell(p *pager.Page, cellNo uint32, key uint32, row Row) error {
	SetLeafKey(p, cellNo, key)
	return SerializeRow(row, LeafValue(p, cellNo))
}

// InitializeLeaf zeros the page and writes an empty leaf header.
func InitializeLeaf(p *pager.Page) {
	for i := range p.Data {
		p.Data[i] = 0
	}
	setType(p, NodeTypeLeaf)
	SetIsRoot(p, false)
	SetLeafNumCells(p, 0)
	SetLeafNextLeaf(p, noSibling)
}

// --- internal accessors ---

// InternalNumKeys returns the number of separator keys stored in an internal
// page (one less than its number of children).
func InternalNumKeys(p *pager.Page) uint32 {
	return binary.LittleEndian.Uint32(p.Data[internalNumKeysOffset : internalNumKeysOffset+4])
}

// SetInternalNumKeys sets the key count of an internal page.
func SetInternalNumKeys(p *pager.Page, n uint32) {
	binary.LittleEndian.PutUint32(p.Data[internalNumKeysOffset:internalNumKeysOffset+4], n)
}

// InternalRightChild returns the page number of the subtree holding keys
// greater than every separator key in this node, or InvalidPage if unset.
func InternalRightChild(p *pager.Page) uint32 {
	return binary.LittleEndian.Uint32(p.Data[internalRightChildOffset : internalRightChildOffset+4])
}

// SetInternalRightChild sets the right-child pointer of an internal page.
func SetInternalRightChild(p *pager.Page, pageNo uint32) {
	binary.LittleEndian.PutUint32(p.Data[internalRightChildOffset:internalRightChildOffset+4], pageNo)
}

func internalCellOffset(i uint32) int {
	return internalHeaderSize + int(i)*internalCellSize
}

// InternalKey returns separator key i (i must be < NumKeys).
func InternalKey(p *pager.Page, i uint32) uint32 {
	off := internalCellOffset(i) + internalCellKeyOff
	return binary.LittleEndian.Uint32(p.Data[off : off+4])
}

// SetInternalKey sets the separator key of cell slot i. It does not check i
// against NumKeys, so a caller may fill slot NumKeys before raising the count.
func SetInternalKey(p *pager.Page, i uint32, key uint32) {
	off := internalCellOffset(i) + internalCellKeyOff
	binary.LittleEndian.PutUint32(p.Data[off:off+4], key)
}

func internalChildAt(p *pager.Page, i uint32) uint32 {
	off := internalCellOffset(i) + internalCellChldOff
	return binary.LittleEndian.Uint32(p.Data[off : off+4])
}

func setInternalChildAt(p *pager.Page, i uint32, pageNo uint32) {
	off := internalCellOffset(i) + internalCellChldOff
	binary.LittleEndian.PutUint32(p.Data[off:off+4], pageNo)
}

// InternalChild returns the page number of child i. When i equals NumKeys,
// it returns the right child.
func InternalChild(p *pager.Page, i uint32) uint32 {
	if i == InternalNumKeys(p) {
		return InternalRightChild(p)
	}
	return internalChildAt(p, i)
}

// SetInternalChild sets the child page of cell slot i. It does not check i
// against NumKeys, so a caller may fill slot NumKeys before raising the count;
// setting the right child goes through SetInternalRightChild instead.
func SetInternalChild(p *pager.Page, i uint32, pageNo uint32) {
	setInternalChildAt(p, i, pageNo)
}

// CopyInternalCell copies the whole (child, key) cell at srcIdx to dstIdx.
// Neither index is checked against NumKeys; internalInsert shifts cells up
// into slot NumKeys before raising the count.
func CopyInternalCell(p *pager.Page, srcIdx, dstIdx uint32) {
	srcOff := internalCellOffset(srcIdx)
	dstOff := internalCellOffset(dstIdx)
	copy(p.Data[dstOff:dstOff+internalCellSize], p.Data[srcOff:srcOff+internalCellSize])
}

// InitializeInternal zeros the page and writes an empty internal header.
func InitializeInternal(p *pager.Page) {
	for i := range p.Data {
		p.Data[i] = 0
	}
	setType(p, NodeTypeInternal)
	SetIsRoot(p, false)
	SetInternalNumKeys(p, 0)
	SetInternalRightChild(p, InvalidPage)
}
