package engine

// Cursor is an ephemeral locator into the tree, produced by Find or
// ScanStart and valid only for the duration of one logical operation: if the
// tree mutates after a cursor is produced, the cursor must not be reused.
type Cursor struct {
	PageNo     uint32
	CellNo     uint32
	EndOfTable bool
}
