// Package pager maps page numbers to mutable in-memory 4096-byte buffers and
// persists them to a single backing file on demand. It has no notion of what
// a page contains; that belongs to the engine package.
package pager

import (
	"errors"
	"fmt"
	"io"
	"os"
)

const (
	// PageSize is the fixed size, in bytes, of every page in the file.
	PageSize = 4096
	// MaxPages bounds how many pages a single file may ever hold.
	MaxPages = 100
)

// ErrCorruptFile is returned by Open when the file length is not a multiple
// of PageSize.
var ErrCorruptFile = errors.New("pager: file length is not a multiple of page size")

// ErrPageOutOfRange is returned by Get when the requested page number would
// exceed MaxPages.
var ErrPageOutOfRange = errors.New("pager: page number out of range")

// Page is a single 4096-byte buffer owned by one pager slot.
type Page struct {
	Data   [PageSize]byte
	PageNo uint32
	dirty  bool
}

// Pager owns the backing file descriptor and the slot array of loaded pages.
type Pager struct {
	file     *os.File
	numPages uint32
	slots    [MaxPages]*Page
}

// Open opens (creating if necessary) the file at path and computes the
// number of pages already present. It does not eagerly load any page.
func Open(path string) (*Pager, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, fmt.Errorf("pager: open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("pager: stat %s: %w", path, err)
	}
	length := info.Size()
	if length%PageSize != 0 {
		f.Close()
		return nil, fmt.Errorf("%w: length %d", ErrCorruptFile, length)
	}
	return &Pager{
		file:     f,
		numPages: uint32(length / PageSize),
	}, nil
}

// NumPages reports how many pages the file currently spans.
func (p *Pager) NumPages() uint32 { return p.numPages }

// NewPageNum returns the next unused page number. The page is not allocated
// until Get is called with that number.
func (p *Pager) NewPageNum() uint32 { return p.numPages }

// Get returns the in-memory buffer for pageNo, loading it from disk on first
// access. Pages beyond the current end of file are returned zero-filled and
// grow the file's logical length; they are not written until Flush or Close.
func (p *Pager) Get(pageNo uint32) (*Page, error) {
	if pageNo >= MaxPages {
		return nil, fmt.Errorf("%w: %d (max %d)", ErrPageOutOfRange, pageNo, MaxPages)
	}
	if p.slots[pageNo] != nil {
		return p.slots[pageNo], nil
	}
	page := &Page{PageNo: pageNo}
	if pageNo < p.numPages {
		off := int64(pageNo) * PageSize
		if _, err := p.file.ReadAt(page.Data[:], off); err != nil && err != io.EOF {
			return nil, fmt.Errorf("pager: read page %d: %w", pageNo, err)
		}
	}
	if pageNo >= p.numPages {
		p.numPages = pageNo + 1
	}
	p.slots[pageNo] = page
	return page, nil
}

// Touch marks a loaded page dirty; Flush clears the mark. The engine
// package's BTree methods call this after writing into a page's Data (the
// node codec setters themselves do not).
func (p *Pager) Touch(pageNo uint32) {
	if s := p.slots[pageNo]; s != nil {
		s.dirty = true
	}
}

// Flush writes the full page back to disk, fatal-in-spirit if the slot was
// never loaded (that indicates an engine bug, not a runtime condition).
func (p *Pager) Flush(pageNo uint32) error {
	page := p.slots[pageNo]
	if page == nil {
		return fmt.Errorf("pager: flush of empty slot %d", pageNo)
	}
	off := int64(pageNo) * PageSize
	if _, err := p.file.WriteAt(page.Data[:], off); err != nil {
		return fmt.Errorf("pager: write page %d: %w", pageNo, err)
	}
	page.dirty = false
	return nil
}

// Close flushes every occupied slot below NumPages and closes the file.
func (p *Pager) Close() error {
	for i := uint32(0); i < p.numPages; i++ {
		if p.slots[i] == nil {
			continue
		}
		if err := p.Flush(i); err != nil {
			return err
		}
	}
	if err := p.file.Sync(); err != nil {
		return fmt.Errorf("pager: sync: %w", err)
	}
	return p.file.Close()
}
