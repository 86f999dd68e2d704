// Package pager implements the page and b-tree layer described in
// spec.md §4.2-§4.4: a read-only memory map of a SQLite-format database
// file, page parsing, and in-order b-tree cursor traversal.
package pager

import (
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/sirupsen/logrus"

	"github.com/joeandaverde/tinyquery/internal/tqerr"
)

// Pager memory-maps a database file read-only and serves pages by number.
// Grounded on tinydb's internal/storage/pager.go Open/Read shape, stripped
// of the write path, WAL, and page cache: there is no mutation to cache
// against, and the OS page cache already serves repeated mmap reads.
//
// data holds the whole file as one mapping for the Pager's lifetime.
// Page borrows a sub-slice of it per page rather than copying, matching
// spec.md §3's non-owning-borrow data model: a Page, Cell, or Entry's
// Payload stays valid only as long as the Pager that produced it is
// still open.
type Pager struct {
	file      *os.File
	data      mmap.MMap
	pageSize  int
	pageCount int
	log       *logrus.Entry
}

// Open memory-maps the file at path and validates its database header.
func Open(path string, log *logrus.Logger) (*Pager, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, tqerr.New(tqerr.IO, err)
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, tqerr.New(tqerr.IO, err)
	}

	if len(data) < fileHeaderSize {
		data.Unmap()
		f.Close()
		return nil, tqerr.Newf(tqerr.PageCorrupt, "file is too small to hold a database header")
	}

	fh, err := parseFileHeader(data[:fileHeaderSize])
	if err != nil {
		data.Unmap()
		f.Close()
		return nil, err
	}

	entry := log.WithFields(logrus.Fields{
		"component": "pager",
		"path":      path,
	})
	entry.WithFields(logrus.Fields{
		"page_size":  fh.PageSize,
		"page_count": fh.PageCount,
	}).Debug("opened database")

	return &Pager{
		file:      f,
		data:      data,
		pageSize:  fh.PageSize,
		pageCount: fh.PageCount,
		log:       entry,
	}, nil
}

// Close releases the memory map. Pages and cells read from this pager must
// not be used after Close.
func (p *Pager) Close() error {
	if err := p.data.Unmap(); err != nil {
		p.file.Close()
		return tqerr.New(tqerr.IO, err)
	}
	return tqerr.New(tqerr.IO, p.file.Close())
}

// PageSize returns the database's page size in bytes.
func (p *Pager) PageSize() int {
	return p.pageSize
}

// PageCount returns the total number of pages in the database.
func (p *Pager) PageCount() int {
	return p.pageCount
}

// Page parses page n (1-based), borrowing its bytes directly from the
// memory map rather than copying them.
func (p *Pager) Page(n int) (*Page, error) {
	if n < 1 || n > p.pageCount {
		return nil, tqerr.Newf(tqerr.PageCorrupt, "page %d out of bounds [1, %d]", n, p.pageCount)
	}

	offset := int64(n-1) * int64(p.pageSize)
	end := offset + int64(p.pageSize)
	if end > int64(len(p.data)) {
		return nil, tqerr.Newf(tqerr.PageCorrupt, "page %d extends past end of file", n)
	}

	page, err := parsePage(n, p.pageSize, p.data[offset:end])
	if err != nil {
		return nil, err
	}

	p.log.WithFields(logrus.Fields{
		"page":       n,
		"type":       page.Header.Type,
		"cell_count": page.CellCount(),
	}).Debug("read page")

	return page, nil
}
