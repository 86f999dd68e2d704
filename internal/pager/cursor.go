package pager

import "github.com/joeandaverde/tinyquery/internal/tqerr"

// maxDepth bounds the explicit frame stack a Cursor carries. SQLite's own
// b-trees are shallow (a few levels holds billions of rows); 20 is the
// same bound the original reference implementation uses.
const maxDepth = 20

// Entry is a decoded leaf cell: a rowid key paired with its record payload.
type Entry struct {
	Key     int64
	Payload []byte
}

// frame tracks a page in the traversal and the next cell index to visit
// on it. For an interior page, nextCell == CellCount() means "descend
// into the right child next"; nextCell > CellCount() means the right
// child has already been visited and this frame is done.
type frame struct {
	page     int
	nextCell int
}

// Cursor performs an in-order traversal of a table b-tree rooted at a
// given page, yielding leaf entries in ascending key order. It holds an
// explicit bounded stack of (page, next cell index) frames rather than
// back-pointers in the page structures themselves, so pages stay pure,
// borrowed views. Entry payloads are borrowed from the memory map, never
// copied; iteration is not allocation-free, though: every Next re-reads
// its page through Pager.Page, which allocates a new *Page and debug log
// fields on each call. Grounded on tinydb's
// internal/storage/cursor.go for the cursor/pager collaboration, and on
// spec.md §4.4's frame-stack algorithm, itself derived from the original
// Rust reference's EntryIter (tinydb's own cursor recurses through a
// mutable b-tree and has no read-only counterpart to adapt).
type Cursor struct {
	pager *Pager
	stack []frame
}

// NewCursor opens a cursor over the table b-tree rooted at rootPage.
func NewCursor(p *Pager, rootPage int) (*Cursor, error) {
	if _, err := p.Page(rootPage); err != nil {
		return nil, err
	}
	return &Cursor{
		pager: p,
		stack: []frame{{page: rootPage, nextCell: 0}},
	}, nil
}

// Next advances the cursor and returns the next leaf entry in ascending
// key order. ok is false once the traversal is exhausted.
func (c *Cursor) Next() (Entry, bool, error) {
	for len(c.stack) > 0 {
		top := &c.stack[len(c.stack)-1]

		page, err := c.pager.Page(top.page)
		if err != nil {
			return Entry{}, false, err
		}

		if top.nextCell < page.CellCount() {
			offset, err := page.CellOffset(top.nextCell)
			if err != nil {
				return Entry{}, false, err
			}
			cell, err := page.ParseCell(offset, c.pager.PageSize())
			if err != nil {
				return Entry{}, false, err
			}
			top.nextCell++

			if page.Header.Type == PageTypeInteriorTable {
				if len(c.stack) >= maxDepth {
					return Entry{}, false, tqerr.Newf(tqerr.PageCorrupt, "b-tree exceeds maximum depth of %d", maxDepth)
				}
				c.stack = append(c.stack, frame{page: int(cell.LeftChild), nextCell: 0})
				continue
			}

			return Entry{Key: cell.Key, Payload: cell.Payload}, true, nil
		}

		if page.Header.Type == PageTypeInteriorTable && top.nextCell == page.CellCount() {
			top.nextCell++
			if len(c.stack) >= maxDepth {
				return Entry{}, false, tqerr.Newf(tqerr.PageCorrupt, "b-tree exceeds maximum depth of %d", maxDepth)
			}
			c.stack = append(c.stack, frame{page: int(page.Header.RightChild), nextCell: 0})
			continue
		}

		// This frame (leaf exhausted, or interior whose right child was
		// already visited) is done; pop and let the loop re-check the
		// parent, cascading pops until one has remaining cells.
		c.stack = c.stack[:len(c.stack)-1]
	}

	return Entry{}, false, nil
}
