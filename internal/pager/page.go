package pager

import (
	"fmt"

	"github.com/joeandaverde/tinyquery/internal/tqerr"
	"github.com/joeandaverde/tinyquery/internal/varint"
)

// PageType is the single byte at the start of a b-tree page header that
// identifies its kind (spec.md §2).
type PageType byte

const (
	PageTypeInteriorIndex PageType = 0x02
	PageTypeInteriorTable PageType = 0x05
	PageTypeLeafIndex     PageType = 0x0a
	PageTypeLeafTable     PageType = 0x0d
)

func (t PageType) String() string {
	switch t {
	case PageTypeInteriorIndex:
		return "interior-index"
	case PageTypeInteriorTable:
		return "interior-table"
	case PageTypeLeafIndex:
		return "leaf-index"
	case PageTypeLeafTable:
		return "leaf-table"
	default:
		return fmt.Sprintf("unknown(0x%02x)", byte(t))
	}
}

func (t PageType) interior() bool {
	return t == PageTypeInteriorIndex || t == PageTypeInteriorTable
}

func headerLength(t PageType) int {
	if t.interior() {
		return 12
	}
	return 8
}

// PageHeader is the b-tree page header (spec.md §2): type byte, a
// freeblock chain head, the cell count, the cell content area's start
// offset, a fragmented-free-byte count, and (interior pages only) the
// right-most child pointer.
type PageHeader struct {
	Type                PageType
	FirstFreeblock      uint16
	CellCount           uint16
	CellContentStart    uint16
	FragmentedFreeBytes byte
	RightChild          uint32
}

// Page is a parsed view over one page's raw bytes. data always holds
// the full, unshifted page-size slice read from the file; for page 1
// the 100-byte file header occupies its first 100 bytes, so the page
// header and cell pointer array are offset by headerOffset, but cell
// pointer VALUES (and thus payload addressing) are relative to data[0]
// regardless -- the file header offset never leaks into cell addressing.
type Page struct {
	Number       int
	Header       PageHeader
	data         []byte
	headerOffset int
	cellPointers []byte
}

func errPageTruncated(number int, detail string) error {
	return tqerr.Newf(tqerr.PageCorrupt, "page %d truncated: %s", number, detail)
}

func errCellTruncated(number int, detail string) error {
	return tqerr.Newf(tqerr.PageCorrupt, "page %d: cell truncated: %s", number, detail)
}

// parsePage decodes the b-tree page header and cell pointer array from
// a page's raw bytes.
func parsePage(number, pageSize int, data []byte) (*Page, error) {
	headerOffset := 0
	if number == 1 {
		headerOffset = fileHeaderSize
	}

	if headerOffset+1 > len(data) {
		return nil, errPageTruncated(number, "missing page type byte")
	}

	pt := PageType(data[headerOffset])
	switch pt {
	case PageTypeInteriorTable, PageTypeLeafTable:
		// supported
	case PageTypeInteriorIndex, PageTypeLeafIndex:
		return nil, tqerr.Newf(tqerr.Unsupported, "page %d is an index b-tree page (type 0x%02x)", number, byte(pt))
	default:
		return nil, tqerr.Newf(tqerr.PageCorrupt, "page %d has unknown page type 0x%02x", number, byte(pt))
	}

	hlen := headerLength(pt)
	if headerOffset+hlen > len(data) {
		return nil, errPageTruncated(number, "header exceeds page bounds")
	}

	h := data[headerOffset:]
	firstFreeblock := be16(h[1:])
	cellCount := be16(h[3:])
	cellContentStart := be16(h[5:])
	fragmentedFreeBytes := h[7]

	header := PageHeader{
		Type:                pt,
		FirstFreeblock:      firstFreeblock,
		CellCount:           cellCount,
		CellContentStart:    cellContentStart,
		FragmentedFreeBytes: fragmentedFreeBytes,
	}
	if pt.interior() {
		header.RightChild = be32(h[8:])
	}

	cellPointerStart := headerOffset + hlen
	cellPointerBytes := int(cellCount) * 2
	if cellPointerStart+cellPointerBytes > len(data) {
		return nil, errPageTruncated(number, "cell pointer array exceeds page bounds")
	}

	return &Page{
		Number:       number,
		Header:       header,
		data:         data,
		headerOffset: headerOffset,
		cellPointers: data[cellPointerStart : cellPointerStart+cellPointerBytes],
	}, nil
}

// CellCount returns the number of cells on this page.
func (p *Page) CellCount() int {
	return int(p.Header.CellCount)
}

// CellOffset returns the byte offset (relative to the page's own start,
// i.e. into data) of the i-th cell pointer.
func (p *Page) CellOffset(i int) (uint16, error) {
	if i < 0 || i >= p.CellCount() {
		return 0, tqerr.Newf(tqerr.PageCorrupt, "page %d: cell index %d out of range [0, %d)", p.Number, i, p.CellCount())
	}
	return be16(p.cellPointers[i*2:]), nil
}

// Cell is a decoded b-tree cell. LeftChild is set only for interior
// table cells and Payload only for leaf table cells; Key is set for both.
type Cell struct {
	LeftChild uint32
	Key       int64
	Payload   []byte
}

// ParseCell decodes the cell at the given page-relative offset.
func (p *Page) ParseCell(offset uint16, pageSize int) (Cell, error) {
	pos := int(offset)
	if pos < 0 || pos >= len(p.data) {
		return Cell{}, errCellTruncated(p.Number, "offset out of page bounds")
	}

	if p.Header.Type == PageTypeInteriorTable {
		if pos+4 > len(p.data) {
			return Cell{}, errCellTruncated(p.Number, "missing left child pointer")
		}
		leftChild := be32(p.data[pos:])
		pos += 4

		key, n, err := varint.Read(p.data[pos:])
		if err != nil {
			return Cell{}, err
		}
		_ = n

		return Cell{LeftChild: leftChild, Key: key}, nil
	}

	payloadLen, n, err := varint.Read(p.data[pos:])
	if err != nil {
		return Cell{}, err
	}
	pos += n

	key, n2, err := varint.Read(p.data[pos:])
	if err != nil {
		return Cell{}, err
	}
	pos += n2

	if payloadLen < 0 {
		return Cell{}, errCellTruncated(p.Number, "negative payload length")
	}
	if pos+int(payloadLen) > len(p.data) {
		return Cell{}, tqerr.Newf(tqerr.Unsupported, "page %d: cell payload overflows page (overflow pages unsupported)", p.Number)
	}

	payload := p.data[pos : pos+int(payloadLen)]
	return Cell{Key: key, Payload: payload}, nil
}

func be16(b []byte) uint16 {
	return uint16(b[0])<<8 | uint16(b[1])
}

func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
