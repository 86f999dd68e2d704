package pager

import "github.com/joeandaverde/tinyquery/internal/tqerr"

const (
	fileHeaderSize = 100
	minPageSize    = 512
	maxPageSize    = 65536
)

// fileHeader holds the handful of the 100-byte database header's fields
// this engine reads (spec.md §2): page size at bytes 16-17, page count
// at bytes 28-31. Every other byte must be present but is ignored.
type fileHeader struct {
	PageSize  int
	PageCount int
}

// parseFileHeader validates and decodes the 100-byte database header.
func parseFileHeader(buf []byte) (fileHeader, error) {
	if len(buf) < fileHeaderSize {
		return fileHeader{}, tqerr.Newf(tqerr.HeaderInvalid, "file header truncated: got %d bytes, want %d", len(buf), fileHeaderSize)
	}

	rawPageSize := int(buf[16])<<8 | int(buf[17])
	// 1 is SQLite's special case for a 65536-byte page size, which
	// doesn't fit in the header's 16-bit field.
	pageSize := rawPageSize
	if rawPageSize == 1 {
		pageSize = 65536
	}
	if pageSize < minPageSize || pageSize > maxPageSize || pageSize&(pageSize-1) != 0 {
		return fileHeader{}, tqerr.Newf(tqerr.HeaderInvalid, "page size %d is not a power of two in [%d, %d]", pageSize, minPageSize, maxPageSize)
	}

	pageCount := int(buf[28])<<24 | int(buf[29])<<16 | int(buf[30])<<8 | int(buf[31])
	if pageCount < 0 {
		return fileHeader{}, tqerr.Newf(tqerr.HeaderInvalid, "negative page count %d", pageCount)
	}

	return fileHeader{PageSize: pageSize, PageCount: pageCount}, nil
}
