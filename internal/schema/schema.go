// Package schema reads the sqlite_schema table (page 1) and indexes
// table definitions by name, grounded on tinydb's
// internal/storage/record.go NewMasterTableRecord and the original
// reference implementation's vm.rs get_tbl_schema.
package schema

import (
	"github.com/armon/go-radix"
	"github.com/sirupsen/logrus"

	"github.com/joeandaverde/tinyquery/internal/pager"
	"github.com/joeandaverde/tinyquery/internal/record"
	"github.com/joeandaverde/tinyquery/internal/tqerr"
)

// Object describes one row of sqlite_schema: a table, index, view, or
// trigger definition.
type Object struct {
	Type     string
	Name     string
	TblName  string
	RootPage int
	SQL      string
}

// Index is a name-indexed view over sqlite_schema, built once per
// database open.
type Index struct {
	byName *radix.Tree
	count  int
}

// Read walks the b-tree rooted at page 1 and builds an Index over every
// schema object found there.
func Read(p *pager.Pager, log *logrus.Logger) (*Index, error) {
	if log == nil {
		log = logrus.New()
	}

	c, err := pager.NewCursor(p, 1)
	if err != nil {
		return nil, err
	}

	tree := radix.New()
	count := 0
	for {
		entry, ok, err := c.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}

		obj, err := decodeObject(entry.Payload)
		if err != nil {
			return nil, err
		}

		log.WithFields(logrus.Fields{
			"type":     obj.Type,
			"name":     obj.Name,
			"rootPage": obj.RootPage,
		}).Debug("indexed schema object")

		tree.Insert(obj.Name, obj)
		count++
	}

	return &Index{byName: tree, count: count}, nil
}

// Count returns the total number of entries in page 1's b-tree,
// regardless of object type (tables, indexes, views, triggers).
func (idx *Index) Count() int {
	return idx.count
}

// Find looks up a schema object by name, returning a SchemaError if no
// object with that name exists.
func (idx *Index) Find(name string) (Object, error) {
	v, ok := idx.byName.Get(name)
	if !ok {
		return Object{}, tqerr.Newf(tqerr.SchemaError, "no such table: %s", name)
	}
	return v.(Object), nil
}

// Tables returns every schema object (tables, indexes, views, triggers
// alike), in name order. Despite the name, it is not filtered by type:
// .tables prints every tbl_name found in sqlite_schema (spec.md §6),
// matching the original reference's unconditional schema walk.
func (idx *Index) Tables() []Object {
	var out []Object
	idx.byName.Walk(func(name string, v interface{}) bool {
		out = append(out, v.(Object))
		return false
	})
	return out
}

// decodeObject decodes one sqlite_schema row: (type, name, tbl_name,
// rootpage, sql).
func decodeObject(payload []byte) (Object, error) {
	types, bodyOffset, err := record.DecodeHeader(payload)
	if err != nil {
		return Object{}, err
	}
	values, err := record.DecodeValues(types, payload[bodyOffset:])
	if err != nil {
		return Object{}, err
	}
	if len(values) != 5 {
		return Object{}, tqerr.Newf(tqerr.SchemaError, "sqlite_schema row has %d columns, want 5", len(values))
	}

	obj := Object{
		Type:    values[0].Str,
		Name:    values[1].Str,
		TblName: values[2].Str,
		SQL:     values[4].Str,
	}
	if values[3].Kind == record.KindInteger {
		obj.RootPage = int(values[3].Int)
	}
	return obj, nil
}
