// Package adapt implements the value transformer (spec component D): the
// bidirectional registry translating Go values to and from PostgreSQL wire
// bytes, keyed by (Go type, format) for dumping and by (OID, format) for
// loading. It mirrors psycopg3's adapt.py AdaptersMap/Transformer split
// between a process-wide registry and a per-connection override layer.
package adapt

import (
	"fmt"
	"reflect"

	"github.com/jackc/pgxproto/arraytype"
	"github.com/jackc/pgxproto/internal/handle"
)

// Format selects which of PostgreSQL's two wire encodings to use.
type Format = arraytype.Format

const (
	Text   = arraytype.Text
	Binary = arraytype.Binary
)

// Dumper converts one Go value to wire bytes plus the OID it was encoded as.
// A nil data with a nil error represents SQL NULL.
type Dumper func(value any, format Format) (data []byte, oid uint32, err error)

// Loader converts wire bytes for one column back to a Go value.
type Loader func(data []byte, format Format) (any, error)

type dumperKey struct {
	typ    reflect.Type
	format Format
}

type loaderKey struct {
	oid    uint32
	format Format
}

// Registry is a (dumper, loader) table, usable either as the process-wide
// default registry or as a connection-local override layer.
type Registry struct {
	dumpers map[dumperKey]Dumper
	loaders map[loaderKey]Loader
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		dumpers: make(map[dumperKey]Dumper),
		loaders: make(map[loaderKey]Loader),
	}
}

// RegisterDumper associates the dynamic type of sample with a Dumper for the
// given format.
func (r *Registry) RegisterDumper(sample any, format Format, d Dumper) {
	r.dumpers[dumperKey{typ: reflect.TypeOf(sample), format: format}] = d
}

// RegisterLoader associates oid/format with a Loader.
func (r *Registry) RegisterLoader(oid uint32, format Format, l Loader) {
	r.loaders[loaderKey{oid: oid, format: format}] = l
}

// global is the process-wide default registry, populated by init with the
// builtin scalar and array codecs.
var global = NewRegistry()

// Transformer binds a connection's local registry over the global one: a
// local registration for a type or OID always wins, matching psycopg3's
// Transformer precedence over its process-wide AdaptersMap.
type Transformer struct {
	local *Registry
}

// NewTransformer returns a Transformer with an empty local override layer.
func NewTransformer() *Transformer {
	return &Transformer{local: NewRegistry()}
}

// Local returns the connection-local registry for RegisterDumper/RegisterLoader
// overrides.
func (t *Transformer) Local() *Registry { return t.local }

// Dump encodes value for the wire, preferring a local dumper over the global
// one for value's dynamic type. nil dumps as SQL NULL with TextOID (psycopg3
// defaults an untyped NULL to its string adapter's OID).
func (t *Transformer) Dump(value any, format Format) (data []byte, oid uint32, err error) {
	if value == nil {
		return nil, TextOID, nil
	}
	if list, ok := value.([]any); ok {
		return t.dumpArray(list, format)
	}
	key := dumperKey{typ: reflect.TypeOf(value), format: format}
	if d, ok := t.local.dumpers[key]; ok {
		return d(value, format)
	}
	if d, ok := global.dumpers[key]; ok {
		return d(value, format)
	}
	return nil, 0, fmt.Errorf("adapt: no dumper registered for %T (format %d)", value, format)
}

// Load decodes wire bytes for column oid/format, preferring a local loader.
// A nil data always loads as nil regardless of oid, matching SQL NULL.
func (t *Transformer) Load(oid uint32, format Format, data []byte) (any, error) {
	if data == nil {
		return nil, nil
	}
	if elemOID, ok := elementOIDOf(oid); ok {
		return t.loadArray(elemOID, format, data)
	}
	key := loaderKey{oid: oid, format: format}
	if l, ok := t.local.loaders[key]; ok {
		return l(data, format)
	}
	if l, ok := global.loaders[key]; ok {
		return l(data, format)
	}
	// Unregistered types load as their raw text/binary bytes, so callers can
	// still see a value instead of an error (psycopg3's fallback to bytes).
	return append([]byte(nil), data...), nil
}

// LoadRow decodes every cell of row r in result res using fields' OIDs and
// formats.
func (t *Transformer) LoadRow(res *handle.Result, row int) ([]any, error) {
	out := make([]any, res.NFields())
	for col, f := range res.Fields {
		data, ok := res.Cell(row, col)
		if !ok {
			return nil, fmt.Errorf("adapt: row %d out of range", row)
		}
		v, err := t.Load(f.TypeOID, Format(f.Format), data)
		if err != nil {
			return nil, fmt.Errorf("adapt: column %q: %w", f.Name, err)
		}
		out[col] = v
	}
	return out, nil
}

func (t *Transformer) dumpArray(list []any, format Format) ([]byte, uint32, error) {
	elemDump := func(v any, f arraytype.Format) ([]byte, uint32, error) {
		return t.Dump(v, f)
	}
	if format == Binary {
		return arraytype.FormatBinary(list, elemDump, arrayOIDOf)
	}
	return arraytype.FormatText(list, elemDump, arrayOIDOf)
}

func (t *Transformer) loadArray(elemOID uint32, format Format, data []byte) ([]any, error) {
	if format == Binary {
		return arraytype.ParseBinary(data, func(oid uint32, b []byte) (any, error) {
			return t.Load(oid, Binary, b)
		})
	}
	return arraytype.ParseText(data, func(b []byte) (any, error) {
		return t.Load(elemOID, Text, b)
	})
}
