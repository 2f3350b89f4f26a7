// Package arraytype implements the recursive array codec (spec component H):
// a text parser/printer following PostgreSQL's quoted array grammar and a
// binary packer/unpacker for its length-prefixed layout. It is shared by the
// transformer (internal/adapt) for any OID whose base element type has a
// registered scalar codec.
package arraytype

import "errors"

// Format selects which of PostgreSQL's two wire encodings a value or column
// uses.
type Format int16

const (
	Text   Format = 0
	Binary Format = 1
)

// ErrRaggedArray is returned when sibling sub-lists at the same nesting
// depth have different lengths.
var ErrRaggedArray = errors.New("arraytype: nested lists have inconsistent lengths")

// ErrMixedElementType is returned when two non-nil elements of the same
// array produce different OIDs from the scalar dumper.
var ErrMixedElementType = errors.New("arraytype: array contains different element types")

// ErrEmptyInnerList is returned by the binary writer: PostgreSQL's binary
// array layout cannot represent an empty list nested inside another list.
var ErrEmptyInnerList = errors.New("arraytype: nested lists cannot contain an empty list")

// ErrMalformedArray is returned by the text reader for bracket mismatches or
// fields appearing outside any list.
var ErrMalformedArray = errors.New("arraytype: malformed array literal")

// ElementDumper converts one scalar element to wire bytes and its OID, for
// the given format. A nil returned along with a nil error represents SQL
// NULL.
type ElementDumper func(value any, format Format) (data []byte, oid uint32, err error)

// ElementLoader converts wire bytes for one scalar element back to a value.
type ElementLoader func(data []byte) (any, error)

// OIDResolver maps a base element OID to its corresponding array OID,
// falling back to text[]'s OID (TextArrayOID) when the element OID is
// unregistered or zero.
type OIDResolver func(elementOID uint32) (arrayOID uint32)

// Well-known OIDs needed as a fallback target; the full builtin OID table is
// outside this package's scope (see internal/adapt).
const (
	TextOID      uint32 = 25
	TextArrayOID uint32 = 1009
)
