package adapt

// Builtin OIDs this transformer knows scalar codecs for, plus their array
// counterparts. Values match pg_type.dat and are grounded on the teacher's
// pgtype.pgtype.go OID table.
const (
	BoolOID        uint32 = 16
	ByteaOID       uint32 = 17
	Int8OID        uint32 = 20
	Int2OID        uint32 = 21
	Int4OID        uint32 = 23
	TextOID        uint32 = 25
	OIDOID         uint32 = 26
	JSONOID        uint32 = 114
	Float4OID      uint32 = 700
	Float8OID      uint32 = 701
	VarcharOID     uint32 = 1043
	DateOID        uint32 = 1082
	TimestampOID   uint32 = 1114
	TimestamptzOID uint32 = 1184
	UUIDOID        uint32 = 2950
	NumericOID     uint32 = 1700

	BoolArrayOID        uint32 = 1000
	ByteaArrayOID       uint32 = 1001
	Int2ArrayOID        uint32 = 1005
	Int4ArrayOID        uint32 = 1007
	TextArrayOID        uint32 = 1009
	Int8ArrayOID        uint32 = 1016
	Float4ArrayOID      uint32 = 1021
	Float8ArrayOID      uint32 = 1022
	OIDArrayOID         uint32 = 1028
	VarcharArrayOID     uint32 = 1015
	JSONArrayOID        uint32 = 199
	DateArrayOID        uint32 = 1182
	TimestampArrayOID   uint32 = 1115
	TimestamptzArrayOID uint32 = 1185
	UUIDArrayOID        uint32 = 2951
	NumericArrayOID     uint32 = 1231
)

// arrayOIDOf maps a scalar element OID to its array OID, falling back to
// TextArrayOID (so an array of an unregistered scalar still dumps as
// text[], matching psycopg3's adapt.py fallback behavior).
func arrayOIDOf(elemOID uint32) uint32 {
	switch elemOID {
	case BoolOID:
		return BoolArrayOID
	case ByteaOID:
		return ByteaArrayOID
	case Int2OID:
		return Int2ArrayOID
	case Int4OID:
		return Int4ArrayOID
	case Int8OID:
		return Int8ArrayOID
	case TextOID:
		return TextArrayOID
	case OIDOID:
		return OIDArrayOID
	case Float4OID:
		return Float4ArrayOID
	case Float8OID:
		return Float8ArrayOID
	case VarcharOID:
		return VarcharArrayOID
	case JSONOID:
		return JSONArrayOID
	case DateOID:
		return DateArrayOID
	case TimestampOID:
		return TimestampArrayOID
	case TimestamptzOID:
		return TimestamptzArrayOID
	case UUIDOID:
		return UUIDArrayOID
	case NumericOID:
		return NumericArrayOID
	default:
		return TextArrayOID
	}
}

// elementOIDOf is arrayOIDOf's inverse, used by the array loader to learn
// which scalar loader to dispatch to from an array's own OID.
func elementOIDOf(arrayOID uint32) (uint32, bool) {
	switch arrayOID {
	case BoolArrayOID:
		return BoolOID, true
	case ByteaArrayOID:
		return ByteaOID, true
	case Int2ArrayOID:
		return Int2OID, true
	case Int4ArrayOID:
		return Int4OID, true
	case Int8ArrayOID:
		return Int8OID, true
	case TextArrayOID:
		return TextOID, true
	case OIDArrayOID:
		return OIDOID, true
	case Float4ArrayOID:
		return Float4OID, true
	case Float8ArrayOID:
		return Float8OID, true
	case VarcharArrayOID:
		return VarcharOID, true
	case JSONArrayOID:
		return JSONOID, true
	case DateArrayOID:
		return DateOID, true
	case TimestampArrayOID:
		return TimestampOID, true
	case TimestamptzArrayOID:
		return TimestamptzOID, true
	case UUIDArrayOID:
		return UUIDOID, true
	case NumericArrayOID:
		return NumericOID, true
	default:
		return 0, false
	}
}
