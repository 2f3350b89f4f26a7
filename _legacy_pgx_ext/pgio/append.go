package pgio

import "encoding/binary"

// AppendByte appends b to buf and returns the extended buffer.
func AppendByte(buf []byte, b byte) []byte {
	return append(buf, b)
}

// AppendUint16 appends n to buf in PostgreSQL wire format (network byte order)
// and returns the extended buffer.
func AppendUint16(buf []byte, n uint16) []byte {
	wp := len(buf)
	buf = append(buf, 0, 0)
	binary.BigEndian.PutUint16(buf[wp:], n)
	return buf
}

// AppendInt16 appends n to buf in PostgreSQL wire format and returns the
// extended buffer.
func AppendInt16(buf []byte, n int16) []byte {
	return AppendUint16(buf, uint16(n))
}

// AppendUint32 appends n to buf in PostgreSQL wire format and returns the
// extended buffer.
func AppendUint32(buf []byte, n uint32) []byte {
	wp := len(buf)
	buf = append(buf, 0, 0, 0, 0)
	binary.BigEndian.PutUint32(buf[wp:], n)
	return buf
}

// AppendInt32 appends n to buf in PostgreSQL wire format and returns the
// extended buffer.
func AppendInt32(buf []byte, n int32) []byte {
	return AppendUint32(buf, uint32(n))
}

// AppendUint64 appends n to buf in PostgreSQL wire format and returns the
// extended buffer.
func AppendUint64(buf []byte, n uint64) []byte {
	wp := len(buf)
	buf = append(buf, 0, 0, 0, 0, 0, 0, 0, 0)
	binary.BigEndian.PutUint64(buf[wp:], n)
	return buf
}

// AppendInt64 appends n to buf in PostgreSQL wire format and returns the
// extended buffer.
func AppendInt64(buf []byte, n int64) []byte {
	return AppendUint64(buf, uint64(n))
}

// AppendCString appends s followed by a null byte to buf.
func AppendCString(buf []byte, s string) []byte {
	buf = append(buf, s...)
	return append(buf, 0)
}

// SetUint32 writes n into the first 4 bytes of buf in place. buf must have
// length >= 4. Used to patch a previously reserved length field.
func SetUint32(buf []byte, n uint32) {
	binary.BigEndian.PutUint32(buf, n)
}

// SetInt32 writes n into the first 4 bytes of buf in place.
func SetInt32(buf []byte, n int32) {
	SetUint32(buf, uint32(n))
}

// GetUint32 reads the first 4 bytes of buf as a big-endian uint32.
func GetUint32(buf []byte) uint32 {
	return binary.BigEndian.Uint32(buf)
}

// GetUint16 reads the first 2 bytes of buf as a big-endian uint16.
func GetUint16(buf []byte) uint16 {
	return binary.BigEndian.Uint16(buf)
}
