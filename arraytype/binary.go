package arraytype

import "encoding/binary"

// FormatBinary packs a rectangular, non-empty-inner-list nested list into
// PostgreSQL's binary array layout: a 12-byte head (ndims, hasnull,
// elem_oid), ndims (dim_len, lower=1) pairs, then each element in row-major
// order as int32(len)++bytes with -1 for NULL.
func FormatBinary(value []any, dump ElementDumper, resolveOID OIDResolver) (data []byte, oid uint32, err error) {
	if len(value) == 0 {
		head := make([]byte, 12)
		binary.BigEndian.PutUint32(head[8:], TextOID)
		return head, TextArrayOID, nil
	}

	var dims []int
	cur := value
	for {
		dims = append(dims, len(cur))
		if len(cur) == 0 {
			return nil, 0, ErrEmptyInnerList
		}
		next, ok := cur[0].([]any)
		if !ok {
			break
		}
		cur = next
	}

	var elemOID uint32
	haveOID := false
	var elems [][]byte // nil entry means NULL
	hasNull := false

	var walk func(list []any, depth int) error
	walk = func(list []any, depth int) error {
		if len(list) != dims[depth] {
			return ErrRaggedArray
		}
		if depth == len(dims)-1 {
			for _, item := range list {
				if item == nil {
					hasNull = true
					elems = append(elems, nil)
					continue
				}
				if _, isList := item.([]any); isList {
					return ErrRaggedArray
				}
				b, eoid, err := dump(item, Binary)
				if err != nil {
					return err
				}
				if b == nil {
					hasNull = true
					elems = append(elems, nil)
					continue
				}
				if haveOID {
					if eoid != elemOID {
						return ErrMixedElementType
					}
				} else {
					elemOID = eoid
					haveOID = true
				}
				elems = append(elems, b)
			}
			return nil
		}
		for _, item := range list {
			sub, ok := item.([]any)
			if !ok {
				return ErrRaggedArray
			}
			if len(sub) == 0 {
				return ErrEmptyInnerList
			}
			if err := walk(sub, depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(value, 0); err != nil {
		return nil, 0, err
	}

	if !haveOID {
		elemOID = TextOID
	}

	head := make([]byte, 12)
	binary.BigEndian.PutUint32(head[0:], uint32(len(dims)))
	if hasNull {
		binary.BigEndian.PutUint32(head[4:], 1)
	}
	binary.BigEndian.PutUint32(head[8:], elemOID)

	buf := append([]byte{}, head...)
	for _, d := range dims {
		dimBuf := make([]byte, 8)
		binary.BigEndian.PutUint32(dimBuf[0:], uint32(d))
		binary.BigEndian.PutUint32(dimBuf[4:], 1)
		buf = append(buf, dimBuf...)
	}
	for _, e := range elems {
		if e == nil {
			buf = append(buf, 0xff, 0xff, 0xff, 0xff)
			continue
		}
		lenBuf := make([]byte, 4)
		binary.BigEndian.PutUint32(lenBuf, uint32(len(e)))
		buf = append(buf, lenBuf...)
		buf = append(buf, e...)
	}

	return buf, resolveOID(elemOID), nil
}

// ParseBinary unpacks PostgreSQL's binary array layout into a nested
// rectangular list of shape dims.
func ParseBinary(data []byte, load func(oid uint32, data []byte) (any, error)) ([]any, error) {
	if len(data) < 12 {
		return nil, ErrMalformedArray
	}
	ndims := int(binary.BigEndian.Uint32(data[0:]))
	oid := binary.BigEndian.Uint32(data[8:])
	if ndims == 0 {
		return []any{}, nil
	}

	p := 12
	dims := make([]int, ndims)
	for i := 0; i < ndims; i++ {
		if len(data) < p+8 {
			return nil, ErrMalformedArray
		}
		dims[i] = int(binary.BigEndian.Uint32(data[p:]))
		p += 8
	}

	consume := func() (any, error) {
		if len(data) < p+4 {
			return nil, ErrMalformedArray
		}
		size := int32(binary.BigEndian.Uint32(data[p:]))
		p += 4
		if size == -1 {
			return nil, nil
		}
		if len(data) < p+int(size) {
			return nil, ErrMalformedArray
		}
		b := data[p : p+int(size)]
		p += int(size)
		return load(oid, b)
	}

	var assemble func(depth int) ([]any, error)
	assemble = func(depth int) ([]any, error) {
		if depth == len(dims) {
			v, err := consume()
			if err != nil {
				return nil, err
			}
			return []any{v}, nil // sentinel path unused; see below
		}
		out := make([]any, dims[depth])
		for i := range out {
			if depth == len(dims)-1 {
				v, err := consume()
				if err != nil {
					return nil, err
				}
				out[i] = v
			} else {
				sub, err := assemble(depth + 1)
				if err != nil {
					return nil, err
				}
				out[i] = sub
			}
		}
		return out, nil
	}

	return assemble(0)
}
