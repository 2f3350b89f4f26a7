package adapt

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

// pgTimestampFormat matches libpq's default text output for timestamp
// columns (no zone); timestamptz additionally appends a zone offset.
const pgTimestampFormat = "2006-01-02 15:04:05.999999"
const pgDateFormat = "2006-01-02"

func init() {
	registerBool()
	registerInts()
	registerFloats()
	registerText()
	registerBytea()
	registerDateTime()
	registerJSON()
	registerNumeric()
	registerUUID()
}

func registerBool() {
	global.RegisterDumper(bool(false), Text, func(v any, _ Format) ([]byte, uint32, error) {
		if v.(bool) {
			return []byte("t"), BoolOID, nil
		}
		return []byte("f"), BoolOID, nil
	})
	global.RegisterDumper(bool(false), Binary, func(v any, _ Format) ([]byte, uint32, error) {
		if v.(bool) {
			return []byte{1}, BoolOID, nil
		}
		return []byte{0}, BoolOID, nil
	})
	global.RegisterLoader(BoolOID, Text, func(data []byte, _ Format) (any, error) {
		return len(data) > 0 && (data[0] == 't' || data[0] == 'T'), nil
	})
	global.RegisterLoader(BoolOID, Binary, func(data []byte, _ Format) (any, error) {
		if len(data) != 1 {
			return nil, fmt.Errorf("adapt: invalid bool binary length %d", len(data))
		}
		return data[0] != 0, nil
	})
}

func registerInts() {
	registerInt := func(sample any, oid uint32, width int, toInt64 func(any) int64, fromInt64 func(int64) any) {
		global.RegisterDumper(sample, Text, func(v any, _ Format) ([]byte, uint32, error) {
			return []byte(strconv.FormatInt(toInt64(v), 10)), oid, nil
		})
		global.RegisterDumper(sample, Binary, func(v any, _ Format) ([]byte, uint32, error) {
			buf := make([]byte, width)
			switch width {
			case 2:
				binary.BigEndian.PutUint16(buf, uint16(toInt64(v)))
			case 4:
				binary.BigEndian.PutUint32(buf, uint32(toInt64(v)))
			case 8:
				binary.BigEndian.PutUint64(buf, uint64(toInt64(v)))
			}
			return buf, oid, nil
		})
		global.RegisterLoader(oid, Text, func(data []byte, _ Format) (any, error) {
			n, err := strconv.ParseInt(string(data), 10, 64)
			if err != nil {
				return nil, err
			}
			return fromInt64(n), nil
		})
		global.RegisterLoader(oid, Binary, func(data []byte, _ Format) (any, error) {
			if len(data) != width {
				return nil, fmt.Errorf("adapt: invalid int binary length %d", len(data))
			}
			var n int64
			switch width {
			case 2:
				n = int64(int16(binary.BigEndian.Uint16(data)))
			case 4:
				n = int64(int32(binary.BigEndian.Uint32(data)))
			case 8:
				n = int64(binary.BigEndian.Uint64(data))
			}
			return fromInt64(n), nil
		})
	}

	registerInt(int16(0), Int2OID, 2, func(v any) int64 { return int64(v.(int16)) }, func(n int64) any { return int16(n) })
	registerInt(int32(0), Int4OID, 4, func(v any) int64 { return int64(v.(int32)) }, func(n int64) any { return int32(n) })
	registerInt(int64(0), Int8OID, 8, func(v any) int64 { return v.(int64) }, func(n int64) any { return n })
	registerInt(int(0), Int8OID, 8, func(v any) int64 { return int64(v.(int)) }, func(n int64) any { return int(n) })

	global.RegisterDumper(uint32(0), Text, func(v any, _ Format) ([]byte, uint32, error) {
		return []byte(strconv.FormatUint(uint64(v.(uint32)), 10)), OIDOID, nil
	})
	global.RegisterDumper(uint32(0), Binary, func(v any, _ Format) ([]byte, uint32, error) {
		buf := make([]byte, 4)
		binary.BigEndian.PutUint32(buf, v.(uint32))
		return buf, OIDOID, nil
	})
	global.RegisterLoader(OIDOID, Text, func(data []byte, _ Format) (any, error) {
		n, err := strconv.ParseUint(string(data), 10, 32)
		return uint32(n), err
	})
	global.RegisterLoader(OIDOID, Binary, func(data []byte, _ Format) (any, error) {
		if len(data) != 4 {
			return nil, fmt.Errorf("adapt: invalid oid binary length %d", len(data))
		}
		return binary.BigEndian.Uint32(data), nil
	})
}

func registerFloats() {
	global.RegisterDumper(float32(0), Text, func(v any, _ Format) ([]byte, uint32, error) {
		return []byte(strconv.FormatFloat(float64(v.(float32)), 'g', -1, 32)), Float4OID, nil
	})
	global.RegisterDumper(float32(0), Binary, func(v any, _ Format) ([]byte, uint32, error) {
		buf := make([]byte, 4)
		binary.BigEndian.PutUint32(buf, math.Float32bits(v.(float32)))
		return buf, Float4OID, nil
	})
	global.RegisterLoader(Float4OID, Text, func(data []byte, _ Format) (any, error) {
		f, err := strconv.ParseFloat(string(data), 32)
		return float32(f), err
	})
	global.RegisterLoader(Float4OID, Binary, func(data []byte, _ Format) (any, error) {
		if len(data) != 4 {
			return nil, fmt.Errorf("adapt: invalid float4 binary length %d", len(data))
		}
		return math.Float32frombits(binary.BigEndian.Uint32(data)), nil
	})

	global.RegisterDumper(float64(0), Text, func(v any, _ Format) ([]byte, uint32, error) {
		return []byte(strconv.FormatFloat(v.(float64), 'g', -1, 64)), Float8OID, nil
	})
	global.RegisterDumper(float64(0), Binary, func(v any, _ Format) ([]byte, uint32, error) {
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, math.Float64bits(v.(float64)))
		return buf, Float8OID, nil
	})
	global.RegisterLoader(Float8OID, Text, func(data []byte, _ Format) (any, error) {
		return strconv.ParseFloat(string(data), 64)
	})
	global.RegisterLoader(Float8OID, Binary, func(data []byte, _ Format) (any, error) {
		if len(data) != 8 {
			return nil, fmt.Errorf("adapt: invalid float8 binary length %d", len(data))
		}
		return math.Float64frombits(binary.BigEndian.Uint64(data)), nil
	})
}

func registerText() {
	dump := func(v any, _ Format) ([]byte, uint32, error) {
		return []byte(v.(string)), TextOID, nil
	}
	global.RegisterDumper(string(""), Text, dump)
	global.RegisterDumper(string(""), Binary, dump)
	load := func(data []byte, _ Format) (any, error) {
		return string(data), nil
	}
	global.RegisterLoader(TextOID, Text, load)
	global.RegisterLoader(TextOID, Binary, load)
	global.RegisterLoader(VarcharOID, Text, load)
	global.RegisterLoader(VarcharOID, Binary, load)
}

func registerBytea() {
	global.RegisterDumper([]byte(nil), Text, func(v any, _ Format) ([]byte, uint32, error) {
		b := v.([]byte)
		out := make([]byte, 0, 2+2*len(b))
		out = append(out, '\\', 'x')
		for _, c := range b {
			out = append(out, hexDigits[c>>4], hexDigits[c&0xf])
		}
		return out, ByteaOID, nil
	})
	global.RegisterDumper([]byte(nil), Binary, func(v any, _ Format) ([]byte, uint32, error) {
		return v.([]byte), ByteaOID, nil
	})
	global.RegisterLoader(ByteaOID, Binary, func(data []byte, _ Format) (any, error) {
		return append([]byte(nil), data...), nil
	})
	global.RegisterLoader(ByteaOID, Text, func(data []byte, _ Format) (any, error) {
		if len(data) >= 2 && data[0] == '\\' && data[1] == 'x' {
			hexPart := data[2:]
			out := make([]byte, len(hexPart)/2)
			for i := range out {
				hi := unhex(hexPart[2*i])
				lo := unhex(hexPart[2*i+1])
				out[i] = hi<<4 | lo
			}
			return out, nil
		}
		return nil, fmt.Errorf("adapt: unsupported bytea text encoding (expected hex format)")
	})
}

const hexDigits = "0123456789abcdef"

func unhex(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	}
	return 0
}

func registerDateTime() {
	global.RegisterDumper(time.Time{}, Text, func(v any, _ Format) ([]byte, uint32, error) {
		t := v.(time.Time)
		return []byte(t.UTC().Format(pgTimestampFormat)), TimestampOID, nil
	})
	global.RegisterLoader(DateOID, Text, func(data []byte, _ Format) (any, error) {
		return time.Parse(pgDateFormat, string(data))
	})
	global.RegisterLoader(TimestampOID, Text, func(data []byte, _ Format) (any, error) {
		return time.Parse(pgTimestampFormat, string(data))
	})
	global.RegisterLoader(TimestamptzOID, Text, func(data []byte, _ Format) (any, error) {
		t, err := time.Parse(pgTimestampFormat+"Z07", string(data))
		if err != nil {
			return time.Parse(pgTimestampFormat+"-07", string(data))
		}
		return t, nil
	})
}

func registerJSON() {
	global.RegisterDumper(json.RawMessage(nil), Text, func(v any, _ Format) ([]byte, uint32, error) {
		return []byte(v.(json.RawMessage)), JSONOID, nil
	})
	global.RegisterDumper(json.RawMessage(nil), Binary, func(v any, _ Format) ([]byte, uint32, error) {
		return []byte(v.(json.RawMessage)), JSONOID, nil
	})
	global.RegisterLoader(JSONOID, Text, func(data []byte, _ Format) (any, error) {
		return json.RawMessage(append([]byte(nil), data...)), nil
	})
}

func registerNumeric() {
	global.RegisterDumper(decimal.Decimal{}, Text, func(v any, _ Format) ([]byte, uint32, error) {
		return []byte(v.(decimal.Decimal).String()), NumericOID, nil
	})
	global.RegisterLoader(NumericOID, Text, func(data []byte, _ Format) (any, error) {
		return decimal.NewFromString(string(data))
	})
}

func registerUUID() {
	global.RegisterDumper(uuid.UUID{}, Text, func(v any, _ Format) ([]byte, uint32, error) {
		return []byte(v.(uuid.UUID).String()), UUIDOID, nil
	})
	global.RegisterDumper(uuid.UUID{}, Binary, func(v any, _ Format) ([]byte, uint32, error) {
		u := v.(uuid.UUID)
		return append([]byte(nil), u[:]...), UUIDOID, nil
	})
	global.RegisterLoader(UUIDOID, Text, func(data []byte, _ Format) (any, error) {
		return uuid.FromString(string(data))
	})
	global.RegisterLoader(UUIDOID, Binary, func(data []byte, _ Format) (any, error) {
		return uuid.FromBytes(data)
	})
}
