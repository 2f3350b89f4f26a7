package arraytype

import (
	"bytes"
	"regexp"
)

// needsQuote mirrors psycopg3's TextListAdapter._re_needs_quote exactly: the
// empty string, the literal word NULL (any case), or any char PostgreSQL's
// array output routine quotes for (braces, comma, quote, backslash,
// whitespace).
var needsQuote = regexp.MustCompile(`(?i)^$|["{},\\\s]|^null$`)

var escapeChars = regexp.MustCompile(`["\\]`)

// FormatText renders a rectangular nested list as PostgreSQL's array text
// literal, returning the array OID to bind it with (falling back to
// text[]'s OID if the element OID isn't registered).
func FormatText(value []any, dump ElementDumper, resolveOID OIDResolver) (data []byte, oid uint32, err error) {
	var buf bytes.Buffer
	var elemOID uint32
	var haveOID bool

	var walk func(list []any) error
	walk = func(list []any) error {
		if len(list) == 0 {
			buf.WriteString("{}")
			return nil
		}
		buf.WriteByte('{')
		for i, item := range list {
			if i > 0 {
				buf.WriteByte(',')
			}
			switch v := item.(type) {
			case nil:
				buf.WriteString("NULL")
			case []any:
				if err := walk(v); err != nil {
					return err
				}
			default:
				b, eoid, err := dump(item, Text)
				if err != nil {
					return err
				}
				if b == nil {
					buf.WriteString("NULL")
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
				if needsQuote.Match(b) {
					buf.WriteByte('"')
					buf.Write(escapeChars.ReplaceAllFunc(b, func(m []byte) []byte {
						return append([]byte{'\\'}, m...)
					}))
					buf.WriteByte('"')
				} else {
					buf.Write(b)
				}
			}
		}
		buf.WriteByte('}')
		return nil
	}

	if err := walk(value); err != nil {
		return nil, 0, err
	}

	arrayOID := resolveOID(elemOID)
	return buf.Bytes(), arrayOID, nil
}

// tokenRe recognizes one array grammar token: a bracket, a quoted string, or
// an unquoted run of non-special characters, each optionally followed by a
// comma separator (consumed but not part of the match group).
var tokenRe = regexp.MustCompile(`(?i)([{}]|"(?:[^"\\]|\\.)*"|[^"{},\\]+),?`)

var unescapeRe = regexp.MustCompile(`\\(.)`)

// ParseText parses a PostgreSQL array text literal into a rectangular nested
// list, loading scalar elements with load.
//
// Nested lists are built through *[]any placeholders while parsing (a
// sub-list may still grow via append after its parent has already recorded
// a reference to it), then dereferenced into plain []any in one final pass.
func ParseText(data []byte, load ElementLoader) ([]any, error) {
	var stack []*[]any
	var root *[]any

	for _, m := range tokenRe.FindAllSubmatch(data, -1) {
		tok := m[1]
		switch {
		case len(tok) == 1 && tok[0] == '{':
			l := new([]any)
			if root == nil {
				root = l
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				*parent = append(*parent, l)
			}
			stack = append(stack, l)
		case len(tok) == 1 && tok[0] == '}':
			if len(stack) == 0 {
				return nil, ErrMalformedArray
			}
			stack = stack[:len(stack)-1]
		default:
			if len(stack) == 0 {
				return nil, ErrMalformedArray
			}
			var v any
			if bytes.Equal(tok, []byte("NULL")) {
				v = nil
			} else {
				field := tok
				if len(field) > 0 && field[0] == '"' {
					field = unescapeRe.ReplaceAll(field[1:len(field)-1], []byte("$1"))
				}
				loaded, err := load(field)
				if err != nil {
					return nil, err
				}
				v = loaded
			}
			top := stack[len(stack)-1]
			*top = append(*top, v)
		}
	}

	if root == nil {
		return nil, ErrMalformedArray
	}
	return derefNestedLists(*root), nil
}

func derefNestedLists(items []any) []any {
	out := make([]any, len(items))
	for i, it := range items {
		if p, ok := it.(*[]any); ok {
			out[i] = derefNestedLists(*p)
		} else {
			out[i] = it
		}
	}
	return out
}
