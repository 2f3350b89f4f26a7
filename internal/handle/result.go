package handle

import pgproto3 "github.com/jackc/pgproto3/v2"

// Status mirrors a PGresult's ExecStatus, trimmed to the values this driver's
// core distinguishes.
type Status int

const (
	StatusTuplesOk Status = iota
	StatusCommandOk
	StatusEmptyQuery
	StatusCopyIn
	StatusCopyOut
	StatusCopyBoth
	StatusFatalError
)

func (s Status) IsCopy() bool {
	return s == StatusCopyIn || s == StatusCopyOut || s == StatusCopyBoth
}

func (s Status) String() string {
	switch s {
	case StatusTuplesOk:
		return "TuplesOk"
	case StatusCommandOk:
		return "CommandOk"
	case StatusEmptyQuery:
		return "EmptyQuery"
	case StatusCopyIn:
		return "CopyIn"
	case StatusCopyOut:
		return "CopyOut"
	case StatusCopyBoth:
		return "CopyBoth"
	case StatusFatalError:
		return "FatalError"
	default:
		return "Unknown"
	}
}

// FieldDescription is the column descriptor carried by a TuplesOk Result.
type FieldDescription struct {
	Name     string
	TypeOID  uint32
	Format   int16
	Size     int16
	Modifier uint32
}

// Result is one PGresult-equivalent: one server response group for one
// statement. It is immutable once construction (message accumulation) in
// the handle has finished.
type Result struct {
	Status           Status
	Fields           []FieldDescription
	rows             [][][]byte
	CommandTuples    *int64
	BinaryTuples     bool
	Err              *pgproto3.ErrorResponse
	CopyColumnFormat []uint16
}

// NFields is the number of result columns.
func (r *Result) NFields() int { return len(r.Fields) }

// NTuples is the number of result rows.
func (r *Result) NTuples() int { return len(r.rows) }

// Cell returns the raw bytes for (row, col), and whether the cell is NULL
// (ok=true, data=nil) vs out of range (ok=false).
func (r *Result) Cell(row, col int) (data []byte, ok bool) {
	if row < 0 || row >= len(r.rows) {
		return nil, false
	}
	if col < 0 || col >= len(r.rows[row]) {
		return nil, false
	}
	return r.rows[row][col], true
}

func (r *Result) appendRow(row [][]byte) {
	r.rows = append(r.rows, row)
}
