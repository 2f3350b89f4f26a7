// Package pgxproto is a non-blocking PostgreSQL protocol driver. Its core
// mirrors libpq's asynchronous API (PQconnectPoll/PQsendQuery/
// PQconsumeInput/PQgetResult): every blocking point is reached only through
// a Waiter (Blocking or Cooperative) driving a Generator, never implicitly.
package pgxproto

import (
	"fmt"

	pgproto3 "github.com/jackc/pgproto3/v2"
	errors "golang.org/x/xerrors"
)

// Sentinel errors a caller can match with errors.Is. They mirror psycopg3's
// exception taxonomy (Error/InterfaceError/DatabaseError/ProgrammingError/
// DataError/NotSupportedError), trimmed to what this driver's core
// distinguishes.
var (
	// ErrInterfaceClosed is returned by any operation attempted on a cursor
	// or connection that has already been closed.
	ErrInterfaceClosed = errors.New("pgxproto: interface is closed")

	// ErrProgramming is returned for driver misuse: calling an operation
	// out of sequence, binding the wrong parameter count, or re-entering a
	// single-shot Copy.
	ErrProgramming = errors.New("pgxproto: programming error")

	// ErrDataError wraps a value that could not be converted to or from
	// its wire representation.
	ErrDataError = errors.New("pgxproto: data error")

	// ErrBadCopyFileFormat is returned when a COPY OUT text/binary stream
	// is malformed (e.g. a binary stream missing its header, or a row with
	// the wrong field count).
	ErrBadCopyFileFormat = errors.New("pgxproto: bad copy file format")

	// ErrQueryCanceled is returned when the server reports SQLSTATE 57014.
	ErrQueryCanceled = errors.New("pgxproto: query canceled")

	// ErrInternal marks a violated invariant in the driver itself, never
	// in caller usage or server behavior.
	ErrInternal = errors.New("pgxproto: internal error")

	// ErrNotSupported is returned for operations this driver intentionally
	// does not implement.
	ErrNotSupported = errors.New("pgxproto: not supported")
)

// PgError represents one ErrorResponse reported by the server. See
// https://www.postgresql.org/docs/current/protocol-error-fields.html.
type PgError struct {
	Severity         string
	Code             string
	Message          string
	Detail           string
	Hint             string
	Position         int32
	InternalPosition int32
	InternalQuery    string
	Where            string
	SchemaName       string
	TableName        string
	ColumnName       string
	DataTypeName     string
	ConstraintName   string
	File             string
	Line             int32
	Routine          string
}

func (pe *PgError) Error() string {
	return fmt.Sprintf("%s: %s (SQLSTATE %s)", pe.Severity, pe.Message, pe.Code)
}

// queryCanceledSQLState is SQLSTATE 57014, assigned to a statement canceled
// by the server (statement_timeout, pg_cancel_backend, etc).
const queryCanceledSQLState = "57014"

// Is lets errors.Is(pgErr, ErrQueryCanceled) succeed without the caller
// special-casing the SQLSTATE string.
func (pe *PgError) Is(target error) bool {
	return target == ErrQueryCanceled && pe.Code == queryCanceledSQLState
}

func newPgError(m *pgproto3.ErrorResponse) *PgError {
	return &PgError{
		Severity:         m.Severity,
		Code:             m.Code,
		Message:          m.Message,
		Detail:           m.Detail,
		Hint:             m.Hint,
		Position:         m.Position,
		InternalPosition: m.InternalPosition,
		InternalQuery:    m.InternalQuery,
		Where:            m.Where,
		SchemaName:       m.SchemaName,
		TableName:        m.TableName,
		ColumnName:       m.ColumnName,
		DataTypeName:     m.DataTypeName,
		ConstraintName:   m.ConstraintName,
		File:             m.File,
		Line:             m.Line,
		Routine:          m.Routine,
	}
}

// linkedError connects err to a sentinel so errors.Is(wrapped, sentinel)
// succeeds while Error() still reports err's own message. Grounded on the
// teacher's pgconn/errors.go linkedError, generalized to wrap any sentinel
// instead of only chaining two already-constructed errors.
type linkedError struct {
	err      error
	sentinel error
}

func wrapSentinel(err error, sentinel error) error {
	if err == nil {
		return nil
	}
	return &linkedError{err: err, sentinel: sentinel}
}

func (le *linkedError) Error() string { return le.err.Error() }

func (le *linkedError) Is(target error) bool {
	return target == le.sentinel || errors.Is(le.err, target)
}

func (le *linkedError) As(target interface{}) bool {
	return errors.As(le.err, target)
}

func (le *linkedError) Unwrap() error { return le.err }
