package pgxproto

import (
	"context"
	"fmt"

	"github.com/jackc/pgxproto/internal/adapt"
	"github.com/jackc/pgxproto/internal/handle"
	"github.com/jackc/pgxproto/internal/proto"
	"github.com/jackc/pgxproto/internal/query"
)

// resultSet is one statement's decoded response: a TuplesOk result holds
// every row already loaded through the connection's Transformer, a
// CommandOk/EmptyQuery result holds none. It corresponds to one element of
// psycopg3's Cursor._results.
type resultSet struct {
	status   handle.Status
	fields   []handle.FieldDescription
	rows     [][]any
	rowCount int64
}

// Cursor executes statements and iterates their results, mirroring
// psycopg3's Cursor: execute/executemany/fetchone/fetchmany/fetchall/
// nextset/copy, one operation in flight at a time.
type Cursor struct {
	conn      *Conn
	arraySize int
	closed    bool
	inFlight  bool
	format    adapt.Format

	sets   []resultSet
	setIdx int
	rowIdx int
}

// SetFormat overrides the result/parameter wire format this cursor requests,
// independent of the Conn's default (Conn.format, set from Config's
// FormatPreference).
func (cur *Cursor) SetFormat(f adapt.Format) { cur.format = f }

// Close releases the cursor. It does not affect the underlying Conn.
func (cur *Cursor) Close() error {
	cur.closed = true
	return nil
}

func (cur *Cursor) checkIdle() error {
	if cur.closed {
		return ErrInterfaceClosed
	}
	if cur.inFlight {
		return fmt.Errorf("%w: cursor already has an operation in flight", ErrProgramming)
	}
	return nil
}

func (cur *Cursor) reset() {
	cur.sets = nil
	cur.setIdx = 0
	cur.rowIdx = 0
}

// Execute runs one statement. With no params it uses the simple query
// protocol (sql may contain more than one ';'-separated statement,
// reachable afterward via NextSet); with params it uses the extended
// protocol's numbered, "%s", or "%(name)s" placeholders via internal/query.
func (cur *Cursor) Execute(ctx context.Context, sql string, params ...any) error {
	return cur.execute(ctx, sql, params, nil)
}

// ExecuteNamed runs one statement using "%(name)s" placeholders.
func (cur *Cursor) ExecuteNamed(ctx context.Context, sql string, params map[string]any) error {
	return cur.execute(ctx, sql, nil, params)
}

func (cur *Cursor) execute(ctx context.Context, sql string, positional []any, named map[string]any) error {
	if err := cur.checkIdle(); err != nil {
		return err
	}
	cur.inFlight = true
	defer func() { cur.inFlight = false }()
	cur.reset()

	if named == nil && len(positional) == 0 {
		if err := cur.conn.h.SendQuery(sql); err != nil {
			return err
		}
	} else {
		q, err := query.Parse(sql)
		if err != nil {
			return wrapSentinel(err, ErrProgramming)
		}
		var args []any
		if named != nil {
			args, err = q.BindNamed(named)
		} else {
			args, err = q.BindPositional(positional)
		}
		if err != nil {
			return wrapSentinel(err, ErrProgramming)
		}

		paramBytes := make([][]byte, len(args))
		paramFormats := make([]int16, len(args))
		paramOIDs := make([]uint32, len(args))
		for i, a := range args {
			data, oid, err := cur.conn.xf.Dump(a, cur.format)
			if err != nil {
				return wrapSentinel(err, ErrDataError)
			}
			paramBytes[i] = data
			paramFormats[i] = int16(cur.format)
			paramOIDs[i] = oid
		}

		if err := cur.conn.h.SendQueryParams(q.WireSQL, paramBytes, paramFormats, paramOIDs, int16(cur.format)); err != nil {
			return err
		}
	}

	results, err := runBlocking(ctx, proto.Execute(cur.conn.h))
	if err != nil {
		return err
	}
	return cur.triage(results)
}

// ExecuteMany runs sql once per element of paramSets, preparing it exactly
// once under the unnamed statement and re-binding + re-executing that
// prepared statement for each element (psycopg3's executemany), and
// accumulates the total affected row count across all of them into the
// final RowCount().
func (cur *Cursor) ExecuteMany(ctx context.Context, sql string, paramSets [][]any) error {
	if err := cur.checkIdle(); err != nil {
		return err
	}
	cur.inFlight = true
	defer func() { cur.inFlight = false }()
	cur.reset()

	if len(paramSets) == 0 {
		return nil
	}

	q, err := query.Parse(sql)
	if err != nil {
		return wrapSentinel(err, ErrProgramming)
	}

	if err := cur.conn.h.SendPrepare("", q.WireSQL, make([]uint32, q.NumParams)); err != nil {
		return err
	}
	prepResults, err := runBlocking(ctx, proto.Execute(cur.conn.h))
	if err != nil {
		return err
	}
	for _, r := range prepResults {
		if r.Status == handle.StatusFatalError {
			return newPgError(r.Err)
		}
	}

	var total int64
	for _, params := range paramSets {
		args, err := q.BindPositional(params)
		if err != nil {
			return wrapSentinel(err, ErrProgramming)
		}

		paramBytes := make([][]byte, len(args))
		paramFormats := make([]int16, len(args))
		for i, a := range args {
			data, _, err := cur.conn.xf.Dump(a, cur.format)
			if err != nil {
				return wrapSentinel(err, ErrDataError)
			}
			paramBytes[i] = data
			paramFormats[i] = int16(cur.format)
		}

		if err := cur.conn.h.SendQueryPrepared("", paramBytes, paramFormats, int16(cur.format)); err != nil {
			return err
		}
		results, err := runBlocking(ctx, proto.Execute(cur.conn.h))
		if err != nil {
			return err
		}
		for _, r := range results {
			if r.Status == handle.StatusFatalError {
				return newPgError(r.Err)
			}
			if r.CommandTuples != nil {
				total += *r.CommandTuples
			} else {
				total += int64(r.NTuples())
			}
		}
	}

	cur.sets = append(cur.sets, resultSet{status: handle.StatusCommandOk, rowCount: total})
	return nil
}

// Copy runs a COPY statement and returns the streaming session instead of a
// row result. Copy statements must not be run through Execute.
func (cur *Cursor) Copy(ctx context.Context, sql string) (*Copy, error) {
	if err := cur.checkIdle(); err != nil {
		return nil, err
	}
	cur.inFlight = true
	releaseCursor := func() { cur.inFlight = false }
	cur.reset()

	if err := cur.conn.h.SendQuery(sql); err != nil {
		releaseCursor()
		return nil, err
	}
	results, err := runBlocking(ctx, proto.Execute(cur.conn.h))
	if err != nil {
		releaseCursor()
		return nil, err
	}
	if len(results) != 1 || !results[0].Status.IsCopy() {
		releaseCursor()
		return nil, fmt.Errorf("%w: statement did not start a COPY operation", ErrProgramming)
	}
	return newCopy(cur.conn, results[0], releaseCursor), nil
}

func (cur *Cursor) triage(results []*handle.Result) error {
	for _, r := range results {
		if r.Status == handle.StatusFatalError {
			return newPgError(r.Err)
		}
		if r.Status.IsCopy() {
			return fmt.Errorf("%w: use Cursor.Copy for COPY statements", ErrProgramming)
		}

		var rows [][]any
		for i := 0; i < r.NTuples(); i++ {
			row, err := cur.conn.xf.LoadRow(r, i)
			if err != nil {
				return wrapSentinel(err, ErrDataError)
			}
			rows = append(rows, row)
		}

		rc := int64(r.NTuples())
		if r.CommandTuples != nil {
			rc = *r.CommandTuples
		}

		cur.sets = append(cur.sets, resultSet{status: r.Status, fields: r.Fields, rows: rows, rowCount: rc})
	}
	return nil
}

// RowCount is the affected/returned row count of the current result set, or
// -1 if none is current.
func (cur *Cursor) RowCount() int64 {
	if cur.setIdx >= len(cur.sets) {
		return -1
	}
	return cur.sets[cur.setIdx].rowCount
}

// Fields describes the columns of the current result set.
func (cur *Cursor) Fields() []handle.FieldDescription {
	if cur.setIdx >= len(cur.sets) {
		return nil
	}
	return cur.sets[cur.setIdx].fields
}

// NextSet advances to the next statement's result set, as produced by a
// multi-statement simple-protocol Execute. It reports false once no further
// result set remains.
func (cur *Cursor) NextSet() (bool, error) {
	if cur.closed {
		return false, ErrInterfaceClosed
	}
	if cur.setIdx+1 >= len(cur.sets) {
		return false, nil
	}
	cur.setIdx++
	cur.rowIdx = 0
	return true, nil
}

// checkFetchable reports whether the current result set came back with a
// tuple-bearing status (a SELECT-shaped statement), returning an
// ErrProgramming-wrapped error otherwise. It mirrors psycopg3 raising
// ProgrammingError when fetch is called on a cursor whose last statement
// produced no rows (e.g. an UPDATE).
func (cur *Cursor) checkFetchable() error {
	if cur.setIdx >= len(cur.sets) {
		return nil
	}
	if status := cur.sets[cur.setIdx].status; status != handle.StatusTuplesOk {
		return fmt.Errorf("%w: no results to fetch (last statement status %v)", ErrProgramming, status)
	}
	return nil
}

// FetchOne returns the next row of the current result set, or nil (with no
// error) once it is exhausted.
func (cur *Cursor) FetchOne() ([]any, error) {
	if cur.closed {
		return nil, ErrInterfaceClosed
	}
	if err := cur.checkFetchable(); err != nil {
		return nil, err
	}
	if cur.setIdx >= len(cur.sets) {
		return nil, nil
	}
	rows := cur.sets[cur.setIdx].rows
	if cur.rowIdx >= len(rows) {
		return nil, nil
	}
	row := rows[cur.rowIdx]
	cur.rowIdx++
	return row, nil
}

// FetchMany returns up to n rows of the current result set, defaulting n to
// the cursor's ArraySize when n <= 0.
func (cur *Cursor) FetchMany(n int) ([][]any, error) {
	if cur.closed {
		return nil, ErrInterfaceClosed
	}
	if n <= 0 {
		n = cur.arraySize
	}
	var out [][]any
	for len(out) < n {
		row, err := cur.FetchOne()
		if err != nil {
			return out, err
		}
		if row == nil {
			break
		}
		out = append(out, row)
	}
	return out, nil
}

// FetchAll returns every remaining row of the current result set.
func (cur *Cursor) FetchAll() ([][]any, error) {
	if cur.closed {
		return nil, ErrInterfaceClosed
	}
	if err := cur.checkFetchable(); err != nil {
		return nil, err
	}
	if cur.setIdx >= len(cur.sets) {
		return nil, nil
	}
	rows := cur.sets[cur.setIdx].rows[cur.rowIdx:]
	cur.rowIdx = len(cur.sets[cur.setIdx].rows)
	return rows, nil
}
