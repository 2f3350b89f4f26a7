package pgxproto_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jackc/pgxproto"
	"github.com/jackc/pgxproto/internal/pgmock"
	pgproto3 "github.com/jackc/pgproto3/v2"
)

func runScript(t *testing.T, server net.Conn, steps ...pgmock.Step) <-chan error {
	t.Helper()
	script := &pgmock.Script{Steps: steps}
	done := make(chan error, 1)
	go func() { done <- script.Run(server) }()
	return done
}

func intField(name string) pgproto3.FieldDescription {
	return pgproto3.FieldDescription{Name: name, DataTypeOID: 23, DataTypeSize: 4, Format: 0}
}

func TestCursorExecuteSimpleQueryFetchAll(t *testing.T) {
	conn, server := newConnPipe(t)
	done := runScript(t, server, pgmock.SimpleQueryOkScript(
		[]pgproto3.FieldDescription{intField("n")},
		[][][]byte{{[]byte("1")}, {[]byte("2")}},
		"SELECT 2",
	))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	cur := conn.NewCursor()
	require.NoError(t, cur.Execute(ctx, "select n from t"))
	require.Equal(t, int64(2), cur.RowCount())
	require.Equal(t, "n", cur.Fields()[0].Name)

	rows, err := cur.FetchAll()
	require.NoError(t, err)
	require.Equal(t, [][]any{{int32(1)}, {int32(2)}}, rows)

	row, err := cur.FetchOne()
	require.NoError(t, err)
	require.Nil(t, row)

	require.NoError(t, <-done)
}

func TestCursorExecuteWithPositionalParams(t *testing.T) {
	conn, server := newConnPipe(t)
	done := runScript(t, server,
		pgmock.ExpectMessageType('P'),
		pgmock.ExpectMessageType('B'),
		pgmock.ExpectMessageType('D'),
		pgmock.ExpectMessageType('E'),
		pgmock.ExpectMessageType('S'),
		pgmock.SendMessage(&pgproto3.ParseComplete{}),
		pgmock.SendMessage(&pgproto3.BindComplete{}),
		pgmock.SendMessage(&pgproto3.RowDescription{Fields: []pgproto3.FieldDescription{intField("n")}}),
		pgmock.SendMessage(&pgproto3.DataRow{Values: [][]byte{[]byte("42")}}),
		pgmock.SendMessage(&pgproto3.CommandComplete{CommandTag: []byte("SELECT 1")}),
		pgmock.SendMessage(&pgproto3.ReadyForQuery{TxStatus: byte('I')}),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	cur := conn.NewCursor()
	require.NoError(t, cur.Execute(ctx, "select n from t where n = %s", int32(42)))
	require.Equal(t, int64(1), cur.RowCount())

	row, err := cur.FetchOne()
	require.NoError(t, err)
	require.Equal(t, []any{int32(42)}, row)

	require.NoError(t, <-done)
}

func TestCursorFetchMany(t *testing.T) {
	conn, server := newConnPipe(t)
	done := runScript(t, server, pgmock.SimpleQueryOkScript(
		[]pgproto3.FieldDescription{intField("n")},
		[][][]byte{{[]byte("1")}, {[]byte("2")}, {[]byte("3")}},
		"SELECT 3",
	))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	cur := conn.NewCursor()
	require.NoError(t, cur.Execute(ctx, "select n from t"))

	rows, err := cur.FetchMany(2)
	require.NoError(t, err)
	require.Equal(t, [][]any{{int32(1)}, {int32(2)}}, rows)

	rows, err = cur.FetchMany(2)
	require.NoError(t, err)
	require.Equal(t, [][]any{{int32(3)}}, rows)

	require.NoError(t, <-done)
}

func TestCursorNextSetAcrossMultiStatementSimpleQuery(t *testing.T) {
	conn, server := newConnPipe(t)
	done := runScript(t, server,
		pgmock.ExpectMessageType('Q'),
		pgmock.SendMessage(&pgproto3.RowDescription{Fields: []pgproto3.FieldDescription{intField("n")}}),
		pgmock.SendMessage(&pgproto3.DataRow{Values: [][]byte{[]byte("1")}}),
		pgmock.SendMessage(&pgproto3.CommandComplete{CommandTag: []byte("SELECT 1")}),
		pgmock.SendMessage(&pgproto3.RowDescription{Fields: []pgproto3.FieldDescription{intField("m")}}),
		pgmock.SendMessage(&pgproto3.DataRow{Values: [][]byte{[]byte("2")}}),
		pgmock.SendMessage(&pgproto3.CommandComplete{CommandTag: []byte("SELECT 1")}),
		pgmock.SendMessage(&pgproto3.ReadyForQuery{TxStatus: byte('I')}),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	cur := conn.NewCursor()
	require.NoError(t, cur.Execute(ctx, "select n from t; select m from u"))

	row, err := cur.FetchOne()
	require.NoError(t, err)
	require.Equal(t, []any{int32(1)}, row)
	require.Equal(t, "n", cur.Fields()[0].Name)

	more, err := cur.NextSet()
	require.NoError(t, err)
	require.True(t, more)
	require.Equal(t, "m", cur.Fields()[0].Name)

	row, err = cur.FetchOne()
	require.NoError(t, err)
	require.Equal(t, []any{int32(2)}, row)

	more, err = cur.NextSet()
	require.NoError(t, err)
	require.False(t, more)

	require.NoError(t, <-done)
}

func TestCursorExecuteManyAccumulatesRowCount(t *testing.T) {
	conn, server := newConnPipe(t)

	// One Parse+Sync prepares the unnamed statement exactly once; each
	// element of paramSets then only re-binds and re-executes it.
	steps := []pgmock.Step{
		pgmock.ExpectMessageType('P'),
		pgmock.ExpectMessageType('S'),
		pgmock.SendMessage(&pgproto3.ParseComplete{}),
		pgmock.SendMessage(&pgproto3.ReadyForQuery{TxStatus: byte('I')}),
	}
	for i := 0; i < 2; i++ {
		steps = append(steps,
			pgmock.ExpectMessageType('B'),
			pgmock.ExpectMessageType('D'),
			pgmock.ExpectMessageType('E'),
			pgmock.ExpectMessageType('S'),
			pgmock.SendMessage(&pgproto3.BindComplete{}),
			pgmock.SendMessage(&pgproto3.CommandComplete{CommandTag: []byte("INSERT 0 1")}),
			pgmock.SendMessage(&pgproto3.ReadyForQuery{TxStatus: byte('I')}),
		)
	}
	done := runScript(t, server, steps...)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	cur := conn.NewCursor()
	require.NoError(t, cur.ExecuteMany(ctx, "insert into t (n) values (%s)", [][]any{{int32(1)}, {int32(2)}}))
	require.Equal(t, int64(2), cur.RowCount())

	require.NoError(t, <-done)
}

func TestCursorExecuteFatalErrorSurfacesAsPgError(t *testing.T) {
	conn, server := newConnPipe(t)
	done := runScript(t, server,
		pgmock.ExpectMessageType('Q'),
		pgmock.SendMessage(&pgproto3.ErrorResponse{Severity: "ERROR", Code: "42601", Message: "syntax error"}),
		pgmock.SendMessage(&pgproto3.ReadyForQuery{TxStatus: byte('I')}),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	cur := conn.NewCursor()
	err := cur.Execute(ctx, "not sql")
	require.Error(t, err)
	require.Contains(t, err.Error(), "42601")

	require.NoError(t, <-done)
}

func TestCursorFetchAfterCommandOkIsProgrammingError(t *testing.T) {
	conn, server := newConnPipe(t)
	done := runScript(t, server,
		pgmock.ExpectMessageType('Q'),
		pgmock.SendMessage(&pgproto3.CommandComplete{CommandTag: []byte("UPDATE 3")}),
		pgmock.SendMessage(&pgproto3.ReadyForQuery{TxStatus: byte('I')}),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	cur := conn.NewCursor()
	require.NoError(t, cur.Execute(ctx, "update t set n = n + 1"))
	require.Equal(t, int64(3), cur.RowCount())

	_, err := cur.FetchOne()
	require.ErrorIs(t, err, pgxproto.ErrProgramming)

	_, err = cur.FetchAll()
	require.ErrorIs(t, err, pgxproto.ErrProgramming)

	require.NoError(t, <-done)
}

func TestCursorRejectsOperationsAfterClose(t *testing.T) {
	conn, _ := newConnPipe(t)
	cur := conn.NewCursor()

	require.NoError(t, cur.Close())
	err := cur.Execute(context.Background(), "select 1")
	require.ErrorIs(t, err, pgxproto.ErrInterfaceClosed)

	_, err = cur.FetchOne()
	require.ErrorIs(t, err, pgxproto.ErrInterfaceClosed)
}
