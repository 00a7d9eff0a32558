package driver

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"goDBDriver/api"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteQueryAndUpdate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	stmt, err := env.sess.Statement()
	require.NoError(t, err)

	_, err = stmt.ExecuteUpdate(ctx, "CREATE TABLE t (a INT, b STRING)")
	require.NoError(t, err)

	n, err := stmt.ExecuteUpdate(ctx, "INSERT INTO t VALUES (1, 'one'), (2, 'two'), (3, NULL)")
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	hasResultSet, err := stmt.Execute(ctx, "SELECT a, b FROM t ORDER BY a")
	require.NoError(t, err)
	require.True(t, hasResultSet)
	count, err := stmt.UpdateCount()
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)

	rs, err := stmt.ExecuteQuery(ctx, "SELECT a, b FROM t ORDER BY a")
	require.NoError(t, err)
	count, err = stmt.UpdateCount()
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two", ""}, collect(t, rs, 2))

	_, err = stmt.ExecuteQuery(ctx, "INSERT INTO t VALUES (4, 'four')")
	requireCode(t, ExecutionFailure, err)
	assert.Equal(t, "The query did not generate a result set!", err.Error())

	_, err = stmt.ExecuteUpdate(ctx, "SELECT a FROM t")
	requireCode(t, ExecutionFailure, err)
}

func TestExecuteErrorsAreClassified(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	stmt, err := env.sess.Statement()
	require.NoError(t, err)

	_, err = stmt.Execute(ctx, "SELECTT * FROM t")
	requireCode(t, SyntaxError, err)
	assert.Contains(t, err.Error(), "cannot recognize input near 'SELECTT'")
	assert.Equal(t, "42000", SQLStateOf(err))

	_, err = stmt.Execute(ctx, "SELECT * FROM nonexisttable")
	requireCode(t, ObjectNotFound, err)

	env.exec(t, "CREATE TABLE t (a INT)")
	_, err = stmt.Execute(ctx, "CREATE TABLE t (a INT)")
	requireCode(t, ExecutionFailure, err)
	assert.Equal(t, "08S01", SQLStateOf(err))

	// The statement is still usable after a failure.
	rs, err := stmt.ExecuteQuery(ctx, "SELECT a FROM t")
	require.NoError(t, err)
	ok, err := rs.Next()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExecuteReplacesPreviousResult(t *testing.T) {
	env := newTestEnv(t)
	env.exec(t, "CREATE TABLE t (a INT)", "INSERT INTO t VALUES (1), (2)")
	stmt, err := env.sess.Statement()
	require.NoError(t, err)
	ctx := context.Background()

	first, err := stmt.ExecuteQuery(ctx, "SELECT a FROM t")
	require.NoError(t, err)
	second, err := stmt.ExecuteQuery(ctx, "SELECT a FROM t")
	require.NoError(t, err)

	assert.True(t, first.IsClosed())
	assert.Equal(t, []string{"1", "2"}, collect(t, second, 1))
}

func TestStatementWarnings(t *testing.T) {
	env := newTestEnv(t)
	env.exec(t, "CREATE TABLE t (a INT)")
	ctx := context.Background()
	stmt, err := env.sess.Statement()
	require.NoError(t, err)

	w, err := stmt.Warnings()
	require.NoError(t, err)
	assert.Nil(t, w)

	_, err = stmt.Execute(ctx, "CREATE TABLE IF NOT EXISTS t (a INT)")
	require.NoError(t, err)
	w, err = stmt.Warnings()
	require.NoError(t, err)
	require.NotNil(t, w)
	assert.Equal(t, "Table t already exists, skipping", w.Message)
	assert.Equal(t, SQLStateWarning, w.SQLState)
	assert.Nil(t, w.Next)

	stmt.ClearWarnings()
	w, err = stmt.Warnings()
	require.NoError(t, err)
	assert.Nil(t, w)

	_, err = stmt.Execute(ctx, "DROP VIEW IF EXISTS missing")
	require.NoError(t, err)
	w, err = stmt.Warnings()
	require.NoError(t, err)
	require.NotNil(t, w)
	assert.Contains(t, w.Message, "does not exist, skipping")

	// Session warnings are a separate stream.
	assert.Nil(t, env.sess.Warnings())
}

func TestMaxRowsCapsCursor(t *testing.T) {
	env := newTestEnv(t)
	env.exec(t, "CREATE TABLE t (a INT)", "INSERT INTO t VALUES (1), (2), (3), (4), (5)")
	stmt, err := env.sess.Statement()
	require.NoError(t, err)

	require.Error(t, stmt.SetMaxRows(-1))
	require.NoError(t, stmt.SetMaxRows(3))
	n, err := stmt.MaxRows()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	for _, fetch := range []int{1, 2, 50} {
		require.NoError(t, stmt.SetFetchSize(fetch))
		rs, err := stmt.ExecuteQuery(context.Background(), "SELECT a FROM t ORDER BY a")
		require.NoError(t, err)
		assert.Equal(t, []string{"1", "2", "3"}, collect(t, rs, 1), "fetch size %d", fetch)

		for i := 0; i < 2; i++ {
			ok, err := rs.Next()
			require.NoError(t, err)
			assert.False(t, ok, "fetch size %d", fetch)
		}
		after, err := rs.IsAfterLast()
		require.NoError(t, err)
		assert.True(t, after)
	}
}

func TestFetchSizeRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	env.exec(t, "CREATE TABLE t (a INT)", "INSERT INTO t VALUES (3), (1), (2), (5), (4)")
	stmt, err := env.sess.Statement()
	require.NoError(t, err)

	n, err := stmt.FetchSize()
	require.NoError(t, err)
	assert.Equal(t, DefaultFetchSize, n)

	var baseline []string
	for _, size := range []int{1, 2, 3, 7, 1000} {
		require.NoError(t, stmt.SetFetchSize(size))
		got, err := stmt.FetchSize()
		require.NoError(t, err)
		assert.Equal(t, size, got)

		rs, err := stmt.ExecuteQuery(context.Background(), "SELECT a FROM t ORDER BY a DESC")
		require.NoError(t, err)
		rows := collect(t, rs, 1)
		if baseline == nil {
			baseline = rows
		}
		assert.Equal(t, baseline, rows)
	}
	assert.Equal(t, []string{"5", "4", "3", "2", "1"}, baseline)

	require.NoError(t, stmt.SetFetchSize(0))
	n, err = stmt.FetchSize()
	require.NoError(t, err)
	assert.Equal(t, DefaultFetchSize, n)
	requireCode(t, InvalidArgument, stmt.SetFetchSize(-1))

	require.NoError(t, env.sess.SetSessionOption(OptionFetchSize, "9"))
	n, err = stmt.FetchSize()
	require.NoError(t, err)
	assert.Equal(t, 9, n)
}

func TestClosedStatement(t *testing.T) {
	env := newTestEnv(t)
	env.exec(t, "CREATE TABLE t (a INT)", "INSERT INTO t VALUES (1)")
	stmt, err := env.sess.Statement()
	require.NoError(t, err)

	rs, err := stmt.ExecuteQuery(context.Background(), "SELECT a FROM t")
	require.NoError(t, err)
	require.NoError(t, stmt.Close())
	require.NoError(t, stmt.Close())
	assert.True(t, stmt.IsClosed())

	_, err = stmt.Execute(context.Background(), "SELECT 1")
	requireCode(t, StatementClosed, err)
	_, err = stmt.ResultSet()
	requireCode(t, StatementClosed, err)
	requireCode(t, StatementClosed, stmt.SetMaxRows(1))

	// Any operation on the cursor of a closed statement fails.
	_, err = rs.Next()
	requireCode(t, CursorClosed, err)
	_, err = rs.String(1)
	requireCode(t, CursorClosed, err)
	_, err = rs.MetaData()
	requireCode(t, CursorClosed, err)
	requireCode(t, CursorClosed, rs.BeforeFirst())
	_, err = rs.FindColumn("a")
	requireCode(t, CursorClosed, err)
}

func TestSessionClose(t *testing.T) {
	env := newTestEnv(t)
	stmt, err := env.sess.Statement()
	require.NoError(t, err)

	require.NoError(t, env.sess.Close())
	assert.True(t, env.sess.IsClosed())
	assert.True(t, stmt.IsClosed())

	_, err = env.sess.Statement()
	requireCode(t, ConnectionClosed, err)
	_, err = env.sess.MetaData()
	requireCode(t, ConnectionClosed, err)
	requireCode(t, ConnectionClosed, env.sess.SetSessionOption("a", "b"))
}

func TestAsyncExecuteAndFetch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.exec(t, "CREATE TABLE t (a INT, b STRING)", "INSERT INTO t VALUES (1, 'first')")
	require.NoError(t, env.sess.SetSessionOption(OptionBlocking, "false"))
	require.NoError(t, env.sess.SetSessionOption(OptionQueryTag, "slow"))

	env.gate.Block("slow")
	stmt, err := env.sess.Statement()
	require.NoError(t, err)
	hasResultSet, err := stmt.Execute(ctx, "SELECT a, b FROM t")
	require.NoError(t, err)
	require.True(t, hasResultSet)

	w, err := stmt.Warnings()
	require.NoError(t, err)
	require.NotNil(t, w)
	assert.Equal(t, "query is still running", w.Message)
	assert.Equal(t, "01000", w.SQLState)

	state, err := stmt.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExecutionRunning, state)

	rs, err := stmt.ResultSet()
	require.NoError(t, err)
	meta, err := rs.MetaData()
	require.NoError(t, err)
	assert.Equal(t, 2, meta.ColumnCount())

	_, err = rs.Next()
	requireCode(t, OperationNotComplete, err)
	assert.Equal(t, "HY010", SQLStateOf(err))
	// The failed fetch left the cursor where it was.
	before, err := rs.IsBeforeFirst()
	require.NoError(t, err)
	assert.True(t, before)

	env.gate.Release("slow")
	var ok bool
	require.NoError(t, AwaitComplete(ctx, func() error {
		ok, err = rs.Next()
		return err
	}))
	require.True(t, ok)
	a, err := rs.Int32(1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, a)
	b, err := rs.StringByLabel("b")
	require.NoError(t, err)
	assert.Equal(t, "first", b)

	state, err = stmt.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExecutionComplete, state)
}

func TestAsyncLogGrowsUntilCompletion(t *testing.T) {
	env := newTestEnv(t, WithSessionOption(OptionBlocking, "false"))
	ctx := context.Background()
	require.NoError(t, env.sess.SetSessionOption(OptionQueryTag, "logged"))
	env.gate.Block("logged")

	stmt, err := env.sess.Statement()
	require.NoError(t, err)
	_, err = stmt.Execute(ctx, "SELECT 1 AS one")
	require.NoError(t, err)

	running, err := stmt.Log(ctx)
	require.NoError(t, err)
	assert.Contains(t, running, "Parsing command: SELECT 1 AS one")
	assert.Contains(t, running, "Starting command: SELECT 1 AS one")
	assert.NotContains(t, running, "Execution completed successfully")

	env.gate.Release("logged")
	var final string
	require.Eventually(t, func() bool {
		final, err = stmt.Log(ctx)
		return err == nil && strings.Contains(final, "Execution completed successfully")
	}, 5*time.Second, 5*time.Millisecond)
	assert.True(t, strings.HasPrefix(final, running), "log must only grow")
}

func TestAsyncUpdateCountArrivesOnCompletion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.exec(t, "CREATE TABLE t (a INT)")
	require.NoError(t, env.sess.SetSessionOption(OptionBlocking, "false"))
	require.NoError(t, env.sess.SetSessionOption(OptionQueryTag, "ins"))
	env.gate.Block("ins")

	stmt, err := env.sess.Statement()
	require.NoError(t, err)
	hasResultSet, err := stmt.Execute(ctx, "INSERT INTO t VALUES (1), (2)")
	require.NoError(t, err)
	require.False(t, hasResultSet)
	n, err := stmt.UpdateCount()
	require.NoError(t, err)
	assert.EqualValues(t, -1, n)

	env.gate.Release("ins")
	require.Eventually(t, func() bool {
		n, err = stmt.UpdateCount()
		return err == nil && n == 2
	}, 5*time.Second, 5*time.Millisecond)
}

func TestCloseCancelsBlockedSyncExecute(t *testing.T) {
	env := newTestEnv(t, WithSessionOption(OptionQueryTag, "hold"))
	env.gate.Block("hold")
	defer env.gate.Release("hold")

	stmt, err := env.sess.Statement()
	require.NoError(t, err)

	var wg sync.WaitGroup
	var execErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, execErr = stmt.Execute(context.Background(), "SELECT 1")
	}()

	require.Eventually(t, func() bool {
		state, err := stmt.Status(context.Background())
		return err == nil && state == ExecutionRunning
	}, 5*time.Second, 5*time.Millisecond)

	require.NoError(t, stmt.Close())
	wg.Wait()
	requireCode(t, Cancelled, execErr)
}

func TestCancelRunningExecution(t *testing.T) {
	env := newTestEnv(t, WithSessionOption(OptionBlocking, "false"), WithSessionOption(OptionQueryTag, "stuck"))
	env.gate.Block("stuck")
	defer env.gate.Release("stuck")
	ctx := context.Background()

	stmt, err := env.sess.Statement()
	require.NoError(t, err)
	_, err = stmt.Execute(ctx, "SELECT 1")
	require.NoError(t, err)

	require.NoError(t, stmt.Cancel(ctx))
	state, err := stmt.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExecutionCancelled, state)
	assert.False(t, stmt.IsClosed())
}

func TestStatementsAreIndependent(t *testing.T) {
	env := newTestEnv(t)
	env.exec(t, "CREATE TABLE t (a INT)", "INSERT INTO t VALUES (1), (2), (3)")
	ctx := context.Background()

	s1, err := env.sess.Statement()
	require.NoError(t, err)
	s2, err := env.sess.Statement()
	require.NoError(t, err)

	rs1, err := s1.ExecuteQuery(ctx, "SELECT a FROM t ORDER BY a")
	require.NoError(t, err)
	rs2, err := s2.ExecuteQuery(ctx, "SELECT a FROM t ORDER BY a DESC")
	require.NoError(t, err)
	require.NoError(t, s2.Close())

	assert.Equal(t, []string{"1", "2", "3"}, collect(t, rs1, 1))
	assert.True(t, rs2.IsClosed())
}

func TestAsyncStatementsProgressIndependently(t *testing.T) {
	env := newTestEnv(t)
	env.exec(t, "CREATE TABLE t (a INT)", "INSERT INTO t VALUES (1), (2)")
	ctx := context.Background()
	require.NoError(t, env.sess.SetSessionOption(OptionBlocking, "false"))

	s1, err := env.sess.Statement()
	require.NoError(t, err)
	s2, err := env.sess.Statement()
	require.NoError(t, err)

	require.NoError(t, env.sess.SetSessionOption(OptionQueryTag, "first"))
	env.gate.Block("first")
	defer env.gate.Release("first")
	rs1, err := s1.ExecuteQuery(ctx, "SELECT a FROM t ORDER BY a")
	require.NoError(t, err)

	require.NoError(t, env.sess.SetSessionOption(OptionQueryTag, "second"))
	env.gate.Block("second")
	defer env.gate.Release("second")
	rs2, err := s2.ExecuteQuery(ctx, "SELECT a FROM t ORDER BY a DESC")
	require.NoError(t, err)

	_, err = rs1.Next()
	requireCode(t, OperationNotComplete, err)
	_, err = rs2.Next()
	requireCode(t, OperationNotComplete, err)

	env.gate.Release("first")
	err = AwaitComplete(ctx, func() error {
		_, err := rs1.Next()
		return err
	})
	require.NoError(t, err)
	v, err := rs1.Int32(1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, v)
	assert.Equal(t, []string{"2"}, collect(t, rs1, 1))
	require.NoError(t, s1.Close())

	_, err = rs2.Next()
	requireCode(t, OperationNotComplete, err)
	st, err := s2.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExecutionRunning, st)

	env.gate.Release("second")
	err = AwaitComplete(ctx, func() error {
		_, err := rs2.Next()
		return err
	})
	require.NoError(t, err)
	v, err = rs2.Int32(1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, v)
	assert.Equal(t, []string{"1"}, collect(t, rs2, 1))
}

// closingBackend closes a statement right after the server accepts a query.
type closingBackend struct {
	api.Backend

	stmt    *Statement
	handles []string
}

func (b *closingBackend) Submit(ctx context.Context, req api.SubmitRequest) (api.Operation, error) {
	op, err := b.Backend.Submit(ctx, req)
	if err == nil {
		b.handles = append(b.handles, op.Handle)
		_ = b.stmt.Close()
	}
	return op, err
}

func TestCloseDuringSubmitReleasesOperation(t *testing.T) {
	env := newTestEnv(t)
	backend := &closingBackend{Backend: env.svc}
	sess := NewSession(backend, WithSessionOption(OptionBlocking, "false"))
	defer sess.Close()
	ctx := context.Background()

	stmt, err := sess.Statement()
	require.NoError(t, err)
	backend.stmt = stmt

	_, err = stmt.Execute(ctx, "SELECT 1")
	requireCode(t, StatementClosed, err)
	require.Len(t, backend.handles, 1)

	_, err = env.svc.Poll(ctx, backend.handles[0])
	require.True(t, errors.Is(err, api.ErrUnknownOperation), "operation still open: %v", err)
}

func TestFetchSizeReportsInvalidSessionOption(t *testing.T) {
	env := newTestEnv(t)
	stmt, err := env.sess.Statement()
	require.NoError(t, err)

	require.NoError(t, env.sess.SetSessionOption(OptionFetchSize, "lots"))
	_, err = stmt.FetchSize()
	requireCode(t, InvalidArgument, err)

	require.NoError(t, stmt.SetFetchSize(4))
	n, err := stmt.FetchSize()
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestSetCommand(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	stmt, err := env.sess.Statement()
	require.NoError(t, err)

	hasResultSet, err := stmt.Execute(ctx, "SET godb.query.tag = nightly")
	require.NoError(t, err)
	assert.False(t, hasResultSet)
	v, ok := env.sess.SessionOption(OptionQueryTag)
	require.True(t, ok)
	assert.Equal(t, "nightly", v)

	_, err = stmt.Execute(ctx, "set custom.opt=1;")
	require.NoError(t, err)

	rs, err := stmt.ExecuteQuery(ctx, "SET")
	require.NoError(t, err)
	meta, err := rs.MetaData()
	require.NoError(t, err)
	name, err := meta.ColumnName(1)
	require.NoError(t, err)
	assert.Equal(t, "set", name)
	assert.Equal(t, []string{"custom.opt=1", "godb.query.tag=nightly"}, collect(t, rs, 1))

	rs, err = stmt.ExecuteQuery(ctx, "SET unknown.key")
	require.NoError(t, err)
	assert.Equal(t, []string{"unknown.key is undefined"}, collect(t, rs, 1))
}

func TestInvalidSessionOption(t *testing.T) {
	env := newTestEnv(t, WithSessionOption(OptionBlocking, "maybe"))
	stmt, err := env.sess.Statement()
	require.NoError(t, err)
	_, err = stmt.Execute(context.Background(), "SELECT 1")
	requireCode(t, InvalidArgument, err)
}
