package driver

import (
	"context"
	"strings"
	"sync"

	"goDBDriver/api"
	"goDBDriver/internal/logger"

	"github.com/google/uuid"
)

// Statement executes SQL on a session. A statement serves one caller at a
// time; separate statements are independent.
type Statement struct {
	id   string
	sess *Session
	mode CursorMode
	log  logger.Logger

	// ctx is cancelled by Close and aborts a blocked SYNC execute.
	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	closed      bool
	maxRows     int
	fetchSize   int
	exec        *execution
	rs          *ResultSet
	updateCount int64
	warnings    warningChain
}

func newStatement(sess *Session, mode CursorMode) *Statement {
	ctx, cancel := context.WithCancel(context.Background())
	id := uuid.New().String()
	return &Statement{
		id:          id,
		sess:        sess,
		mode:        mode,
		log:         sess.log.AddContext(logger.Ctx{"statement": id}),
		ctx:         ctx,
		cancel:      cancel,
		updateCount: -1,
	}
}

// ID identifies the statement in driver logs.
func (s *Statement) ID() string {
	return s.id
}

// CursorMode returns the mode of cursors produced by the statement.
func (s *Statement) CursorMode() CursorMode {
	return s.mode
}

// Execute runs query. It returns true when the result is a cursor, available
// through ResultSet. With godb.query.blocking=false it returns as soon as the
// engine has accepted the statement.
func (s *Statement) Execute(ctx context.Context, query string) (bool, error) {
	if cmd, ok := parseSetCommand(query); ok {
		return s.executeSet(cmd)
	}
	return s.execute(ctx, query)
}

// ExecuteQuery runs query and returns its cursor.
func (s *Statement) ExecuteQuery(ctx context.Context, query string) (*ResultSet, error) {
	hasResultSet, err := s.Execute(ctx, query)
	if err != nil {
		return nil, err
	}
	if !hasResultSet {
		return nil, newError(ExecutionFailure, "The query did not generate a result set!")
	}
	return s.ResultSet()
}

// ExecuteUpdate runs a statement that produces no cursor and returns the
// number of affected rows.
func (s *Statement) ExecuteUpdate(ctx context.Context, query string) (int64, error) {
	hasResultSet, err := s.Execute(ctx, query)
	if err != nil {
		return 0, err
	}
	if hasResultSet {
		return 0, newError(ExecutionFailure, "The statement generated a result set")
	}
	return s.UpdateCount()
}

func (s *Statement) execute(ctx context.Context, query string) (bool, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false, errStatementClosed()
	}
	prev, prevRS := s.discardLocked()
	opts, conf, err := s.sess.snapshot()
	if err != nil {
		s.mu.Unlock()
		s.release(prev, prevRS)
		return false, err
	}
	mode := Sync
	if !conf.Blocking {
		mode = Async
	}
	exec := newExecution(s.id, mode)
	s.exec = exec
	s.mu.Unlock()
	s.release(prev, prevRS)

	s.log.Debug("Executing statement", logger.Ctx{"mode": mode.String(), "sql": query})
	op, err := s.sess.backend.Submit(ctx, api.SubmitRequest{SQL: query, Conf: opts})
	if err != nil {
		err = fromBackend(err)
		exec.fail(err)
		return false, err
	}
	exec.start(op)

	var st api.Status
	if mode == Sync {
		st, err = s.await(ctx, exec)
	} else {
		st, err = s.sess.backend.Poll(ctx, op.Handle)
		err = fromBackend(err)
	}
	var fresh []string
	if err == nil {
		fresh = exec.observe(st)
		_, err = exec.snapshot()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, msg := range fresh {
		s.warnings.add(msg, SQLStateWarning)
	}
	if s.closed || s.exec != exec {
		s.release(exec, nil)
		if err != nil {
			return false, err
		}
		return false, errStatementClosed()
	}
	if err != nil {
		return false, err
	}
	if mode == Async && !st.State.Terminal() {
		s.warnings.add("query is still running", SQLStateWarning)
	}

	if op.HasResultSet {
		s.rs = newResultSet(s.ctx, op.Schema, &executionSource{backend: s.sess.backend, exec: exec}, s.mode, s.effectiveFetchSize(conf), s.maxRows)
		s.updateCount = 0
		return true, nil
	}
	s.updateCount = exec.count()
	return false, nil
}

// await blocks until the execution is terminal, the caller gives up or the
// statement is closed.
func (s *Statement) await(ctx context.Context, exec *execution) (api.Status, error) {
	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(s.ctx, cancel)
	defer stop()

	st, err := s.sess.backend.Wait(waitCtx, exec.operationHandle())
	if err != nil {
		if waitCtx.Err() != nil {
			_ = s.sess.backend.Cancel(context.Background(), exec.operationHandle())
			exec.markCancelled()
			return api.Status{}, wrapError(Cancelled, err, "Query was cancelled")
		}
		err = fromBackend(err)
		exec.fail(err)
		return api.Status{}, err
	}

	return st, nil
}

// discardLocked detaches the previous execution and cursor.
func (s *Statement) discardLocked() (*execution, *ResultSet) {
	exec, rs := s.exec, s.rs
	s.exec, s.rs = nil, nil
	s.updateCount = -1
	s.warnings.clear()
	return exec, rs
}

// release closes a detached cursor and frees its execution on the backend.
func (s *Statement) release(exec *execution, rs *ResultSet) {
	if rs != nil {
		_ = rs.Close()
	}
	if exec == nil {
		return
	}
	handle := exec.operationHandle()
	if handle == "" {
		return
	}
	ctx := context.Background()
	if state, _ := exec.snapshot(); !state.Terminal() {
		_ = s.sess.backend.Cancel(ctx, handle)
		exec.markCancelled()
	}
	_ = s.sess.backend.CloseOperation(ctx, handle)
}

// refresh polls a running asynchronous execution.
func (s *Statement) refresh(ctx context.Context) error {
	s.mu.Lock()
	exec := s.exec
	s.mu.Unlock()
	if exec == nil {
		return nil
	}
	if state, _ := exec.snapshot(); state.Terminal() || exec.operationHandle() == "" {
		return nil
	}

	st, err := s.sess.backend.Poll(ctx, exec.operationHandle())
	if err != nil {
		return fromBackend(err)
	}
	fresh := exec.observe(st)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, msg := range fresh {
		s.warnings.add(msg, SQLStateWarning)
	}
	if s.exec == exec && !exec.hasResultSet && st.State == api.StateComplete {
		s.updateCount = st.UpdateCount
	}
	return nil
}

// ResultSet returns the cursor of the last execution, or nil when it
// produced none.
func (s *Statement) ResultSet() (*ResultSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errStatementClosed()
	}
	return s.rs, nil
}

// UpdateCount returns the affected-row count of the last execution. It is 0
// when the execution produced a cursor and -1 while a non-query is still
// running.
func (s *Statement) UpdateCount() (int64, error) {
	if err := s.refresh(s.ctx); err != nil {
		return -1, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return -1, errStatementClosed()
	}
	return s.updateCount, nil
}

// Status returns the state of the last execution.
func (s *Statement) Status(ctx context.Context) (ExecutionState, error) {
	if err := s.refresh(ctx); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", errStatementClosed()
	}
	if s.exec == nil {
		return ExecutionCreated, nil
	}
	state, _ := s.exec.snapshot()
	return state, nil
}

// Log returns the engine log of the last execution. The text only grows
// while the execution runs.
func (s *Statement) Log(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", errStatementClosed()
	}
	exec := s.exec
	s.mu.Unlock()
	if exec == nil || exec.operationHandle() == "" {
		return "", nil
	}

	log, err := s.sess.backend.ReadLog(ctx, exec.operationHandle())
	if err != nil {
		return "", fromBackend(err)
	}
	return log, nil
}

// Warnings returns the most recent statement warning.
func (s *Statement) Warnings() (*Warning, error) {
	if err := s.refresh(s.ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errStatementClosed()
	}
	return s.warnings.get(), nil
}

// ClearWarnings drops all statement warnings.
func (s *Statement) ClearWarnings() {
	s.warnings.clear()
}

// SetMaxRows caps the rows of subsequent cursors; 0 means no cap.
func (s *Statement) SetMaxRows(n int) error {
	if n < 0 {
		return newError(InvalidArgument, "max rows must be >= 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errStatementClosed()
	}
	s.maxRows = n
	return nil
}

// MaxRows returns the row cap.
func (s *Statement) MaxRows() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, errStatementClosed()
	}
	return s.maxRows, nil
}

// SetFetchSize sets the rows fetched per round trip; 0 restores the session
// default.
func (s *Statement) SetFetchSize(n int) error {
	if n < 0 {
		return newError(InvalidArgument, "fetch size must be >= 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errStatementClosed()
	}
	s.fetchSize = n
	return nil
}

// FetchSize returns the fetch size in effect.
func (s *Statement) FetchSize() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, errStatementClosed()
	}
	if s.fetchSize > 0 {
		return s.fetchSize, nil
	}
	_, conf, err := s.sess.snapshot()
	if err != nil {
		return 0, err
	}
	return conf.FetchSize, nil
}

func (s *Statement) effectiveFetchSize(conf sessionConf) int {
	if s.fetchSize > 0 {
		return s.fetchSize
	}
	return conf.FetchSize
}

// Cancel aborts the running execution, if any, without closing the
// statement.
func (s *Statement) Cancel(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errStatementClosed()
	}
	exec := s.exec
	s.mu.Unlock()
	if exec == nil || exec.operationHandle() == "" {
		return nil
	}
	if state, _ := exec.snapshot(); state.Terminal() {
		return nil
	}

	if err := s.sess.backend.Cancel(ctx, exec.operationHandle()); err != nil {
		return fromBackend(err)
	}
	exec.markCancelled()
	s.log.Debug("Execution cancelled")
	return nil
}

// Close releases the statement, cancelling a running execution. Closing
// twice is a no-op.
func (s *Statement) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.cancel()
	exec, rs := s.discardLocked()
	s.mu.Unlock()

	s.release(exec, rs)
	s.sess.forget(s)
	return nil
}

// IsClosed reports whether Close was called.
func (s *Statement) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// setCommand is a SET statement handled by the session itself.
type setCommand struct {
	key   string
	value string
	list  bool
	show  bool
}

// parseSetCommand recognizes "SET", "SET key" and "SET key=value".
func parseSetCommand(query string) (setCommand, bool) {
	q := strings.TrimSpace(query)
	q = strings.TrimSpace(strings.TrimSuffix(q, ";"))
	if len(q) < 3 || !strings.EqualFold(q[:3], "SET") {
		return setCommand{}, false
	}
	rest := q[3:]
	if rest == "" {
		return setCommand{list: true}, true
	}
	if rest[0] != ' ' && rest[0] != '\t' && rest[0] != '\n' {
		return setCommand{}, false
	}
	rest = strings.TrimSpace(rest)

	key, value, found := strings.Cut(rest, "=")
	if !found {
		return setCommand{key: rest, show: true}, true
	}
	return setCommand{key: strings.TrimSpace(key), value: strings.TrimSpace(value)}, true
}

func (s *Statement) executeSet(cmd setCommand) (bool, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false, errStatementClosed()
	}
	prev, prevRS := s.discardLocked()
	s.mu.Unlock()
	s.release(prev, prevRS)

	if !cmd.list && !cmd.show {
		if err := s.sess.SetSessionOption(cmd.key, cmd.value); err != nil {
			return false, err
		}
		s.mu.Lock()
		s.updateCount = 0
		s.mu.Unlock()
		return false, nil
	}

	if s.sess.IsClosed() {
		return false, errConnectionClosed()
	}
	var rows []api.Row
	if cmd.list {
		for _, kv := range s.sess.sortedOptions() {
			rows = append(rows, api.Row{kv})
		}
	} else if v, ok := s.sess.SessionOption(cmd.key); ok {
		rows = append(rows, api.Row{cmd.key + "=" + v})
	} else {
		rows = append(rows, api.Row{cmd.key + " is undefined"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rs = newStaticResultSet(s.ctx, []api.Column{{Name: "set", Type: api.TypeString}}, rows)
	s.updateCount = 0
	return true, nil
}
