package driver

import (
	"sort"
	"strings"
	"sync"

	"goDBDriver/api"
	"goDBDriver/internal/logger"

	"github.com/cockroachdb/errors"
)

// CursorMode selects how a result cursor may be traversed.
type CursorMode int

const (
	ForwardOnly CursorMode = iota
	ScrollInsensitive
	ScrollSensitive
)

func (m CursorMode) String() string {
	switch m {
	case ForwardOnly:
		return "FORWARD_ONLY"
	case ScrollInsensitive:
		return "SCROLL_INSENSITIVE"
	case ScrollSensitive:
		return "SCROLL_SENSITIVE"
	}
	return "UNKNOWN"
}

// Concurrency selects whether a cursor may update rows.
type Concurrency int

const (
	ReadOnly Concurrency = iota
	Updatable
)

// Session is a logical connection to a query engine. It owns the session
// options and every statement created from it.
type Session struct {
	backend api.Backend
	log     logger.Logger

	mu         sync.Mutex
	closed     bool
	options    map[string]string
	statements map[*Statement]struct{}
	warnings   warningChain
}

// NewSession attaches a session to backend.
func NewSession(backend api.Backend, opts ...ConnectOption) *Session {
	cfg := newConnectConfig(opts)
	return &Session{
		backend:    backend,
		log:        cfg.log,
		options:    cfg.options,
		statements: map[*Statement]struct{}{},
	}
}

// CreateStatement returns a statement whose cursors use the given mode.
func (s *Session) CreateStatement(mode CursorMode, concurrency Concurrency) (*Statement, error) {
	if (mode != ForwardOnly && mode != ScrollInsensitive) || concurrency != ReadOnly {
		return nil, errors.Mark(newError(UnsupportedOperation, "Method not supported"), ErrUnsupportedCursorMode)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errConnectionClosed()
	}
	stmt := newStatement(s, mode)
	s.statements[stmt] = struct{}{}
	return stmt, nil
}

// Statement returns a forward-only, read-only statement.
func (s *Session) Statement() (*Statement, error) {
	return s.CreateStatement(ForwardOnly, ReadOnly)
}

// Prepare returns a statement for the query template.
func (s *Session) Prepare(query string) (*PreparedStatement, error) {
	params, err := findPlaceholders(query)
	if err != nil {
		return nil, err
	}
	stmt, err := s.Statement()
	if err != nil {
		return nil, err
	}
	return &PreparedStatement{
		Statement: stmt,
		template:  query,
		params:    params,
		bound:     map[int]binding{},
	}, nil
}

// Close closes every statement of the session, cancelling running
// executions. Closing twice is a no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	stmts := make([]*Statement, 0, len(s.statements))
	for stmt := range s.statements {
		stmts = append(stmts, stmt)
	}
	s.mu.Unlock()

	for _, stmt := range stmts {
		_ = stmt.Close()
	}
	s.log.Debug("Session closed", logger.Ctx{"statements": len(stmts)})
	return nil
}

// IsClosed reports whether Close was called.
func (s *Session) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) forget(stmt *Statement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.statements, stmt)
}

// SetSessionOption stores an option. Unknown names are kept as is and sent
// to the engine with every execution.
func (s *Session) SetSessionOption(name, value string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return newError(InvalidArgument, "Option name must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errConnectionClosed()
	}
	s.options[name] = value
	return nil
}

// SessionOption returns the value of an option.
func (s *Session) SessionOption(name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.options[name]
	return v, ok
}

// SessionOptions returns a copy of all options.
func (s *Session) SessionOptions() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.options))
	for k, v := range s.options {
		out[k] = v
	}
	return out
}

// sortedOptions returns the options as key=value strings sorted by key.
func (s *Session) sortedOptions() []string {
	opts := s.SessionOptions()
	keys := make([]string, 0, len(opts))
	for k := range opts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k + "=" + opts[k]
	}
	return out
}

// snapshot returns the options an execution runs with.
func (s *Session) snapshot() (map[string]string, sessionConf, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, sessionConf{}, errConnectionClosed()
	}
	opts := make(map[string]string, len(s.options))
	for k, v := range s.options {
		opts[k] = v
	}
	s.mu.Unlock()

	conf, err := decodeConf(opts)
	if err != nil {
		return nil, conf, err
	}
	return opts, conf, nil
}

// tableTypeMapping returns the configured mapping, falling back to NATIVE
// with a session warning for unknown values.
func (s *Session) tableTypeMapping() TableTypeMapping {
	value, _ := s.SessionOption(OptionTableTypeMapping)
	if value == "" {
		return TableTypeNative
	}
	m, err := ParseTableTypeMapping(value)
	if err != nil {
		s.warnings.add("Invalid value for "+OptionTableTypeMapping+": "+value+", using NATIVE", SQLStateWarning)
		return TableTypeNative
	}
	return m
}

// Warnings returns the most recent session warning.
func (s *Session) Warnings() *Warning {
	return s.warnings.get()
}

// ClearWarnings drops all session warnings.
func (s *Session) ClearWarnings() {
	s.warnings.clear()
}

// MetaData returns the catalog provider of the session.
func (s *Session) MetaData() (*DatabaseMetaData, error) {
	if s.IsClosed() {
		return nil, errConnectionClosed()
	}
	return &DatabaseMetaData{sess: s}, nil
}
