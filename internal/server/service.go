// Package server runs statements against the engine as asynchronous
// operations and exposes them through api.Backend.
package server

import (
	"context"
	"sync"

	"goDBDriver/api"
	"goDBDriver/internal/engine"
	"goDBDriver/internal/logger"
	"goDBDriver/internal/sql"
	"goDBDriver/internal/storage/memstore"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// Product information reported by Info.
const (
	ProductName    = "GoDB"
	ProductVersion = "0.4.0"
	DefaultSchema  = "default"
)

// Service implements api.Backend on top of an engine in the same process.
type Service struct {
	eng          *engine.DBEngine
	log          logger.Logger
	hooks        []Hook
	confDefaults map[string]string

	mu  sync.Mutex
	ops map[string]*operation
}

var _ api.Backend = (*Service)(nil)

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithHooks registers post-execution hooks, run in order.
func WithHooks(hooks ...Hook) Option {
	return func(s *Service) { s.hooks = append(s.hooks, hooks...) }
}

// WithConfDefaults sets configuration values applied to every submission
// that does not set them itself.
func WithConfDefaults(conf map[string]string) Option {
	return func(s *Service) {
		for k, v := range conf {
			s.confDefaults[k] = v
		}
	}
}

// New returns a Service for a started engine.
func New(eng *engine.DBEngine, opts ...Option) *Service {
	s := &Service{
		eng:          eng,
		log:          logger.Nop(),
		confDefaults: make(map[string]string),
		ops:          make(map[string]*operation),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// NewEmbedded returns a Service over a fresh in-memory engine.
func NewEmbedded(opts ...Option) (*Service, error) {
	eng := engine.New(memstore.New())
	if err := eng.Start(); err != nil {
		return nil, errors.Wrap(err, "start engine")
	}
	return New(eng, opts...), nil
}

// classify converts an engine error into the wire error kinds.
func classify(err error) *api.RemoteError {
	var re *api.RemoteError
	if errors.As(err, &re) {
		return re
	}

	kind := api.KindExecution
	switch {
	case errors.Is(err, sql.ErrSyntax):
		kind = api.KindSyntax
	case errors.Is(err, engine.ErrNotFound):
		kind = api.KindNotFound
	case errors.Is(err, context.Canceled):
		kind = api.KindCancelled
	}
	return &api.RemoteError{Kind: kind, Message: err.Error()}
}

func schemaOf(cols []sql.Column) []api.Column {
	if cols == nil {
		return nil
	}
	out := make([]api.Column, len(cols))
	for i, c := range cols {
		out[i] = api.Column{Name: c.Name, Type: c.Type.String(), Comment: c.Comment}
	}
	return out
}

func (s *Service) newOperation(req api.SubmitRequest) *operation {
	conf := make(map[string]string, len(req.Conf)+len(s.confDefaults))
	for k, v := range s.confDefaults {
		conf[k] = v
	}
	for k, v := range req.Conf {
		conf[k] = v
	}

	id := uuid.NewString()
	log := &opLog{}
	op := &operation{
		id:     id,
		sql:    req.SQL,
		conf:   conf,
		log:    log,
		logger: newOpLogger(log).WithField("component", "ql.Driver"),
		trace:  s.log.AddContext(logger.Ctx{"operation": id, "tag": conf[QueryTagOption]}),
		done:   make(chan struct{}),
		state:  api.StateRunning,
	}
	return op
}

// Submit parses and compiles the statement, then runs it in the background.
func (s *Service) Submit(ctx context.Context, req api.SubmitRequest) (api.Operation, error) {
	op := s.newOperation(req)
	op.info("Parsing command: " + req.SQL)

	stmt, err := sql.Parse(req.SQL)
	if err != nil {
		op.logger.Error("FAILED: ParseException " + err.Error())
		return api.Operation{}, classify(err)
	}
	op.info("Parse Completed")

	plan, err := s.eng.Prepare(stmt)
	if err != nil {
		op.logger.Error("FAILED: SemanticException " + err.Error())
		return api.Operation{}, classify(err)
	}
	op.info("Semantic Analysis Completed")

	op.hasResultSet = plan.HasResultSet()
	op.schema = schemaOf(plan.Columns)

	runCtx, cancel := context.WithCancel(context.Background())
	op.cancel = cancel

	s.mu.Lock()
	s.ops[op.id] = op
	s.mu.Unlock()

	op.info("Starting command: " + req.SQL)
	s.log.Debug("operation submitted", logger.Ctx{"operation": op.id, "state": api.StateRunning})
	go s.run(runCtx, op, plan)

	return api.Operation{Handle: op.id, HasResultSet: op.hasResultSet, Schema: op.schema}, nil
}

func (s *Service) run(ctx context.Context, op *operation, plan *engine.Plan) {
	res, err := s.eng.Run(plan)
	if err == nil {
		hc := HookContext{OperationID: op.id, SQL: op.sql, Conf: op.conf}
		for _, h := range s.hooks {
			if err = h.AfterExecute(ctx, hc); err != nil {
				break
			}
		}
	}
	op.finish(res, err)
	s.log.Debug("operation finished", logger.Ctx{"operation": op.id, "state": op.status().State})
}

func (s *Service) lookup(handle string) (*operation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	op, ok := s.ops[handle]
	if !ok {
		return nil, errors.Wrapf(api.ErrUnknownOperation, "operation %s", handle)
	}
	return op, nil
}

// Poll returns the current status of an operation.
func (s *Service) Poll(ctx context.Context, handle string) (api.Status, error) {
	op, err := s.lookup(handle)
	if err != nil {
		return api.Status{}, err
	}
	return op.status(), nil
}

// Wait blocks until the operation is terminal or ctx is done.
func (s *Service) Wait(ctx context.Context, handle string) (api.Status, error) {
	op, err := s.lookup(handle)
	if err != nil {
		return api.Status{}, err
	}

	select {
	case <-op.done:
		return op.status(), nil
	case <-ctx.Done():
		return api.Status{}, ctx.Err()
	}
}

// FetchNext returns the next batch of rows of a complete operation.
func (s *Service) FetchNext(ctx context.Context, handle string, max int) (api.RowBatch, error) {
	op, err := s.lookup(handle)
	if err != nil {
		return api.RowBatch{}, err
	}
	return op.fetch(max)
}

// Cancel aborts an operation. Cancelling a terminal operation is a no-op.
func (s *Service) Cancel(ctx context.Context, handle string) error {
	op, err := s.lookup(handle)
	if err != nil {
		return err
	}
	op.abort()
	return nil
}

// CloseOperation cancels the operation if needed and forgets it.
func (s *Service) CloseOperation(ctx context.Context, handle string) error {
	s.mu.Lock()
	op, ok := s.ops[handle]
	delete(s.ops, handle)
	s.mu.Unlock()

	if !ok {
		return errors.Wrapf(api.ErrUnknownOperation, "operation %s", handle)
	}
	op.abort()
	return nil
}

// ReadLog returns the operation log so far.
func (s *Service) ReadLog(ctx context.Context, handle string) (string, error) {
	op, err := s.lookup(handle)
	if err != nil {
		return "", err
	}
	return op.log.String(), nil
}

// ListObjects lists every table and view.
func (s *Service) ListObjects(ctx context.Context) ([]api.CatalogObject, error) {
	objs, err := s.eng.Objects()
	if err != nil {
		return nil, err
	}

	out := make([]api.CatalogObject, len(objs))
	for i, o := range objs {
		out[i] = api.CatalogObject{
			Schema:   DefaultSchema,
			Name:     o.Name,
			Kind:     o.Kind.String(),
			Comment:  o.Comment,
			Columns:  schemaOf(o.Columns),
			ViewText: o.QueryText,
		}
	}
	return out, nil
}

// Info describes the engine.
func (s *Service) Info(ctx context.Context) (api.ServerInfo, error) {
	return api.ServerInfo{
		ProductName:    ProductName,
		ProductVersion: ProductVersion,
		MajorVersion:   0,
		MinorVersion:   4,
		Schemas:        []string{DefaultSchema},
	}, nil
}

// Close cancels every live operation.
func (s *Service) Close() {
	s.mu.Lock()
	ops := make([]*operation, 0, len(s.ops))
	for _, op := range s.ops {
		ops = append(ops, op)
	}
	s.ops = make(map[string]*operation)
	s.mu.Unlock()

	for _, op := range ops {
		op.abort()
	}
}
