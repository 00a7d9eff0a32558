package driver

import (
	"context"
	"sync"

	"goDBDriver/api"
)

// ExecutionMode selects whether Execute waits for completion.
type ExecutionMode int

const (
	Sync ExecutionMode = iota
	Async
)

func (m ExecutionMode) String() string {
	if m == Async {
		return "ASYNC"
	}
	return "SYNC"
}

// ExecutionState is the lifecycle state of one execution.
type ExecutionState string

const (
	ExecutionCreated   ExecutionState = "CREATED"
	ExecutionRunning   ExecutionState = "RUNNING"
	ExecutionComplete  ExecutionState = "COMPLETE"
	ExecutionFailed    ExecutionState = "FAILED"
	ExecutionCancelled ExecutionState = "CANCELLED"
)

// Terminal reports whether the state is final.
func (s ExecutionState) Terminal() bool {
	return s == ExecutionComplete || s == ExecutionFailed || s == ExecutionCancelled
}

var executionStates = map[api.OperationState]ExecutionState{
	api.StateRunning:   ExecutionRunning,
	api.StateComplete:  ExecutionComplete,
	api.StateFailed:    ExecutionFailed,
	api.StateCancelled: ExecutionCancelled,
}

// execution tracks one submitted statement. States only move forward.
type execution struct {
	statementID string
	mode        ExecutionMode

	mu           sync.Mutex
	handle       string
	state        ExecutionState
	hasResultSet bool
	schema       []api.Column
	updateCount  int64
	err          error
	seenWarnings int
}

func newExecution(statementID string, mode ExecutionMode) *execution {
	return &execution{
		statementID: statementID,
		mode:        mode,
		state:       ExecutionCreated,
		updateCount: -1,
	}
}

func (e *execution) start(op api.Operation) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handle = op.Handle
	e.hasResultSet = op.HasResultSet
	e.schema = op.Schema
	if e.state == ExecutionCreated {
		e.state = ExecutionRunning
	}
}

// observe applies a backend status and returns the warnings not seen yet.
func (e *execution) observe(st api.Status) []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	var fresh []string
	if len(st.Warnings) > e.seenWarnings {
		fresh = st.Warnings[e.seenWarnings:]
		e.seenWarnings = len(st.Warnings)
	}
	if e.state.Terminal() {
		return fresh
	}

	next, ok := executionStates[st.State]
	if !ok {
		return fresh
	}
	e.state = next
	switch next {
	case ExecutionComplete:
		e.updateCount = st.UpdateCount
	case ExecutionFailed, ExecutionCancelled:
		if st.Error != nil {
			e.err = fromBackend(st.Error)
		} else {
			e.err = newError(Cancelled, "Query was cancelled")
		}
	}
	return fresh
}

func (e *execution) fail(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Terminal() {
		return
	}
	e.state = ExecutionFailed
	e.err = err
}

func (e *execution) markCancelled() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Terminal() {
		return
	}
	e.state = ExecutionCancelled
	e.err = newError(Cancelled, "Query was cancelled")
}

func (e *execution) markComplete() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == ExecutionRunning {
		e.state = ExecutionComplete
	}
}

func (e *execution) snapshot() (ExecutionState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state, e.err
}

func (e *execution) operationHandle() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.handle
}

func (e *execution) count() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.updateCount
}

// executionSource feeds a cursor from the rows of an execution.
type executionSource struct {
	backend api.Backend
	exec    *execution
}

func (src *executionSource) fetch(ctx context.Context, max int) ([]api.Row, bool, error) {
	batch, err := src.backend.FetchNext(ctx, src.exec.operationHandle(), max)
	if err != nil {
		return nil, false, fromBackend(err)
	}
	src.exec.markComplete()
	return batch.Rows, batch.EOF, nil
}
