package server

import (
	"context"
	"sync"

	"goDBDriver/api"
	"goDBDriver/internal/engine"
	"goDBDriver/internal/logger"

	"github.com/sirupsen/logrus"
)

// operation is one submitted statement and its results.
type operation struct {
	id   string
	sql  string
	conf map[string]string

	log    *opLog
	logger *logrus.Entry
	trace  logger.Logger

	done   chan struct{}
	cancel context.CancelFunc

	mu           sync.Mutex
	state        api.OperationState
	hasResultSet bool
	schema       []api.Column
	rows         []api.Row
	cursor       int
	updateCount  int64
	warnings     []string
	err          *api.RemoteError
}

func (op *operation) info(msg string) {
	op.logger.Info(msg)
	op.trace.Debug(msg)
}

func (op *operation) status() api.Status {
	op.mu.Lock()
	defer op.mu.Unlock()

	st := api.Status{
		Handle:       op.id,
		State:        op.state,
		HasResultSet: op.hasResultSet,
		UpdateCount:  op.updateCount,
		Error:        op.err,
	}
	if len(op.warnings) > 0 {
		st.Warnings = append([]string(nil), op.warnings...)
	}
	return st
}

// finish records the outcome of a run. It is a no-op once the operation is
// terminal, which is the case after a cancel.
func (op *operation) finish(res *engine.Result, err error) {
	op.mu.Lock()
	defer op.mu.Unlock()

	if op.state.Terminal() {
		return
	}

	if err != nil {
		op.state = api.StateFailed
		op.err = classify(err)
		op.logger.Error("FAILED: " + op.err.Message)
		op.trace.Debug("operation failed", logger.Ctx{"err": op.err.Message})
		close(op.done)
		return
	}

	if op.hasResultSet {
		op.rows = make([]api.Row, len(res.Rows))
		for i, r := range res.Rows {
			row := make(api.Row, len(r))
			for j, v := range r {
				row[j] = v.Native()
			}
			op.rows[i] = row
		}
		op.updateCount = -1
	} else {
		op.updateCount = res.RowsAffected
	}
	op.warnings = append(op.warnings, res.Warnings...)
	for _, w := range res.Warnings {
		op.logger.Warn(w)
	}

	op.state = api.StateComplete
	op.info("Execution completed successfully")
	close(op.done)
}

// abort moves a running operation to CANCELLED.
func (op *operation) abort() {
	op.mu.Lock()
	defer op.mu.Unlock()

	if op.state.Terminal() {
		return
	}
	op.state = api.StateCancelled
	op.err = &api.RemoteError{Kind: api.KindCancelled, Message: "Operation cancelled"}
	op.info("Operation cancelled")
	op.cancel()
	close(op.done)
}

// fetch hands out the next batch of rows.
func (op *operation) fetch(max int) (api.RowBatch, error) {
	op.mu.Lock()
	defer op.mu.Unlock()

	switch op.state {
	case api.StateRunning:
		return api.RowBatch{}, api.ErrNotReady
	case api.StateFailed, api.StateCancelled:
		return api.RowBatch{}, op.err
	}

	if max <= 0 {
		max = len(op.rows) - op.cursor
	}
	end := op.cursor + max
	if end > len(op.rows) {
		end = len(op.rows)
	}
	batch := api.RowBatch{Rows: op.rows[op.cursor:end]}
	op.cursor = end
	batch.EOF = op.cursor >= len(op.rows)
	return batch, nil
}
