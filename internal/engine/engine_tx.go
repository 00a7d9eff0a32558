package engine

import (
	"goDBDriver/internal/storage"

	"github.com/cockroachdb/errors"
)

// withTx runs fn inside a one-off storage transaction, committing on success
// and rolling back on failure.
func (e *DBEngine) withTx(readOnly bool, fn func(tx storage.Tx) error) error {
	tx, err := e.store.Begin(readOnly)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}

	if err := fn(tx); err != nil {
		_ = e.store.Rollback(tx)
		return err
	}

	if err := e.store.Commit(tx); err != nil {
		return errors.Wrap(err, "commit")
	}
	return nil
}
