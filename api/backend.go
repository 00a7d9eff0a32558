// Package api holds the types shared between the driver and a query engine,
// and the Backend interface the driver consumes.
package api

import (
	"context"
)

// Backend is the query-engine boundary. An implementation may live in the
// same process or behind a network transport.
type Backend interface {
	// Submit compiles and starts a statement. Compile errors are returned
	// here; on success the operation is RUNNING (or already terminal) and
	// its result schema is known.
	Submit(ctx context.Context, req SubmitRequest) (Operation, error)

	// Poll returns the current status without blocking.
	Poll(ctx context.Context, handle string) (Status, error)

	// Wait blocks until the operation is terminal or ctx is done.
	Wait(ctx context.Context, handle string) (Status, error)

	// FetchNext returns up to max rows. It fails with ErrNotReady while the
	// operation is still running.
	FetchNext(ctx context.Context, handle string, max int) (RowBatch, error)

	// Cancel aborts a running operation.
	Cancel(ctx context.Context, handle string) error

	// CloseOperation releases the operation and its results.
	CloseOperation(ctx context.Context, handle string) error

	// ReadLog returns the operation log accumulated so far.
	ReadLog(ctx context.Context, handle string) (string, error)

	// ListObjects returns every table and view in the catalog.
	ListObjects(ctx context.Context) ([]CatalogObject, error)

	// Info describes the engine.
	Info(ctx context.Context) (ServerInfo, error)
}
