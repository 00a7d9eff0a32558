package driver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"goDBDriver/api"

	"github.com/cockroachdb/errors"
)

// HTTPBackend is an api.Backend talking to a godb-server REST API.
type HTTPBackend struct {
	base   string
	client *http.Client

	mu      sync.Mutex
	schemas map[string][]api.Column
}

var _ api.Backend = (*HTTPBackend)(nil)

// NewHTTPBackend returns a client for the API served at baseURL, for
// example "http://localhost:10000".
func NewHTTPBackend(baseURL string, client *http.Client) *HTTPBackend {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPBackend{
		base:    strings.TrimSuffix(baseURL, "/") + "/1.0",
		client:  client,
		schemas: map[string][]api.Column{},
	}
}

// query sends one request and unwraps the response envelope.
func (b *HTTPBackend) query(ctx context.Context, method, path string, data any) (*api.Response, error) {
	var body io.Reader
	if data != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(data); err != nil {
			return nil, errors.Wrap(err, "encoding request")
		}
		body = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, b.base+path, body)
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var out api.Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, errors.Wrapf(err, "decoding response (HTTP %d)", resp.StatusCode)
	}
	if out.Type == api.ResponseError {
		if out.Error == nil {
			return nil, errors.Newf("server error (HTTP %d)", resp.StatusCode)
		}
		return nil, out.Error
	}
	return &out, nil
}

func (b *HTTPBackend) queryStruct(ctx context.Context, method, path string, data any, target any) error {
	resp, err := b.query(ctx, method, path, data)
	if err != nil {
		return err
	}
	if target == nil {
		return nil
	}
	return errors.Wrap(resp.MetadataAsStruct(target), "decoding metadata")
}

func operationPath(handle string, suffix string) string {
	return "/operations/" + url.PathEscape(handle) + suffix
}

func (b *HTTPBackend) Submit(ctx context.Context, req api.SubmitRequest) (api.Operation, error) {
	var op api.Operation
	if err := b.queryStruct(ctx, http.MethodPost, "/operations", req, &op); err != nil {
		return api.Operation{}, err
	}
	b.mu.Lock()
	b.schemas[op.Handle] = op.Schema
	b.mu.Unlock()
	return op, nil
}

func (b *HTTPBackend) Poll(ctx context.Context, handle string) (api.Status, error) {
	var st api.Status
	err := b.queryStruct(ctx, http.MethodGet, operationPath(handle, ""), nil, &st)
	return st, err
}

func (b *HTTPBackend) Wait(ctx context.Context, handle string) (api.Status, error) {
	var st api.Status
	err := b.queryStruct(ctx, http.MethodGet, operationPath(handle, "/wait"), nil, &st)
	return st, err
}

func (b *HTTPBackend) FetchNext(ctx context.Context, handle string, max int) (api.RowBatch, error) {
	b.mu.Lock()
	schema, ok := b.schemas[handle]
	b.mu.Unlock()
	if !ok {
		return api.RowBatch{}, errors.Mark(errors.Newf("unknown operation %s", handle), api.ErrUnknownOperation)
	}

	var raw api.RawRowBatch
	path := operationPath(handle, "/rows?max="+strconv.Itoa(max))
	if err := b.queryStruct(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return api.RowBatch{}, err
	}

	batch := api.RowBatch{EOF: raw.EOF, Rows: make([]api.Row, len(raw.Rows))}
	for i, cells := range raw.Rows {
		row, err := api.DecodeRow(schema, cells)
		if err != nil {
			return api.RowBatch{}, err
		}
		batch.Rows[i] = row
	}
	return batch, nil
}

func (b *HTTPBackend) Cancel(ctx context.Context, handle string) error {
	return b.queryStruct(ctx, http.MethodPost, operationPath(handle, "/cancel"), nil, nil)
}

func (b *HTTPBackend) CloseOperation(ctx context.Context, handle string) error {
	b.mu.Lock()
	delete(b.schemas, handle)
	b.mu.Unlock()
	return b.queryStruct(ctx, http.MethodDelete, operationPath(handle, ""), nil, nil)
}

func (b *HTTPBackend) ReadLog(ctx context.Context, handle string) (string, error) {
	var lr api.LogResponse
	err := b.queryStruct(ctx, http.MethodGet, operationPath(handle, "/log"), nil, &lr)
	return lr.Log, err
}

func (b *HTTPBackend) ListObjects(ctx context.Context) ([]api.CatalogObject, error) {
	var objs []api.CatalogObject
	err := b.queryStruct(ctx, http.MethodGet, "/catalog/objects", nil, &objs)
	return objs, err
}

func (b *HTTPBackend) Info(ctx context.Context) (api.ServerInfo, error) {
	var info api.ServerInfo
	err := b.queryStruct(ctx, http.MethodGet, "/", nil, &info)
	return info, err
}
