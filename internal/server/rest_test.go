package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"goDBDriver/api"
	"goDBDriver/internal/logger"

	"github.com/stretchr/testify/require"
)

func doRequest(t *testing.T, h http.Handler, method, path string, body any) (int, api.Response) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp api.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec.Code, resp
}

func TestRESTSubmitWaitFetch(t *testing.T) {
	s := newTestService(t)
	h := NewHandler(s, logger.Nop())

	code, resp := doRequest(t, h, http.MethodPost, "/1.0/operations", api.SubmitRequest{SQL: "SELECT 1 AS one, 'x'"})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, api.ResponseSync, resp.Type)

	var op api.Operation
	require.NoError(t, resp.MetadataAsStruct(&op))
	require.True(t, op.HasResultSet)

	code, resp = doRequest(t, h, http.MethodGet, "/1.0/operations/"+op.Handle+"/wait", nil)
	require.Equal(t, http.StatusOK, code)
	var st api.Status
	require.NoError(t, resp.MetadataAsStruct(&st))
	require.Equal(t, api.StateComplete, st.State)

	code, resp = doRequest(t, h, http.MethodGet, "/1.0/operations/"+op.Handle+"/rows?max=10", nil)
	require.Equal(t, http.StatusOK, code)
	var batch api.RawRowBatch
	require.NoError(t, resp.MetadataAsStruct(&batch))
	require.True(t, batch.EOF)
	row, err := api.DecodeRow(op.Schema, batch.Rows[0])
	require.NoError(t, err)
	require.Equal(t, api.Row{int64(1), "x"}, row)

	code, resp = doRequest(t, h, http.MethodGet, "/1.0/operations/"+op.Handle+"/log", nil)
	require.Equal(t, http.StatusOK, code)
	var lr api.LogResponse
	require.NoError(t, resp.MetadataAsStruct(&lr))
	require.Contains(t, lr.Log, "Execution completed successfully")

	code, _ = doRequest(t, h, http.MethodDelete, "/1.0/operations/"+op.Handle, nil)
	require.Equal(t, http.StatusOK, code)
}

func TestRESTErrors(t *testing.T) {
	s := newTestService(t)
	h := NewHandler(s, logger.Nop())

	code, resp := doRequest(t, h, http.MethodPost, "/1.0/operations", api.SubmitRequest{SQL: "SELECTT 1"})
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, api.ResponseError, resp.Type)
	require.Equal(t, api.KindSyntax, resp.Error.Kind)

	code, resp = doRequest(t, h, http.MethodGet, "/1.0/operations/does-not-exist", nil)
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, api.KindUnknown, resp.Error.Kind)

	code, resp = doRequest(t, h, http.MethodGet, "/1.0/operations/x/rows?max=-1", nil)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, api.KindSyntax, resp.Error.Kind)
}

func TestRESTInfoAndCatalog(t *testing.T) {
	s := newTestService(t)
	runSync(t, s, "CREATE TABLE t (a INT)")
	h := NewHandler(s, logger.Nop())

	code, resp := doRequest(t, h, http.MethodGet, "/1.0", nil)
	require.Equal(t, http.StatusOK, code)
	var info api.ServerInfo
	require.NoError(t, resp.MetadataAsStruct(&info))
	require.Equal(t, ProductName, info.ProductName)

	code, resp = doRequest(t, h, http.MethodGet, "/1.0/catalog/objects", nil)
	require.Equal(t, http.StatusOK, code)
	var objs []api.CatalogObject
	require.NoError(t, resp.MetadataAsStruct(&objs))
	require.Len(t, objs, 1)
	require.Equal(t, "t", objs[0].Name)
}
