package driver

import (
	"context"
	"testing"

	"goDBDriver/internal/server"

	"github.com/stretchr/testify/require"
)

type testEnv struct {
	svc  *server.Service
	gate *server.Gate
	sess *Session
}

func newTestEnv(t *testing.T, opts ...ConnectOption) *testEnv {
	t.Helper()
	gate := server.NewGate()
	svc, err := server.NewEmbedded(server.WithHooks(gate))
	require.NoError(t, err)

	sess := NewSession(svc, opts...)
	t.Cleanup(func() {
		_ = sess.Close()
		svc.Close()
	})
	return &testEnv{svc: svc, gate: gate, sess: sess}
}

func (e *testEnv) exec(t *testing.T, queries ...string) {
	t.Helper()
	stmt, err := e.sess.Statement()
	require.NoError(t, err)
	defer stmt.Close()
	for _, q := range queries {
		_, err := stmt.Execute(context.Background(), q)
		require.NoError(t, err, q)
	}
}

func (e *testEnv) query(t *testing.T, q string) *ResultSet {
	t.Helper()
	stmt, err := e.sess.Statement()
	require.NoError(t, err)
	rs, err := stmt.ExecuteQuery(context.Background(), q)
	require.NoError(t, err, q)
	return rs
}

// collect drains column col of rs as strings.
func collect(t *testing.T, rs *ResultSet, col int) []string {
	t.Helper()
	var out []string
	for {
		ok, err := rs.Next()
		require.NoError(t, err)
		if !ok {
			return out
		}
		v, err := rs.String(col)
		require.NoError(t, err)
		out = append(out, v)
	}
}

func requireCode(t *testing.T, code StatusCode, err error) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, CodeOf(err), "error: %v", err)
}
