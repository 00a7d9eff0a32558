package api

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestRowJSONRoundTripKeepsTypes(t *testing.T) {
	schema := []Column{
		{Name: "i", Type: TypeBigInt},
		{Name: "f", Type: TypeDouble},
		{Name: "nan", Type: TypeDouble},
		{Name: "s", Type: TypeString},
		{Name: "b", Type: TypeBoolean},
		{Name: "ts", Type: TypeTimestamp},
		{Name: "d", Type: TypeDecimal},
		{Name: "n", Type: TypeInt},
	}
	ts := time.Date(2012, 4, 22, 9, 0, 0, 123000000, time.UTC)
	dec, _, err := apd.NewFromString("12345678901234567890.125")
	require.NoError(t, err)

	row := Row{int64(1) << 60, 2.5, math.NaN(), "x", true, ts, dec, nil}
	data, err := json.Marshal(EncodeRow(row))
	require.NoError(t, err)

	var raw []json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))

	got, err := DecodeRow(schema, raw)
	require.NoError(t, err)
	require.Equal(t, int64(1)<<60, got[0])
	require.Equal(t, 2.5, got[1])
	require.True(t, math.IsNaN(got[2].(float64)))
	require.Equal(t, "x", got[3])
	require.Equal(t, true, got[4])
	require.True(t, ts.Equal(got[5].(time.Time)))
	require.Equal(t, 0, dec.Cmp(got[6].(*apd.Decimal)))
	require.Nil(t, got[7])
}

func TestDecodeRowArityMismatch(t *testing.T) {
	_, err := DecodeRow([]Column{{Name: "a", Type: TypeInt}}, nil)
	require.Error(t, err)
}

func TestRemoteErrorSentinels(t *testing.T) {
	err := error(&RemoteError{Kind: KindNotReady, Message: "still running"})
	require.True(t, errors.Is(err, ErrNotReady))
	require.False(t, errors.Is(err, ErrUnknownOperation))

	re := AsRemoteError(errors.Wrap(ErrUnknownOperation, "handle abc"))
	require.Equal(t, KindUnknown, re.Kind)

	re = AsRemoteError(errors.New("boom"))
	require.Equal(t, KindExecution, re.Kind)
	require.Equal(t, "boom", re.Message)

	require.True(t, StateCancelled.Terminal())
	require.False(t, StateRunning.Terminal())
}
