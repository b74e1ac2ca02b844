package wire_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stratadb/strata/internal/wire"
)

func TestRequestRoundTripGet(t *testing.T) {
	req := &wire.Request{Kind: wire.RequestGet, Key: []byte("key")}
	got, err := wire.DecodeRequest(wire.EncodeRequest(req))
	require.NoError(t, err)
	require.Equal(t, req.Kind, got.Kind)
	require.Equal(t, req.Key, got.Key)
}

func TestRequestRoundTripSet(t *testing.T) {
	req := &wire.Request{Kind: wire.RequestSet, Key: []byte("key"), Value: []byte("value")}
	got, err := wire.DecodeRequest(wire.EncodeRequest(req))
	require.NoError(t, err)
	require.Equal(t, req.Value, got.Value)
}

func TestResponseRoundTripOkWithValue(t *testing.T) {
	resp := &wire.Response{Status: wire.StatusOk, HasValue: true, Value: []byte("value")}
	got, err := wire.DecodeResponse(wire.EncodeResponse(resp))
	require.NoError(t, err)
	require.True(t, got.HasValue)
	require.Equal(t, resp.Value, got.Value)
}

func TestResponseRoundTripOkWithoutValue(t *testing.T) {
	resp := &wire.Response{Status: wire.StatusOk, HasValue: false}
	got, err := wire.DecodeResponse(wire.EncodeResponse(resp))
	require.NoError(t, err)
	require.False(t, got.HasValue)
}

func TestResponseRoundTripErr(t *testing.T) {
	resp := &wire.Response{Status: wire.StatusErr, Err: "key not found"}
	got, err := wire.DecodeResponse(wire.EncodeResponse(resp))
	require.NoError(t, err)
	require.Equal(t, wire.StatusErr, got.Status)
	require.Equal(t, "key not found", got.Err)
}

func TestFramingRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	req := &wire.Request{Kind: wire.RequestSet, Key: []byte("key"), Value: []byte("value")}
	require.NoError(t, wire.WriteMessage(&buf, wire.EncodeRequest(req)))

	payload, err := wire.ReadMessage(&buf)
	require.NoError(t, err)

	got, err := wire.DecodeRequest(payload)
	require.NoError(t, err)
	require.Equal(t, req.Key, got.Key)
	require.Equal(t, req.Value, got.Value)
}

func TestReadMessageReturnsEOFOnCleanDisconnect(t *testing.T) {
	var buf bytes.Buffer
	_, err := wire.ReadMessage(&buf)
	require.ErrorIs(t, err, io.EOF)
}

func TestReadMessageRejectsOversizedLength(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0xFF, 0xFF, 0xFF, 0xFF})
	_, err := wire.ReadMessage(&buf)
	require.Error(t, err)
}
