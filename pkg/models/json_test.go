package models

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/romaninsh/surreal.go/internal/codec"
)

func TestJSONDecodeResponse_Result(t *testing.T) {
	env, err := JSONCodec{}.DecodeResponse([]byte(`{"id":7,"result":{"name":"doc"}}`))
	require.NoError(t, err)

	assert.True(t, env.HasID)
	assert.Equal(t, uint64(7), env.ID)
	assert.Nil(t, env.Error)
	assert.JSONEq(t, `{"name":"doc"}`, string(env.Result))
}

func TestJSONDecodeResponse_StringResultStaysValidJSON(t *testing.T) {
	env, err := JSONCodec{}.DecodeResponse([]byte(`{"id":1,"result":"some-token"}`))
	require.NoError(t, err)

	// The raw payload must remain decodable on its own.
	var s string
	require.NoError(t, JSONCodec{}.Unmarshal(env.Result, &s))
	assert.Equal(t, "some-token", s)
}

func TestJSONDecodeResponse_Error(t *testing.T) {
	env, err := JSONCodec{}.DecodeResponse([]byte(`{"id":3,"error":{"code":-32000,"message":"no go"}}`))
	require.NoError(t, err)

	require.NotNil(t, env.Error)
	if diff := cmp.Diff(&codec.RPCError{Code: -32000, Message: "no go"}, env.Error); diff != "" {
		t.Errorf("unexpected error object (-want +got):\n%s", diff)
	}
}

func TestJSONDecodeResponse_NotificationFrameHasNoID(t *testing.T) {
	env, err := JSONCodec{}.DecodeResponse([]byte(`{"result":{"id":"lq-1","action":"CREATE","result":{}}}`))
	require.NoError(t, err)

	assert.False(t, env.HasID)
	assert.NotNil(t, env.Result)
}

func TestJSONDecodeResponse_Garbage(t *testing.T) {
	_, err := JSONCodec{}.DecodeResponse([]byte(`{}`))
	assert.Error(t, err)
}

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339Nano, s)
	require.NoError(t, err)
	return parsed
}

func TestJSONRoundTrip_ModelTypes(t *testing.T) {
	data, err := JSONCodec{}.Marshal(map[string]any{
		"id":   NewRecordID("person", "tobie"),
		"when": CustomDateTime{mustTime(t, "2024-05-17T09:30:15.123456789Z")},
	})
	require.NoError(t, err)

	assert.JSONEq(t, `{"id":"person:tobie","when":"2024-05-17T09:30:15.123456789Z"}`, string(data))
}
