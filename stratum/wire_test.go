package stratum

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResponseIsNotification(t *testing.T) {
	var notify Response
	require.NoError(t, json.Unmarshal([]byte(`{"id":null,"method":"mining.notify","params":[]}`), &notify))
	require.True(t, notify.IsNotification())

	var reply Response
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"result":true,"error":null}`), &reply))
	require.False(t, reply.IsNotification())
}

func TestResponseIsErrorIgnoresNullError(t *testing.T) {
	var r Response
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"result":null,"error":null}`), &r))
	require.False(t, r.IsError())
	require.Equal(t, "", r.ErrorString())

	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"result":null,"error":[20,"unauthorized",null]}`), &r))
	require.True(t, r.IsError())
	require.Equal(t, `[20,"unauthorized",null]`, r.ErrorString())
}

func TestRequestMarshalsFixedIDsAndParams(t *testing.T) {
	req := Request{ID: IDSubmit, Method: MethodSubmit, Params: []any{"account.worker1", "job-1", "ex2", "time", "nonce"}}
	out, err := json.Marshal(req)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(out, &got))
	require.EqualValues(t, IDSubmit, got["id"])
	require.Equal(t, MethodSubmit, got["method"])
	require.Equal(t, []any{"account.worker1", "job-1", "ex2", "time", "nonce"}, got["params"])
}
