package appsscript

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"bookings/internal/remote"
)

func newTestCaller(t *testing.T, h http.HandlerFunc) *Caller {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(context.Background(), "script-123",
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return c
}

func TestCallRunsFunctionWithParams(t *testing.T) {
	var gotPath string
	var gotReq struct {
		Function   string           `json:"function"`
		Parameters []map[string]any `json:"parameters"`
	}
	c := newTestCaller(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_, _ = w.Write([]byte(`{"done": true, "response": {"@type": "type.googleapis.com/google.apps.script.v1.ExecutionResponse", "result": {"success": true, "data": [1, 2]}}}`))
	})

	env, err := c.Call(context.Background(), remote.OpRecordPayment, remote.Params{"id": 3, "amount": 150.0})
	require.NoError(t, err)
	assert.True(t, env.Success)
	assert.JSONEq(t, `[1, 2]`, string(env.Data))
	assert.Equal(t, "/v1/scripts/script-123:run", gotPath)
	assert.Equal(t, "recordPayment", gotReq.Function)
	require.Len(t, gotReq.Parameters, 1)
	assert.Equal(t, float64(3), gotReq.Parameters[0]["id"])
}

func TestCallSurfacesScriptException(t *testing.T) {
	c := newTestCaller(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"done": true, "error": {"code": 3, "message": "ScriptError", "details": [{"@type": "type.googleapis.com/google.apps.script.v1.ExecutionError", "errorMessage": "Sheet not found", "errorType": "Exception"}]}}`))
	})
	_, err := c.Call(context.Background(), remote.OpGetBookings, nil)
	assert.ErrorContains(t, err, "Sheet not found")
}

func TestCallWithoutResult(t *testing.T) {
	c := newTestCaller(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"done": true, "response": {}}`))
	})
	_, err := c.Call(context.Background(), remote.OpGetUsers, nil)
	assert.ErrorContains(t, err, "no result")
}

func TestNewRequiresScriptID(t *testing.T) {
	_, err := New(context.Background(), "", option.WithoutAuthentication())
	assert.Error(t, err)
}
