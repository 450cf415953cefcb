package rpcclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r-near/near-kit-go/pkg/nearrpc"
)

type requestRecorder struct {
	requests  []*nearrpc.Request
	responses []func() (*nearrpc.Response, error)
}

func (rec *requestRecorder) handle(_ context.Context, r *nearrpc.Request) (*nearrpc.Response, error) {
	rec.requests = append(rec.requests, r)
	next := rec.responses[0]
	if len(rec.responses) > 1 {
		rec.responses = rec.responses[1:]
	}
	return next()
}

func respondResult(v any) func() (*nearrpc.Response, error) {
	data, _ := json.Marshal(v)
	return func() (*nearrpc.Response, error) {
		return &nearrpc.Response{JSONRPC: nearrpc.JSONRPCVersion, Result: data}, nil
	}
}

func respondError(cause string) func() (*nearrpc.Response, error) {
	return func() (*nearrpc.Response, error) {
		return &nearrpc.Response{
			JSONRPC: nearrpc.JSONRPCVersion,
			Error: &nearrpc.Error{
				Code:    -32000,
				Message: "handler error",
				Cause:   &nearrpc.ErrorCause{Name: cause},
			},
		}, nil
	}
}

func respondTransportError(err error) func() (*nearrpc.Response, error) {
	return func() (*nearrpc.Response, error) { return nil, err }
}

func testClient(t *testing.T, rec *requestRecorder) *Client {
	t.Helper()
	c, err := New("http://localhost:1", Options{
		InitialBackoff: time.Microsecond,
		MaxBackoff:     time.Millisecond,
	})
	require.NoError(t, err)
	c.requestF = rec.handle
	return c
}

func TestNewValidatesEndpoint(t *testing.T) {
	_, err := New("ftp://node.example.com", Options{})
	require.Error(t, err)

	c, err := New("https://rpc.testnet.near.org", Options{})
	require.NoError(t, err)
	assert.Equal(t, "https://rpc.testnet.near.org", c.Endpoint())
	c.Close()
}

func TestCallSuccess(t *testing.T) {
	rec := &requestRecorder{responses: []func() (*nearrpc.Response, error){
		respondResult(map[string]any{"gas_price": "100000000"}),
	}}
	c := testClient(t, rec)

	var out struct {
		GasPrice string `json:"gas_price"`
	}
	require.NoError(t, c.Call(context.Background(), "gas_price", nil, &out))
	assert.Equal(t, "100000000", out.GasPrice)

	require.Len(t, rec.requests, 1)
	assert.Equal(t, nearrpc.JSONRPCVersion, rec.requests[0].JSONRPC)
	assert.Equal(t, "gas_price", rec.requests[0].Method)
	// Nil params are replaced with an empty object, never null.
	assert.Equal(t, struct{}{}, rec.requests[0].Params)
}

func TestCallRequestIDsAreMonotonic(t *testing.T) {
	rec := &requestRecorder{responses: []func() (*nearrpc.Response, error){
		respondResult("ok"),
	}}
	c := testClient(t, rec)

	for i := 0; i < 3; i++ {
		require.NoError(t, c.Call(context.Background(), "status", nil, nil))
	}
	require.Len(t, rec.requests, 3)
	for i, r := range rec.requests {
		assert.EqualValues(t, i+1, r.ID)
	}
}

func TestCloneReseedsRequestIDs(t *testing.T) {
	rec := &requestRecorder{responses: []func() (*nearrpc.Response, error){
		respondResult("ok"),
	}}
	c := testClient(t, rec)
	require.NoError(t, c.Call(context.Background(), "status", nil, nil))
	require.NoError(t, c.Call(context.Background(), "status", nil, nil))

	clone := c.Clone()
	clone.requestF = rec.handle
	require.NoError(t, clone.Call(context.Background(), "status", nil, nil))

	require.Len(t, rec.requests, 3)
	assert.EqualValues(t, 2, rec.requests[1].ID)
	// The clone starts its own sequence from scratch.
	assert.EqualValues(t, 1, rec.requests[2].ID)
	assert.Equal(t, c.Endpoint(), clone.Endpoint())
}

func TestCallNonRetryableErrorReturnsImmediately(t *testing.T) {
	rec := &requestRecorder{responses: []func() (*nearrpc.Response, error){
		respondError(nearrpc.CauseUnknownAccount),
	}}
	c := testClient(t, rec)

	err := c.Call(context.Background(), "query", nil, nil)
	var acc *nearrpc.AccountNotFoundError
	require.ErrorAs(t, err, &acc)
	assert.Len(t, rec.requests, 1)
}

func TestCallRetriesTimeoutsUntilExhausted(t *testing.T) {
	rec := &requestRecorder{responses: []func() (*nearrpc.Response, error){
		respondError(nearrpc.CauseTimeout),
	}}
	c := testClient(t, rec)

	err := c.Call(context.Background(), "tx", nil, nil)
	require.ErrorIs(t, err, ErrRetriesExhausted)
	var timeout *nearrpc.RequestTimeoutError
	require.ErrorAs(t, err, &timeout)
	// The first attempt plus MaxRetries more.
	assert.Len(t, rec.requests, defaultMaxRetries+1)
}

func TestCallRecoversAfterTransientFailures(t *testing.T) {
	rec := &requestRecorder{responses: []func() (*nearrpc.Response, error){
		respondTransportError(errors.New("connection refused")),
		respondTransportError(&httpError{status: http.StatusBadGateway}),
		respondResult("recovered"),
	}}
	c := testClient(t, rec)

	var out string
	require.NoError(t, c.Call(context.Background(), "status", nil, &out))
	assert.Equal(t, "recovered", out)
	assert.Len(t, rec.requests, 3)
}

func TestCallDoesNotRetryClientHTTPStatus(t *testing.T) {
	rec := &requestRecorder{responses: []func() (*nearrpc.Response, error){
		respondTransportError(&httpError{status: http.StatusNotFound}),
	}}
	c := testClient(t, rec)

	err := c.Call(context.Background(), "status", nil, nil)
	var httpErr *httpError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.status)
	assert.Len(t, rec.requests, 1)
}

func TestCallDisableRetries(t *testing.T) {
	rec := &requestRecorder{responses: []func() (*nearrpc.Response, error){
		respondError(nearrpc.CauseTimeout),
	}}
	c, err := New("http://localhost:1", Options{DisableRetries: true})
	require.NoError(t, err)
	c.requestF = rec.handle

	err = c.Call(context.Background(), "tx", nil, nil)
	require.ErrorIs(t, err, ErrRetriesExhausted)
	assert.Len(t, rec.requests, 1)
}

func TestCallHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	rec := &requestRecorder{responses: []func() (*nearrpc.Response, error){
		func() (*nearrpc.Response, error) {
			cancel()
			return nil, errors.New("connection reset")
		},
	}}
	c := testClient(t, rec)

	err := c.Call(ctx, "status", nil, nil)
	require.Error(t, err)
	assert.Len(t, rec.requests, 1)
}

func TestBackoffDoublesAndCaps(t *testing.T) {
	c, err := New("http://localhost:1", Options{
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     3 * time.Second,
	})
	require.NoError(t, err)

	assert.Equal(t, 500*time.Millisecond, c.backoff(0))
	assert.Equal(t, time.Second, c.backoff(1))
	assert.Equal(t, 2*time.Second, c.backoff(2))
	assert.Equal(t, 3*time.Second, c.backoff(3))
	assert.Equal(t, 3*time.Second, c.backoff(10))
}

func TestMakeHTTPRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req nearrpc.Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		switch req.Method {
		case "status":
			w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"chain_id":"testnet"}}`))
		case "down":
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("upstream unavailable"))
		default:
			// A JSON-RPC error delivered over HTTP 200.
			w.Write([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32601,"message":"Method not found"}}`))
		}
	}))
	defer srv.Close()

	c, err := New(srv.URL, Options{})
	require.NoError(t, err)

	raw, err := c.makeHTTPRequest(context.Background(), nearrpc.NewRequest(1, "status", struct{}{}))
	require.NoError(t, err)
	require.Nil(t, raw.Error)
	assert.JSONEq(t, `{"chain_id":"testnet"}`, string(raw.Result))

	// Non-JSON body on an error status surfaces the status code.
	_, err = c.makeHTTPRequest(context.Background(), nearrpc.NewRequest(2, "down", struct{}{}))
	var httpErr *httpError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusServiceUnavailable, httpErr.status)
	assert.True(t, transportRetryable(err))

	raw, err = c.makeHTTPRequest(context.Background(), nearrpc.NewRequest(3, "bogus", struct{}{}))
	require.NoError(t, err)
	require.NotNil(t, raw.Error)
	assert.EqualValues(t, -32601, raw.Error.Code)
}
