package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type testHandler struct {
	method string
	err    error
}

func (h *testHandler) Handle(_ context.Context, method string, params json.RawMessage) (any, error) {
	h.method = method
	if h.err != nil {
		return nil, h.err
	}
	return map[string]string{"method": method}, nil
}

type codedErr struct{}

func (codedErr) Error() string { return "item not found" }
func (codedErr) RPCCode() int  { return RPCDomainError }
func (codedErr) RPCData() any  { return map[string]string{"code": "ITEM_NOT_FOUND"} }

func postRPC(t *testing.T, url, token, body string) (*http.Response, Response) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url+"/rpc", bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var out Response
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp, out
}

func TestHTTPServer_RPC(t *testing.T) {
	handler := &testHandler{}
	server := httptest.NewServer(NewServer(handler, AuthMiddleware(NewStaticTokens([]string{"token"})), nil))
	t.Cleanup(server.Close)

	resp, out := postRPC(t, server.URL, "token", `{"jsonrpc":"2.0","method":"stats.get","id":1}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "stats.get", handler.method)
	require.Nil(t, out.Error)
	require.Equal(t, map[string]any{"method": "stats.get"}, out.Result)

	resp, _ = postRPC(t, server.URL, "", `{"jsonrpc":"2.0","method":"stats.get","id":2}`)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHTTPServer_RPCErrors(t *testing.T) {
	handler := &testHandler{}
	server := httptest.NewServer(NewServer(handler, nil, nil))
	t.Cleanup(server.Close)

	_, out := postRPC(t, server.URL, "", `{not json`)
	require.Equal(t, RPCParseError, out.Error.Code)

	_, out = postRPC(t, server.URL, "", `{"jsonrpc":"1.0","method":"x","id":1}`)
	require.Equal(t, RPCInvalidRequest, out.Error.Code)
	require.Equal(t, "invalid request", out.Error.Message)
	require.Equal(t, `jsonrpc must be "2.0", got "1.0"`, out.Error.Data)

	handler.err = codedErr{}
	_, out = postRPC(t, server.URL, "", `{"jsonrpc":"2.0","method":"items.toggle","id":3}`)
	require.Equal(t, RPCDomainError, out.Error.Code)
	require.Equal(t, "item not found", out.Error.Message)
	require.Equal(t, map[string]any{"code": "ITEM_NOT_FOUND"}, out.Error.Data)

	handler.err = errors.New("disk on fire")
	_, out = postRPC(t, server.URL, "", `{"jsonrpc":"2.0","method":"items.toggle","id":4}`)
	require.Equal(t, RPCInternalError, out.Error.Code)
}

func TestHTTPServer_HealthIsPublic(t *testing.T) {
	server := httptest.NewServer(NewServer(&testHandler{}, AuthMiddleware(NewStaticTokens([]string{"token"})), nil))
	t.Cleanup(server.Close)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHTTPServer_MountsMCP(t *testing.T) {
	mcp := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})
	server := httptest.NewServer(NewServer(&testHandler{}, nil, mcp))
	t.Cleanup(server.Close)

	resp, err := http.Post(server.URL+"/mcp", "application/json", bytes.NewBufferString(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
}
