package functional_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/rpggio/streamos/internal/app"
	"github.com/rpggio/streamos/internal/domain/item"
	"github.com/rpggio/streamos/internal/testserver"
	"github.com/rpggio/streamos/internal/transport"
	"github.com/stretchr/testify/require"
)

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
	ID      any             `json:"id,omitempty"`
}

type rpcError struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

func postRPC(t *testing.T, ts *testserver.TestServer, token string, body []byte) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+"/rpc", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func rpcCall(t *testing.T, ts *testserver.TestServer, method string, params any) rpcResponse {
	t.Helper()

	payload := map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"id":      1,
	}
	if params != nil {
		payload["params"] = params
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	resp := postRPC(t, ts, ts.Token, body)
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected status 200, got %d: %s", resp.StatusCode, data)
	}

	var out rpcResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestFunctional_Authentication(t *testing.T) {
	ts := testserver.New(t, "token", testserver.Options{})
	body := []byte(`{"jsonrpc":"2.0","method":"stats.get","id":1}`)

	resp := postRPC(t, ts, "", body)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = postRPC(t, ts, "wrong", body)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = postRPC(t, ts, "token", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	health, err := http.Get(ts.Server.URL + "/health")
	require.NoError(t, err)
	defer health.Body.Close()
	require.Equal(t, http.StatusOK, health.StatusCode)
}

func TestFunctional_DailyRoutine(t *testing.T) {
	ts := testserver.New(t, "token", testserver.Options{})

	resp := rpcCall(t, ts, "items.toggle", map[string]any{"list": "agenda", "id": "work"})
	require.Nil(t, resp.Error, "toggle failed: %v", resp.Error)

	resp = rpcCall(t, ts, "items.focus_complete", map[string]any{"list": "agenda", "id": "creative"})
	require.Nil(t, resp.Error, "focus failed: %v", resp.Error)

	resp = rpcCall(t, ts, "items.toggle", map[string]any{"list": "checklist", "id": "mic"})
	require.Nil(t, resp.Error, "checklist failed: %v", resp.Error)

	resp = rpcCall(t, ts, "stats.get", nil)
	require.Nil(t, resp.Error)
	var view app.StatsView
	require.NoError(t, json.Unmarshal(resp.Result, &view))
	require.Equal(t, item.XPWork+item.XPCreative+item.XPFocusBonus, view.Stats.CurrentXP)
	require.Equal(t, 1, view.Stats.Streak)

	resp = rpcCall(t, ts, "activity.list", map[string]any{"limit": 10})
	require.Nil(t, resp.Error)
	var entries []map[string]any
	require.NoError(t, json.Unmarshal(resp.Result, &entries))
	require.NotEmpty(t, entries)
}

func TestFunctional_ErrorShapes(t *testing.T) {
	ts := testserver.New(t, "token", testserver.Options{})

	resp := rpcCall(t, ts, "items.toggle", map[string]any{"list": "tasks", "id": "missing"})
	require.NotNil(t, resp.Error)
	require.Equal(t, transport.RPCDomainError, resp.Error.Code)
	require.Equal(t, "ITEM_NOT_FOUND", resp.Error.Data["code"])

	resp = rpcCall(t, ts, "records.list", nil)
	require.NotNil(t, resp.Error)
	require.Equal(t, transport.RPCMethodNotFound, resp.Error.Code)

	raw := postRPC(t, ts, ts.Token, []byte(`{"jsonrpc":`))
	var parsed rpcResponse
	require.NoError(t, json.NewDecoder(raw.Body).Decode(&parsed))
	require.NotNil(t, parsed.Error)
	require.Equal(t, transport.RPCParseError, parsed.Error.Code)
}
