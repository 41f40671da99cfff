package functional_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/ganot/entreate/internal/mcp"
	"github.com/ganot/entreate/internal/testserver"
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

	req, err := http.NewRequest(http.MethodPost, ts.URL("/rpc"), bytes.NewBuffer(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if ts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+ts.Token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 200, got %d. Body: %s", resp.StatusCode, string(bodyBytes))
	}

	var result rpcResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	return result
}

func decodeResult[T any](t *testing.T, resp rpcResponse) T {
	t.Helper()
	require.Nil(t, resp.Error, "unexpected error: %+v", resp.Error)
	var out T
	require.NoError(t, json.Unmarshal(resp.Result, &out))
	return out
}

func TestRPC_EntryWorkflow(t *testing.T) {
	ts := testserver.New(t, testserver.Options{Token: "secret"})

	first := decodeResult[mcp.EntryResponse](t, rpcCall(t, ts, "create_entry", nil))
	require.Equal(t, int64(1), first.ID)
	require.Equal(t, "1/", first.Path)
	require.Equal(t, "Untitled", first.Meta.Title)

	second := decodeResult[mcp.EntryResponse](t, rpcCall(t, ts, "create_entry", nil))
	require.Equal(t, int64(2), second.ID)

	saved := decodeResult[mcp.EntryResponse](t, rpcCall(t, ts, "save_entry", map[string]any{
		"id":         2,
		"title":      "  Second thoughts ",
		"text":       "Some *markdown*.",
		"tags":       []string{"notes", "notes", "go"},
		"visibility": "public",
	}))
	require.Equal(t, "Second thoughts", saved.Meta.Title)
	require.Equal(t, []string{"notes", "go"}, saved.Meta.Tags)

	got := decodeResult[mcp.EntryResponse](t, rpcCall(t, ts, "get_entry", map[string]any{"path": "2/"}))
	require.Equal(t, "Some *markdown*.", got.Text)
	require.Equal(t, "public", string(got.Meta.Visibility))

	list := decodeResult[mcp.ListEntriesResponse](t, rpcCall(t, ts, "list_entries", map[string]any{"limit": 10}))
	require.Len(t, list.Entries, 2)
	require.Equal(t, "2/", list.Entries[0].Path)
	require.Equal(t, "1/", list.Entries[1].Path)

	activity := decodeResult[mcp.ActivityResponse](t, rpcCall(t, ts, "get_recent_activity", map[string]any{"entry_path": "2/"}))
	require.Len(t, activity.Entries, 2)
	require.Equal(t, "entry_saved", string(activity.Entries[0].ActivityType))
}

func TestRPC_Tags(t *testing.T) {
	ts := testserver.New(t, testserver.Options{})

	tags := decodeResult[mcp.TagsResponse](t, rpcCall(t, ts, "list_tags", nil))
	require.Empty(t, tags.Tags)

	tags = decodeResult[mcp.TagsResponse](t, rpcCall(t, ts, "create_tag", map[string]any{"name": "travel"}))
	require.Equal(t, []string{"travel"}, tags.Tags)

	resp := rpcCall(t, ts, "create_tag", map[string]any{"name": "travel"})
	require.NotNil(t, resp.Error)
	require.Equal(t, mcp.CodeTagExists, resp.Error.Data["code"])
}

func TestRPC_Errors(t *testing.T) {
	ts := testserver.New(t, testserver.Options{})

	resp := rpcCall(t, ts, "get_entry", map[string]any{"id": 42})
	require.NotNil(t, resp.Error)
	require.Equal(t, mcp.CodeEntryNotFound, resp.Error.Data["code"])

	resp = rpcCall(t, ts, "get_entry", map[string]any{"path": "../db.json"})
	require.NotNil(t, resp.Error)
	require.Equal(t, mcp.CodeInvalidInput, resp.Error.Data["code"])

	resp = rpcCall(t, ts, "no_such_tool", nil)
	require.NotNil(t, resp.Error)
	require.Equal(t, -32601, resp.Error.Code)
}

func TestREST_RequiresToken(t *testing.T) {
	ts := testserver.New(t, testserver.Options{Token: "secret"})

	resp, err := http.Post(ts.URL("/api/entries"), "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest(http.MethodPost, ts.URL("/api/entries"), nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer wrong")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	req, err = http.NewRequest(http.MethodPost, ts.URL("/api/entries?access_token=secret"), nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created mcp.EntryResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	require.Equal(t, "1/", created.Path)
}

func TestREST_SaveAndFetchByPath(t *testing.T) {
	ts := testserver.New(t, testserver.Options{})

	resp, err := http.Post(ts.URL("/api/entries"), "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	req, err := http.NewRequest(http.MethodPut, ts.URL("/api/entry/1/"), bytes.NewBufferString(`{"title":"Hello","text":"world"}`))
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL("/api/entries/1"))
	require.NoError(t, err)
	defer resp.Body.Close()
	var got mcp.EntryResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Equal(t, "Hello", got.Meta.Title)
	require.Equal(t, "world", got.Text)

	missing, err := http.Get(ts.URL("/api/entries/99"))
	require.NoError(t, err)
	missing.Body.Close()
	require.Equal(t, http.StatusNotFound, missing.StatusCode)
}
