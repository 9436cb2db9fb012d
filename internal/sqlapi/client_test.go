package sqlapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/snowbridge/internal/testutil"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(Config{
		Account: "myorg-myaccount",
		BaseURL: srv.URL,
		Defaults: SessionDefaults{
			Warehouse: "COMPUTE_WH",
			Database:  "ANALYTICS",
		},
		HTTPClient: srv.Client(),
		Logger:     testutil.NewTestLogger(t),
	})
}

func TestSubmitMissingToken(t *testing.T) {
	called := false
	client := newTestClient(t, func(_ http.ResponseWriter, _ *http.Request) {
		called = true
	})

	_, err := client.Submit(context.Background(), "select 1", SubmitOptions{})
	require.ErrorIs(t, err, ErrMissingToken)
	assert.False(t, called, "no network call may be attempted without a token")
}

func TestSubmitRequestShape(t *testing.T) {
	var (
		gotAuth    string
		gotBody    map[string]any
		gotReqID   string
		gotContent string
	)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContent = r.Header.Get("Content-Type")
		gotReqID = r.URL.Query().Get("requestId")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(StatementResponse{Code: "090001", StatementHandle: "01b2..."})
	})
	client.SetToken("tok-123")

	_, err := client.Submit(context.Background(), "select * from t", SubmitOptions{
		Schema:  "PUBLIC",
		Timeout: 30 * time.Second,
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Equal(t, "application/json", gotContent)
	assert.NotEmpty(t, gotReqID)

	assert.Equal(t, "select * from t", gotBody["statement"])
	assert.Equal(t, map[string]any{"format": "json"}, gotBody["resultSetMetaData"])
	// Session defaults merged with call overrides.
	assert.Equal(t, "COMPUTE_WH", gotBody["warehouse"])
	assert.Equal(t, "ANALYTICS", gotBody["database"])
	assert.Equal(t, "PUBLIC", gotBody["schema"])
	// Empty session fields are omitted, not sent as nulls.
	_, hasRole := gotBody["role"]
	assert.False(t, hasRole)
	assert.Equal(t, float64(30000), gotBody["timeout"]) // milliseconds
	assert.Equal(t, false, gotBody["asynchronous"])
}

func TestSubmitBinds(t *testing.T) {
	var gotBody map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(StatementResponse{})
	})
	client.SetToken("tok")

	_, err := client.Submit(context.Background(), "select :1, :2", SubmitOptions{
		Binds: map[string]Bind{
			"1": {Type: "FIXED", Value: "42"},
			"2": {Value: "hello"}, // type inferred remotely
		},
	})
	require.NoError(t, err)

	binds, ok := gotBody["binds"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"type": "FIXED", "value": "42"}, binds["1"])
	// Value-only bind omits the type field entirely.
	assert.Equal(t, map[string]any{"value": "hello"}, binds["2"])
}

func TestSubmitAsyncAccepted(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, true, body["asynchronous"])
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(StatementResponse{StatementHandle: "handle-1"})
	})
	client.SetToken("tok")

	resp, err := client.Submit(context.Background(), "call long_proc()", SubmitOptions{Async: true})
	require.NoError(t, err)
	assert.Equal(t, "handle-1", resp.StatementHandle)
}

func TestSubmitErrorStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(StatementResponse{
			Code:    "002003",
			Message: "SQL compilation error: Object 'MISSING' does not exist",
		})
	})
	client.SetToken("tok")

	_, err := client.Submit(context.Background(), "select * from missing", SubmitOptions{})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Equal(t, "002003", apiErr.Code)
	assert.Contains(t, apiErr.Message, "compilation error")
}

func TestSubmitParsesResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(StatementResponse{
			Code:            "090001",
			StatementHandle: "01b2-c3d4",
			ResultSetMetaData: &ResultSetMetaData{
				NumRows: 1,
				Format:  "json",
				RowType: []RowType{{Name: "ID", Type: "FIXED"}},
			},
			Data: [][]*string{{ptr("42")}},
		})
	})
	client.SetToken("tok")

	resp, err := client.Submit(context.Background(), "select 42 as id", SubmitOptions{})
	require.NoError(t, err)
	assert.Equal(t, "01b2-c3d4", resp.StatementHandle)
	require.NotNil(t, resp.ResultSetMetaData)
	assert.Equal(t, int64(1), resp.ResultSetMetaData.NumRows)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "42", *resp.Data[0][0])
}

func TestEndpointHostname(t *testing.T) {
	c := New(Config{Account: "acct"})
	assert.Equal(t, "https://acct.snowflakecomputing.com/api/v2/statements", c.endpoint())

	c = New(Config{Account: "acct", Region: "eu-west-1"})
	assert.Equal(t, "https://acct.eu-west-1.snowflakecomputing.com/api/v2/statements", c.endpoint())
}

func TestTokenRefresh(t *testing.T) {
	c := New(Config{Account: "acct"})
	assert.False(t, c.HasToken())

	c.SetToken("first")
	assert.True(t, c.HasToken())

	c.SetToken("second")
	tok, err := c.bearerToken()
	require.NoError(t, err)
	assert.Equal(t, "second", tok)
}

func ptr(s string) *string { return &s }
