// Package sqlapi provides a client for the Snowflake SQL REST API
// (/api/v2/statements). It is a passthrough request/response shaper: it
// builds the statement body from session defaults and call overrides, sends
// it with bearer authentication, and parses the JSON response. Retry,
// backoff, and timeout enforcement are delegated to the remote service and
// the underlying HTTP client.
package sqlapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrMissingToken is returned when Submit is invoked before a bearer token
// was set. It is surfaced before any network call is attempted.
var ErrMissingToken = errors.New("bearer token not set")

// DefaultTimeout is the statement timeout sent when none is configured.
const DefaultTimeout = 60 * time.Second

// SessionDefaults holds the session context merged into every statement
// request. Empty fields are omitted from the request body and resolved by
// the remote service.
type SessionDefaults struct {
	Warehouse string
	Database  string
	Schema    string
	Role      string
}

// Config configures a Client.
type Config struct {
	// Account is the Snowflake account identifier.
	Account string

	// Region is the optional account region, joined into the hostname.
	Region string

	// BaseURL overrides the account-derived endpoint. Used in tests.
	BaseURL string

	// Defaults is the session context merged into every request.
	Defaults SessionDefaults

	// Timeout is the statement timeout; DefaultTimeout when zero.
	Timeout time.Duration

	// HTTPClient is the underlying client; http.DefaultClient when nil.
	HTTPClient *http.Client

	// Logger for request tracing; discard when nil.
	Logger *slog.Logger
}

// Client submits statements to the Snowflake SQL REST API.
// The bearer token is set (and refreshed) explicitly via SetToken and held
// only in memory, never persisted.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger

	tokenMu sync.RWMutex
	token   string
}

// New creates a SQL API client.
func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{cfg: cfg, httpClient: httpClient, logger: logger}
}

// SetToken sets or refreshes the bearer token used for authentication.
func (c *Client) SetToken(token string) {
	c.tokenMu.Lock()
	c.token = token
	c.tokenMu.Unlock()
}

// HasToken reports whether a bearer token is set.
func (c *Client) HasToken() bool {
	c.tokenMu.RLock()
	defer c.tokenMu.RUnlock()
	return c.token != ""
}

func (c *Client) bearerToken() (string, error) {
	c.tokenMu.RLock()
	defer c.tokenMu.RUnlock()
	if c.token == "" {
		return "", ErrMissingToken
	}
	return c.token, nil
}

// Bind is a single bind parameter. When Type is empty only the value is
// sent and the remote service infers the type.
type Bind struct {
	Type  string `json:"type,omitempty"`
	Value string `json:"value"`
}

// SubmitOptions holds per-call overrides for a statement submission.
// Non-empty session fields override the client's defaults.
type SubmitOptions struct {
	Warehouse string
	Database  string
	Schema    string
	Role      string
	Timeout   time.Duration
	Async     bool
	Binds     map[string]Bind
}

// statementRequest is the JSON body posted to /api/v2/statements.
// Empty session fields are omitted rather than sent as nulls.
type statementRequest struct {
	Statement         string            `json:"statement"`
	ResultSetMetaData resultSetFormat   `json:"resultSetMetaData"`
	Warehouse         string            `json:"warehouse,omitempty"`
	Database          string            `json:"database,omitempty"`
	Schema            string            `json:"schema,omitempty"`
	Role              string            `json:"role,omitempty"`
	Timeout           int64             `json:"timeout"` // milliseconds
	Asynchronous      bool              `json:"asynchronous"`
	Binds             map[string]Bind   `json:"binds,omitempty"`
}

type resultSetFormat struct {
	Format string `json:"format"`
}

// RowType describes one column of a statement result.
type RowType struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
}

// ResultSetMetaData describes the shape of a statement result.
type ResultSetMetaData struct {
	NumRows int64     `json:"numRows"`
	Format  string    `json:"format"`
	RowType []RowType `json:"rowType"`
}

// StatementResponse is the parsed SQL API response envelope.
type StatementResponse struct {
	Code              string             `json:"code"`
	SQLState          string             `json:"sqlState"`
	Message           string             `json:"message"`
	StatementHandle   string             `json:"statementHandle"`
	CreatedOn         int64              `json:"createdOn"`
	ResultSetMetaData *ResultSetMetaData `json:"resultSetMetaData"`
	Data              [][]*string        `json:"data"`
}

// APIError is returned when the SQL API answers with a non-success status.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sql api request failed (HTTP %d, code %s): %s", e.StatusCode, e.Code, e.Message)
}

// endpoint returns the statements URL for the configured account.
func (c *Client) endpoint() string {
	if c.cfg.BaseURL != "" {
		return c.cfg.BaseURL + "/api/v2/statements"
	}
	host := c.cfg.Account
	if c.cfg.Region != "" {
		host += "." + c.cfg.Region
	}
	return fmt.Sprintf("https://%s.snowflakecomputing.com/api/v2/statements", host)
}

// buildRequest merges session defaults with call overrides, omitting empty
// fields so the remote service resolves them.
func (c *Client) buildRequest(stmt string, opts SubmitOptions) statementRequest {
	pick := func(override, def string) string {
		if override != "" {
			return override
		}
		return def
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = c.cfg.Timeout
	}
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return statementRequest{
		Statement:         stmt,
		ResultSetMetaData: resultSetFormat{Format: "json"},
		Warehouse:         pick(opts.Warehouse, c.cfg.Defaults.Warehouse),
		Database:          pick(opts.Database, c.cfg.Defaults.Database),
		Schema:            pick(opts.Schema, c.cfg.Defaults.Schema),
		Role:              pick(opts.Role, c.cfg.Defaults.Role),
		Timeout:           timeout.Milliseconds(),
		Asynchronous:      opts.Async,
		Binds:             opts.Binds,
	}
}

// Submit posts a statement to the SQL API and returns the parsed response.
// A bearer token must be set beforehand; ErrMissingToken is returned before
// any network call otherwise.
func (c *Client) Submit(ctx context.Context, stmt string, opts SubmitOptions) (*StatementResponse, error) {
	token, err := c.bearerToken()
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(c.buildRequest(stmt, opts))
	if err != nil {
		return nil, fmt.Errorf("failed to encode statement request: %w", err)
	}

	requestID := uuid.New().String()
	url := c.endpoint() + "?requestId=" + requestID

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build statement request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "snowbridge")

	c.logger.Debug("submitting statement",
		slog.String("request_id", requestID),
		slog.Bool("async", opts.Async))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("statement submission failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read statement response: %w", err)
	}

	var parsed StatementResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse statement response: %w", err)
	}

	// 202 is a successful asynchronous submission.
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Code:       parsed.Code,
			Message:    parsed.Message,
		}
	}

	return &parsed, nil
}
