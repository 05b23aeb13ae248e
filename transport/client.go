package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vigilo-home/vigilo/session"
)

// ErrTransport marks failures reaching or reading from the backend, as
// opposed to errors the backend itself reported.
var ErrTransport = errors.New("transport error")

// Client identity strings the backend expects from the web/native app.
const (
	AppID  = "OWI______________________"
	CallBy = "OWI_10"
)

// GraphQLError is a single entry of a GraphQL error response.
type GraphQLError struct {
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

func (e GraphQLError) Error() string {
	return e.Message
}

// Response is a decoded GraphQL envelope. Data holds one raw message per
// top-level query field.
type Response struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []GraphQLError             `json:"errors"`
}

// Err returns the first backend-reported error, or nil.
func (r *Response) Err() error {
	if len(r.Errors) > 0 {
		return r.Errors[0]
	}
	return nil
}

// Decode unmarshals the named top-level field into v.
func (r *Response) Decode(field string, v any) error {
	raw, ok := r.Data[field]
	if !ok || bytes.Equal(raw, []byte("null")) {
		return fmt.Errorf("response has no %s data", field)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", field, err)
	}
	return nil
}

// Client posts GraphQL operations to the alarm backend.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a transport client for the given endpoint.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Endpoint returns the configured backend URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Execute posts a single GraphQL operation. headers are sent verbatim on top
// of the defaults; pass SessionHeaders output for authenticated calls.
func (c *Client) Execute(ctx context.Context, query string, variables map[string]any, headers map[string]string) (*Response, error) {
	payload := map[string]any{"query": query}
	if variables != nil {
		payload["variables"] = variables
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("App", `{"appVersion":"10.154.0","origin":"native"}`)
	req.Header.Set("Extension", `{"mode":"full"}`)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrTransport, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: backend returned status %d", ErrTransport, resp.StatusCode)
	}

	var out Response
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrTransport, err)
	}
	return &out, nil
}

// SessionHeaders builds the auth header set for an authenticated call.
// Callers append installation-scoped headers (numinst, panel, X-Capabilities)
// when the operation targets a specific panel.
func SessionHeaders(token string, data session.Data) map[string]string {
	auth := map[string]any{
		"loginTimestamp": data.LoginTime.UnixMilli(),
		"user":           data.User,
		"id":             AppID,
		"country":        data.Country,
		"lang":           data.Lang,
		"callby":         CallBy,
		"hash":           token,
	}
	raw, _ := json.Marshal(auth)
	return map[string]string{"auth": string(raw)}
}

// InstallationHeaders returns the panel-scoped headers added on alarm and
// camera operations.
func InstallationHeaders(installationID, panel, capabilities string) map[string]string {
	h := map[string]string{
		"numinst": installationID,
		"panel":   panel,
	}
	if capabilities != "" {
		h["X-Capabilities"] = capabilities
	}
	return h
}
