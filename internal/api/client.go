package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Authenticator supplies bearer tokens and reacts to their rejection.
type Authenticator interface {
	// AccessToken returns the current access token, or "" when signed out.
	AccessToken() string

	// Refresh obtains a new access token using the refresh token.
	Refresh(ctx context.Context) error

	// Expire tears the session down after an unrecoverable 401.
	Expire()
}

// Client is a thin HTTP client for the platform REST API. It injects the
// bearer token, performs a single refresh-and-retry on HTTP 401 and
// decodes JSON responses. Nothing else is retried.
type Client struct {
	baseURL    string
	httpClient *http.Client
	auth       Authenticator
}

// NewClient creates a client rooted at baseURL
// (e.g. https://visas.example.com/api).
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// UseAuth attaches the session authenticator. Must be called before the
// client is shared between goroutines.
func (c *Client) UseAuth(a Authenticator) {
	c.auth = a
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// request describes a single API call.
type request struct {
	method    string
	path      string
	body      any
	result    any
	anonymous bool
}

// Get performs an authenticated GET and unmarshals the JSON response.
func (c *Client) Get(ctx context.Context, path string, result any) error {
	return c.do(ctx, request{method: http.MethodGet, path: path, result: result})
}

// Post performs an authenticated POST with a JSON body and unmarshals
// the JSON response. body and result may be nil.
func (c *Client) Post(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, request{method: http.MethodPost, path: path, body: body, result: result})
}

// do sends the request, refreshing the access token once on 401.
func (c *Client) do(ctx context.Context, r request) error {
	status, respBody, err := c.send(ctx, r)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized {
		if r.anonymous || c.auth == nil {
			return &AuthError{
				Method: r.method,
				Path:   r.path,
				Err:    errors.New(UserMessage(newAPIError(status, r, respBody))),
			}
		}

		if refreshErr := c.auth.Refresh(ctx); refreshErr != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			slog.Warn("Token refresh failed, ending session",
				slog.String("path", r.path), slog.String("error", refreshErr.Error()))
			c.auth.Expire()
			return &AuthError{
				Method: r.method,
				Path:   r.path,
				Err:    fmt.Errorf("%w: refresh: %v", ErrSessionExpired, refreshErr),
			}
		}

		status, respBody, err = c.send(ctx, r)
		if err != nil {
			return err
		}
		if status == http.StatusUnauthorized {
			c.auth.Expire()
			return &AuthError{Method: r.method, Path: r.path, Err: ErrSessionExpired}
		}
	}

	if status < 200 || status >= 300 {
		return newAPIError(status, r, respBody)
	}

	// No content to parse (e.g. 204).
	if r.result == nil || status == http.StatusNoContent || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}

	if err := json.Unmarshal(respBody, r.result); err != nil {
		return fmt.Errorf("unmarshaling response from %s %s: %w", r.method, r.path, err)
	}

	return nil
}

// send performs one HTTP round trip and returns the status and body.
func (c *Client) send(ctx context.Context, r request) (int, []byte, error) {
	var bodyReader io.Reader
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return 0, nil, fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, bodyReader)
	if err != nil {
		return 0, nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if !r.anonymous && c.auth != nil {
		if token := c.auth.AccessToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, nil, ctxErr
		}
		return 0, nil, &TransportError{Method: r.method, Path: r.path, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &TransportError{
			Method: r.method,
			Path:   r.path,
			Err:    fmt.Errorf("reading response body: %w", err),
		}
	}

	return resp.StatusCode, respBody, nil
}

func newAPIError(status int, r request, body []byte) *APIError {
	apiErr := &APIError{
		Status: status,
		Method: r.method,
		Path:   r.path,
		Body:   string(body),
	}
	var payload map[string]any
	if json.Unmarshal(body, &payload) == nil {
		apiErr.Payload = payload
	}
	return apiErr
}
