package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNotProvisioned reports that a script name has no deployed code behind
// it. It is the one registry failure the dispatcher recovers from (deploy
// and retry) instead of surfacing.
var ErrNotProvisioned = errors.New("script not provisioned")

// errorHeader is set by the runner on registry-level failures so they can
// be told apart from responses produced by tenant code.
const errorHeader = "X-Registry-Error"

// ScriptInfo describes one deployed script, as reported by the runner.
type ScriptInfo struct {
	ID         string `json:"id"`
	CreatedOn  string `json:"created_on"`
	ModifiedOn string `json:"modified_on"`
}

// Client talks to the script runner service that hosts tenant code. Scripts
// live in a namespace and are addressed by name; deploying to an existing
// name overwrites it.
type Client struct {
	baseURL    string
	namespace  string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, namespace, token string) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		namespace: namespace,
		token:     token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) scriptsURL() string {
	return fmt.Sprintf("%s/namespaces/%s/scripts", c.baseURL, url.PathEscape(c.namespace))
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// PutScript deploys (or overwrites) the named script.
func (c *Client) PutScript(ctx context.Context, name, content string) error {
	u := c.scriptsURL() + "/" + url.PathEscape(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u, strings.NewReader(content))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/javascript")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call script runner: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("script runner returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// DeleteScript removes the named script from the namespace.
func (c *Client) DeleteScript(ctx context.Context, name string) error {
	u := c.scriptsURL() + "/" + url.PathEscape(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call script runner: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("script runner returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// ListScripts returns every deployed script in the namespace.
func (c *Client) ListScripts(ctx context.Context) ([]ScriptInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.scriptsURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call script runner: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("script runner returned status %d: %s", resp.StatusCode, string(body))
	}

	var listResp struct {
		Result []ScriptInfo `json:"result"`
	}
	if err := json.Unmarshal(body, &listResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return listResp.Result, nil
}

// Script returns a handle for the named script. Obtaining a handle never
// fails; a name with no deployed code surfaces ErrNotProvisioned only when
// the handle is invoked.
func (c *Client) Script(name string) *Script {
	return &Script{client: c, name: name}
}

// Script is an invocable handle on one named code unit.
type Script struct {
	client *Client
	name   string
}

func (s *Script) Name() string {
	return s.name
}

// Invoke forwards fwd into the script's execution context and returns the
// context's response. fwd carries the already-rewritten path, query, headers,
// and body; its URL host is ignored. The caller owns the response body.
func (s *Script) Invoke(fwd *http.Request) (*http.Response, error) {
	c := s.client
	u := fmt.Sprintf("%s/%s/invoke%s", c.scriptsURL(), url.PathEscape(s.name), fwd.URL.EscapedPath())

	req, err := http.NewRequestWithContext(fwd.Context(), fwd.Method, u, fwd.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.URL.RawQuery = fwd.URL.RawQuery
	for k, vs := range fwd.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call script runner: %w", err)
	}

	// Registry-level failures carry a marker header; everything else is the
	// tenant script's own response, whatever its status.
	if marker := resp.Header.Get(errorHeader); marker != "" {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		if resp.StatusCode == http.StatusNotFound && marker == "script-not-found" {
			return nil, ErrNotProvisioned
		}
		return nil, fmt.Errorf("script runner error %q, status %d: %s", marker, resp.StatusCode, string(body))
	}
	return resp, nil
}
