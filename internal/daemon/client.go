package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/jcdickinson/docdeck/internal/docs"
	"github.com/jcdickinson/docdeck/internal/rpc"
)

// ErrDaemon wraps every non-200 reply from the daemon.
var ErrDaemon = errors.New("daemon error")

type Client struct {
	socketPath string
	httpClient *http.Client
}

func NewClient(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		httpClient: &http.Client{
			Transport: &http.Transport{
				DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
					var d net.Dialer
					return d.DialContext(ctx, "unix", socketPath)
				},
			},
			Timeout: time.Minute, // opening a remote project can be slow
		},
	}
}

// ConnectOrSpawn tries to connect to the daemon, spawning it if necessary.
func ConnectOrSpawn(socketPath string) (*Client, error) {
	client := NewClient(socketPath)

	if client.IsAvailable() {
		return client, nil
	}

	if err := Spawn(); err != nil {
		return nil, fmt.Errorf("spawning daemon: %w", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		time.Sleep(100 * time.Millisecond)
		if client.IsAvailable() {
			return client, nil
		}
	}

	return nil, fmt.Errorf("daemon did not start within 5 seconds")
}

func (c *Client) IsAvailable() bool {
	conn, err := net.DialTimeout("unix", c.socketPath, 100*time.Millisecond)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

func (c *Client) Projects(ctx context.Context) (*rpc.ProjectsResponse, error) {
	var resp rpc.ProjectsResponse
	err := c.do(ctx, http.MethodGet, "/projects", nil, &resp)
	return &resp, err
}

// Open loads a project by title or path. On failure the returned response
// still carries the view with the error page.
func (c *Client) Open(ctx context.Context, project string) (*rpc.ViewResponse, error) {
	var resp rpc.ViewResponse
	err := c.do(ctx, http.MethodPost, "/open", rpc.OpenRequest{Project: project}, &resp)
	return &resp, err
}

func (c *Client) Select(ctx context.Context, id docs.ID) (*rpc.ViewResponse, error) {
	var resp rpc.ViewResponse
	err := c.do(ctx, http.MethodPost, "/select", rpc.SelectRequest{ID: id}, &resp)
	return &resp, err
}

func (c *Client) Next(ctx context.Context) (*rpc.ViewResponse, error) {
	var resp rpc.ViewResponse
	err := c.do(ctx, http.MethodPost, "/next", nil, &resp)
	return &resp, err
}

func (c *Client) Previous(ctx context.Context) (*rpc.ViewResponse, error) {
	var resp rpc.ViewResponse
	err := c.do(ctx, http.MethodPost, "/previous", nil, &resp)
	return &resp, err
}

func (c *Client) Search(ctx context.Context, query string) (*rpc.ViewResponse, error) {
	var resp rpc.ViewResponse
	err := c.do(ctx, http.MethodPost, "/search", rpc.SearchRequest{Query: query}, &resp)
	return &resp, err
}

func (c *Client) Toggle(ctx context.Context, id docs.ID) (*rpc.ViewResponse, error) {
	var resp rpc.ViewResponse
	err := c.do(ctx, http.MethodPost, "/toggle", rpc.SelectRequest{ID: id}, &resp)
	return &resp, err
}

func (c *Client) View(ctx context.Context) (*rpc.ViewResponse, error) {
	var resp rpc.ViewResponse
	err := c.do(ctx, http.MethodGet, "/view", nil, &resp)
	return &resp, err
}

func (c *Client) Section(ctx context.Context, id docs.ID) (*rpc.SectionResponse, error) {
	var resp rpc.SectionResponse
	err := c.do(ctx, http.MethodGet, "/section/"+url.PathEscape(string(id)), nil, &resp)
	return &resp, err
}

func (c *Client) Status(ctx context.Context) (*rpc.StatusResponse, error) {
	var resp rpc.StatusResponse
	err := c.do(ctx, http.MethodGet, "/status", nil, &resp)
	return &resp, err
}

func (c *Client) Shutdown(ctx context.Context) error {
	var resp map[string]string
	return c.do(ctx, http.MethodPost, "/shutdown", nil, &resp)
}

// do sends a request and decodes the reply into result. Error replies are
// decoded too, so view responses survive a failed call.
func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, "http://unix"+path, reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		json.Unmarshal(respBody, result)
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &e) == nil && e.Error != "" {
			return fmt.Errorf("%w: %s", ErrDaemon, e.Error)
		}
		return fmt.Errorf("%w: status %d: %s", ErrDaemon, resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}
