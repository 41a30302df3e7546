package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/sync/singleflight"
)

// ErrFetch is wrapped by every error caused by a missing, unreachable or
// malformed document.
var ErrFetch = errors.New("fetch failed")

const userAgent = "docdeck/0.1.0"

// Fetcher retrieves JSON documents by URI.
type Fetcher interface {
	Fetch(ctx context.Context, uri string) ([]byte, error)
}

// Client fetches documents over HTTP(S) or from the local filesystem.
// Documents ending in ".zst", and responses with Content-Encoding zstd, are
// decompressed. Concurrent requests for the same URI share one fetch.
type Client struct {
	httpClient *http.Client
	group      singleflight.Group
}

func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{httpClient: &http.Client{Timeout: timeout}}
}

// Fetch returns the document at uri. The shared fetch is detached from ctx so
// one caller giving up does not fail the others; the client timeout still
// bounds it.
func (c *Client) Fetch(ctx context.Context, uri string) ([]byte, error) {
	ch := c.group.DoChan(uri, func() (interface{}, error) {
		return c.fetch(context.WithoutCancel(ctx), uri)
	})
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %s: %w", ErrFetch, uri, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

func (c *Client) fetch(ctx context.Context, uri string) ([]byte, error) {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme == "" || u.Scheme == "file" || len(u.Scheme) == 1 {
		return c.readFile(uri)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q in %s", ErrFetch, u.Scheme, uri)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", uri, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching %s: %v", ErrFetch, uri, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: %s returned %d: %s", ErrFetch, uri, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	compressed := resp.Header.Get("Content-Encoding") == "zstd" || strings.HasSuffix(u.Path, ".zst")
	return readBody(resp.Body, compressed, uri)
}

func (c *Client) readFile(uri string) ([]byte, error) {
	path := strings.TrimPrefix(uri, "file://")
	f, err := os.Open(filepath.FromSlash(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer f.Close()
	return readBody(f, strings.HasSuffix(path, ".zst"), uri)
}

func readBody(r io.Reader, compressed bool, uri string) ([]byte, error) {
	if compressed {
		decoder, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("creating zstd decoder: %w", err)
		}
		defer decoder.Close()
		r = decoder
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrFetch, uri, err)
	}
	return data, nil
}

// Resolve interprets ref relative to base, the URI of the document that
// mentioned it. Absolute references are returned unchanged.
func Resolve(base, ref string) string {
	if ref == "" {
		return base
	}
	r, err := url.Parse(ref)
	if err == nil && len(r.Scheme) > 1 {
		return ref
	}
	if b, err := url.Parse(base); err == nil && r != nil && (b.Scheme == "http" || b.Scheme == "https") {
		return b.ResolveReference(r).String()
	}
	if filepath.IsAbs(ref) {
		return ref
	}
	dir := filepath.Dir(strings.TrimPrefix(base, "file://"))
	return filepath.Join(dir, filepath.FromSlash(ref))
}
