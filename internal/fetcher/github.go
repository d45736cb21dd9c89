package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultAPIBase = "https://api.github.com"

// GitHub fetches repository contents through the GitHub contents API.
// The credential is passed in explicitly at construction; nothing is read
// from the ambient environment at call sites.
type GitHub struct {
	base   string
	token  string
	client *http.Client
}

// Option configures a GitHub fetcher.
type Option func(*GitHub)

// WithBaseURL points the fetcher at a different API endpoint (GitHub
// Enterprise, or a test server).
func WithBaseURL(base string) Option {
	return func(g *GitHub) { g.base = strings.TrimSuffix(base, "/") }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(g *GitHub) { g.client = c }
}

// NewGitHub creates a fetcher authenticating with token.
func NewGitHub(token string, opts ...Option) *GitHub {
	g := &GitHub{
		base:  defaultAPIBase,
		token: token,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Fetch returns the raw bytes of one file.
func (g *GitHub) Fetch(ctx context.Context, org, repo, path, ref string) ([]byte, error) {
	body, err := g.get(ctx, org, repo, path, ref, "application/vnd.github.raw+json")
	if err != nil {
		return nil, err
	}
	return body, nil
}

// List returns a directory listing.
func (g *GitHub) List(ctx context.Context, org, repo, dir, ref string) ([]Entry, error) {
	body, err := g.get(ctx, org, repo, dir, ref, "application/vnd.github+json")
	if err != nil {
		return nil, err
	}

	var entries []Entry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("parse listing of %s: %w", dir, err)
	}
	return entries, nil
}

func (g *GitHub) get(ctx context.Context, org, repo, path, ref, accept string) ([]byte, error) {
	u := fmt.Sprintf("%s/repos/%s/%s/contents/%s?ref=%s",
		g.base, org, repo, path, url.QueryEscape(ref))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", accept)
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s/%s/%s@%s: %w", org, repo, path, ref, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("%s/%s/%s@%s: %w", org, repo, path, ref, ErrNotFound)
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("%s/%s: %w", org, repo, ErrAuth)
	default:
		return nil, fmt.Errorf("fetch %s/%s/%s@%s: unexpected status %d", org, repo, path, ref, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return body, nil
}
