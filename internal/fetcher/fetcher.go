package fetcher

import (
	"context"
	"errors"
)

// RepoPrefix is the fixed naming convention for per-tool config
// repositories: the repository for tool "vault" is "devops-vault".
const RepoPrefix = "devops-"

// RepoForTool derives a tool's config repository name.
func RepoForTool(tool string) string {
	return RepoPrefix + tool
}

var (
	// ErrNotFound means the requested path does not exist at that ref.
	ErrNotFound = errors.New("fetcher: not found")
	// ErrAuth means the remote store rejected the supplied credential.
	ErrAuth = errors.New("fetcher: authentication failed")
)

// Entry is one item of a directory listing.
type Entry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"` // "file" or "dir"
}

// Fetcher retrieves named files from a versioned remote store. Implementations
// must be safe for concurrent use; every call is bounded by ctx.
type Fetcher interface {
	// Fetch returns the raw content of path in org/repo at ref.
	Fetch(ctx context.Context, org, repo, path, ref string) ([]byte, error)

	// List returns the entries of directory dir in org/repo at ref.
	List(ctx context.Context, org, repo, dir, ref string) ([]Entry, error)
}
