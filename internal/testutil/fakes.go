// Package testutil holds in-memory fakes for the two external capabilities,
// so config resolution and dispatch are testable without network or binaries.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/GurdipSCode/devops-mondoo-scanner/internal/engine"
	"github.com/GurdipSCode/devops-mondoo-scanner/internal/fetcher"
)

// FakeFetcher serves repository content from an in-memory map keyed by
// "repo/path". Unknown paths report fetcher.ErrNotFound like the real store.
type FakeFetcher struct {
	mu sync.Mutex

	Files  map[string]string
	Errors map[string]error

	// Calls records every Fetch/List key, in order.
	Calls []string
}

func (f *FakeFetcher) record(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, key)
}

func (f *FakeFetcher) Fetch(_ context.Context, _, repo, path, _ string) ([]byte, error) {
	key := repo + "/" + path
	f.record("fetch " + key)

	if err, ok := f.Errors[key]; ok {
		return nil, err
	}
	if content, ok := f.Files[key]; ok {
		return []byte(content), nil
	}
	return nil, fmt.Errorf("%s: %w", key, fetcher.ErrNotFound)
}

func (f *FakeFetcher) List(_ context.Context, _, repo, dir, _ string) ([]fetcher.Entry, error) {
	key := repo + "/" + dir
	f.record("list " + key)

	if err, ok := f.Errors[key]; ok {
		return nil, err
	}

	prefix := repo + "/"
	if dir != "" {
		prefix += dir + "/"
	}

	var entries []fetcher.Entry
	for file := range f.Files {
		if !strings.HasPrefix(file, prefix) {
			continue
		}
		rest := strings.TrimPrefix(file, prefix)
		if strings.Contains(rest, "/") {
			continue
		}
		entries = append(entries, fetcher.Entry{
			Name: rest,
			Path: strings.TrimPrefix(file, repo+"/"),
			Type: "file",
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	if dir != "" && len(entries) == 0 {
		return nil, fmt.Errorf("%s: %w", key, fetcher.ErrNotFound)
	}
	return entries, nil
}

// FakeEngine records invocations and answers with configured exit codes.
type FakeEngine struct {
	mu sync.Mutex

	// ExitCodes maps target address to exit code; unlisted targets succeed.
	ExitCodes map[string]int

	Invocations []engine.Invocation
}

func (e *FakeEngine) Scan(_ context.Context, inv engine.Invocation) engine.Result {
	e.mu.Lock()
	e.Invocations = append(e.Invocations, inv)
	e.mu.Unlock()

	code := e.ExitCodes[inv.Target]
	if code == 0 {
		return engine.Result{ExitCode: 0, Started: true}
	}
	return engine.Result{ExitCode: code, Started: true, Err: fmt.Errorf("engine exited %d", code)}
}

// InvocationFor returns the recorded invocation for one target.
func (e *FakeEngine) InvocationFor(target string) (engine.Invocation, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, inv := range e.Invocations {
		if inv.Target == target {
			return inv, true
		}
	}
	return engine.Invocation{}, false
}
