// Package cache persists fetched data as JSON files under the user cache
// directory so screens can paint stale data instantly while the network
// refresh runs. All failures are silent; the cache is best effort.
package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// Dir is overridable for tests; empty means the default location,
// ~/.cache/grit on Linux.
var Dir string

func dir() (string, error) {
	if Dir != "" {
		return Dir, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "grit"), nil
}

func path(key string) (string, error) {
	d, err := dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, key+".json"), nil
}

// Read returns the cached value for key, or false if missing or corrupt.
func Read[T any](key string) (T, bool) {
	var zero T
	p, err := path(key)
	if err != nil {
		return zero, false
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return zero, false
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return zero, false
	}
	return v, true
}

// Write stores value under key, ignoring errors.
func Write[T any](key string, value T) {
	p, err := path(key)
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = os.WriteFile(p, data, 0o644)
}

// RepoKey sanitizes owner/repo into a flat cache key segment. GitLab
// owners may contain slashes (nested groups).
func RepoKey(owner, repo string) string {
	return strings.ReplaceAll(owner, "/", "_") + "_" + strings.ReplaceAll(repo, "/", "_")
}

// ForgeRepoKey namespaces RepoKey by forge so multiple configured forges
// never collide.
func ForgeRepoKey(forgeName, owner, repo string) string {
	return forgeName + "_" + RepoKey(owner, repo)
}
