package updater

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// cacheFileName is the persisted release-check result inside the data
// directory, next to the catalog snapshot.
const cacheFileName = "version-check.json"

// cacheMaxAge bounds how long a release lookup is trusted before a
// background refresh is scheduled.
const cacheMaxAge = 24 * time.Hour

// versionCache is the last release lookup, persisted between runs so the
// startup banner never waits on the network.
type versionCache struct {
	Current   string    `json:"current"`
	Latest    string    `json:"latest"`
	HTMLURL   string    `json:"html_url"`
	CheckedAt time.Time `json:"checked_at"`
	Newer     bool      `json:"newer"`
}

// loadCache returns nil when the file is absent or unreadable. A broken
// cache only means the banner is skipped until the next refresh.
func loadCache(dataDir string) *versionCache {
	data, err := os.ReadFile(filepath.Join(dataDir, cacheFileName))
	if err != nil {
		return nil
	}
	var cache versionCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil
	}
	return &cache
}

// save writes the cache, creating the data directory when needed.
func (c *versionCache) save(dataDir string) error {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling version cache: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dataDir, cacheFileName), data, 0644); err != nil {
		return fmt.Errorf("writing version cache: %w", err)
	}
	return nil
}

// stale reports whether the lookup should be refreshed. A nil cache is
// always stale.
func (c *versionCache) stale(maxAge time.Duration) bool {
	return c == nil || time.Since(c.CheckedAt) > maxAge
}
