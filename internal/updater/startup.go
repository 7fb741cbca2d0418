package updater

import (
	"fmt"
	"io"
	"time"

	"github.com/hbpm-labs/hbpm/internal/branding"
)

// CheckAndPrintBanner prints an update banner when the cached release
// lookup says a newer version exists. It never blocks: a stale cache is
// refreshed by a background goroutine for the next invocation.
func (u *Updater) CheckAndPrintBanner(w io.Writer, dataDir string) {
	cache := loadCache(dataDir)

	if cache != nil && cache.Newer {
		printUpdateBanner(w, cache.Current, cache.Latest)
	}

	if cache.stale(cacheMaxAge) {
		go u.refreshCache(dataDir)
	}
}

func printUpdateBanner(w io.Writer, current, latest string) {
	fmt.Fprintf(w, "\nUpdate available: %s -> %s\n", current, latest)
	fmt.Fprintf(w, "    Run `%s upgrade --self` to see how to upgrade\n\n", branding.CLIName())
}

// refreshCache fetches the latest release and rewrites the cache file.
// Runs in the background and never fails loudly.
func (u *Updater) refreshCache(dataDir string) {
	release, newer, err := u.SelfCheck()
	if err != nil {
		return
	}

	cache := &versionCache{
		Current:   u.currentVersion,
		Latest:    release.Version,
		HTMLURL:   release.HTMLURL,
		CheckedAt: time.Now(),
		Newer:     newer,
	}
	_ = cache.save(dataDir)
}
