package pkgdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/hbpm-labs/hbpm/internal/config"
	"github.com/hbpm-labs/hbpm/internal/logging"
)

const (
	// SnapshotFileName is the persisted catalog snapshot inside the data dir.
	SnapshotFileName = "packages.json"

	// lastRefreshFile holds the Unix timestamp of the last successful refresh.
	lastRefreshFile = "last-refresh"
)

var (
	// ErrStorageUnavailable reports that the data directory cannot be
	// created or written. This is fatal to the whole invocation.
	ErrStorageUnavailable = errors.New("package database storage unavailable")

	// ErrUpstreamUnavailable reports that the catalog could not be fetched
	// from the wiki. Recoverable: callers get an empty catalog and should
	// retry later rather than conclude no packages exist.
	ErrUpstreamUnavailable = errors.New("upstream package catalog unavailable")
)

// Fetcher obtains a fresh catalog from the community plugins wiki.
type Fetcher interface {
	FetchCatalog(ctx context.Context) (Catalog, error)
}

// Store owns the persisted catalog snapshot and its merge with the
// user-maintained external sources.
type Store struct {
	dataDir  string
	interval time.Duration
	fetch    Fetcher
	external *ExternalSources
	log      *logging.Logger
}

// NewStore constructs a Store for the given runtime context.
func NewStore(rt config.Runtime, fetch Fetcher, log *logging.Logger) *Store {
	return &Store{
		dataDir:  rt.DataDir,
		interval: rt.RefreshInterval,
		fetch:    fetch,
		external: NewExternalSources(rt, log),
		log:      log,
	}
}

// External returns the external-sources manager sharing this store's data dir.
func (s *Store) External() *ExternalSources {
	return s.external
}

// SnapshotPath returns the path of the persisted snapshot file.
func (s *Store) SnapshotPath() string {
	return filepath.Join(s.dataDir, SnapshotFileName)
}

// Load returns the merged catalog.
//
// A fresh catalog is fetched and persisted when forceRefresh is set, when no
// snapshot exists, or when the snapshot is older than the refresh interval;
// otherwise the persisted snapshot is used. The external-sources file, when
// present and non-empty, replaces the reserved category wholesale.
//
// On fetch failure the returned error wraps ErrUpstreamUnavailable and the
// catalog contains only external sources; callers should surface a warning
// and continue.
func (s *Store) Load(ctx context.Context, forceRefresh bool) (Catalog, error) {
	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: creating %s: %v", ErrStorageUnavailable, s.dataDir, err)
	}

	var (
		catalog  Catalog
		fetchErr error
	)

	if forceRefresh || s.snapshotMissing() || s.snapshotStale() {
		catalog, fetchErr = s.refresh(ctx)
	} else {
		var err error
		catalog, err = s.readSnapshot()
		if err != nil {
			// Unreadable snapshot: fall back to a fresh fetch.
			s.log.Warnw("snapshot unreadable, refreshing", "error", err)
			catalog, fetchErr = s.refresh(ctx)
		}
	}

	if catalog == nil {
		catalog = Catalog{}
	}

	// External sources are always presented fresh, replacing the reserved
	// category wholesale.
	external, err := s.external.Load()
	if err != nil {
		s.log.Warnw("loading external sources", "error", err)
	}
	if len(external) > 0 {
		catalog[ExternalCategory] = external
	}

	return catalog, fetchErr
}

// SnapshotAge returns the time of the last successful refresh and the
// earliest time the next automatic refresh will happen. Both are zero when
// no snapshot has ever been taken.
func (s *Store) SnapshotAge() (last, next time.Time) {
	last = s.readRefreshMarker()
	if last.IsZero() {
		return last, last
	}
	return last, last.Add(s.interval)
}

func (s *Store) refresh(ctx context.Context) (Catalog, error) {
	catalog, err := s.fetch.FetchCatalog(ctx)
	if err != nil {
		s.log.Warnw("catalog fetch failed", "error", err)
		return Catalog{}, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	if err := s.writeSnapshot(catalog); err != nil {
		return nil, err
	}
	s.writeRefreshMarker(time.Now())

	s.log.Infow("catalog refreshed",
		"categories", len(catalog), "packages", catalog.Count())
	return catalog, nil
}

func (s *Store) snapshotMissing() bool {
	_, err := os.Stat(s.SnapshotPath())
	return err != nil
}

func (s *Store) snapshotStale() bool {
	last := s.readRefreshMarker()
	if last.IsZero() {
		return true
	}
	return time.Since(last) > s.interval
}

func (s *Store) readSnapshot() (Catalog, error) {
	data, err := os.ReadFile(s.SnapshotPath())
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var catalog Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}
	return catalog, nil
}

// writeSnapshot persists the scraped catalog as a full overwrite. The
// reserved external category is never persisted here; it lives in its own
// file with an independent lifecycle.
func (s *Store) writeSnapshot(catalog Catalog) error {
	persisted := catalog.Clone()
	delete(persisted, ExternalCategory)

	data, err := json.MarshalIndent(persisted, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}

	if err := os.WriteFile(s.SnapshotPath(), data, 0644); err != nil {
		return fmt.Errorf("%w: writing snapshot: %v", ErrStorageUnavailable, err)
	}
	return nil
}

func (s *Store) readRefreshMarker() time.Time {
	data, err := os.ReadFile(filepath.Join(s.dataDir, lastRefreshFile))
	if err != nil {
		return time.Time{}
	}
	ts, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(ts, 0)
}

func (s *Store) writeRefreshMarker(t time.Time) {
	path := filepath.Join(s.dataDir, lastRefreshFile)
	_ = os.WriteFile(path, []byte(strconv.FormatInt(t.Unix(), 10)), 0644)
}
