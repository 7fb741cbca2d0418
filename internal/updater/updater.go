package updater

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/hashicorp/go-retryablehttp"
)

// Release represents a GitHub release.
type Release struct {
	Version   string    `json:"tag_name"`
	Published time.Time `json:"published_at"`
	HTMLURL   string    `json:"html_url"`
}

// Updater checks GitHub Releases for a newer hbpm version.
type Updater struct {
	currentVersion string
	httpClient     *http.Client
	apiBase        string
}

// Option configures an Updater.
type Option func(*Updater)

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(c *http.Client) Option {
	return func(u *Updater) {
		u.httpClient = c
	}
}

// WithAPIBase overrides the GitHub API base URL (useful for testing).
func WithAPIBase(base string) Option {
	return func(u *Updater) {
		u.apiBase = base
	}
}

// New creates an Updater with the given current version and options.
// The default HTTP client retries transient failures.
func New(currentVersion string, opts ...Option) *Updater {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.Logger = nil

	u := &Updater{
		currentVersion: currentVersion,
		httpClient:     rc.StandardClient(),
		apiBase:        githubAPIBase,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// SelfCheck fetches the latest release and reports whether it is newer
// than the running version.
func (u *Updater) SelfCheck() (*Release, bool, error) {
	release, err := u.CheckLatestVersion()
	if err != nil {
		return nil, false, err
	}
	newer, err := newerThan(u.currentVersion, release.Version)
	if err != nil {
		return release, false, err
	}
	return release, newer, nil
}

// newerThan reports whether latest is a strictly newer semantic version
// than current. A leading "v" on either tag is tolerated, matching GitHub
// release tag conventions. Non-semver versions such as "dev" builds fail
// the comparison.
func newerThan(current, latest string) (bool, error) {
	cv, err := semver.NewVersion(strings.TrimPrefix(current, "v"))
	if err != nil {
		return false, fmt.Errorf("parsing current version %q: %w", current, err)
	}
	lv, err := semver.NewVersion(strings.TrimPrefix(latest, "v"))
	if err != nil {
		return false, fmt.Errorf("parsing latest version %q: %w", latest, err)
	}
	return cv.LessThan(lv), nil
}
