package pkgdb

import (
	"sort"
	"strings"
)

// ExternalCategory is the reserved catalog category that holds user-added
// package sources. It is always rebuilt from the external-sources file,
// never from the scraped snapshot.
const ExternalCategory = "External Packages"

// Package is a single plugin entry in the catalog.
type Package struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description"`
	// Repository is the identity key: two entries describe the same plugin
	// iff their trimmed repository URLs are equal. Empty means unknown.
	Repository string `json:"repository"`
	// Directory is set only when the package has been correlated to an
	// on-disk installation. Empty means "not installed".
	Directory string `json:"directory,omitempty"`
}

// Installed reports whether the package has been correlated to a working copy.
func (p Package) Installed() bool { return p.Directory != "" }

// RepoKnown reports whether the package has a usable repository URL.
func (p Package) RepoKnown() bool { return strings.TrimSpace(p.Repository) != "" }

// SamePlugin reports whether two entries refer to the same plugin,
// regardless of title drift between catalog revisions.
func (p Package) SamePlugin(other Package) bool {
	return p.RepoKnown() && strings.TrimSpace(p.Repository) == strings.TrimSpace(other.Repository)
}

// Catalog maps category names to their packages. Category keys are unique;
// display order is not semantically significant (callers sort).
type Catalog map[string][]Package

// Categories returns the category names in sorted order.
func (c Catalog) Categories() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the total number of packages across all categories.
func (c Catalog) Count() int {
	n := 0
	for _, pkgs := range c {
		n += len(pkgs)
	}
	return n
}

// Clone returns a deep copy of the catalog.
func (c Catalog) Clone() Catalog {
	out := make(Catalog, len(c))
	for name, pkgs := range c {
		cp := make([]Package, len(pkgs))
		copy(cp, pkgs)
		out[name] = cp
	}
	return out
}
