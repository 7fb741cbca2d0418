// Package query resolves user-supplied search terms and package names
// against the catalog.
package query

import (
	"strings"

	"github.com/hbpm-labs/hbpm/internal/pkgdb"
)

// SearchOptions control the substring matching policy.
type SearchOptions struct {
	// CaseSensitive disables case folding on both sides of the comparison.
	CaseSensitive bool
	// TitleOnly restricts matching to package titles.
	TitleOnly bool
}

// Search returns a catalog-shaped result for the query.
//
// When the query equals a category name exactly, that category is returned
// alone; the exact match short-circuits substring matching entirely, even
// if other packages would also match. Otherwise every category is retained
// in the output (empty when nothing matched) with the packages whose title
// (or author or description, unless TitleOnly is set) contains the query
// as a substring.
func Search(catalog pkgdb.Catalog, query string, opts SearchOptions) pkgdb.Catalog {
	if pkgs, ok := catalog[query]; ok {
		result := make([]pkgdb.Package, len(pkgs))
		copy(result, pkgs)
		return pkgdb.Catalog{query: result}
	}

	match := matcher(query, opts)

	out := make(pkgdb.Catalog, len(catalog))
	for category, pkgs := range catalog {
		matched := []pkgdb.Package{}
		for _, pkg := range pkgs {
			if match(pkg) {
				matched = append(matched, pkg)
			}
		}
		out[category] = matched
	}
	return out
}

func matcher(query string, opts SearchOptions) func(pkgdb.Package) bool {
	fold := func(s string) string { return s }
	if !opts.CaseSensitive {
		fold = strings.ToLower
		query = strings.ToLower(query)
	}

	if opts.TitleOnly {
		return func(pkg pkgdb.Package) bool {
			return strings.Contains(fold(pkg.Title), query)
		}
	}
	return func(pkg pkgdb.Package) bool {
		return strings.Contains(fold(pkg.Title), query) ||
			strings.Contains(fold(pkg.Author), query) ||
			strings.Contains(fold(pkg.Description), query)
	}
}

// ResolveCandidates maps requested titles to catalog packages by exact,
// case-sensitive title match across every category. Duplicates are
// preserved: a title present in two categories yields two candidates, and
// a title requested twice is matched twice. Requests for selfName can never
// be installable and are returned in dropped instead. Titles that match
// nothing produce no candidate and no error here; absence is reported by
// the batch operation.
func ResolveCandidates(catalog pkgdb.Catalog, requested []string, selfName string) (candidates []pkgdb.Package, dropped []string) {
	for _, title := range requested {
		if title == selfName {
			dropped = append(dropped, title)
			continue
		}
		for _, category := range catalog.Categories() {
			for _, pkg := range catalog[category] {
				if pkg.Title == title {
					candidates = append(candidates, pkg)
				}
			}
		}
	}
	return candidates, dropped
}
