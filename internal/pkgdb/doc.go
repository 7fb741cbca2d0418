// Package pkgdb owns the local package database: the persisted snapshot of
// the scraped community-plugins catalog, its staleness/refresh lifecycle,
// and the independently persisted user-added external sources that are
// merged into the catalog under a reserved category.
package pkgdb
