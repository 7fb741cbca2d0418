// Package updater implements the self-update check for the hbpm binary.
// It queries GitHub Releases for the latest version, compares it against
// the running version with semver, and powers the startup banner through a
// daily-cached result.
package updater
