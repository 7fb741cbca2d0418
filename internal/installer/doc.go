// Package installer drives the per-package install, remove, and upgrade
// workflows: clone, dependency install, rollback of partial installs,
// confirmation, and conflict handling. Failures are isolated per package;
// a batch succeeds when at least one package completes.
package installer
