// Package api exposes hbpm's package operations over HTTP for the web UI.
// Handlers are thin adapters: each one performs a single core operation
// with confirmation prompts bypassed, and reports the outcome as JSON.
package api
