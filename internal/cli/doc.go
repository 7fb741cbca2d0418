// Package cli defines the hbpm command tree. Commands are thin: each one
// assembles the runtime context, constructs the core components it needs,
// runs a single operation, and renders the result.
package cli
