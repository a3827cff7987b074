// Package migrations registers the schema migrations with pkg/migration.
// Import it for side effects wherever migrations run (the CLI, the server
// and testkit.FreshDB).
package migrations
