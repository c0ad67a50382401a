// Package migrations contains the history database migration files.
// Each migration file uses init() to call migration.Register().
// cmd/sofreh imports this package blank so every migration is
// registered before history.Connect runs them.
package migrations
