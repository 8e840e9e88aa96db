// Package db holds the embedded migration sources for the session schema.
package db

import "embed"

//go:embed migrations/*.sql
var MigrationFS embed.FS
