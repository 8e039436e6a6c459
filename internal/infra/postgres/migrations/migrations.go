// Package migrations registers the bun migrations. File names carry the migration version.
package migrations

import "github.com/uptrace/bun/migrate"

var Migrations = migrate.NewMigrations()
