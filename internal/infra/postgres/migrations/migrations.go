package migrations

import "github.com/uptrace/bun/migrate"

// Migrations is the registry the CLI migrator and tests run against.
var Migrations = migrate.NewMigrations()
