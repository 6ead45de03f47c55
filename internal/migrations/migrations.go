package migrations

import "github.com/uptrace/bun/migrate"

// Migrations is the registry the `db` commands and test helpers run against.
var Migrations = migrate.NewMigrations()
