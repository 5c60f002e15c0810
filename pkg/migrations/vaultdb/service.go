// Package vaultdb holds all the migrations for the notary vault database
package vaultdb

import "github.com/uptrace/bun/migrate"

// Migrations is the registry of vault database migrations
var Migrations = migrate.NewMigrations()
