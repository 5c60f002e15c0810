// Package migrations holds the schema helpers used by the vault migrations and the
// notary's migrate command.
package migrations

import (
	"context"
	"fmt"
	"log"
	"reflect"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// Command is a migrate sub-command
type Command string

const (
	// CommandInit creates the bun migration tables
	CommandInit Command = "init"
	// CommandUp applies every pending migration under the migration lock
	CommandUp Command = "up"
	// CommandStatus logs applied and pending migrations
	CommandStatus Command = "status"
)

// Commands lists the supported sub-commands in usage order
var Commands = []Command{CommandInit, CommandUp, CommandStatus}

// ParseCommand maps a command line argument to a Command
func ParseCommand(arg string) (Command, error) {
	for _, c := range Commands {
		if string(c) == arg {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown command %q (want one of %v)", arg, Commands)
}

// CreateSchema creates the tables of models unless they already exist
func CreateSchema(ctx context.Context, db bun.IDB, models ...any) error {
	for _, model := range models {
		log.Println("creating table for", reflect.TypeOf(model))
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", model, err)
		}
	}
	return nil
}

// DropTables drops the tables of models, cascading to dependent objects
func DropTables(ctx context.Context, db bun.IDB, models ...any) error {
	for _, model := range models {
		log.Println("dropping table for", reflect.TypeOf(model))
		if _, err := db.NewDropTable().Model(model).IfExists().Cascade().Exec(ctx); err != nil {
			return fmt.Errorf("drop table for %T: %w", model, err)
		}
	}
	return nil
}

// CreateModelIndexes creates one idx_<table>_<column> index per column on the model's table
func CreateModelIndexes(ctx context.Context, db bun.IDB, model any, columns ...string) error {
	for _, column := range columns {
		indexName, err := modelIndexName(db, model, column)
		if err != nil {
			return err
		}
		if _, err = db.NewCreateIndex().
			Model(model).
			Index(indexName).
			Column(column).
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("create index %s: %w", indexName, err)
		}
	}
	return nil
}

func modelIndexName(db bun.IDB, model any, column string) (string, error) {
	if model == nil {
		return "", fmt.Errorf("model cannot be nil")
	}
	tableName := db.NewCreateIndex().Model(model).GetTableName()
	if tableName == "" {
		return "", fmt.Errorf("failed to resolve table name for model %T", model)
	}

	indexTableName := strings.NewReplacer(`"`, "", ".", "_").Replace(tableName)
	return fmt.Sprintf("idx_%s_%s", indexTableName, column), nil
}

// Run executes cmd against migrator. The vault schema is append-only, so there is no
// rollback command; a bad migration is fixed by a new one.
func Run(ctx context.Context, migrator *migrate.Migrator, cmd Command) error {
	switch cmd {
	case CommandInit:
		if err := migrator.Init(ctx); err != nil {
			return err
		}
		log.Println("migration tables created")
		return nil

	case CommandUp:
		if err := migrator.Lock(ctx); err != nil {
			return fmt.Errorf("failed to acquire migration lock: %w", err)
		}
		defer func() {
			if err := migrator.Unlock(ctx); err != nil {
				log.Printf("failed to release migration lock: %v", err)
			}
		}()

		group, err := migrator.Migrate(ctx)
		if err != nil {
			return err
		}
		if group.IsZero() {
			log.Println("vault database is up to date")
		} else {
			log.Printf("migrated to %s", group)
		}
		return nil

	case CommandStatus:
		ms, err := migrator.MigrationsWithStatus(ctx)
		if err != nil {
			return err
		}
		log.Printf("applied: %s", ms.Applied())
		log.Printf("pending: %s", ms.Unapplied())
		return nil

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}
