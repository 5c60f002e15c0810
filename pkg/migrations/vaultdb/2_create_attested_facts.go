package vaultdb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	mghelper "github.com/chainsafe/identity-oracle/pkg/pgutil/migrations"
	"github.com/chainsafe/identity-oracle/pkg/vault"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating attested_facts table...")
		if err := mghelper.CreateSchema(ctx, db, &vault.AttestedFactDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &vault.AttestedFactDao{}, "transaction_id", "identity_id")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping attested_facts table...")
		return mghelper.DropTables(ctx, db, &vault.AttestedFactDao{})
	})
}
