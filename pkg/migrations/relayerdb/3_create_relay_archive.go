package relayerdb

import (
	"context"
	"log"

	"github.com/chainsafe/lockmint-relayer/pkg/db/dao"
	mghelper "github.com/chainsafe/lockmint-relayer/pkg/pgutil/migrations"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating relay_archive table...")
		if err := mghelper.CreateSchema(ctx, db, &dao.RelayArchiveDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &dao.RelayArchiveDao{}, "status")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping relay_archive table...")
		return mghelper.DropTables(ctx, db, &dao.RelayArchiveDao{})
	})
}
