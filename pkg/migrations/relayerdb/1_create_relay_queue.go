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
		log.Println("creating relay_queue table...")
		if err := mghelper.CreateSchema(ctx, db, &dao.RelayTaskDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &dao.RelayTaskDao{}, "status", "next_attempt_at")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping relay_queue table...")
		return mghelper.DropTables(ctx, db, &dao.RelayTaskDao{})
	})
}
