package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/pg-sharding/distmeta/pkg/catalog"
	"github.com/pg-sharding/distmeta/pkg/dmlog"
	"github.com/pg-sharding/distmeta/pkg/models/dmerror"
	"github.com/pg-sharding/distmeta/pkg/models/shards"
	"github.com/pg-sharding/distmeta/qdb"
)

func rollback(ctx context.Context, tx qdb.Tx) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, qdb.ErrTxClosed) {
		dmlog.Zero.Error().Err(err).Msg("rollback")
	}
}

func describe(ctx context.Context, cat *catalog.Catalog, db qdb.QDB, relID qdb.RelationID, w io.Writer) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer rollback(ctx, tx)

	pt, err := cat.Partitions.ResolvePartitionType(ctx, tx, relID)
	if err != nil {
		return err
	}
	col, err := cat.Partitions.ResolvePartitionColumn(ctx, tx, relID)
	if err != nil {
		return err
	}
	name, err := tx.RelationName(ctx, relID)
	if err != nil {
		name = fmt.Sprintf("%d", relID)
	}
	if _, err := fmt.Fprintf(w, "relation %s: %s partitioned by %s\n", name, pt, col.Name); err != nil {
		return err
	}

	intervals, err := cat.Intervals.LoadUncached(ctx, tx, relID)
	if err != nil {
		return err
	}
	for _, si := range intervals {
		if _, err := fmt.Fprintf(w, "  shard %d [%v, %v]\n", si.ID, si.MinValue, si.MaxValue); err != nil {
			return err
		}
		placements, err := cat.Placements.LoadAll(ctx, tx, si.ID)
		if err != nil {
			if dmerror.Is(err, dmerror.DM_NO_DATA) {
				if _, err := fmt.Fprintln(w, "    no placements"); err != nil {
					return err
				}
				continue
			}
			return err
		}
		for _, p := range placements {
			if _, err := fmt.Fprintf(w, "    placement %d %s:%d %s\n", p.ID, p.NodeName, p.NodePort, p.State); err != nil {
				return err
			}
		}
	}
	return nil
}

func deletePlacement(ctx context.Context, cat *catalog.Catalog, db qdb.QDB, shardID, placementID uint64, mode catalog.LockMode) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer rollback(ctx, tx)

	if err := cat.Locks.Acquire(ctx, tx, shardID, mode); err != nil {
		return err
	}
	placements, err := cat.Placements.LoadAll(ctx, tx, shardID)
	if err != nil {
		return err
	}
	found := false
	for _, p := range placements {
		if p.ID == placementID {
			found = true
			break
		}
	}
	if !found {
		return dmerror.Newf(dmerror.DM_UNDEFINED_OBJECT, "shard %d has no placement with ID %d", shardID, placementID)
	}
	if err := cat.Writer.DeleteShardPlacementRow(ctx, tx, placementID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// insertShard allocates a shard id and stores an interval for a distributed
// table. Bounds are stored as given and checked when the interval is loaded.
func insertShard(ctx context.Context, cat *catalog.Catalog, db qdb.QDB, relID qdb.RelationID, storage string, minValue, maxValue *string) (uint64, error) {
	st, err := shards.ParseShardStorage(storage)
	if err != nil {
		return 0, err
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer rollback(ctx, tx)

	distributed, err := cat.Partitions.IsDistributed(ctx, tx, relID)
	if err != nil {
		return 0, err
	}
	if !distributed {
		return 0, dmerror.Newf(dmerror.DM_UNDEFINED_OBJECT, "relation %d is not distributed", relID)
	}

	shardID, err := cat.NextShardID(ctx)
	if err != nil {
		return 0, err
	}
	if err := cat.Writer.InsertShardRow(ctx, tx, relID, shardID, st, minValue, maxValue); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return shardID, nil
}

// describeError prefixes catalog errors with their SQLSTATE and its meaning.
func describeError(err error) string {
	var de *dmerror.DMError
	if !errors.As(err, &de) {
		return err.Error()
	}
	return fmt.Sprintf("%s: %s (SQLSTATE %s)", dmerror.GetMessageByCode(de.ErrorCode), err, de.ErrorCode)
}
