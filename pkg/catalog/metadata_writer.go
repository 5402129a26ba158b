package catalog

import (
	"context"
	"errors"

	"github.com/pg-sharding/distmeta/pkg/dmlog"
	"github.com/pg-sharding/distmeta/pkg/models/dmerror"
	"github.com/pg-sharding/distmeta/pkg/models/partitions"
	"github.com/pg-sharding/distmeta/pkg/models/shards"
	"github.com/pg-sharding/distmeta/qdb"
)

// MetadataWriter inserts and deletes metadata rows inside the caller's
// transaction. It never commits.
type MetadataWriter struct {
	partitions *PartitionCatalog
}

func NewMetadataWriter(pc *PartitionCatalog) *MetadataWriter {
	return &MetadataWriter{partitions: pc}
}

func (w *MetadataWriter) InsertPartitionRow(ctx context.Context, tx qdb.Tx, tableID qdb.RelationID, pt partitions.PartitionType, col *partitions.ColumnRef) error {
	if tableID == qdb.InvalidRelationID {
		return dmerror.New(dmerror.DM_NULL_ARGUMENT, "table_oid must not be null")
	}
	if col == nil {
		return dmerror.New(dmerror.DM_NULL_ARGUMENT, "partition column must not be null")
	}
	if pt != partitions.Hash && pt != partitions.Range {
		return dmerror.Newf(dmerror.DM_INVALID_PARAMETER, "unsupported partition method %q", byte(pt))
	}

	key, err := w.partitions.Codec().Encode(col)
	if err != nil {
		return err
	}

	dmlog.Zero.Debug().
		Uint32("relation", uint32(tableID)).
		Str("method", pt.String()).
		Str("key", key).
		Msg("catalog: insert partition row")

	return tx.InsertPartition(ctx, &qdb.Partition{
		RelationID: tableID,
		Method:     partitions.PartitionTypeToDB(pt),
		Key:        key,
	})
}

// InsertShardRow stores a shard. minValue and maxValue are both set or
// both nil.
func (w *MetadataWriter) InsertShardRow(ctx context.Context, tx qdb.Tx, tableID qdb.RelationID, shardID uint64, storage shards.ShardStorage, minValue, maxValue *string) error {
	if tableID == qdb.InvalidRelationID {
		return dmerror.New(dmerror.DM_NULL_ARGUMENT, "table_oid must not be null")
	}
	if (minValue == nil) != (maxValue == nil) {
		return dmerror.New(dmerror.DM_INVALID_PARAMETER, "shard min and max values must be provided together")
	}
	switch storage {
	case shards.Table, shards.ForeignTable, shards.Columnar:
	default:
		return dmerror.Newf(dmerror.DM_INVALID_PARAMETER, "unsupported shard storage %q", byte(storage))
	}

	dmlog.Zero.Debug().
		Uint32("relation", uint32(tableID)).
		Uint64("shard", shardID).
		Msg("catalog: insert shard row")

	return tx.InsertShard(ctx, &qdb.Shard{
		ID:         shardID,
		RelationID: tableID,
		Storage:    byte(storage),
		MinValue:   minValue,
		MaxValue:   maxValue,
	})
}

func (w *MetadataWriter) InsertShardPlacementRow(ctx context.Context, tx qdb.Tx, placementID, shardID uint64, state shards.ShardState, nodeName string, nodePort uint32) error {
	if nodeName == "" {
		return dmerror.New(dmerror.DM_NULL_ARGUMENT, "node_name must not be null")
	}

	dmlog.Zero.Debug().
		Uint64("placement", placementID).
		Uint64("shard", shardID).
		Str("node", nodeName).
		Uint32("port", nodePort).
		Msg("catalog: insert shard placement row")

	return tx.InsertPlacement(ctx, shards.ShardPlacementToDB(&shards.ShardPlacement{
		ID:       placementID,
		ShardID:  shardID,
		State:    state,
		NodeName: nodeName,
		NodePort: nodePort,
	}))
}

func (w *MetadataWriter) DeleteShardPlacementRow(ctx context.Context, tx qdb.Tx, placementID uint64) error {
	dmlog.Zero.Debug().Uint64("placement", placementID).Msg("catalog: delete shard placement row")

	if err := tx.DeletePlacement(ctx, placementID); err != nil {
		if errors.Is(err, qdb.ErrNotFound) {
			return dmerror.Newf(dmerror.DM_UNDEFINED_OBJECT, "shard placement with ID %d does not exist", placementID)
		}
		return err
	}
	return nil
}
