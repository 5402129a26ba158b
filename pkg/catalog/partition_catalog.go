package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/pg-sharding/distmeta/pkg/dmlog"
	"github.com/pg-sharding/distmeta/pkg/models/dmerror"
	"github.com/pg-sharding/distmeta/pkg/models/partitions"
	"github.com/pg-sharding/distmeta/qdb"
)

// PartitionCatalog answers which tables are distributed and by which column.
type PartitionCatalog struct {
	codec partitions.ColumnCodec
}

func NewPartitionCatalog(codec partitions.ColumnCodec) *PartitionCatalog {
	return &PartitionCatalog{codec: codec}
}

// Codec returns the active partition column encoding.
func (c *PartitionCatalog) Codec() partitions.ColumnCodec {
	return c.codec
}

func displayName(ctx context.Context, tx qdb.Tx, relID qdb.RelationID) string {
	name, err := tx.RelationName(ctx, relID)
	if err != nil {
		return fmt.Sprintf("%d", relID)
	}
	return name
}

func (c *PartitionCatalog) partitionRow(ctx context.Context, tx qdb.Tx, tableID qdb.RelationID) (*qdb.Partition, error) {
	if tableID == qdb.InvalidRelationID {
		return nil, dmerror.New(dmerror.DM_NULL_ARGUMENT, "table_oid must not be null")
	}
	p, err := tx.GetPartition(ctx, tableID)
	if err != nil {
		if errors.Is(err, qdb.ErrNotFound) {
			return nil, dmerror.Newf(dmerror.DM_UNDEFINED_OBJECT,
				"no partition column is defined for relation \"%s\"", displayName(ctx, tx, tableID))
		}
		return nil, err
	}
	return p, nil
}

// ResolvePartitionColumn returns the column tableID is partitioned by.
func (c *PartitionCatalog) ResolvePartitionColumn(ctx context.Context, tx qdb.Tx, tableID qdb.RelationID) (*partitions.ColumnRef, error) {
	p, err := c.partitionRow(ctx, tx, tableID)
	if err != nil {
		return nil, err
	}
	return c.codec.Decode(ctx, tx, tableID, p.Key)
}

func (c *PartitionCatalog) ResolvePartitionType(ctx context.Context, tx qdb.Tx, tableID qdb.RelationID) (partitions.PartitionType, error) {
	p, err := c.partitionRow(ctx, tx, tableID)
	if err != nil {
		return 0, err
	}
	return partitions.PartitionTypeFromDB(p.Method)
}

// IsDistributed reports whether tableID has a partition row. Only store
// failures are returned as errors.
func (c *PartitionCatalog) IsDistributed(ctx context.Context, tx qdb.Tx, tableID qdb.RelationID) (bool, error) {
	if tableID == qdb.InvalidRelationID {
		return false, nil
	}
	_, err := tx.GetPartition(ctx, tableID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, qdb.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (c *PartitionCatalog) AnyDistributedTablesExist(ctx context.Context, tx qdb.Tx) (bool, error) {
	return tx.HasPartitions(ctx)
}

// ColumnByName resolves a user column of relID.
func (c *PartitionCatalog) ColumnByName(ctx context.Context, tx qdb.Tx, relID qdb.RelationID, name string) (*partitions.ColumnRef, error) {
	if relID == qdb.InvalidRelationID {
		return nil, dmerror.New(dmerror.DM_NULL_ARGUMENT, "relation_oid must not be null")
	}
	return partitions.LookupColumnByName(ctx, tx, relID, name)
}

// PartitionColumnToNodeString renders the partition column of tableID as
// node text regardless of the active encoding.
func (c *PartitionCatalog) PartitionColumnToNodeString(ctx context.Context, tx qdb.Tx, tableID qdb.RelationID) (string, error) {
	col, err := c.ResolvePartitionColumn(ctx, tx, tableID)
	if err != nil {
		return "", err
	}
	return partitions.NodeCodec{}.Encode(col)
}

func (c *PartitionCatalog) ColumnNameToNodeString(ctx context.Context, tx qdb.Tx, relID qdb.RelationID, name string) (string, error) {
	col, err := c.ColumnByName(ctx, tx, relID, name)
	if err != nil {
		return "", err
	}
	return partitions.NodeCodec{}.Encode(col)
}

// NodeStringToColumnName maps node text back to the column name it refers to.
func (c *PartitionCatalog) NodeStringToColumnName(ctx context.Context, tx qdb.Tx, relID qdb.RelationID, nodeText string) (string, error) {
	if relID == qdb.InvalidRelationID {
		return "", dmerror.New(dmerror.DM_NULL_ARGUMENT, "relation_oid must not be null")
	}
	v, err := partitions.ParseVarNode(nodeText)
	if err != nil {
		return "", dmerror.Newf(dmerror.DM_INVALID_PARAMETER, "%s", err.Error())
	}
	col, err := partitions.LookupColumnByNum(ctx, tx, relID, v.AttNum)
	if err != nil {
		return "", err
	}
	dmlog.Zero.Debug().
		Uint32("relation", uint32(relID)).
		Int16("attnum", v.AttNum).
		Str("column", col.Name).
		Msg("catalog: node string resolved")
	return col.Name, nil
}
