package catalog

import (
	"context"

	"github.com/pg-sharding/distmeta/pkg/config"
	"github.com/pg-sharding/distmeta/pkg/models/partitions"
	"github.com/pg-sharding/distmeta/qdb"
	"github.com/pg-sharding/distmeta/sequencer"
)

// Catalog bundles the metadata components built from one configuration.
type Catalog struct {
	Partitions *PartitionCatalog
	Intervals  *ShardIntervalStore
	Placements *ShardPlacementStore
	Writer     *MetadataWriter
	Locks      *ShardLockManager
	Sequences  sequencer.Allocator

	layout config.Layout
}

func New(cfg *config.Catalog, db qdb.QDB) (*Catalog, error) {
	codec, err := partitions.NewColumnCodec(cfg.ColumnEncoding)
	if err != nil {
		return nil, err
	}
	alloc, err := sequencer.NewAllocator(cfg, db)
	if err != nil {
		return nil, err
	}

	pc := NewPartitionCatalog(codec)
	return &Catalog{
		Partitions: pc,
		Intervals:  NewShardIntervalStore(pc),
		Placements: NewShardPlacementStore(),
		Writer:     NewMetadataWriter(pc),
		Locks:      NewShardLockManager(),
		Sequences:  alloc,
		layout:     cfg.Layout,
	}, nil
}

func (c *Catalog) NextShardID(ctx context.Context) (uint64, error) {
	return c.Sequences.NextID(ctx, c.layout.ShardIDSequence)
}

func (c *Catalog) NextPlacementID(ctx context.Context) (uint64, error) {
	return c.Sequences.NextID(ctx, c.layout.PlacementIDSequence)
}

func (c *Catalog) Close() error {
	return c.Sequences.Close()
}
