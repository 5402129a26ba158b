package catalog

import (
	"context"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pg-sharding/distmeta/pkg/dmlog"
	"github.com/pg-sharding/distmeta/pkg/models/dmerror"
	"github.com/pg-sharding/distmeta/pkg/models/partitions"
	"github.com/pg-sharding/distmeta/pkg/models/shards"
	"github.com/pg-sharding/distmeta/qdb"
	"go.uber.org/atomic"
)

// ShardIntervalStore loads shard intervals and caches them per table for
// the life of the process. Cached lists are never invalidated; a table
// whose load came back empty is not cached and is read again next time.
type ShardIntervalStore struct {
	partitions *PartitionCatalog
	values     *valueParser

	mu    sync.Mutex
	cache map[qdb.RelationID][]*shards.ShardInterval

	hits   atomic.Int64
	misses atomic.Int64
}

func NewShardIntervalStore(pc *PartitionCatalog) *ShardIntervalStore {
	return &ShardIntervalStore{
		partitions: pc,
		values:     newValueParser(),
		cache:      map[qdb.RelationID][]*shards.ShardInterval{},
	}
}

func copyIntervals(list []*shards.ShardInterval) []*shards.ShardInterval {
	ret := make([]*shards.ShardInterval, len(list))
	for i, si := range list {
		cp := *si
		ret[i] = &cp
	}
	return ret
}

// LookupCached returns the intervals of tableID, loading them on a miss.
func (s *ShardIntervalStore) LookupCached(ctx context.Context, tx qdb.Tx, tableID qdb.RelationID) ([]*shards.ShardInterval, error) {
	s.mu.Lock()
	cached, ok := s.cache[tableID]
	s.mu.Unlock()
	if ok {
		s.hits.Inc()
		return copyIntervals(cached), nil
	}
	s.misses.Inc()

	loaded, err := s.LoadUncached(ctx, tx, tableID)
	if err != nil {
		return nil, err
	}
	if len(loaded) == 0 {
		return loaded, nil
	}

	s.mu.Lock()
	if prev, ok := s.cache[tableID]; ok {
		loaded = prev
	} else {
		s.cache[tableID] = loaded
		dmlog.Zero.Debug().
			Uint32("relation", uint32(tableID)).
			Int("shards", len(loaded)).
			Msg("catalog: cached shard intervals")
	}
	s.mu.Unlock()

	return copyIntervals(loaded), nil
}

// LoadUncached reads every shard of tableID from the store, bypassing the
// cache. The result follows the store's scan order.
func (s *ShardIntervalStore) LoadUncached(ctx context.Context, tx qdb.Tx, tableID qdb.RelationID) ([]*shards.ShardInterval, error) {
	ids, err := tx.ListShardIDs(ctx, tableID)
	if err != nil {
		return nil, err
	}
	ret := make([]*shards.ShardInterval, 0, len(ids))
	for _, id := range ids {
		si, err := s.LoadShardInterval(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		ret = append(ret, si)
	}
	return ret, nil
}

// LoadShardInterval reads one shard and parses its bounds. Hash
// partitioned tables keep int4 bounds; range partitioned tables use the
// partition column's type.
func (s *ShardIntervalStore) LoadShardInterval(ctx context.Context, tx qdb.Tx, shardID uint64) (*shards.ShardInterval, error) {
	row, err := tx.GetShard(ctx, shardID)
	if err != nil {
		if errors.Is(err, qdb.ErrNotFound) {
			return nil, dmerror.Newf(dmerror.DM_UNDEFINED_OBJECT, "shard with ID %d does not exist", shardID)
		}
		return nil, err
	}

	pt, err := s.partitions.ResolvePartitionType(ctx, tx, row.RelationID)
	if err != nil {
		return nil, err
	}
	var typeID uint32 = pgtype.Int4OID
	var typmod int32 = -1
	if pt != partitions.Hash {
		col, err := s.partitions.ResolvePartitionColumn(ctx, tx, row.RelationID)
		if err != nil {
			return nil, err
		}
		typeID = col.TypeID
		typmod = col.TypMod
	}

	si := &shards.ShardInterval{
		ID:          row.ID,
		RelationID:  row.RelationID,
		Storage:     shards.ShardStorage(row.Storage),
		ValueTypeID: typeID,
	}
	if (row.MinValue == nil) != (row.MaxValue == nil) {
		return nil, dmerror.Newf(dmerror.DM_METADATA_CORRUPTION, "shard with ID %d has only one bound", shardID)
	}
	if row.MinValue != nil {
		if si.MinValue, err = s.values.parse(typeID, typmod, *row.MinValue); err != nil {
			return nil, err
		}
		if si.MaxValue, err = s.values.parse(typeID, typmod, *row.MaxValue); err != nil {
			return nil, err
		}
	}
	return si, nil
}

// CacheStats returns how many LookupCached calls were served from the
// cache and how many went to the store.
func (s *ShardIntervalStore) CacheStats() (hits, misses int64) {
	return s.hits.Load(), s.misses.Load()
}
