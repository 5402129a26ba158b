package catalog

import (
	"context"

	"github.com/pg-sharding/distmeta/pkg/models/dmerror"
	"github.com/pg-sharding/distmeta/pkg/models/shards"
	"github.com/pg-sharding/distmeta/qdb"
)

type ShardPlacementStore struct{}

func NewShardPlacementStore() *ShardPlacementStore {
	return &ShardPlacementStore{}
}

// LoadAll returns every placement of shardID. A shard that was never
// placed is an error.
func (s *ShardPlacementStore) LoadAll(ctx context.Context, tx qdb.Tx, shardID uint64) ([]*shards.ShardPlacement, error) {
	rows, err := tx.ListPlacements(ctx, shardID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, dmerror.Newf(dmerror.DM_NO_DATA, "no placements exist for shard with ID %d", shardID)
	}
	ret := make([]*shards.ShardPlacement, len(rows))
	for i, r := range rows {
		ret[i] = shards.ShardPlacementFromDB(r)
	}
	return ret, nil
}

// LoadFinalized is LoadAll restricted to healthy placements. The result
// may be empty.
func (s *ShardPlacementStore) LoadFinalized(ctx context.Context, tx qdb.Tx, shardID uint64) ([]*shards.ShardPlacement, error) {
	all, err := s.LoadAll(ctx, tx, shardID)
	if err != nil {
		return nil, err
	}
	ret := make([]*shards.ShardPlacement, 0, len(all))
	for _, p := range all {
		if p.Finalized() {
			ret = append(ret, p)
		}
	}
	return ret, nil
}
