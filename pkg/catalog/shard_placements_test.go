package catalog_test

import (
	"context"
	"testing"

	"github.com/pg-sharding/distmeta/pkg/config"
	"github.com/pg-sharding/distmeta/pkg/models/dmerror"
	"github.com/pg-sharding/distmeta/pkg/models/shards"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlacementLifecycle(t *testing.T) {
	is := assert.New(t)
	ctx := context.Background()
	db := prepareDB(t)
	c := newCatalog(t, db, config.ColumnEncodingName)
	tx := begin(t, db)

	_, err := c.Placements.LoadAll(ctx, tx, 42)
	is.True(dmerror.Is(err, dmerror.DM_NO_DATA))
	is.EqualError(err, "no placements exist for shard with ID 42")

	_, err = c.Placements.LoadFinalized(ctx, tx, 42)
	is.True(dmerror.Is(err, dmerror.DM_NO_DATA))

	require.NoError(t, c.Writer.InsertShardPlacementRow(ctx, tx, 1, 42, shards.Finalized, "host", 5432))

	all, err := c.Placements.LoadAll(ctx, tx, 42)
	is.NoError(err)
	require.Len(t, all, 1)
	is.Equal(&shards.ShardPlacement{ID: 1, ShardID: 42, State: shards.Finalized, NodeName: "host", NodePort: 5432}, all[0])

	finalized, err := c.Placements.LoadFinalized(ctx, tx, 42)
	is.NoError(err)
	is.Equal(all, finalized)
}

func TestLoadFinalizedFilters(t *testing.T) {
	is := assert.New(t)
	ctx := context.Background()
	db := prepareDB(t)
	c := newCatalog(t, db, config.ColumnEncodingName)
	tx := begin(t, db)

	require.NoError(t, c.Writer.InsertShardPlacementRow(ctx, tx, 1, 7, shards.Inactive, "w1", 5432))
	require.NoError(t, c.Writer.InsertShardPlacementRow(ctx, tx, 2, 7, shards.ToDelete, "w2", 5432))

	// only unhealthy placements: no error, just nothing
	finalized, err := c.Placements.LoadFinalized(ctx, tx, 7)
	is.NoError(err)
	is.Empty(finalized)

	require.NoError(t, c.Writer.InsertShardPlacementRow(ctx, tx, 3, 7, shards.Finalized, "w3", 6432))
	finalized, err = c.Placements.LoadFinalized(ctx, tx, 7)
	is.NoError(err)
	require.Len(t, finalized, 1)
	is.Equal("w3", finalized[0].NodeName)

	all, err := c.Placements.LoadAll(ctx, tx, 7)
	is.NoError(err)
	is.Len(all, 3)
}

func TestPlacementsVisibleAfterCommit(t *testing.T) {
	is := assert.New(t)
	ctx := context.Background()
	db := prepareDB(t)
	c := newCatalog(t, db, config.ColumnEncodingName)

	writer, err := db.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, c.Writer.InsertShardPlacementRow(ctx, writer, 1, 5, shards.Finalized, "w1", 5432))

	reader := begin(t, db)
	_, err = c.Placements.LoadAll(ctx, reader, 5)
	is.True(dmerror.Is(err, dmerror.DM_NO_DATA))

	require.NoError(t, writer.Commit(ctx))
	all, err := c.Placements.LoadAll(ctx, reader, 5)
	is.NoError(err)
	is.Len(all, 1)
}
