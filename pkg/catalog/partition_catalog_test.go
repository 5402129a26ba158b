package catalog_test

import (
	"context"
	"testing"

	"github.com/pg-sharding/distmeta/pkg/config"
	"github.com/pg-sharding/distmeta/pkg/models/dmerror"
	"github.com/pg-sharding/distmeta/pkg/models/partitions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionRoundTrip(t *testing.T) {
	for _, encoding := range []string{config.ColumnEncodingName, config.ColumnEncodingNode} {
		t.Run(encoding, func(t *testing.T) {
			is := assert.New(t)
			ctx := context.Background()
			db := prepareDB(t)
			c := newCatalog(t, db, encoding)
			tx := begin(t, db)

			col, err := c.Partitions.ColumnByName(ctx, tx, eventsID, "kind")
			require.NoError(t, err)
			is.NoError(c.Writer.InsertPartitionRow(ctx, tx, eventsID, partitions.Hash, col))

			pt, err := c.Partitions.ResolvePartitionType(ctx, tx, eventsID)
			is.NoError(err)
			is.Equal(partitions.Hash, pt)

			got, err := c.Partitions.ResolvePartitionColumn(ctx, tx, eventsID)
			is.NoError(err)
			is.Equal("kind", got.Name)
			is.Equal(int16(2), got.AttNum)
			is.Equal(uint32(25), got.TypeID)
			is.Equal(uint32(100), got.Collation)
		})
	}
}

func TestPartitionCatalogMissing(t *testing.T) {
	is := assert.New(t)
	ctx := context.Background()
	db := prepareDB(t)
	c := newCatalog(t, db, config.ColumnEncodingName)
	tx := begin(t, db)

	_, err := c.Partitions.ResolvePartitionColumn(ctx, tx, eventsID)
	is.True(dmerror.Is(err, dmerror.DM_UNDEFINED_OBJECT))
	is.EqualError(err, `no partition column is defined for relation "events"`)

	_, err = c.Partitions.ResolvePartitionType(ctx, tx, eventsID)
	is.True(dmerror.Is(err, dmerror.DM_UNDEFINED_OBJECT))

	_, err = c.Partitions.ResolvePartitionType(ctx, tx, 0)
	is.True(dmerror.Is(err, dmerror.DM_NULL_ARGUMENT))

	ok, err := c.Partitions.IsDistributed(ctx, tx, eventsID)
	is.NoError(err)
	is.False(ok)

	ok, err = c.Partitions.IsDistributed(ctx, tx, 0)
	is.NoError(err)
	is.False(ok)

	ok, err = c.Partitions.AnyDistributedTablesExist(ctx, tx)
	is.NoError(err)
	is.False(ok)
}

func TestIsDistributed(t *testing.T) {
	is := assert.New(t)
	ctx := context.Background()
	db := prepareDB(t)
	c := newCatalog(t, db, config.ColumnEncodingName)
	tx := begin(t, db)

	col, err := c.Partitions.ColumnByName(ctx, tx, accountsID, "id")
	require.NoError(t, err)
	is.NoError(c.Writer.InsertPartitionRow(ctx, tx, accountsID, partitions.Range, col))

	ok, err := c.Partitions.IsDistributed(ctx, tx, accountsID)
	is.NoError(err)
	is.True(ok)

	ok, err = c.Partitions.IsDistributed(ctx, tx, eventsID)
	is.NoError(err)
	is.False(ok)

	ok, err = c.Partitions.AnyDistributedTablesExist(ctx, tx)
	is.NoError(err)
	is.True(ok)

	// duplicate rows are rejected by the store
	is.Error(c.Writer.InsertPartitionRow(ctx, tx, accountsID, partitions.Hash, col))
}

func TestColumnByName(t *testing.T) {
	is := assert.New(t)
	ctx := context.Background()
	db := prepareDB(t)
	c := newCatalog(t, db, config.ColumnEncodingName)
	tx := begin(t, db)

	col, err := c.Partitions.ColumnByName(ctx, tx, eventsID, "created_at")
	is.NoError(err)
	is.Equal(int16(3), col.AttNum)
	is.Equal(uint32(20), col.TypeID)

	_, err = c.Partitions.ColumnByName(ctx, tx, eventsID, "missing")
	is.True(dmerror.Is(err, dmerror.DM_UNDEFINED_COLUMN))
	is.EqualError(err, `column "missing" of relation "events" does not exist`)

	_, err = c.Partitions.ColumnByName(ctx, tx, eventsID, "ctid")
	is.True(dmerror.Is(err, dmerror.DM_INVALID_COLUMN_REFERENCE))
	is.EqualError(err, `column "ctid" of relation "events" is a system column`)

	_, err = c.Partitions.ColumnByName(ctx, tx, 0, "id")
	is.True(dmerror.Is(err, dmerror.DM_NULL_ARGUMENT))
}

func TestNodeStrings(t *testing.T) {
	is := assert.New(t)
	ctx := context.Background()
	db := prepareDB(t)
	c := newCatalog(t, db, config.ColumnEncodingName)
	tx := begin(t, db)

	node, err := c.Partitions.ColumnNameToNodeString(ctx, tx, eventsID, "kind")
	is.NoError(err)
	is.Equal("{VAR :varno 1 :varattno 2 :vartype 25 :vartypmod -1 :varcollid 100 :varlevelsup 0 :varnoold 1 :varoattno 2 :location -1}", node)

	name, err := c.Partitions.NodeStringToColumnName(ctx, tx, eventsID, node)
	is.NoError(err)
	is.Equal("kind", name)

	_, err = c.Partitions.NodeStringToColumnName(ctx, tx, eventsID, "{VAR :varno 1 :varattno -1 :vartype 27}")
	is.True(dmerror.Is(err, dmerror.DM_INVALID_COLUMN_REFERENCE))
	is.EqualError(err, `attribute -1 of relation "events" is a system column`)

	_, err = c.Partitions.NodeStringToColumnName(ctx, tx, eventsID, "{VAR :varno 1 :varattno 12 :vartype 23}")
	is.True(dmerror.Is(err, dmerror.DM_UNDEFINED_COLUMN))

	_, err = c.Partitions.NodeStringToColumnName(ctx, tx, eventsID, "kind")
	is.True(dmerror.Is(err, dmerror.DM_INVALID_PARAMETER))

	_, err = c.Partitions.PartitionColumnToNodeString(ctx, tx, 0)
	is.True(dmerror.Is(err, dmerror.DM_NULL_ARGUMENT))

	_, err = c.Partitions.PartitionColumnToNodeString(ctx, tx, eventsID)
	is.True(dmerror.Is(err, dmerror.DM_UNDEFINED_OBJECT))

	col, err := c.Partitions.ColumnByName(ctx, tx, eventsID, "id")
	require.NoError(t, err)
	require.NoError(t, c.Writer.InsertPartitionRow(ctx, tx, eventsID, partitions.Hash, col))

	node, err = c.Partitions.PartitionColumnToNodeString(ctx, tx, eventsID)
	is.NoError(err)
	is.Contains(node, ":varattno 1 :vartype 23")
}
