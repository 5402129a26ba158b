package qdb_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/pg-sharding/distmeta/qdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string {
	return &s
}

var usersRelation = &qdb.Relation{
	ID:   16384,
	Name: "users",
	Columns: []qdb.Attribute{
		{Num: 1, Name: "id", TypeID: 23, TypMod: -1},
		{Num: 2, Name: "name", TypeID: 25, TypMod: -1, Collation: 100},
	},
}

func newMemQDB(t *testing.T) *qdb.MemQDB {
	t.Helper()
	db, err := qdb.RestoreQDB("")
	require.NoError(t, err)
	require.NoError(t, db.CreateRelation(context.Background(), usersRelation))
	return db
}

func TestMemQDBReadOwnWrites(t *testing.T) {
	is := assert.New(t)
	ctx := context.Background()
	db := newMemQDB(t)

	tx, err := db.Begin(ctx)
	require.NoError(t, err)

	has, err := tx.HasPartitions(ctx)
	is.NoError(err)
	is.False(has)

	is.NoError(tx.InsertPartition(ctx, &qdb.Partition{RelationID: 16384, Method: qdb.PartitionMethodHash, Key: "id"}))
	is.NoError(tx.InsertShard(ctx, &qdb.Shard{ID: 7, RelationID: 16384, Storage: qdb.ShardStorageTable, MinValue: strPtr("0"), MaxValue: strPtr("10")}))
	is.NoError(tx.InsertPlacement(ctx, &qdb.Placement{ID: 2, ShardID: 7, State: 1, NodeName: "n2", NodePort: 5432}))
	is.NoError(tx.InsertPlacement(ctx, &qdb.Placement{ID: 1, ShardID: 7, State: 1, NodeName: "n1", NodePort: 5432}))

	has, err = tx.HasPartitions(ctx)
	is.NoError(err)
	is.True(has)

	p, err := tx.GetPartition(ctx, 16384)
	is.NoError(err)
	is.Equal("id", p.Key)

	ids, err := tx.ListShardIDs(ctx, 16384)
	is.NoError(err)
	is.Equal([]uint64{7}, ids)

	pls, err := tx.ListPlacements(ctx, 7)
	is.NoError(err)
	is.Len(pls, 2)
	is.Equal(uint64(1), pls[0].ID)

	// invisible to a concurrent transaction until commit
	other, err := db.Begin(ctx)
	require.NoError(t, err)
	_, err = other.GetPartition(ctx, 16384)
	is.ErrorIs(err, qdb.ErrNotFound)

	is.NoError(tx.Commit(ctx))

	p, err = other.GetPartition(ctx, 16384)
	is.NoError(err)
	is.Equal(qdb.PartitionMethodHash, p.Method)
	is.NoError(other.Rollback(ctx))
}

func TestMemQDBRollback(t *testing.T) {
	is := assert.New(t)
	ctx := context.Background()
	db := newMemQDB(t)

	tx, err := db.Begin(ctx)
	require.NoError(t, err)
	is.NoError(tx.InsertShard(ctx, &qdb.Shard{ID: 1, RelationID: 16384, Storage: qdb.ShardStorageTable}))
	is.NoError(tx.Rollback(ctx))

	is.ErrorIs(tx.Commit(ctx), qdb.ErrTxClosed)
	is.ErrorIs(tx.Rollback(ctx), qdb.ErrTxClosed)

	tx, err = db.Begin(ctx)
	require.NoError(t, err)
	_, err = tx.GetShard(ctx, 1)
	is.ErrorIs(err, qdb.ErrNotFound)
}

func TestMemQDBUniqueness(t *testing.T) {
	is := assert.New(t)
	ctx := context.Background()
	db := newMemQDB(t)

	tx, err := db.Begin(ctx)
	require.NoError(t, err)
	is.NoError(tx.InsertShard(ctx, &qdb.Shard{ID: 1, RelationID: 16384}))
	is.ErrorIs(tx.InsertShard(ctx, &qdb.Shard{ID: 1, RelationID: 16384}), qdb.ErrUniqueViolation)

	// a racing transaction inserting the same id loses at commit
	racer, err := db.Begin(ctx)
	require.NoError(t, err)
	is.NoError(racer.InsertShard(ctx, &qdb.Shard{ID: 1, RelationID: 16384}))

	is.NoError(tx.Commit(ctx))
	is.ErrorIs(racer.Commit(ctx), qdb.ErrUniqueViolation)

	tx, err = db.Begin(ctx)
	require.NoError(t, err)
	is.ErrorIs(tx.InsertShard(ctx, &qdb.Shard{ID: 1, RelationID: 16384}), qdb.ErrUniqueViolation)
}

func TestMemQDBDeletePlacement(t *testing.T) {
	is := assert.New(t)
	ctx := context.Background()
	db := newMemQDB(t)

	tx, err := db.Begin(ctx)
	require.NoError(t, err)
	is.NoError(tx.InsertPlacement(ctx, &qdb.Placement{ID: 1, ShardID: 7, State: 1, NodeName: "n1", NodePort: 5432}))
	is.NoError(tx.InsertPlacement(ctx, &qdb.Placement{ID: 2, ShardID: 7, State: 3, NodeName: "n2", NodePort: 5432}))
	is.NoError(tx.Commit(ctx))

	tx, err = db.Begin(ctx)
	require.NoError(t, err)
	is.ErrorIs(tx.DeletePlacement(ctx, 99), qdb.ErrNotFound)
	is.NoError(tx.DeletePlacement(ctx, 1))
	is.ErrorIs(tx.DeletePlacement(ctx, 1), qdb.ErrNotFound)

	pls, err := tx.ListPlacements(ctx, 7)
	is.NoError(err)
	is.Len(pls, 1)

	// the id is free again inside the deleting transaction
	is.NoError(tx.InsertPlacement(ctx, &qdb.Placement{ID: 1, ShardID: 7, State: 4, NodeName: "n3", NodePort: 5433}))
	is.NoError(tx.Commit(ctx))

	tx, err = db.Begin(ctx)
	require.NoError(t, err)
	pls, err = tx.ListPlacements(ctx, 7)
	is.NoError(err)
	require.Len(t, pls, 2)
	is.Equal("n3", pls[0].NodeName)
	is.Equal(int32(4), pls[0].State)
}

func TestMemQDBConflictingDeletes(t *testing.T) {
	is := assert.New(t)
	ctx := context.Background()
	db := newMemQDB(t)

	seed, err := db.Begin(ctx)
	require.NoError(t, err)
	is.NoError(seed.InsertPlacement(ctx, &qdb.Placement{ID: 1, ShardID: 7, State: 1, NodeName: "n1", NodePort: 5432}))
	is.NoError(seed.InsertPlacement(ctx, &qdb.Placement{ID: 2, ShardID: 7, State: 1, NodeName: "n2", NodePort: 5432}))
	is.NoError(seed.Commit(ctx))

	t.Run("second delete of the same row fails", func(t *testing.T) {
		a, err := db.Begin(ctx)
		require.NoError(t, err)
		b, err := db.Begin(ctx)
		require.NoError(t, err)

		is.NoError(a.DeletePlacement(ctx, 1))
		is.NoError(b.DeletePlacement(ctx, 1))
		is.NoError(a.Commit(ctx))
		is.ErrorIs(b.Commit(ctx), qdb.ErrNotFound)
	})

	t.Run("stale delete does not remove a replaced row", func(t *testing.T) {
		c, err := db.Begin(ctx)
		require.NoError(t, err)
		is.NoError(c.DeletePlacement(ctx, 2))

		d, err := db.Begin(ctx)
		require.NoError(t, err)
		is.NoError(d.DeletePlacement(ctx, 2))
		is.NoError(d.InsertPlacement(ctx, &qdb.Placement{ID: 2, ShardID: 7, State: 1, NodeName: "n3", NodePort: 5432}))
		is.NoError(d.Commit(ctx))

		is.ErrorIs(c.Commit(ctx), qdb.ErrNotFound)

		tx, err := db.Begin(ctx)
		require.NoError(t, err)
		pls, err := tx.ListPlacements(ctx, 7)
		is.NoError(err)
		require.Len(t, pls, 1)
		is.Equal("n3", pls[0].NodeName)
		is.NoError(tx.Rollback(ctx))
	})
}

func TestMemQDBColumns(t *testing.T) {
	is := assert.New(t)
	ctx := context.Background()
	db := newMemQDB(t)

	tx, err := db.Begin(ctx)
	require.NoError(t, err)

	name, err := tx.RelationName(ctx, 16384)
	is.NoError(err)
	is.Equal("users", name)

	a, err := tx.ColumnByName(ctx, 16384, "name")
	is.NoError(err)
	is.Equal(int16(2), a.Num)
	is.Equal(qdb.RelationID(16384), a.RelationID)
	is.False(a.IsSystem())

	a, err = tx.ColumnByName(ctx, 16384, "ctid")
	is.NoError(err)
	is.True(a.IsSystem())

	a, err = tx.ColumnByNum(ctx, 16384, 1)
	is.NoError(err)
	is.Equal("id", a.Name)

	_, err = tx.ColumnByName(ctx, 16384, "missing")
	is.ErrorIs(err, qdb.ErrNotFound)
	_, err = tx.ColumnByNum(ctx, 1, 1)
	is.ErrorIs(err, qdb.ErrNotFound)

	is.Error(db.CreateRelation(ctx, usersRelation))
}

func TestMemQDBSequencesSurviveRollback(t *testing.T) {
	is := assert.New(t)
	ctx := context.Background()
	db := newMemQDB(t)

	tx, err := db.Begin(ctx)
	require.NoError(t, err)
	first, err := db.NextVal(ctx, "shard_id_sequence")
	is.NoError(err)
	is.NoError(tx.Rollback(ctx))

	second, err := db.NextVal(ctx, "shard_id_sequence")
	is.NoError(err)
	is.Greater(second, first)

	other, err := db.NextVal(ctx, "shard_placement_id_sequence")
	is.NoError(err)
	is.Equal(uint64(1), other)
}

func TestMemQDBDumpRestore(t *testing.T) {
	is := assert.New(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "memqdb.json")

	db, err := qdb.RestoreQDB(path)
	require.NoError(t, err)
	require.NoError(t, db.CreateRelation(ctx, usersRelation))

	tx, err := db.Begin(ctx)
	require.NoError(t, err)
	is.NoError(tx.InsertPartition(ctx, &qdb.Partition{RelationID: 16384, Method: qdb.PartitionMethodRange, Key: "id"}))
	is.NoError(tx.InsertShard(ctx, &qdb.Shard{ID: 3, RelationID: 16384, Storage: qdb.ShardStorageTable, MinValue: strPtr("1"), MaxValue: strPtr("9")}))
	is.NoError(tx.Commit(ctx))
	_, err = db.NextVal(ctx, "shard_id_sequence")
	is.NoError(err)
	is.NoError(db.Close())

	restored, err := qdb.RestoreQDB(path)
	require.NoError(t, err)

	tx, err = restored.Begin(ctx)
	require.NoError(t, err)
	s, err := tx.GetShard(ctx, 3)
	is.NoError(err)
	is.Equal("9", *s.MaxValue)
	name, err := tx.RelationName(ctx, 16384)
	is.NoError(err)
	is.Equal("users", name)

	next, err := restored.NextVal(ctx, "shard_id_sequence")
	is.NoError(err)
	is.Equal(uint64(2), next)
}

// must run with -race
func TestMemQDBConcurrentCommits(t *testing.T) {
	ctx := context.Background()
	db := newMemQDB(t)

	var wg sync.WaitGroup
	for i := 1; i <= 32; i++ {
		wg.Add(1)
		go func(id uint64) {
			defer wg.Done()
			tx, err := db.Begin(ctx)
			if err != nil {
				return
			}
			_ = tx.InsertShard(ctx, &qdb.Shard{ID: id, RelationID: 16384})
			_ = tx.Commit(ctx)
		}(uint64(i))
	}
	wg.Wait()

	tx, err := db.Begin(ctx)
	require.NoError(t, err)
	ids, err := tx.ListShardIDs(ctx, 16384)
	require.NoError(t, err)
	assert.Len(t, ids, 32)
}
