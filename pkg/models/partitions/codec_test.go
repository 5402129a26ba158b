package partitions_test

import (
	"context"
	"testing"

	"github.com/pg-sharding/distmeta/pkg/models/dmerror"
	"github.com/pg-sharding/distmeta/pkg/models/partitions"
	"github.com/pg-sharding/distmeta/qdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prepareTx(t *testing.T) qdb.Tx {
	t.Helper()
	ctx := context.Background()

	db, err := qdb.RestoreQDB("")
	require.NoError(t, err)
	require.NoError(t, db.CreateRelation(ctx, &qdb.Relation{
		ID:   16384,
		Name: "orders",
		Columns: []qdb.Attribute{
			{Num: 1, Name: "id", TypeID: 20, TypMod: -1},
			{Num: 2, Name: "customer", TypeID: 25, TypMod: -1, Collation: 100},
		},
	}))
	tx, err := db.Begin(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tx.Rollback(ctx) })
	return tx
}

func TestNameCodec(t *testing.T) {
	is := assert.New(t)
	ctx := context.Background()
	tx := prepareTx(t)

	codec, err := partitions.NewColumnCodec("name")
	require.NoError(t, err)

	key, err := codec.Encode(&partitions.ColumnRef{Name: "customer", AttNum: 2})
	is.NoError(err)
	is.Equal("customer", key)

	col, err := codec.Decode(ctx, tx, 16384, key)
	is.NoError(err)
	is.Equal(int16(2), col.AttNum)
	is.Equal(uint32(25), col.TypeID)
	is.Equal(uint32(100), col.Collation)

	_, err = codec.Decode(ctx, tx, 16384, "nope")
	is.True(dmerror.Is(err, dmerror.DM_UNDEFINED_COLUMN))
	is.EqualError(err, `column "nope" of relation "orders" does not exist`)

	_, err = codec.Decode(ctx, tx, 16384, "xmin")
	is.True(dmerror.Is(err, dmerror.DM_INVALID_COLUMN_REFERENCE))

	_, err = codec.Encode(&partitions.ColumnRef{})
	is.True(dmerror.Is(err, dmerror.DM_NULL_ARGUMENT))
}

func TestNodeCodec(t *testing.T) {
	is := assert.New(t)
	ctx := context.Background()
	tx := prepareTx(t)

	codec, err := partitions.NewColumnCodec("node")
	require.NoError(t, err)

	key, err := codec.Encode(&partitions.ColumnRef{Name: "id", AttNum: 1, TypeID: 20, TypMod: -1})
	is.NoError(err)
	is.Equal("{VAR :varno 1 :varattno 1 :vartype 20 :vartypmod -1 :varcollid 0 :varlevelsup 0 :varnoold 1 :varoattno 1 :location -1}", key)

	col, err := codec.Decode(ctx, tx, 16384, key)
	is.NoError(err)
	is.Equal("id", col.Name)
	is.Equal(uint32(20), col.TypeID)
	is.Equal(int32(-1), col.TypMod)

	_, err = codec.Decode(ctx, tx, 16384, "{VAR :varno 1 :varattno 9 :vartype 20}")
	is.True(dmerror.Is(err, dmerror.DM_UNDEFINED_COLUMN))

	_, err = codec.Decode(ctx, tx, 16384, "{VAR :varno 1 :varattno -3 :vartype 28}")
	is.True(dmerror.Is(err, dmerror.DM_INVALID_COLUMN_REFERENCE))

	_, err = codec.Encode(&partitions.ColumnRef{Name: "ctid", AttNum: -1})
	is.True(dmerror.Is(err, dmerror.DM_INVALID_COLUMN_REFERENCE))
}

func TestParseVarNode(t *testing.T) {
	for _, tt := range []struct {
		name string
		text string
		want *partitions.VarNode
		ok   bool
	}{
		{
			name: "full node",
			text: "{VAR :varno 1 :varattno 3 :vartype 1043 :vartypmod 36 :varcollid 100 :varlevelsup 0 :varnoold 1 :varoattno 3 :location -1}",
			want: &partitions.VarNode{AttNum: 3, TypeID: 1043, TypMod: 36, Collation: 100},
			ok:   true,
		},
		{
			name: "surrounding whitespace",
			text: "  {VAR :varattno 2 :vartype 23}\n",
			want: &partitions.VarNode{AttNum: 2, TypeID: 23},
			ok:   true,
		},
		{name: "not a var", text: "{CONST :consttype 23}"},
		{name: "longer node name", text: "{VARX :varattno 1 :vartype 23}"},
		{name: "node name without fields", text: "{VARCHAR}"},
		{name: "odd fields", text: "{VAR :varattno}"},
		{name: "no attno", text: "{VAR :vartype 23}"},
		{name: "bad number", text: "{VAR :varattno x}"},
		{name: "attno overflow", text: "{VAR :varattno 70000}"},
		{name: "missing colon", text: "{VAR varattno 1}"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			got, err := partitions.ParseVarNode(tt.text)
			if !tt.ok {
				assert.True(t, dmerror.Is(err, dmerror.DM_METADATA_CORRUPTION), "err: %v", err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPartitionTypeFromDB(t *testing.T) {
	is := assert.New(t)

	pt, err := partitions.PartitionTypeFromDB('h')
	is.NoError(err)
	is.Equal(partitions.Hash, pt)
	is.Equal("hash", pt.String())

	pt, err = partitions.PartitionTypeFromDB('r')
	is.NoError(err)
	is.Equal(partitions.Range, pt)
	is.Equal(byte('r'), partitions.PartitionTypeToDB(pt))

	_, err = partitions.PartitionTypeFromDB('x')
	is.True(dmerror.Is(err, dmerror.DM_METADATA_CORRUPTION))

	_, err = partitions.NewColumnCodec("blob")
	is.True(dmerror.Is(err, dmerror.DM_INVALID_PARAMETER))
}
