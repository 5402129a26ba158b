package partitions

import (
	"context"
	"errors"

	"github.com/pg-sharding/distmeta/pkg/models/dmerror"
	"github.com/pg-sharding/distmeta/qdb"
)

// ColumnResolver is the part of the host catalog needed to resolve columns.
// qdb.Tx satisfies it.
type ColumnResolver interface {
	RelationName(ctx context.Context, relID qdb.RelationID) (string, error)
	ColumnByName(ctx context.Context, relID qdb.RelationID, name string) (*qdb.Attribute, error)
	ColumnByNum(ctx context.Context, relID qdb.RelationID, num int16) (*qdb.Attribute, error)
}

func relationName(ctx context.Context, r ColumnResolver, relID qdb.RelationID) string {
	name, err := r.RelationName(ctx, relID)
	if err != nil {
		return ""
	}
	return name
}

// LookupColumnByName resolves a user column by name.
func LookupColumnByName(ctx context.Context, r ColumnResolver, relID qdb.RelationID, name string) (*ColumnRef, error) {
	a, err := r.ColumnByName(ctx, relID, name)
	if err != nil {
		if errors.Is(err, qdb.ErrNotFound) {
			return nil, dmerror.Newf(dmerror.DM_UNDEFINED_COLUMN,
				"column \"%s\" of relation \"%s\" does not exist", name, relationName(ctx, r, relID))
		}
		return nil, err
	}
	if a.IsSystem() {
		return nil, dmerror.Newf(dmerror.DM_INVALID_COLUMN_REFERENCE,
			"column \"%s\" of relation \"%s\" is a system column", name, relationName(ctx, r, relID))
	}
	return ColumnRefFromDB(a), nil
}

// LookupColumnByNum resolves a user column by attribute number.
func LookupColumnByNum(ctx context.Context, r ColumnResolver, relID qdb.RelationID, num int16) (*ColumnRef, error) {
	if num <= 0 {
		return nil, dmerror.Newf(dmerror.DM_INVALID_COLUMN_REFERENCE,
			"attribute %d of relation \"%s\" is a system column", num, relationName(ctx, r, relID))
	}
	a, err := r.ColumnByNum(ctx, relID, num)
	if err != nil {
		if errors.Is(err, qdb.ErrNotFound) {
			return nil, dmerror.Newf(dmerror.DM_UNDEFINED_COLUMN,
				"attribute %d of relation \"%s\" does not exist", num, relationName(ctx, r, relID))
		}
		return nil, err
	}
	return ColumnRefFromDB(a), nil
}
