package partitions

import (
	"github.com/pg-sharding/distmeta/pkg/models/dmerror"
	"github.com/pg-sharding/distmeta/qdb"
)

type PartitionType byte

const (
	Hash  = PartitionType(qdb.PartitionMethodHash)
	Range = PartitionType(qdb.PartitionMethodRange)
)

func (t PartitionType) String() string {
	switch t {
	case Hash:
		return "hash"
	case Range:
		return "range"
	default:
		return "unknown"
	}
}

// PartitionTypeFromDB validates a stored partition method.
func PartitionTypeFromDB(method byte) (PartitionType, error) {
	switch t := PartitionType(method); t {
	case Hash, Range:
		return t, nil
	default:
		return 0, dmerror.Newf(dmerror.DM_METADATA_CORRUPTION, "unexpected partition method %q", method)
	}
}

func PartitionTypeToDB(t PartitionType) byte {
	return byte(t)
}

// ColumnRef identifies one column of a relation together with the type
// information needed to interpret its values.
type ColumnRef struct {
	RelationID qdb.RelationID
	AttNum     int16
	TypeID     uint32
	TypMod     int32
	Collation  uint32
	Name       string
}

func ColumnRefFromDB(a *qdb.Attribute) *ColumnRef {
	return &ColumnRef{
		RelationID: a.RelationID,
		AttNum:     a.Num,
		TypeID:     a.TypeID,
		TypMod:     a.TypMod,
		Collation:  a.Collation,
		Name:       a.Name,
	}
}
