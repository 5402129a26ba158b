package shards

import (
	"fmt"

	"github.com/pg-sharding/distmeta/pkg/models/dmerror"
	"github.com/pg-sharding/distmeta/qdb"
)

type ShardState int32

const (
	Finalized ShardState = 1
	Cached    ShardState = 2
	Inactive  ShardState = 3
	ToDelete  ShardState = 4
)

func (s ShardState) String() string {
	switch s {
	case Finalized:
		return "finalized"
	case Cached:
		return "cached"
	case Inactive:
		return "inactive"
	case ToDelete:
		return "to_delete"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

type ShardStorage byte

const (
	Table        = ShardStorage(qdb.ShardStorageTable)
	ForeignTable = ShardStorage(qdb.ShardStorageForeignTable)
	Columnar     = ShardStorage(qdb.ShardStorageColumnar)
)

// ParseShardStorage accepts either the stored letter or the full name.
func ParseShardStorage(s string) (ShardStorage, error) {
	switch s {
	case "t", "table":
		return Table, nil
	case "f", "foreign":
		return ForeignTable, nil
	case "c", "columnar":
		return Columnar, nil
	default:
		return 0, dmerror.Newf(dmerror.DM_INVALID_PARAMETER, "unknown shard storage %q", s)
	}
}

// ShardInterval is a shard together with its typed bounds. MinValue and
// MaxValue are nil for shards stored without bounds.
type ShardInterval struct {
	ID          uint64
	RelationID  qdb.RelationID
	Storage     ShardStorage
	MinValue    any
	MaxValue    any
	ValueTypeID uint32
}

type ShardPlacement struct {
	ID       uint64
	ShardID  uint64
	State    ShardState
	NodeName string
	NodePort uint32
}

func (p *ShardPlacement) Finalized() bool {
	return p.State == Finalized
}

func ShardPlacementFromDB(p *qdb.Placement) *ShardPlacement {
	return &ShardPlacement{
		ID:       p.ID,
		ShardID:  p.ShardID,
		State:    ShardState(p.State),
		NodeName: p.NodeName,
		NodePort: p.NodePort,
	}
}

func ShardPlacementToDB(p *ShardPlacement) *qdb.Placement {
	return &qdb.Placement{
		ID:       p.ID,
		ShardID:  p.ShardID,
		State:    int32(p.State),
		NodeName: p.NodeName,
		NodePort: p.NodePort,
	}
}
