package qdb

// RelationID is the storage engine's object identifier of a table.
type RelationID uint32

const InvalidRelationID = RelationID(0)

const (
	PartitionMethodHash  = byte('h')
	PartitionMethodRange = byte('r')
)

// Partition is a row of the partition table: one per distributed table.
type Partition struct {
	RelationID RelationID `json:"relation_id"`
	Method     byte       `json:"partition_method"`
	Key        string     `json:"key"`
}

const (
	ShardStorageTable        = byte('t')
	ShardStorageForeignTable = byte('f')
	ShardStorageColumnar     = byte('c')
)

// Shard is a row of the shard table. MinValue and MaxValue are the text
// forms of the shard bounds and are either both set or both nil.
type Shard struct {
	ID         uint64     `json:"id"`
	RelationID RelationID `json:"relation_id"`
	Storage    byte       `json:"storage"`
	MinValue   *string    `json:"min_value,omitempty"`
	MaxValue   *string    `json:"max_value,omitempty"`
}

// Placement is a row of the shard placement table.
type Placement struct {
	ID       uint64 `json:"id"`
	ShardID  uint64 `json:"shard_id"`
	State    int32  `json:"shard_state"`
	NodeName string `json:"node_name"`
	NodePort uint32 `json:"node_port"`
}

// Attribute describes one column of a relation as the host catalog sees
// it. System columns carry negative numbers.
type Attribute struct {
	RelationID RelationID `json:"relation_id"`
	Num        int16      `json:"num"`
	Name       string     `json:"name"`
	TypeID     uint32     `json:"type_id"`
	TypMod     int32      `json:"typmod"`
	Collation  uint32     `json:"collation"`
}

func (a *Attribute) IsSystem() bool {
	return a.Num <= 0
}

// Relation is a table known to MemQDB. PgQDB reads the same facts from
// pg_class and pg_attribute.
type Relation struct {
	ID      RelationID  `json:"id"`
	Name    string      `json:"name"`
	Columns []Attribute `json:"columns"`
}

// System columns every relation exposes, numbered as in PostgreSQL.
var systemAttributes = []Attribute{
	{Num: -1, Name: "ctid", TypeID: 27, TypMod: -1},
	{Num: -2, Name: "oid", TypeID: 26, TypMod: -1},
	{Num: -3, Name: "xmin", TypeID: 28, TypMod: -1},
	{Num: -4, Name: "cmin", TypeID: 29, TypMod: -1},
	{Num: -5, Name: "xmax", TypeID: 28, TypMod: -1},
	{Num: -6, Name: "cmax", TypeID: 29, TypMod: -1},
	{Num: -7, Name: "tableoid", TypeID: 26, TypMod: -1},
}
