package qdb

//go:generate mockgen -source=qdb/qdb.go -destination=qdb/mock/qdb_mock.go -package=mock

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by point lookups and deletes that match no row.
	ErrNotFound = errors.New("qdb: row not found")

	// ErrUniqueViolation is returned when an insert collides with an existing key.
	ErrUniqueViolation = errors.New("qdb: duplicate key value violates unique constraint")

	// ErrTxClosed is returned by any call on a committed or rolled back transaction.
	ErrTxClosed = errors.New("qdb: transaction is closed")
)

// QDB is the persistent store holding distribution metadata.
type QDB interface {
	// Begin opens a transaction. Reads inside it observe its own writes and
	// only committed writes of others.
	Begin(ctx context.Context) (Tx, error)

	// NextVal advances the named sequence. The advance survives rollback of
	// any transaction that asked for it.
	NextVal(ctx context.Context, seqName string) (uint64, error)

	Close() error
}

// Tx is one transaction against the store. Nothing is durable before Commit.
type Tx interface {
	GetPartition(ctx context.Context, relID RelationID) (*Partition, error)
	HasPartitions(ctx context.Context) (bool, error)
	InsertPartition(ctx context.Context, p *Partition) error

	GetShard(ctx context.Context, shardID uint64) (*Shard, error)
	ListShardIDs(ctx context.Context, relID RelationID) ([]uint64, error)
	InsertShard(ctx context.Context, s *Shard) error

	ListPlacements(ctx context.Context, shardID uint64) ([]*Placement, error)
	InsertPlacement(ctx context.Context, p *Placement) error
	DeletePlacement(ctx context.Context, placementID uint64) error

	RelationName(ctx context.Context, relID RelationID) (string, error)
	ColumnByName(ctx context.Context, relID RelationID, name string) (*Attribute, error)
	ColumnByNum(ctx context.Context, relID RelationID, num int16) (*Attribute, error)

	// AdvisoryXactLock blocks until the lock on key is granted. The lock is
	// held until the transaction ends.
	AdvisoryXactLock(ctx context.Context, key int64, shared bool) error

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
