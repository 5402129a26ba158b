package catalog

import (
	"context"
	"strings"

	"github.com/pg-sharding/distmeta/pkg/dmlog"
	"github.com/pg-sharding/distmeta/pkg/models/dmerror"
	"github.com/pg-sharding/distmeta/qdb"
)

// LockMode mirrors the PostgreSQL table lock modes.
type LockMode int

const (
	AccessShareLock LockMode = iota + 1
	RowShareLock
	RowExclusiveLock
	ShareUpdateExclusiveLock
	ShareLock
	ShareRowExclusiveLock
	ExclusiveLock
	AccessExclusiveLock
)

var lockModeNames = map[LockMode]string{
	AccessShareLock:          "AccessShareLock",
	RowShareLock:             "RowShareLock",
	RowExclusiveLock:         "RowExclusiveLock",
	ShareUpdateExclusiveLock: "ShareUpdateExclusiveLock",
	ShareLock:                "ShareLock",
	ShareRowExclusiveLock:    "ShareRowExclusiveLock",
	ExclusiveLock:            "ExclusiveLock",
	AccessExclusiveLock:      "AccessExclusiveLock",
}

func (m LockMode) String() string {
	if name, ok := lockModeNames[m]; ok {
		return name
	}
	return "InvalidLock"
}

// ParseLockMode accepts "ShareLock", "SHARE", "share row exclusive" and
// similar spellings.
func ParseLockMode(s string) (LockMode, error) {
	norm := strings.ToLower(s)
	norm = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(norm)
	norm = strings.TrimSuffix(norm, "lock")
	for mode, name := range lockModeNames {
		if strings.TrimSuffix(strings.ToLower(name), "lock") == norm {
			return mode, nil
		}
	}
	return 0, dmerror.Newf(dmerror.DM_INVALID_PARAMETER, "unknown lock mode %q", s)
}

// ShardLockManager takes transaction scoped advisory locks keyed by shard id.
type ShardLockManager struct{}

func NewShardLockManager() *ShardLockManager {
	return &ShardLockManager{}
}

// Acquire blocks until the lock on shardID is granted or ctx is done. Only
// ShareLock and ExclusiveLock are supported. The lock is released when tx
// ends.
func (l *ShardLockManager) Acquire(ctx context.Context, tx qdb.Tx, shardID uint64, mode LockMode) error {
	var shared bool
	switch mode {
	case ShareLock:
		shared = true
	case ExclusiveLock:
		shared = false
	default:
		return dmerror.New(dmerror.DM_INVALID_PARAMETER, "lockMode must be one of: ExclusiveLock, ShareLock")
	}

	dmlog.Zero.Debug().Uint64("shard", shardID).Str("mode", mode.String()).Msg("catalog: lock shard")
	return tx.AdvisoryXactLock(ctx, int64(shardID), shared)
}
