package qdb

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/pg-sharding/distmeta/pkg/dmlog"
)

// memTx buffers its writes until Commit. Reads merge the buffer with the
// committed state, so a transaction sees its own writes and nobody else's
// uncommitted ones.
type memTx struct {
	id uuid.UUID
	db *MemQDB

	partitions map[RelationID]*Partition
	shards     map[uint64]*Shard
	placements map[uint64]*Placement
	// committed placement rows removed by this transaction, as they were
	// when the delete ran
	deleted map[uint64]*Placement

	closed bool
}

var _ Tx = &memTx{}

func (t *memTx) ID() uuid.UUID {
	return t.id
}

func (t *memTx) check() error {
	if t.closed {
		return ErrTxClosed
	}
	return nil
}

// ==============================================================================
//                                 PARTITIONS
// ==============================================================================

func (t *memTx) GetPartition(_ context.Context, relID RelationID) (*Partition, error) {
	if err := t.check(); err != nil {
		return nil, err
	}
	if p, ok := t.partitions[relID]; ok {
		ret := *p
		return &ret, nil
	}
	if p, ok := t.db.committedPartition(relID); ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: partition (relation_id)=(%d)", ErrNotFound, relID)
}

func (t *memTx) HasPartitions(_ context.Context) (bool, error) {
	if err := t.check(); err != nil {
		return false, err
	}
	if len(t.partitions) > 0 {
		return true, nil
	}
	t.db.mu.RLock()
	defer t.db.mu.RUnlock()
	return len(t.db.Partitions) > 0, nil
}

func (t *memTx) InsertPartition(_ context.Context, p *Partition) error {
	if err := t.check(); err != nil {
		return err
	}
	dmlog.Zero.Debug().Str("tx", t.id.String()).Interface("partition", p).Msg("memqdb: insert partition")

	if _, ok := t.partitions[p.RelationID]; ok {
		return fmt.Errorf("%w: partition (relation_id)=(%d)", ErrUniqueViolation, p.RelationID)
	}
	if _, ok := t.db.committedPartition(p.RelationID); ok {
		return fmt.Errorf("%w: partition (relation_id)=(%d)", ErrUniqueViolation, p.RelationID)
	}
	stored := *p
	t.partitions[p.RelationID] = &stored
	return nil
}

// ==============================================================================
//                                   SHARDS
// ==============================================================================

func (t *memTx) GetShard(_ context.Context, shardID uint64) (*Shard, error) {
	if err := t.check(); err != nil {
		return nil, err
	}
	if s, ok := t.shards[shardID]; ok {
		ret := *s
		return &ret, nil
	}
	if s, ok := t.db.committedShard(shardID); ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: shard (id)=(%d)", ErrNotFound, shardID)
}

func (t *memTx) ListShardIDs(_ context.Context, relID RelationID) ([]uint64, error) {
	if err := t.check(); err != nil {
		return nil, err
	}
	ret := t.db.committedShardIDs(relID)
	for id, s := range t.shards {
		if s.RelationID == relID {
			ret = append(ret, id)
		}
	}
	slices.Sort(ret)
	return ret, nil
}

func (t *memTx) InsertShard(_ context.Context, s *Shard) error {
	if err := t.check(); err != nil {
		return err
	}
	dmlog.Zero.Debug().Str("tx", t.id.String()).Uint64("shard", s.ID).Msg("memqdb: insert shard")

	if _, ok := t.shards[s.ID]; ok {
		return fmt.Errorf("%w: shard (id)=(%d)", ErrUniqueViolation, s.ID)
	}
	if _, ok := t.db.committedShard(s.ID); ok {
		return fmt.Errorf("%w: shard (id)=(%d)", ErrUniqueViolation, s.ID)
	}
	stored := *s
	t.shards[s.ID] = &stored
	return nil
}

// ==============================================================================
//                                 PLACEMENTS
// ==============================================================================

func (t *memTx) ListPlacements(_ context.Context, shardID uint64) ([]*Placement, error) {
	if err := t.check(); err != nil {
		return nil, err
	}
	var ret []*Placement
	for _, p := range t.db.committedPlacements(shardID) {
		if _, gone := t.deleted[p.ID]; gone {
			continue
		}
		if _, shadowed := t.placements[p.ID]; shadowed {
			continue
		}
		ret = append(ret, p)
	}
	for _, p := range t.placements {
		if p.ShardID == shardID {
			cp := *p
			ret = append(ret, &cp)
		}
	}
	sortPlacements(ret)
	return ret, nil
}

func (t *memTx) InsertPlacement(_ context.Context, p *Placement) error {
	if err := t.check(); err != nil {
		return err
	}
	dmlog.Zero.Debug().Str("tx", t.id.String()).Interface("placement", p).Msg("memqdb: insert placement")

	if _, ok := t.placements[p.ID]; ok {
		return fmt.Errorf("%w: shard_placement (id)=(%d)", ErrUniqueViolation, p.ID)
	}
	if _, gone := t.deleted[p.ID]; !gone && t.db.hasCommittedPlacement(p.ID) {
		return fmt.Errorf("%w: shard_placement (id)=(%d)", ErrUniqueViolation, p.ID)
	}
	stored := *p
	t.placements[p.ID] = &stored
	return nil
}

func (t *memTx) DeletePlacement(_ context.Context, placementID uint64) error {
	if err := t.check(); err != nil {
		return err
	}
	dmlog.Zero.Debug().Str("tx", t.id.String()).Uint64("placement", placementID).Msg("memqdb: delete placement")

	if _, ok := t.placements[placementID]; ok {
		delete(t.placements, placementID)
		return nil
	}
	if _, gone := t.deleted[placementID]; !gone {
		if row, ok := t.db.committedPlacementRow(placementID); ok {
			t.deleted[placementID] = row
			return nil
		}
	}
	return fmt.Errorf("%w: shard_placement (id)=(%d)", ErrNotFound, placementID)
}

// ==============================================================================
//                              HOST CATALOG
// ==============================================================================

func (t *memTx) RelationName(_ context.Context, relID RelationID) (string, error) {
	if err := t.check(); err != nil {
		return "", err
	}
	t.db.mu.RLock()
	defer t.db.mu.RUnlock()
	rel, ok := t.db.Relations[relID]
	if !ok {
		return "", fmt.Errorf("%w: relation %d", ErrNotFound, relID)
	}
	return rel.Name, nil
}

func (t *memTx) ColumnByName(_ context.Context, relID RelationID, name string) (*Attribute, error) {
	if err := t.check(); err != nil {
		return nil, err
	}
	return t.db.lookupColumn(relID, func(a *Attribute) bool { return a.Name == name })
}

func (t *memTx) ColumnByNum(_ context.Context, relID RelationID, num int16) (*Attribute, error) {
	if err := t.check(); err != nil {
		return nil, err
	}
	return t.db.lookupColumn(relID, func(a *Attribute) bool { return a.Num == num })
}

// ==============================================================================
//                                   LOCKS
// ==============================================================================

func (t *memTx) AdvisoryXactLock(ctx context.Context, key int64, shared bool) error {
	if err := t.check(); err != nil {
		return err
	}
	dmlog.Zero.Debug().
		Str("tx", t.id.String()).
		Int64("key", key).
		Bool("shared", shared).
		Msg("memqdb: acquire advisory lock")
	return t.db.locks.acquire(ctx, key, t.id, shared)
}

// ==============================================================================
//                                TRANSACTION END
// ==============================================================================

func (t *memTx) Commit(_ context.Context) error {
	if err := t.check(); err != nil {
		return err
	}
	defer t.finish()

	q := t.db
	q.mu.Lock()
	defer q.mu.Unlock()

	var commands []Command
	for id, p := range t.partitions {
		if _, ok := q.Partitions[id]; ok {
			return fmt.Errorf("%w: partition (relation_id)=(%d)", ErrUniqueViolation, id)
		}
		commands = append(commands, NewUpdateCommand(q.Partitions, id, p))
	}
	for id, s := range t.shards {
		if _, ok := q.Shards[id]; ok {
			return fmt.Errorf("%w: shard (id)=(%d)", ErrUniqueViolation, id)
		}
		commands = append(commands, NewUpdateCommand(q.Shards, id, s))
	}
	for id, seen := range t.deleted {
		// a concurrent commit removed or replaced the row this delete saw
		if q.Placements[id] != seen {
			return fmt.Errorf("%w: shard_placement (id)=(%d) was deleted concurrently", ErrNotFound, id)
		}
		commands = append(commands, NewDeleteCommand(q.Placements, id))
	}
	for id, p := range t.placements {
		if _, gone := t.deleted[id]; !gone {
			if _, ok := q.Placements[id]; ok {
				return fmt.Errorf("%w: shard_placement (id)=(%d)", ErrUniqueViolation, id)
			}
		}
		commands = append(commands, NewUpdateCommand(q.Placements, id, p))
	}

	if len(commands) == 0 {
		dmlog.Zero.Debug().Str("tx", t.id.String()).Msg("memqdb: commit read-only transaction")
		return nil
	}

	dmlog.Zero.Debug().Str("tx", t.id.String()).Int("commands", len(commands)).Msg("memqdb: commit transaction")
	return ExecuteCommands(q.DumpState, commands...)
}

func (t *memTx) Rollback(_ context.Context) error {
	if err := t.check(); err != nil {
		return err
	}
	dmlog.Zero.Debug().Str("tx", t.id.String()).Msg("memqdb: rollback transaction")
	t.finish()
	return nil
}

func (t *memTx) finish() {
	t.closed = true
	t.partitions = nil
	t.shards = nil
	t.placements = nil
	t.deleted = nil
	t.db.locks.releaseAll(t.id)
}
