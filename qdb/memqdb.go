package qdb

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/pg-sharding/distmeta/pkg/dmlog"
)

// MemQDB keeps committed metadata in process memory and optionally mirrors
// it to a JSON backup file after every change.
type MemQDB struct {
	mu sync.RWMutex

	Partitions map[RelationID]*Partition `json:"partitions"`
	Shards     map[uint64]*Shard         `json:"shards"`
	Placements map[uint64]*Placement     `json:"placements"`
	Sequences  map[string]uint64         `json:"sequences"`
	Relations  map[RelationID]*Relation  `json:"relations"`

	locks      *lockTable
	backupPath string
}

var _ QDB = &MemQDB{}

func NewMemQDB(backupPath string) (*MemQDB, error) {
	return &MemQDB{
		Partitions: map[RelationID]*Partition{},
		Shards:     map[uint64]*Shard{},
		Placements: map[uint64]*Placement{},
		Sequences:  map[string]uint64{},
		Relations:  map[RelationID]*Relation{},

		locks:      newLockTable(),
		backupPath: backupPath,
	}, nil
}

// RestoreQDB loads the backup file at backupPath, creating it when missing.
// Advisory locks are transaction scoped and are never restored.
func RestoreQDB(backupPath string) (*MemQDB, error) {
	qdb, err := NewMemQDB(backupPath)
	if err != nil {
		return nil, err
	}
	if backupPath == "" {
		return qdb, nil
	}
	if _, err := os.Stat(backupPath); err != nil {
		dmlog.Zero.Info().Err(err).Msg("memqdb backup file not exists. Creating new one.")
		f, err := os.Create(backupPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return qdb, nil
	}
	data, err := os.ReadFile(backupPath)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return qdb, nil
	}
	if err := json.Unmarshal(data, qdb); err != nil {
		return nil, err
	}
	return qdb, nil
}

func (q *MemQDB) DumpState() error {
	if q.backupPath == "" {
		return nil
	}
	tmpPath := q.backupPath + ".tmp"

	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	state, err := json.MarshalIndent(q, "", "	")
	if err != nil {
		return err
	}

	if _, err = f.Write(state); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	return os.Rename(tmpPath, q.backupPath)
}

func (q *MemQDB) Begin(_ context.Context) (Tx, error) {
	tx := &memTx{
		id:         uuid.New(),
		db:         q,
		partitions: map[RelationID]*Partition{},
		shards:     map[uint64]*Shard{},
		placements: map[uint64]*Placement{},
		deleted:    map[uint64]*Placement{},
	}
	dmlog.Zero.Debug().Str("tx", tx.id.String()).Msg("memqdb: begin transaction")
	return tx, nil
}

func (q *MemQDB) NextVal(_ context.Context, seqName string) (uint64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	next := q.Sequences[seqName] + 1
	if err := ExecuteCommands(q.DumpState, NewUpdateCommand(q.Sequences, seqName, next)); err != nil {
		return 0, err
	}

	dmlog.Zero.Debug().Str("sequence", seqName).Uint64("value", next).Msg("memqdb: next val")
	return next, nil
}

func (q *MemQDB) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.DumpState()
}

// ==============================================================================
//                                 RELATIONS
// ==============================================================================

// CreateRelation registers a table and its user columns, standing in for
// the host catalog that PgQDB queries.
func (q *MemQDB) CreateRelation(_ context.Context, rel *Relation) error {
	dmlog.Zero.Debug().Interface("relation", rel).Msg("memqdb: create relation")

	if rel.ID == InvalidRelationID {
		return fmt.Errorf("relation %q has invalid id", rel.Name)
	}
	seen := map[string]struct{}{}
	for _, c := range rel.Columns {
		if c.Num <= 0 {
			return fmt.Errorf("column %q of relation %q has non-positive number %d", c.Name, rel.Name, c.Num)
		}
		if _, ok := seen[c.Name]; ok {
			return fmt.Errorf("column %q specified more than once", c.Name)
		}
		seen[c.Name] = struct{}{}
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.Relations[rel.ID]; ok {
		return fmt.Errorf("%w: relation (id)=(%d)", ErrUniqueViolation, rel.ID)
	}
	stored := *rel
	stored.Columns = make([]Attribute, len(rel.Columns))
	for i, c := range rel.Columns {
		c.RelationID = rel.ID
		stored.Columns[i] = c
	}
	return ExecuteCommands(q.DumpState, NewUpdateCommand(q.Relations, rel.ID, &stored))
}

func (q *MemQDB) lookupColumn(relID RelationID, match func(a *Attribute) bool) (*Attribute, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	rel, ok := q.Relations[relID]
	if !ok {
		return nil, fmt.Errorf("%w: relation %d", ErrNotFound, relID)
	}
	for i := range rel.Columns {
		if match(&rel.Columns[i]) {
			ret := rel.Columns[i]
			return &ret, nil
		}
	}
	for i := range systemAttributes {
		if match(&systemAttributes[i]) {
			ret := systemAttributes[i]
			ret.RelationID = relID
			return &ret, nil
		}
	}
	return nil, fmt.Errorf("%w: column of relation %d", ErrNotFound, relID)
}

// ==============================================================================
//                              COMMITTED STATE
// ==============================================================================

func (q *MemQDB) committedPartition(relID RelationID) (*Partition, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	p, ok := q.Partitions[relID]
	if !ok {
		return nil, false
	}
	ret := *p
	return &ret, true
}

func (q *MemQDB) committedShard(shardID uint64) (*Shard, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	s, ok := q.Shards[shardID]
	if !ok {
		return nil, false
	}
	ret := *s
	return &ret, true
}

func (q *MemQDB) committedShardIDs(relID RelationID) []uint64 {
	q.mu.RLock()
	defer q.mu.RUnlock()
	var ret []uint64
	for id, s := range q.Shards {
		if s.RelationID == relID {
			ret = append(ret, id)
		}
	}
	return ret
}

func (q *MemQDB) committedPlacements(shardID uint64) []*Placement {
	q.mu.RLock()
	defer q.mu.RUnlock()
	var ret []*Placement
	for _, p := range q.Placements {
		if p.ShardID == shardID {
			cp := *p
			ret = append(ret, &cp)
		}
	}
	return ret
}

func (q *MemQDB) hasCommittedPlacement(placementID uint64) bool {
	_, ok := q.committedPlacementRow(placementID)
	return ok
}

// committedPlacementRow returns the stored row itself. Callers compare it by
// identity and never modify it.
func (q *MemQDB) committedPlacementRow(placementID uint64) (*Placement, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	p, ok := q.Placements[placementID]
	return p, ok
}

func sortPlacements(ps []*Placement) {
	sort.Slice(ps, func(i, j int) bool {
		return ps[i].ID < ps[j].ID
	})
}
