package qdb

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pg-sharding/distmeta/pkg/config"
	"github.com/pg-sharding/distmeta/pkg/dmlog"
	"github.com/sethvargo/go-retry"
	"golang.org/x/xerrors"
)

const pgUniqueViolation = "23505"

// PgQDB keeps metadata in ordinary PostgreSQL tables laid out as described
// by config.Layout.
type PgQDB struct {
	pool   *pgxpool.Pool
	layout config.Layout
}

var _ QDB = &PgQDB{}

// NewPgQDB opens a pool and pings the server, retrying the ping up to
// retries times with fibonacci backoff.
func NewPgQDB(ctx context.Context, connString string, layout config.Layout, retries uint64) (*PgQDB, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, xerrors.Errorf("pgqdb: parse connection string: %w", err)
	}

	backoff := retry.WithMaxRetries(retries, retry.NewFibonacci(200*time.Millisecond))
	if err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			dmlog.Zero.Debug().Err(err).Msg("pgqdb: ping failed, retrying")
			return retry.RetryableError(err)
		}
		return nil
	}); err != nil {
		pool.Close()
		return nil, xerrors.Errorf("pgqdb: connect: %w", err)
	}

	dmlog.Zero.Debug().Str("schema", layout.Schema).Msg("pgqdb: connected")
	return &PgQDB{pool: pool, layout: layout}, nil
}

func (q *PgQDB) table(name string) string {
	return pgx.Identifier{q.layout.Schema, name}.Sanitize()
}

func (q *PgQDB) Begin(ctx context.Context) (Tx, error) {
	tx, err := q.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, err
	}
	return &pgTx{tx: tx, q: q}, nil
}

func (q *PgQDB) NextVal(ctx context.Context, seqName string) (uint64, error) {
	dmlog.Zero.Debug().Str("sequence", seqName).Msg("pgqdb: next val")

	var next int64
	if err := q.pool.QueryRow(ctx, `SELECT nextval($1::text::regclass)`, q.table(seqName)).Scan(&next); err != nil {
		return 0, xerrors.Errorf("pgqdb: nextval %s: %w", seqName, err)
	}
	return uint64(next), nil
}

func (q *PgQDB) Close() error {
	q.pool.Close()
	return nil
}

type pgTx struct {
	tx pgx.Tx
	q  *PgQDB
}

var _ Tx = &pgTx{}

func translate(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return xerrors.Errorf("%s: %w", what, ErrNotFound)
	}
	if errors.Is(err, pgx.ErrTxClosed) {
		return ErrTxClosed
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return xerrors.Errorf("%s: %w: %s", what, ErrUniqueViolation, pgErr.Detail)
	}
	return err
}

// ==============================================================================
//                                 PARTITIONS
// ==============================================================================

func (t *pgTx) GetPartition(ctx context.Context, relID RelationID) (*Partition, error) {
	var (
		method string
		key    string
	)
	err := t.tx.QueryRow(ctx,
		`SELECT partition_method::text, key FROM `+t.q.table(t.q.layout.PartitionTable)+` WHERE relation_id = $1`,
		uint32(relID),
	).Scan(&method, &key)
	if err != nil {
		return nil, translate(err, "partition")
	}
	if len(method) != 1 {
		return nil, xerrors.Errorf("pgqdb: partition method %q of relation %d is not a single character", method, relID)
	}
	return &Partition{RelationID: relID, Method: method[0], Key: key}, nil
}

func (t *pgTx) HasPartitions(ctx context.Context) (bool, error) {
	var exists bool
	err := t.tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM `+t.q.table(t.q.layout.PartitionTable)+`)`,
	).Scan(&exists)
	return exists, translate(err, "partition")
}

func (t *pgTx) InsertPartition(ctx context.Context, p *Partition) error {
	dmlog.Zero.Debug().Uint32("relation", uint32(p.RelationID)).Msg("pgqdb: insert partition")

	_, err := t.tx.Exec(ctx,
		`INSERT INTO `+t.q.table(t.q.layout.PartitionTable)+` (relation_id, partition_method, key) VALUES ($1, $2::text::"char", $3)`,
		uint32(p.RelationID), string(p.Method), p.Key,
	)
	return translate(err, "partition")
}

// ==============================================================================
//                                   SHARDS
// ==============================================================================

func (t *pgTx) GetShard(ctx context.Context, shardID uint64) (*Shard, error) {
	var (
		relID    uint32
		storage  string
		minValue *string
		maxValue *string
	)
	err := t.tx.QueryRow(ctx,
		`SELECT relation_id, storage::text, min_value, max_value FROM `+t.q.table(t.q.layout.ShardTable)+` WHERE id = $1`,
		int64(shardID),
	).Scan(&relID, &storage, &minValue, &maxValue)
	if err != nil {
		return nil, translate(err, "shard")
	}
	if len(storage) != 1 {
		return nil, xerrors.Errorf("pgqdb: storage %q of shard %d is not a single character", storage, shardID)
	}
	return &Shard{
		ID:         shardID,
		RelationID: RelationID(relID),
		Storage:    storage[0],
		MinValue:   minValue,
		MaxValue:   maxValue,
	}, nil
}

func (t *pgTx) ListShardIDs(ctx context.Context, relID RelationID) ([]uint64, error) {
	rows, err := t.tx.Query(ctx,
		`SELECT id FROM `+t.q.table(t.q.layout.ShardTable)+` WHERE relation_id = $1`,
		uint32(relID),
	)
	if err != nil {
		return nil, translate(err, "shard")
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, translate(err, "shard")
	}
	ret := make([]uint64, len(ids))
	for i, id := range ids {
		ret[i] = uint64(id)
	}
	return ret, nil
}

func (t *pgTx) InsertShard(ctx context.Context, s *Shard) error {
	dmlog.Zero.Debug().Uint64("shard", s.ID).Msg("pgqdb: insert shard")

	_, err := t.tx.Exec(ctx,
		`INSERT INTO `+t.q.table(t.q.layout.ShardTable)+` (id, relation_id, storage, min_value, max_value) VALUES ($1, $2, $3::text::"char", $4, $5)`,
		int64(s.ID), uint32(s.RelationID), string(s.Storage), s.MinValue, s.MaxValue,
	)
	return translate(err, "shard")
}

// ==============================================================================
//                                 PLACEMENTS
// ==============================================================================

func (t *pgTx) ListPlacements(ctx context.Context, shardID uint64) ([]*Placement, error) {
	rows, err := t.tx.Query(ctx,
		`SELECT id, shard_state, node_name, node_port FROM `+t.q.table(t.q.layout.PlacementTable)+` WHERE shard_id = $1`,
		int64(shardID),
	)
	if err != nil {
		return nil, translate(err, "shard_placement")
	}
	defer rows.Close()

	var ret []*Placement
	for rows.Next() {
		var (
			id    int64
			state int32
			name  string
			port  int32
		)
		if err := rows.Scan(&id, &state, &name, &port); err != nil {
			return nil, err
		}
		ret = append(ret, &Placement{
			ID:       uint64(id),
			ShardID:  shardID,
			State:    state,
			NodeName: name,
			NodePort: uint32(port),
		})
	}
	return ret, translate(rows.Err(), "shard_placement")
}

func (t *pgTx) InsertPlacement(ctx context.Context, p *Placement) error {
	dmlog.Zero.Debug().Uint64("placement", p.ID).Uint64("shard", p.ShardID).Msg("pgqdb: insert placement")

	_, err := t.tx.Exec(ctx,
		`INSERT INTO `+t.q.table(t.q.layout.PlacementTable)+` (id, shard_id, shard_state, node_name, node_port) VALUES ($1, $2, $3, $4, $5)`,
		int64(p.ID), int64(p.ShardID), p.State, p.NodeName, int32(p.NodePort),
	)
	return translate(err, "shard_placement")
}

func (t *pgTx) DeletePlacement(ctx context.Context, placementID uint64) error {
	dmlog.Zero.Debug().Uint64("placement", placementID).Msg("pgqdb: delete placement")

	tag, err := t.tx.Exec(ctx,
		`DELETE FROM `+t.q.table(t.q.layout.PlacementTable)+` WHERE id = $1`,
		int64(placementID),
	)
	if err != nil {
		return translate(err, "shard_placement")
	}
	if tag.RowsAffected() == 0 {
		return xerrors.Errorf("shard_placement %d: %w", placementID, ErrNotFound)
	}
	return nil
}

// ==============================================================================
//                              HOST CATALOG
// ==============================================================================

func (t *pgTx) RelationName(ctx context.Context, relID RelationID) (string, error) {
	var name string
	err := t.tx.QueryRow(ctx,
		`SELECT relname FROM pg_catalog.pg_class WHERE oid = $1`,
		uint32(relID),
	).Scan(&name)
	return name, translate(err, "relation")
}

const attributeQuery = `SELECT attnum, attname, atttypid, atttypmod, attcollation
FROM pg_catalog.pg_attribute
WHERE attrelid = $1 AND NOT attisdropped AND `

func (t *pgTx) scanAttribute(row pgx.Row, relID RelationID) (*Attribute, error) {
	a := &Attribute{RelationID: relID}
	if err := row.Scan(&a.Num, &a.Name, &a.TypeID, &a.TypMod, &a.Collation); err != nil {
		return nil, translate(err, "attribute")
	}
	return a, nil
}

func (t *pgTx) ColumnByName(ctx context.Context, relID RelationID, name string) (*Attribute, error) {
	return t.scanAttribute(t.tx.QueryRow(ctx, attributeQuery+`attname = $2`, uint32(relID), name), relID)
}

func (t *pgTx) ColumnByNum(ctx context.Context, relID RelationID, num int16) (*Attribute, error) {
	return t.scanAttribute(t.tx.QueryRow(ctx, attributeQuery+`attnum = $2`, uint32(relID), num), relID)
}

// ==============================================================================
//                                   LOCKS
// ==============================================================================

func (t *pgTx) AdvisoryXactLock(ctx context.Context, key int64, shared bool) error {
	dmlog.Zero.Debug().Int64("key", key).Bool("shared", shared).Msg("pgqdb: acquire advisory lock")

	query := `SELECT pg_advisory_xact_lock($1)`
	if shared {
		query = `SELECT pg_advisory_xact_lock_shared($1)`
	}
	_, err := t.tx.Exec(ctx, query, key)
	return translate(err, "advisory lock")
}

func (t *pgTx) Commit(ctx context.Context) error {
	return translate(t.tx.Commit(ctx), "commit")
}

func (t *pgTx) Rollback(ctx context.Context) error {
	return translate(t.tx.Rollback(ctx), "rollback")
}
