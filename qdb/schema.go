package qdb

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
	"github.com/pg-sharding/distmeta/pkg/config"
	"github.com/pg-sharding/distmeta/pkg/dmlog"
	"golang.org/x/xerrors"
)

func qualified(schema, name string) string {
	return pq.QuoteIdentifier(schema) + "." + pq.QuoteIdentifier(name)
}

// SchemaDDL returns the statements creating the metadata schema. Every
// statement is safe to run against an existing schema.
func SchemaDDL(l config.Layout) []string {
	partition := qualified(l.Schema, l.PartitionTable)
	shard := qualified(l.Schema, l.ShardTable)
	placement := qualified(l.Schema, l.PlacementTable)

	return []string{
		`CREATE SCHEMA IF NOT EXISTS ` + pq.QuoteIdentifier(l.Schema),
		`CREATE TABLE IF NOT EXISTS ` + partition + ` (
	relation_id oid PRIMARY KEY,
	partition_method "char" NOT NULL,
	key text NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS ` + shard + ` (
	id bigint PRIMARY KEY,
	relation_id oid NOT NULL,
	storage "char" NOT NULL,
	min_value text,
	max_value text
)`,
		`CREATE INDEX IF NOT EXISTS ` + pq.QuoteIdentifier(l.ShardTable+"_relation_index") + ` ON ` + shard + ` (relation_id)`,
		`CREATE TABLE IF NOT EXISTS ` + placement + ` (
	id bigint PRIMARY KEY,
	shard_id bigint NOT NULL,
	shard_state int NOT NULL,
	node_name text NOT NULL,
	node_port int NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS ` + pq.QuoteIdentifier(l.PlacementTable+"_shard_index") + ` ON ` + placement + ` (shard_id)`,
		`CREATE SEQUENCE IF NOT EXISTS ` + qualified(l.Schema, l.ShardIDSequence) + ` NO CYCLE`,
		`CREATE SEQUENCE IF NOT EXISTS ` + qualified(l.Schema, l.PlacementIDSequence) + ` NO CYCLE`,
	}
}

// InitSchema creates the metadata schema in one transaction.
func (q *PgQDB) InitSchema(ctx context.Context) error {
	tx, err := q.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !xerrors.Is(err, pgx.ErrTxClosed) {
			dmlog.Zero.Error().Err(err).Msg("pgqdb: rollback schema init")
		}
	}()

	for _, stmt := range SchemaDDL(q.layout) {
		dmlog.Zero.Debug().Str("statement", stmt).Msg("pgqdb: init schema")
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return xerrors.Errorf("pgqdb: init schema: %w", err)
		}
	}
	return tx.Commit(ctx)
}
