package qdb

import (
	"context"
	"fmt"

	"github.com/pg-sharding/distmeta/pkg/config"
)

// NewQDB builds the store named by cfg.QdbType.
func NewQDB(ctx context.Context, cfg *config.Catalog) (QDB, error) {
	switch cfg.QdbType {
	case config.QdbTypePostgres:
		db, err := NewPgQDB(ctx, cfg.ConnString, cfg.Layout, cfg.ConnectRetries)
		if err != nil {
			return nil, err
		}
		return db, nil
	case config.QdbTypeMem:
		db, err := RestoreQDB(cfg.MemBackupPath)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown qdb type %q", cfg.QdbType)
	}
}
