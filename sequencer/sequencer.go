package sequencer

import (
	"context"
	"fmt"

	"github.com/pg-sharding/distmeta/pkg/config"
	"github.com/pg-sharding/distmeta/qdb"
)

// Allocator hands out identifiers from named sequences. Values are
// strictly increasing per sequence and are never handed out twice, even
// when the transaction that asked for one rolls back.
type Allocator interface {
	NextID(ctx context.Context, sequenceName string) (uint64, error)
	Close() error
}

// NewAllocator builds the allocator named by cfg.Sequencer. The qdb
// allocator shares db; the etcd allocator opens its own client.
func NewAllocator(cfg *config.Catalog, db qdb.QDB) (Allocator, error) {
	switch cfg.Sequencer {
	case config.SequencerQdb, "":
		return NewQDBSeq(db), nil
	case config.SequencerEtcd:
		seq, err := NewEtcdSeq(cfg.EtcdAddr, cfg.ConnectRetries)
		if err != nil {
			return nil, err
		}
		return seq, nil
	default:
		return nil, fmt.Errorf("unknown sequencer %q", cfg.Sequencer)
	}
}
