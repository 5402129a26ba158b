package sequencer

import (
	"context"

	"github.com/pg-sharding/distmeta/pkg/dmlog"
	"github.com/pg-sharding/distmeta/qdb"
)

// QDBSeq draws values from the metadata store's own sequences.
type QDBSeq struct {
	db qdb.QDB
}

var _ Allocator = &QDBSeq{}

func NewQDBSeq(db qdb.QDB) *QDBSeq {
	return &QDBSeq{db: db}
}

func (s *QDBSeq) NextID(ctx context.Context, sequenceName string) (uint64, error) {
	id, err := s.db.NextVal(ctx, sequenceName)
	if err != nil {
		return 0, err
	}
	dmlog.Zero.Debug().Str("sequence", sequenceName).Uint64("id", id).Msg("sequencer: allocated id")
	return id, nil
}

// Close is a no-op: the store belongs to the caller.
func (s *QDBSeq) Close() error {
	return nil
}
