package sequencer

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/pg-sharding/distmeta/pkg/dmlog"
	"github.com/pg-sharding/distmeta/pkg/models/dmerror"
	"github.com/sethvargo/go-retry"
	clientv3 "go.etcd.io/etcd/client/v3"
	"go.etcd.io/etcd/client/v3/concurrency"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	sequenceNamespace = "/sequences/"
	sequenceLockSpace = "/sequences_lock/"
)

func sequenceNodePath(name string) string {
	return sequenceNamespace + name
}

// EtcdSeq keeps counters in etcd. Increments are serialized with a
// distributed mutex so several processes can share one sequence.
type EtcdSeq struct {
	cli     *clientv3.Client
	retries uint64
}

var _ Allocator = &EtcdSeq{}

func NewEtcdSeq(addr string, retries uint64) (*EtcdSeq, error) {
	if addr == "" {
		return nil, dmerror.New(dmerror.DM_NULL_ARGUMENT, "etcd address must not be empty")
	}
	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   []string{addr},
		DialTimeout: 5 * time.Second,
		DialOptions: []grpc.DialOption{
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		},
	})
	if err != nil {
		return nil, err
	}

	dmlog.Zero.Debug().Str("address", addr).Msg("etcdseq: client created")
	return &EtcdSeq{cli: cli, retries: retries}, nil
}

func (s *EtcdSeq) session(ctx context.Context) (*concurrency.Session, error) {
	var sess *concurrency.Session
	err := retry.Do(ctx, retry.WithMaxRetries(s.retries, retry.NewFibonacci(100*time.Millisecond)), func(ctx context.Context) error {
		var err error
		sess, err = concurrency.NewSession(s.cli, concurrency.WithContext(ctx))
		if err != nil {
			dmlog.Zero.Debug().Err(err).Msg("etcdseq: session failed, retrying")
			return retry.RetryableError(err)
		}
		return nil
	})
	return sess, err
}

func (s *EtcdSeq) NextID(ctx context.Context, sequenceName string) (uint64, error) {
	dmlog.Zero.Debug().Str("sequence", sequenceName).Msg("etcdseq: next id")

	sess, err := s.session(ctx)
	if err != nil {
		return 0, err
	}
	defer closeSession(sess)

	mu := concurrency.NewMutex(sess, sequenceLockSpace+sequenceName)
	if err := mu.Lock(ctx); err != nil {
		return 0, err
	}
	defer unlockMutex(ctx, mu)

	key := sequenceNodePath(sequenceName)
	resp, err := s.cli.Get(ctx, key)
	if err != nil {
		return 0, err
	}

	var current uint64
	var modRevision int64
	if resp.Count == 1 {
		modRevision = resp.Kvs[0].ModRevision
		current, err = strconv.ParseUint(string(resp.Kvs[0].Value), 10, 64)
		if err != nil {
			return 0, dmerror.Newf(dmerror.DM_METADATA_CORRUPTION, "sequence %s holds %q: %v", sequenceName, resp.Kvs[0].Value, err)
		}
	}

	next := current + 1
	txnResp, err := s.cli.Txn(ctx).
		If(incrementGuard(mu.IsOwner(), key, modRevision)...).
		Then(clientv3.OpPut(key, strconv.FormatUint(next, 10))).
		Commit()
	if err != nil {
		return 0, fmt.Errorf("etcdseq: store %s: %w", sequenceName, err)
	}
	if !txnResp.Succeeded {
		return 0, fmt.Errorf("etcdseq: lost ownership of sequence %s before storing %d", sequenceName, next)
	}
	return next, nil
}

// incrementGuard makes the write conditional on still holding the sequence
// mutex and on the counter being unchanged since it was read. A zero
// modRevision means the counter did not exist yet.
func incrementGuard(owner clientv3.Cmp, key string, modRevision int64) []clientv3.Cmp {
	if modRevision == 0 {
		return []clientv3.Cmp{owner, clientv3.Compare(clientv3.CreateRevision(key), "=", 0)}
	}
	return []clientv3.Cmp{owner, clientv3.Compare(clientv3.ModRevision(key), "=", modRevision)}
}

func (s *EtcdSeq) Close() error {
	return s.cli.Close()
}

func unlockMutex(ctx context.Context, mu *concurrency.Mutex) {
	if err := mu.Unlock(ctx); err != nil {
		dmlog.Zero.Error().Err(err).Msg("etcdseq: unlock sequence mutex")
	}
}

func closeSession(sess *concurrency.Session) {
	if err := sess.Close(); err != nil {
		dmlog.Zero.Error().Err(err).Msg("etcdseq: close session")
	}
}
