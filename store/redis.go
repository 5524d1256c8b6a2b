package store

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/justapithecus/seam/types"
)

// Redis key layout:
//   - one hash per asset at <prefix>:runs:<asset>, field = partition key
//     string, value = msgpack-encoded record
//   - a set of known asset names at <prefix>:assets, maintained on Put so
//     ListPending can enumerate without SCAN

// DefaultRedisPrefix namespaces all engine keys in Redis.
const DefaultRedisPrefix = "seam"

// RedisConfig configures the Redis-backed store.
type RedisConfig struct {
	// URL is the Redis connection URL (required).
	// Format: redis://[:password@]host:port[/db]
	URL string
	// Prefix namespaces keys (default: seam).
	Prefix string
}

// RedisStore persists run records in Redis hashes, one hash per asset.
type RedisStore struct {
	client *goredis.Client
	prefix string
}

// NewRedisStore creates a Redis-backed store from the given config.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	if cfg.URL == "" {
		return nil, errors.New("redis store requires a URL")
	}
	opts, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("redis store: invalid URL: %w", err)
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: goredis.NewClient(opts), prefix: prefix}, nil
}

// NewRedisStoreWithClient wraps an existing client (used with miniredis in tests).
func NewRedisStoreWithClient(client *goredis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

// Get fetches and decodes the record, or returns nil when absent.
func (s *RedisStore) Get(ctx context.Context, asset string, key types.PartitionKey) (*types.RunRecord, error) {
	data, err := s.client.HGet(ctx, s.assetHash(asset), key.String()).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis store: get %s/%s: %w", asset, key, err)
	}
	return DecodeRecord(data)
}

// Put encodes and stores the record, registering the asset for enumeration.
func (s *RedisStore) Put(ctx context.Context, record *types.RunRecord) error {
	data, err := EncodeRecord(record)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, s.assetHash(record.Asset), record.Key.String(), data)
	pipe.SAdd(ctx, s.prefix+":assets", record.Asset)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis store: put %s/%s: %w", record.Asset, record.Key, err)
	}
	return nil
}

// ListByAsset decodes every record in the asset's hash.
func (s *RedisStore) ListByAsset(ctx context.Context, asset string) ([]*types.RunRecord, error) {
	fields, err := s.client.HGetAll(ctx, s.assetHash(asset)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis store: list %s: %w", asset, err)
	}

	records := make([]*types.RunRecord, 0, len(fields))
	for _, raw := range fields {
		rec, err := DecodeRecord([]byte(raw))
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	sortRecords(records)
	return records, nil
}

// ListPending scans every registered asset for pending records.
func (s *RedisStore) ListPending(ctx context.Context) ([]*types.RunRecord, error) {
	assets, err := s.client.SMembers(ctx, s.prefix+":assets").Result()
	if err != nil {
		return nil, fmt.Errorf("redis store: list assets: %w", err)
	}

	var pending []*types.RunRecord
	for _, asset := range assets {
		records, err := s.ListByAsset(ctx, asset)
		if err != nil {
			return nil, err
		}
		for _, rec := range records {
			if rec.State == types.StatePending {
				pending = append(pending, rec)
			}
		}
	}
	sortRecords(pending)
	return pending, nil
}

// Close releases the Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) assetHash(asset string) string {
	return s.prefix + ":runs:" + asset
}

var _ Store = (*RedisStore)(nil)
