package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poyrazK/nsec3gen/internal/core/domain"
	"github.com/poyrazK/nsec3gen/internal/core/ports"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces every key the store touches.
const DefaultRedisPrefix = "nsec3"

// redisBatchSize bounds the number of fields sent in one HSET.
const redisBatchSize = 1000

// RedisStore keeps each record as a small JSON metadata key plus a hash
// of encoded hash -> label, so consumers can resolve single hashes with
// HGET instead of loading the whole record.
type RedisStore struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

var (
	_ ports.CacheWriter = (*RedisStore)(nil)
	_ ports.CacheReader = (*RedisStore)(nil)
	_ ports.HashLookup  = (*RedisStore)(nil)
)

type redisMeta struct {
	Domain       string `json:"domain"`
	Salt         string `json:"salt"`
	Iterations   uint32 `json:"iterations"`
	WordlistSize int    `json:"wordlist_size"`
}

func NewRedisStore(addr string, password string, db int, prefix string, logger *slog.Logger) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewRedisStoreFromClient(rdb, prefix, logger)
}

func NewRedisStoreFromClient(client *redis.Client, prefix string, logger *slog.Logger) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisStore{client: client, prefix: prefix, logger: logger}
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

func (r *RedisStore) metaKey(id string) string {
	return r.prefix + ":" + id
}

func (r *RedisStore) hashesKey(id string) string {
	return r.metaKey(id) + ":hashes"
}

// Write stages the hash entries under a temporary key in pipelined
// batches, then swaps them in together with the metadata in one
// transaction. A failed write leaves any previous record untouched.
func (r *RedisStore) Write(ctx context.Context, id string, record *domain.CacheRecord) (string, error) {
	meta, err := json.Marshal(redisMeta{
		Domain:       record.Domain,
		Salt:         record.Salt,
		Iterations:   record.Iterations,
		WordlistSize: record.WordlistSize,
	})
	if err != nil {
		return "", fmt.Errorf("%w: encoding metadata: %w", domain.ErrOutputPersist, err)
	}

	staging := r.hashesKey(id) + ":staging"
	if err := r.client.Del(ctx, staging).Err(); err != nil {
		return "", fmt.Errorf("%w: redis: %w", domain.ErrOutputPersist, err)
	}

	pipe := r.client.Pipeline()
	fields := make([]interface{}, 0, 2*redisBatchSize)
	for hash, label := range record.Hashes {
		fields = append(fields, hash, label)
		if len(fields) == cap(fields) {
			pipe.HSet(ctx, staging, fields...)
			fields = make([]interface{}, 0, 2*redisBatchSize)
		}
	}
	if len(fields) > 0 {
		pipe.HSet(ctx, staging, fields...)
	}
	if pipe.Len() > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			r.client.Del(context.WithoutCancel(ctx), staging)
			return "", fmt.Errorf("%w: redis: %w", domain.ErrOutputPersist, err)
		}
	}

	_, err = r.client.TxPipelined(ctx, func(tx redis.Pipeliner) error {
		if len(record.Hashes) > 0 {
			tx.Rename(ctx, staging, r.hashesKey(id))
		} else {
			tx.Del(ctx, r.hashesKey(id))
		}
		tx.Set(ctx, r.metaKey(id), meta, 0)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: redis: %w", domain.ErrOutputPersist, err)
	}

	r.logger.Debug("cache record stored in redis", "key", r.metaKey(id), "entries", len(record.Hashes))
	return "redis:" + r.metaKey(id), nil
}

func (r *RedisStore) Load(ctx context.Context, id string) (*domain.CacheRecord, error) {
	raw, err := r.client.Get(ctx, r.metaKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", domain.ErrCacheNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	var meta redisMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", r.metaKey(id), err)
	}

	hashes, err := r.client.HGetAll(ctx, r.hashesKey(id)).Result()
	if err != nil {
		return nil, err
	}

	return &domain.CacheRecord{
		Domain:       meta.Domain,
		Salt:         meta.Salt,
		Iterations:   meta.Iterations,
		WordlistSize: meta.WordlistSize,
		Hashes:       hashes,
	}, nil
}

// Lookup resolves one encoded hash without loading the record.
func (r *RedisStore) Lookup(ctx context.Context, id string, hash string) (string, bool, error) {
	label, err := r.client.HGet(ctx, r.hashesKey(id), strings.ToLower(hash)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return label, true, nil
}
