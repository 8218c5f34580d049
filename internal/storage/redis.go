package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"reclamos/internal/complaint"
	apperrors "reclamos/internal/errors"
	"reclamos/internal/metrics"
)

const (
	backendRedis = "redis"

	// maxTxRetries bounds optimistic transaction retries when another
	// process appends to the same key concurrently.
	maxTxRetries = 10
)

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// RedisStore keeps the collection as a JSON array in a single Redis key.
//
// Appends from this process are serialized by mu. Appends from other
// processes sharing the key are serialized by WATCH/MULTI: a transaction
// that lost the race is retried against the new value.
type RedisStore struct {
	mu     sync.Mutex
	client *redis.Client
	key    string
}

// NewRedisStore creates a store using key on client.
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	return &RedisStore{client: client, key: key}
}

// Append adds a record to the end of the collection.
func (s *RedisStore) Append(ctx context.Context, record complaint.Record) error {
	defer observe(backendRedis, "append", time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	var size int
	txf := func(tx *redis.Tx) error {
		collection, err := s.load(ctx, tx)
		if err != nil {
			return err
		}

		collection = append(collection, record)
		data, err := encodeCollection(collection)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.key, data, 0)
			return nil
		})
		size = len(collection)
		return err
	}

	for attempt := 1; attempt <= maxTxRetries; attempt++ {
		err := s.client.Watch(ctx, txf, s.key)
		if err == nil {
			metrics.CollectionSize.WithLabelValues(backendRedis).Set(float64(size))
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return apperrors.NewWriteError("append to "+s.key, err)
	}

	return apperrors.NewWriteError("append to "+s.key,
		fmt.Errorf("gave up after %d conflicting transactions", maxTxRetries))
}

// LoadAll returns the whole collection. A missing key is an empty
// collection; a corrupt value is logged and read as empty.
func (s *RedisStore) LoadAll(ctx context.Context) (complaint.Collection, error) {
	defer observe(backendRedis, "load", time.Now())
	return s.load(ctx, s.client)
}

// LoadLast returns the most recent record, or nil if there is none.
func (s *RedisStore) LoadLast(ctx context.Context) (*complaint.Record, error) {
	collection, err := s.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	return collection.Last(), nil
}

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) load(ctx context.Context, g getter) (complaint.Collection, error) {
	data, err := g.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return complaint.Collection{}, nil
		}
		return nil, apperrors.NewReadError("get "+s.key, err)
	}
	return decodeCollection(data, "redis key "+s.key, backendRedis), nil
}
