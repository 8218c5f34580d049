// Package storage provides the durable complaint collection.
//
// The collection is a single JSON array of complaint records, rewritten as
// a whole on every append. Two backing media are supported:
//  1. A JSON file on local disk (default)
//  2. A single Redis key holding the same JSON array
//
// Thread-safety:
//   - Appends are serialized by a mutex scoped to the store, so the
//     load-append-write cycle never loses a concurrent record
//   - Reads never observe a write in progress
//
// Corrupt data policy:
//   - A collection that fails to parse is read as empty, logged as a
//     warning and counted; it is never reported to the caller, so intake
//     keeps working after a damaged write
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"reclamos/internal/complaint"
	"reclamos/internal/config"
	apperrors "reclamos/internal/errors"
	"reclamos/internal/metrics"
)

// Store is the record store contract shared by every backing medium.
//
// Implementations must be safe for concurrent use. LoadAll returns records
// in insertion order.
type Store interface {
	// Append adds a record at the end of the collection.
	Append(ctx context.Context, record complaint.Record) error
	// LoadAll returns the whole collection, empty if absent or corrupt.
	LoadAll(ctx context.Context) (complaint.Collection, error)
	// LoadLast returns the most recent record, or nil for an empty collection.
	LoadLast(ctx context.Context) (*complaint.Record, error)
	// Close releases the backing medium.
	Close() error
}

// Open builds the store selected by cfg.StoreBackend.
//
// For Redis the connection is checked with PING so a bad address fails at
// startup rather than on the first complaint.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.StoreBackend {
	case config.BackendFile:
		log.Printf("📋 Using file store at %s", cfg.DataPath())
		return NewFileStore(cfg.DataPath()), nil

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}

		log.Printf("📋 Using redis store at %s (key %s)", cfg.RedisAddr, cfg.RedisKey)
		return NewRedisStore(client, cfg.RedisKey), nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// decodeCollection parses a persisted collection.
//
// Empty input reads as an empty collection. Anything that is not a JSON
// array of records is treated as corrupt: logged, counted, and read as empty.
func decodeCollection(data []byte, source, backend string) complaint.Collection {
	if len(bytes.TrimSpace(data)) == 0 {
		return complaint.Collection{}
	}

	var collection complaint.Collection
	if err := json.Unmarshal(data, &collection); err != nil {
		corrupt := apperrors.NewCorruptDataError(source, err)
		log.Printf("⚠️  %v (treating as empty)", corrupt)
		metrics.CorruptReads.WithLabelValues(backend).Inc()
		return complaint.Collection{}
	}

	if collection == nil {
		collection = complaint.Collection{}
	}
	metrics.CollectionSize.WithLabelValues(backend).Set(float64(len(collection)))
	return collection
}

// encodeCollection renders the collection the way it is stored: an indented
// JSON array.
func encodeCollection(collection complaint.Collection) ([]byte, error) {
	if collection == nil {
		collection = complaint.Collection{}
	}
	return json.MarshalIndent(collection, "", "  ")
}

// observe records the duration of a store operation.
func observe(backend, op string, start time.Time) {
	metrics.StoreOperationDuration.WithLabelValues(backend, op).Observe(time.Since(start).Seconds())
}
