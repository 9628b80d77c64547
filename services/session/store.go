package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"maidbook/services/booking"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const keyPrefix = "bookingSession:"

var (
	// ErrNotFound is returned for unknown or expired sessions.
	ErrNotFound = errors.New("booking session not found")
	// ErrVersionConflict is returned when another request saved the session
	// after it was loaded.
	ErrVersionConflict = errors.New("booking session was modified by another request")
)

// Record is a stored wizard snapshot with its version.
type Record struct {
	ID        string           `json:"id"`
	Version   int64            `json:"version"`
	Snapshot  booking.Snapshot `json:"snapshot"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// Store persists wizard sessions between requests.
type Store interface {
	Create(ctx context.Context, snap booking.Snapshot) (*Record, error)
	Load(ctx context.Context, id string) (*Record, error)
	Save(ctx context.Context, id string, version int64, snap booking.Snapshot) (*Record, error)
	Delete(ctx context.Context, id string) error
}

// RedisStore keeps sessions in Redis with a sliding TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore returns a store on client. ttl <= 0 means 30 minutes.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RedisStore{client: client, ttl: ttl}
}

func key(id string) string {
	return keyPrefix + id
}

func (s *RedisStore) Create(ctx context.Context, snap booking.Snapshot) (*Record, error) {
	rec := &Record{ID: uuid.New().String(), Version: 1, Snapshot: snap, UpdatedAt: time.Now().UTC()}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal booking session: %w", err)
	}
	ok, err := s.client.SetNX(ctx, key(rec.ID), data, s.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to create booking session: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("booking session %s already exists", rec.ID)
	}
	return rec, nil
}

func (s *RedisStore) Load(ctx context.Context, id string) (*Record, error) {
	data, err := s.client.Get(ctx, key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load booking session: %w", err)
	}
	return decode(data)
}

// Save writes snap as the next version if the stored version still equals
// version, and refreshes the TTL.
func (s *RedisStore) Save(ctx context.Context, id string, version int64, snap booking.Snapshot) (*Record, error) {
	k := key(id)
	var saved *Record

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, k).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return ErrNotFound
			}
			return err
		}
		current, err := decode(data)
		if err != nil {
			return err
		}
		if current.Version != version {
			return ErrVersionConflict
		}

		next := &Record{ID: id, Version: version + 1, Snapshot: snap, UpdatedAt: time.Now().UTC()}
		out, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("failed to marshal booking session: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, out, s.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		saved = next
		return nil
	}, k)

	switch {
	case err == nil:
		return saved, nil
	case errors.Is(err, redis.TxFailedErr):
		return nil, ErrVersionConflict
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrVersionConflict):
		return nil, err
	default:
		return nil, fmt.Errorf("failed to save booking session: %w", err)
	}
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, key(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete booking session: %w", err)
	}
	return nil
}

func decode(data []byte) (*Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode booking session: %w", err)
	}
	return &rec, nil
}
