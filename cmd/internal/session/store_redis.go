package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "warden:sessions:"

// RedisStore persists device sessions as one hash per user, field per
// device, value JSON-encoded. The arbitrator serializes per user, so
// get-modify-write on a single hash field is safe.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a store backed by the given client. Close closes the
// client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

type redisRecord struct {
	ID              string    `json:"id"`
	Status          Status    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	LastSeenAt      time.Time `json:"last_seen_at"`
	StatusChangedAt time.Time `json:"status_changed_at"`
}

func redisKey(userID string) string { return redisKeyPrefix + userID }

func encodeRecord(rec Record) (string, error) {
	raw, err := json.Marshal(redisRecord{
		ID:              rec.ID,
		Status:          rec.Status,
		CreatedAt:       rec.CreatedAt,
		LastSeenAt:      rec.LastSeenAt,
		StatusChangedAt: rec.StatusChangedAt,
	})
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func decodeRecord(userID, deviceID, raw string) (Record, error) {
	var rr redisRecord
	if err := json.Unmarshal([]byte(raw), &rr); err != nil {
		return Record{}, fmt.Errorf("decode session %s/%s: %w", userID, deviceID, err)
	}
	return Record{
		ID:              rr.ID,
		UserID:          userID,
		DeviceID:        deviceID,
		Status:          rr.Status,
		CreatedAt:       rr.CreatedAt,
		LastSeenAt:      rr.LastSeenAt,
		StatusChangedAt: rr.StatusChangedAt,
	}, nil
}

func (s *RedisStore) GetActiveByUser(ctx context.Context, userID string) ([]Record, error) {
	fields, err := s.client.HGetAll(ctx, redisKey(userID)).Result()
	if err != nil {
		return nil, err
	}

	var recs []Record
	for deviceID, raw := range fields {
		rec, err := decodeRecord(userID, deviceID, raw)
		if err != nil {
			return nil, err
		}
		if rec.Status == StatusActive {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].CreatedAt.Before(recs[j].CreatedAt)
		}
		return recs[i].DeviceID < recs[j].DeviceID
	})
	return recs, nil
}

func (s *RedisStore) Get(ctx context.Context, userID, deviceID string) (Record, error) {
	raw, err := s.client.HGet(ctx, redisKey(userID), deviceID).Result()
	if errors.Is(err, redis.Nil) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}
	return decodeRecord(userID, deviceID, raw)
}

func (s *RedisStore) Upsert(ctx context.Context, rec Record) error {
	raw, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	return s.client.HSet(ctx, redisKey(rec.UserID), rec.DeviceID, raw).Err()
}

func (s *RedisStore) Touch(ctx context.Context, userID, deviceID string, at time.Time) error {
	rec, err := s.Get(ctx, userID, deviceID)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if rec.Status != StatusActive {
		return nil
	}
	rec.LastSeenAt = at
	return s.Upsert(ctx, rec)
}

func (s *RedisStore) SetStatus(ctx context.Context, userID, deviceID string, status Status, at time.Time) error {
	rec, err := s.Get(ctx, userID, deviceID)
	if err != nil {
		return err
	}
	rec.Status = status
	rec.StatusChangedAt = at
	return s.Upsert(ctx, rec)
}

func (s *RedisStore) Delete(ctx context.Context, userID, deviceID string) error {
	return s.client.HDel(ctx, redisKey(userID), deviceID).Err()
}

func (s *RedisStore) PurgeInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var n int64
	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		fields, err := s.client.HGetAll(ctx, key).Result()
		if err != nil {
			return n, err
		}
		userID := key[len(redisKeyPrefix):]
		for deviceID, raw := range fields {
			rec, err := decodeRecord(userID, deviceID, raw)
			if err != nil {
				return n, err
			}
			if rec.Status.Terminal() && rec.StatusChangedAt.Before(cutoff) {
				if err := s.client.HDel(ctx, key, deviceID).Err(); err != nil {
					return n, err
				}
				n++
			}
		}
	}
	if err := iter.Err(); err != nil {
		return n, err
	}
	return n, nil
}

func (s *RedisStore) Close() error { return s.client.Close() }
