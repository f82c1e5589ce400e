// Package history keeps each user's most recent successful scans in Redis.
package history

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultLimit = 5
	DefaultTTL   = 30 * 24 * time.Hour
	keyPrefix    = "scan:history:"
)

var ErrNoUser = errors.New("history requires a user id")

// Store is a Redis list per user, newest barcode first, without duplicates.
type Store struct {
	client redis.Cmdable
	limit  int
	ttl    time.Duration
}

func NewStore(client redis.Cmdable, limit int, ttl time.Duration) *Store {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{client: client, limit: limit, ttl: ttl}
}

func key(userID string) string {
	return keyPrefix + userID
}

// Add moves barcode to the front of the user's history.
func (s *Store) Add(ctx context.Context, userID, barcode string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrNoUser
	}
	k := key(userID)

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LRem(ctx, k, 0, barcode)
		pipe.LPush(ctx, k, barcode)
		pipe.LTrim(ctx, k, 0, int64(s.limit-1))
		pipe.Expire(ctx, k, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record scan history: %w", err)
	}
	return nil
}

// List returns the user's barcodes, newest first.
func (s *Store) List(ctx context.Context, userID string) ([]string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrNoUser
	}
	barcodes, err := s.client.LRange(ctx, key(userID), 0, int64(s.limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read scan history: %w", err)
	}
	if barcodes == nil {
		barcodes = []string{}
	}
	return barcodes, nil
}

func (s *Store) Clear(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrNoUser
	}
	if err := s.client.Del(ctx, key(userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear scan history: %w", err)
	}
	return nil
}
